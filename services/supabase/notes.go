package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/notespro/notespro/pkg/validation"
	"github.com/notespro/notespro/services/notespro/datatypes"
)

const notesPath = "/rest/v1/notes"

// ListNotes returns every note owned by userID, newest first. The result
// is the authoritative row set; the store replaces its list wholesale.
func (c *Client) ListNotes(ctx context.Context, token, userID string) ([]datatypes.Note, error) {
	if err := validation.ValidateID("user id", userID); err != nil {
		return nil, fmt.Errorf("supabase: %w", err)
	}
	query := url.Values{}
	query.Set("select", "*")
	query.Set("user_id", "eq."+userID)
	query.Set("order", "created_at.desc")

	data, err := c.do(ctx, http.MethodGet, notesPath, query, nil, token, nil)
	if err != nil {
		return nil, err
	}
	var notes []datatypes.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("supabase: decode notes: %w", err)
	}
	return notes, nil
}

// InsertNote creates a row and returns the server's representation of it.
// PostgREST honors Prefer: return=representation by echoing the inserted
// rows; an empty echo is reported as zero rows for the store's contract
// check.
func (c *Client) InsertNote(ctx context.Context, token string, row datatypes.NewNote) ([]datatypes.Note, error) {
	headers := map[string]string{"Prefer": "return=representation"}
	data, err := c.do(ctx, http.MethodPost, notesPath, nil, headers, token, []datatypes.NewNote{row})
	if err != nil {
		return nil, err
	}
	var notes []datatypes.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("supabase: decode inserted note: %w", err)
	}
	return notes, nil
}

// UpdateNote patches the row keyed by id and returns the updated rows.
// The patch never carries id or user_id.
func (c *Client) UpdateNote(ctx context.Context, token, id string, patch datatypes.NotePatch) ([]datatypes.Note, error) {
	if err := validation.ValidateID("note id", id); err != nil {
		return nil, fmt.Errorf("supabase: %w", err)
	}
	query := url.Values{}
	query.Set("id", "eq."+id)
	headers := map[string]string{"Prefer": "return=representation"}

	data, err := c.do(ctx, http.MethodPatch, notesPath, query, headers, token, patch)
	if err != nil {
		return nil, err
	}
	var notes []datatypes.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("supabase: decode updated note: %w", err)
	}
	return notes, nil
}

// DeleteNote removes the row keyed by id. Deleting an id that does not
// exist (or is not visible under row-level security) is not an error.
func (c *Client) DeleteNote(ctx context.Context, token, id string) error {
	if err := validation.ValidateID("note id", id); err != nil {
		return fmt.Errorf("supabase: %w", err)
	}
	query := url.Values{}
	query.Set("id", "eq."+id)
	_, err := c.do(ctx, http.MethodDelete, notesPath, query, nil, token, nil)
	return err
}

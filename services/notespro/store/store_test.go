// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/notespro/notespro/services/notespro/datatypes"
	"github.com/notespro/notespro/services/supabase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote implements NotesService with canned responses.
type fakeRemote struct {
	mu sync.Mutex

	listRows  []datatypes.Note
	listErr   error
	listCalls int
	listGate  chan struct{} // when non-nil, ListNotes blocks until closed

	insertRows  []datatypes.Note
	insertErr   error
	insertCalls int
	lastInsert  datatypes.NewNote

	updateRows   []datatypes.Note
	updateErr    error
	lastPatch    datatypes.NotePatch
	lastUpdateID string

	deleteErr  error
	deletedIDs []string
}

func (f *fakeRemote) ListNotes(ctx context.Context, token, userID string) ([]datatypes.Note, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	rows, err := f.listRows, f.listErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return rows, err
}

func (f *fakeRemote) InsertNote(ctx context.Context, token string, row datatypes.NewNote) ([]datatypes.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	f.lastInsert = row
	return f.insertRows, f.insertErr
}

func (f *fakeRemote) UpdateNote(ctx context.Context, token, id string, patch datatypes.NotePatch) ([]datatypes.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdateID = id
	f.lastPatch = patch
	return f.updateRows, f.updateErr
}

func (f *fakeRemote) DeleteNote(ctx context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedIDs = append(f.deletedIDs, id)
	return f.deleteErr
}

func testSession() *datatypes.UserSession {
	return &datatypes.UserSession{
		User:        datatypes.User{ID: "user-1", Email: "ada@example.com"},
		AccessToken: "access",
	}
}

func note(id, title, content string, noteLabels ...string) datatypes.Note {
	if noteLabels == nil {
		noteLabels = []string{}
	}
	return datatypes.Note{ID: id, Title: title, Content: content, Labels: noteLabels, Color: datatypes.ColorDefault, UserID: "user-1"}
}

func TestFetch_Unauthenticated(t *testing.T) {
	remote := &fakeRemote{}
	s := New(remote)

	err := s.Fetch(context.Background(), nil)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StatusSucceeded, snap.Status)
	assert.Empty(t, snap.Notes)
	assert.Empty(t, snap.Error)
	assert.Equal(t, 0, remote.listCalls, "no remote call without a session")
}

func TestFetch_ReplacesListWholesale(t *testing.T) {
	remote := &fakeRemote{listRows: []datatypes.Note{note("n2", "newer", ""), note("n1", "older", "")}}
	s := New(remote)
	// Pre-existing state from an earlier fetch must not survive.
	s.notes = []datatypes.Note{note("stale", "stale", "")}

	require.NoError(t, s.Fetch(context.Background(), testSession()))

	snap := s.Snapshot()
	assert.Equal(t, StatusSucceeded, snap.Status)
	require.Len(t, snap.Notes, 2)
	assert.Equal(t, "n2", snap.Notes[0].ID)
}

func TestFetch_FailureKeepsList(t *testing.T) {
	remote := &fakeRemote{listRows: []datatypes.Note{note("n1", "kept", "")}}
	s := New(remote)
	require.NoError(t, s.Fetch(context.Background(), testSession()))

	remote.listErr = errors.New("connection reset")
	remote.listRows = nil
	err := s.Fetch(context.Background(), testSession())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "connection reset", snap.Error)
	require.Len(t, snap.Notes, 1, "failed fetch must not corrupt the loaded list")
	assert.Equal(t, "n1", snap.Notes[0].ID)
}

func TestFetch_MissingTableRewritten(t *testing.T) {
	remote := &fakeRemote{listErr: &supabase.APIError{
		Status:  404,
		Code:    "PGRST205",
		Message: "Could not find the table 'public.notes' in the schema cache",
	}}
	s := New(remote)

	err := s.Fetch(context.Background(), testSession())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Contains(t, snap.Error, "Database setup needed")
	assert.NotContains(t, snap.Error, "schema cache", "raw message must not surface")
}

func TestFetch_StaleResponseDiscarded(t *testing.T) {
	gate := make(chan struct{})
	remote := &fakeRemote{listRows: []datatypes.Note{note("slow", "slow", "")}, listGate: gate}
	s := New(remote)

	done := make(chan error, 1)
	go func() { done <- s.Fetch(context.Background(), testSession()) }()

	// Wait for the first fetch to reach the remote call.
	for {
		remote.mu.Lock()
		started := remote.listCalls == 1
		remote.mu.Unlock()
		if started {
			break
		}
	}

	remote.mu.Lock()
	remote.listGate = nil
	remote.listRows = []datatypes.Note{note("fast", "fast", "")}
	remote.mu.Unlock()
	require.NoError(t, s.Fetch(context.Background(), testSession()))

	close(gate)
	require.NoError(t, <-done)

	snap := s.Snapshot()
	require.Len(t, snap.Notes, 1)
	assert.Equal(t, "fast", snap.Notes[0].ID, "superseded fetch must not clobber the newer result")
}

func TestCreate_RequiresSession(t *testing.T) {
	remote := &fakeRemote{}
	s := New(remote)

	_, err := s.Create(context.Background(), nil, "t", "c")
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Equal(t, 0, remote.insertCalls, "must fail before any network call")
}

func TestCreate_PrependsServerRow(t *testing.T) {
	created := note("server-id", "Groceries", "Buy #Milk and #milk again", "milk")
	remote := &fakeRemote{insertRows: []datatypes.Note{created}}
	s := New(remote)
	s.notes = []datatypes.Note{note("n1", "existing", "")}

	got, err := s.Create(context.Background(), testSession(), "Groceries", "Buy #Milk and #milk again")
	require.NoError(t, err)
	assert.Equal(t, "server-id", got.ID)

	// The insert payload derives labels and attaches identity.
	assert.Equal(t, []string{"milk"}, remote.lastInsert.Labels)
	assert.Equal(t, datatypes.ColorDefault, remote.lastInsert.Color)
	assert.Equal(t, "user-1", remote.lastInsert.UserID)

	snap := s.Snapshot()
	require.Len(t, snap.Notes, 2)
	assert.Equal(t, "server-id", snap.Notes[0].ID, "new note must be at index 0")
}

func TestCreate_ZeroRowsIsContractViolation(t *testing.T) {
	remote := &fakeRemote{insertRows: []datatypes.Note{}}
	s := New(remote)
	s.notes = []datatypes.Note{note("n1", "existing", "")}

	_, err := s.Create(context.Background(), testSession(), "t", "c")
	assert.ErrorIs(t, err, ErrNoRowReturned)

	snap := s.Snapshot()
	require.Len(t, snap.Notes, 1, "list must be left unmodified")
}

func TestUpdate_ReplacesInPlace(t *testing.T) {
	updated := note("n2", "edited", "now with #tags", "tags")
	remote := &fakeRemote{updateRows: []datatypes.Note{updated}}
	s := New(remote)
	s.notes = []datatypes.Note{note("n3", "third", ""), note("n2", "second", ""), note("n1", "first", "")}

	input := note("n2", "edited", "now with #Tags")
	input.Labels = []string{"hand-supplied", "ignored"}
	got, err := s.Update(context.Background(), testSession(), input)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Title)

	// Labels on the input are ignored; the patch carries the derived set.
	assert.Equal(t, []string{"tags"}, remote.lastPatch.Labels)
	assert.Equal(t, "n2", remote.lastUpdateID)

	snap := s.Snapshot()
	require.Len(t, snap.Notes, 3)
	assert.Equal(t, "n3", snap.Notes[0].ID, "other entries keep value and position")
	assert.Equal(t, "edited", snap.Notes[1].Title)
	assert.Equal(t, "first", snap.Notes[2].Title)
}

func TestUpdate_ZeroRowsLeavesListUntouched(t *testing.T) {
	remote := &fakeRemote{updateRows: []datatypes.Note{}}
	s := New(remote)
	s.notes = []datatypes.Note{note("n1", "original", "")}

	_, err := s.Update(context.Background(), testSession(), note("n1", "edited", ""))
	assert.ErrorIs(t, err, ErrNoRowReturned)

	snap := s.Snapshot()
	assert.Equal(t, "original", snap.Notes[0].Title)
}

func TestDelete_RemovesEntry(t *testing.T) {
	remote := &fakeRemote{}
	s := New(remote)
	s.notes = []datatypes.Note{note("n2", "second", ""), note("n1", "first", "")}

	require.NoError(t, s.Delete(context.Background(), testSession(), "n2"))

	snap := s.Snapshot()
	require.Len(t, snap.Notes, 1)
	assert.Equal(t, "n1", snap.Notes[0].ID)
	assert.Equal(t, []string{"n2"}, remote.deletedIDs)
}

func TestDelete_AbsentIDIsNoOp(t *testing.T) {
	remote := &fakeRemote{}
	s := New(remote)
	s.notes = []datatypes.Note{note("n1", "first", "")}

	require.NoError(t, s.Delete(context.Background(), testSession(), "missing"))

	snap := s.Snapshot()
	require.Len(t, snap.Notes, 1)
}

func TestDelete_RemoteFailureKeepsEntry(t *testing.T) {
	remote := &fakeRemote{deleteErr: errors.New("boom")}
	s := New(remote)
	s.notes = []datatypes.Note{note("n1", "first", "")}

	require.Error(t, s.Delete(context.Background(), testSession(), "n1"))
	assert.Len(t, s.Snapshot().Notes, 1)
}

func TestSubscribe_NotifiesAndUnsubscribes(t *testing.T) {
	remote := &fakeRemote{listRows: []datatypes.Note{note("n1", "first", "")}}
	s := New(remote)

	var mu sync.Mutex
	var seen []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap)
		mu.Unlock()
	})

	require.NoError(t, s.Fetch(context.Background(), testSession()))

	mu.Lock()
	count := len(seen)
	last := seen[count-1]
	mu.Unlock()
	assert.GreaterOrEqual(t, count, 2, "loading and succeeded transitions both notify")
	assert.Equal(t, StatusSucceeded, last.Status)

	unsubscribe()
	s.Clear()
	mu.Lock()
	assert.Equal(t, count, len(seen), "no notifications after unsubscribe")
	mu.Unlock()
}

func TestClear(t *testing.T) {
	s := New(&fakeRemote{})
	s.notes = []datatypes.Note{note("n1", "first", "")}
	s.status = StatusSucceeded

	s.Clear()

	snap := s.Snapshot()
	assert.Empty(t, snap.Notes)
	assert.Equal(t, StatusIdle, snap.Status)
}

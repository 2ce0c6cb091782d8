// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store holds the in-memory note collection and the asynchronous
// actions that keep it in sync with the Remote Data Service.
//
// The store is the only writer of the note list. Every action mutates the
// list exclusively in its success branch: a failed fetch, create, update
// or delete leaves previously loaded state untouched. Fetch replaces the
// list wholesale with the server's result set (authoritative replace, not
// a merge); create prepends the server-confirmed row; update swaps the
// matching entry in place; delete removes it.
//
// Only Fetch drives the store-level status machine
// (idle → loading → succeeded/failed). Create, update and delete report
// their own errors to the caller without touching the status field.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/notespro/notespro/pkg/labels"
	"github.com/notespro/notespro/services/notespro/datatypes"
	"github.com/notespro/notespro/services/supabase"
)

// Status is the fetch lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var (
	// ErrNotSignedIn is returned by Create before any network call when
	// there is no authenticated session.
	ErrNotSignedIn = errors.New("please sign in to create notes")

	// ErrNoRowReturned means the Remote Data Service acknowledged an
	// insert or update but returned no row. That is a contract
	// violation, not a silent success.
	ErrNoRowReturned = errors.New("service returned no row for a write")
)

// missingTableGuidance replaces the raw PostgREST error when the notes
// relation does not exist in the project.
const missingTableGuidance = "Database setup needed: the 'notes' table is missing. " +
	"Run docs/schema.sql in your Supabase project's SQL editor to create it, " +
	"then retry."

// NotesService is what the store needs from the Remote Data Service.
// *supabase.Client satisfies it; tests inject fakes.
type NotesService interface {
	ListNotes(ctx context.Context, token, userID string) ([]datatypes.Note, error)
	InsertNote(ctx context.Context, token string, row datatypes.NewNote) ([]datatypes.Note, error)
	UpdateNote(ctx context.Context, token, id string, patch datatypes.NotePatch) ([]datatypes.Note, error)
	DeleteNote(ctx context.Context, token, id string) error
}

// Snapshot is an immutable view of store state handed to subscribers and
// read by the projection layer.
type Snapshot struct {
	Notes  []datatypes.Note `json:"notes"`
	Status Status           `json:"status"`
	Error  string           `json:"error,omitempty"`
}

// Store owns the in-memory note list. Create one per process and pass it
// explicitly to whatever composes the surface; there is no package-level
// instance.
type Store struct {
	remote NotesService

	mu       sync.Mutex
	notes    []datatypes.Note
	status   Status
	errMsg   string
	fetchGen uint64

	subMu       sync.Mutex
	subscribers map[string]func(Snapshot)
}

// New creates an idle, empty store backed by remote.
func New(remote NotesService) *Store {
	return &Store{
		remote:      remote,
		notes:       []datatypes.Note{},
		status:      StatusIdle,
		subscribers: make(map[string]func(Snapshot)),
	}
}

// Subscribe registers fn to run after every state change. It returns an
// unsubscribe function. Subscribers must not block; the WebSocket hub
// buffers on its side.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	id := uuid.NewString()
	s.subMu.Lock()
	s.subscribers[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	notes := make([]datatypes.Note, len(s.notes))
	copy(notes, s.notes)
	return Snapshot{Notes: notes, Status: s.status, Error: s.errMsg}
}

// notify fans the current snapshot out to subscribers. Called after the
// store mutex is released.
func (s *Store) notify() {
	snap := s.Snapshot()
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// Fetch loads the caller's notes, newest first, and replaces the list
// wholesale. With no authenticated session it yields an empty list
// without a network call — that is a successful empty result, not an
// error. A fetch superseded by a newer one discards its response instead
// of clobbering the list.
func (s *Store) Fetch(ctx context.Context, session *datatypes.UserSession) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.fetchGen++
	gen := s.fetchGen
	s.mu.Unlock()
	s.notify()

	if session == nil {
		s.mu.Lock()
		if gen == s.fetchGen {
			s.notes = []datatypes.Note{}
			s.status = StatusSucceeded
			s.errMsg = ""
		}
		s.mu.Unlock()
		s.notify()
		return nil
	}

	rows, err := s.remote.ListNotes(ctx, session.AccessToken, session.User.ID)

	s.mu.Lock()
	if gen != s.fetchGen {
		s.mu.Unlock()
		slog.Debug("Discarding stale fetch response", "generation", gen)
		return nil
	}
	if err != nil {
		s.status = StatusFailed
		s.errMsg = rewriteFetchError(err)
		s.mu.Unlock()
		s.notify()
		slog.Error("Fetch failed", "error", err)
		return err
	}
	if rows == nil {
		rows = []datatypes.Note{}
	}
	s.notes = rows
	s.status = StatusSucceeded
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
	slog.Info("Fetched notes", "count", len(rows))
	return nil
}

// Create inserts a new note for the session's user and prepends the
// server-confirmed row. There is no optimistic insert: the list reflects
// the note only after the round trip succeeds.
func (s *Store) Create(ctx context.Context, session *datatypes.UserSession, title, content string) (datatypes.Note, error) {
	if session == nil {
		return datatypes.Note{}, ErrNotSignedIn
	}

	row := datatypes.NewNote{
		Title:   title,
		Content: content,
		Labels:  labels.Extract(content),
		Color:   datatypes.ColorDefault,
		UserID:  session.User.ID,
	}
	rows, err := s.remote.InsertNote(ctx, session.AccessToken, row)
	if err != nil {
		return datatypes.Note{}, err
	}
	if len(rows) == 0 {
		return datatypes.Note{}, ErrNoRowReturned
	}

	created := rows[0]
	s.mu.Lock()
	s.notes = append([]datatypes.Note{created}, s.notes...)
	s.mu.Unlock()
	s.notify()
	slog.Info("Created note", "id", created.ID, "labels", len(created.Labels))
	return created, nil
}

// Update re-derives labels from the note's content, sends the partial
// update keyed by id, and swaps the confirmed row in place. Any labels on
// the input are ignored. Order and all other entries are unchanged.
func (s *Store) Update(ctx context.Context, session *datatypes.UserSession, note datatypes.Note) (datatypes.Note, error) {
	token := ""
	if session != nil {
		token = session.AccessToken
	}

	patch := datatypes.NotePatch{
		Title:   note.Title,
		Content: note.Content,
		Labels:  labels.Extract(note.Content),
		Color:   note.Color,
	}
	rows, err := s.remote.UpdateNote(ctx, token, note.ID, patch)
	if err != nil {
		return datatypes.Note{}, err
	}
	if len(rows) == 0 {
		return datatypes.Note{}, ErrNoRowReturned
	}

	updated := rows[0]
	s.mu.Lock()
	for i := range s.notes {
		if s.notes[i].ID == updated.ID {
			s.notes[i] = updated
			break
		}
	}
	s.mu.Unlock()
	s.notify()
	return updated, nil
}

// Delete removes the note keyed by id. Removal of an id that is not in
// the list is a no-op, not an error.
func (s *Store) Delete(ctx context.Context, session *datatypes.UserSession, id string) error {
	token := ""
	if session != nil {
		token = session.AccessToken
	}
	if err := s.remote.DeleteNote(ctx, token, id); err != nil {
		return err
	}

	s.mu.Lock()
	removed := false
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()
	if removed {
		s.notify()
	}
	return nil
}

// Clear empties the list and resets the status to idle. The session
// wiring calls this on sign-out so a signed-out surface never shows the
// previous user's notes.
func (s *Store) Clear() {
	s.mu.Lock()
	s.notes = []datatypes.Note{}
	s.status = StatusIdle
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
}

// rewriteFetchError maps the recognized missing-table signature to setup
// guidance; every other failure passes through as its own message.
func rewriteFetchError(err error) string {
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) && apiErr.IsMissingTable() {
		return missingTableGuidance
	}
	return err.Error()
}

// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Shared fakes and helpers for handler tests.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/notespro/notespro/services/llm"
	"github.com/notespro/notespro/services/notespro/datatypes"
	"github.com/notespro/notespro/services/notespro/session"
	"github.com/notespro/notespro/services/notespro/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeNotes implements store.NotesService in memory.
type fakeNotes struct {
	notes     []datatypes.Note
	listErr   error
	insertErr error
	updateErr error
	deleteErr error
}

func (f *fakeNotes) ListNotes(_ context.Context, _, _ string) ([]datatypes.Note, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.notes, nil
}

func (f *fakeNotes) InsertNote(_ context.Context, _ string, row datatypes.NewNote) ([]datatypes.Note, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return []datatypes.Note{{
		ID:        "generated-id",
		CreatedAt: time.Now(),
		Title:     row.Title,
		Content:   row.Content,
		Labels:    row.Labels,
		Color:     row.Color,
		UserID:    row.UserID,
	}}, nil
}

func (f *fakeNotes) UpdateNote(_ context.Context, _, id string, patch datatypes.NotePatch) ([]datatypes.Note, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return []datatypes.Note{{
		ID:      id,
		Title:   patch.Title,
		Content: patch.Content,
		Labels:  patch.Labels,
		Color:   patch.Color,
	}}, nil
}

func (f *fakeNotes) DeleteNote(_ context.Context, _, _ string) error {
	return f.deleteErr
}

// fakeAuth implements session.AuthService.
type fakeAuth struct {
	user       datatypes.User
	userErr    error
	refreshErr error
}

func (f *fakeAuth) RefreshSession(_ context.Context, refreshToken string) (*datatypes.UserSession, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &datatypes.UserSession{
		User:         f.user,
		AccessToken:  "refreshed-access",
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeAuth) User(_ context.Context, _ string) (datatypes.User, error) {
	if f.userErr != nil {
		return datatypes.User{}, f.userErr
	}
	return f.user, nil
}

func (f *fakeAuth) Logout(_ context.Context, _ string) error { return nil }

// fakeLLM implements llm.LLMClient.
type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Generate(_ context.Context, _ string, _ llm.GenerationParams) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// signedInManager returns a manager already holding a session for user.
func signedInManager(t *testing.T, auth *fakeAuth) *session.Manager {
	t.Helper()
	m := session.NewManager(auth, nil)
	_, err := m.CompleteSignIn(context.Background(), "access-token", "refresh-token", 3600)
	require.NoError(t, err)
	return m
}

// loadedStore returns a store whose list already holds the fake's notes.
func loadedStore(t *testing.T, remote *fakeNotes, sessions *session.Manager) *store.Store {
	t.Helper()
	st := store.New(remote)
	require.NoError(t, st.Fetch(context.Background(), sessions.Current()))
	return st
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

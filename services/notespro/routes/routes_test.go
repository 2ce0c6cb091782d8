// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notespro/notespro/services/llm"
	"github.com/notespro/notespro/services/notespro/assist"
	"github.com/notespro/notespro/services/notespro/datatypes"
	"github.com/notespro/notespro/services/notespro/session"
	"github.com/notespro/notespro/services/notespro/store"
	"github.com/notespro/notespro/services/supabase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockLLMClient struct{}

func (m *mockLLMClient) Generate(_ context.Context, _ string, _ llm.GenerationParams) (string, error) {
	return "mock response", nil
}

type mockRemote struct{}

func (m *mockRemote) ListNotes(_ context.Context, _, _ string) ([]datatypes.Note, error) {
	return nil, nil
}

func (m *mockRemote) InsertNote(_ context.Context, _ string, _ datatypes.NewNote) ([]datatypes.Note, error) {
	return nil, nil
}

func (m *mockRemote) UpdateNote(_ context.Context, _, _ string, _ datatypes.NotePatch) ([]datatypes.Note, error) {
	return nil, nil
}

func (m *mockRemote) DeleteNote(_ context.Context, _, _ string) error { return nil }

type mockAuth struct{}

func (m *mockAuth) RefreshSession(_ context.Context, _ string) (*datatypes.UserSession, error) {
	return nil, nil
}

func (m *mockAuth) User(_ context.Context, _ string) (datatypes.User, error) {
	return datatypes.User{}, nil
}

func (m *mockAuth) Logout(_ context.Context, _ string) error { return nil }

func testDeps(t *testing.T) Deps {
	t.Helper()
	client, err := supabase.NewClient(supabase.Config{
		URL:     "https://project.supabase.co",
		AnonKey: "anon-key",
	})
	require.NoError(t, err)

	return Deps{
		Store:     store.New(&mockRemote{}),
		Sessions:  session.NewManager(&mockAuth{}, nil),
		Supabase:  client,
		Assistant: assist.New(&mockLLMClient{}),
	}
}

func TestSetupRoutes_RegistersCoreRoutes(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, testDeps(t))

	expected := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"GET", "/v1/auth/sign-in"},
		{"POST", "/v1/auth/callback"},
		{"POST", "/v1/auth/sign-out"},
		{"GET", "/v1/session"},
		{"GET", "/v1/notes"},
		{"POST", "/v1/notes"},
		{"POST", "/v1/notes/refresh"},
		{"PUT", "/v1/notes/:id"},
		{"DELETE", "/v1/notes/:id"},
		{"GET", "/v1/labels"},
		{"POST", "/v1/assist/generate"},
		{"POST", "/v1/assist/ask"},
		{"GET", "/v1/events"},
	}

	routes := router.Routes()
	for _, want := range expected {
		found := false
		for _, r := range routes {
			if r.Method == want.method && r.Path == want.path {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected route %s %s not found", want.method, want.path)
		}
	}
}

func TestSetupRoutes_HealthEndpoint(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, testDeps(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestSetupRoutes_NoUIDirSkipsStatic(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, testDeps(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ui/index.html", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notespro/notespro/services/notespro/datatypes"
)

func dialEvents(t *testing.T, router *gin.Engine) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/events"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, ws.ReadJSON(&ev))
	return ev
}

func TestEvents_InitialStateOnConnect(t *testing.T) {
	sessions := signedInManager(t, &fakeAuth{user: datatypes.User{ID: "user-1"}})
	st := loadedStore(t, &fakeNotes{notes: sampleNotes()}, sessions)

	router := gin.New()
	router.GET("/v1/events", Events(st, sessions, nil))
	ws := dialEvents(t, router)

	first := readEvent(t, ws)
	assert.Equal(t, "session", first.Type)
	assert.True(t, first.SignedIn)
	require.NotNil(t, first.Session)
	assert.Equal(t, "user-1", first.Session.User.ID)

	second := readEvent(t, ws)
	assert.Equal(t, "notes", second.Type)
	require.NotNil(t, second.Notes)
	assert.Len(t, second.Notes.Notes, 3)
}

func TestEvents_StoreChangePushed(t *testing.T) {
	sessions := signedInManager(t, &fakeAuth{user: datatypes.User{ID: "user-1"}})
	st := loadedStore(t, &fakeNotes{notes: sampleNotes()}, sessions)

	router := gin.New()
	router.GET("/v1/events", Events(st, sessions, nil))
	ws := dialEvents(t, router)

	// Drain the initial pair.
	readEvent(t, ws)
	readEvent(t, ws)

	st.Clear()

	ev := readEvent(t, ws)
	assert.Equal(t, "notes", ev.Type)
	require.NotNil(t, ev.Notes)
	assert.Empty(t, ev.Notes.Notes)
}

func TestEvents_SignOutPushed(t *testing.T) {
	sessions := signedInManager(t, &fakeAuth{user: datatypes.User{ID: "user-1"}})
	st := loadedStore(t, &fakeNotes{notes: sampleNotes()}, sessions)

	router := gin.New()
	router.GET("/v1/events", Events(st, sessions, nil))
	ws := dialEvents(t, router)

	readEvent(t, ws)
	readEvent(t, ws)

	sessions.SignOut(t.Context())

	ev := readEvent(t, ws)
	assert.Equal(t, "session", ev.Type)
	assert.False(t, ev.SignedIn)
	assert.Nil(t, ev.Session)
}

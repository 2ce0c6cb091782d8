// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/notespro/notespro/services/notespro/datatypes"
	"github.com/notespro/notespro/services/notespro/observability"
	"github.com/notespro/notespro/services/notespro/session"
	"github.com/notespro/notespro/services/notespro/store"
)

// Event is one message on the /v1/events stream. Type is "notes" or
// "session"; Session is nil for a signed-out emission.
type Event struct {
	Type     string          `json:"type"`
	Notes    *store.Snapshot `json:"notes,omitempty"`
	Session  *sessionView    `json:"session,omitempty"`
	SignedIn bool            `json:"signed_in"`
}

// sessionView is the subscriber-safe projection of a session: identity
// only, never tokens.
type sessionView struct {
	User      datatypes.User `json:"user"`
	ExpiresAt time.Time      `json:"expires_at"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Same-process UI; the gateway binds to loopback by default.
		return true
	},
}

const writeWait = 5 * time.Second

// eventBuffer is how many emissions a slow client may fall behind
// before being dropped.
const eventBuffer = 16

// Events upgrades to a WebSocket and streams store and session
// snapshots. The current state of both is sent immediately on connect,
// then every change until the client goes away. A client that cannot
// keep up is disconnected rather than allowed to block the fan-out.
func Events(st *store.Store, sessions *session.Manager, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("Failed to upgrade event stream", "error", err)
			return
		}
		defer ws.Close()
		slog.Info("Event stream client connected", "remote", ws.RemoteAddr())

		if metrics != nil {
			metrics.EventSubscribers.Inc()
			defer metrics.EventSubscribers.Dec()
		}

		events := make(chan Event, eventBuffer)
		drop := func(ev Event) {
			select {
			case events <- ev:
			default:
				slog.Warn("Event stream client too slow, dropping event")
			}
		}

		unsubStore := st.Subscribe(func(snap store.Snapshot) {
			drop(notesEvent(snap, sessions.Current()))
		})
		defer unsubStore()
		unsubSession := sessions.Subscribe(func(sess *datatypes.UserSession) {
			drop(sessionEvent(sess))
		})
		defer unsubSession()

		// Initial state so a client never renders blind.
		snap := st.Snapshot()
		cur := sessions.Current()
		drop(sessionEvent(cur))
		drop(notesEvent(snap, cur))

		// Reader detects close; nothing inbound is expected.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				slog.Info("Event stream client disconnected")
				return
			case <-c.Request.Context().Done():
				return
			case ev := <-events:
				ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := ws.WriteJSON(ev); err != nil {
					slog.Warn("Failed to write event", "error", err)
					return
				}
			}
		}
	}
}

func notesEvent(snap store.Snapshot, sess *datatypes.UserSession) Event {
	return Event{Type: "notes", Notes: &snap, SignedIn: sess != nil}
}

func sessionEvent(sess *datatypes.UserSession) Event {
	ev := Event{Type: "session", SignedIn: sess != nil}
	if sess != nil {
		ev.Session = &sessionView{User: sess.User, ExpiresAt: sess.ExpiresAt}
	}
	return ev
}

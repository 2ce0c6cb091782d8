// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package session synchronizes the process's authenticated identity with
// the auth provider.
//
// The Manager owns Session State: it restores a persisted provider
// session at startup, completes redirect-based OAuth sign-ins, refreshes
// the access token before expiry, and publishes every atomic session
// replacement to subscribers. The store wiring subscribes to trigger a
// fetch when a new identity appears and to clear the note list on
// sign-out.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notespro/notespro/services/notespro/datatypes"
)

// refreshMargin is how long before expiry the access token is renewed.
const refreshMargin = time.Minute

// AuthService is what the manager needs from the Remote Data Service's
// auth API. *supabase.Client satisfies it.
type AuthService interface {
	RefreshSession(ctx context.Context, refreshToken string) (*datatypes.UserSession, error)
	User(ctx context.Context, token string) (datatypes.User, error)
	Logout(ctx context.Context, token string) error
}

// Manager owns the current session and its subscriber fan-out.
type Manager struct {
	auth   AuthService
	tokens *TokenStore

	mu      sync.Mutex
	session *datatypes.UserSession

	subMu       sync.Mutex
	subscribers map[string]func(*datatypes.UserSession)

	wake chan struct{}
}

// NewManager creates a signed-out manager. tokens may be nil, in which
// case nothing survives a restart.
func NewManager(auth AuthService, tokens *TokenStore) *Manager {
	return &Manager{
		auth:        auth,
		tokens:      tokens,
		subscribers: make(map[string]func(*datatypes.UserSession)),
		wake:        make(chan struct{}, 1),
	}
}

// Current returns the session, or nil when unauthenticated.
func (m *Manager) Current() *datatypes.UserSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copy := *m.session
	return &copy
}

// Subscribe registers fn on the auth-state change stream. Every emission
// replaces Session State atomically; fn receives nil on sign-out. The
// returned function unsubscribes.
func (m *Manager) Subscribe(fn func(*datatypes.UserSession)) (unsubscribe func()) {
	id := uuid.NewString()
	m.subMu.Lock()
	m.subscribers[id] = fn
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.subscribers, id)
		m.subMu.Unlock()
	}
}

// Start restores any persisted provider session and publishes the
// result. A failed restore (expired or revoked token) signs the process
// out rather than erroring: the user simply signs in again.
func (m *Manager) Start(ctx context.Context) error {
	if m.tokens == nil {
		m.publish(nil, false)
		return nil
	}
	token, ok, err := m.tokens.Load()
	if err != nil {
		return err
	}
	if !ok {
		m.publish(nil, false)
		return nil
	}

	restored, err := m.auth.RefreshSession(ctx, token)
	if err != nil {
		slog.Warn("Persisted session could not be restored, signing out", "error", err)
		if err := m.tokens.Clear(); err != nil {
			slog.Error("Failed to clear stale refresh token", "error", err)
		}
		m.publish(nil, false)
		return nil
	}
	slog.Info("Restored persisted session", "user_id", restored.User.ID)
	m.publish(restored, true)
	return nil
}

// Run keeps the access token fresh until ctx is canceled. Each
// successful refresh is an auth-state emission; a failed refresh signs
// out locally (the provider session is gone either way).
func (m *Manager) Run(ctx context.Context) error {
	for {
		wait := time.Hour
		if cur := m.Current(); cur != nil && !cur.ExpiresAt.IsZero() {
			wait = time.Until(cur.ExpiresAt.Add(-refreshMargin))
			if wait < 0 {
				wait = 0
			}
		}
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-m.wake:
			timer.Stop()
			continue
		case <-timer.C:
		}

		cur := m.Current()
		if cur == nil {
			continue
		}
		refreshed, err := m.auth.RefreshSession(ctx, cur.RefreshToken)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("Session refresh failed, signing out", "error", err)
			m.clearPersisted()
			m.publish(nil, false)
			continue
		}
		slog.Debug("Session refreshed", "user_id", refreshed.User.ID)
		m.publish(refreshed, true)
	}
}

// CompleteSignIn finishes a redirect-based OAuth round trip: the UI hands
// over the tokens from the provider redirect, the manager resolves the
// identity behind them and publishes the new session.
func (m *Manager) CompleteSignIn(ctx context.Context, accessToken, refreshToken string, expiresIn int) (*datatypes.UserSession, error) {
	user, err := m.auth.User(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	sess := &datatypes.UserSession{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if expiresIn > 0 {
		sess.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	slog.Info("Sign-in complete", "user_id", user.ID)
	m.publish(sess, true)
	return m.Current(), nil
}

// SignOut revokes the provider session (best-effort), clears the
// persisted token and publishes nil.
func (m *Manager) SignOut(ctx context.Context) {
	cur := m.Current()
	if cur != nil {
		if err := m.auth.Logout(ctx, cur.AccessToken); err != nil {
			slog.Warn("Provider logout failed, continuing local sign-out", "error", err)
		}
	}
	m.clearPersisted()
	m.publish(nil, false)
	slog.Info("Signed out")
}

func (m *Manager) clearPersisted() {
	if m.tokens == nil {
		return
	}
	if err := m.tokens.Clear(); err != nil {
		slog.Error("Failed to clear refresh token", "error", err)
	}
}

// publish atomically replaces the session, persists the refresh token
// when asked, wakes the refresh loop and fans out to subscribers.
func (m *Manager) publish(sess *datatypes.UserSession, persist bool) {
	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()

	if persist && sess != nil && m.tokens != nil && sess.RefreshToken != "" {
		if err := m.tokens.Save(sess.RefreshToken); err != nil {
			slog.Error("Failed to persist refresh token", "error", err)
		}
	}

	select {
	case m.wake <- struct{}{}:
	default:
	}

	m.subMu.Lock()
	fns := make([]func(*datatypes.UserSession), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		var copySess *datatypes.UserSession
		if sess != nil {
			c := *sess
			copySess = &c
		}
		fn(copySess)
	}
}

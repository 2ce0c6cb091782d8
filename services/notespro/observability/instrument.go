// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"context"

	"github.com/notespro/notespro/services/notespro/datatypes"
	"github.com/notespro/notespro/services/notespro/session"
	"github.com/notespro/notespro/services/notespro/store"
)

// NotesRecorder decorates a store.NotesService with call metrics.
type NotesRecorder struct {
	Next    store.NotesService
	Metrics *Metrics
}

func (r *NotesRecorder) ListNotes(ctx context.Context, token, userID string) ([]datatypes.Note, error) {
	rows, err := r.Next.ListNotes(ctx, token, userID)
	r.Metrics.RecordRemoteCall("list", err)
	if err == nil {
		r.Metrics.NotesFetchedTotal.Add(float64(len(rows)))
	}
	return rows, err
}

func (r *NotesRecorder) InsertNote(ctx context.Context, token string, row datatypes.NewNote) ([]datatypes.Note, error) {
	rows, err := r.Next.InsertNote(ctx, token, row)
	r.Metrics.RecordRemoteCall("insert", err)
	return rows, err
}

func (r *NotesRecorder) UpdateNote(ctx context.Context, token, id string, patch datatypes.NotePatch) ([]datatypes.Note, error) {
	rows, err := r.Next.UpdateNote(ctx, token, id, patch)
	r.Metrics.RecordRemoteCall("update", err)
	return rows, err
}

func (r *NotesRecorder) DeleteNote(ctx context.Context, token, id string) error {
	err := r.Next.DeleteNote(ctx, token, id)
	r.Metrics.RecordRemoteCall("delete", err)
	return err
}

// AuthRecorder decorates a session.AuthService with refresh metrics.
type AuthRecorder struct {
	Next    session.AuthService
	Metrics *Metrics
}

func (r *AuthRecorder) RefreshSession(ctx context.Context, refreshToken string) (*datatypes.UserSession, error) {
	sess, err := r.Next.RefreshSession(ctx, refreshToken)
	r.Metrics.RecordRefresh(err == nil)
	return sess, err
}

func (r *AuthRecorder) User(ctx context.Context, token string) (datatypes.User, error) {
	user, err := r.Next.User(ctx, token)
	r.Metrics.RecordRemoteCall("user", err)
	return user, err
}

func (r *AuthRecorder) Logout(ctx context.Context, token string) error {
	err := r.Next.Logout(ctx, token)
	r.Metrics.RecordRemoteCall("logout", err)
	return err
}

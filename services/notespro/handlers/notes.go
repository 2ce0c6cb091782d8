// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers exposes the note store, session manager and
// assistant over HTTP.
//
// Handlers are closure factories taking their dependencies explicitly,
// so tests can wire fakes without a registry. Error mapping is uniform:
// a missing session on a write is 401, malformed input is 400, and a
// Remote Data Service failure is 502 with the rewritten message the
// store produced.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notespro/notespro/services/notespro/datatypes"
	"github.com/notespro/notespro/services/notespro/session"
	"github.com/notespro/notespro/services/notespro/store"
	"github.com/notespro/notespro/services/supabase"
)

// CreateNoteRequest is the body for POST /v1/notes.
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateNoteRequest is the body for PUT /v1/notes/:id. Labels are not
// accepted: they are always re-derived from content.
type UpdateNoteRequest struct {
	Title   string          `json:"title"`
	Content string          `json:"content"`
	Color   datatypes.Color `json:"color"`
}

// ListNotes returns the filter projection of the current list along
// with the fetch status. Query params: q (substring search) and label.
func ListNotes(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := datatypes.Filter{
			SearchQuery:   c.Query("q"),
			SelectedLabel: c.Query("label"),
		}
		snap := st.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"notes":  store.Project(snap.Notes, filter),
			"status": snap.Status,
			"error":  snap.Error,
		})
	}
}

// RefreshNotes triggers a fetch against the Remote Data Service and
// returns the resulting snapshot. With no session this yields an empty
// succeeded list, mirroring the store's semantics.
func RefreshNotes(st *store.Store, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := st.Fetch(c.Request.Context(), sessions.Current()); err != nil {
			snap := st.Snapshot()
			c.JSON(http.StatusBadGateway, gin.H{"error": snap.Error, "status": snap.Status})
			return
		}
		snap := st.Snapshot()
		c.JSON(http.StatusOK, gin.H{"notes": snap.Notes, "status": snap.Status})
	}
}

// CreateNote inserts a note for the signed-in user and returns the
// server-confirmed row.
func CreateNote(st *store.Store, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateNoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		created, err := st.Create(c.Request.Context(), sessions.Current(), req.Title, req.Content)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// UpdateNote applies a partial update to the note keyed by the path id.
func UpdateNote(st *store.Store, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateNoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		color := req.Color
		if color == "" {
			color = datatypes.ColorDefault
		}
		if !color.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown color: " + string(color)})
			return
		}

		note := datatypes.Note{
			ID:      c.Param("id"),
			Title:   req.Title,
			Content: req.Content,
			Color:   color,
		}
		updated, err := st.Update(c.Request.Context(), sessions.Current(), note)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteNote removes the note keyed by the path id. Deleting an id the
// list does not hold still succeeds.
func DeleteNote(st *store.Store, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := st.Delete(c.Request.Context(), sessions.Current(), c.Param("id")); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": c.Param("id")})
	}
}

// ListLabels returns the distinct labels across the current list.
func ListLabels(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"labels": st.AllLabels()})
	}
}

// writeStoreError maps store and remote errors onto HTTP statuses.
func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotSignedIn):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNoRowReturned):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

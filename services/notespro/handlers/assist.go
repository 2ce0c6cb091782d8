// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/notespro/notespro/services/notespro/assist"
	"github.com/notespro/notespro/services/notespro/datatypes"
	"github.com/notespro/notespro/services/notespro/observability"
	"github.com/notespro/notespro/services/notespro/store"
)

// Generation modes for POST /v1/assist/generate.
const (
	// ModeAppend continues an existing note; the result is meant to be
	// appended to its content.
	ModeAppend = "append"

	// ModeReplace rewrites an existing note wholesale.
	ModeReplace = "replace"

	// ModeDraft writes initial content for a brand-new note.
	ModeDraft = "draft"
)

// GenerateRequest is the body for POST /v1/assist/generate. NoteID is
// required for append and replace; Title seeds a draft.
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Mode   string `json:"mode" binding:"required,oneof=append replace draft"`
	NoteID string `json:"note_id"`
	Title  string `json:"title"`
}

// AskRequest is the body for POST /v1/assist/ask.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// Generate produces text for a note. Failures inside the model surface
// as a polite apology with status 200: generation output is content,
// never a transport error.
func Generate(assistant *assist.Assistant, st *store.Store, limiter *rate.Limiter, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "generation rate limit exceeded, slow down"})
			return
		}

		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		noteContent := ""
		if req.Mode != ModeDraft {
			note, ok := findNote(st, req.NoteID)
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "no note with id " + req.NoteID})
				return
			}
			noteContent = note.Content
		}

		start := time.Now()
		var text string
		switch req.Mode {
		case ModeAppend:
			text = assistant.GenerateForNote(c.Request.Context(), req.Prompt, noteContent)
		case ModeReplace:
			text = assistant.GenerateReplacement(c.Request.Context(), req.Prompt, noteContent)
		case ModeDraft:
			text = assistant.GenerateInitialContent(c.Request.Context(), req.Title, req.Prompt)
		}

		if metrics != nil {
			metrics.RecordAssist(req.Mode, time.Since(start).Seconds(), text != assist.Apology)
		}
		c.JSON(http.StatusOK, gin.H{"text": text, "mode": req.Mode})
	}
}

// Ask answers a question grounded on every note currently in the list.
func Ask(assistant *assist.Assistant, st *store.Store, limiter *rate.Limiter, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "generation rate limit exceeded, slow down"})
			return
		}

		var req AskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		start := time.Now()
		text := assistant.AnswerFromNotes(c.Request.Context(), req.Question, st.Snapshot().Notes)
		if metrics != nil {
			metrics.RecordAssist("ask", time.Since(start).Seconds(), text != assist.Apology)
		}
		c.JSON(http.StatusOK, gin.H{"text": text})
	}
}

// findNote scans the current list for the given id.
func findNote(st *store.Store, id string) (datatypes.Note, bool) {
	for _, n := range st.Snapshot().Notes {
		if n.ID == id {
			return n, true
		}
	}
	return datatypes.Note{}, false
}

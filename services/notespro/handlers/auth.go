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

	"github.com/gin-gonic/gin"

	"github.com/notespro/notespro/services/notespro/session"
	"github.com/notespro/notespro/services/supabase"
)

// CallbackRequest carries the tokens the provider redirect handed to
// the UI. expires_in is seconds until the access token expires.
type CallbackRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
	ExpiresIn    int    `json:"expires_in"`
}

// SignIn redirects the browser to the provider's consent screen.
// Query param: provider (google or github).
func SignIn(auth *supabase.Client, redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := supabase.Provider(c.DefaultQuery("provider", string(supabase.ProviderGoogle)))
		target, err := auth.AuthorizeURL(provider, redirectTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Info("Redirecting to OAuth consent", "provider", provider)
		c.Redirect(http.StatusFound, target)
	}
}

// Callback finishes the OAuth round trip: the UI posts the tokens from
// the redirect fragment and the manager resolves the identity behind
// them.
func Callback(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CallbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		sess, err := sessions.CompleteSignIn(c.Request.Context(), req.AccessToken, req.RefreshToken, req.ExpiresIn)
		if err != nil {
			slog.Error("Sign-in failed", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in failed: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": sess.User})
	}
}

// SignOut revokes the provider session and clears local state.
func SignOut(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions.SignOut(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
	}
}

// Session reports the current identity: 200 with the user when signed
// in, 204 otherwise.
func Session(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cur := sessions.Current()
		if cur == nil {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": cur.User, "expires_at": cur.ExpiresAt})
	}
}

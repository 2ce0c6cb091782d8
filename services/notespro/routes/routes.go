// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/notespro/notespro/pkg/logging"
	"github.com/notespro/notespro/services/notespro/assist"
	"github.com/notespro/notespro/services/notespro/handlers"
	"github.com/notespro/notespro/services/notespro/middleware"
	"github.com/notespro/notespro/services/notespro/observability"
	"github.com/notespro/notespro/services/notespro/session"
	"github.com/notespro/notespro/services/notespro/store"
	"github.com/notespro/notespro/services/supabase"
)

// Deps carries everything the route tree needs.
type Deps struct {
	Logger    *logging.Logger
	Metrics   *observability.Metrics
	Store     *store.Store
	Sessions  *session.Manager
	Supabase  *supabase.Client
	Assistant *assist.Assistant

	// AssistLimiter throttles generative calls; nil disables limiting.
	AssistLimiter *rate.Limiter

	// RedirectTo is the OAuth callback URL handed to the provider.
	RedirectTo string

	// UIDir is served under /ui when the directory exists.
	UIDir string
}

// SetupRoutes wires the full route tree onto router.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.Use(gin.Recovery())
	if deps.Logger != nil {
		router.Use(middleware.RequestLogger(deps.Logger, deps.Metrics))
	}

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.UIDir != "" {
		if _, err := os.Stat(deps.UIDir); err == nil {
			router.StaticFS("/ui", http.Dir(deps.UIDir))
			router.GET("/", func(c *gin.Context) {
				c.Redirect(http.StatusMovedPermanently, "/ui/")
			})
		}
	}

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.GET("/sign-in", handlers.SignIn(deps.Supabase, deps.RedirectTo))
			auth.POST("/callback", handlers.Callback(deps.Sessions))
			auth.POST("/sign-out", handlers.SignOut(deps.Sessions))
		}
		v1.GET("/session", handlers.Session(deps.Sessions))

		v1.GET("/notes", handlers.ListNotes(deps.Store))
		v1.POST("/notes", handlers.CreateNote(deps.Store, deps.Sessions))
		v1.POST("/notes/refresh", handlers.RefreshNotes(deps.Store, deps.Sessions))
		v1.PUT("/notes/:id", handlers.UpdateNote(deps.Store, deps.Sessions))
		v1.DELETE("/notes/:id", handlers.DeleteNote(deps.Store, deps.Sessions))
		v1.GET("/labels", handlers.ListLabels(deps.Store))

		assistGroup := v1.Group("/assist")
		{
			assistGroup.POST("/generate", handlers.Generate(deps.Assistant, deps.Store, deps.AssistLimiter, deps.Metrics))
			assistGroup.POST("/ask", handlers.Ask(deps.Assistant, deps.Store, deps.AssistLimiter, deps.Metrics))
		}

		v1.GET("/events", handlers.Events(deps.Store, deps.Sessions, deps.Metrics))
	}
}

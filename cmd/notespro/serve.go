// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/notespro/notespro/pkg/logging"
	"github.com/notespro/notespro/services/llm"
	"github.com/notespro/notespro/services/notespro/assist"
	"github.com/notespro/notespro/services/notespro/config"
	"github.com/notespro/notespro/services/notespro/datatypes"
	"github.com/notespro/notespro/services/notespro/observability"
	"github.com/notespro/notespro/services/notespro/routes"
	"github.com/notespro/notespro/services/notespro/session"
	"github.com/notespro/notespro/services/notespro/store"
	"github.com/notespro/notespro/services/supabase"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		LogDir:  cfg.LogDir,
		Service: "gateway",
		JSON:    true,
	})
	defer logger.Close()

	metrics := observability.InitMetrics()

	remote, err := supabase.NewClient(supabase.Config{
		URL:     cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
	})
	if err != nil {
		return err
	}

	tokens, err := session.OpenTokenStore(session.StorageConfig{
		Path:   expandHome(cfg.StorageDir),
		Logger: logger.Slog(),
	})
	if err != nil {
		return err
	}
	defer tokens.Close()

	sessions := session.NewManager(&observability.AuthRecorder{Next: remote, Metrics: metrics}, tokens)
	st := store.New(&observability.NotesRecorder{Next: remote, Metrics: metrics})

	backend, err := llm.NewFromEnv()
	if err != nil {
		return err
	}
	assistant := assist.New(backend)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Auth-state drives the note list: a new identity triggers a fetch,
	// sign-out empties the list immediately. Emissions can arrive from
	// both the refresh loop and request handlers, hence the mutex.
	var identityMu sync.Mutex
	var lastUserID string
	unsubscribe := sessions.Subscribe(func(sess *datatypes.UserSession) {
		identityMu.Lock()
		defer identityMu.Unlock()
		if sess == nil {
			lastUserID = ""
			st.Clear()
			return
		}
		if sess.User.ID == lastUserID {
			return
		}
		lastUserID = sess.User.ID
		go func() {
			if err := st.Fetch(ctx, sess); err != nil {
				logger.Warn("Initial fetch after sign-in failed", "error", err)
			}
		}()
	})
	defer unsubscribe()

	if err := sessions.Start(ctx); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	routes.SetupRoutes(router, routes.Deps{
		Logger:        logger,
		Metrics:       metrics,
		Store:         st,
		Sessions:      sessions,
		Supabase:      remote,
		Assistant:     assistant,
		AssistLimiter: rate.NewLimiter(rate.Limit(cfg.AssistRPS), cfg.AssistBurst),
		RedirectTo:    strings.TrimSuffix(cfg.PublicURL, "/") + "/v1/auth/callback",
		UIDir:         cfg.UIDir,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return sessions.Run(groupCtx)
	})

	group.Go(func() error {
		logger.Info("Gateway listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// expandHome expands a leading ~ so the storage dir default works
// without shell interpolation.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

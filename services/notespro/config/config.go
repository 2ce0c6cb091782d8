// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads gateway configuration from the environment.
//
// LLM credentials are not here: each backend in services/llm reads its
// own provider variables, so swapping providers never touches gateway
// config.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config is the gateway's environment-driven configuration.
type Config struct {
	// Addr is the listen address for the HTTP gateway.
	Addr string `env:"NOTESPRO_ADDR" envDefault:":8080" validate:"required"`

	// PublicURL is the externally reachable base URL, used to build the
	// OAuth redirect target.
	PublicURL string `env:"NOTESPRO_PUBLIC_URL" envDefault:"http://localhost:8080" validate:"required,url"`

	// SupabaseURL is the Remote Data Service project URL.
	SupabaseURL string `env:"SUPABASE_URL" validate:"required,url"`

	// SupabaseAnonKey is the project's public API key. Also loadable
	// from /run/secrets/supabase_anon_key.
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY" validate:"required"`

	// StorageDir is where the persisted provider session lives.
	StorageDir string `env:"NOTESPRO_STORAGE_DIR" envDefault:"~/.notespro/session"`

	// UIDir is served under /ui when it exists.
	UIDir string `env:"NOTESPRO_UI_DIR" envDefault:"./ui"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `env:"NOTESPRO_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// LogDir enables file logging when set.
	LogDir string `env:"NOTESPRO_LOG_DIR"`

	// AssistRPS caps generative calls per second; AssistBurst is the
	// allowed burst above the sustained rate.
	AssistRPS   float64 `env:"NOTESPRO_ASSIST_RPS" envDefault:"1" validate:"gt=0"`
	AssistBurst int     `env:"NOTESPRO_ASSIST_BURST" envDefault:"3" validate:"gte=1"`
}

// Load parses and validates the environment. The anon key falls back to
// a mounted secret file before validation fails.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}

	if cfg.SupabaseAnonKey == "" {
		if content, err := os.ReadFile("/run/secrets/supabase_anon_key"); err == nil {
			cfg.SupabaseAnonKey = strings.TrimSpace(string(content))
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

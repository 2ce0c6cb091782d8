// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// refreshTokenKey is the only key the gateway persists. Notes are never
// stored locally; the embedded database exists solely so a provider
// session survives process restarts, the way a browser client keeps one
// in local storage.
var refreshTokenKey = []byte("session/refresh_token")

// StorageConfig configures the embedded session database.
type StorageConfig struct {
	// Path is the directory for database files. Required unless InMemory.
	Path string

	// InMemory skips disk persistence. Used by tests.
	InMemory bool

	// Logger receives badger's internal logging. Nil disables it.
	Logger *slog.Logger
}

// TokenStore persists the provider refresh token across restarts.
type TokenStore struct {
	db *badger.DB
}

// badgerLogger adapts slog to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenTokenStore opens (creating if needed) the session database.
// Callers must Close it.
func OpenTokenStore(cfg StorageConfig) (*TokenStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("session: storage path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("session: create storage dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("session: open storage: %w", err)
	}
	return &TokenStore{db: db}, nil
}

// Save stores the refresh token, replacing any previous one.
func (t *TokenStore) Save(refreshToken string) error {
	err := t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(refreshTokenKey, []byte(refreshToken))
	})
	if err != nil {
		return fmt.Errorf("session: persist refresh token: %w", err)
	}
	return nil
}

// Load returns the persisted refresh token, or ok=false when none is
// stored.
func (t *TokenStore) Load() (token string, ok bool, err error) {
	err = t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(refreshTokenKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			token = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session: load refresh token: %w", err)
	}
	return token, true, nil
}

// Clear removes the persisted token. Clearing an empty store is fine.
func (t *TokenStore) Clear() error {
	err := t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(refreshTokenKey)
	})
	if err != nil {
		return fmt.Errorf("session: clear refresh token: %w", err)
	}
	return nil
}

// Close releases the database.
func (t *TokenStore) Close() error {
	return t.db.Close()
}

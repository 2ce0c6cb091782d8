// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "notespro",
		Short: "Personal note taking with labels, filters and an AI assistant",
		Long: `NotesPro is a self-hosted gateway for personal notes.

It keeps your note list in memory, synchronized with a Supabase
project, and exposes it over a small HTTP API with live updates
and LLM-backed writing assistance.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE:  runServe, // Defined in serve.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("notespro %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

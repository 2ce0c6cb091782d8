// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the gateway.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/notespro/notespro/pkg/logging"
	"github.com/notespro/notespro/services/notespro/observability"
)

// requestIDKey is the Gin context key for the per-request ID.
const requestIDKey = "notespro_request_id"

// RequestIDHeader is echoed back to clients so log lines can be
// correlated with responses.
const RequestIDHeader = "X-Request-ID"

// RequestID returns the ID assigned to the current request, or "" if
// the logging middleware did not run.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger assigns each request a UUID, logs it on completion, and
// records request metrics. A client-supplied X-Request-ID is honored so
// IDs survive proxies.
func RequestLogger(logger *logging.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		if metrics != nil {
			metrics.RequestsTotal.WithLabelValues(c.Request.Method, route, statusClass(status)).Inc()
			metrics.RequestDurationSeconds.WithLabelValues(route).Observe(elapsed.Seconds())
		}

		log := logger.With(
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
		switch {
		case status >= 500:
			log.Error("request failed", "errors", c.Errors.String())
		case status >= 400:
			log.Warn("request rejected")
		default:
			log.Info("request completed")
		}
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

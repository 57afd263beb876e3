// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine so other packages may
// instantiate it with the slog based logging and recovery middlewares
// without importing the ginslog packages directly.
package gin

import (
	"log/slog"
	"slices"

	ginslogger "github.com/FabienMht/ginslog/logger"
	ginslogrecovery "github.com/FabienMht/ginslog/recovery"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

// New creates a gin engine without any default middleware and
// registers the given middlewares in order.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// Logger returns a middleware which logs one record per request
// using the l logger.
func Logger(l *slog.Logger) HandlerFunc {
	return ginslogger.New(l)
}

// Recovery returns a middleware which recovers from panics in the
// request handlers, logs them using l, and responds with a 500 status.
func Recovery(l *slog.Logger) HandlerFunc {
	return ginslogrecovery.New(l)
}

// Cors returns a middleware which answers the preflight requests and
// sets the Access-Control-Allow-Origin header for the given origins.
// All origins are allowed if origins is empty or contains "*".
func Cors(origins []string) HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

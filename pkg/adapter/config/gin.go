// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/logistica/roteirizacao/pkg/adapter/config/settings"
	"github.com/logistica/roteirizacao/pkg/adapter/restful/gin"
)

// Gin contains the HTTP server settings. Logger and Recovery are
// pointers, so missing items can be told apart from false values.
type Gin struct {
	Logger   *bool  // Whether to log requests via slog, defaults to false
	Recovery *bool  // Whether to recover handler panics, defaults to true
	Addr     string // TCP listen address, defaults to :4000
	Cors     Cors   // Cross-origin requests policy
}

// Cors lists the origins which browsers may call the API from.
// An empty list (or a "*" item) allows all origins.
type Cors struct {
	AllowOrigins []string `yaml:"allow-origins"`
}

func (g *Gin) validateAndNormalize() error {
	settings.Nil2Zero(&g.Logger)
	settings.OverwriteNil(&g.Recovery, ptr(true))
	if g.Addr == "" {
		g.Addr = ":4000"
	}
	for _, o := range g.Cors.AllowOrigins {
		if o == "*" {
			continue
		}
		if !strings.HasPrefix(o, "http://") &&
			!strings.HasPrefix(o, "https://") {
			return fmt.Errorf("bad cors origin: %q", o)
		}
	}
	return nil
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings. Middlewares log through the default slog logger,
// so SetupLogger should be called beforehand.
func (g Gin) NewEngine() *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 3)
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger(slog.Default()))
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery(slog.Default()))
	}
	middlewares = append(middlewares, gin.Cors(g.Cors.AllowOrigins))
	return gin.New(middlewares...)
}

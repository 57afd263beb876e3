// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// their registration on a gin-gonic engine.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/logistica/roteirizacao/pkg/adapter/restful/gin/healthrs"
	"github.com/logistica/roteirizacao/pkg/adapter/restful/gin/routesrs"
	"github.com/logistica/roteirizacao/pkg/core/usecase/healthuc"
	"github.com/logistica/roteirizacao/pkg/core/usecase/routesuc"
)

// Register instantiates the resources which adapt the given use cases
// with the REST APIs and registers them as request handlers using the
// e gin-gonic engine instance. Use cases are instantiated by the
// caller (see the config package), so tests may pass instances which
// are backed by in-memory repositories.
// Unknown paths and methods are answered by a JSON error body too.
func Register(
	e *gin.Engine, routes *routesuc.UseCase, health *healthuc.UseCase,
) {
	e.HandleMethodNotAllowed = true
	e.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recurso não encontrado"})
	})
	e.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "Método não permitido",
		})
	})
	routesrs.Register(e, routes)
	healthrs.Register(e, health)
}

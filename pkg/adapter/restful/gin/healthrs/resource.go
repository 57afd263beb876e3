// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package healthrs realizes the liveness resource.
package healthrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/logistica/roteirizacao/pkg/core/usecase/healthuc"
)

type resource struct {
	health *healthuc.UseCase
}

// Register adds the GET /health endpoint to r.
func Register(r gin.IRouter, health *healthuc.UseCase) {
	rs := &resource{health: health}
	r.GET("health", rs.Check)
}

func (rs *resource) Check(c *gin.Context) {
	c.JSON(http.StatusOK, rs.health.Check(c))
}

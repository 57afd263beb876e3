// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routesrs realizes the routes resource, allowing the routes
// manipulation REST APIs to be accepted and delegated to the
// routes use cases respectively.
package routesrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/logistica/roteirizacao/pkg/adapter/restful/gin/serdser"
	"github.com/logistica/roteirizacao/pkg/core/usecase/routesuc"
)

// MsgRouteDeleted confirms a successful route deletion.
const MsgRouteDeleted = "Rota removida com sucesso"

type resource struct {
	routes *routesuc.UseCase
}

// Register instantiates a resource adapting the routes use case
// instance with the relevant REST APIs including:
//  1. GET request to /rotas in order to list (and filter) routes,
//  2. POST request to /rota in order to create a route,
//  3. PUT request to /rotas/:id/status in order to move a route
//     along its status state machine,
//  4. DELETE request to /rotas/:id in order to remove a route,
//  5. GET request to /estatisticas/rotas for the aggregated stats.
func Register(r gin.IRouter, routes *routesuc.UseCase) {
	rs := &resource{routes: routes}
	r.GET("rotas", rs.List)
	r.POST("rota", rs.Create)
	r.PUT("rotas/:id/status", rs.UpdateStatus)
	r.DELETE("rotas/:id", rs.Delete)
	r.GET("estatisticas/rotas", rs.Stats)
}

func (rs *resource) List(c *gin.Context) {
	f, ok := rs.DserListReq(c)
	if !ok {
		return
	}
	routes, err := rs.routes.List(c, f)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rotas": routes,
		"total": len(routes),
	})
}

func (rs *resource) Create(c *gin.Context) {
	nr, ok := rs.DserCreateReq(c)
	if !ok {
		return
	}
	route, msg, err := rs.routes.Create(c, nr)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"mensagem": msg,
		"rota":     route,
	})
}

func (rs *resource) UpdateStatus(c *gin.Context) {
	id, status, ok := rs.DserUpdateStatusReq(c)
	if !ok {
		return
	}
	route, err := rs.routes.UpdateStatus(c, id, status)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (rs *resource) Delete(c *gin.Context) {
	id, ok := rs.DserRouteID(c)
	if !ok {
		return
	}
	route, err := rs.routes.Delete(c, id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mensagem": MsgRouteDeleted,
		"rota":     route,
	})
}

func (rs *resource) Stats(c *gin.Context) {
	s, err := rs.routes.Stats(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

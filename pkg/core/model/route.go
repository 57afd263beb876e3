// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"time"
)

// DefaultOrigin is the origin of routes which are created without an
// explicit local_origem.
const DefaultOrigin = "Depot Central"

// These errors are reported to REST API clients as they are, so their
// messages are human-readable.
var (
	ErrRouteNotFound      = errors.New("Rota não encontrada")
	ErrMissingRouteFields = errors.New(
		"id_motorista e local_destino são obrigatórios",
	)
	ErrInvalidRouteData = errors.New("Dados da rota inválidos")
)

// Route models a delivery task which is assigned to one driver.
// DriverName is captured from the driver registry at creation time
// and is not kept in sync with later driver edits.
type Route struct {
	ID               int64       `json:"id"`
	DriverID         int64       `json:"id_motorista"`
	DriverName       string      `json:"nome_motorista"`
	Origin           string      `json:"local_origem"`
	Destination      string      `json:"local_destino"`
	DistanceKm       float64     `json:"distancia_km"`
	EstimatedMinutes int         `json:"tempo_estimado_min"`
	Status           RouteStatus `json:"status"`
	Priority         Priority    `json:"prioridade"`
	CreatedAt        time.Time   `json:"data_criacao"`
	StartedAt        *time.Time  `json:"data_inicio,omitempty"`
	CompletedAt      *time.Time  `json:"data_conclusao,omitempty"`
	Notes            *string     `json:"observacoes,omitempty"`
}

// Transition moves r into the `to` status if the state machine has
// such an edge, stamping StartedAt when entering StatusInProgress and
// CompletedAt when entering StatusCompleted (at the `at` instant).
// Disallowed edges leave r untouched and return a *TransitionError.
func (r *Route) Transition(to RouteStatus, at time.Time) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if !r.Status.CanTransitionTo(to) {
		return &TransitionError{r.Status, to}
	}
	r.Status = to
	switch to {
	case StatusInProgress:
		if r.StartedAt == nil {
			r.StartedAt = &at
		}
	case StatusCompleted:
		if r.CompletedAt == nil {
			r.CompletedAt = &at
		}
	}
	return nil
}

// NewRoute collects the client provided fields of a route creation
// request. Zero Origin and Priority values are replaced by defaults.
type NewRoute struct {
	DriverID    int64
	Destination string
	Origin      string
	Priority    Priority
	Notes       *string
}

// RouteFilter holds the optional equality predicates of a routes
// listing. Nil fields are ignored and others are combined with AND.
type RouteFilter struct {
	Status   *RouteStatus
	Priority *Priority
	DriverID *int64
}

// Estimate is a synthetic distance/duration pair for a route.
type Estimate struct {
	DistanceKm float64
	Minutes    int
}

// RouteStats aggregates the routes table. TotalDistanceKm sums the
// distance of completed routes, while AvgMinutes is the rounded mean
// estimated duration across all routes.
type RouteStats struct {
	Total           int64   `json:"total"`
	Pending         int64   `json:"pendentes"`
	InProgress      int64   `json:"em_andamento"`
	Completed       int64   `json:"concluidas"`
	Cancelled       int64   `json:"canceladas"`
	TotalDistanceKm float64 `json:"distancia_total"`
	AvgMinutes      int64   `json:"tempo_medio"`
}

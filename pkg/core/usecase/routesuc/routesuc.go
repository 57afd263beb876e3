// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routesuc contains the routes UseCase which manages the
// lifecycle of delivery routes. These use cases are supported:
//  1. Creating a route for an active driver (after validating it by
//     the driver registry and estimating the route metrics),
//  2. Moving a route along its status state machine,
//  3. Listing, deleting, and aggregating routes.
//
// Successful state changes are announced on the Notifier. There is no
// distributed transaction between the driver registry and the route
// store, so a driver may be deactivated after its validation and
// before its route is persisted. That race is accepted.
package routesuc

import (
	"context"
	"fmt"
	"time"

	"github.com/logistica/roteirizacao/pkg/core/model"
	"github.com/logistica/roteirizacao/pkg/core/repo"
)

// DriverRegistry is the authoritative source of drivers availability.
// Driver must return an error wrapping model.ErrDriverNotFound when
// the registry reports that id is absent. All other errors, including
// a timeout, are treated as upstream failures.
type DriverRegistry interface {
	Driver(ctx context.Context, id int64) (*model.Driver, error)
}

// Estimator computes the distance and duration of a route.
type Estimator interface {
	Estimate(origin, destination string) model.Estimate
}

// Notifier publishes domain events. Publish returns after delivering
// the event to the currently registered subscribers and has no
// delivery guarantee beyond that.
type Notifier interface {
	Publish(ctx context.Context, channel string, payload map[string]any)
}

// UseCase represents the routes use case. It holds a database
// connection pool, the routes repository instance (to be guided with
// the DB pool), and its collaborators.
type UseCase struct {
	pool      repo.Pool
	routesrp  repo.Routes
	registry  DriverRegistry
	estimator Estimator
	notifier  Notifier

	defaultOrigin string
	now           func() time.Time
}

// New instantiates a routes use case.
// Required parameters are passed individually, so caller has to
// provision them and whenever they change, caller will notice and fix
// them due to a compilation error.
// Optional parameters are passed as a series of functional options.
func New(
	p repo.Pool,
	r repo.Routes,
	dr DriverRegistry,
	e Estimator,
	n Notifier,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool:      p,
		routesrp:  r,
		registry:  dr,
		estimator: e,
		notifier:  n,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.defaultOrigin == "" {
		uc.defaultOrigin = model.DefaultOrigin
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

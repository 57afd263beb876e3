// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/logistica/roteirizacao/pkg/core/model"
)

// RoutesConnQueryer runs the single-statement routes queries which
// are auto-committed on a connection.
type RoutesConnQueryer interface {
	RoutesQueryer
}

// RoutesTxQueryer additionally supports the read-modify-write queries
// which must observe a locked row within a transaction.
type RoutesTxQueryer interface {
	RoutesQueryer

	// GetForUpdate fetches the id route and locks its row until the
	// end of the current transaction. A missing route is reported
	// as a cerr.NotFound wrapping model.ErrRouteNotFound.
	GetForUpdate(ctx context.Context, id int64) (*model.Route, error)

	// UpdateStatus persists the status, start, and completion time of
	// the r route and returns the stored route.
	UpdateStatus(ctx context.Context, r *model.Route) (*model.Route, error)
}

// RoutesQueryer lists the queries which are available on both
// connections and transactions.
type RoutesQueryer interface {
	// Create inserts r (ignoring its ID) and returns the stored route
	// with its system-assigned ID.
	Create(ctx context.Context, r *model.Route) (*model.Route, error)

	// List returns the routes matching all non-nil fields of f,
	// ordered by their creation time descendingly.
	List(ctx context.Context, f model.RouteFilter) ([]model.Route, error)

	// Delete removes the id route and returns its last state.
	Delete(ctx context.Context, id int64) (*model.Route, error)

	// Stats aggregates all routes.
	Stats(ctx context.Context) (*model.RouteStats, error)
}

// Routes is the route store repository. It wraps a connection or a
// transaction and provides the relevant queryer for it.
type Routes interface {
	Conn(Conn) RoutesConnQueryer
	Tx(Tx) RoutesTxQueryer
}

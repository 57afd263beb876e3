// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routesrp provides a reification of the repo.Routes interface
// which stores routes in the rotas PostgreSQL table.
package routesrp

import (
	"context"

	"github.com/logistica/roteirizacao/pkg/adapter/db/postgres"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"github.com/logistica/roteirizacao/pkg/core/repo"
)

// Repo represents the routes repository.
type Repo struct {
}

// New instantiates a routes Repo struct.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps the given repo.Conn instance, expecting to find an
// instance of *postgres.Conn as created by this adapter layer.
// Otherwise, it will panic.
func (routes *Repo) Conn(c repo.Conn) repo.RoutesConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Create(
	ctx context.Context, r *model.Route,
) (*model.Route, error) {
	return Create(ctx, cq.Conn, r)
}

func (cq connQueryer) List(
	ctx context.Context, f model.RouteFilter,
) ([]model.Route, error) {
	return List(ctx, cq.Conn, f)
}

func (cq connQueryer) Delete(
	ctx context.Context, id int64,
) (*model.Route, error) {
	return Delete(ctx, cq.Conn, id)
}

func (cq connQueryer) Stats(ctx context.Context) (*model.RouteStats, error) {
	return Stats(ctx, cq.Conn)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx as created by this adapter layer. Otherwise, it will
// panic. Row locking queries are only available on transactions.
func (routes *Repo) Tx(tx repo.Tx) repo.RoutesTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Create(
	ctx context.Context, r *model.Route,
) (*model.Route, error) {
	return Create(ctx, tq.Tx, r)
}

func (tq txQueryer) List(
	ctx context.Context, f model.RouteFilter,
) ([]model.Route, error) {
	return List(ctx, tq.Tx, f)
}

func (tq txQueryer) Delete(
	ctx context.Context, id int64,
) (*model.Route, error) {
	return Delete(ctx, tq.Tx, id)
}

func (tq txQueryer) Stats(ctx context.Context) (*model.RouteStats, error) {
	return Stats(ctx, tq.Tx)
}

func (tq txQueryer) GetForUpdate(
	ctx context.Context, id int64,
) (*model.Route, error) {
	return GetForUpdate(ctx, tq.Tx, id)
}

func (tq txQueryer) UpdateStatus(
	ctx context.Context, r *model.Route,
) (*model.Route, error) {
	return UpdateStatus(ctx, tq.Tx, r)
}

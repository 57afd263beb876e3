// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemarp provides a reification of the repo.Schema interface
// making it possible to create the rotas table and manage the database
// role which is used by the web server.
package schemarp

import (
	"context"

	"github.com/logistica/roteirizacao/pkg/adapter/db/postgres"
	"github.com/logistica/roteirizacao/pkg/core/repo"
)

// Repo represents a schema management repository.
type Repo struct {
}

// New instantiates a schema management Repo struct.
func New() *Repo {
	return &Repo{}
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx as created by this adapter layer. Otherwise, it will
// panic. All schema operations need a transaction, so a new role is
// not visible before its password is set and its privileges are
// granted.
func (schema *Repo) Tx(tx repo.Tx) repo.SchemaQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) CreateRoutesTable(ctx context.Context) error {
	return CreateRoutesTable(ctx, tq.Tx)
}

func (tq txQueryer) CreateRoleIfNotExists(
	ctx context.Context, role repo.Role,
) error {
	return CreateRoleIfNotExists(ctx, tq.Tx, role)
}

func (tq txQueryer) ChangePassword(
	ctx context.Context, role repo.Role, hashed string,
) error {
	return ChangePassword(ctx, tq.Tx, role, hashed)
}

func (tq txQueryer) GrantRoutesPrivileges(
	ctx context.Context, role repo.Role,
) error {
	return GrantRoutesPrivileges(ctx, tq.Tx, role)
}

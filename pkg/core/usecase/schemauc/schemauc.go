// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemauc contains the database bootstrap UseCase. It creates
// the rotas table and optionally provisions the normal role which is
// used by the web server afterwards.
package schemauc

import (
	"context"
	"errors"
	"fmt"

	"github.com/logistica/roteirizacao/pkg/core/repo"
	"github.com/logistica/roteirizacao/pkg/core/scram"
)

// HashIterations is the SCRAM iterations count of role passwords, as
// recommended by RFC 7677.
const HashIterations = 15000

// UseCase represents the schema bootstrap use case. Its pool must be
// connected with an administrator role.
type UseCase struct {
	pool     repo.Pool
	schemarp repo.Schema
	hasher   scram.Hasher
}

// New instantiates a schema bootstrap use case.
func New(p repo.Pool, s repo.Schema, h scram.Hasher) *UseCase {
	return &UseCase{pool: p, schemarp: s, hasher: h}
}

// InitDB creates the rotas table if it is missing. If password is not
// empty, the `role` role is also created (if it does not exist), its
// password is replaced by a SCRAM hash of password, and it is granted
// the privileges which are required by the routes use cases.
// All statements run in one transaction, so InitDB may be repeated
// after a failure.
func (uc *UseCase) InitDB(
	ctx context.Context, role repo.Role, password string,
) error {
	var hashed string
	if password != "" {
		if role == "" {
			return errors.New("role must be non-empty")
		}
		var err error
		hashed, err = uc.hasher.Hash(password, "", HashIterations)
		if err != nil {
			return fmt.Errorf("hashing role password: %w", err)
		}
	}
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := uc.schemarp.Tx(tx)
			if err := q.CreateRoutesTable(ctx); err != nil {
				return fmt.Errorf("creating rotas table: %w", err)
			}
			if hashed == "" {
				return nil
			}
			if err := q.CreateRoleIfNotExists(ctx, role); err != nil {
				return fmt.Errorf("creating %q role: %w", role, err)
			}
			if err := q.ChangePassword(ctx, role, hashed); err != nil {
				return fmt.Errorf("changing %q password: %w", role, err)
			}
			if err := q.GrantRoutesPrivileges(ctx, role); err != nil {
				return fmt.Errorf("granting %q privileges: %w", role, err)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("admin connection: %w", err)
	}
	return nil
}

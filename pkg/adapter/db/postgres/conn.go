// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"github.com/logistica/roteirizacao/pkg/core/repo"
	"gorm.io/gorm"
)

// Conn is a database connection which is pinned for the lifetime of
// a Pool.Conn handler. It may not be used by concurrent goroutines.
type Conn struct {
	*gorm.DB
}

// TxHandler is a handler function which takes a context and an
// ongoing transaction.
type TxHandler = repo.TxHandler

// Tx runs f in a transaction which is committed if f returns nil and
// rolled back otherwise. The f error is returned as it is, so callers
// may still inspect it by errors.As. If f panics, the transaction is
// rolled back and the panic is propagated.
func (c *Conn) Tx(ctx context.Context, f TxHandler) error {
	return c.DB.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return f(ctx, &Tx{DB: gtx})
	})
}

// Exec runs sql with args and returns the number of affected rows.
func (c *Conn) Exec(
	ctx context.Context, sql string, args ...any,
) (int64, error) {
	return exec(c.GORM(ctx), sql, args)
}

func (c *Conn) IsConn() {
}

// GORM returns the connection as a *gorm.DB session bound to ctx.
func (c *Conn) GORM(ctx context.Context) *gorm.DB {
	return c.DB.WithContext(ctx)
}

func exec(gdb *gorm.DB, sql string, args []any) (int64, error) {
	res := gdb.Exec(sql, args...)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

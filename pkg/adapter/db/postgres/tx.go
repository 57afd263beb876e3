// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"gorm.io/gorm"
)

// Tx is an ongoing transaction which is valid until its Conn.Tx
// handler returns. PostgreSQL runs it with the READ COMMITTED
// isolation level by default, so rows which must not change between
// a read and a write are locked explicitly (SELECT ... FOR UPDATE).
// See https://www.postgresql.org/docs/current/transaction-iso.html
type Tx struct {
	*gorm.DB
}

// Exec runs sql with args and returns the number of affected rows.
// In absence of args, sql may contain several statements.
func (tx *Tx) Exec(
	ctx context.Context, sql string, args ...any,
) (int64, error) {
	return exec(tx.GORM(ctx), sql, args)
}

func (tx *Tx) IsTx() {
}

// GORM returns the transaction as a *gorm.DB session bound to ctx.
func (tx *Tx) GORM(ctx context.Context) *gorm.DB {
	return tx.DB.WithContext(ctx)
}

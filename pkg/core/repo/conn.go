// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

type TxHandler func(context.Context, Tx) error

// Conn is a single database connection. Statements which are executed
// on it directly are auto-committed. Its Tx method begins a transaction
// which is committed if handler returns nil and is rolled back
// otherwise.
type Conn interface {
	Queryer
	Tx(ctx context.Context, handler TxHandler) error
	IsConn()
}

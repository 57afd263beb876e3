// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

type ConnHandler func(context.Context, Conn) error

// Pool represents a database connections pool. Its Conn method
// acquires a connection, passes it to handler, and releases it
// when handler returns.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
}

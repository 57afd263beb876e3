// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo declares the persistence abstractions which the use
// cases depend on. Connections, transactions, and their queryers are
// implemented in the adapter layer (see pkg/adapter/db/postgres).
package repo

import "context"

// Queryer runs raw SQL statements. The use cases should prefer the
// typed repositories (e.g., Routes) and use Queryer only for trivial
// statements such as a health check ping or the db init DDL.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (count int64, err error)
}

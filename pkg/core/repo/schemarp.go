// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// SchemaQueryer manages the database objects of the routing service.
// All methods are expected to run in one transaction which is owned
// by an administrator role.
type SchemaQueryer interface {
	// CreateRoutesTable creates the rotas table and its indexes if
	// they do not exist yet.
	CreateRoutesTable(ctx context.Context) error

	// CreateRoleIfNotExists creates the role with the LOGIN option
	// and no password.
	CreateRoleIfNotExists(ctx context.Context, role Role) error

	// ChangePassword sets the password of role. The hashed argument
	// must be a SCRAM formatted hash string, so no plaintext password
	// is sent to the DBMS.
	ChangePassword(ctx context.Context, role Role, hashed string) error

	// GrantRoutesPrivileges allows role to read and write the rotas
	// table and use its id sequence.
	GrantRoutesPrivileges(ctx context.Context, role Role) error
}

// Schema is the schema management repository.
type Schema interface {
	Tx(Tx) SchemaQueryer
}

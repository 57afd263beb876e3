// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres adapts the GORM framework (with its pgx based
// PostgreSQL driver) to the repo.Pool, repo.Conn, and repo.Tx
// interfaces. Subpackages implement the repositories which are needed
// by the use cases on top of the Conn and Tx types of this package.
package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/logistica/roteirizacao/pkg/core/cerr"
	"github.com/logistica/roteirizacao/pkg/core/model"
)

// These SQLSTATE classes are caused by the client provided data.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	classDataException       = "22"
	classIntegrityConstraint = "23"
)

// TranslateError wraps err (if it is not nil) with a context msg.
// DBMS errors which are caused by invalid route data (like a too long
// destination or a NOT NULL violation) are converted to cerr.BadRequest
// wrapping model.ErrInvalidRouteData, so they are not reported as
// server failures.
func TranslateError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) == 5 {
		switch pgErr.Code[:2] {
		case classDataException, classIntegrityConstraint:
			return fmt.Errorf(
				"%s: %s (%s): %w", msg, pgErr.Message, pgErr.Code,
				cerr.BadRequest(model.ErrInvalidRouteData),
			)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

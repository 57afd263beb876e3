// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dbcontainer starts a disposable postgres:16 container for
// the integration test suites and connects a *postgres.Pool to it.
// A docker compatible API (e.g., podman.socket) must be reachable
// through the DOCKER_HOST environment variable, like
// DOCKER_HOST=unix://$XDG_RUNTIME_DIR/podman/podman.sock
// and the calling test is skipped when DOCKER_HOST is not set.
package dbcontainer

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/logistica/roteirizacao/pkg/adapter/db/postgres"
	"github.com/stretchr/testify/assert"
)

// DBMSVersion is the postgres image tag of the test containers.
const DBMSVersion = "16"

// sqlStateStartingUp is reported while the DBMS is not ready yet.
const sqlStateStartingUp = "57P03"

// New starts the container and connects to it, retrying until the
// DBMS accepts connections or timeout expires. The dfrs functions
// must be deferred by the caller (even if ok is false) in order to
// close the pool and remove the container using ctx.
func New(ctx context.Context, timeout time.Duration, t *testing.T) (
	pg *sqltestutil.PostgresContainer,
	pool *postgres.Pool,
	dfrs []func(),
	ok bool,
) {
	if os.Getenv("DOCKER_HOST") == "" {
		t.Skip("DOCKER_HOST is not set, skipping the integration tests")
	}
	startCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pg, err := sqltestutil.StartPostgresContainer(startCtx, DBMSVersion)
	if ok = assert.NoError(t, err, "starting postgres container"); !ok {
		return
	}
	dfrs = append(dfrs, func() {
		assert.NoError(t, pg.Shutdown(ctx), "removing postgres container")
	})
	pool, err = connect(startCtx, pg.ConnectionString())
	if ok = assert.NoError(t, err, "connecting to test database"); !ok {
		return
	}
	dfrs = append(dfrs, func() {
		assert.NoError(t, pool.Close(), "closing connections pool")
	})
	return
}

func connect(ctx context.Context, url string) (*postgres.Pool, error) {
	for {
		pool, err := postgres.NewPool(ctx, url, 200*time.Millisecond)
		if err == nil || !retriable(ctx, err) {
			return pool, err
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(err, ctx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// retriable reports if err is expected while the container is booting.
func retriable(ctx context.Context, err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == sqlStateStartingUp
	}
	var netErr net.Error
	return ctx.Err() == nil && errors.As(err, &netErr)
}

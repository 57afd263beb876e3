// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package healthuc reports the liveness of the routing service.
package healthuc

import (
	"context"
	"time"

	"github.com/logistica/roteirizacao/pkg/core/log"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"github.com/logistica/roteirizacao/pkg/core/repo"
)

// UseCase pings the database and declares the driver registry base
// URL as a dependency. The registry is not called, so a registry
// outage does not make this service look dead.
type UseCase struct {
	pool        repo.Pool
	service     string
	registryURL string
	now         func() time.Time
}

// New instantiates a health use case.
func New(p repo.Pool, service, registryURL string) *UseCase {
	return &UseCase{
		pool:        p,
		service:     service,
		registryURL: registryURL,
		now:         time.Now,
	}
}

// Check never fails. The database dependency is reported as
// "connected" or "unreachable".
func (uc *UseCase) Check(ctx context.Context) *model.Health {
	db := "connected"
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		_, err := c.Exec(ctx, "SELECT 1")
		return err
	})
	if err != nil {
		log.Warn(ctx, "database ping failed", log.Err("err", err))
		db = "unreachable"
	}
	return &model.Health{
		Status:    "ok",
		Service:   uc.service,
		Timestamp: uc.now(),
		Dependencies: map[string]string{
			"database":         db,
			"cadastro_service": uc.registryURL,
		},
	}
}

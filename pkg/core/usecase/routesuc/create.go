// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package routesuc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/logistica/roteirizacao/pkg/core/cerr"
	"github.com/logistica/roteirizacao/pkg/core/log"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"github.com/logistica/roteirizacao/pkg/core/repo"
)

// Create use case validates the nr.DriverID driver by the registry,
// estimates the route metrics, persists a pending route, and publishes
// it on the model.ChannelRouteCreated channel. The persisted route and
// a confirmation message are returned.
//
// A missing driver is reported as cerr.NotFound, an inactive driver as
// cerr.BadRequest, and a registry failure (including its timeout) as
// cerr.Internal. The registry call is not retried and no route is
// written when it fails.
func (routes *UseCase) Create(
	ctx context.Context, nr model.NewRoute,
) (route *model.Route, msg string, err error) {
	nr.Destination = strings.TrimSpace(nr.Destination)
	if nr.DriverID <= 0 || nr.Destination == "" {
		return nil, "", cerr.BadRequest(model.ErrMissingRouteFields)
	}
	if nr.Priority == model.PriorityInvalid {
		nr.Priority = model.PriorityNormal
	} else if err = nr.Priority.Validate(); err != nil {
		return nil, "", cerr.BadRequest(model.ErrUnknownPriority)
	}
	if strings.TrimSpace(nr.Origin) == "" {
		nr.Origin = routes.defaultOrigin
	}

	ctx = log.With(ctx, log.DriverID(nr.DriverID))
	d, err := routes.driver(ctx, nr.DriverID)
	if err != nil {
		return nil, "", err
	}

	est := routes.estimator.Estimate(nr.Origin, nr.Destination)
	r := &model.Route{
		DriverID:         d.ID,
		DriverName:       d.Name,
		Origin:           nr.Origin,
		Destination:      nr.Destination,
		DistanceKm:       est.DistanceKm,
		EstimatedMinutes: est.Minutes,
		Status:           model.StatusPending,
		Priority:         nr.Priority,
		CreatedAt:        routes.now(),
		Notes:            nr.Notes,
	}
	err = routes.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		q := routes.routesrp.Conn(c)
		route, err = q.Create(ctx, r)
		return err
	})
	if err != nil {
		return nil, "", fmt.Errorf("persisting route: %w", err)
	}

	routes.notifier.Publish(ctx, model.ChannelRouteCreated, map[string]any{
		"id":            route.ID,
		"motoristaId":   route.DriverID,
		"motoristaNome": route.DriverName,
		"destino":       route.Destination,
		"status":        route.Status.String(),
	})
	msg = fmt.Sprintf(
		"Rota criada para %s com motorista %s",
		route.Destination, route.DriverName,
	)
	return route, msg, nil
}

// driver fetches the id driver and ensures that it is active.
func (routes *UseCase) driver(
	ctx context.Context, id int64,
) (*model.Driver, error) {
	log.Debug(ctx, "querying driver registry")
	d, err := routes.registry.Driver(ctx, id)
	switch {
	case errors.Is(err, model.ErrDriverNotFound):
		return nil, cerr.NotFound(model.ErrDriverNotFound)
	case err != nil:
		log.Error(ctx, "driver registry call failed", log.Err("err", err))
		return nil, cerr.Internal(model.ErrRegistryUnavailable)
	case !d.Active():
		return nil, cerr.BadRequest(model.ErrDriverUnavailable)
	}
	return d, nil
}

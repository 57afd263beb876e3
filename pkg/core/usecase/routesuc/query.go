// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package routesuc

import (
	"context"

	"github.com/logistica/roteirizacao/pkg/core/cerr"
	"github.com/logistica/roteirizacao/pkg/core/log"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"github.com/logistica/roteirizacao/pkg/core/repo"
)

// List use case returns the routes which match all non-nil f fields,
// newest first. There is no pagination.
func (routes *UseCase) List(
	ctx context.Context, f model.RouteFilter,
) (rs []model.Route, err error) {
	if f.Status != nil && f.Status.Validate() != nil {
		return nil, cerr.BadRequest(model.ErrUnknownStatus)
	}
	if f.Priority != nil && f.Priority.Validate() != nil {
		return nil, cerr.BadRequest(model.ErrUnknownPriority)
	}
	err = routes.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		rs, err = routes.routesrp.Conn(c).List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rs == nil {
		rs = []model.Route{}
	}
	return rs, nil
}

// Delete use case removes the id route and publishes its last state
// on the model.ChannelRouteDeleted channel.
func (routes *UseCase) Delete(
	ctx context.Context, id int64,
) (route *model.Route, err error) {
	ctx = log.With(ctx, log.RouteID(id))
	err = routes.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		route, err = routes.routesrp.Conn(c).Delete(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	routes.notifier.Publish(ctx, model.ChannelRouteDeleted, map[string]any{
		"id":          route.ID,
		"motoristaId": route.DriverID,
		"destino":     route.Destination,
	})
	return route, nil
}

// Stats use case aggregates the routes counts and sums.
func (routes *UseCase) Stats(
	ctx context.Context,
) (s *model.RouteStats, err error) {
	err = routes.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		s, err = routes.routesrp.Conn(c).Stats(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

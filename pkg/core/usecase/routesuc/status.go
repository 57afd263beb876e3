// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package routesuc

import (
	"context"
	"errors"

	"github.com/logistica/roteirizacao/pkg/core/cerr"
	"github.com/logistica/roteirizacao/pkg/core/log"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"github.com/logistica/roteirizacao/pkg/core/repo"
)

// UpdateStatus use case moves the id route into the `to` status.
// Entering model.StatusInProgress stamps its start time and entering
// model.StatusCompleted stamps its completion time.
//
// An invalid status is reported as cerr.BadRequest before touching the
// store, a missing route as cerr.NotFound, and an edge which is not in
// the state machine (including re-entering the current status) as
// cerr.Conflict wrapping a *model.TransitionError. The route row is
// locked while it is being checked and updated, so two concurrent
// transitions from the same status may not both succeed.
// The model.ChannelRouteStatusChanged event is published only after
// the transaction commits.
func (routes *UseCase) UpdateStatus(
	ctx context.Context, id int64, to model.RouteStatus,
) (route *model.Route, err error) {
	if err = to.Validate(); err != nil {
		return nil, cerr.BadRequest(model.ErrUnknownStatus)
	}
	ctx = log.With(ctx, log.RouteID(id))
	now := routes.now()
	err = routes.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := routes.routesrp.Tx(tx)
			r, err := q.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if err = r.Transition(to, now); err != nil {
				var te *model.TransitionError
				if errors.As(err, &te) {
					return cerr.Conflict(te)
				}
				return err
			}
			route, err = q.UpdateStatus(ctx, r)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	routes.notifier.Publish(
		ctx, model.ChannelRouteStatusChanged, map[string]any{
			"id":          route.ID,
			"motoristaId": route.DriverID,
			"novoStatus":  route.Status.String(),
			"timestamp":   now,
		},
	)
	return route, nil
}

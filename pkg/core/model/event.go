// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
)

// Channels of the route domain events.
const (
	ChannelRouteCreated       = "rota.created"
	ChannelRouteStatusChanged = "rota.status_changed"
	ChannelRouteDeleted       = "rota.deleted"
)

// RouteChannels returns all channels which routes use cases publish on.
func RouteChannels() []string {
	return []string{
		ChannelRouteCreated,
		ChannelRouteStatusChanged,
		ChannelRouteDeleted,
	}
}

// Event is a transient notification about a state change. It is never
// persisted and reaches only the subscribers which were registered in
// the same process when it was published.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Channel   string         `json:"channel"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
	Service   string         `json:"service"`
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package inproc implements the routes Notifier port as a synchronous
// in-process publish/subscribe bus. Events are neither persisted nor
// replayed, so a subscriber only observes the events which are
// published after its registration.
package inproc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/logistica/roteirizacao/pkg/core/log"
	"github.com/logistica/roteirizacao/pkg/core/model"
)

// Subscriber consumes the events of one channel. It runs on the
// publisher goroutine, so it should return quickly.
type Subscriber func(ctx context.Context, ev model.Event)

// Bus fans out events to the subscribers of their channels in the
// order of registration. It is safe for concurrent use.
type Bus struct {
	service string
	now     func() time.Time

	mu   sync.RWMutex
	subs map[string][]Subscriber
}

// New instantiates a Bus which stamps its events with the service
// name.
func New(service string) *Bus {
	return &Bus{
		service: service,
		now:     time.Now,
		subs:    make(map[string][]Subscriber),
	}
}

// Subscribe registers s for the events of channel.
func (b *Bus) Subscribe(channel string, s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[channel] = append(b.subs[channel], s)
}

// Publish wraps payload in a model.Event and delivers it to the
// channel subscribers before returning. A panicking subscriber is
// logged and skipped; it affects neither other subscribers nor the
// caller. Delivery does not observe ctx cancellation.
func (b *Bus) Publish(
	ctx context.Context, channel string, payload map[string]any,
) {
	ev := model.Event{
		ID:        uuid.New(),
		Channel:   channel,
		Payload:   payload,
		Timestamp: b.now(),
		Service:   b.service,
	}
	b.mu.RLock()
	subs := b.subs[channel]
	b.mu.RUnlock()
	log.Info(
		ctx, "event published",
		log.Channel(channel), slog.String("event_id", ev.ID.String()),
		slog.Int("subscribers", len(subs)),
	)
	ctx = context.WithoutCancel(ctx)
	for i, s := range subs {
		b.deliver(ctx, i, s, ev)
	}
}

func (b *Bus) deliver(
	ctx context.Context, i int, s Subscriber, ev model.Event,
) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(
				ctx, "event subscriber panicked",
				log.Channel(ev.Channel), slog.Int("subscriber", i),
				log.Err("err", fmt.Errorf("%v", r)),
			)
		}
	}()
	s(ctx, ev)
}

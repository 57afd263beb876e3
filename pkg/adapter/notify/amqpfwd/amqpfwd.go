// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package amqpfwd forwards the in-process domain events to a RabbitMQ
// topic exchange, using the event channel as the routing key. The
// forwarding is best-effort: failures are logged and never reach the
// use case which has published the event.
package amqpfwd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/logistica/roteirizacao/pkg/core/log"
	"github.com/logistica/roteirizacao/pkg/core/model"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultPublishTimeout bounds each forwarded publication.
const DefaultPublishTimeout = 2 * time.Second

// Publisher is the subset of *amqp.Channel which is used for
// forwarding events.
type Publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
}

// Forwarder publishes events on one exchange. Its Forward method
// matches the in-process subscriber signature.
type Forwarder struct {
	pub      Publisher
	exchange string
	timeout  time.Duration
	closers  []func() error
}

// New instantiates a Forwarder on top of an already opened pub
// channel. The exchange is expected to exist.
func New(pub Publisher, exchange string) (*Forwarder, error) {
	if pub == nil {
		return nil, errors.New("publisher is nil")
	}
	if exchange == "" {
		return nil, errors.New("exchange name is empty")
	}
	return &Forwarder{
		pub:      pub,
		exchange: exchange,
		timeout:  DefaultPublishTimeout,
	}, nil
}

// Dial connects to the url broker, opens a channel, and declares a
// durable topic exchange before returning its Forwarder.
func Dial(url, exchange string) (f *Forwarder, err error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	defer func() {
		if err != nil {
			_ = conn.Close()
		}
	}()
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}
	err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declaring exchange %q: %w", exchange, err)
	}
	f, err = New(ch, exchange)
	if err != nil {
		return nil, err
	}
	f.closers = []func() error{ch.Close, conn.Close}
	return f, nil
}

// Forward encodes ev as JSON and publishes it as a transient message
// with the ev.Channel routing key.
func (f *Forwarder) Forward(ctx context.Context, ev model.Event) {
	if err := f.publish(ctx, ev); err != nil {
		log.Warn(
			ctx, "forwarding event to amqp failed",
			log.Channel(ev.Channel), log.Err("err", err),
		)
	}
}

func (f *Forwarder) publish(ctx context.Context, ev model.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.pub.PublishWithContext(
		ctx, f.exchange, ev.Channel, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			MessageId:    ev.ID.String(),
			Timestamp:    ev.Timestamp,
			AppId:        ev.Service,
			Body:         body,
		},
	)
}

// Close releases the channel and connection which were opened by Dial.
func (f *Forwarder) Close() error {
	var errs []error
	for _, c := range f.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}

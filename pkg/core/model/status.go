// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// RouteStatus specifies the lifecycle state of a route. Although this
// enum is numeric, it is (de)serialized as a string (e.g., pendente)
// both in the REST API and in the database.
type RouteStatus int

// Valid values for the RouteStatus enum.
const (
	StatusInvalid RouteStatus = iota // zero value is invalid

	StatusPending    // created and waiting for its driver
	StatusInProgress // driver has started the route
	StatusCompleted  // terminal, delivered
	StatusCancelled  // terminal, abandoned
)

// ErrUnknownStatus indicates that a given string may not be parsed as
// a known route status. Its message is shown to REST API clients.
var ErrUnknownStatus = errors.New("Status inválido")

// StatusError indicates an invalid numeric route status.
type StatusError int

// Error implements the error interface.
func (e StatusError) Error() string {
	return fmt.Sprintf("invalid route status: %d", int(e))
}

// Validate returns nil if RouteStatus value is valid. For invalid
// values, an instance of the StatusError will be returned.
func (s RouteStatus) Validate() error {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return nil
	default:
		return StatusError(s)
	}
}

// String converts the RouteStatus enum to its wire representation.
// Invalid statuses cause a panic.
func (s RouteStatus) String() string {
	switch s {
	case StatusPending:
		return "pendente"
	case StatusInProgress:
		return "em_andamento"
	case StatusCompleted:
		return "concluida"
	case StatusCancelled:
		return "cancelada"
	default:
		panic(StatusError(s))
	}
}

// ParseStatus parses the given string and returns a RouteStatus.
// For unknown strings, StatusInvalid and ErrUnknownStatus will be
// returned.
func ParseStatus(s string) (RouteStatus, error) {
	switch s {
	case "pendente":
		return StatusPending, nil
	case "em_andamento":
		return StatusInProgress, nil
	case "concluida":
		return StatusCompleted, nil
	case "cancelada":
		return StatusCancelled, nil
	default:
		return StatusInvalid, ErrUnknownStatus
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s RouteStatus) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RouteStatus) UnmarshalText(data []byte) error {
	ss, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = ss
	return nil
}

// transitions lists the allowed target statuses of each source status.
// Terminal statuses have no entry. No status may transition to itself,
// so the start and completion timestamps are written at most once.
var transitions = map[RouteStatus][]RouteStatus{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports if a route in the s status may be moved
// into the `to` status.
func (s RouteStatus) CanTransitionTo(to RouteStatus) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// TransitionError indicates that a route could not be moved from its
// current status (the first element) to a requested status (the
// second element) because that edge is missing from the state machine.
type TransitionError [2]RouteStatus

// Error implements the error interface.
func (te *TransitionError) Error() string {
	return fmt.Sprintf(
		"Transição de status inválida: %s -> %s",
		te[0].String(), te[1].String(),
	)
}

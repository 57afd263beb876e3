// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// Priority of a route. It is (de)serialized as a string for
// readability.
type Priority int

// Valid values for the Priority enum.
const (
	PriorityInvalid Priority = iota

	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

// ErrUnknownPriority indicates an unparsable priority string.
var ErrUnknownPriority = errors.New("Prioridade inválida")

// PriorityError indicates an invalid numeric priority.
type PriorityError int

func (e PriorityError) Error() string {
	return fmt.Sprintf("invalid priority: %d", int(e))
}

// Validate returns nil if p is one of the known priorities.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return nil
	default:
		return PriorityError(p)
	}
}

// String converts the Priority enum to its wire representation.
// Invalid priorities cause a panic.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "baixa"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "alta"
	case PriorityUrgent:
		return "urgente"
	default:
		panic(PriorityError(p))
	}
}

// ParsePriority parses the p string. For unknown strings,
// PriorityInvalid and ErrUnknownPriority will be returned.
func ParsePriority(p string) (Priority, error) {
	switch p {
	case "baixa":
		return PriorityLow, nil
	case "normal":
		return PriorityNormal, nil
	case "alta":
		return PriorityHigh, nil
	case "urgente":
		return PriorityUrgent, nil
	default:
		return PriorityInvalid, ErrUnknownPriority
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(data []byte) error {
	pp, err := ParsePriority(string(data))
	if err != nil {
		return err
	}
	*p = pp
	return nil
}

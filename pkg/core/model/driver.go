// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "errors"

// DriverStatus is the availability flag owned by the driver registry.
type DriverStatus string

// Known driver statuses. Any other value is treated as unavailable.
const (
	DriverActive   DriverStatus = "ativo"
	DriverInactive DriverStatus = "inativo"
)

var (
	ErrDriverNotFound      = errors.New("Motorista não encontrado")
	ErrDriverUnavailable   = errors.New("Motorista não está ativo")
	ErrRegistryUnavailable = errors.New(
		"Erro ao comunicar com serviço de cadastro",
	)
)

// Driver is the subset of a driver registry record which is consumed
// by the routes use cases. The id, nome, and status field names must
// round-trip unchanged.
type Driver struct {
	ID     int64        `json:"id"`
	Name   string       `json:"nome"`
	Status DriverStatus `json:"status"`
}

// Active reports if routes may be assigned to the driver.
func (d *Driver) Active() bool {
	return d.Status == DriverActive
}

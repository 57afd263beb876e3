// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package routesuc

import (
	"errors"
	"strings"
	"time"
)

// Option is a functional option for the routes use case.
type Option func(uc *UseCase) error

// WithDefaultOrigin configures the origin of routes which are created
// without an explicit origin. It defaults to model.DefaultOrigin.
func WithDefaultOrigin(origin string) Option {
	return func(uc *UseCase) error {
		if strings.TrimSpace(origin) == "" {
			return errors.New("default origin is blank")
		}
		if uc.defaultOrigin != "" {
			return errors.New("default origin is already configured")
		}
		uc.defaultOrigin = origin
		return nil
	}
}

// WithClock replaces time.Now as the source of the creation, start,
// and completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		if uc.now != nil {
			return errors.New("clock is already configured")
		}
		uc.now = now
		return nil
	}
}

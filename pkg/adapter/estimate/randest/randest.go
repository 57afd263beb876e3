// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package randest implements the routes Estimator port with synthetic
// random metrics. Origin and destination are ignored.
package randest

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/logistica/roteirizacao/pkg/core/model"
)

// Bounds of the generated metrics. Distances are drawn from
// [MinDistanceKm, MaxDistanceKm) and truncated to one decimal digit.
// Durations are round(2*distance + extra) minutes where extra is drawn
// from [0, MaxExtraMinutes).
const (
	MinDistanceKm   = 5.0
	MaxDistanceKm   = 55.0
	MaxExtraMinutes = 30.0
)

// Estimator is safe for concurrent use.
type Estimator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New instantiates an Estimator. A nil src is replaced by a time
// seeded source.
func New(src rand.Source) *Estimator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Estimator{rnd: rand.New(src)}
}

// Estimate returns a random distance/duration pair.
func (e *Estimator) Estimate(_, _ string) model.Estimate {
	e.mu.Lock()
	u1, u2 := e.rnd.Float64(), e.rnd.Float64()
	e.mu.Unlock()

	d := MinDistanceKm + u1*(MaxDistanceKm-MinDistanceKm)
	d = math.Floor(d*10) / 10
	return model.Estimate{
		DistanceKm: d,
		Minutes:    int(math.Round(2*d + u2*MaxExtraMinutes)),
	}
}

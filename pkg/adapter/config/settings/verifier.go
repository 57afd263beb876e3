// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
)

// OutOfRangeError indicates that a Value was out of its acceptable
// range, either less than its minimum valid value or greater than its
// maximum valid value.
type OutOfRangeError[T cmp.Ordered] struct {
	Value       *T   // The actual out-of-range value
	LessThanMin bool // true if and only if min boundary is violated
}

// Error implements error interface.
func (e *OutOfRangeError[T]) Error() string {
	if e.LessThanMin {
		return "value is less than min"
	}
	return "value is greater than max"
}

// VerifyRange ensures that the value is either nil or is within the
// [minb, maxb] range. A nil boundary is not checked. An out of range
// value is clamped to the violated boundary and reported as an error.
func VerifyRange[T cmp.Ordered](
	value **T, minb, maxb *T,
) *OutOfRangeError[T] {
	if (*value) == nil {
		return nil
	}
	switch v := **value; {
	case minb != nil && v < *minb:
		**value = *minb
		return &OutOfRangeError[T]{Value: &v, LessThanMin: true}
	case maxb != nil && v > *maxb:
		**value = *maxb
		return &OutOfRangeError[T]{Value: &v}
	}
	return nil
}

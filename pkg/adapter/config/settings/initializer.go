// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings contains the helper types and functions which are
// shared by the configuration sections.
package settings

// Nil2Zero makes the nil (*t) pointer to point to a zero T value.
// A non-nil (*t) pointer is left unchanged.
func Nil2Zero[T any](t **T) {
	if (*t) != nil {
		return
	}
	var zero T
	(*t) = &zero
}

// OverwriteNil makes the nil (*dst) pointer to point to a copy of
// the (*src) value. Nothing happens if (*dst) is not nil or src is nil.
func OverwriteNil[T any](dst **T, src *T) {
	if (*dst) != nil || src == nil {
		return
	}
	t := *src
	(*dst) = &t
}

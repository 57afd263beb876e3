// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram declares the password hashing port of the db init use
// case. The normal role password is hashed before being embedded in an
// ALTER ROLE statement, so the plaintext never reaches the DBMS (nor
// its statement logs). See pkg/adapter/hash/scram for the adapter.
package scram

// Hasher computes SCRAM verifiers as accepted by PostgreSQL in place
// of a plaintext role password.
//
// Hash takes a non-empty pass (normalized by SASLprep before hashing),
// a base64 encoded salt (a random one is generated if it is empty),
// and the iters count (at least 4096; RFC 7677 recommends 15000).
// The result is formatted as:
//
//	SCRAM-SHA-256${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
//
// with the hash function name depending on the implementation.
type Hasher interface {
	Hash(pass, salt string, iters int) (string, error)
}

// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Tx is an ongoing transaction. It runs one statement at a time and
// may not be shared between goroutines. Row locks (e.g., those which
// are taken by Routes.Tx(tx).GetForUpdate) are held until the handler
// which received the Tx returns.
type Tx interface {
	Queryer

	// IsTx distinguishes Tx from Conn, so one may not be passed
	// where the other is expected.
	IsTx()
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram hashes database role passwords in the SCRAM format
// which PostgreSQL accepts in ALTER ROLE ... PASSWORD statements, so
// the db init command never sends a plaintext password to the DBMS.
package scram

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/xdg-go/scram"
)

// MinIterations is the smallest accepted PBKDF2 iterations count.
const MinIterations = 4096

// Mechanism hashes passwords with one SCRAM variant. It implements
// the core scram.Hasher interface.
type Mechanism struct {
	gen     scram.HashGeneratorFcn
	saltLen int
	prefix  string
}

// ForAuthMethod returns the Mechanism of a pg_hba.conf style
// authentication method name, i.e., scram-sha-256 or scram-sha-1.
func ForAuthMethod(method string) (*Mechanism, error) {
	switch strings.ToLower(method) {
	case "", "scram-sha-256":
		return &Mechanism{gen: scram.SHA256, saltLen: 32, prefix: "SCRAM-SHA-256"}, nil
	case "scram-sha-1":
		return &Mechanism{gen: scram.SHA1, saltLen: 20, prefix: "SCRAM-SHA-1"}, nil
	default:
		return nil, fmt.Errorf("unsupported auth method: %q", method)
	}
}

// Hash returns pass in the following format:
//
//	SCRAM-SHA-X${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
//
// The salt must be base64 encoded. An empty salt is replaced by
// random bytes. The output contains no quote characters.
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	if pass == "" {
		return "", errors.New("password must be non-empty")
	}
	if iters < MinIterations {
		return "", fmt.Errorf("iters (%d) is less than %d", iters, MinIterations)
	}
	if salt == "" {
		b := make([]byte, m.saltLen)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("creating random salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(b)
	}
	raw, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decoding base64 salt: %w", err)
	}
	// SASLprep normalization of pass happens in NewClient.
	c, err := m.gen.NewClient("", pass, "")
	if err != nil {
		return "", fmt.Errorf("creating SCRAM client: %w", err)
	}
	sc := c.GetStoredCredentials(scram.KeyFactors{
		Salt:  string(raw),
		Iters: iters,
	})
	enc := base64.StdEncoding.EncodeToString
	return fmt.Sprintf(
		"%s$%d:%s$%s:%s",
		m.prefix, iters, salt, enc(sc.StoredKey), enc(sc.ServerKey),
	), nil
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/logistica/roteirizacao/pkg/adapter/db/postgres"
	"github.com/logistica/roteirizacao/pkg/core/repo"
)

const routesDDL = `
CREATE TABLE IF NOT EXISTS rotas (
    id SERIAL PRIMARY KEY,
    id_motorista INTEGER NOT NULL,
    nome_motorista VARCHAR(255) NOT NULL,
    local_origem VARCHAR(255) NOT NULL DEFAULT 'Depot Central',
    local_destino VARCHAR(255) NOT NULL,
    distancia_km DECIMAL(8, 2),
    tempo_estimado_min INTEGER,
    status VARCHAR(20) NOT NULL DEFAULT 'pendente',
    prioridade VARCHAR(20) NOT NULL DEFAULT 'normal',
    data_criacao TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    data_inicio TIMESTAMPTZ,
    data_conclusao TIMESTAMPTZ,
    observacoes TEXT,
    CONSTRAINT rotas_status_check CHECK (status IN (
        'pendente', 'em_andamento', 'concluida', 'cancelada'
    )),
    CONSTRAINT rotas_prioridade_check CHECK (prioridade IN (
        'baixa', 'normal', 'alta', 'urgente'
    ))
);
CREATE INDEX IF NOT EXISTS idx_rotas_status ON rotas (status);
CREATE INDEX IF NOT EXISTS idx_rotas_prioridade ON rotas (prioridade);
CREATE INDEX IF NOT EXISTS idx_rotas_motorista ON rotas (id_motorista);
`

// CreateRoutesTable creates the rotas table, its CHECK constraints,
// and its filtering indexes unless they exist.
func CreateRoutesTable(ctx context.Context, tx *postgres.Tx) error {
	if _, err := tx.Exec(ctx, routesDDL); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// CreateRoleIfNotExists creates the `role` role with the LOGIN option
// if it does not exist right now. No password is set for it.
func CreateRoleIfNotExists(
	ctx context.Context, tx *postgres.Tx, role repo.Role,
) error {
	var n int64
	err := tx.GORM(ctx).Raw(
		"SELECT count(*) FROM pg_roles WHERE rolname=?", string(role),
	).Scan(&n).Error
	if err != nil {
		return fmt.Errorf("querying pg_roles: %w", err)
	}
	if n > 0 {
		return nil
	}
	name := pgx.Identifier{string(role)}.Sanitize()
	if _, err = tx.Exec(ctx, "CREATE ROLE "+name+" WITH LOGIN"); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// ChangePassword sets the SCRAM `hashed` password of the `role` role.
// DDL statements do not accept bind parameters, so hashed is quoted
// as a string literal. Hashes which are produced by the scram.Hasher
// never contain a quote or backslash character.
func ChangePassword(
	ctx context.Context, tx *postgres.Tx, role repo.Role, hashed string,
) error {
	if strings.ContainsAny(hashed, `'\`) {
		return errors.New("hashed password contains quotes")
	}
	name := pgx.Identifier{string(role)}.Sanitize()
	_, err := tx.Exec(
		ctx, "ALTER ROLE "+name+" WITH PASSWORD '"+hashed+"'",
	)
	if err != nil {
		return fmt.Errorf("alter role: %w", err)
	}
	return nil
}

// GrantRoutesPrivileges allows the `role` role to read and write the
// rotas table and to draw IDs from its serial sequence.
func GrantRoutesPrivileges(
	ctx context.Context, tx *postgres.Tx, role repo.Role,
) error {
	name := pgx.Identifier{string(role)}.Sanitize()
	_, err := tx.Exec(ctx, fmt.Sprintf(
		`GRANT SELECT, INSERT, UPDATE, DELETE ON rotas TO %[1]s;
GRANT USAGE, SELECT ON SEQUENCE rotas_id_seq TO %[1]s`, name,
	))
	if err != nil {
		return fmt.Errorf("grant: %w", err)
	}
	return nil
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/logistica/roteirizacao/pkg/adapter/config"
	"github.com/logistica/roteirizacao/pkg/core/repo"
	"github.com/spf13/cobra"
)

// envRolePassword may provide the --role-password flag value.
const envRolePassword = "ROLE_PASSWORD"

var rolePassword string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the rotas table and the web server role",
	Long: `Create the rotas table, its constraints, and its indexes using
the admin role. It is idempotent, so existing tables are kept.
If a role password is given (by the --role-password flag or the
ROLE_PASSWORD environment variable), the web server role is created
too (if it does not exist), its password is set (after being hashed
based on the database auth-method setting), and it is granted the
privileges which are needed for manipulating the routes.
The database connection information are read from the config file.`,
	RunE:         initDB,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
}

func initDB(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	if err = c.SetupLogger(); err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}
	p, err := c.ConnectionPool(ctx, repo.AdminRole)
	if err != nil {
		return fmt.Errorf("creating admin DB pool: %w", err)
	}
	defer p.Close()
	if rolePassword == "" {
		rolePassword = os.Getenv(envRolePassword)
	}
	err = c.NewSchemaUseCase(p).InitDB(ctx, repo.NormalRole, rolePassword)
	if err != nil {
		return fmt.Errorf("initializing DB: %w", err)
	}
	return nil
}

func init() {
	initCmd.Flags().StringVar(
		&rolePassword, "role-password", "",
		"password of the web server role (created if non-empty)",
	)
	dbCmd.AddCommand(initCmd)
}

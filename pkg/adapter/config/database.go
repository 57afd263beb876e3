// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/logistica/roteirizacao/pkg/adapter/config/settings"
	"github.com/logistica/roteirizacao/pkg/adapter/db/postgres"
	"github.com/logistica/roteirizacao/pkg/adapter/hash/scram"
	"github.com/logistica/roteirizacao/pkg/core/repo"
)

// Database contains the database related configuration settings.
// When URL is set, it is used for all roles and the other connection
// fields are ignored.
type Database struct {
	Host     string // domain name or IP address of the DBMS server
	Port     int    // port number of the DBMS server
	Name     string // database name, like logistica
	PassFile string `yaml:"pass-file"` // path of a pgpass format file
	URL      string `yaml:"url"`

	// AuthMethod specifies how role passwords are hashed by the db
	// init command. Currently, only scram-sha-1 and scram-sha-256
	// methods are supported. The scram-sha-256 is the default value.
	AuthMethod string `yaml:"auth-method,omitempty"`

	// SlowQuery is the GORM slow statement logging threshold.
	SlowQuery *settings.Duration `yaml:"slow-query"`

	hasher *scram.Mechanism
}

// ValidateAndNormalize checks the connection settings and instantiates
// the password hasher.
func (d *Database) ValidateAndNormalize() error {
	h, err := scram.ForAuthMethod(d.AuthMethod)
	if err != nil {
		return err
	}
	d.hasher = h
	if d.AuthMethod == "" {
		d.AuthMethod = "scram-sha-256"
	}
	settings.OverwriteNil(&d.SlowQuery, ptr(settings.Duration(200*time.Millisecond)))
	if d.URL != "" {
		return nil
	}
	if d.Host == "" {
		d.Host = "localhost"
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.Name == "" {
		return fmt.Errorf("database name is empty")
	}
	if d.PassFile == "" {
		return fmt.Errorf("neither url nor pass-file is set")
	}
	return nil
}

// ConnectionPool creates a database connection pool for the r role.
func (d Database) ConnectionPool(
	ctx context.Context, r repo.Role,
) (*postgres.Pool, error) {
	u := d.URL
	if u == "" {
		var err error
		if u, err = d.ConnectionURL(r, d.PassFile); err != nil {
			return nil, fmt.Errorf("using %q pass-file: %w", d.PassFile, err)
		}
	}
	return postgres.NewPool(ctx, u, time.Duration(*d.SlowQuery))
}

// ConnectionURL returns the database connection URL embedding the host,
// port, role name, database name, and password value. The password is
// read from the `path` file which may contain empty or `#`-commented
// lines in addition to the pgpass format lines:
//
//	host:port:dbname:role:password
func (d Database) ConnectionURL(r repo.Role, path string) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, r)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", fmt.Errorf("no matching password line for %q", r)
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(string(r), pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

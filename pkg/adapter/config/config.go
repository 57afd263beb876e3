// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files (plus a few environment variable overrides) and allows the
// roteirizacao command to instantiate different components, from the
// adapter or use cases layers, using those loaded settings.
// Parsed and validated settings are passed to their ultimate components
// as individual params (for the mandatory items) and functional
// options (for the optional items).
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/logistica/roteirizacao/pkg/adapter/config/settings"
	"github.com/logistica/roteirizacao/pkg/adapter/db/postgres"
	"github.com/logistica/roteirizacao/pkg/adapter/db/postgres/routesrp"
	"github.com/logistica/roteirizacao/pkg/adapter/db/postgres/schemarp"
	"github.com/logistica/roteirizacao/pkg/adapter/estimate/randest"
	"github.com/logistica/roteirizacao/pkg/adapter/notify/amqpfwd"
	"github.com/logistica/roteirizacao/pkg/adapter/notify/inproc"
	"github.com/logistica/roteirizacao/pkg/adapter/registry/httprg"
	"github.com/logistica/roteirizacao/pkg/core/log"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"github.com/logistica/roteirizacao/pkg/core/repo"
	"github.com/logistica/roteirizacao/pkg/core/usecase/healthuc"
	"github.com/logistica/roteirizacao/pkg/core/usecase/routesuc"
	"github.com/logistica/roteirizacao/pkg/core/usecase/schemauc"
	"gopkg.in/yaml.v3"
)

// Environment variables which override the configuration file.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvRegistryURL = "REGISTRY_URL"
	EnvAMQPURL     = "AMQP_URL"
	EnvPort        = "PORT"
	EnvLogLevel    = "LOG_LEVEL"
)

// Config contains all settings which are required by different parts
// of the project. It is implemented with primitive fields or locally
// defined structs, so the file format is kept intact while other
// layers change freely.
type Config struct {
	Database Database // PostgreSQL database connection settings
	Gin      Gin      // Gin-Gonic instantiation settings
	Registry Registry // Driver registry (cadastro service) client
	Events   Events   // Domain events publication settings
	Usecases Usecases // Supported use cases configuration settings
	Log      Log      // Default slog logger settings
}

// Registry contains the driver registry client settings.
type Registry struct {
	BaseURL   string             `yaml:"base-url"`
	Timeout   *settings.Duration // per lookup, defaults to 5s
	RateLimit float64            `yaml:"rate-limit"` // req/s, 0 is unlimited
	Burst     int
}

// Events contains the event bus settings. The AMQP forwarding is
// disabled when its URL is empty.
type Events struct {
	Service string
	AMQP    AMQP `yaml:"amqp"`
}

// AMQP contains the RabbitMQ forwarding settings.
type AMQP struct {
	URL      string
	Exchange string
}

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Routes Routes
}

// Routes contains the routes use case settings.
type Routes struct {
	DefaultOrigin string `yaml:"default-origin"`
}

// Log contains the default logger settings.
type Log struct {
	Level  string // debug, info, warn, or error
	Format string // text or json
}

// These bounds are enforced on the registry timeout.
var (
	minRegistryTimeout = settings.Duration(100 * time.Millisecond)
	maxRegistryTimeout = settings.Duration(time.Minute)
)

// Load reads the optional .env file (which sets the environment
// variables that are not set yet) and the path configuration file.
// Settings are overridden by the environment and then validated.
func Load(path string) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data, os.Getenv)
}

// Parse unmarshals the data byte slice as a Config instance, overrides
// its settings by the getenv environment lookup function, and finally
// validates and normalizes it. Extra items in the data are ignored and
// missing items take their default values.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	c.overrideByEnv(getenv)
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

func (c *Config) overrideByEnv(getenv func(string) string) {
	if v := getenv(EnvDatabaseURL); v != "" {
		c.Database.URL = v
	}
	if v := getenv(EnvRegistryURL); v != "" {
		c.Registry.BaseURL = v
	}
	if v := getenv(EnvAMQPURL); v != "" {
		c.Events.AMQP.URL = v
	}
	if v := getenv(EnvPort); v != "" {
		c.Gin.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. Zero values are
// replaced by their defaults.
func (c *Config) ValidateAndNormalize() error {
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	if err := c.Gin.validateAndNormalize(); err != nil {
		return fmt.Errorf("validating gin settings: %w", err)
	}

	r := &c.Registry
	if r.BaseURL == "" {
		r.BaseURL = "http://localhost:3000"
	}
	settings.OverwriteNil(&r.Timeout, ptr(settings.Duration(httprg.DefaultTimeout)))
	if err := settings.VerifyRange(
		&r.Timeout, &minRegistryTimeout, &maxRegistryTimeout,
	); err != nil {
		return fmt.Errorf("registry timeout (%v): %w", err.Value, err)
	}
	if r.RateLimit < 0 {
		return fmt.Errorf("negative registry rate-limit: %v", r.RateLimit)
	}
	if r.RateLimit > 0 && r.Burst <= 0 {
		r.Burst = 1
	}

	if c.Events.Service == "" {
		c.Events.Service = "roteirizacao-service"
	}
	if c.Events.AMQP.URL != "" && c.Events.AMQP.Exchange == "" {
		c.Events.AMQP.Exchange = "rotas"
	}
	if strings.TrimSpace(c.Usecases.Routes.DefaultOrigin) == "" {
		c.Usecases.Routes.DefaultOrigin = model.DefaultOrigin
	}

	switch c.Log.Level = strings.ToLower(c.Log.Level); c.Log.Level {
	case "":
		c.Log.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %q", c.Log.Level)
	}
	switch c.Log.Format = strings.ToLower(c.Log.Format); c.Log.Format {
	case "":
		c.Log.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", c.Log.Format)
	}
	return nil
}

func ptr[T any](t T) *T {
	return &t
}

// SetupLogger installs the default slog logger.
func (c *Config) SetupLogger() error {
	return log.Setup(os.Stderr, c.Log.Level, c.Log.Format)
}

// ConnectionPool creates a database connection pool for the r role.
func (c *Config) ConnectionPool(
	ctx context.Context, r repo.Role,
) (*postgres.Pool, error) {
	p, err := c.Database.ConnectionPool(ctx, r)
	if err != nil {
		return nil, fmt.Errorf(
			"connecting to %s as %q: %w", c.Database.Name, r, err,
		)
	}
	return p, nil
}

// NewRegistry instantiates the driver registry client.
func (c *Config) NewRegistry() (*httprg.Client, error) {
	opts := []httprg.Option{
		httprg.WithTimeout(time.Duration(*c.Registry.Timeout)),
	}
	if c.Registry.RateLimit > 0 {
		opts = append(opts, httprg.WithRateLimit(
			c.Registry.RateLimit, c.Registry.Burst,
		))
	}
	return httprg.New(c.Registry.BaseURL, opts...)
}

// NewBus instantiates the in-process event bus. If an AMQP URL is
// configured, all route events are forwarded to its exchange too.
// The returned close function releases the broker connection.
func (c *Config) NewBus(ctx context.Context) (
	bus *inproc.Bus, closer func() error, err error,
) {
	bus = inproc.New(c.Events.Service)
	if c.Events.AMQP.URL == "" {
		return bus, func() error { return nil }, nil
	}
	fwd, err := amqpfwd.Dial(c.Events.AMQP.URL, c.Events.AMQP.Exchange)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to amqp broker: %w", err)
	}
	for _, ch := range model.RouteChannels() {
		bus.Subscribe(ch, fwd.Forward)
	}
	log.Info(
		ctx, "forwarding events to amqp exchange",
		log.Channel(c.Events.AMQP.Exchange),
	)
	return bus, fwd.Close, nil
}

// NewRoutesUseCase instantiates the routes use case with the postgres
// routes repository, the registry client, and a random estimator.
func (c *Config) NewRoutesUseCase(
	p repo.Pool, n routesuc.Notifier,
) (*routesuc.UseCase, error) {
	reg, err := c.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("creating registry client: %w", err)
	}
	return routesuc.New(
		p, routesrp.New(), reg, randest.New(nil), n,
		routesuc.WithDefaultOrigin(c.Usecases.Routes.DefaultOrigin),
	)
}

// NewHealthUseCase instantiates the health use case.
func (c *Config) NewHealthUseCase(p repo.Pool) *healthuc.UseCase {
	return healthuc.New(p, c.Events.Service, c.Registry.BaseURL)
}

// NewSchemaUseCase instantiates the db bootstrap use case which
// hashes passwords according to the database auth-method setting.
func (c *Config) NewSchemaUseCase(p repo.Pool) *schemauc.UseCase {
	return schemauc.New(p, schemarp.New(), c.Database.hasher)
}

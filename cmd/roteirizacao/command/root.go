// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the routing
// service. Commands are organized using the cobra library.
// The root command starts the web server itself while the "db"
// sub-command can be used for the database bootstrap actions.
//
//	./roteirizacao [-c /path/of/main/config.yaml]   # start web server
//	./roteirizacao db init [-c /path/of/main/config.yaml]
//	    [--role-password secret]
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/logistica/roteirizacao/pkg/adapter/config"
	"github.com/logistica/roteirizacao/pkg/adapter/restful/gin"
	"github.com/logistica/roteirizacao/pkg/adapter/restful/gin/routes"
	"github.com/logistica/roteirizacao/pkg/core/log"
	"github.com/logistica/roteirizacao/pkg/core/repo"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds the graceful shutdown of the web server.
const shutdownTimeout = 10 * time.Second

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "roteirizacao",
	Short: "Delivery routes management service",
	Long: `Delivery routes management service of the logistics platform.
It creates routes for the active drivers (as reported by the driver
registry service), estimates their distance and duration, tracks them
along the pendente, em_andamento, concluida, and cancelada statuses,
and aggregates their statistics. Route changes are published as events
on an in-process bus and optionally forwarded to an AMQP exchange.`,
	RunE:         startWebServer,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
}

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	if err = c.SetupLogger(); err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}
	log.Info(
		ctx, "configs are loaded", slog.String("path", cfgPath),
		log.Valuer("registry_timeout", c.Registry.Timeout),
	)
	p, err := c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	bus, closeBus, err := c.NewBus(ctx)
	if err != nil {
		return fmt.Errorf("creating event bus: %w", err)
	}
	defer func() {
		if err := closeBus(); err != nil {
			log.Warn(ctx, "closing event bus", log.Err("err", err))
		}
	}()
	routesUC, err := c.NewRoutesUseCase(p, bus)
	if err != nil {
		return fmt.Errorf("creating routes use case: %w", err)
	}
	var e *gin.Engine = c.Gin.NewEngine()
	routes.Register(e, routesUC, c.NewHealthUseCase(p))
	return serve(ctx, &http.Server{
		Addr:              c.Gin.Addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	})
}

// serve runs srv until it fails or ctx is cancelled. In the latter
// case, in-flight requests are given shutdownTimeout to finish.
func serve(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "web server is listening", slog.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return fmt.Errorf("running web server: %w", err)
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down web server")
	ctx2, cancel := context.WithTimeout(
		context.WithoutCancel(ctx), shutdownTimeout,
	)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("running web server: %w", err)
	}
	return nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelgrid/root.go
// Summary: Root command, shared flags and the interactive viewer.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/framegrace/texelgrid/apps/texelgrid"
	"github.com/framegrace/texelgrid/config"
	"github.com/framegrace/texelgrid/internal/devshell"
	"github.com/framegrace/texelgrid/internal/telemetry"
	"github.com/framegrace/texelgrid/source"
	"github.com/framegrace/texelgrid/window"
)

// appName is the devshell registry entry the root command runs.
const appName = "texelgrid"

// settings are the command-line overrides shared by all subcommands.
type settings struct {
	columns     int
	source      string
	db          string
	total       int
	latency     time.Duration
	failEvery   int
	metricsAddr string
	logPath     string
}

func newRootCmd() *cobra.Command {
	s := &settings{}
	root := &cobra.Command{
		Use:   "texelgrid",
		Short: "Virtualized grid viewer for large datasets",
		Long: `Texelgrid shows a large dataset as a scrolling grid of cards while only
keeping a sliding window of items in memory. Pages are fetched on demand as
the window approaches either edge.

Keys: arrows/PgUp/PgDn/Home/End scroll, +/- change columns, r reloads, q quits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, s)
		},
	}

	pf := root.PersistentFlags()
	pf.IntVar(&s.columns, "columns", 0, "grid columns (default from config)")
	pf.StringVar(&s.source, "source", "", "data source: mock or sqlite")
	pf.StringVar(&s.db, "db", "", "sqlite database path")
	pf.IntVar(&s.total, "total", 0, "mock dataset size")
	pf.DurationVar(&s.latency, "latency", 0, "fixed mock latency, overriding the configured range")
	pf.IntVar(&s.failEvery, "fail-every", 0, "make every Nth fetch fail")

	root.Flags().StringVar(&s.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	root.Flags().StringVar(&s.logPath, "log", "", "append logs to this file (default: discard)")

	root.AddCommand(newSeedCmd(s), newDumpCmd(s))
	return root
}

// apply layers the flags the user set explicitly over the config files.
func (s *settings) apply(cmd *cobra.Command) error {
	ov := make(config.Config)
	flags := cmd.Flags()
	if flags.Changed("columns") {
		if s.columns < 1 {
			return fmt.Errorf("--columns must be at least 1, got %d", s.columns)
		}
		ov.Set(window.ConfigSection, "columns", s.columns)
	}
	if flags.Changed("source") {
		ov.Set(source.ConfigSection, "kind", s.source)
	}
	if flags.Changed("db") {
		ov.Set(source.ConfigSection, "db_path", s.db)
	}
	if flags.Changed("total") {
		ov.Set(source.ConfigSection, "total", s.total)
	}
	if flags.Changed("latency") {
		ov.Set(source.ConfigSection, "min_latency_ms", s.latency)
		ov.Set(source.ConfigSection, "max_latency_ms", s.latency)
	}
	if flags.Changed("fail-every") {
		ov.Set(source.ConfigSection, "fail_every", s.failEvery)
	}
	config.SetOverrides(ov)
	if err := config.Err(); err != nil {
		log.Printf("Texelgrid: config: %v", err)
	}
	return nil
}

// options returns the app and source settings with flags applied.
func (s *settings) options(cmd *cobra.Command) (texelgrid.Options, source.Config, error) {
	if err := s.apply(cmd); err != nil {
		return texelgrid.Options{}, source.Config{}, err
	}
	return texelgrid.LoadOptions(), source.ConfigFrom(config.System()), nil
}

// redirectLog sends log output to path, or discards it when path is empty,
// so log lines never land on the terminal screen.
func redirectLog(path string) (func(), error) {
	prev := log.Writer()
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(prev) }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(prev)
		_ = f.Close()
	}, nil
}

func runInteractive(cmd *cobra.Command, s *settings) error {
	restore, err := redirectLog(s.logPath)
	if err != nil {
		return err
	}
	defer restore()

	if err := s.apply(cmd); err != nil {
		return err
	}

	var (
		srv     *telemetry.Server
		metrics *window.Metrics
	)
	if s.metricsAddr != "" {
		exp, err := telemetry.NewExporter()
		if err != nil {
			return err
		}
		defer exp.Shutdown(context.Background())
		if metrics, err = window.NewMetrics(exp.Meter()); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		srv, err = telemetry.Listen(cmd.Context(), s.metricsAddr, exp)
		if err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	app, err := devshell.Build(appName, devshell.Host{Context: ctx, Metrics: metrics})
	if err != nil {
		if srv != nil {
			_ = srv.Close(context.Background())
		}
		return err
	}

	g.Go(func() error {
		defer func() {
			if srv != nil {
				_ = srv.Close(context.Background())
			}
		}()
		return devshell.RunWith(app)
	})
	if srv != nil {
		g.Go(func() error {
			if err := srv.Serve(); err != nil {
				app.Stop()
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

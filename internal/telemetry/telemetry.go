// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/telemetry/telemetry.go
// Summary: OTel meter provider exported over a Prometheus scrape endpoint.

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName scopes the instruments recorded by the grid.
const MeterName = "github.com/framegrace/texelgrid"

// Exporter pairs a meter provider with the handler serving its metrics.
type Exporter struct {
	Provider *sdkmetric.MeterProvider
	Handler  http.Handler
}

// NewExporter creates a Prometheus exporter backed by its own registry, so
// repeated calls do not collide.
func NewExporter() (*Exporter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &Exporter{
		Provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// Meter returns the grid meter.
func (e *Exporter) Meter() metric.Meter {
	return e.Provider.Meter(MeterName)
}

// Shutdown flushes and stops the provider.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if err := e.Provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	return nil
}

// Server serves /metrics and /healthz.
type Server struct {
	server   *http.Server
	listener net.Listener
}

// Listen binds addr and returns a server ready to Serve.
func Listen(ctx context.Context, addr string, e *Exporter) (*Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return &Server{server: &http.Server{Handler: mux}, listener: listener}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks until Close. A closed server returns nil.
func (s *Server) Serve() error {
	log.Printf("Telemetry: serving metrics on %s", s.Addr())
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}

// Close shuts the server down.
func (s *Server) Close(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}

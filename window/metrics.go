// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/metrics.go
// Summary: OTel instruments describing engine fetch traffic.

package window

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	metricRequests      = "texelgrid.window.requests"
	metricFetches       = "texelgrid.window.fetches"
	metricFetchFailures = "texelgrid.window.fetch.failures"
	metricMergedSlots   = "texelgrid.window.merged.slots"
	metricStaleDrops    = "texelgrid.window.stale.drops"
	metricShifts        = "texelgrid.window.shifts"

	attrEdge = "edge"
)

// Metrics holds the instruments recorded by Engine.
type Metrics struct {
	requests      metric.Int64Counter
	fetches       metric.Int64Counter
	fetchFailures metric.Int64Counter
	mergedSlots   metric.Int64Counter
	staleDrops    metric.Int64Counter
	shifts        metric.Int64Counter
}

// NewMetrics creates the engine instruments from the given meter.
func NewMetrics(mt metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.requests, metricRequests, "Boundary fetch requests queued before coalescing", "{request}"},
		{&m.fetches, metricFetches, "Outbound fetch calls issued to the data source", "{fetch}"},
		{&m.fetchFailures, metricFetchFailures, "Fetch calls that returned an error", "{fetch}"},
		{&m.mergedSlots, metricMergedSlots, "Slots written into the dataset by merges", "{slot}"},
		{&m.staleDrops, metricStaleDrops, "Fetch results dropped because the dataset was reset", "{fetch}"},
		{&m.shifts, metricShifts, "Window shifts caused by boundary signals", "{shift}"},
	}
	for _, c := range counters {
		counter, err := mt.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, err)
		}
		*c.dst = counter
	}
	return m, nil
}

// NopMetrics returns instruments that record nothing.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("texelgrid/window"))
	return m
}

func (m *Metrics) recordRequest(ctx context.Context) {
	m.requests.Add(ctx, 1)
}

func (m *Metrics) recordFetch(ctx context.Context) {
	m.fetches.Add(ctx, 1)
}

func (m *Metrics) recordFailure(ctx context.Context) {
	m.fetchFailures.Add(ctx, 1)
}

func (m *Metrics) recordMerge(ctx context.Context, slots int) {
	m.mergedSlots.Add(ctx, int64(slots))
}

func (m *Metrics) recordStale(ctx context.Context) {
	m.staleDrops.Add(ctx, 1)
}

func (m *Metrics) recordShift(ctx context.Context, edge Edge) {
	m.shifts.Add(ctx, 1, metric.WithAttributes(attribute.String(attrEdge, edge.String())))
}

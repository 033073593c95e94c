// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/options.go
// Summary: Engine configuration and its mapping from the "grid" config section.

package window

import (
	"log"
	"time"

	"github.com/framegrace/texelgrid/config"
)

// ConfigSection is the config section holding grid settings.
const ConfigSection = "grid"

// Options configures an Engine. They are fixed for the session except for
// Columns, which SetColumns may change.
type Options struct {
	// Columns is the number of slots per grid row. Default: 3
	Columns int

	// BucketSizeVh is the bucket size in viewport heights. Default: 2
	BucketSizeVh float64

	// BufferSizeVh is the buffer size in viewport heights. Default: 4
	BufferSizeVh float64

	// Margin expands the viewport when testing sentinel visibility. Default: 40%
	Margin Margin

	// Debounce, Lookback and Mode configure the request coalescer.
	Debounce time.Duration
	Lookback int
	Mode     CoalesceMode

	// Clock drives the debounce timer. Default: RealClock.
	Clock Clock

	// Metrics receives fetch accounting. Default: NopMetrics.
	Metrics *Metrics

	// Go runs a fetch. Default: a new goroutine.
	Go func(func())
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{
		Columns:      3,
		BucketSizeVh: 2,
		BufferSizeVh: 4,
		Margin:       Margin{Fraction: 0.4},
		Debounce:     10 * time.Millisecond,
		Lookback:     3,
		Mode:         CoalesceLiteral,
	}
}

// withDefaults fills zero or invalid fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Columns < 1 {
		o.Columns = def.Columns
	}
	if o.BucketSizeVh <= 0 {
		o.BucketSizeVh = def.BucketSizeVh
	}
	if o.BufferSizeVh <= 0 {
		o.BufferSizeVh = def.BufferSizeVh
	}
	if o.Debounce <= 0 {
		o.Debounce = def.Debounce
	}
	if o.Lookback <= 0 {
		o.Lookback = def.Lookback
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	if o.Metrics == nil {
		o.Metrics = NopMetrics()
	}
	if o.Go == nil {
		o.Go = func(f func()) { go f() }
	}
	return o
}

// OptionsFromConfig reads the grid section. Missing or invalid values fall
// back to DefaultOptions.
func OptionsFromConfig(cfg config.Config) Options {
	def := DefaultOptions()
	opts := Options{
		Columns:      cfg.GetInt(ConfigSection, "columns", def.Columns),
		BucketSizeVh: cfg.GetFloat(ConfigSection, "bucket_size_vh", def.BucketSizeVh),
		BufferSizeVh: cfg.GetFloat(ConfigSection, "buffer_size_vh", def.BufferSizeVh),
		Debounce:     cfg.GetDuration(ConfigSection, "debounce_ms", def.Debounce),
		Lookback:     cfg.GetInt(ConfigSection, "lookback", def.Lookback),
		Mode:         ParseCoalesceMode(cfg.GetString(ConfigSection, "coalesce_mode", def.Mode.String())),
		Margin:       def.Margin,
	}
	if raw := cfg.GetString(ConfigSection, "intersection_margin", ""); raw != "" {
		m, err := ParseMargin(raw)
		if err != nil {
			log.Printf("Window: %v, using %s", err, def.Margin)
		} else {
			opts.Margin = m
		}
	}
	return opts.withDefaults()
}

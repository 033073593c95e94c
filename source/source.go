// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/source.go
// Summary: Item type and data-source selection for the grid viewer.

package source

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/framegrace/texelgrid/config"
	"github.com/framegrace/texelgrid/window"
)

// ConfigSection is the config section holding source settings.
const ConfigSection = "source"

// ErrUnavailable is returned by sources that are deliberately failing.
var ErrUnavailable = errors.New("source: unavailable")

// Item is one dataset entry.
type Item struct {
	ID   int64
	Text string
}

// Source answers page requests for items.
type Source = window.Source[Item]

// Page is one answer from a Source.
type Page = window.Page[Item]

// Kind names a source implementation.
type Kind string

const (
	KindMock   Kind = "mock"
	KindSQLite Kind = "sqlite"
)

// Config selects and configures a source.
type Config struct {
	Kind Kind

	// Total is the mock dataset size. Default: 200
	Total int

	// MinLatency and MaxLatency bound the mock response time.
	// Default: 200ms and 600ms
	MinLatency time.Duration
	MaxLatency time.Duration

	// DBPath is the SQLite database file for KindSQLite.
	DBPath string

	// FailEvery makes every Nth fetch fail when > 0.
	FailEvery int
}

// DefaultConfig returns the mock source settings.
func DefaultConfig() Config {
	return Config{
		Kind:       KindMock,
		Total:      200,
		MinLatency: 200 * time.Millisecond,
		MaxLatency: 600 * time.Millisecond,
	}
}

// DefaultDBName is the database file used when db_path is empty. It lives
// in the config directory.
const DefaultDBName = "items.db"

// ConfigFrom reads the source section. An empty db_path resolves to
// DefaultDBName next to the config files.
func ConfigFrom(cfg config.Config) Config {
	def := DefaultConfig()
	c := Config{
		Kind:       Kind(cfg.GetString(ConfigSection, "kind", string(def.Kind))),
		Total:      cfg.GetInt(ConfigSection, "total", def.Total),
		MinLatency: cfg.GetDuration(ConfigSection, "min_latency_ms", def.MinLatency),
		MaxLatency: cfg.GetDuration(ConfigSection, "max_latency_ms", def.MaxLatency),
		DBPath:     cfg.GetString(ConfigSection, "db_path", ""),
		FailEvery:  cfg.GetInt(ConfigSection, "fail_every", 0),
	}
	if c.DBPath == "" {
		path, err := config.DataPath(DefaultDBName)
		if err != nil {
			log.Printf("Source: resolve database path: %v", err)
		}
		c.DBPath = path
	}
	return c
}

// Open builds the configured source. The returned close function releases
// any underlying resources and is never nil.
func Open(c Config) (Source, func() error, error) {
	var (
		src    Source
		closer = func() error { return nil }
	)
	switch c.Kind {
	case KindMock, "":
		src = NewMock(MockConfig{
			Total:      c.Total,
			MinLatency: c.MinLatency,
			MaxLatency: c.MaxLatency,
		})
	case KindSQLite:
		if c.DBPath == "" {
			return nil, nil, fmt.Errorf("sqlite source: db path is required")
		}
		db, err := OpenSQLite(c.DBPath)
		if err != nil {
			return nil, nil, err
		}
		src, closer = db, db.Close
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", c.Kind)
	}
	if c.FailEvery > 0 {
		src = NewFlaky(src, c.FailEvery)
	}
	return src, closer, nil
}

// clampRange bounds offset to [0,total] and length to what remains after it.
func clampRange(offset, length, total int) (int, int) {
	total = max(total, 0)
	offset = min(max(offset, 0), total)
	length = min(max(length, 0), total-offset)
	return offset, length
}

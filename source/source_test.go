// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package source

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texelgrid/config"
)

func instantMock(total int) *Mock {
	return NewMock(MockConfig{Total: total})
}

func TestMock_FirstPage(t *testing.T) {
	t.Parallel()

	page, err := instantMock(200).Fetch(context.Background(), 0, 3)
	require.NoError(t, err)

	assert.Equal(t, 200, page.Total)
	assert.Equal(t, []Item{{ID: 0, Text: "1"}, {ID: 1, Text: "2"}, {ID: 2, Text: "3"}}, page.Items)
}

func TestMock_Clamping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		offset    int
		length    int
		wantFirst int64
		wantLen   int
	}{
		{"negative offset", -10, 5, 0, 5},
		{"negative length", 10, -5, 0, 0},
		{"tail is short", 195, 10, 195, 5},
		{"past the end", 500, 10, 0, 0},
	}
	src := instantMock(200)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := src.Fetch(context.Background(), tt.offset, tt.length)
			require.NoError(t, err)
			require.Len(t, page.Items, tt.wantLen)
			assert.Equal(t, 200, page.Total)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, page.Items[0].ID)
			}
		})
	}
}

func TestMock_LatencyWithinBounds(t *testing.T) {
	t.Parallel()

	m := NewMock(MockConfig{Total: 10, MinLatency: 200 * time.Millisecond, MaxLatency: 600 * time.Millisecond, Seed: 7})
	for range 50 {
		d := m.latency()
		assert.GreaterOrEqual(t, d, 200*time.Millisecond)
		assert.LessOrEqual(t, d, 600*time.Millisecond)
	}
}

func TestMock_HonoursCancellation(t *testing.T) {
	t.Parallel()

	m := NewMock(MockConfig{Total: 10, MinLatency: time.Hour, MaxLatency: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Fetch(ctx, 0, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFlaky_FailsEveryNth(t *testing.T) {
	t.Parallel()

	f := NewFlaky(instantMock(10), 3)
	var failures int
	for range 9 {
		if _, err := f.Fetch(context.Background(), 0, 1); err != nil {
			require.ErrorIs(t, err, ErrUnavailable)
			failures++
		}
	}
	assert.Equal(t, 3, failures)
	assert.Equal(t, 9, f.Calls())
}

func TestClampRange(t *testing.T) {
	t.Parallel()

	off, n := clampRange(-1, 10, 5)
	assert.Equal(t, 0, off)
	assert.Equal(t, 5, n)

	off, n = clampRange(3, 1, -4)
	assert.Equal(t, 0, off)
	assert.Equal(t, 0, n)
}

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		ConfigSection: map[string]interface{}{
			"kind":           "sqlite",
			"db_path":        "/tmp/items.db",
			"min_latency_ms": 5.0,
		},
	}
	c := ConfigFrom(cfg)
	assert.Equal(t, KindSQLite, c.Kind)
	assert.Equal(t, "/tmp/items.db", c.DBPath)
	assert.Equal(t, 5*time.Millisecond, c.MinLatency)
	assert.Equal(t, 600*time.Millisecond, c.MaxLatency)
	assert.Equal(t, 200, c.Total)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	src, closer, err := Open(Config{Kind: KindMock, Total: 4, FailEvery: 1})
	require.NoError(t, err)
	require.NoError(t, closer())
	_, err = src.Fetch(context.Background(), 0, 1)
	assert.True(t, errors.Is(err, ErrUnavailable))

	_, _, err = Open(Config{Kind: KindSQLite})
	assert.Error(t, err)

	_, _, err = Open(Config{Kind: "postgres"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "items.db")
	src, closer, err = Open(Config{Kind: KindSQLite, DBPath: path})
	require.NoError(t, err)
	defer closer()
	page, err := src.Fetch(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
}

func TestConfigFromDefaultsDBPath(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)

	c := ConfigFrom(config.Config{})
	assert.Equal(t, KindMock, c.Kind)
	assert.Equal(t, filepath.Join(root, "texelgrid", DefaultDBName), c.DBPath)
}

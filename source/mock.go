// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/mock.go
// Summary: In-memory source with simulated response latency.

package source

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

// MockConfig configures a Mock.
type MockConfig struct {
	Total      int
	MinLatency time.Duration
	MaxLatency time.Duration
	// Seed makes the latency sequence reproducible when non-zero.
	Seed uint64
}

// Mock serves Total numbered items after a random delay.
type Mock struct {
	cfg MockConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMock creates a mock source.
func NewMock(cfg MockConfig) *Mock {
	cfg.Total = max(cfg.Total, 0)
	cfg.MinLatency = max(cfg.MinLatency, 0)
	cfg.MaxLatency = max(cfg.MaxLatency, cfg.MinLatency)
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Mock{cfg: cfg, rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Fetch waits a random latency in [MinLatency, MaxLatency] and returns the
// clamped page. Item i has ID i and text i+1.
func (m *Mock) Fetch(ctx context.Context, offset, length int) (Page, error) {
	if d := m.latency(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Page{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	offset, n := clampRange(offset, length, m.cfg.Total)
	items := make([]Item, n)
	for i := range items {
		id := offset + i
		items[i] = Item{ID: int64(id), Text: strconv.Itoa(id + 1)}
	}
	return Page{Total: m.cfg.Total, Items: items}, nil
}

func (m *Mock) latency() time.Duration {
	spread := m.cfg.MaxLatency - m.cfg.MinLatency
	if spread <= 0 {
		return m.cfg.MinLatency
	}
	m.mu.Lock()
	jitter := time.Duration(m.rng.Int64N(int64(spread) + 1))
	m.mu.Unlock()
	return m.cfg.MinLatency + jitter
}

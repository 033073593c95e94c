// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/flaky.go
// Summary: Failure injection wrapper for exercising fetch-failure handling.

package source

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Flaky fails every Nth call with ErrUnavailable and forwards the rest.
type Flaky struct {
	src   Source
	every int64
	calls atomic.Int64
}

// NewFlaky wraps src. every <= 0 never fails.
func NewFlaky(src Source, every int) *Flaky {
	return &Flaky{src: src, every: int64(every)}
}

// Fetch implements Source.
func (f *Flaky) Fetch(ctx context.Context, offset, length int) (Page, error) {
	n := f.calls.Add(1)
	if f.every > 0 && n%f.every == 0 {
		return Page{}, fmt.Errorf("fetch #%d offset=%d: %w", n, offset, ErrUnavailable)
	}
	return f.src.Fetch(ctx, offset, length)
}

// Calls returns how many fetches were attempted.
func (f *Flaky) Calls() int {
	return int(f.calls.Load())
}

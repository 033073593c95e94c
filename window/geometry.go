// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/geometry.go
// Summary: Derives bucket and buffer sizes from viewport measurements.
//
// A grid row is assumed to be square: its height is the container width
// divided by the column count. The viewport therefore holds
// round(viewportHeight / rowHeight) rows, and the bucket and buffer are
// expressed as multiples of one viewport worth of slots.

package window

import (
	"errors"
	"math"
)

// ErrGeometryUnavailable is returned when the viewport or container has not
// been measured yet (zero or negative size). Callers skip recomputation.
var ErrGeometryUnavailable = errors.New("window: geometry unavailable")

// Measurement is a snapshot from the geometry provider.
type Measurement struct {
	ViewportHeight float64
	ContainerWidth float64
}

// Valid reports whether both dimensions are usable.
func (m Measurement) Valid() bool {
	return m.ViewportHeight > 0 && m.ContainerWidth > 0
}

// Sizing is the output of the geometry calculator.
type Sizing struct {
	// RowHeight is the measured pixel (or line) height of one grid row.
	RowHeight float64
	// RowsPerScreen is how many grid rows fit in the viewport.
	RowsPerScreen int
	// ViewportSlots is RowsPerScreen * columns.
	ViewportSlots int
	// Bucket is the window shift increment, in slots.
	Bucket int
	// Buffer is the number of materialized slots, in slots.
	Buffer int
}

// ComputeSizing derives bucket and buffer sizes. prevBuffer is the buffer
// size from the previous measurement; it acts as a floor unless the column
// count changed, in which case the buffer is recomputed from scratch.
func ComputeSizing(m Measurement, columns int, bucketMul, bufferMul float64, prevBuffer int, columnsChanged bool) (Sizing, error) {
	if !m.Valid() || columns < 1 {
		return Sizing{}, ErrGeometryUnavailable
	}

	rowHeight := m.ContainerWidth / float64(columns)
	rows := int(math.Floor(m.ViewportHeight/rowHeight + 0.5))
	if rows < 1 {
		rows = 1
	}
	slots := rows * columns

	buffer := int(float64(slots) * bufferMul)
	if !columnsChanged {
		buffer = max(prevBuffer, buffer)
	}

	return Sizing{
		RowHeight:     rowHeight,
		RowsPerScreen: rows,
		ViewportSlots: slots,
		Bucket:        int(float64(slots) * bucketMul),
		Buffer:        buffer,
	}, nil
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/termgeom/termgeom.go
// Summary: Turns terminal cell dimensions into window measurements.
//
// Terminal cells are about twice as tall as they are wide. Cards are kept
// roughly square, so a card spans width/columns cells and half as many
// lines. The reported container width is columns * cardHeight, making the
// engine's row height exactly one card in lines.

package termgeom

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/framegrace/texelgrid/window"
)

// CellAspect is the height:width ratio of a terminal cell.
const CellAspect = 2

// CardHeight returns the card height in lines for a surface width cells
// wide, never less than one line.
func CardHeight(width, columns int) int {
	if columns < 1 {
		columns = 1
	}
	return max(width/columns/CellAspect, 1)
}

// Measure builds a measurement for a width x height cell surface. Empty
// surfaces yield a zero measurement that the engine rejects.
func Measure(width, height, columns int) window.Measurement {
	if width <= 0 || height <= 0 || columns < 1 {
		return window.Measurement{}
	}
	return window.Measurement{
		ViewportHeight: float64(height),
		ContainerWidth: float64(columns * CardHeight(width, columns)),
	}
}

// FromScreen measures a tcell screen, reserving reserved lines for chrome.
func FromScreen(s tcell.Screen, columns, reserved int) window.Measurement {
	w, h := s.Size()
	return Measure(w, h-reserved, columns)
}

// TTY measures the terminal behind fd.
func TTY(fd, columns int) (window.Measurement, error) {
	if !term.IsTerminal(fd) {
		return window.Measurement{}, fmt.Errorf("fd %d is not a terminal", fd)
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return window.Measurement{}, fmt.Errorf("terminal size: %w", err)
	}
	return Measure(w, h, columns), nil
}

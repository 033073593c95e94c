// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/buffer.go
// Summary: Cell buffers that apps render into and the shell copies to the screen.

package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Cell is one screen cell.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

// Buffer is a row-major grid of cells.
type Buffer [][]Cell

// NewBuffer allocates a width x height buffer filled with blanks.
func NewBuffer(width, height int) Buffer {
	width, height = max(width, 0), max(height, 0)
	buf := make(Buffer, height)
	for y := range buf {
		row := make([]Cell, width)
		for x := range row {
			row[x] = Cell{Ch: ' ', Style: tcell.StyleDefault}
		}
		buf[y] = row
	}
	return buf
}

// Size returns the buffer width and height.
func (b Buffer) Size() (int, int) {
	if len(b) == 0 {
		return 0, 0
	}
	return len(b[0]), len(b)
}

// Set writes a cell, ignoring out-of-range coordinates.
func (b Buffer) Set(x, y int, ch rune, style tcell.Style) {
	if y < 0 || y >= len(b) || x < 0 || x >= len(b[y]) {
		return
	}
	b[y][x] = Cell{Ch: ch, Style: style}
}

// Fill paints a rectangle.
func (b Buffer) Fill(x, y, w, h int, ch rune, style tcell.Style) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			b.Set(xx, yy, ch, style)
		}
	}
}

// Text writes s starting at (x, y) clipped to maxWidth cells and returns the
// cells used. Wide runes take two cells; the second is left blank.
func (b Buffer) Text(x, y, maxWidth int, s string, style tcell.Style) int {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if used+w > maxWidth {
			break
		}
		b.Set(x+used, y, r, style)
		if w == 2 {
			b.Set(x+used+1, y, ' ', style)
		}
		used += w
	}
	return used
}

// Row returns row y as a string, mostly for tests and headless output.
func (b Buffer) Row(y int) string {
	if y < 0 || y >= len(b) {
		return ""
	}
	runes := make([]rune, 0, len(b[y]))
	for _, c := range b[y] {
		runes = append(runes, c.Ch)
	}
	return string(runes)
}

// Blit copies the buffer onto a screen at the origin.
func (b Buffer) Blit(screen tcell.Screen) {
	for y, row := range b {
		for x, cell := range row {
			screen.SetContent(x, y, cell.Ch, nil, cell.Style)
		}
	}
}

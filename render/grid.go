// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/grid.go
// Summary: Draws the visible window slice as a grid of cards.
//
// Content is laid out in lines: RowsAbove padding rows, the materialized
// rows, then RowsBelow padding rows, each CardHeight lines tall. Slot k of
// the window always lands on grid row RowsAbove + k/Columns, so an item keeps
// its line position as the window slides.

package render

import (
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelgrid/source"
	"github.com/framegrace/texelgrid/window"
)

const (
	loadingText = "Loading..."
	emptyText   = "No items to show."
)

// Layout describes the line geometry of a view.
type Layout struct {
	Columns    int
	CardWidth  int
	CardHeight int
	RowsAbove  int
	Rows       int
	RowsBelow  int
}

// LayoutFor computes the layout of v for a surface width cells wide.
func LayoutFor(v window.View[source.Item], width, cardHeight int) Layout {
	cols := max(v.Columns, 1)
	return Layout{
		Columns:    cols,
		CardWidth:  max(width/cols, 1),
		CardHeight: max(cardHeight, 1),
		RowsAbove:  v.Padding.RowsAbove,
		Rows:       (len(v.Slots) + cols - 1) / cols,
		RowsBelow:  v.Padding.RowsBelow,
	}
}

// TotalLines is the virtual content height.
func (l Layout) TotalLines() int {
	return (l.RowsAbove + l.Rows + l.RowsBelow) * l.CardHeight
}

// TopPadding is the line span of the padding above the window.
func (l Layout) TopPadding() (start, end int) {
	return 0, l.RowsAbove * l.CardHeight
}

// BottomPadding is the line span of the padding below the window.
func (l Layout) BottomPadding() (start, end int) {
	start = (l.RowsAbove + l.Rows) * l.CardHeight
	return start, start + l.RowsBelow*l.CardHeight
}

// LineOf returns the first line of dataset index i.
func (l Layout) LineOf(i int) int {
	return (i / l.Columns) * l.CardHeight
}

// Grid renders views into cell buffers.
type Grid struct {
	Highlighter *Highlighter
	Spinner     *Spinner
	Border      bool

	borderStyle tcell.Style
	idStyle     tcell.Style
}

// NewGrid creates a grid renderer.
func NewGrid(h *Highlighter, spinner *Spinner, border bool) *Grid {
	if h == nil {
		h = NewHighlighter("", "")
	}
	base := h.Base()
	return &Grid{
		Highlighter: h,
		Spinner:     spinner,
		Border:      border,
		borderStyle: base.Dim(true),
		idStyle:     base.Dim(true),
	}
}

// Render draws v into buf with the content scrolled down by scroll lines.
func (g *Grid) Render(buf Buffer, v window.View[source.Item], scroll, cardHeight int) Layout {
	width, height := buf.Size()
	l := LayoutFor(v, width, cardHeight)

	if !v.Known {
		g.banner(buf, loadingText)
		return l
	}
	if v.Total == 0 {
		g.banner(buf, emptyText)
		return l
	}

	first := scroll / l.CardHeight
	last := (scroll + height - 1) / l.CardHeight
	for row := max(first, l.RowsAbove); row <= last && row < l.RowsAbove+l.Rows; row++ {
		y := row*l.CardHeight - scroll
		for col := 0; col < l.Columns; col++ {
			k := (row-l.RowsAbove)*l.Columns + col
			if k >= len(v.Slots) {
				break
			}
			g.card(buf, col*l.CardWidth, y, l.CardWidth, l.CardHeight, v.Top+k, v.Slots[k])
		}
	}
	return l
}

func (g *Grid) banner(buf Buffer, text string) {
	width, height := buf.Size()
	w := runewidth.StringWidth(text)
	buf.Text(max((width-w)/2, 0), height/2, width, text, g.Highlighter.Base())
}

func (g *Grid) card(buf Buffer, x, y, w, h, index int, slot window.Slot[source.Item]) {
	inner := struct{ x, y, w, h int }{x, y, w, h}
	if g.Border && w >= 4 && h >= 3 {
		g.box(buf, x, y, w, h)
		inner.x, inner.y, inner.w, inner.h = x+1, y+1, w-2, h-2
	}
	mid := inner.y + (inner.h-1)/2

	item, ok := slot.Item()
	if !ok {
		frame := g.Spinner.Frame()
		buf.Set(inner.x+(inner.w-1)/2, mid, frame, g.idStyle)
		return
	}

	if g.Border && inner.h >= 2 {
		label := runewidth.Truncate("#"+strconv.Itoa(index), inner.w, "")
		buf.Text(inner.x, inner.y, inner.w, label, g.idStyle)
		if mid == inner.y {
			mid++
		}
	}

	segs := g.Highlighter.Highlight(item.Text)
	textWidth := 0
	for _, s := range segs {
		textWidth += runewidth.StringWidth(s.Text)
	}
	cx := inner.x + max((inner.w-textWidth)/2, 0)
	remaining := inner.w - (cx - inner.x)
	for _, s := range segs {
		if remaining <= 0 {
			break
		}
		used := buf.Text(cx, mid, remaining, s.Text, s.Style)
		cx += used
		remaining -= used
	}
}

func (g *Grid) box(buf Buffer, x, y, w, h int) {
	st := g.borderStyle
	buf.Set(x, y, '╭', st)
	buf.Set(x+w-1, y, '╮', st)
	buf.Set(x, y+h-1, '╰', st)
	buf.Set(x+w-1, y+h-1, '╯', st)
	for xx := x + 1; xx < x+w-1; xx++ {
		buf.Set(xx, y, '─', st)
		buf.Set(xx, y+h-1, '─', st)
	}
	for yy := y + 1; yy < y+h-1; yy++ {
		buf.Set(x, yy, '│', st)
		buf.Set(x+w-1, yy, '│', st)
	}
}

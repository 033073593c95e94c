// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/framegrace/texelgrid/source"
	"github.com/framegrace/texelgrid/window"
)

func frozenSpinner() *Spinner {
	t0 := time.Unix(0, 0)
	return &Spinner{Interval: time.Second, start: t0, now: func() time.Time { return t0 }}
}

func plainGrid() *Grid {
	return NewGrid(NewHighlighter("", "text"), frozenSpinner(), false)
}

func loadedView(top, n, columns int, padding window.Padding) window.View[source.Item] {
	var d window.Dataset[source.Item]
	items := make([]source.Item, n)
	for i := range items {
		items[i] = source.Item{ID: int64(top + i), Text: strconv.Itoa(top + i + 1)}
	}
	d = d.Merge(top, top+n, items)
	return window.View[source.Item]{
		Phase:   window.Active,
		Top:     top,
		Columns: columns,
		Slots:   d.Slice(top, top+n),
		Padding: padding,
		Total:   d.Len(),
		Known:   true,
	}
}

func TestBuffer_TextClipsWideRunes(t *testing.T) {
	buf := NewBuffer(5, 1)
	used := buf.Text(0, 0, 3, "日本", buf[0][0].Style)
	if used != 2 {
		t.Fatalf("expected 2 cells used, got %d", used)
	}
	if got := buf.Row(0); got != "日    " {
		t.Errorf("unexpected row %q", got)
	}
	buf.Set(10, 10, 'x', buf[0][0].Style)
	if w, h := buf.Size(); w != 5 || h != 1 {
		t.Errorf("unexpected size %dx%d", w, h)
	}
}

func TestGrid_Banners(t *testing.T) {
	g := plainGrid()

	buf := NewBuffer(30, 5)
	g.Render(buf, window.View[source.Item]{Columns: 3}, 0, 2)
	if !strings.Contains(buf.Row(2), "Loading...") {
		t.Errorf("expected loading banner, got %q", buf.Row(2))
	}

	buf = NewBuffer(30, 5)
	g.Render(buf, window.View[source.Item]{Columns: 3, Known: true}, 0, 2)
	if !strings.Contains(buf.Row(2), "No items to show.") {
		t.Errorf("expected empty banner, got %q", buf.Row(2))
	}
}

func TestGrid_DrawsCardsInColumns(t *testing.T) {
	g := plainGrid()
	buf := NewBuffer(30, 4)

	l := g.Render(buf, loadedView(0, 6, 3, window.Padding{}), 0, 2)
	if l.CardWidth != 10 || l.Rows != 2 {
		t.Fatalf("unexpected layout %+v", l)
	}
	row0 := []rune(buf.Row(0))
	row2 := []rune(buf.Row(2))
	for col, want := range []rune{'1', '2', '3'} {
		if got := row0[col*10+4]; got != want {
			t.Errorf("row 0 col %d: expected %q, got %q", col, want, got)
		}
	}
	if got := row2[4]; got != '4' {
		t.Errorf("row 2: expected '4', got %q", got)
	}
}

func TestGrid_EmptySlotShowsSpinner(t *testing.T) {
	g := plainGrid()
	buf := NewBuffer(30, 2)

	var d window.Dataset[source.Item]
	d = d.Merge(0, 3, nil)
	v := window.View[source.Item]{Columns: 3, Slots: d.Slice(0, 3), Total: 3, Known: true}
	g.Render(buf, v, 0, 2)

	if got := []rune(buf.Row(0))[4]; got != '⣾' {
		t.Errorf("expected spinner frame, got %q", got)
	}
}

func TestGrid_ScrollPastPadding(t *testing.T) {
	g := plainGrid()
	buf := NewBuffer(30, 2)

	v := loadedView(30, 3, 3, window.Padding{RowsAbove: 10, RowsBelow: 5})
	l := g.Render(buf, v, 20, 2)

	if got := []rune(buf.Row(0))[4]; got != '3' {
		t.Errorf("expected first card of the window (item 31 -> '3'), got %q", got)
	}
	if l.TotalLines() != 32 {
		t.Errorf("expected 32 lines, got %d", l.TotalLines())
	}
	if s, e := l.TopPadding(); s != 0 || e != 20 {
		t.Errorf("unexpected top padding span [%d,%d)", s, e)
	}
	if s, e := l.BottomPadding(); s != 22 || e != 32 {
		t.Errorf("unexpected bottom padding span [%d,%d)", s, e)
	}
	if line := l.LineOf(30); line != 20 {
		t.Errorf("expected item 30 on line 20, got %d", line)
	}
}

func TestGrid_BorderedCardShowsIndex(t *testing.T) {
	g := NewGrid(NewHighlighter("", "text"), frozenSpinner(), true)
	buf := NewBuffer(12, 4)

	g.Render(buf, loadedView(0, 1, 1, window.Padding{}), 0, 4)
	if got := buf.Row(0); !strings.HasPrefix(got, "╭") {
		t.Errorf("expected top border, got %q", got)
	}
	if got := buf.Row(1); !strings.Contains(got, "#0") {
		t.Errorf("expected index label, got %q", got)
	}
	if got := buf.Row(2); !strings.Contains(got, "1") {
		t.Errorf("expected item text, got %q", got)
	}
}

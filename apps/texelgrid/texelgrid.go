// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/texelgrid/texelgrid.go
// Summary: Scrollable virtual grid app wiring engine, sentinels and renderer.
//
// The app owns a line scroll offset over the virtual content height. Moving
// it drives the sentinel tracker, whose signals shift the engine window; the
// engine in turn requests redraws as pages arrive. The last screen line is a
// status bar.

package texelgrid

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelgrid/internal/sentinel"
	"github.com/framegrace/texelgrid/internal/termgeom"
	"github.com/framegrace/texelgrid/render"
	"github.com/framegrace/texelgrid/source"
	"github.com/framegrace/texelgrid/window"
)

const (
	statusLines = 1
	wheelStep   = 3
	maxColumns  = 12
)

// App is the interactive grid viewer.
type App struct {
	opts    Options
	engine  *window.Engine[source.Item]
	tracker *sentinel.Tracker

	mu         sync.Mutex
	grid       *render.Grid
	width      int
	height     int
	scroll     int
	cardHeight int

	refresh  chan<- bool
	stop     chan struct{}
	stopOnce sync.Once
}

// New creates the app reading items from src.
func New(ctx context.Context, src source.Source, opts Options) *App {
	a := &App{
		opts:       opts,
		stop:       make(chan struct{}),
		grid:       newGrid(opts),
		cardHeight: 1,
	}
	a.engine = window.NewEngine[source.Item](ctx, src, opts.Window)
	a.tracker = sentinel.New(a.locate)
	a.engine.OnChange(a.requestRefresh)
	a.engine.Bind(a.tracker)
	return a
}

func newGrid(opts Options) *render.Grid {
	return render.NewGrid(
		render.NewHighlighter(opts.Style, opts.Lexer),
		render.NewSpinner(opts.SpinnerInterval),
		opts.Border,
	)
}

// Engine exposes the window engine.
func (a *App) Engine() *window.Engine[source.Item] {
	return a.engine
}

// GetTitle returns the app title.
func (a *App) GetTitle() string {
	return "Texelgrid"
}

// SetRefreshNotifier registers the channel used to request redraws.
func (a *App) SetRefreshNotifier(ch chan<- bool) {
	a.mu.Lock()
	a.refresh = ch
	a.mu.Unlock()
}

func (a *App) requestRefresh() {
	a.mu.Lock()
	ch := a.refresh
	a.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- true:
	default:
	}
}

// Run animates loading placeholders until Stop.
func (a *App) Run() error {
	ticker := time.NewTicker(a.opts.SpinnerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if a.loading() {
				a.requestRefresh()
			}
		case <-a.stop:
			return nil
		}
	}
}

// Stop ends Run and closes the engine.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
		a.engine.Close()
		a.requestRefresh()
	})
}

func (a *App) loading() bool {
	v := a.engine.View()
	if !v.Known || v.Pending > 0 {
		return true
	}
	for _, s := range v.Slots {
		if !s.IsLoaded() {
			return true
		}
	}
	return false
}

// Resize re-measures the viewport. A change of window sizes resets the
// window to the start, so the scroll offset follows.
func (a *App) Resize(cols, rows int) {
	a.mu.Lock()
	a.width, a.height = cols, rows
	a.cardHeight = termgeom.CardHeight(cols, a.engine.Columns())
	a.mu.Unlock()

	a.tracker.Resize(max(rows-statusLines, 0))
	a.measure()
}

func (a *App) measure() {
	a.mu.Lock()
	w, h := a.width, a.height
	a.mu.Unlock()

	before := a.engine.State()
	if err := a.engine.Measure(termgeom.Measure(w, h-statusLines, a.engine.Columns())); err != nil {
		return
	}
	after := a.engine.State()
	if after.Bucket != before.Bucket || after.Buffer != before.Buffer || after.Columns != before.Columns {
		a.scrollTo(0)
	}
}

// SetColumns changes the column count and returns to the start.
func (a *App) SetColumns(n int) {
	n = min(max(n, 1), maxColumns)
	if err := a.engine.SetColumns(n); err != nil {
		log.Printf("Texelgrid: set columns: %v", err)
		return
	}
	a.mu.Lock()
	a.cardHeight = termgeom.CardHeight(a.width, n)
	a.mu.Unlock()
	a.measure()
	a.scrollTo(0)
}

// ResetData discards the dataset and reloads from the start, applying
// config edits first when Options.Reload is set.
func (a *App) ResetData() {
	if a.opts.Reload != nil {
		a.reload()
	}
	a.engine.Reset()
	a.scrollTo(0)
}

func (a *App) reload() {
	opts, err := a.opts.Reload()
	if err != nil {
		log.Printf("Texelgrid: reload config: %v", err)
		return
	}
	grid := newGrid(opts)
	a.mu.Lock()
	a.grid = grid
	a.mu.Unlock()
	if n := opts.Window.Columns; n != a.engine.Columns() {
		a.SetColumns(n)
	}
}

// Scroll returns the current scroll offset in lines.
func (a *App) Scroll() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scroll
}

// scrollBy moves the viewport by delta lines.
func (a *App) scrollBy(delta int) {
	a.scrollTo(a.Scroll() + delta)
}

// scrollTo clamps y to the content and moves the tracker. It must not be
// called with a.mu held: the tracker may shift the engine synchronously.
func (a *App) scrollTo(y int) {
	layout := a.layout()
	a.mu.Lock()
	viewH := max(a.height-statusLines, 0)
	y = min(y, layout.TotalLines()-viewH)
	y = max(y, 0)
	a.scroll = y
	a.mu.Unlock()

	a.tracker.Scroll(y)
	a.requestRefresh()
}

func (a *App) layout() render.Layout {
	v := a.engine.View()
	a.mu.Lock()
	w, ch := a.width, a.cardHeight
	a.mu.Unlock()
	return render.LayoutFor(v, w, ch)
}

// locate places the sentinels on the padding blocks around the window.
func (a *App) locate(edge window.Edge) sentinel.Span {
	l := a.layout()
	if edge == window.EdgeTop {
		s, e := l.TopPadding()
		return sentinel.Span{Start: s, End: e}
	}
	s, e := l.BottomPadding()
	return sentinel.Span{Start: s, End: e}
}

// HandleKey processes navigation and command keys.
func (a *App) HandleKey(ev *tcell.EventKey) {
	a.mu.Lock()
	page := max(a.height-statusLines, 1)
	a.mu.Unlock()

	switch ev.Key() {
	case tcell.KeyUp:
		a.scrollBy(-1)
	case tcell.KeyDown:
		a.scrollBy(1)
	case tcell.KeyPgUp:
		a.scrollBy(-page)
	case tcell.KeyPgDn:
		a.scrollBy(page)
	case tcell.KeyHome:
		a.scrollTo(0)
	case tcell.KeyEnd:
		a.scrollTo(a.layout().TotalLines())
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j':
			a.scrollBy(1)
		case 'k':
			a.scrollBy(-1)
		case '+', '=':
			a.SetColumns(a.engine.Columns() + 1)
		case '-':
			a.SetColumns(a.engine.Columns() - 1)
		case 'r':
			a.ResetData()
		case 'q':
			a.Stop()
		}
	}
}

// HandleMouse scrolls on wheel events.
func (a *App) HandleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		a.scrollBy(-wheelStep)
	case buttons&tcell.WheelDown != 0:
		a.scrollBy(wheelStep)
	}
}

// Render draws the grid and the status bar.
func (a *App) Render() render.Buffer {
	v := a.engine.View()
	a.mu.Lock()
	w, h, scroll, ch, grid := a.width, a.height, a.scroll, a.cardHeight, a.grid
	a.mu.Unlock()

	buf := render.NewBuffer(w, h)
	if h <= 0 || w <= 0 {
		return buf
	}
	gridH := max(h-statusLines, 0)
	grid.Render(buf[:gridH], v, scroll, ch)
	a.status(buf, h-1, w, v)
	return buf
}

func (a *App) status(buf render.Buffer, y, w int, v window.View[source.Item]) {
	st := tcell.StyleDefault.Reverse(true)
	buf.Fill(0, y, w, 1, ' ', st)

	last := min(v.Top+len(v.Slots), v.Total)
	text := fmt.Sprintf(" %s  items %d-%d of %d  cols %d  pending %d  [↑↓ PgUp PgDn +/- r q]",
		v.Phase, min(v.Top, last), last, v.Total, v.Columns, v.Pending)
	buf.Text(0, y, w, text, st)
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package texelgrid

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelgrid/config"
	"github.com/framegrace/texelgrid/source"
	"github.com/framegrace/texelgrid/window"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Window.Debounce = 5 * time.Millisecond
	opts.Lexer = "text"
	opts.SpinnerInterval = 10 * time.Millisecond
	return opts
}

func newTestApp(t *testing.T, src source.Source) *App {
	t.Helper()
	a := New(context.Background(), src, testOptions())
	t.Cleanup(a.Stop)
	return a
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// loadedApp returns a 60x21 app (cards 10 lines, bucket 12, buffer 24)
// after the initial page has arrived.
func loadedApp(t *testing.T) *App {
	t.Helper()
	a := newTestApp(t, source.NewMock(source.MockConfig{Total: 200}))
	a.Resize(60, 21)
	waitFor(t, func() bool { return a.Engine().View().Known }, "initial page")
	return a
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func allLoaded(v window.View[source.Item]) bool {
	if len(v.Slots) == 0 {
		return false
	}
	for _, s := range v.Slots {
		if !s.IsLoaded() {
			return false
		}
	}
	return true
}

func TestApp_InitialWindow(t *testing.T) {
	a := loadedApp(t)

	s := a.Engine().State()
	if s.Phase != window.Active || s.Bucket != 12 || s.Buffer != 24 {
		t.Fatalf("unexpected state %+v", s)
	}
	v := a.Engine().View()
	if v.Total != 200 || !allLoaded(v) {
		t.Errorf("expected the first buffer loaded, total=%d", v.Total)
	}
}

func TestApp_EndSlidesWindowToTail(t *testing.T) {
	a := loadedApp(t)

	a.HandleKey(key(tcell.KeyEnd))
	if got := a.Scroll(); got != 650 {
		t.Fatalf("expected scroll 650 (670 lines - 20), got %d", got)
	}
	if top := a.Engine().State().Top; top != 180 {
		t.Fatalf("expected window top 180, got %d", top)
	}
	waitFor(t, func() bool { return allLoaded(a.Engine().View()) }, "tail to load")

	a.HandleKey(key(tcell.KeyHome))
	if top := a.Engine().State().Top; top != 0 {
		t.Errorf("expected Home to slide the window back to 0, got %d", top)
	}
}

func TestApp_ColumnChangeResets(t *testing.T) {
	a := loadedApp(t)
	a.HandleKey(key(tcell.KeyPgDn))
	if a.Scroll() != 20 {
		t.Fatalf("expected PgDn to scroll a page, got %d", a.Scroll())
	}

	a.HandleKey(runeKey('+'))
	s := a.Engine().State()
	if s.Columns != 4 || s.Top != 0 {
		t.Fatalf("expected 4 columns at top 0, got %+v", s)
	}
	if s.Bucket != 24 || s.Buffer != 48 {
		t.Errorf("expected bucket 24 buffer 48, got %d %d", s.Bucket, s.Buffer)
	}
	if a.Scroll() != 0 {
		t.Errorf("expected scroll reset, got %d", a.Scroll())
	}

	a.HandleKey(runeKey('-'))
	if got := a.Engine().Columns(); got != 3 {
		t.Errorf("expected 3 columns, got %d", got)
	}
}

func TestApp_ResetReloads(t *testing.T) {
	a := loadedApp(t)

	a.HandleKey(runeKey('r'))
	if epoch := a.Engine().View().Epoch; epoch != 1 {
		t.Fatalf("expected epoch 1 after reset, got %d", epoch)
	}
	waitFor(t, func() bool { return a.Engine().View().Known }, "reload after reset")
}

func TestApp_ResetAppliesReloadedOptions(t *testing.T) {
	reloads := 0
	opts := testOptions()
	opts.Reload = func() (Options, error) {
		reloads++
		next := testOptions()
		next.Window.Columns = 2
		next.Border = false
		return next, nil
	}
	a := New(context.Background(), source.NewMock(source.MockConfig{Total: 200}), opts)
	t.Cleanup(a.Stop)
	a.Resize(60, 21)
	waitFor(t, func() bool { return a.Engine().View().Known }, "initial page")
	if !strings.Contains(a.Render().Row(0), "╭") {
		t.Fatalf("expected card borders before reload, got %q", a.Render().Row(0))
	}

	a.HandleKey(runeKey('r'))
	if reloads != 1 {
		t.Fatalf("expected 1 reload, got %d", reloads)
	}
	if got := a.Engine().Columns(); got != 2 {
		t.Fatalf("expected reloaded columns 2, got %d", got)
	}
	waitFor(t, func() bool { return allLoaded(a.Engine().View()) }, "page after reload")
	if row := a.Render().Row(0); strings.Contains(row, "╭") {
		t.Errorf("expected borders off after reload, got %q", row)
	}
}

func TestApp_ResetKeepsOptionsWhenReloadFails(t *testing.T) {
	opts := testOptions()
	opts.Reload = func() (Options, error) {
		return Options{}, fmt.Errorf("bad config")
	}
	a := New(context.Background(), source.NewMock(source.MockConfig{Total: 200}), opts)
	t.Cleanup(a.Stop)
	a.Resize(60, 21)
	waitFor(t, func() bool { return a.Engine().View().Known }, "initial page")

	a.ResetData()
	if got := a.Engine().Columns(); got != 3 {
		t.Errorf("expected columns kept at 3, got %d", got)
	}
	waitFor(t, func() bool { return a.Engine().View().Known }, "reload after reset")
}

func TestApp_WheelScrolls(t *testing.T) {
	a := loadedApp(t)

	a.HandleMouse(tcell.NewEventMouse(5, 5, tcell.WheelDown, tcell.ModNone))
	if got := a.Scroll(); got != wheelStep {
		t.Errorf("expected scroll %d, got %d", wheelStep, got)
	}
	a.HandleMouse(tcell.NewEventMouse(5, 5, tcell.WheelUp, tcell.ModNone))
	a.HandleMouse(tcell.NewEventMouse(5, 5, tcell.WheelUp, tcell.ModNone))
	if got := a.Scroll(); got != 0 {
		t.Errorf("expected scroll clamped to 0, got %d", got)
	}
}

func TestApp_RenderStatusAndCards(t *testing.T) {
	a := loadedApp(t)

	buf := a.Render()
	if w, h := buf.Size(); w != 60 || h != 21 {
		t.Fatalf("unexpected buffer %dx%d", w, h)
	}
	status := buf.Row(20)
	if !strings.Contains(status, "of 200") || !strings.Contains(status, "cols 3") {
		t.Errorf("unexpected status line %q", status)
	}
	if !strings.Contains(buf.Row(1), "#0") {
		t.Errorf("expected the first card label on row 1, got %q", buf.Row(0))
	}
}

func TestApp_LoadingBanner(t *testing.T) {
	release := make(chan struct{})
	src := window.SourceFunc[source.Item](func(ctx context.Context, offset, length int) (source.Page, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return source.Page{}, ctx.Err()
		}
		return source.Page{Total: 1, Items: []source.Item{{ID: 0, Text: "1"}}}, nil
	})
	a := newTestApp(t, src)
	a.Resize(60, 21)

	if row := a.Render().Row(10); !strings.Contains(row, "Loading...") {
		t.Fatalf("expected loading banner, got %q", row)
	}
	close(release)
	waitFor(t, func() bool { return a.Engine().View().Known }, "page after release")
}

func TestApp_RunStopsOnQuit(t *testing.T) {
	a := loadedApp(t)
	refresh := make(chan bool, 1)
	a.SetRefreshNotifier(refresh)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	a.HandleKey(runeKey('q'))
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after q")
	}
	select {
	case <-refresh:
	default:
		t.Errorf("expected a refresh request on stop")
	}
}

func TestApp_ScrollSweepSettles(t *testing.T) {
	sizes := [][2]int{{60, 21}, {80, 24}, {120, 40}, {200, 50}}
	variants := []struct {
		name  string
		tweak func(*Options)
	}{
		{"default", func(*Options) {}},
		// A buffer no bigger than a bucket leaves both sentinels on screen.
		{"tight", func(o *Options) { o.Window.BucketSizeVh, o.Window.BufferSizeVh = 2, 2 }},
	}
	for _, v := range variants {
		for _, size := range sizes {
			for cols := 1; cols <= 5; cols++ {
				name := fmt.Sprintf("%s/%dx%d/cols=%d", v.name, size[0], size[1], cols)
				t.Run(name, func(t *testing.T) {
					opts := testOptions()
					opts.Window.Columns = cols
					v.tweak(&opts)
					a := New(context.Background(), source.NewMock(source.MockConfig{Total: 500}), opts)
					t.Cleanup(a.Stop)
					a.Resize(size[0], size[1])
					waitFor(t, func() bool { return a.Engine().View().Known }, "initial page")

					done := make(chan struct{})
					go func() {
						defer close(done)
						for i := 0; i < 40; i++ {
							a.scrollBy(3)
						}
						for i := 0; i < 300; i++ {
							if i%2 == 0 {
								a.scrollBy(2)
							} else {
								a.scrollBy(-2)
							}
						}
						a.HandleKey(key(tcell.KeyEnd))
						a.HandleKey(key(tcell.KeyHome))
					}()
					select {
					case <-done:
					case <-time.After(5 * time.Second):
						t.Fatalf("scrolling did not settle, state %+v", a.Engine().State())
					}

					s := a.Engine().State()
					if s.Bucket > 0 && s.Top%s.Bucket != 0 {
						t.Errorf("top %d is not a multiple of bucket %d", s.Top, s.Bucket)
					}
					if v.name == "default" && s.Top != 0 {
						t.Errorf("expected Home to bring the window back to 0, got %d", s.Top)
					}
				})
			}
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	sys := config.Config{"grid": map[string]interface{}{"columns": 5.0}}
	app := config.Config{"render": map[string]interface{}{
		"style":       "monokai",
		"card_border": false,
		"spinner_ms":  50.0,
	}}
	opts := OptionsFromConfig(sys, app)
	if opts.Window.Columns != 5 || opts.Style != "monokai" || opts.Border {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.SpinnerInterval != 50*time.Millisecond {
		t.Errorf("expected 50ms spinner, got %v", opts.SpinnerInterval)
	}
}

func TestReloadOptionsKeepsOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	config.SetOverrides(config.Config{"grid": config.Section{"columns": 4}})
	t.Cleanup(func() { config.SetOverrides(nil) })

	opts, err := ReloadOptions()
	if err != nil {
		t.Fatalf("ReloadOptions: %v", err)
	}
	if opts.Window.Columns != 4 {
		t.Errorf("expected overridden columns 4, got %d", opts.Window.Columns)
	}
	if opts.Style != "catppuccin-mocha" || !opts.Border {
		t.Errorf("expected default render options, got style=%q border=%v", opts.Style, opts.Border)
	}
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/devshell/runner.go
// Summary: Standalone tcell harness that hosts a single app full screen.

package devshell

import (
	"context"
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelgrid/apps/texelgrid"
	"github.com/framegrace/texelgrid/config"
	"github.com/framegrace/texelgrid/render"
	"github.com/framegrace/texelgrid/source"
	"github.com/framegrace/texelgrid/window"
)

// App is a full-screen program driven by the runner.
type App interface {
	Run() error
	Stop()
	Resize(cols, rows int)
	Render() render.Buffer
	HandleKey(ev *tcell.EventKey)
	SetRefreshNotifier(refreshChan chan<- bool)
	GetTitle() string
}

// Host carries what the caller provides to a builder.
type Host struct {
	Context context.Context
	// Metrics, when set, receives the window engine instruments.
	Metrics *window.Metrics
}

func (h Host) context() context.Context {
	if h.Context == nil {
		return context.Background()
	}
	return h.Context
}

// Builder constructs an App from the current configuration.
type Builder func(h Host) (App, error)

var registry = map[string]Builder{
	"texelgrid": buildGrid,
}

// buildGrid opens the configured source and starts the grid app on it.
// Pressing r in the app re-reads both config files.
func buildGrid(h Host) (App, error) {
	if err := config.Err(); err != nil {
		log.Printf("Devshell: config: %v", err)
	}
	cfg := source.ConfigFrom(config.System())
	src, closer, err := source.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	opts := texelgrid.LoadOptions()
	opts.Window.Metrics = h.Metrics
	opts.Reload = texelgrid.ReloadOptions
	log.Printf("Devshell: starting texelgrid with %s source, %d columns", cfg.Kind, opts.Window.Columns)
	return &closingApp{App: texelgrid.New(h.context(), src, opts), close: closer}, nil
}

// closingApp releases the data source once the app stops.
type closingApp struct {
	*texelgrid.App
	close func() error
	once  sync.Once
}

func (a *closingApp) Stop() {
	a.App.Stop()
	a.once.Do(func() {
		if err := a.close(); err != nil {
			log.Printf("Devshell: close source: %v", err)
		}
	})
}

// Build constructs the registered app called name.
func Build(name string, h Host) (App, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown app %q (available: %s)", name, strings.Join(Apps(), ", "))
	}
	return build(h)
}

var screenFactory = tcell.NewScreen

// SetScreenFactory overrides the screen factory used by RunWith. Passing nil restores the default.
func SetScreenFactory(factory func() (tcell.Screen, error)) {
	if factory == nil {
		screenFactory = tcell.NewScreen
		return
	}
	screenFactory = factory
}

// RunWith hosts an already constructed app until it stops or Ctrl-C.
func RunWith(app App) error {
	screen, err := screenFactory()
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()
	screen.Clear()
	screen.EnableMouse()
	defer screen.DisableMouse()
	screen.EnablePaste()

	width, height := screen.Size()
	app.Resize(width, height)
	refreshCh := make(chan bool, 1)
	app.SetRefreshNotifier(refreshCh)

	draw := func() {
		screen.Clear()
		app.Render().Blit(screen)
		screen.Show()
	}

	draw()

	runErr := make(chan error, 1)
	go func() {
		runErr <- app.Run()
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()
	defer app.Stop()

	go func() {
		for range refreshCh {
			screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	}()

	var pasteBuffer []byte
	var inPaste bool

	for {
		select {
		case err := <-runErr:
			return err
		default:
		}

		ev := screen.PollEvent()
		switch tev := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			draw()
		case *tcell.EventResize:
			w, h := tev.Size()
			app.Resize(w, h)
			screen.Sync()
			draw()
		case *tcell.EventPaste:
			if tev.Start() {
				inPaste = true
				pasteBuffer = nil
			} else if tev.End() {
				inPaste = false
				if ph, ok := app.(interface{ HandlePaste([]byte) }); ok && len(pasteBuffer) > 0 {
					ph.HandlePaste(pasteBuffer)
					draw()
				}
				pasteBuffer = nil
			}
		case *tcell.EventKey:
			if tev.Key() == tcell.KeyCtrlC {
				return nil
			}
			if inPaste {
				if tev.Key() == tcell.KeyRune {
					pasteBuffer = append(pasteBuffer, []byte(string(tev.Rune()))...)
				} else if tev.Key() == tcell.KeyEnter || tev.Key() == 10 {
					pasteBuffer = append(pasteBuffer, '\n')
				}
			} else {
				app.HandleKey(tev)
				draw()
			}
		case *tcell.EventMouse:
			if mh, ok := app.(interface{ HandleMouse(*tcell.EventMouse) }); ok {
				mh.HandleMouse(tev)
				draw()
			}
		}
	}
}

// Apps lists the registered app names in sorted order.
func Apps() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelgrid/dump.go
// Summary: Headless walk of the window from the first item to the last.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/framegrace/texelgrid/internal/termgeom"
	"github.com/framegrace/texelgrid/source"
	"github.com/framegrace/texelgrid/window"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

type dumpFlags struct {
	width   int
	height  int
	items   bool
	timeout time.Duration
}

func newDumpCmd(s *settings) *cobra.Command {
	d := &dumpFlags{}
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Slide the window to the end without a screen and print each step",
		Long: `Dump measures a terminal-sized viewport, loads the first window and keeps
signalling the bottom edge until the window reaches the end of the dataset.
Every window position is printed with its load state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDump(cmd, s, d)
		},
	}
	cmd.Flags().IntVar(&d.width, "width", 0, "viewport width in cells (default: terminal or 80)")
	cmd.Flags().IntVar(&d.height, "height", 0, "viewport height in lines (default: terminal or 24)")
	cmd.Flags().BoolVar(&d.items, "items", false, "print item text for each window")
	cmd.Flags().DurationVar(&d.timeout, "timeout", 30*time.Second, "give up after this long")
	return cmd
}

func (d *dumpFlags) measure(columns int) window.Measurement {
	if d.width > 0 && d.height > 0 {
		return termgeom.Measure(d.width, d.height, columns)
	}
	if m, err := termgeom.TTY(int(os.Stdout.Fd()), columns); err == nil {
		return m
	}
	return termgeom.Measure(fallbackWidth, fallbackHeight, columns)
}

func runDump(cmd *cobra.Command, s *settings, d *dumpFlags) error {
	opts, srcCfg, err := s.options(cmd)
	if err != nil {
		return err
	}
	src, closeSrc, err := source.Open(srcCfg)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer closeSrc()

	ctx, cancel := context.WithTimeout(cmd.Context(), d.timeout)
	defer cancel()

	eng := window.NewEngine[source.Item](ctx, src, opts.Window)
	defer eng.Close()

	if err := eng.Measure(d.measure(opts.Window.Columns)); err != nil {
		return fmt.Errorf("measure viewport: %w", err)
	}
	settle := func() error {
		eng.Flush()
		eng.Wait()
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		return nil
	}

	out := cmd.OutOrStdout()
	if err := settle(); err != nil {
		return err
	}
	st := eng.State()
	fmt.Fprintf(out, "columns=%d bucket=%d buffer=%d\n", st.Columns, st.Bucket, st.Buffer)

	windows := 1
	writeWindow(out, eng.View(), d.items)
	for {
		top := eng.State().Top
		eng.BottomNear()
		if eng.State().Top == top {
			break
		}
		if err := settle(); err != nil {
			return err
		}
		windows++
		writeWindow(out, eng.View(), d.items)
	}

	data := eng.Dataset()
	fmt.Fprintf(out, "done: %d windows, %d/%d items loaded\n", windows, data.LoadedCount(), data.Len())
	return nil
}

func writeWindow(w io.Writer, v window.View[source.Item], items bool) {
	loaded := 0
	for _, s := range v.Slots {
		if s.IsLoaded() {
			loaded++
		}
	}
	last := v.Top + len(v.Slots)
	fmt.Fprintf(w, "window top=%d items=%d-%d loaded=%d/%d total=%d\n",
		v.Top, v.Top, last, loaded, len(v.Slots), v.Total)
	if !items {
		return
	}
	cols := max(v.Columns, 1)
	for i := 0; i < len(v.Slots); i += cols {
		row := v.Slots[i:min(i+cols, len(v.Slots))]
		cells := make([]string, len(row))
		for j, s := range row {
			if it, ok := s.Item(); ok {
				cells[j] = it.Text
			} else {
				cells[j] = "…"
			}
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(cells, "\t"))
	}
}

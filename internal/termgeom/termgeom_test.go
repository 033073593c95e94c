// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package termgeom

import (
	"os"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelgrid/window"
)

func TestCardHeight(t *testing.T) {
	tests := []struct {
		width, columns, want int
	}{
		{120, 3, 20},
		{80, 4, 10},
		{10, 6, 1},
		{80, 0, 40},
	}
	for _, tt := range tests {
		if got := CardHeight(tt.width, tt.columns); got != tt.want {
			t.Errorf("CardHeight(%d, %d) = %d, want %d", tt.width, tt.columns, got, tt.want)
		}
	}
}

func TestMeasure_RowHeightIsOneCard(t *testing.T) {
	m := Measure(120, 40, 3)
	sz, err := window.ComputeSizing(m, 3, 2, 4, 0, true)
	if err != nil {
		t.Fatalf("ComputeSizing: %v", err)
	}
	if sz.RowHeight != 20 || sz.RowsPerScreen != 2 {
		t.Errorf("expected 20 line rows, 2 per screen; got %v, %d", sz.RowHeight, sz.RowsPerScreen)
	}
}

func TestMeasure_EmptySurface(t *testing.T) {
	if m := Measure(0, 24, 3); m.Valid() {
		t.Errorf("expected invalid measurement for zero width, got %+v", m)
	}
	if m := Measure(80, 0, 3); m.Valid() {
		t.Errorf("expected invalid measurement for zero height, got %+v", m)
	}
}

func TestFromScreen(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer s.Fini()
	s.SetSize(60, 21)

	m := FromScreen(s, 3, 1)
	if m.ViewportHeight != 20 || m.ContainerWidth != 30 {
		t.Errorf("unexpected measurement %+v", m)
	}
}

func TestTTY_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "notty")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	defer f.Close()
	if _, err := TTY(int(f.Fd()), 3); err == nil {
		t.Errorf("expected an error for a regular file")
	}
}

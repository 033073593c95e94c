// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package window

import "testing"

func activeState(top int) State {
	return State{Phase: Active, Top: top, Bucket: 54, Buffer: 108, Columns: 3}
}

func datasetLoaded(total, from, to int) Dataset[int] {
	var d Dataset[int]
	return d.Merge(from, total, seq(from, to-from))
}

func TestTopNear_RequestsExposedBucket(t *testing.T) {
	d := datasetLoaded(300, 54, 162)

	next, req, fetch, changed := TopNear(activeState(54), d)
	if !changed || next.Top != 0 {
		t.Fatalf("expected shift to top 0, got changed=%v top=%d", changed, next.Top)
	}
	if !fetch || req != (Range{Offset: 0, Length: 54}) {
		t.Errorf("expected request {0 54}, got fetch=%v %+v", fetch, req)
	}
}

func TestTopNear_LoadedBucketNoFetch(t *testing.T) {
	d := datasetLoaded(300, 0, 300)

	next, _, fetch, changed := TopNear(activeState(108), d)
	if !changed || next.Top != 54 {
		t.Fatalf("expected shift to 54, got changed=%v top=%d", changed, next.Top)
	}
	if fetch {
		t.Errorf("expected no fetch for a loaded bucket")
	}
}

func TestTopNear_AtStartIgnored(t *testing.T) {
	d := datasetLoaded(300, 0, 10)
	s := activeState(0)

	next, _, fetch, changed := TopNear(s, d)
	if changed || fetch || next != s {
		t.Fatalf("expected no-op at the start, got %+v fetch=%v changed=%v", next, fetch, changed)
	}
}

func TestBottomNear_RequestsAfterBuffer(t *testing.T) {
	d := datasetLoaded(300, 0, 108)

	next, req, fetch, changed := BottomNear(activeState(0), d)
	if !changed || next.Top != 54 {
		t.Fatalf("expected shift to 54, got changed=%v top=%d", changed, next.Top)
	}
	if !fetch || req != (Range{Offset: 108, Length: 54}) {
		t.Errorf("expected request {108 54}, got fetch=%v %+v", fetch, req)
	}
}

func TestBottomNear_AtEndIgnored(t *testing.T) {
	d := datasetLoaded(200, 0, 200)
	s := activeState(108)

	next, _, _, changed := BottomNear(s, d)
	if changed || next != s {
		t.Fatalf("expected no-op at the end, got %+v", next)
	}
}

func TestTransitions_IgnoredUnlessActive(t *testing.T) {
	d := datasetLoaded(300, 0, 10)
	s := State{Phase: Positioning, Top: 54, Bucket: 54, Buffer: 108, Columns: 3}

	if _, _, _, changed := TopNear(s, d); changed {
		t.Errorf("TopNear changed a non-active state")
	}
	if _, _, _, changed := BottomNear(s, d); changed {
		t.Errorf("BottomNear changed a non-active state")
	}
}

func TestMeasure_Transitions(t *testing.T) {
	sz := Sizing{Bucket: 54, Buffer: 108}

	s := Measure(State{}, sz, 3)
	if s.Phase != Positioning || s.Top != 0 {
		t.Fatalf("expected positioning at 0, got %+v", s)
	}

	active := activeState(108)
	if got := Measure(active, sz, 3); got != active {
		t.Errorf("identical sizes should keep state, got %+v", got)
	}

	got := Measure(active, Sizing{Bucket: 72, Buffer: 144}, 4)
	if got.Phase != Positioning || got.Top != 0 || got.Columns != 4 || got.Bucket != 72 {
		t.Errorf("column change should reset, got %+v", got)
	}
}

func TestPosition_InitialFetch(t *testing.T) {
	s := State{Phase: Positioning, Bucket: 54, Buffer: 108, Columns: 3}

	next, req, fetch, ok := Position(s, Dataset[int]{})
	if !ok || next.Phase != Active {
		t.Fatalf("expected activation, got %+v ok=%v", next, ok)
	}
	if !fetch || req != (Range{Offset: 0, Length: 108}) {
		t.Errorf("expected initial request {0 108}, got fetch=%v %+v", fetch, req)
	}

	_, _, fetch, _ = Position(s, datasetLoaded(300, 0, 300))
	if fetch {
		t.Errorf("expected no fetch when the first buffer is loaded")
	}

	if _, _, _, ok := Position(activeState(0), Dataset[int]{}); ok {
		t.Errorf("Position should only apply to Positioning")
	}
}

func TestReset(t *testing.T) {
	if got := Reset(State{}); got.Phase != Uninitialized {
		t.Errorf("reset before measurement should stay uninitialized, got %v", got.Phase)
	}
	got := Reset(activeState(162))
	if got.Phase != Positioning || got.Top != 0 || got.Bucket != 54 {
		t.Errorf("unexpected reset state %+v", got)
	}
}

func TestPaddingFor(t *testing.T) {
	tests := []struct {
		name   string
		top    int
		length int
		want   Padding
	}{
		{"smaller than buffer", 0, 100, Padding{}},
		{"at start", 0, 300, Padding{RowsAbove: 0, RowsBelow: 64}},
		{"middle", 54, 300, Padding{RowsAbove: 18, RowsBelow: 46}},
		{"partial row rounds up", 54, 301, Padding{RowsAbove: 18, RowsBelow: 47}},
		{"at end", 192, 300, Padding{RowsAbove: 64, RowsBelow: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PaddingFor(activeState(tt.top), tt.length); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

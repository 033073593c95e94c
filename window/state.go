// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/state.go
// Summary: Window position state and its pure transition functions.
//
// State machine:
//
//	Uninitialized --Measure--> Positioning --Position--> Active
//	Active --Reset / size or column change--> Positioning
//
// The transitions are pure: they take the current State (and a read-only
// view of the dataset where needed) and return the next State plus the range
// that should be requested, if any. Engine applies them under its lock.

package window

// Phase is the lifecycle stage of a window.
type Phase int

const (
	// Uninitialized means no geometry has been measured yet.
	Uninitialized Phase = iota
	// Positioning means sizes are known and the initial fetch is due.
	Positioning
	// Active is the steady state reacting to boundary signals.
	Active
)

func (p Phase) String() string {
	switch p {
	case Positioning:
		return "positioning"
	case Active:
		return "active"
	default:
		return "uninitialized"
	}
}

// State is the window position plus the sizes it was computed with.
// Top is a multiple of Bucket once measured.
type State struct {
	Phase   Phase
	Top     int
	Bucket  int
	Buffer  int
	Columns int
}

// Occupancy answers whether a slot range still has unfetched slots and how
// long the dataset is. Dataset implements it.
type Occupancy interface {
	Len() int
	HasEmpty(from, to int) bool
}

// Measure applies new sizes. The first measurement, a column change, or any
// change of bucket or buffer size resets the position and re-enters
// Positioning. Identical sizes leave the state untouched.
func Measure(s State, sz Sizing, columns int) State {
	changed := s.Columns != columns || s.Bucket != sz.Bucket || s.Buffer != sz.Buffer
	if s.Phase != Uninitialized && !changed {
		return s
	}
	s.Bucket = sz.Bucket
	s.Buffer = sz.Buffer
	s.Columns = columns
	s.Phase = Positioning
	s.Top = 0
	return s
}

// Position leaves Positioning at Top 0. fetch is true when [0, Buffer) has
// unfetched slots or the dataset is still unsized. ok is false when s is
// not Positioning.
func Position(s State, d Occupancy) (next State, req Range, fetch, ok bool) {
	if s.Phase != Positioning {
		return s, Range{}, false, false
	}
	s.Phase = Active
	s.Top = 0
	if d.Len() == 0 || d.HasEmpty(0, s.Buffer) {
		req, fetch = Range{Offset: 0, Length: s.Buffer}, true
	}
	return s, req, fetch, true
}

// Reset re-enters Positioning (new query). Sizes are kept.
func Reset(s State) State {
	if s.Phase == Uninitialized {
		return s
	}
	s.Phase = Positioning
	s.Top = 0
	return s
}

// TopNear shifts the window one bucket toward the start. changed is false
// when the window is already at the start. fetch is true when the newly
// exposed bucket has unfetched slots.
func TopNear(s State, d Occupancy) (next State, req Range, fetch, changed bool) {
	if s.Phase != Active || s.Bucket <= 0 {
		return s, Range{}, false, false
	}
	newTop := s.Top - s.Bucket
	if newTop < 0 {
		return s, Range{}, false, false
	}
	if d.HasEmpty(newTop, newTop+s.Bucket) {
		req, fetch = Range{Offset: newTop, Length: s.Bucket}, true
	}
	s.Top = newTop
	return s, req, fetch, true
}

// BottomNear shifts the window one bucket toward the end. changed is false
// when the buffer already reaches the end of the dataset. The requested
// range starts right after the current buffer.
func BottomNear(s State, d Occupancy) (next State, req Range, fetch, changed bool) {
	if s.Phase != Active || s.Bucket <= 0 {
		return s, Range{}, false, false
	}
	if s.Top+s.Buffer >= d.Len() {
		return s, Range{}, false, false
	}
	newTop := s.Top + s.Bucket
	if d.HasEmpty(newTop, newTop+s.Buffer) {
		req, fetch = Range{Offset: s.Top + s.Buffer, Length: s.Bucket}, true
	}
	s.Top = newTop
	return s, req, fetch, true
}

// Padding is the number of grid rows outside the window, used for layout.
type Padding struct {
	RowsAbove int
	RowsBelow int
}

// PaddingFor computes the rows above and below the window for a dataset
// of the given length. Both are zero while the dataset fits in the buffer.
func PaddingFor(s State, length int) Padding {
	if s.Columns < 1 || length <= s.Buffer {
		return Padding{}
	}
	return Padding{
		RowsAbove: ceilDiv(s.Top, s.Columns),
		RowsBelow: ceilDiv(max(0, length-s.Top-s.Buffer), s.Columns),
	}
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/spinner.go
// Summary: Time-based spinner frames for loading placeholders.

package render

import "time"

var spinnerFrames = []rune{'⣾', '⣽', '⣻', '⢿', '⡿', '⣟', '⣯', '⣷'}

// Spinner picks a frame from the time elapsed since its start.
type Spinner struct {
	Interval time.Duration
	start    time.Time
	now      func() time.Time
}

// NewSpinner starts a spinner advancing every interval (80ms when <= 0).
func NewSpinner(interval time.Duration) *Spinner {
	if interval <= 0 {
		interval = 80 * time.Millisecond
	}
	return &Spinner{Interval: interval, start: time.Now(), now: time.Now}
}

// Frame returns the current frame.
func (s *Spinner) Frame() rune {
	if s == nil {
		return spinnerFrames[0]
	}
	idx := int(s.now().Sub(s.start)/s.Interval) % len(spinnerFrames)
	return spinnerFrames[max(idx, 0)]
}

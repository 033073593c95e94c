// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/sentinel/tracker.go
// Summary: Reports when window sentinels enter a line-scrolled viewport.
//
// Content is measured in lines from 0. The viewport covers
// [scrollTop, scrollTop+height); the subscription margin widens it on both
// sides for prefetching. Each sentinel occupies a Span of lines; a
// zero-height span is treated as a single line so an empty padding block can
// still be seen.
//
// Only a sentinel inside the viewport itself fires at subscribe time. One
// that merely sits in the margin is observed and fires once it is scrolled
// fully into view, so a window shorter than the widened viewport cannot
// bounce between its two edges.

package sentinel

import (
	"sync"

	"github.com/framegrace/texelgrid/window"
)

// Span is a half-open line range [Start, End).
type Span struct {
	Start int
	End   int
}

// Locator reports where a sentinel currently sits in content lines.
type Locator func(edge window.Edge) Span

// Tracker implements window.BoundarySource for a vertically scrolled surface.
type Tracker struct {
	locate Locator

	mu        sync.Mutex
	scrollTop int
	height    int
	observers map[*observer]struct{}
}

type observer struct {
	tracker *Tracker
	edge    window.Edge
	margin  window.Margin
	fn      func()

	// near tracks the widened viewport, visible the viewport itself.
	near    bool
	visible bool
}

// New creates a tracker with an empty viewport.
func New(locate Locator) *Tracker {
	return &Tracker{
		locate:    locate,
		observers: make(map[*observer]struct{}),
	}
}

// Subscribe fires fn synchronously and installs nothing when the sentinel
// is already in the viewport. Otherwise fn runs each time the sentinel moves
// into the margin-widened viewport, or into the viewport itself, during
// Scroll, Resize or Check. A sentinel already in the margin counts as near.
func (t *Tracker) Subscribe(edge window.Edge, margin window.Margin, fn func()) window.Subscription {
	t.mu.Lock()
	if t.intersectsLocked(edge, window.Margin{}) {
		t.mu.Unlock()
		fn()
		return window.NopSubscription{}
	}
	o := &observer{tracker: t, edge: edge, margin: margin, fn: fn}
	o.near = t.intersectsLocked(edge, margin)
	t.observers[o] = struct{}{}
	t.mu.Unlock()
	return o
}

// Watch installs an observer without the subscribe-time check. It fires
// only on a later move into view.
func (t *Tracker) Watch(edge window.Edge, margin window.Margin, fn func()) window.Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	o := &observer{tracker: t, edge: edge, margin: margin, fn: fn}
	o.near = t.intersectsLocked(edge, margin)
	o.visible = t.intersectsLocked(edge, window.Margin{})
	t.observers[o] = struct{}{}
	return o
}

// Cancel removes the observer.
func (o *observer) Cancel() {
	o.tracker.mu.Lock()
	delete(o.tracker.observers, o)
	o.tracker.mu.Unlock()
}

// Viewport returns the current scroll offset and height.
func (t *Tracker) Viewport() (scrollTop, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scrollTop, t.height
}

// Scroll moves the viewport to top and fires observers that came into view.
func (t *Tracker) Scroll(top int) {
	t.mu.Lock()
	t.scrollTop = max(top, 0)
	due := t.evaluateLocked()
	t.mu.Unlock()
	fire(due)
}

// Resize changes the viewport height and fires observers that came into view.
func (t *Tracker) Resize(height int) {
	t.mu.Lock()
	t.height = max(height, 0)
	due := t.evaluateLocked()
	t.mu.Unlock()
	fire(due)
}

// Check re-evaluates observers after the content layout changed.
func (t *Tracker) Check() {
	t.mu.Lock()
	due := t.evaluateLocked()
	t.mu.Unlock()
	fire(due)
}

// Observers returns the number of installed observers.
func (t *Tracker) Observers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.observers)
}

func (t *Tracker) evaluateLocked() []*observer {
	var due []*observer
	for o := range t.observers {
		near := t.intersectsLocked(o.edge, o.margin)
		visible := t.intersectsLocked(o.edge, window.Margin{})
		if (near && !o.near) || (visible && !o.visible) {
			due = append(due, o)
		}
		o.near, o.visible = near, visible
	}
	return due
}

func (t *Tracker) intersectsLocked(edge window.Edge, margin window.Margin) bool {
	if t.height <= 0 || t.locate == nil {
		return false
	}
	span := t.locate(edge)
	ext := margin.Extent(t.height)
	lo := t.scrollTop - ext
	hi := t.scrollTop + t.height + ext
	end := max(span.End, span.Start+1)
	return span.Start < hi && end > lo
}

// fire runs the due callbacks, skipping observers cancelled by an earlier
// callback in the same batch.
func fire(due []*observer) {
	for _, o := range due {
		t := o.tracker
		t.mu.Lock()
		_, live := t.observers[o]
		t.mu.Unlock()
		if live {
			o.fn()
		}
	}
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/boundary.go
// Summary: Contract for the collaborator that reports when a window edge nears the viewport.

package window

import (
	"fmt"
	"strconv"
	"strings"
)

// Edge identifies one of the two sentinels bracketing the window.
type Edge int

const (
	// EdgeTop sits just before the first materialized slot.
	EdgeTop Edge = iota
	// EdgeBottom sits just after the last materialized slot.
	EdgeBottom
)

func (e Edge) String() string {
	if e == EdgeBottom {
		return "bottom"
	}
	return "top"
}

// Margin extends the viewport on both sides when testing sentinel
// visibility. It is either a fraction of the viewport height or an
// absolute number of lines.
type Margin struct {
	Fraction float64
	Lines    int
}

// Extent returns the margin in lines for a viewport of the given height.
func (m Margin) Extent(viewportHeight int) int {
	return m.Lines + int(m.Fraction*float64(viewportHeight))
}

func (m Margin) String() string {
	if m.Fraction != 0 {
		return strconv.FormatFloat(m.Fraction*100, 'f', -1, 64) + "%"
	}
	return strconv.Itoa(m.Lines)
}

// ParseMargin parses "40%" (fraction of the viewport) or "3" (lines).
func ParseMargin(s string) (Margin, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Margin{}, nil
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil || v < 0 {
			return Margin{}, fmt.Errorf("invalid margin %q", s)
		}
		return Margin{Fraction: v / 100}, nil
	}
	v, err := strconv.Atoi(strings.TrimSuffix(s, "px"))
	if err != nil || v < 0 {
		return Margin{}, fmt.Errorf("invalid margin %q", s)
	}
	return Margin{Lines: v}, nil
}

// Subscription is an installed sentinel observer.
type Subscription interface {
	Cancel()
}

// BoundarySource reports when a sentinel enters the (margin-expanded)
// viewport. If the sentinel is already inside at Subscribe time the
// callback runs synchronously once and no observer is installed.
type BoundarySource interface {
	Subscribe(edge Edge, margin Margin, fn func()) Subscription
}

// Watcher is a BoundarySource that can also observe a sentinel without the
// subscribe-time check, firing only on a later move into view. The engine
// uses it for an edge whose synchronous signal it held back.
type Watcher interface {
	Watch(edge Edge, margin Margin, fn func()) Subscription
}

func (e Edge) opposite() Edge {
	if e == EdgeTop {
		return EdgeBottom
	}
	return EdgeTop
}

// NopSubscription is returned when nothing was installed.
type NopSubscription struct{}

// Cancel implements Subscription.
func (NopSubscription) Cancel() {}

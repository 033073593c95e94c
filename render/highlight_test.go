// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func joined(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func TestHighlight_ColoursKeywords(t *testing.T) {
	h := NewHighlighter("catppuccin-mocha", "go")
	segs := h.Highlight("func main() {}")

	if got := joined(segs); got != "func main() {}" {
		t.Fatalf("segments do not reproduce the text: %q", got)
	}
	if len(segs) == 0 || segs[0].Text != "func" {
		t.Fatalf("expected first segment 'func', got %+v", segs)
	}
	if segs[0].Style == h.Base() {
		t.Errorf("expected keyword to be styled differently from plain text")
	}
}

func TestHighlight_PlainNumbers(t *testing.T) {
	h := NewHighlighter("", "")
	if got := joined(h.Highlight("42")); got != "42" {
		t.Errorf("expected text preserved, got %q", got)
	}
	if h.Highlight("") != nil {
		t.Errorf("expected no segments for empty text")
	}
	if h.StyleName() != "catppuccin-mocha" {
		t.Errorf("expected default style, got %q", h.StyleName())
	}
}

func TestHighlight_Cached(t *testing.T) {
	h := NewHighlighter("", "text")
	a := h.Highlight("hello")
	b := h.Highlight("hello")
	if len(a) == 0 || &a[0] != &b[0] {
		t.Errorf("expected cached segments to be reused")
	}
}

func TestDetectLanguage(t *testing.T) {
	if got := DetectLanguage("#!/usr/bin/env python3\nimport os\n"); got != "Python" {
		t.Errorf("expected Python from shebang, got %q", got)
	}
	if got := DetectLanguage("42"); got != "" {
		t.Errorf("expected no language for a number, got %q", got)
	}
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package window

import "testing"

func TestParseMargin(t *testing.T) {
	tests := []struct {
		in      string
		want    Margin
		wantErr bool
	}{
		{"40%", Margin{Fraction: 0.4}, false},
		{" 25 % ", Margin{Fraction: 0.25}, false},
		{"3", Margin{Lines: 3}, false},
		{"12px", Margin{Lines: 12}, false},
		{"", Margin{}, false},
		{"-1", Margin{}, true},
		{"abc%", Margin{}, true},
		{"wide", Margin{}, true},
	}
	for _, tt := range tests {
		got, err := ParseMargin(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMargin(%q): unexpected error state %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMargin(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestMarginExtent(t *testing.T) {
	if got := (Margin{Fraction: 0.4}).Extent(20); got != 8 {
		t.Errorf("expected 8 lines, got %d", got)
	}
	if got := (Margin{Lines: 3}).Extent(20); got != 3 {
		t.Errorf("expected 3 lines, got %d", got)
	}
	if s := (Margin{Fraction: 0.4}).String(); s != "40%" {
		t.Errorf("expected 40%%, got %q", s)
	}
}

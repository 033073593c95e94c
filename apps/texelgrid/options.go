// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/texelgrid/options.go
// Summary: App settings and their mapping from system and app config.

package texelgrid

import (
	"fmt"
	"time"

	"github.com/framegrace/texelgrid/config"
	"github.com/framegrace/texelgrid/window"
)

// Options configures the grid app.
type Options struct {
	Window window.Options

	// Style is the chroma style name. Default: catppuccin-mocha
	Style string
	// Lexer forces a chroma lexer; empty detects per item.
	Lexer string
	// Border draws card outlines when cards are tall enough.
	Border bool
	// SpinnerInterval drives placeholder animation. Default: 120ms
	SpinnerInterval time.Duration

	// Reload, when set, is called by ResetData to pick up config edits.
	// Columns and card rendering follow the result; window sizing keeps
	// the values the app started with.
	Reload func() (Options, error)
}

// DefaultOptions returns the app defaults.
func DefaultOptions() Options {
	return Options{
		Window:          window.DefaultOptions(),
		Style:           "catppuccin-mocha",
		Border:          true,
		SpinnerInterval: 120 * time.Millisecond,
	}
}

// OptionsFromConfig reads the grid section of sys and the render section of
// the app config.
func OptionsFromConfig(sys, app config.Config) Options {
	def := DefaultOptions()
	return Options{
		Window:          window.OptionsFromConfig(sys),
		Style:           app.GetString("render", "style", def.Style),
		Lexer:           app.GetString("render", "lexer", def.Lexer),
		Border:          app.GetBool("render", "card_border", def.Border),
		SpinnerInterval: app.GetDuration("render", "spinner_ms", def.SpinnerInterval),
	}
}

// LoadOptions reads the current system and app config.
func LoadOptions() Options {
	return OptionsFromConfig(config.System(), config.App(config.AppName))
}

// ReloadOptions re-reads both config files, keeping command-line
// overrides, and returns the resulting options.
func ReloadOptions() (Options, error) {
	if err := config.ReloadSystem(); err != nil {
		return Options{}, fmt.Errorf("system config: %w", err)
	}
	if err := config.ReloadApp(config.AppName); err != nil {
		return Options{}, fmt.Errorf("app config: %w", err)
	}
	return LoadOptions(), nil
}

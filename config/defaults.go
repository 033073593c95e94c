// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for system and app configuration files.

package config

// AppName is the app config owned by the grid viewer.
const AppName = "texelgrid"

func applySystemDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("grid", Section{
		"columns":             3,
		"bucket_size_vh":      2.0,
		"buffer_size_vh":      4.0,
		"intersection_margin": "40%",
		"debounce_ms":         10,
		"lookback":            3,
		"coalesce_mode":       "literal",
	})
	cfg.RegisterDefaults("source", Section{
		"kind":           "mock",
		"total":          200,
		"min_latency_ms": 200,
		"max_latency_ms": 600,
		"db_path":        "",
	})
}

func applyAppDefaults(app string, cfg Config) {
	if cfg == nil {
		return
	}
	switch app {
	case AppName:
		cfg.RegisterDefaults("render", Section{
			"style":       "catppuccin-mocha",
			"lexer":       "",
			"spinner_ms":  120,
			"card_border": true,
		})
	}
}

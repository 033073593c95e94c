// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/migrate.go
// Summary: Migration from the flat grid.json layout to sectioned texelgrid.json.

package config

// legacyGridKeys maps flat grid.json keys to their "grid" section names.
var legacyGridKeys = map[string]string{
	"columns":            "columns",
	"bucketSizeVh":       "bucket_size_vh",
	"bufferSizeVh":       "buffer_size_vh",
	"intersectionMargin": "intersection_margin",
	"debounceMs":         "debounce_ms",
}

func migrateSystemFromLegacy(cfg Config) (bool, error) {
	if cfg == nil {
		return false, nil
	}
	legacyPath, err := legacyConfigPath()
	if err != nil {
		return false, err
	}
	legacy, exists, err := readConfig(legacyPath)
	if err != nil || !exists || legacy == nil {
		return false, err
	}

	migrated := false
	grid := cfg.Section("grid")
	for oldKey, newKey := range legacyGridKeys {
		val, ok := legacy[oldKey]
		if !ok {
			continue
		}
		if grid == nil {
			grid = make(Section)
			cfg["grid"] = grid
		}
		if _, ok := grid[newKey]; !ok {
			grid[newKey] = val
			migrated = true
		}
	}
	if copySection(cfg, legacy, "source") {
		migrated = true
	}
	return migrated, nil
}

// migrateAppFromLegacy lifts a "render" section left in grid.json into the
// app config.
func migrateAppFromLegacy(app string, cfg Config) (bool, error) {
	if cfg == nil || app != AppName {
		return false, nil
	}
	legacyPath, err := legacyConfigPath()
	if err != nil {
		return false, err
	}
	legacy, exists, err := readConfig(legacyPath)
	if err != nil {
		return false, err
	}
	if !exists || legacy == nil {
		return false, nil
	}
	return copySection(cfg, legacy, "render"), nil
}

func copySection(dst Config, src Config, name string) bool {
	if dst == nil || src == nil || name == "" {
		return false
	}
	if _, ok := dst[name]; ok {
		return false
	}
	if section, ok := src[name]; ok {
		dst[name] = section
		return true
	}
	return false
}

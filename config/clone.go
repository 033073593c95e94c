// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/clone.go
// Summary: Copy and merge helpers for config maps.

package config

import "maps"

// Clone returns a copy of cfg with every section copied one level deep.
func Clone(cfg Config) Config {
	if cfg == nil {
		return nil
	}
	out := make(Config, len(cfg))
	for name, raw := range cfg {
		if section, ok := asSection(raw); ok {
			out[name] = maps.Clone(section)
			continue
		}
		out[name] = raw
	}
	return out
}

// merge writes src over dst key by key. A top-level value that is not a
// section replaces whatever dst holds under that name.
func merge(dst, src Config) {
	for name, raw := range src {
		section, ok := asSection(raw)
		if !ok {
			dst[name] = raw
			continue
		}
		for key, value := range section {
			dst.Set(name, key, value)
		}
	}
}

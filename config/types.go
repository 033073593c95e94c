// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/types.go
// Summary: Typed access helpers for config store data.
//
// Values come from decoded JSON (float64, json.Number, strings) or from
// command-line overrides (ints, bools, durations); every getter accepts all
// of them and falls back to its default on anything else.

package config

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

func asSection(raw interface{}) (Section, bool) {
	switch v := raw.(type) {
	case Section:
		return v, true
	case map[string]interface{}:
		return Section(v), true
	}
	return nil, false
}

// Section returns the named section or nil if missing. The empty name
// addresses the top level.
func (c Config) Section(name string) Section {
	if c == nil {
		return nil
	}
	if name == "" {
		return Section(c)
	}
	section, _ := asSection(c[name])
	return section
}

func (c Config) lookup(section, key string) (interface{}, bool) {
	s := c.Section(section)
	if s == nil {
		return nil, false
	}
	v, ok := s[key]
	return v, ok
}

// Set stores value under section/key, creating the section if needed.
func (c Config) Set(section, key string, value interface{}) {
	if c == nil {
		return
	}
	s := c.Section(section)
	if s == nil {
		s = make(Section)
		c[section] = s
	}
	s[key] = value
}

// RegisterDefaults ensures a section has defaults without overwriting existing keys.
func (c Config) RegisterDefaults(section string, defaults Section) {
	if c == nil {
		return
	}
	for key, value := range defaults {
		if _, ok := c.lookup(section, key); !ok {
			c.Set(section, key, value)
		}
	}
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// GetString retrieves a string value from the config.
func (c Config) GetString(section, key, defaultValue string) string {
	if v, ok := c.lookup(section, key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultValue
}

// GetFloat retrieves a float value from the config.
func (c Config) GetFloat(section, key string, defaultValue float64) float64 {
	if v, ok := c.lookup(section, key); ok {
		if f, ok := number(v); ok {
			return f
		}
	}
	return defaultValue
}

// GetInt retrieves an integer value from the config. Fractions are
// truncated.
func (c Config) GetInt(section, key string, defaultValue int) int {
	if v, ok := c.lookup(section, key); ok {
		if f, ok := number(v); ok {
			return int(f)
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean value from the config. Numbers are true when
// non-zero.
func (c Config) GetBool(section, key string, defaultValue bool) bool {
	v, ok := c.lookup(section, key)
	if !ok {
		return defaultValue
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
		return defaultValue
	}
	if f, ok := number(v); ok {
		return f != 0
	}
	return defaultValue
}

// GetDuration retrieves a duration. Plain numbers are milliseconds, which
// is how the *_ms keys are stored; strings may also use time.ParseDuration
// syntax ("250ms", "1.5s").
func (c Config) GetDuration(section, key string, defaultValue time.Duration) time.Duration {
	v, ok := c.lookup(section, key)
	if !ok {
		return defaultValue
	}
	if d, ok := v.(time.Duration); ok {
		return d
	}
	if s, ok := v.(string); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d
		}
	}
	if f, ok := number(v); ok {
		return time.Duration(f * float64(time.Millisecond))
	}
	return defaultValue
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: System + app configuration store for texelgrid.
//
// The system config (texelgrid.json) holds the grid and source sections, the
// app config (apps/texelgrid/config.json) the render section. Command-line
// overrides are layered over the system config in memory and survive
// reloads; they are never written to disk.

package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	systemConfigName = "texelgrid.json"
	legacyConfigName = "grid.json"
)

// Config stores configuration sections as JSON-compatible data.
type Config map[string]interface{}

// Section stores key/value pairs for a configuration section.
type Section map[string]interface{}

var (
	mu        sync.RWMutex
	once      sync.Once
	system    Config
	overrides Config
	apps      map[string]Config
	loadErr   error
)

// Err returns the most recent system config load error.
func Err() error {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return loadErr
}

// System returns the system configuration with overrides applied. Callers
// must not modify it.
func System() Config {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return system
}

// App returns the config for a named app (apps/<app>/config.json).
func App(name string) Config {
	if name == "" {
		return nil
	}
	once.Do(initStore)

	mu.RLock()
	cfg := apps[name]
	mu.RUnlock()
	if cfg != nil {
		return cfg
	}

	mu.Lock()
	defer mu.Unlock()
	if cfg, ok := apps[name]; ok {
		return cfg
	}
	loaded, err := appFile(name).load()
	if err != nil {
		log.Printf("Config: Failed to load app %q config: %v", name, err)
	}
	apps[name] = loaded
	return loaded
}

// SetOverrides replaces the in-memory overrides layered on the system
// config. Sections in cfg are merged key by key.
func SetOverrides(cfg Config) {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	overrides = Clone(cfg)
	// Re-read so keys dropped from the overrides fall back to the file.
	loadErr = loadSystemLocked()
}

// ReloadSystem re-reads the system config from disk.
func ReloadSystem() error {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	loadErr = loadSystemLocked()
	return loadErr
}

// ReloadApp re-reads a single app config from disk. On error the cached
// config is kept.
func ReloadApp(name string) error {
	if name == "" {
		return nil
	}
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	loaded, err := appFile(name).load()
	if err != nil {
		return err
	}
	apps[name] = loaded
	return nil
}

func initStore() {
	mu.Lock()
	defer mu.Unlock()
	apps = make(map[string]Config)
	loadErr = loadSystemLocked()
}

func loadSystemLocked() error {
	cfg, err := systemFile().load()
	if len(overrides) > 0 {
		merge(cfg, overrides)
	}
	system = cfg
	return err
}

func readConfig(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

func writeConfig(path string, cfg Config) error {
	if cfg == nil {
		cfg = make(Config)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

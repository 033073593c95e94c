// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/store.go
// Summary: Disk loading shared by the system and app config files.

package config

import "log"

// configFile describes one config file and how a missing or empty file is
// filled in.
type configFile struct {
	label    string
	path     func() (string, error)
	defaults func() Config
	migrate  func(Config) (bool, error)
	apply    func(Config)
}

func systemFile() configFile {
	return configFile{
		label:    "system",
		path:     systemConfigPath,
		defaults: defaultSystemConfig,
		migrate:  migrateSystemFromLegacy,
		apply:    applySystemDefaults,
	}
}

func appFile(name string) configFile {
	return configFile{
		label: "app " + name,
		path: func() (string, error) {
			return appConfigPath(name)
		},
		defaults: func() Config {
			return defaultAppConfig(name)
		},
		migrate: func(cfg Config) (bool, error) {
			return migrateAppFromLegacy(name, cfg)
		},
		apply: func(cfg Config) {
			applyAppDefaults(name, cfg)
		},
	}
}

// load reads the file and fills missing keys from the built-in defaults.
// A missing file is created from the legacy layout or the embedded
// defaults; an empty one is replaced by the embedded defaults. The returned
// config is never nil, even alongside an error.
func (f configFile) load() (Config, error) {
	path, err := f.path()
	if err != nil {
		log.Printf("Config: Failed to resolve %s config path: %v", f.label, err)
		cfg := make(Config)
		f.apply(cfg)
		return cfg, err
	}

	cfg, exists, loadErr := readConfig(path)
	if loadErr != nil {
		log.Printf("Config: Failed to read %s config %s: %v", f.label, path, loadErr)
		cfg = make(Config)
	}
	keep := func(err error) {
		if loadErr == nil {
			loadErr = err
		}
	}

	write := false
	switch {
	case exists && len(cfg) == 0:
		if def := f.defaults(); def != nil {
			cfg, write = def, true
		}
	case !exists:
		cfg = make(Config)
		migrated, err := f.migrate(cfg)
		if err != nil {
			log.Printf("Config: Legacy %s migration error: %v", f.label, err)
			keep(err)
		}
		if !migrated {
			if def := f.defaults(); def != nil {
				cfg, migrated = def, true
			}
		}
		write = migrated
	}
	f.apply(cfg)

	if write {
		if err := writeConfig(path, cfg); err != nil {
			log.Printf("Config: Failed to write %s config: %v", f.label, err)
			keep(err)
		}
	}
	if loadErr == nil && exists {
		log.Printf("Config: Loaded %s config from %s", f.label, path)
	}
	return cfg, loadErr
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/embedded.go
// Summary: Parsed copies of the embedded default files, cached per file.
// The embedded JSON files in defaults/ decide what a fresh config file
// contains; applySystemDefaults and applyAppDefaults only fill keys a user
// file is missing.

package config

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/framegrace/texelgrid/defaults"
)

type embeddedFile struct {
	cfg Config
	err error
}

var (
	embeddedMu    sync.Mutex
	embeddedFiles = make(map[string]embeddedFile)
)

// embedded parses the default file for app, or the system file when app is
// empty. Apps without an embedded file yield nil.
func embedded(app string) (Config, error) {
	embeddedMu.Lock()
	defer embeddedMu.Unlock()
	if f, ok := embeddedFiles[app]; ok {
		return f.cfg, f.err
	}

	var f embeddedFile
	if app == "" {
		data, err := defaults.SystemConfig()
		if err == nil {
			err = json.Unmarshal(data, &f.cfg)
		}
		f.err = err
	} else if data, err := defaults.AppConfig(app); err == nil {
		f.err = json.Unmarshal(data, &f.cfg)
	}
	embeddedFiles[app] = f
	return f.cfg, f.err
}

func embeddedClone(app string) Config {
	cfg, err := embedded(app)
	if err != nil {
		log.Printf("Config: Bad embedded defaults for %q: %v", app, err)
		return nil
	}
	return Clone(cfg)
}

func defaultSystemConfig() Config {
	return embeddedClone("")
}

func defaultAppConfig(app string) Config {
	if app == "" {
		return nil
	}
	return embeddedClone(app)
}

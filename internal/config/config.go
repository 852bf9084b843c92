// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the index store's base storage path and default
// operation limits from, in precedence order: the CODE_INDEX_HOME
// environment variable, the base_path set in ~/.code-index/config.yaml, or
// ~/.code-index itself (spec section 6's "Configuration" paragraph).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultMaxFileSize mirrors internal/langparse.DefaultMaxFileSize; kept
// here too since it is a configurable default, not a parser constant.
const DefaultMaxFileSize = 10 * 1024 * 1024

// DefaultResultLimit is the fallback max_results for search_symbols when a
// caller does not specify one (spec section 4.5's default of 10).
const DefaultResultLimit = 10

// DefaultSearchTextLimit is the fallback max_results for search_text (spec
// section 4.5's default of 20).
const DefaultSearchTextLimit = 20

// Config is the on-disk YAML configuration shape.
type Config struct {
	BasePath           string `yaml:"base_path"`
	DefaultMaxFileSize int64  `yaml:"default_max_file_size"`
	DefaultResultLimit int    `yaml:"default_result_limit"`
}

var (
	// Global is the process-lifetime singleton populated by Load.
	Global Config
	once   sync.Once
)

// Load populates Global exactly once per process, matching the teacher's
// cmd/aleutian/config singleton pattern.
func Load() error {
	var err error
	once.Do(func() {
		err = loadInternal()
	})
	return err
}

func loadInternal() error {
	if env := os.Getenv("CODE_INDEX_HOME"); env != "" {
		Global = Config{
			BasePath:           env,
			DefaultMaxFileSize: DefaultMaxFileSize,
			DefaultResultLimit: DefaultResultLimit,
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not find the user's home directory: %w", err)
	}

	defaultBase := filepath.Join(home, ".code-index")
	configPath := filepath.Join(defaultBase, "config.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefault(configPath, defaultBase); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &Global); err != nil {
		return fmt.Errorf("failed to unmarshal the config to the Global singleton: %w", err)
	}
	if Global.BasePath == "" {
		Global.BasePath = defaultBase
	}
	return nil
}

func createDefault(path, basePath string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	defaultCfg := Config{
		BasePath:           basePath,
		DefaultMaxFileSize: DefaultMaxFileSize,
		DefaultResultLimit: DefaultResultLimit,
	}
	data, err := yaml.Marshal(defaultCfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ResolveBasePath implements spec section 6's "overrideable per call"
// precedence: an explicit non-empty argument always wins; otherwise the
// loaded Global.BasePath applies.
func ResolveBasePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if err := Load(); err != nil {
		return "", err
	}
	return Global.BasePath, nil
}

// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/questlog/config.yaml",
	"/etc/questlog/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces the service's environment variables.
const envPrefix = "QUESTLOG_"

// defaultConfig returns a Config with all default values. These are applied
// first, then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Catalog: CatalogConfig{
			URL:               "https://api.igdb.com/v4",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 4,
			MinRatingCount:    20,
			CacheCapacity:     2048,
			CacheTTL:          15 * time.Minute,
		},
		Database: DatabaseConfig{
			Path: "/data/questlog.db",
		},
		API: APIConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			MinLibrarySize:        3,
			DefaultCount:          10,
			MaxCount:              50,
			MaxFavorites:          3,
			MaxSimilarPerFavorite: 3,
			MaxGenres:             3,
			MaxGamesPerGenre:      3,
			GenreOverlapLimit:     2,
			RatingWeight:          0.35,
			GenreWeight:           0.40,
			ThemeWeight:           0.25,
			RequestTimeout:        10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// QUESTLOG_*-prefixed environment variables, in that order of precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: struct defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// QUESTLOG_SERVER_PORT -> server.port
	// QUESTLOG_CATALOG_ACCESS_TOKEN -> catalog.access_token
	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sectionPrefixes maps the leading environment variable token to its config
// section. Tokens after the section name keep their underscores:
// QUESTLOG_RECOMMEND_MIN_LIBRARY_SIZE -> recommend.min_library_size.
var sectionPrefixes = []string{
	"server",
	"catalog",
	"database",
	"api",
	"logging",
	"recommend",
}

// envTransformFunc converts an environment variable name to a koanf path.
// Variables that do not start with a known section are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	for _, section := range sectionPrefixes {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}

	return ""
}

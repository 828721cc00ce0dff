// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

// Package config defines the application configuration and its layered
// loading: built-in defaults, an optional YAML file, then environment
// variables (highest priority), via Koanf v2.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Security  SecurityConfig  `koanf:"security"`
	TMDB      ProviderConfig  `koanf:"tmdb"`
	RAWG      ProviderConfig  `koanf:"rawg"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig holds BadgerDB settings.
type StoreConfig struct {
	// Path is the on-disk location of the BadgerDB store.
	Path string `koanf:"path"`

	// InMemory runs the store without persistence. Tests and development.
	InMemory bool `koanf:"in_memory"`
}

// SecurityConfig holds session and rate limiting settings.
type SecurityConfig struct {
	SessionTTL      time.Duration `koanf:"session_ttl"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// ProviderConfig holds settings for one external catalog provider.
type ProviderConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the client-side request budget per second.
	RateLimit float64 `koanf:"rate_limit"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// TopGenres is how many profile genres are kept per request.
	TopGenres int `koanf:"top_genres"`

	// WeightBoost multiplies each selected genre weight before candidates
	// are collected.
	WeightBoost float64 `koanf:"weight_boost"`

	// BudgetPerWeight bounds the candidate pool at weight*BudgetPerWeight,
	// checked after each catalog page.
	BudgetPerWeight int `koanf:"budget_per_weight"`

	// DefaultN is the result length when the request does not specify one.
	DefaultN int `koanf:"default_n"`

	// MaxN caps the requestable result length.
	MaxN int `koanf:"max_n"`

	SVD SVDConfig `koanf:"svd"`
	KNN KNNConfig `koanf:"knn"`
}

// SVDConfig holds latent-factor predictor settings.
type SVDConfig struct {
	Factors        int     `koanf:"factors"`
	Epochs         int     `koanf:"epochs"`
	LearningRate   float64 `koanf:"learning_rate"`
	Regularization float64 `koanf:"regularization"`
	Seed           int64   `koanf:"seed"`
}

// KNNConfig holds neighborhood predictor settings.
type KNNConfig struct {
	K    int `koanf:"k"`
	MinK int `koanf:"min_k"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8490,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Store: StoreConfig{
			Path:     "/data/hades",
			InMemory: false,
		},
		Security: SecurityConfig{
			SessionTTL:      24 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		TMDB: ProviderConfig{
			URL:       "https://api.themoviedb.org/3",
			APIKey:    "",
			Timeout:   10 * time.Second,
			RateLimit: 20,
		},
		RAWG: ProviderConfig{
			URL:       "https://api.rawg.io/api",
			APIKey:    "",
			Timeout:   10 * time.Second,
			RateLimit: 5,
		},
		Recommend: RecommendConfig{
			TopGenres:       3,
			WeightBoost:     1.5,
			BudgetPerWeight: 20,
			DefaultN:        10,
			MaxN:            100,
			SVD: SVDConfig{
				Factors:        100,
				Epochs:         20,
				LearningRate:   0.005,
				Regularization: 0.02,
				Seed:           42,
			},
			KNN: KNNConfig{
				K:    40,
				MinK: 1,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path required unless store.in_memory is set")
	}
	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("security.session_ttl must be positive")
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("security.rate_limit_reqs must be positive")
	}
	if err := c.Recommend.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks the recommendation engine configuration.
func (c *RecommendConfig) Validate() error {
	if c.TopGenres <= 0 {
		return fmt.Errorf("recommend.top_genres must be positive")
	}
	if c.WeightBoost <= 0 {
		return fmt.Errorf("recommend.weight_boost must be positive")
	}
	if c.BudgetPerWeight <= 0 {
		return fmt.Errorf("recommend.budget_per_weight must be positive")
	}
	if c.DefaultN <= 0 {
		return fmt.Errorf("recommend.default_n must be positive")
	}
	if c.MaxN < c.DefaultN {
		return fmt.Errorf("recommend.max_n must be >= recommend.default_n")
	}
	if c.SVD.Factors <= 0 || c.SVD.Epochs <= 0 {
		return fmt.Errorf("recommend.svd factors and epochs must be positive")
	}
	if c.SVD.LearningRate <= 0 || c.SVD.Regularization < 0 {
		return fmt.Errorf("recommend.svd learning rate must be positive and regularization non-negative")
	}
	if c.KNN.K <= 0 || c.KNN.MinK <= 0 || c.KNN.MinK > c.KNN.K {
		return fmt.Errorf("recommend.knn requires 0 < min_k <= k")
	}
	return nil
}

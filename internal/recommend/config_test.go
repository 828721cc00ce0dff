// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package recommend

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.TopGenres != 3 {
		t.Errorf("TopGenres = %d, want 3", cfg.TopGenres)
	}
	if cfg.WeightBoost != 1.5 {
		t.Errorf("WeightBoost = %v, want 1.5", cfg.WeightBoost)
	}
	if cfg.BudgetPerWeight != 20 {
		t.Errorf("BudgetPerWeight = %v, want 20", cfg.BudgetPerWeight)
	}
	if cfg.DefaultN != 10 {
		t.Errorf("DefaultN = %d, want 10", cfg.DefaultN)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero top genres", func(c *Config) { c.TopGenres = 0 }, true},
		{"negative boost", func(c *Config) { c.WeightBoost = -1 }, true},
		{"zero budget", func(c *Config) { c.BudgetPerWeight = 0 }, true},
		{"zero default n", func(c *Config) { c.DefaultN = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

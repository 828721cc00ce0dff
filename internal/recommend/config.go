// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package recommend

import "fmt"

// Config tunes the recommendation engine.
type Config struct {
	// TopGenres is how many of the user's highest-weighted genres (for the
	// requested media type) seed candidate generation.
	TopGenres int

	// WeightBoost scales a genre's weight when it is attached to the
	// candidates it produced.
	WeightBoost float64

	// BudgetPerWeight caps candidate accumulation: paging for a genre stops
	// once the overall candidate count reaches weight * BudgetPerWeight.
	// The check runs after each full page, so the pool may overshoot by up
	// to one page.
	BudgetPerWeight float64

	// DefaultN is the result length used when the caller asks for <= 0.
	DefaultN int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		TopGenres:       3,
		WeightBoost:     1.5,
		BudgetPerWeight: 20,
		DefaultN:        10,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.TopGenres <= 0 {
		return fmt.Errorf("top_genres must be positive, got %d", c.TopGenres)
	}
	if c.WeightBoost <= 0 {
		return fmt.Errorf("weight_boost must be positive, got %v", c.WeightBoost)
	}
	if c.BudgetPerWeight <= 0 {
		return fmt.Errorf("budget_per_weight must be positive, got %v", c.BudgetPerWeight)
	}
	if c.DefaultN <= 0 {
		return fmt.Errorf("default_n must be positive, got %d", c.DefaultN)
	}
	return nil
}

// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package recommend

import (
	"fmt"
	"sync"

	"github.com/hades-media/hades/internal/models"
)

// ModelPair couples a latent-factor predictor with a neighborhood predictor
// for one media type. Both are always fitted against the same rating
// snapshot; the trained flag tracks whether that snapshot is considered
// current. The mutex serializes the fit-and-flag sequence.
type ModelPair struct {
	mu       sync.Mutex
	latent   Predictor
	neighbor Predictor
	trained  bool
}

// NewModelPair creates an untrained pair over the two predictors.
func NewModelPair(latent, neighbor Predictor) *ModelPair {
	return &ModelPair{
		latent:   latent,
		neighbor: neighbor,
	}
}

// Trained reports whether the pair reflects a fitted rating snapshot.
func (p *ModelPair) Trained() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trained
}

// Invalidate clears the trained flag, forcing a refit on the next access.
func (p *ModelPair) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trained = false
}

// fitLocked fits both predictors on the snapshot and marks the pair trained.
// The pair stays untrained when either fit fails. Caller holds p.mu.
func (p *ModelPair) fitLocked(ratings []models.Rating) error {
	if err := p.latent.Fit(ratings); err != nil {
		p.trained = false
		return fmt.Errorf("fit latent predictor: %w", err)
	}
	if err := p.neighbor.Fit(ratings); err != nil {
		p.trained = false
		return fmt.Errorf("fit neighborhood predictor: %w", err)
	}
	p.trained = true
	return nil
}

// estimateLocked blends the two predictors by arithmetic mean. Caller holds
// p.mu.
func (p *ModelPair) estimateLocked(username string, itemID int) float64 {
	return (p.latent.Estimate(username, itemID) + p.neighbor.Estimate(username, itemID)) / 2
}

// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

// Package predictors implements the two rating-prediction models backing a
// collaborative-filter pair: a biased latent-factor model trained by
// stochastic gradient descent and an item-based nearest-neighbor model over
// co-rating vectors.
//
// Both satisfy recommend.Predictor. Engine use serializes Fit and Estimate
// through the pair lock; the predictors carry their own read-write locks for
// standalone callers.
package predictors

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hades-media/hades/internal/models"
)

// SVDConfig contains configuration for the latent-factor predictor.
type SVDConfig struct {
	// Factors is the dimension of the latent vectors.
	// Typical range: 50-200.
	Factors int

	// Epochs is the number of SGD passes over the training set.
	Epochs int

	// LearningRate is the SGD step size.
	LearningRate float64

	// Regularization is the L2 penalty applied to biases and factors.
	Regularization float64

	// Seed drives factor initialization. A fixed seed makes fits
	// reproducible.
	Seed int64
}

// DefaultSVDConfig returns the default latent-factor configuration.
func DefaultSVDConfig() SVDConfig {
	return SVDConfig{
		Factors:        100,
		Epochs:         20,
		LearningRate:   0.005,
		Regularization: 0.02,
		Seed:           42,
	}
}

// SVD is a biased matrix-factorization predictor in the Funk-SVD style.
//
// The estimate for (user u, item i) is
//
//	r̂_ui = μ + b_u + b_i + p_u · q_i
//
// trained by SGD on the squared error with L2 regularization. Users or items
// unseen during Fit fall back through the known terms: μ plus whichever of
// b_u, b_i exists. Estimates are clamped to the rating scale.
type SVD struct {
	config SVDConfig
	mu     sync.RWMutex

	fitted     bool
	globalMean float64

	userIndex map[string]int
	itemIndex map[int]int

	userBias []float64
	itemBias []float64

	// userFactors is numUsers x Factors; itemFactors is numItems x Factors.
	userFactors [][]float64
	itemFactors [][]float64
}

// NewSVD creates a latent-factor predictor with the given configuration.
func NewSVD(cfg SVDConfig) *SVD {
	if cfg.Factors <= 0 {
		cfg.Factors = 100
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = 20
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.005
	}
	if cfg.Regularization <= 0 {
		cfg.Regularization = 0.02
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	return &SVD{config: cfg}
}

// Fit replaces the model state with one trained on the snapshot. An empty
// snapshot resets the predictor to its unfitted state.
func (s *SVD) Fit(ratings []models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ratings) == 0 {
		s.fitted = false
		s.userIndex = nil
		s.itemIndex = nil
		return nil
	}

	userIndex := make(map[string]int)
	itemIndex := make(map[int]int)
	var sum float64
	for i := range ratings {
		r := &ratings[i]
		if _, ok := userIndex[r.Username]; !ok {
			userIndex[r.Username] = len(userIndex)
		}
		if _, ok := itemIndex[r.ItemID]; !ok {
			itemIndex[r.ItemID] = len(itemIndex)
		}
		sum += r.Value
	}
	mean := sum / float64(len(ratings))

	numUsers := len(userIndex)
	numItems := len(itemIndex)
	factors := s.config.Factors

	rng := rand.New(rand.NewSource(s.config.Seed)) //nolint:gosec // deterministic init, not security-sensitive
	userFactors := make([][]float64, numUsers)
	for u := range userFactors {
		userFactors[u] = make([]float64, factors)
		for f := range userFactors[u] {
			userFactors[u][f] = 0.1 * rng.NormFloat64()
		}
	}
	itemFactors := make([][]float64, numItems)
	for i := range itemFactors {
		itemFactors[i] = make([]float64, factors)
		for f := range itemFactors[i] {
			itemFactors[i][f] = 0.1 * rng.NormFloat64()
		}
	}
	userBias := make([]float64, numUsers)
	itemBias := make([]float64, numItems)

	lr := s.config.LearningRate
	reg := s.config.Regularization

	for epoch := 0; epoch < s.config.Epochs; epoch++ {
		for i := range ratings {
			r := &ratings[i]
			u := userIndex[r.Username]
			it := itemIndex[r.ItemID]

			var dot float64
			for f := 0; f < factors; f++ {
				dot += userFactors[u][f] * itemFactors[it][f]
			}
			pred := mean + userBias[u] + itemBias[it] + dot
			errVal := r.Value - pred

			userBias[u] += lr * (errVal - reg*userBias[u])
			itemBias[it] += lr * (errVal - reg*itemBias[it])
			for f := 0; f < factors; f++ {
				pu := userFactors[u][f]
				qi := itemFactors[it][f]
				userFactors[u][f] += lr * (errVal*qi - reg*pu)
				itemFactors[it][f] += lr * (errVal*pu - reg*qi)
			}
		}
	}

	s.fitted = true
	s.globalMean = mean
	s.userIndex = userIndex
	s.itemIndex = itemIndex
	s.userBias = userBias
	s.itemBias = itemBias
	s.userFactors = userFactors
	s.itemFactors = itemFactors
	return nil
}

// Estimate predicts the rating the user would give the item, clamped to the
// rating scale. An unfitted predictor returns 0.
func (s *SVD) Estimate(username string, itemID int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.fitted {
		return 0
	}

	est := s.globalMean
	u, knownUser := s.userIndex[username]
	it, knownItem := s.itemIndex[itemID]
	if knownUser {
		est += s.userBias[u]
	}
	if knownItem {
		est += s.itemBias[it]
	}
	if knownUser && knownItem {
		for f := 0; f < s.config.Factors; f++ {
			est += s.userFactors[u][f] * s.itemFactors[it][f]
		}
	}
	return clampRating(est)
}

// clampRating bounds an estimate to the rating scale.
func clampRating(v float64) float64 {
	return math.Min(models.RatingMax, math.Max(models.RatingMin, v))
}

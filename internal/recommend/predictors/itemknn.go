// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package predictors

import (
	"math"
	"sort"
	"sync"

	"github.com/hades-media/hades/internal/models"
)

// KNNConfig contains configuration for the neighborhood predictor.
type KNNConfig struct {
	// K is the maximum number of neighbors to aggregate.
	K int

	// MinK is the minimum number of usable neighbors; below it the
	// predictor falls back to the item mean.
	MinK int
}

// DefaultKNNConfig returns the default neighborhood configuration.
func DefaultKNNConfig() KNNConfig {
	return KNNConfig{
		K:    40,
		MinK: 1,
	}
}

// ItemKNN is an item-based nearest-neighbor predictor. Fit precomputes the
// cosine similarity between every pair of co-rated item columns; Estimate
// takes the similarity-weighted mean of the user's ratings over the K
// nearest neighbors of the target item.
//
// Fallback chain when no usable neighbors exist: item mean, then global
// mean.
type ItemKNN struct {
	config KNNConfig
	mu     sync.RWMutex

	fitted     bool
	globalMean float64

	// itemMeans maps item id to its mean rating.
	itemMeans map[int]float64

	// userRatings maps username to item id to rating value.
	userRatings map[string]map[int]float64

	// sims maps item id to item id to cosine similarity. Only co-rated
	// pairs with positive similarity are stored.
	sims map[int]map[int]float64
}

// NewItemKNN creates a neighborhood predictor with the given configuration.
func NewItemKNN(cfg KNNConfig) *ItemKNN {
	if cfg.K <= 0 {
		cfg.K = 40
	}
	if cfg.MinK <= 0 {
		cfg.MinK = 1
	}
	return &ItemKNN{config: cfg}
}

// Fit replaces the model state with one trained on the snapshot. An empty
// snapshot resets the predictor to its unfitted state.
func (k *ItemKNN) Fit(ratings []models.Rating) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(ratings) == 0 {
		k.fitted = false
		k.userRatings = nil
		k.sims = nil
		k.itemMeans = nil
		return nil
	}

	// itemVectors maps item id to its rating column keyed by user. Later
	// writes win for duplicate (user, item) observations, matching the
	// append-refit training flow.
	itemVectors := make(map[int]map[string]float64)
	userRatings := make(map[string]map[int]float64)
	var sum float64
	for i := range ratings {
		r := &ratings[i]
		if itemVectors[r.ItemID] == nil {
			itemVectors[r.ItemID] = make(map[string]float64)
		}
		itemVectors[r.ItemID][r.Username] = r.Value
		if userRatings[r.Username] == nil {
			userRatings[r.Username] = make(map[int]float64)
		}
		userRatings[r.Username][r.ItemID] = r.Value
		sum += r.Value
	}

	itemMeans := make(map[int]float64, len(itemVectors))
	itemIDs := make([]int, 0, len(itemVectors))
	for id, col := range itemVectors {
		itemIDs = append(itemIDs, id)
		var colSum float64
		for _, v := range col {
			colSum += v
		}
		itemMeans[id] = colSum / float64(len(col))
	}
	sort.Ints(itemIDs)

	sims := make(map[int]map[int]float64, len(itemIDs))
	for a := 0; a < len(itemIDs); a++ {
		for b := a + 1; b < len(itemIDs); b++ {
			sim := columnCosine(itemVectors[itemIDs[a]], itemVectors[itemIDs[b]])
			if sim <= 0 {
				continue
			}
			if sims[itemIDs[a]] == nil {
				sims[itemIDs[a]] = make(map[int]float64)
			}
			if sims[itemIDs[b]] == nil {
				sims[itemIDs[b]] = make(map[int]float64)
			}
			sims[itemIDs[a]][itemIDs[b]] = sim
			sims[itemIDs[b]][itemIDs[a]] = sim
		}
	}

	k.fitted = true
	k.globalMean = sum / float64(len(ratings))
	k.itemMeans = itemMeans
	k.userRatings = userRatings
	k.sims = sims
	return nil
}

// neighbor pairs an item the user rated with its similarity to the target.
type neighbor struct {
	sim   float64
	value float64
}

// Estimate predicts the rating the user would give the item. An unfitted
// predictor returns 0.
func (k *ItemKNN) Estimate(username string, itemID int) float64 {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if !k.fitted {
		return 0
	}

	var neighbors []neighbor
	for rated, value := range k.userRatings[username] {
		if rated == itemID {
			continue
		}
		if sim, ok := k.sims[itemID][rated]; ok {
			neighbors = append(neighbors, neighbor{sim: sim, value: value})
		}
	}

	if len(neighbors) < k.config.MinK {
		if mean, ok := k.itemMeans[itemID]; ok {
			return mean
		}
		return k.globalMean
	}

	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].sim > neighbors[j].sim
	})
	if len(neighbors) > k.config.K {
		neighbors = neighbors[:k.config.K]
	}

	var weighted, simSum float64
	for _, n := range neighbors {
		weighted += n.sim * n.value
		simSum += n.sim
	}
	return clampRating(weighted / simSum)
}

// columnCosine computes cosine similarity between two item rating columns
// over their shared raters.
func columnCosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for user, va := range a {
		if vb, ok := b[user]; ok {
			dot += va * vb
		}
		normA += va * va
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if dot == 0 || normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

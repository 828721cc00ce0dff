// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package predictors

import (
	"testing"

	"github.com/hades-media/hades/internal/models"
)

func TestItemKNNUnfittedReturnsZero(t *testing.T) {
	knn := NewItemKNN(DefaultKNNConfig())
	if got := knn.Estimate("alice", 1); got != 0 {
		t.Errorf("Estimate() before fit = %v, want 0", got)
	}
}

func TestItemKNNEstimatesInRange(t *testing.T) {
	knn := NewItemKNN(DefaultKNNConfig())
	if err := knn.Fit(fixtureRatings()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	for _, user := range []string{"alice", "bob", "carol", "unseen"} {
		for _, item := range []int{1, 2, 3, 99} {
			got := knn.Estimate(user, item)
			if got < models.RatingMin || got > models.RatingMax {
				t.Errorf("Estimate(%q, %d) = %v, out of [%v, %v]",
					user, item, got, models.RatingMin, models.RatingMax)
			}
		}
	}
}

func TestItemKNNWeightedNeighborMean(t *testing.T) {
	// Two perfectly similar items: both rated identically by two shared
	// users. A third user who rated only item 1 gets that rating back for
	// item 2.
	ratings := []models.Rating{
		{Username: "alice", ItemID: 1, Type: models.MediaTypeMovie, Value: 4},
		{Username: "alice", ItemID: 2, Type: models.MediaTypeMovie, Value: 4},
		{Username: "bob", ItemID: 1, Type: models.MediaTypeMovie, Value: 5},
		{Username: "bob", ItemID: 2, Type: models.MediaTypeMovie, Value: 5},
		{Username: "carol", ItemID: 1, Type: models.MediaTypeMovie, Value: 2},
	}
	knn := NewItemKNN(DefaultKNNConfig())
	if err := knn.Fit(ratings); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	got := knn.Estimate("carol", 2)
	if got != 2 {
		t.Errorf("Estimate(carol, 2) = %v, want 2 (the single neighbor's rating)", got)
	}
}

func TestItemKNNFallsBackToItemMean(t *testing.T) {
	// carol shares no items with the raters of item 2, so her estimate
	// falls back to item 2's mean.
	ratings := []models.Rating{
		{Username: "alice", ItemID: 2, Type: models.MediaTypeMovie, Value: 4},
		{Username: "bob", ItemID: 2, Type: models.MediaTypeMovie, Value: 2},
		{Username: "carol", ItemID: 7, Type: models.MediaTypeMovie, Value: 5},
	}
	knn := NewItemKNN(DefaultKNNConfig())
	if err := knn.Fit(ratings); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := knn.Estimate("carol", 2); got != 3 {
		t.Errorf("Estimate(carol, 2) = %v, want item mean 3", got)
	}
}

func TestItemKNNFallsBackToGlobalMean(t *testing.T) {
	ratings := []models.Rating{
		{Username: "alice", ItemID: 1, Type: models.MediaTypeMovie, Value: 5},
		{Username: "bob", ItemID: 2, Type: models.MediaTypeMovie, Value: 3},
	}
	knn := NewItemKNN(DefaultKNNConfig())
	if err := knn.Fit(ratings); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// Item 99 was never rated, so the global mean is all that remains.
	if got := knn.Estimate("carol", 99); got != 4 {
		t.Errorf("Estimate(carol, 99) = %v, want global mean 4", got)
	}
}

func TestItemKNNRespectsK(t *testing.T) {
	// Five items similar to the target. With K=2 only the two closest
	// neighbors contribute; the distant low rating on a weakly similar
	// item is ignored.
	ratings := []models.Rating{
		// Shared raters establishing similarity.
		{Username: "u1", ItemID: 10, Type: models.MediaTypeMovie, Value: 5},
		{Username: "u1", ItemID: 1, Type: models.MediaTypeMovie, Value: 5},
		{Username: "u1", ItemID: 2, Type: models.MediaTypeMovie, Value: 5},
		{Username: "u2", ItemID: 10, Type: models.MediaTypeMovie, Value: 5},
		{Username: "u2", ItemID: 1, Type: models.MediaTypeMovie, Value: 5},
		{Username: "u2", ItemID: 2, Type: models.MediaTypeMovie, Value: 5},
		{Username: "u2", ItemID: 3, Type: models.MediaTypeMovie, Value: 1},
		// Target user's own ratings.
		{Username: "alice", ItemID: 1, Type: models.MediaTypeMovie, Value: 5},
		{Username: "alice", ItemID: 2, Type: models.MediaTypeMovie, Value: 5},
		{Username: "alice", ItemID: 3, Type: models.MediaTypeMovie, Value: 1},
	}
	knn := NewItemKNN(KNNConfig{K: 2, MinK: 1})
	if err := knn.Fit(ratings); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	got := knn.Estimate("alice", 10)
	if got < 4 {
		t.Errorf("Estimate(alice, 10) = %v, want >= 4 with the top-2 neighbors", got)
	}
}

func TestItemKNNEmptyFitResets(t *testing.T) {
	knn := NewItemKNN(DefaultKNNConfig())
	if err := knn.Fit(fixtureRatings()); err != nil {
		t.Fatal(err)
	}
	if err := knn.Fit(nil); err != nil {
		t.Fatalf("Fit(nil) error = %v", err)
	}
	if got := knn.Estimate("alice", 1); got != 0 {
		t.Errorf("Estimate() after empty refit = %v, want 0", got)
	}
}

func TestColumnCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]float64
		want float64
	}{
		{
			"identical columns",
			map[string]float64{"u1": 4, "u2": 2},
			map[string]float64{"u1": 4, "u2": 2},
			1,
		},
		{
			"no shared raters",
			map[string]float64{"u1": 4},
			map[string]float64{"u2": 4},
			0,
		},
		{
			"empty",
			map[string]float64{},
			map[string]float64{"u1": 4},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := columnCosine(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("columnCosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package recommend

import (
	"context"

	"github.com/hades-media/hades/internal/models"
)

// RatingFilter narrows a rating query. Zero-valued fields are wildcards.
type RatingFilter struct {
	Username string
	Type     models.MediaType
}

// RatingStore supplies training data.
type RatingStore interface {
	// FindRatings returns the ratings matching the filter. An empty result
	// is not an error.
	FindRatings(ctx context.Context, filter RatingFilter) ([]models.Rating, error)
}

// GenreCatalog resolves genre names to external genre ids.
type GenreCatalog interface {
	// FindGenreIDs returns the external ids of genres of the given type
	// whose name contains namePattern, case-insensitively.
	FindGenreIDs(ctx context.Context, namePattern string, mediaType models.MediaType) ([]int, error)
}

// CatalogItem is one entry of a paginated items-by-genre listing.
type CatalogItem struct {
	// ID is the provider's external item identifier.
	ID int

	// Rating is the item's average rating on a 0-10 scale.
	Rating float64
}

// CatalogProvider is a paginated read-only source of items by genre.
type CatalogProvider interface {
	// ItemsByGenre returns one page of items, starting at page 1. An empty
	// page signals exhaustion.
	ItemsByGenre(ctx context.Context, mediaType models.MediaType, genreID, page int) ([]CatalogItem, error)
}

// ProfileStore supplies per-user genre affinity profiles.
type ProfileStore interface {
	// FindProfile returns the user's genre profile, or (nil, nil) when the
	// user has none.
	FindProfile(ctx context.Context, username string) (*models.GenreProfile, error)
}

// Predictor is a single rating-prediction model. A model pair holds two of
// these and blends their estimates.
//
// Fit and Estimate are serialized by the owning pair's lock; implementations
// do not need their own synchronization for engine use but may carry it for
// standalone callers.
type Predictor interface {
	// Fit replaces the model state with one trained on the given snapshot.
	Fit(ratings []models.Rating) error

	// Estimate predicts the rating the user would give the item. Users and
	// items unseen during Fit must still yield an estimate (cold-start
	// fallback is the predictor's responsibility). An unfitted predictor
	// returns 0.
	Estimate(username string, itemID int) float64
}

// PairFactory builds the two predictors backing one model pair. The engine
// invokes it once per media type at construction.
type PairFactory func() (latent, neighbor Predictor)

// ScoredItem is one ranked recommendation.
type ScoredItem struct {
	ItemID int     `json:"item_id"`
	Score  float64 `json:"score"`
}

// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package store

import (
	"context"

	"github.com/hades-media/hades/internal/models"
	"github.com/hades-media/hades/internal/recommend"
)

// EngineAdapter exposes a Store to the recommendation engine. The engine
// declares its own narrow collaborator interfaces; this adapter maps them
// onto the store's surface.
type EngineAdapter struct {
	s Store
}

// NewEngineAdapter wraps a store for engine consumption.
func NewEngineAdapter(s Store) *EngineAdapter {
	return &EngineAdapter{s: s}
}

// FindRatings implements recommend.RatingStore.
func (a *EngineAdapter) FindRatings(ctx context.Context, filter recommend.RatingFilter) ([]models.Rating, error) {
	return a.s.FindRatings(ctx, RatingFilter{Username: filter.Username, Type: filter.Type})
}

// FindGenreIDs implements recommend.GenreCatalog.
func (a *EngineAdapter) FindGenreIDs(ctx context.Context, namePattern string, mediaType models.MediaType) ([]int, error) {
	return a.s.FindGenreIDs(ctx, namePattern, mediaType)
}

// FindProfile implements recommend.ProfileStore.
func (a *EngineAdapter) FindProfile(ctx context.Context, username string) (*models.GenreProfile, error) {
	return a.s.FindProfile(ctx, username)
}

var (
	_ recommend.RatingStore  = (*EngineAdapter)(nil)
	_ recommend.GenreCatalog = (*EngineAdapter)(nil)
	_ recommend.ProfileStore = (*EngineAdapter)(nil)
)

// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package catalog

import (
	"context"
	"fmt"

	"github.com/hades-media/hades/internal/models"
	"github.com/hades-media/hades/internal/recommend"
)

// Mux routes catalog operations by media type: movies and TV go to the TMDB
// client, games to the RAWG client. It implements the engine's
// CatalogProvider interface and the genre-import surface.
type Mux struct {
	tmdb Client
	rawg Client
}

// NewMux creates a Mux over the two provider clients.
func NewMux(tmdb, rawg Client) *Mux {
	return &Mux{tmdb: tmdb, rawg: rawg}
}

// route picks the client serving the media type.
func (m *Mux) route(mediaType models.MediaType) (Client, error) {
	switch mediaType {
	case models.MediaTypeMovie, models.MediaTypeTV:
		return m.tmdb, nil
	case models.MediaTypeGame:
		return m.rawg, nil
	default:
		return nil, fmt.Errorf("no catalog provider for media type %q", mediaType)
	}
}

// Genres lists the genre taxonomy for the media type from its provider.
func (m *Mux) Genres(ctx context.Context, mediaType models.MediaType) ([]models.GenreRecord, error) {
	client, err := m.route(mediaType)
	if err != nil {
		return nil, err
	}
	return client.Genres(ctx, mediaType)
}

// ItemsByGenre returns one items-by-genre page from the media type's
// provider.
func (m *Mux) ItemsByGenre(ctx context.Context, mediaType models.MediaType, genreID, page int) ([]recommend.CatalogItem, error) {
	client, err := m.route(mediaType)
	if err != nil {
		return nil, err
	}
	return client.ItemsByGenre(ctx, mediaType, genreID, page)
}

// Ensure interface compliance.
var (
	_ recommend.CatalogProvider = (*Mux)(nil)
	_ Client                    = (*TMDB)(nil)
	_ Client                    = (*RAWG)(nil)
)

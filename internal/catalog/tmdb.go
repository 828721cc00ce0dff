// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/hades-media/hades/internal/models"
	"github.com/hades-media/hades/internal/recommend"
)

// Client is one catalog provider: a genre taxonomy plus paginated
// discover-by-genre listings. Item ratings are normalized to a 0-10 scale.
type Client interface {
	// Genres lists the provider's genre taxonomy for the media type.
	Genres(ctx context.Context, mediaType models.MediaType) ([]models.GenreRecord, error)

	// ItemsByGenre returns one page of items carrying the genre, starting
	// at page 1. An empty page signals exhaustion.
	ItemsByGenre(ctx context.Context, mediaType models.MediaType, genreID, page int) ([]recommend.CatalogItem, error)
}

// TMDB serves movies and TV shows from a TMDB-compatible API.
type TMDB struct {
	apiKey    string
	transport *transport
}

// NewTMDB creates a TMDB client.
func NewTMDB(opts Options) *TMDB {
	return &TMDB{
		apiKey:    opts.APIKey,
		transport: newTransport("tmdb", opts),
	}
}

// tmdbPath maps a media type to TMDB's URL segment.
func tmdbPath(mediaType models.MediaType) (string, error) {
	switch mediaType {
	case models.MediaTypeMovie:
		return "movie", nil
	case models.MediaTypeTV:
		return "tv", nil
	default:
		return "", fmt.Errorf("tmdb does not serve media type %q", mediaType)
	}
}

type tmdbGenreList struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// Genres lists TMDB's genre taxonomy for the media type.
func (c *TMDB) Genres(ctx context.Context, mediaType models.MediaType) ([]models.GenreRecord, error) {
	segment, err := tmdbPath(mediaType)
	if err != nil {
		return nil, err
	}

	query := url.Values{"api_key": {c.apiKey}}
	body, err := c.transport.get(ctx, "/genre/"+segment+"/list", query)
	if err != nil {
		return nil, err
	}

	var list tmdbGenreList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("tmdb: decode genre list: %w", err)
	}

	records := make([]models.GenreRecord, 0, len(list.Genres))
	for _, g := range list.Genres {
		records = append(records, models.GenreRecord{
			ExternalID: g.ID,
			Name:       g.Name,
			Type:       mediaType,
			Source:     "tmdb",
		})
	}
	return records, nil
}

type tmdbDiscoverPage struct {
	Results []struct {
		ID          int     `json:"id"`
		VoteAverage float64 `json:"vote_average"`
	} `json:"results"`
}

// ItemsByGenre returns one discover page for the genre. TMDB vote averages
// are already on the 0-10 scale.
func (c *TMDB) ItemsByGenre(ctx context.Context, mediaType models.MediaType, genreID, page int) ([]recommend.CatalogItem, error) {
	segment, err := tmdbPath(mediaType)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"api_key":     {c.apiKey},
		"with_genres": {strconv.Itoa(genreID)},
		"page":        {strconv.Itoa(page)},
	}
	body, err := c.transport.get(ctx, "/discover/"+segment, query)
	if err != nil {
		return nil, err
	}

	var discovered tmdbDiscoverPage
	if err := json.Unmarshal(body, &discovered); err != nil {
		return nil, fmt.Errorf("tmdb: decode discover page: %w", err)
	}

	items := make([]recommend.CatalogItem, 0, len(discovered.Results))
	for _, r := range discovered.Results {
		items = append(items, recommend.CatalogItem{
			ID:     r.ID,
			Rating: r.VoteAverage,
		})
	}
	return items, nil
}

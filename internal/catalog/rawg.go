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

// RAWG serves games from a RAWG-compatible API.
type RAWG struct {
	apiKey    string
	transport *transport
}

// NewRAWG creates a RAWG client.
func NewRAWG(opts Options) *RAWG {
	return &RAWG{
		apiKey:    opts.APIKey,
		transport: newTransport("rawg", opts),
	}
}

func (c *RAWG) checkType(mediaType models.MediaType) error {
	if mediaType != models.MediaTypeGame {
		return fmt.Errorf("rawg does not serve media type %q", mediaType)
	}
	return nil
}

type rawgGenreList struct {
	Results []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"results"`
}

// Genres lists RAWG's genre taxonomy.
func (c *RAWG) Genres(ctx context.Context, mediaType models.MediaType) ([]models.GenreRecord, error) {
	if err := c.checkType(mediaType); err != nil {
		return nil, err
	}

	query := url.Values{"key": {c.apiKey}}
	body, err := c.transport.get(ctx, "/genres", query)
	if err != nil {
		return nil, err
	}

	var list rawgGenreList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("rawg: decode genre list: %w", err)
	}

	records := make([]models.GenreRecord, 0, len(list.Results))
	for _, g := range list.Results {
		records = append(records, models.GenreRecord{
			ExternalID: g.ID,
			Name:       g.Name,
			Type:       models.MediaTypeGame,
			Source:     "rawg",
		})
	}
	return records, nil
}

type rawgGamesPage struct {
	Results []struct {
		ID     int     `json:"id"`
		Rating float64 `json:"rating"`
	} `json:"results"`
}

// ItemsByGenre returns one page of games carrying the genre. RAWG ratings
// are on a 0-5 scale and are doubled to meet the 0-10 contract.
func (c *RAWG) ItemsByGenre(ctx context.Context, mediaType models.MediaType, genreID, page int) ([]recommend.CatalogItem, error) {
	if err := c.checkType(mediaType); err != nil {
		return nil, err
	}

	query := url.Values{
		"key":    {c.apiKey},
		"genres": {strconv.Itoa(genreID)},
		"page":   {strconv.Itoa(page)},
	}
	body, err := c.transport.get(ctx, "/games", query)
	if err != nil {
		return nil, err
	}

	var games rawgGamesPage
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("rawg: decode games page: %w", err)
	}

	items := make([]recommend.CatalogItem, 0, len(games.Results))
	for _, r := range games.Results {
		items = append(items, recommend.CatalogItem{
			ID:     r.ID,
			Rating: r.Rating * 2,
		})
	}
	return items, nil
}

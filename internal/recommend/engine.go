// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/hades-media/hades/internal/models"
)

// Deps are the engine's external collaborators.
type Deps struct {
	Ratings  RatingStore
	Genres   GenreCatalog
	Catalog  CatalogProvider
	Profiles ProfileStore

	// NewPair builds the predictor pair for one media type.
	NewPair PairFactory
}

// Engine maintains the per-type model pairs and produces recommendations.
// It is safe for concurrent use; operations on different media types proceed
// in parallel.
type Engine struct {
	config *Config
	logger zerolog.Logger
	deps   Deps
	pairs  map[models.MediaType]*ModelPair
}

// NewEngine creates an engine with one untrained model pair per media type.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Deps, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Ratings == nil || deps.Genres == nil || deps.Catalog == nil || deps.Profiles == nil {
		return nil, fmt.Errorf("all data sources are required")
	}
	if deps.NewPair == nil {
		return nil, fmt.Errorf("pair factory is required")
	}

	pairs := make(map[models.MediaType]*ModelPair, len(models.AllMediaTypes()))
	for _, mt := range models.AllMediaTypes() {
		pairs[mt] = NewModelPair(deps.NewPair())
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		deps:   deps,
		pairs:  pairs,
	}, nil
}

// Trained reports whether the pair for the media type currently reflects a
// fitted snapshot.
func (e *Engine) Trained(mediaType models.MediaType) bool {
	return e.pairs[mediaType].Trained()
}

// Train incorporates a new rating observation for the user. It refetches the
// user's ratings for the media type, appends the observation (even when it
// duplicates a persisted row; the store is assumed already updated by the
// caller), and refits the pair on the full set.
func (e *Engine) Train(ctx context.Context, username string, itemID int, value float64, mediaType models.MediaType) error {
	if value < models.RatingMin || value > models.RatingMax {
		return fmt.Errorf("rating %.2f out of range [%v, %v]", value, models.RatingMin, models.RatingMax)
	}

	pair := e.pairs[mediaType]
	pair.mu.Lock()
	defer pair.mu.Unlock()

	existing, err := e.deps.Ratings.FindRatings(ctx, RatingFilter{Username: username, Type: mediaType})
	if err != nil {
		return fmt.Errorf("fetch ratings for %q/%s: %w", username, mediaType, err)
	}

	snapshot := make([]models.Rating, 0, len(existing)+1)
	snapshot = append(snapshot, existing...)
	snapshot = append(snapshot, models.Rating{
		Username: username,
		ItemID:   itemID,
		Type:     mediaType,
		Value:    value,
	})

	if err := pair.fitLocked(snapshot); err != nil {
		return err
	}

	e.logger.Debug().
		Str("username", username).
		Int("item_id", itemID).
		Str("media_type", mediaType.String()).
		Int("snapshot_size", len(snapshot)).
		Msg("pair trained on user snapshot")
	return nil
}

// Predict returns the blended rating estimate for (user, item). An untrained
// pair is first fitted on all ratings of the media type; a type with zero
// ratings anywhere yields exactly 0 and leaves the pair untrained. A trained
// pair is never refitted.
func (e *Engine) Predict(ctx context.Context, username string, itemID int, mediaType models.MediaType) (float64, error) {
	pair := e.pairs[mediaType]
	pair.mu.Lock()
	defer pair.mu.Unlock()

	if !pair.trained {
		all, err := e.deps.Ratings.FindRatings(ctx, RatingFilter{Type: mediaType})
		if err != nil {
			return 0, fmt.Errorf("fetch ratings for %s: %w", mediaType, err)
		}
		if len(all) == 0 {
			// No data signal, not a predicted rating.
			return 0, nil
		}
		if err := pair.fitLocked(all); err != nil {
			return 0, err
		}
		e.logger.Debug().
			Str("media_type", mediaType.String()).
			Int("snapshot_size", len(all)).
			Msg("pair trained on global snapshot")
	}

	return pair.estimateLocked(username, itemID), nil
}

// candidate is one pooled item awaiting prediction.
type candidate struct {
	itemID int
	weight float64
	avg    float64
}

// Recommend produces up to n scored items of the media type for the user,
// excluding the already-rated item ids. The media type's pair is invalidated
// on every exit path so the next cycle refits on fresh ratings.
func (e *Engine) Recommend(ctx context.Context, username string, mediaType models.MediaType, rated []int, n int) ([]ScoredItem, error) {
	if n <= 0 {
		n = e.config.DefaultN
	}
	defer e.pairs[mediaType].Invalidate()

	profile, err := e.deps.Profiles.FindProfile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetch profile for %q: %w", username, err)
	}
	if profile == nil || len(profile.Genres) == 0 {
		return []ScoredItem{}, nil
	}

	selected := e.selectGenres(profile, mediaType)
	if err := e.transferAffinity(ctx, profile, selected, mediaType); err != nil {
		return nil, err
	}

	candidates, err := e.buildPool(ctx, selected, mediaType)
	if err != nil {
		return nil, err
	}

	ratedSet := make(map[int]struct{}, len(rated))
	for _, id := range rated {
		ratedSet[id] = struct{}{}
	}

	scored := make([]ScoredItem, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := ratedSet[c.itemID]; ok {
			continue
		}
		prediction, err := e.Predict(ctx, username, c.itemID, mediaType)
		if err != nil {
			// One candidate's failure does not abort the ranking.
			e.logger.Warn().Err(err).
				Int("item_id", c.itemID).
				Str("media_type", mediaType.String()).
				Msg("candidate prediction failed, skipping")
			continue
		}
		scored = append(scored, ScoredItem{
			ItemID: c.itemID,
			Score:  prediction * c.weight * (c.avg / 10),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored, nil
}

// selectGenres returns the profile's top entries for the media type, sorted
// by weight descending. The entries are copies; transfer mutates them
// without touching the profile.
func (e *Engine) selectGenres(profile *models.GenreProfile, mediaType models.MediaType) []models.GenreWeight {
	var selected []models.GenreWeight
	for _, entry := range profile.Genres {
		if entry.Type == mediaType {
			selected = append(selected, entry)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Weight > selected[j].Weight
	})
	if len(selected) > e.config.TopGenres {
		selected = selected[:e.config.TopGenres]
	}
	return selected
}

// transferAffinity folds cross-type genre affinity into the selected set.
// Each foreign entry's name is tokenized into words, each word resolves to
// genre ids in the target type's catalog, and a selected entry absorbs the
// foreign weight when its name equals one of those ids rendered as a
// string. Comparing a display name against external ids is the established
// join here; it matches only when the catalog aliases names to ids.
func (e *Engine) transferAffinity(ctx context.Context, profile *models.GenreProfile, selected []models.GenreWeight, mediaType models.MediaType) error {
	for _, entry := range profile.Genres {
		if entry.Type == mediaType {
			continue
		}
		for _, word := range tokenizeGenreName(entry.Name) {
			ids, err := e.deps.Genres.FindGenreIDs(ctx, word, mediaType)
			if err != nil {
				return fmt.Errorf("resolve genre %q for %s: %w", word, mediaType, err)
			}
			idSet := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				idSet[strconv.Itoa(id)] = struct{}{}
			}
			for i := range selected {
				if _, ok := idSet[selected[i].Name]; ok {
					selected[i].Weight += entry.Weight
				}
			}
		}
	}
	return nil
}

// buildPool expands the selected genres into a weighted candidate pool by
// paging the catalog provider. Paging for a genre id stops on an empty or
// failed page, or once the overall pool size reaches the entry's soft
// budget of weight * BudgetPerWeight. The budget is shared across the whole
// pool, checked after each appended page.
func (e *Engine) buildPool(ctx context.Context, selected []models.GenreWeight, mediaType models.MediaType) ([]candidate, error) {
	var pool []candidate
	for _, genre := range selected {
		ids, err := e.deps.Genres.FindGenreIDs(ctx, genre.Name, mediaType)
		if err != nil {
			return nil, fmt.Errorf("resolve genre %q for %s: %w", genre.Name, mediaType, err)
		}

		budget := genre.Weight * e.config.BudgetPerWeight
		for _, genreID := range ids {
			for page := 1; ; page++ {
				items, err := e.deps.Catalog.ItemsByGenre(ctx, mediaType, genreID, page)
				if err != nil {
					// Provider failure is exhaustion for this genre id, not
					// a hard failure.
					e.logger.Debug().Err(err).
						Int("genre_id", genreID).
						Int("page", page).
						Str("media_type", mediaType.String()).
						Msg("catalog page failed, genre exhausted")
					break
				}
				if len(items) == 0 {
					break
				}
				for _, item := range items {
					pool = append(pool, candidate{
						itemID: item.ID,
						weight: genre.Weight * e.config.WeightBoost,
						avg:    item.Rating,
					})
				}
				if float64(len(pool)) >= budget {
					break
				}
			}
		}
	}
	return pool, nil
}

// tokenizeGenreName splits a genre name into its letter/digit runs.
// "Action & Adventure" becomes ["Action", "Adventure"].
func tokenizeGenreName(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

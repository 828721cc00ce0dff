// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/hades-media/hades/internal/catalog"
	"github.com/hades-media/hades/internal/config"
	"github.com/hades-media/hades/internal/logging"
	"github.com/hades-media/hades/internal/metrics"
	"github.com/hades-media/hades/internal/models"
	"github.com/hades-media/hades/internal/recommend"
	"github.com/hades-media/hades/internal/store"
	"github.com/hades-media/hades/internal/validation"
)

// Engine is the recommendation surface the handlers drive. Satisfied by
// *recommend.Engine; narrowed to an interface for handler tests.
type Engine interface {
	Train(ctx context.Context, username string, itemID int, value float64, mediaType models.MediaType) error
	Predict(ctx context.Context, username string, itemID int, mediaType models.MediaType) (float64, error)
	Recommend(ctx context.Context, username string, mediaType models.MediaType, rated []int, n int) ([]recommend.ScoredItem, error)
}

var _ Engine = (*recommend.Engine)(nil)

// Handler serves every application endpoint.
type Handler struct {
	store      store.Store
	engine     Engine
	catalog    catalog.Client
	sessionTTL time.Duration
	recCfg     config.RecommendConfig
}

// NewHandler wires the handler over its collaborators.
func NewHandler(st store.Store, engine Engine, cat catalog.Client, cfg *config.Config) *Handler {
	return &Handler{
		store:      st,
		engine:     engine,
		catalog:    cat,
		sessionTTL: cfg.Security.SessionTTL,
		recCfg:     cfg.Recommend,
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// mediaTypeParam parses the required ?type= query parameter.
func mediaTypeParam(r *http.Request) (models.MediaType, error) {
	return models.ParseMediaType(r.URL.Query().Get("type"))
}

// --- Ratings ---

// ratingRequest is the body for POST /ratings.
type ratingRequest struct {
	ItemID int     `json:"item_id" validate:"required,gte=1"`
	Type   string  `json:"type" validate:"required,mediatype"`
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
}

// ListRatings returns the caller's ratings, optionally filtered by type.
func (h *Handler) ListRatings(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := UsernameFromContext(r.Context())

	filter := store.RatingFilter{Username: username}
	if raw := r.URL.Query().Get("type"); raw != "" {
		mt, err := models.ParseMediaType(raw)
		if err != nil {
			rw.BadRequest("Unknown media type")
			return
		}
		filter.Type = mt
	}

	ratings, err := h.store.FindRatings(r.Context(), filter)
	if err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(ratings)
}

// UpsertRating stores a rating and trains the matching model pair on it.
func (h *Handler) UpsertRating(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := UsernameFromContext(r.Context())

	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		rw.ValidationError("Invalid rating", verr.Details())
		return
	}
	mediaType, err := models.ParseMediaType(req.Type)
	if err != nil {
		rw.BadRequest("Unknown media type")
		return
	}

	rating := &models.Rating{
		Username:  username,
		ItemID:    req.ItemID,
		Type:      mediaType,
		Value:     req.Rating,
		UpdatedAt: time.Now().UTC(),
	}
	if err := h.store.UpsertRating(r.Context(), rating); err != nil {
		rw.StoreError(err)
		return
	}

	start := time.Now()
	if err := h.engine.Train(r.Context(), username, req.ItemID, req.Rating, mediaType); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).
			Str("media_type", mediaType.String()).
			Msg("training failed after rating upsert")
		rw.InternalError("Rating stored but model training failed")
		return
	}
	metrics.EngineTrainDuration.WithLabelValues(mediaType.String()).Observe(time.Since(start).Seconds())

	rw.Created(rating)
}

// --- Wishlist ---

// wishlistRequest is the body for POST /wishlist.
type wishlistRequest struct {
	ItemID int    `json:"item_id" validate:"required,gte=1"`
	Type   string `json:"type" validate:"required,mediatype"`
	Title  string `json:"title" validate:"max=512"`
}

// ListWishlist returns the caller's wishlist for one media type.
func (h *Handler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := UsernameFromContext(r.Context())

	mediaType, err := mediaTypeParam(r)
	if err != nil {
		rw.BadRequest("Unknown media type")
		return
	}
	items, err := h.store.ListWishlist(r.Context(), username, mediaType)
	if err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(items)
}

// AddWishlistItem saves an item on the caller's wishlist.
func (h *Handler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := UsernameFromContext(r.Context())

	var req wishlistRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		rw.ValidationError("Invalid wishlist item", verr.Details())
		return
	}
	mediaType, err := models.ParseMediaType(req.Type)
	if err != nil {
		rw.BadRequest("Unknown media type")
		return
	}

	item := &models.WishlistItem{
		Username: username,
		ItemID:   req.ItemID,
		Type:     mediaType,
		Title:    req.Title,
		AddedAt:  time.Now().UTC(),
	}
	if err := h.store.AddWishlistItem(r.Context(), item); err != nil {
		rw.StoreError(err)
		return
	}
	rw.Created(item)
}

// RemoveWishlistItem deletes one wishlist entry.
func (h *Handler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := UsernameFromContext(r.Context())

	itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil || itemID < 1 {
		rw.BadRequest("Invalid item id")
		return
	}
	mediaType, err := mediaTypeParam(r)
	if err != nil {
		rw.BadRequest("Unknown media type")
		return
	}
	if err := h.store.RemoveWishlistItem(r.Context(), username, itemID, mediaType); err != nil {
		rw.StoreError(err)
		return
	}
	rw.NoContent()
}

// --- Genres ---

// ListGenres returns imported genre records for one media type.
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	mediaType, err := mediaTypeParam(r)
	if err != nil {
		rw.BadRequest("Unknown media type")
		return
	}
	genres, err := h.store.ListGenres(r.Context(), mediaType)
	if err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(genres)
}

// genreImportResult reports the import outcome per media type.
type genreImportResult struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ImportGenres pulls genre catalogs from the providers and persists them.
// Without ?type= all three catalogs are imported concurrently.
func (h *Handler) ImportGenres(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	types := models.AllMediaTypes()
	if raw := r.URL.Query().Get("type"); raw != "" {
		mt, err := models.ParseMediaType(raw)
		if err != nil {
			rw.BadRequest("Unknown media type")
			return
		}
		types = []models.MediaType{mt}
	}

	results := make([]genreImportResult, len(types))
	g, ctx := errgroup.WithContext(r.Context())
	for i, mt := range types {
		i, mt := i, mt
		g.Go(func() error {
			genres, err := h.catalog.Genres(ctx, mt)
			if err != nil {
				return err
			}
			if err := h.store.PutGenres(ctx, genres); err != nil {
				return err
			}
			results[i] = genreImportResult{Type: mt.String(), Count: len(genres)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		rw.ExternalServiceError("catalog", err)
		return
	}
	rw.Success(results)
}

// --- Genre profile ---

// profileRequest is the body for PUT /profile/genres.
type profileRequest struct {
	Genres []profileGenre `json:"genres" validate:"required,dive"`
}

type profileGenre struct {
	Name   string  `json:"name" validate:"required,max=128"`
	Weight float64 `json:"weight" validate:"required,gt=0"`
	Type   string  `json:"type" validate:"required,mediatype"`
}

// GetProfile returns the caller's genre profile, empty when never set.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := UsernameFromContext(r.Context())

	profile, err := h.store.FindProfile(r.Context(), username)
	if err != nil {
		rw.StoreError(err)
		return
	}
	if profile == nil {
		profile = &models.GenreProfile{Username: username, Genres: []models.GenreWeight{}}
	}
	rw.Success(profile)
}

// PutProfile replaces the caller's genre profile.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := UsernameFromContext(r.Context())

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		rw.ValidationError("Invalid genre profile", verr.Details())
		return
	}

	genres := make([]models.GenreWeight, 0, len(req.Genres))
	for _, g := range req.Genres {
		mt, err := models.ParseMediaType(g.Type)
		if err != nil {
			rw.BadRequest("Unknown media type in profile entry")
			return
		}
		genres = append(genres, models.GenreWeight{Name: g.Name, Weight: g.Weight, Type: mt})
	}

	profile := &models.GenreProfile{
		Username:  username,
		Genres:    genres,
		UpdatedAt: time.Now().UTC(),
	}
	if err := h.store.PutProfile(r.Context(), profile); err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(profile)
}

// --- Recommendations and predictions ---

// GetRecommendations runs a recommendation cycle for the caller.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := UsernameFromContext(r.Context())

	mediaType, err := mediaTypeParam(r)
	if err != nil {
		rw.BadRequest("Unknown media type")
		return
	}

	n := h.recCfg.DefaultN
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			rw.BadRequest("Invalid result count")
			return
		}
		n = parsed
	}
	if h.recCfg.MaxN > 0 && n > h.recCfg.MaxN {
		n = h.recCfg.MaxN
	}

	ratings, err := h.store.FindRatings(r.Context(), store.RatingFilter{Username: username, Type: mediaType})
	if err != nil {
		rw.StoreError(err)
		return
	}
	rated := make([]int, 0, len(ratings))
	for _, rt := range ratings {
		rated = append(rated, rt.ItemID)
	}

	start := time.Now()
	items, err := h.engine.Recommend(r.Context(), username, mediaType, rated, n)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).
			Str("media_type", mediaType.String()).
			Msg("recommendation cycle failed")
		rw.InternalError("Recommendation failed")
		return
	}
	metrics.EngineRecommendDuration.WithLabelValues(mediaType.String()).Observe(time.Since(start).Seconds())
	metrics.RecommendationsServed.WithLabelValues(mediaType.String()).Add(float64(len(items)))

	rw.Success(items)
}

// predictResponse is the payload for GET /predict.
type predictResponse struct {
	ItemID     int     `json:"item_id"`
	Type       string  `json:"type"`
	Prediction float64 `json:"prediction"`
}

// GetPrediction returns the blended rating estimate for one item.
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := UsernameFromContext(r.Context())

	mediaType, err := mediaTypeParam(r)
	if err != nil {
		rw.BadRequest("Unknown media type")
		return
	}
	itemID, err := strconv.Atoi(r.URL.Query().Get("item"))
	if err != nil || itemID < 1 {
		rw.BadRequest("Invalid item id")
		return
	}

	prediction, err := h.engine.Predict(r.Context(), username, itemID, mediaType)
	if err != nil {
		rw.InternalError("Prediction failed")
		return
	}
	metrics.EnginePredictions.WithLabelValues(mediaType.String()).Inc()

	rw.Success(predictResponse{
		ItemID:     itemID,
		Type:       string(mediaType),
		Prediction: prediction,
	})
}

// --- Health ---

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]string{"status": "alive"})
}

// HealthReady reports readiness by probing the store.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if _, err := h.store.FindRatings(r.Context(), store.RatingFilter{Username: "health-probe"}); err != nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeStoreError, "Store unavailable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

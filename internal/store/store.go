// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

// Package store provides the durable state of the service: users, sessions,
// ratings, imported genre records, user genre profiles and wishlists, backed
// by BadgerDB. Values are JSON documents; filtered reads are prefix scans.
package store

import (
	"context"
	"errors"

	"github.com/hades-media/hades/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrAlreadyExists is returned when a unique record would be duplicated.
var ErrAlreadyExists = errors.New("store: already exists")

// RatingFilter selects ratings by optional username and media type.
// Zero values match everything.
type RatingFilter struct {
	Username string
	Type     models.MediaType
}

// UserStore persists account records.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// SessionStore persists opaque sessions with a TTL.
type SessionStore interface {
	PutSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// RatingStore persists user ratings. UpsertRating enforces at most one
// rating per (user, item, type).
type RatingStore interface {
	UpsertRating(ctx context.Context, rating *models.Rating) error
	FindRatings(ctx context.Context, filter RatingFilter) ([]models.Rating, error)
}

// GenreStore persists imported genre records and serves fuzzy lookups.
type GenreStore interface {
	PutGenres(ctx context.Context, genres []models.GenreRecord) error
	ListGenres(ctx context.Context, mediaType models.MediaType) ([]models.GenreRecord, error)
	// FindGenreIDs returns external ids of genres of the given type whose
	// name contains the pattern, case-insensitively.
	FindGenreIDs(ctx context.Context, namePattern string, mediaType models.MediaType) ([]int, error)
}

// ProfileStore persists user genre profiles. FindProfile returns
// (nil, nil) for an absent profile; absence is not an error.
type ProfileStore interface {
	PutProfile(ctx context.Context, profile *models.GenreProfile) error
	FindProfile(ctx context.Context, username string) (*models.GenreProfile, error)
}

// WishlistStore persists per-user wishlists.
type WishlistStore interface {
	AddWishlistItem(ctx context.Context, item *models.WishlistItem) error
	RemoveWishlistItem(ctx context.Context, username string, itemID int, mediaType models.MediaType) error
	ListWishlist(ctx context.Context, username string, mediaType models.MediaType) ([]models.WishlistItem, error)
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	SessionStore
	RatingStore
	GenreStore
	ProfileStore
	WishlistStore

	Close() error
}

// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

// Package models defines the shared domain types: users, sessions, ratings,
// genre records, genre profiles and wishlist entries. The package has no
// dependencies on other internal packages so that every layer can import it.
package models

import (
	"fmt"
	"strings"
	"time"
)

// MediaType tags every rating, genre and wishlist entry with the catalog it
// belongs to. The wire representation is the single-letter tag used by the
// persisted data ("m", "t", "g").
type MediaType string

const (
	// MediaTypeMovie tags movie content.
	MediaTypeMovie MediaType = "m"
	// MediaTypeTV tags television content.
	MediaTypeTV MediaType = "t"
	// MediaTypeGame tags game content.
	MediaTypeGame MediaType = "g"
)

// Rating bounds. Every rating value is within [RatingMin, RatingMax].
const (
	RatingMin = 1.0
	RatingMax = 5.0
)

// String returns a human-readable name for the media type.
func (t MediaType) String() string {
	switch t {
	case MediaTypeMovie:
		return "movie"
	case MediaTypeTV:
		return "tv"
	case MediaTypeGame:
		return "game"
	default:
		return "unknown"
	}
}

// Valid reports whether the media type is one of the three known tags.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeMovie, MediaTypeTV, MediaTypeGame:
		return true
	default:
		return false
	}
}

// ParseMediaType parses a media type from its tag or long form.
// Accepted inputs (case-insensitive): "m", "movie", "t", "tv", "g", "game".
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "movie", "movies":
		return MediaTypeMovie, nil
	case "t", "tv", "show", "shows":
		return MediaTypeTV, nil
	case "g", "game", "games":
		return MediaTypeGame, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// AllMediaTypes lists the three known media types in a stable order.
func AllMediaTypes() []MediaType {
	return []MediaType{MediaTypeMovie, MediaTypeTV, MediaTypeGame}
}

// User is an account record. The password is stored as a bcrypt hash only.
type User struct {
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is an opaque server-side session. The token doubles as the
// storage key; it carries no embedded claims.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Rating is a single user rating of a catalog item on the [1,5] scale.
// At most one rating exists per (user, item, type); re-rating updates
// the value in place.
type Rating struct {
	Username  string    `json:"username"`
	ItemID    int       `json:"item_id"`
	Type      MediaType `json:"type"`
	Value     float64   `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenreRecord is an imported catalog genre, keyed by (external id, type,
// source). Read-only after import.
type GenreRecord struct {
	ExternalID int       `json:"external_id"`
	Name       string    `json:"name"`
	Type       MediaType `json:"type"`
	Source     string    `json:"source"`
}

// GenreWeight is one entry of a user's genre profile: an affinity weight
// for a genre name within one media type. The weight scale is caller
// defined; the engine treats it as an opaque positive multiplier.
type GenreWeight struct {
	Name   string    `json:"name"`
	Weight float64   `json:"weight"`
	Type   MediaType `json:"type"`
}

// GenreProfile is the per-user genre affinity profile. Entries may share a
// genre name across media types.
type GenreProfile struct {
	Username  string        `json:"username"`
	Genres    []GenreWeight `json:"genres"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// WishlistItem is a saved catalog item on a user's wishlist.
type WishlistItem struct {
	Username string    `json:"username"`
	ItemID   int       `json:"item_id"`
	Type     MediaType `json:"type"`
	Title    string    `json:"title,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

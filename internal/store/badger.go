// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/hades-media/hades/internal/logging"
	"github.com/hades-media/hades/internal/models"
)

// Key prefixes for BadgerDB storage.
const (
	userKeyPrefix     = "user:"
	sessionKeyPrefix  = "session:"
	ratingKeyPrefix   = "rating:"
	genreKeyPrefix    = "genre:"
	profileKeyPrefix  = "profile:"
	wishlistKeyPrefix = "wishlist:"
)

// Badger implements Store on BadgerDB. Safe for concurrent use.
type Badger struct {
	db *badger.DB
}

// Options configures OpenBadger.
type Options struct {
	// Path is the on-disk location. Ignored when InMemory is set.
	Path string

	// InMemory runs without persistence.
	InMemory bool
}

// OpenBadger opens (creating if needed) the BadgerDB store.
func OpenBadger(opts Options) (*Badger, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	// Badger's own logger is noisy at INFO; route nothing through it and
	// log open/close ourselves.
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}

	logging.Info().Str("path", opts.Path).Bool("in_memory", opts.InMemory).Msg("store opened")
	return &Badger{db: db}, nil
}

// Close releases the underlying database.
func (s *Badger) Close() error {
	return s.db.Close()
}

// setJSON marshals v and writes it under key, optionally with a TTL.
func (s *Badger) setJSON(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// getJSON reads key into v, translating absence to ErrNotFound.
func (s *Badger) getJSON(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// scanJSON invokes fn with the raw value of every key under prefix.
func (s *Badger) scanJSON(prefix string, fn func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

// ========== Users ==========

// CreateUser stores a new account. Returns ErrAlreadyExists when the
// username is taken.
func (s *Badger) CreateUser(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	key := []byte(userKeyPrefix + user.Username)
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check user: %w", err)
		}
		return txn.Set(key, data)
	})
}

// GetUser retrieves an account by username.
func (s *Badger) GetUser(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.getJSON(userKeyPrefix+username, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ========== Sessions ==========

// PutSession stores a session under its token with a TTL derived from its
// expiry.
func (s *Badger) PutSession(ctx context.Context, session *models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	return s.setJSON(sessionKeyPrefix+session.Token, session, ttl)
}

// GetSession retrieves a session by token. Expired sessions surface as
// ErrNotFound (badger evicts them via TTL).
func (s *Badger) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session models.Session
	if err := s.getJSON(sessionKeyPrefix+token, &session); err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

// DeleteSession removes a session. Deleting an absent session is not an
// error.
func (s *Badger) DeleteSession(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionKeyPrefix + token))
	})
}

// ========== Ratings ==========

func ratingKey(username string, mediaType models.MediaType, itemID int) string {
	return ratingKeyPrefix + username + ":" + string(mediaType) + ":" + strconv.Itoa(itemID)
}

// UpsertRating stores a rating, replacing any previous value for the same
// (user, item, type).
func (s *Badger) UpsertRating(ctx context.Context, rating *models.Rating) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if rating.Value < models.RatingMin || rating.Value > models.RatingMax {
		return fmt.Errorf("rating %.2f out of range [%v, %v]", rating.Value, models.RatingMin, models.RatingMax)
	}
	return s.setJSON(ratingKey(rating.Username, rating.Type, rating.ItemID), rating, 0)
}

// FindRatings returns the ratings matching the filter. A username narrows
// the scan to that user's prefix; a type-only filter scans all ratings.
func (s *Badger) FindRatings(ctx context.Context, filter RatingFilter) ([]models.Rating, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := ratingKeyPrefix
	if filter.Username != "" {
		prefix += filter.Username + ":"
		if filter.Type != "" {
			prefix += string(filter.Type) + ":"
		}
	}

	var out []models.Rating
	err := s.scanJSON(prefix, func(val []byte) error {
		var r models.Rating
		if err := json.Unmarshal(val, &r); err != nil {
			return err
		}
		if filter.Type != "" && r.Type != filter.Type {
			return nil
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan ratings: %w", err)
	}
	return out, nil
}

// ========== Genres ==========

func genreKey(g *models.GenreRecord) string {
	return genreKeyPrefix + g.Source + ":" + string(g.Type) + ":" + strconv.Itoa(g.ExternalID)
}

// PutGenres bulk-imports genre records, replacing records with the same
// (source, type, id) key.
func (s *Badger) PutGenres(ctx context.Context, genres []models.GenreRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range genres {
		data, err := json.Marshal(&genres[i])
		if err != nil {
			return fmt.Errorf("marshal genre: %w", err)
		}
		if err := wb.Set([]byte(genreKey(&genres[i])), data); err != nil {
			return fmt.Errorf("batch genre: %w", err)
		}
	}
	return wb.Flush()
}

// ListGenres returns all genre records of the given type.
func (s *Badger) ListGenres(ctx context.Context, mediaType models.MediaType) ([]models.GenreRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []models.GenreRecord
	err := s.scanJSON(genreKeyPrefix, func(val []byte) error {
		var g models.GenreRecord
		if err := json.Unmarshal(val, &g); err != nil {
			return err
		}
		if g.Type == mediaType {
			out = append(out, g)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan genres: %w", err)
	}
	return out, nil
}

// FindGenreIDs returns external ids of genres of the given type whose name
// contains the pattern, case-insensitively. An empty result is not an
// error.
func (s *Badger) FindGenreIDs(ctx context.Context, namePattern string, mediaType models.MediaType) ([]int, error) {
	genres, err := s.ListGenres(ctx, mediaType)
	if err != nil {
		return nil, err
	}

	pattern := strings.ToLower(namePattern)
	var ids []int
	for i := range genres {
		if strings.Contains(strings.ToLower(genres[i].Name), pattern) {
			ids = append(ids, genres[i].ExternalID)
		}
	}
	return ids, nil
}

// ========== Profiles ==========

// PutProfile stores a user's genre profile, replacing any previous one.
func (s *Badger) PutProfile(ctx context.Context, profile *models.GenreProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.setJSON(profileKeyPrefix+profile.Username, profile, 0)
}

// FindProfile retrieves a user's genre profile. Returns (nil, nil) when
// the user has none.
func (s *Badger) FindProfile(ctx context.Context, username string) (*models.GenreProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var profile models.GenreProfile
	err := s.getJSON(profileKeyPrefix+username, &profile)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ========== Wishlist ==========

func wishlistKey(username string, mediaType models.MediaType, itemID int) string {
	return wishlistKeyPrefix + username + ":" + string(mediaType) + ":" + strconv.Itoa(itemID)
}

// AddWishlistItem stores a wishlist entry. Re-adding an item replaces it.
func (s *Badger) AddWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.setJSON(wishlistKey(item.Username, item.Type, item.ItemID), item, 0)
}

// RemoveWishlistItem deletes a wishlist entry. Removing an absent entry is
// not an error.
func (s *Badger) RemoveWishlistItem(ctx context.Context, username string, itemID int, mediaType models.MediaType) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(wishlistKey(username, mediaType, itemID)))
	})
}

// ListWishlist returns a user's wishlist, optionally narrowed to one media
// type.
func (s *Badger) ListWishlist(ctx context.Context, username string, mediaType models.MediaType) ([]models.WishlistItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := wishlistKeyPrefix + username + ":"
	if mediaType != "" {
		prefix += string(mediaType) + ":"
	}

	var out []models.WishlistItem
	err := s.scanJSON(prefix, func(val []byte) error {
		var w models.WishlistItem
		if err := json.Unmarshal(val, &w); err != nil {
			return err
		}
		out = append(out, w)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan wishlist: %w", err)
	}
	return out, nil
}

// Ensure interface compliance.
var _ Store = (*Badger)(nil)

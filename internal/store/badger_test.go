// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hades-media/hades/internal/models"
)

func newTestStore(t *testing.T) *Badger {
	t.Helper()
	s, err := OpenBadger(Options{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &models.User{
		Username:     "alice",
		PasswordHash: []byte("not-a-real-hash"),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := s.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want alice", got.Username)
	}

	if err := s.CreateUser(ctx, user); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrAlreadyExists", err)
	}

	if _, err := s.GetUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(nobody) error = %v, want ErrNotFound", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := &models.Session{
		Token:     "tok-1",
		Username:  "alice",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := s.PutSession(ctx, session); err != nil {
		t.Fatalf("PutSession() error = %v", err)
	}

	got, err := s.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("session Username = %q, want alice", got.Username)
	}

	if err := s.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := s.GetSession(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession after delete error = %v, want ErrNotFound", err)
	}

	expired := &models.Session{
		Token:     "tok-2",
		Username:  "alice",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := s.PutSession(ctx, expired); err == nil {
		t.Error("PutSession(expired) = nil, want error")
	}
}

func TestRatingUpsertAndFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ratings := []models.Rating{
		{Username: "alice", ItemID: 1, Type: models.MediaTypeMovie, Value: 4},
		{Username: "alice", ItemID: 2, Type: models.MediaTypeMovie, Value: 3},
		{Username: "alice", ItemID: 1, Type: models.MediaTypeGame, Value: 5},
		{Username: "bob", ItemID: 1, Type: models.MediaTypeMovie, Value: 2},
	}
	for i := range ratings {
		if err := s.UpsertRating(ctx, &ratings[i]); err != nil {
			t.Fatalf("UpsertRating() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter RatingFilter
		want   int
	}{
		{"by user and type", RatingFilter{Username: "alice", Type: models.MediaTypeMovie}, 2},
		{"by user", RatingFilter{Username: "alice"}, 3},
		{"by type", RatingFilter{Type: models.MediaTypeMovie}, 3},
		{"all", RatingFilter{}, 4},
		{"no match", RatingFilter{Username: "carol"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindRatings(ctx, tt.filter)
			if err != nil {
				t.Fatalf("FindRatings() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("FindRatings() returned %d ratings, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRatingUpsertReplacesValue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &models.Rating{Username: "alice", ItemID: 7, Type: models.MediaTypeTV, Value: 2}
	if err := s.UpsertRating(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := &models.Rating{Username: "alice", ItemID: 7, Type: models.MediaTypeTV, Value: 5}
	if err := s.UpsertRating(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindRatings(ctx, RatingFilter{Username: "alice", Type: models.MediaTypeTV})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d ratings, want 1 (upsert must replace)", len(got))
	}
	if got[0].Value != 5 {
		t.Errorf("rating value = %v, want 5", got[0].Value)
	}
}

func TestRatingRangeEnforced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, v := range []float64{0, 0.5, 5.5, -1} {
		r := &models.Rating{Username: "alice", ItemID: 1, Type: models.MediaTypeMovie, Value: v}
		if err := s.UpsertRating(ctx, r); err == nil {
			t.Errorf("UpsertRating(value=%v) = nil, want error", v)
		}
	}
}

func TestGenreImportAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	genres := []models.GenreRecord{
		{ExternalID: 28, Name: "Action", Type: models.MediaTypeMovie, Source: "tmdb"},
		{ExternalID: 12, Name: "Adventure", Type: models.MediaTypeMovie, Source: "tmdb"},
		{ExternalID: 4, Name: "Action", Type: models.MediaTypeGame, Source: "rawg"},
		{ExternalID: 10759, Name: "Action & Adventure", Type: models.MediaTypeTV, Source: "tmdb"},
	}
	if err := s.PutGenres(ctx, genres); err != nil {
		t.Fatalf("PutGenres() error = %v", err)
	}

	movieGenres, err := s.ListGenres(ctx, models.MediaTypeMovie)
	if err != nil {
		t.Fatal(err)
	}
	if len(movieGenres) != 2 {
		t.Errorf("ListGenres(movie) returned %d, want 2", len(movieGenres))
	}

	tests := []struct {
		name      string
		pattern   string
		mediaType models.MediaType
		want      []int
	}{
		{"exact", "Action", models.MediaTypeMovie, []int{28}},
		{"case insensitive", "action", models.MediaTypeMovie, []int{28}},
		{"substring", "vent", models.MediaTypeMovie, []int{12}},
		{"cross type isolated", "Action", models.MediaTypeGame, []int{4}},
		{"no match", "Horror", models.MediaTypeMovie, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := s.FindGenreIDs(ctx, tt.pattern, tt.mediaType)
			if err != nil {
				t.Fatalf("FindGenreIDs() error = %v", err)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("FindGenreIDs() = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("FindGenreIDs() = %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestProfileAbsenceIsNotAnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	profile, err := s.FindProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("FindProfile(absent) error = %v", err)
	}
	if profile != nil {
		t.Errorf("FindProfile(absent) = %+v, want nil", profile)
	}

	want := &models.GenreProfile{
		Username: "alice",
		Genres: []models.GenreWeight{
			{Name: "Action", Weight: 2, Type: models.MediaTypeMovie},
			{Name: "RPG", Weight: 1.5, Type: models.MediaTypeGame},
		},
	}
	if err := s.PutProfile(ctx, want); err != nil {
		t.Fatalf("PutProfile() error = %v", err)
	}

	got, err := s.FindProfile(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got.Genres) != 2 {
		t.Fatalf("FindProfile() = %+v, want 2 genres", got)
	}
	if got.Genres[0].Name != "Action" || got.Genres[0].Weight != 2 {
		t.Errorf("first genre = %+v, want Action/2", got.Genres[0])
	}
}

func TestWishlist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	items := []models.WishlistItem{
		{Username: "alice", ItemID: 100, Type: models.MediaTypeMovie, Title: "A"},
		{Username: "alice", ItemID: 200, Type: models.MediaTypeGame, Title: "B"},
		{Username: "bob", ItemID: 100, Type: models.MediaTypeMovie, Title: "A"},
	}
	for i := range items {
		if err := s.AddWishlistItem(ctx, &items[i]); err != nil {
			t.Fatalf("AddWishlistItem() error = %v", err)
		}
	}

	all, err := s.ListWishlist(ctx, "alice", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("ListWishlist(alice) returned %d, want 2", len(all))
	}

	movies, err := s.ListWishlist(ctx, "alice", models.MediaTypeMovie)
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != 1 || movies[0].ItemID != 100 {
		t.Errorf("ListWishlist(alice, movie) = %+v, want item 100", movies)
	}

	if err := s.RemoveWishlistItem(ctx, "alice", 100, models.MediaTypeMovie); err != nil {
		t.Fatalf("RemoveWishlistItem() error = %v", err)
	}
	left, err := s.ListWishlist(ctx, "alice", models.MediaTypeMovie)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("wishlist after removal = %+v, want empty", left)
	}
}

func TestContextCancellation(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.FindRatings(ctx, RatingFilter{}); err == nil {
		t.Error("FindRatings(cancelled ctx) = nil, want error")
	}
	if _, err := s.GetUser(ctx, "alice"); err == nil {
		t.Error("GetUser(cancelled ctx) = nil, want error")
	}
}

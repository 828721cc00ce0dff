// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hades-media/hades/internal/config"
	"github.com/hades-media/hades/internal/middleware"
)

// NewRouter builds the full HTTP routing tree.
func NewRouter(h *Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(h.RequireSession).Post("/logout", h.Logout)
		})

		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)

		// Everything below needs a live session.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			r.Get("/ratings", h.ListRatings)
			r.Post("/ratings", h.UpsertRating)

			r.Get("/wishlist", h.ListWishlist)
			r.Post("/wishlist", h.AddWishlistItem)
			r.Delete("/wishlist/{itemID}", h.RemoveWishlistItem)

			r.Get("/genres", h.ListGenres)
			r.Post("/genres/import", h.ImportGenres)

			r.Get("/profile/genres", h.GetProfile)
			r.Put("/profile/genres", h.PutProfile)

			r.Get("/recommendations", h.GetRecommendations)
			r.Get("/predict", h.GetPrediction)
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

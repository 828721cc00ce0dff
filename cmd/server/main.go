// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

// Command server runs the Hades HTTP API: session-backed auth, ratings,
// wishlists, genre import, and per-media-type collaborative filtering.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hades-media/hades/internal/api"
	"github.com/hades-media/hades/internal/catalog"
	"github.com/hades-media/hades/internal/config"
	"github.com/hades-media/hades/internal/logging"
	"github.com/hades-media/hades/internal/recommend"
	"github.com/hades-media/hades/internal/recommend/predictors"
	"github.com/hades-media/hades/internal/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	log := logging.Logger()

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config) error {
	log := logging.Logger()

	db, err := store.OpenBadger(store.Options{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	tmdb := catalog.NewTMDB(catalog.Options{
		BaseURL:   cfg.TMDB.URL,
		APIKey:    cfg.TMDB.APIKey,
		Timeout:   cfg.TMDB.Timeout,
		RateLimit: cfg.TMDB.RateLimit,
	})
	rawg := catalog.NewRAWG(catalog.Options{
		BaseURL:   cfg.RAWG.URL,
		APIKey:    cfg.RAWG.APIKey,
		Timeout:   cfg.RAWG.Timeout,
		RateLimit: cfg.RAWG.RateLimit,
	})
	mux := catalog.NewMux(tmdb, rawg)

	engine, err := newEngine(cfg, db, mux)
	if err != nil {
		return err
	}

	handler := api.NewHandler(db, engine, mux, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newEngine assembles the recommendation engine over the store and catalog.
func newEngine(cfg *config.Config, db *store.Badger, mux *catalog.Mux) (*recommend.Engine, error) {
	svdCfg := predictors.SVDConfig{
		Factors:        cfg.Recommend.SVD.Factors,
		Epochs:         cfg.Recommend.SVD.Epochs,
		LearningRate:   cfg.Recommend.SVD.LearningRate,
		Regularization: cfg.Recommend.SVD.Regularization,
		Seed:           cfg.Recommend.SVD.Seed,
	}
	knnCfg := predictors.KNNConfig{
		K:    cfg.Recommend.KNN.K,
		MinK: cfg.Recommend.KNN.MinK,
	}

	adapter := store.NewEngineAdapter(db)
	deps := recommend.Deps{
		Ratings:  adapter,
		Genres:   adapter,
		Catalog:  mux,
		Profiles: adapter,
		NewPair: func() (recommend.Predictor, recommend.Predictor) {
			return predictors.NewSVD(svdCfg), predictors.NewItemKNN(knnCfg)
		},
	}

	engineCfg := &recommend.Config{
		TopGenres:       cfg.Recommend.TopGenres,
		WeightBoost:     cfg.Recommend.WeightBoost,
		BudgetPerWeight: float64(cfg.Recommend.BudgetPerWeight),
		DefaultN:        cfg.Recommend.DefaultN,
	}
	return recommend.NewEngine(engineCfg, deps, logging.Logger())
}

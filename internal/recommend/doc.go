// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

// Package recommend implements the recommendation scoring engine.
//
// The engine keeps one collaborative-filter model pair per media type: a
// latent-factor predictor and a neighborhood predictor trained against the
// same rating snapshot, blended by arithmetic mean. Training is lazy and
// flag-gated; finishing a recommendation cycle clears the flag so the next
// cycle picks up ratings accumulated in the meantime.
//
// Candidate generation walks the user's genre profile: the top entries for
// the requested type select genres, the genre catalog resolves them to
// external genre ids, and the catalog provider is paged per genre id under a
// shared soft budget. Each surviving candidate is scored as
//
//	prediction × weight × (avg_rating / 10)
//
// and the result is sorted descending and truncated.
//
// # Thread Safety
//
// A per-type mutex serializes the fit-and-flag sequence; operations on
// different media types proceed independently.
//
// This package has no dependencies on other internal packages beyond models.
// The data source interfaces in types.go allow integration with the store
// and catalog layers without circular imports.
package recommend

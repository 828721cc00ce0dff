// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package validation

import (
	"strings"
	"testing"
)

type ratingRequest struct {
	ItemID int     `validate:"required,gte=1"`
	Type   string  `validate:"required,mediatype"`
	Rating float64 `validate:"required,gte=1,lte=5"`
}

func TestValidateStructPasses(t *testing.T) {
	req := ratingRequest{ItemID: 42, Type: "m", Rating: 4.5}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	tests := []struct {
		name      string
		req       ratingRequest
		wantField string
		wantIn    string
	}{
		{"missing item", ratingRequest{Type: "m", Rating: 3}, "ItemID", "required"},
		{"bad media type", ratingRequest{ItemID: 1, Type: "movie", Rating: 3}, "Type", "one of: m, t, g"},
		{"rating too high", ratingRequest{ItemID: 1, Type: "g", Rating: 6}, "Rating", "less than or equal to 5"},
		{"rating too low", ratingRequest{ItemID: 1, Type: "t", Rating: 0.5}, "Rating", "greater than or equal to 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			found := false
			for _, fe := range err.Errors() {
				if fe.Field() == tt.wantField && strings.Contains(fe.Error(), tt.wantIn) {
					found = true
				}
			}
			if !found {
				t.Errorf("error %q lacks field %s with message containing %q", err, tt.wantField, tt.wantIn)
			}
		})
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	err := ValidateStruct(&ratingRequest{})
	if err == nil {
		t.Fatal("ValidateStruct(zero value) = nil, want error")
	}
	if len(err.Errors()) < 3 {
		t.Errorf("got %d field errors, want at least 3: %v", len(err.Errors()), err)
	}
	details := err.Details()
	if _, ok := details["fields"]; !ok {
		t.Error("Details() lacks fields key")
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}

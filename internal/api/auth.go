// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hades-media/hades/internal/logging"
	"github.com/hades-media/hades/internal/models"
	"github.com/hades-media/hades/internal/store"
	"github.com/hades-media/hades/internal/validation"
)

type contextKey string

// usernameKey carries the authenticated username through the request context.
const usernameKey contextKey = "hades.username"

// UsernameFromContext returns the authenticated username, or "" when the
// request did not pass the session middleware.
func UsernameFromContext(ctx context.Context) string {
	if u, ok := ctx.Value(usernameKey).(string); ok {
		return u
	}
	return ""
}

// registerRequest is the body for POST /auth/register.
type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanumunicode"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// loginRequest is the body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse is returned by register and login.
type sessionResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// newSessionToken returns a 256-bit random token, hex encoded. Tokens are
// opaque; all session state lives server side.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Register creates an account and opens a session for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		rw.ValidationError("Invalid registration request", verr.Details())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		rw.InternalError("Failed to process credentials")
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			rw.Conflict("Username already taken")
			return
		}
		rw.StoreError(err)
		return
	}

	session, err := h.openSession(r.Context(), user.Username)
	if err != nil {
		rw.StoreError(err)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Info().Str("username", user.Username).Msg("user registered")
	rw.Created(sessionResponse{
		Token:     session.Token,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt,
	})
}

// Login verifies credentials and opens a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		rw.ValidationError("Invalid login request", verr.Details())
		return
	}

	user, err := h.store.GetUser(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.Unauthorized("Invalid username or password")
			return
		}
		rw.StoreError(err)
		return
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		rw.Unauthorized("Invalid username or password")
		return
	}

	session, err := h.openSession(r.Context(), user.Username)
	if err != nil {
		rw.StoreError(err)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Info().Str("username", user.Username).Msg("user logged in")
	rw.Success(sessionResponse{
		Token:     session.Token,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout deletes the presented session. Requires authentication.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	token := bearerToken(r)
	if token == "" {
		rw.Unauthorized("Missing bearer token")
		return
	}
	if err := h.store.DeleteSession(r.Context(), token); err != nil {
		rw.StoreError(err)
		return
	}
	rw.NoContent()
}

// openSession mints a token and persists the session with the configured TTL.
func (h *Handler) openSession(ctx context.Context, username string) (*models.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session := &models.Session{
		Token:     token,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(h.sessionTTL),
	}
	if err := h.store.PutSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

// RequireSession resolves the bearer token into a username and rejects
// requests without a live session. Expired sessions read as absent because
// the store TTLs them out.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w, r)

		token := bearerToken(r)
		if token == "" {
			rw.Unauthorized("Missing bearer token")
			return
		}
		session, err := h.store.GetSession(r.Context(), token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				rw.Unauthorized("Invalid or expired session")
				return
			}
			rw.StoreError(err)
			return
		}
		if session.Expired(time.Now()) {
			rw.Unauthorized("Invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, session.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

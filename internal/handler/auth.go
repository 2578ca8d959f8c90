package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minstant/messenger/internal/auth"
	"github.com/minstant/messenger/internal/store"
	"github.com/minstant/messenger/internal/token"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/token"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login checks credentials against the store and, on success, issues an
// access token in the response body and a refresh token in a cookie scoped
// to the token endpoints. Unknown user and wrong password both answer 401.
func Login(s store.Store, tokens *token.Service, accessTTL, refreshTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "username and password required")
			return
		}

		rec, err := s.ValidateCredentials(req.Username)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		match, err := auth.ComparePassword(req.Password, rec.PasswordHash)
		if err != nil || !match {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		access, err := tokens.IssueAccess(rec.Username, accessTTL)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		refresh, err := tokens.IssueRefresh(rec.Username, refreshTTL)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     refreshCookieName,
			Value:    refresh,
			Path:     refreshCookiePath,
			Expires:  time.Now().Add(refreshTTL),
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		log.Info().Str("user", rec.Username).Msg("login")
		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: access,
			TokenType:   "Bearer",
			ExpiresIn:   int64(accessTTL.Seconds()),
		})
	}
}

// Refresh mints a new access token from the refresh cookie. A missing,
// invalid, or revoked refresh token answers 406 with no further detail.
func Refresh(tokens *token.Service, revoked *token.RevocationRegistry, accessTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		cookie, err := r.Cookie(refreshCookieName)
		if err != nil {
			writeError(w, http.StatusNotAcceptable, "unauthorized")
			return
		}
		identity, err := tokens.VerifyRefresh(cookie.Value)
		if err != nil || revoked.IsRevoked(cookie.Value) {
			writeError(w, http.StatusNotAcceptable, "unauthorized")
			return
		}

		access, err := tokens.IssueAccess(identity, accessTTL)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: access,
			TokenType:   "Bearer",
			ExpiresIn:   int64(accessTTL.Seconds()),
		})
	}
}

// Logout revokes the presented refresh token and clears the cookie.
// Idempotent: logging out without a cookie still succeeds.
func Logout(revoked *token.RevocationRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if cookie, err := r.Cookie(refreshCookieName); err == nil {
			revoked.Revoke(cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     refreshCookieName,
			Value:    "",
			Path:     refreshCookiePath,
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

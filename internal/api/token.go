package api

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/pigeonworks-llc/billed/internal/store"
)

const (
	tokenLength = 32
	tokenTTL    = time.Hour
)

// TokenResponse represents the OAuth2 token response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenHandler issues client-credentials access tokens for the bill API.
type TokenHandler struct {
	store   *store.Store
	clients map[string]string
	now     func() time.Time
}

// NewTokenHandler creates a TokenHandler accepting the given client ID to secret pairs.
func NewTokenHandler(s *store.Store, clients map[string]string) *TokenHandler {
	return &TokenHandler{store: s, clients: clients, now: time.Now}
}

// HandleToken handles POST /oauth/token with grant_type=client_credentials.
// Credentials are read from HTTP basic auth, falling back to form values.
func (h *TokenHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse form")
		return
	}

	if gt := r.FormValue("grant_type"); gt != "client_credentials" {
		writeJSONError(w, http.StatusBadRequest, "unsupported_grant_type", fmt.Sprintf("Unsupported grant_type %q", gt))
		return
	}

	id, secret, ok := r.BasicAuth()
	if !ok {
		id, secret = r.FormValue("client_id"), r.FormValue("client_secret")
	}
	if !h.authenticate(id, secret) {
		writeJSONError(w, http.StatusUnauthorized, "invalid_client", "Unknown client or bad secret")
		return
	}

	token, err := generateRandomToken(tokenLength)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to generate access token")
		return
	}
	if err := h.store.PutToken(token, h.now().Add(tokenTTL)); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to store access token")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(tokenTTL.Seconds()),
	})
}

func (h *TokenHandler) authenticate(id, secret string) bool {
	want, ok := h.clients[id]
	if !ok || id == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(secret)) == 1
}

func generateRandomToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

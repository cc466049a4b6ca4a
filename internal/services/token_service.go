package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rodpaiva/mensageiro-fit/internal/apperrors"
	"github.com/rodpaiva/mensageiro-fit/internal/domain"
	"github.com/rodpaiva/mensageiro-fit/internal/logger"
)

// GoogleTokenURL is the OAuth token endpoint used for refresh grants.
const GoogleTokenURL = "https://oauth2.googleapis.com/token"

// refreshMargin keeps the subsequent fetch calls clear of
// provider-side clock skew around the expiry instant.
const refreshMargin = 5 * time.Minute

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenService ensures a user's credential yields a currently-valid
// access token, refreshing it via the OAuth provider when near expiry.
type TokenService struct {
	creds        domain.CredentialRepository
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	now          func() time.Time
}

// NewTokenService creates a new token service. tokenURL is normally
// GoogleTokenURL; tests point it at a local server.
func NewTokenService(creds domain.CredentialRepository, clientID, clientSecret, tokenURL string, httpClient *http.Client) *TokenService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenService{
		creds:        creds,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// EnsureValidToken returns an access token valid for at least the
// refresh margin. Idempotent under retry: an already-fresh token is
// returned unchanged with no network call. A missing credential row or
// a rejected refresh grant yields apperrors.ErrTokenUnavailable, and a
// rejected grant leaves the stored credential untouched.
func (s *TokenService) EnsureValidToken(ctx context.Context, userID uint) (string, error) {
	cred, err := s.creds.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", apperrors.Wrap(err, apperrors.ErrorTypeTokenUnavailable, "TOKEN_UNAVAILABLE", "user never completed OAuth setup")
		}
		return "", apperrors.NewDatabaseError(err)
	}

	if cred.ExpiresAt.After(s.now().Add(refreshMargin)) {
		return cred.AccessToken, nil
	}

	logger.Info("Access token near expiry, refreshing", "user_id", userID)

	form := url.Values{}
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("refresh_token", cred.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeTokenUnavailable, "TOKEN_UNAVAILABLE", "failed to build refresh request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeTokenUnavailable, "TOKEN_UNAVAILABLE", "token endpoint unreachable")
	}
	defer resp.Body.Close()

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeTokenUnavailable, "TOKEN_UNAVAILABLE", "invalid token endpoint response")
	}

	// A response without an access token means the grant was rejected
	// (revoked consent, bad client). The stored credential stays as-is.
	if token.AccessToken == "" {
		return "", apperrors.Wrap(
			fmt.Errorf("token endpoint returned status %d without access_token", resp.StatusCode),
			apperrors.ErrorTypeTokenUnavailable, "TOKEN_UNAVAILABLE", "refresh grant rejected")
	}

	expiresAt := s.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := s.creds.UpdateAccessToken(ctx, userID, token.AccessToken, expiresAt); err != nil {
		return "", apperrors.NewDatabaseError(err)
	}

	logger.Info("Access token refreshed", "user_id", userID, "expires_at", expiresAt)
	return token.AccessToken, nil
}

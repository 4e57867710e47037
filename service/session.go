package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/okvist/localspot/models"
	"golang.org/x/oauth2"
)

var oauthConfigsTemplate = map[string]*oauth2.Config{
	"github": {
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://github.com/login/oauth/authorize",
			TokenURL: "https://github.com/login/oauth/access_token",
		},
		Scopes: []string{""},
	},
	"google": {
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		Scopes: []string{"openid", "email"},
	},
}

// ConfigureOAuth fills in the provider endpoints and scopes for the
// configs the caller supplies client ids for.
func ConfigureOAuth(oauthConfigs map[string]*oauth2.Config) (map[string]*oauth2.Config, error) {
	for provider := range oauthConfigs {
		template, ok := oauthConfigsTemplate[provider]
		if !ok {
			return nil, fmt.Errorf("unsupported provider: %s", provider)
		}
		oauthConfigs[provider].Endpoint = template.Endpoint
		oauthConfigs[provider].Scopes = template.Scopes
	}

	return oauthConfigs, nil
}

// SessionFromToken extracts identity and expiry from the backend-issued
// bearer token. The signing secret stays server-side, so claims are read
// unverified here; the server remains the authority on every request.
func SessionFromToken(token string) (models.Session, error) {
	if len(token) == 0 {
		return models.Session{}, ErrNotAuthenticated
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return models.Session{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return models.Session{}, errors.New("invalid token claims")
	}

	session := models.Session{Token: token}
	if id, ok := claims["id"].(string); ok {
		session.UserId = id
	}
	if expFloat, ok := claims["exp"].(float64); ok {
		session.ExpiresAt = time.Unix(int64(expFloat), 0)
	}

	return session, nil
}

// authGuard fails a mutation before any network round trip when the
// viewer has no usable session.
func (s *Service) authGuard() error {
	if s.Session.Token == "" {
		return ErrNotAuthenticated
	}
	if !s.Session.ExpiresAt.IsZero() && time.Now().After(s.Session.ExpiresAt) {
		return ErrNotAuthenticated
	}
	return nil
}

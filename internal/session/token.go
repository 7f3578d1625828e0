package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenStore issues stateless signed tokens instead of tracking
// sessions server-side. Logout relies on the handler clearing the
// cookie; the token itself cannot be revoked early.
type TokenStore struct {
	secret string
}

// NewTokenStore returns a token-backed session store signing with secret.
func NewTokenStore(secret string) *TokenStore {
	return &TokenStore{secret: secret}
}

func (s *TokenStore) Create(_ context.Context, userID uint) (string, error) {
	if s.secret == "" {
		return "", fmt.Errorf("session secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "carelog-api",
		"aud": "carelog-client",
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *TokenStore) Get(_ context.Context, id string) (uint, error) {
	token, err := jwt.Parse(id, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrNotFound
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrNotFound
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "carelog-api" {
		return 0, ErrNotFound
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "carelog-client" {
		return 0, ErrNotFound
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrNotFound
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, ErrNotFound
	}

	return uint(userID), nil
}

// Destroy is a no-op for stateless tokens: the HTTP layer clears the
// cookie, which is all the invalidation this backend can offer.
func (s *TokenStore) Destroy(_ context.Context, _ string) error {
	return nil
}

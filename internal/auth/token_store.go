package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"habitrack/internal/cache"
)

// Redis layout:
//
//	session:refresh:<jti>  refreshSession JSON, lives as long as the refresh token
//	session:revoked:<jti>  marker, lives as long as the revoked access token
const (
	refreshKeyPrefix = "session:refresh:"
	revokedKeyPrefix = "session:revoked:"
)

// ErrSessionNotFound is returned when no refresh session exists for a token ID.
var ErrSessionNotFound = errors.New("refresh session not found")

// TokenStoreInterface tracks refresh sessions and revoked access tokens.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (userID uuid.UUID, email string, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps habitrack sessions in the shared cache.
type TokenStore struct {
	cache *cache.Client
}

var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a token store. A nil cache stores nothing.
func NewTokenStore(c *cache.Client) *TokenStore {
	return &TokenStore{cache: c}
}

type refreshSession struct {
	UserID   uuid.UUID `json:"userId"`
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"issuedAt"`
}

// StoreRefreshToken records the session behind a refresh token.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error {
	return s.cache.SetJSON(ctx, refreshKeyPrefix+tokenID, refreshSession{
		UserID:   userID,
		Email:    email,
		IssuedAt: time.Now().UTC(),
	}, ttl)
}

// GetRefreshToken returns the owner of a live refresh session.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, string, error) {
	var session refreshSession
	if !s.cache.GetJSON(ctx, refreshKeyPrefix+tokenID, &session) || session.UserID == uuid.Nil {
		return uuid.Nil, "", ErrSessionNotFound
	}
	return session.UserID, session.Email, nil
}

// DeleteRefreshToken ends a refresh session.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, refreshKeyPrefix+tokenID)
}

// BlacklistAccessToken revokes an access token for the rest of its lifetime.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedKeyPrefix+tokenID, []byte{1}, ttl)
}

// IsAccessTokenBlacklisted reports whether an access token was revoked.
// An unreachable cache reports false.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	return s.cache.Exists(ctx, revokedKeyPrefix+tokenID), nil
}

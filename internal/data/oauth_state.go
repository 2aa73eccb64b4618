package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrStateNotFound is returned when an OAuth state nonce is unknown or
// already claimed.
var ErrStateNotFound = errors.New("oauth state not found")

const stateKeyPrefix = "autoapply:oauth_state:"

// OAuthStateStore issues single-use state nonces for the OAuth
// authorization-code flow and maps them back to the initiating user.
type OAuthStateStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewOAuthStateStore creates an OAuthStateStore. A non-positive ttl defaults
// to ten minutes.
func NewOAuthStateStore(client redis.UniversalClient, ttl time.Duration) *OAuthStateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OAuthStateStore{client: client, ttl: ttl}
}

// Issue stores a fresh nonce bound to userID and returns it.
func (s *OAuthStateStore) Issue(ctx context.Context, userID string) (string, error) {
	state := uuid.NewString()
	if err := s.client.Set(ctx, stateKeyPrefix+state, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return state, nil
}

// Claim resolves a nonce back to its user and deletes it, so a state can
// only be used once.
func (s *OAuthStateStore) Claim(ctx context.Context, state string) (string, error) {
	userID, err := s.client.GetDel(ctx, stateKeyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("claim oauth state: %w", err)
	}
	return userID, nil
}

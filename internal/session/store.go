// Package session maps opaque tokens to user identities in an
// expiring key-value store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned for tokens that are unknown or expired;
// callers cannot tell the two apart.
var ErrNoSession = errors.New("session not found")

const keyPrefix = "auth_"

type record struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store keeps token-to-user associations in redis. Each entry carries
// its own expiry instant in addition to the redis key TTL, so expiry
// can be exercised in tests without waiting on the server clock.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// Put stores the association, overwriting any prior value for the token.
func (s *Store) Put(ctx context.Context, token string, userID string, ttl time.Duration) error {
	payload, err := json.Marshal(record{
		UserID:    userID,
		ExpiresAt: s.now().Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Get resolves a token to a user id, or ErrNoSession if the token is
// absent or past its expiry instant.
func (s *Store) Get(ctx context.Context, token string) (string, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("get session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return "", fmt.Errorf("unmarshal session: %w", err)
	}

	if !s.now().Before(rec.ExpiresAt) {
		_ = s.client.Del(ctx, keyPrefix+token).Err()
		return "", ErrNoSession
	}
	return rec.UserID, nil
}

// Delete removes the association. Deleting an absent token is not an
// error here; the caller decides whether absence matters.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

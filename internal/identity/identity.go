// Package identity resolves bearer tokens to user accounts. Sessions are
// written by the auth frontend; this service only reads them.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shelfmark/shelfmark/internal/domain"
)

const sessionKeyPrefix = "shelfmark:session:"

// User is the resolved identity attached to authenticated requests.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Resolver maps a bearer token to a user.
type Resolver interface {
	// Resolve returns domain.ErrUnauthenticated for unknown or expired
	// tokens.
	Resolve(ctx context.Context, token string) (*User, error)
}

// RedisResolver reads session records from Redis.
type RedisResolver struct {
	client *redis.Client
}

// NewRedisResolver creates a resolver backed by the shared Redis client.
func NewRedisResolver(client *redis.Client) *RedisResolver {
	return &RedisResolver{client: client}
}

// SessionKey returns the Redis key for a session token.
func SessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (r *RedisResolver) Resolve(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	raw, err := r.client.Get(ctx, SessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &user, nil
}

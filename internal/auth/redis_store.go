package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/redmonkez12/wasteless-api/internal/identity"
)

var ErrSessionNotFound = errors.New("session not found")

// RedisStore keeps sessions and revoked bearer tokens in Redis. Keys expire
// with the credential they describe so no cleanup job is needed.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// sessionKey generates the Redis key for a session
func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", hashToken(sessionID))
}

// revokedKey generates the Redis key for a revoked token marker
func revokedKey(token string) string {
	return fmt.Sprintf("revoked_token:%s", hashToken(token))
}

// CreateSession stores the identity under a new random session id
func (r *RedisStore) CreateSession(ctx context.Context, id identity.Identity, ttl time.Duration) (string, error) {
	sessionID, err := generateRandomToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	key := sessionKey(sessionID)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    id.UserID.String(),
		"name":       id.Name,
		"email":      id.Email,
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return sessionID, nil
}

// GetSession returns the identity of a live session
func (r *RedisStore) GetSession(ctx context.Context, sessionID string) (identity.Identity, error) {
	data, err := r.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return identity.Identity{}, fmt.Errorf("failed to get session: %w", err)
	}

	if len(data) == 0 {
		return identity.Identity{}, ErrSessionNotFound
	}

	userID, err := uuid.Parse(data["user_id"])
	if err != nil {
		return identity.Identity{}, ErrSessionNotFound
	}

	return identity.Identity{
		UserID: userID,
		Name:   data["name"],
		Email:  data["email"],
	}, nil
}

// DeleteSession destroys a session. Deleting an unknown session is not an error.
func (r *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RevokeToken denies a bearer token until ttl elapses
func (r *RedisStore) RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, revokedKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token was revoked at logout
func (r *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}

// hashToken keeps raw credentials out of Redis key names
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// generateRandomToken creates a cryptographically secure random token
func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

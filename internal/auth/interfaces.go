package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/config"
	"github.com/redmonkez12/wasteless-api/internal/identity"
	"github.com/redmonkez12/wasteless-api/internal/user"
)

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID uuid.UUID, name, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// SessionStore keeps server-side sessions keyed by an opaque id
type SessionStore interface {
	CreateSession(ctx context.Context, id identity.Identity, ttl time.Duration) (string, error)
	GetSession(ctx context.Context, sessionID string) (identity.Identity, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Denylist records bearer tokens revoked before their expiry
type Denylist interface {
	RevokeToken(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// UserStore is the part of the identity store used by registration and login
type UserStore interface {
	Create(ctx context.Context, nu user.NewUser) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByName(ctx context.Context, name string) (*user.User, error)
}

// NewTokenService returns the token implementation selected by cfg.TokenFormat
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	switch cfg.TokenFormat {
	case config.TokenFormatJWT:
		return NewJWTService(cfg.JWTSecret)
	case config.TokenFormatPaseto:
		return NewPasetoService(cfg.PasetoKey)
	default:
		return nil, fmt.Errorf("unknown token format %q", cfg.TokenFormat)
	}
}

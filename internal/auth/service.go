package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/config"
	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/identity"
	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingCredential  = errors.New("missing authentication")
)

const minPasswordLen = 6

// RegisterInput is the registration form
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Gender   string
	Address  string
}

// LoginResult carries the credential issued at login. Exactly one of Token
// and SessionID is set, depending on the auth mode.
type LoginResult struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	User      *user.User
}

// Options selects the variant behaviour of the service
type Options struct {
	Mode                string
	AccessTokenDuration time.Duration
	SessionDuration     time.Duration
	RequireUniqueName   bool
}

// Service handles authentication business logic
type Service struct {
	users    UserStore
	tokens   TokenService
	sessions SessionStore
	denylist Denylist
	logger   *logging.Logger
	opts     Options
	now      func() time.Time
}

func NewService(
	users UserStore,
	tokens TokenService,
	sessions SessionStore,
	denylist Denylist,
	logger *logging.Logger,
	opts Options,
) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		denylist: denylist,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Mode returns the configured credential kind
func (s *Service) Mode() string {
	return s.opts.Mode
}

// Register creates a new user account. Uniqueness is checked before the
// password is hashed.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	var errs httputil.ValidationErrors
	errs.Required("name", in.Name)
	errs.Required("email", in.Email)
	if in.Email != "" {
		if len(in.Email) > 254 {
			errs.Add("email", "invalid email format")
		} else if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
			errs.Add("email", "invalid email format")
		}
	}
	if in.Password == "" {
		errs.Add("password", "password is required")
	} else if len(in.Password) < minPasswordLen {
		errs.Add("password", "password must be at least %d characters", minPasswordLen)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if s.opts.RequireUniqueName {
		if _, err := s.users.GetByName(ctx, in.Name); err == nil {
			return nil, user.ErrDuplicateName
		} else if !errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("failed to check name: %w", err)
		}
	}

	passwordHash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, user.NewUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Gender:       strings.TrimSpace(in.Gender),
		Address:      strings.TrimSpace(in.Address),
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login authenticates a user and issues a bearer token or a session
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if s.opts.Mode == config.AuthModeSession {
		sessionID, err := s.sessions.CreateSession(ctx, identity.Identity{
			UserID: u.ID,
			Name:   u.Name,
			Email:  u.Email,
		}, s.opts.SessionDuration)
		if err != nil {
			return nil, err
		}
		return &LoginResult{
			SessionID: sessionID,
			ExpiresAt: s.now().Add(s.opts.SessionDuration),
			User:      u,
		}, nil
	}

	token, err := s.tokens.CreateToken(u.ID, u.Name, u.Email, s.opts.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: s.now().Add(s.opts.AccessTokenDuration),
		User:      u,
	}, nil
}

// Authenticate resolves a credential to the identity it carries
func (s *Service) Authenticate(ctx context.Context, credential string) (identity.Identity, error) {
	if credential == "" {
		return identity.Identity{}, ErrMissingCredential
	}

	if s.opts.Mode == config.AuthModeSession {
		return s.sessions.GetSession(ctx, credential)
	}

	claims, err := s.tokens.VerifyToken(credential)
	if err != nil {
		return identity.Identity{}, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return identity.Identity{}, ErrInvalidToken
	}

	revoked, err := s.denylist.IsRevoked(ctx, credential)
	if err != nil {
		return identity.Identity{}, err
	}
	if revoked {
		return identity.Identity{}, ErrInvalidToken
	}

	return identity.Identity{
		UserID: userID,
		Name:   claims.Name,
		Email:  claims.Email,
	}, nil
}

// Logout destroys the session, or denies the bearer token until it would
// have expired anyway.
func (s *Service) Logout(ctx context.Context, credential string) error {
	if credential == "" {
		return nil
	}

	if s.opts.Mode == config.AuthModeSession {
		return s.sessions.DeleteSession(ctx, credential)
	}

	claims, err := s.tokens.VerifyToken(credential)
	if err != nil {
		// Nothing to revoke: the token is already unusable
		return nil
	}

	return s.denylist.RevokeToken(ctx, credential, claims.ExpiresAt.Sub(s.now()))
}

// IssueToken mints a bearer token for an existing user without a password
// check. Used by operator tooling.
func (s *Service) IssueToken(u *user.User, duration time.Duration) (string, error) {
	if duration <= 0 {
		duration = s.opts.AccessTokenDuration
	}
	return s.tokens.CreateToken(u.ID, u.Name, u.Email, duration)
}

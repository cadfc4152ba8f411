package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/identity"
	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/internal/user"
)

type fakeUsers struct {
	mu    sync.Mutex
	users []*user.User
}

func (f *fakeUsers) Create(_ context.Context, nu user.NewUser) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == nu.Email {
			return nil, user.ErrDuplicateEmail
		}
	}
	u := &user.User{ID: uuid.New(), Name: nu.Name, Email: nu.Email, PasswordHash: nu.PasswordHash}
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUsers) find(match func(*user.User) bool) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return f.find(func(u *user.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetByName(_ context.Context, name string) (*user.User, error) {
	return f.find(func(u *user.User) bool { return u.Name == name })
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]identity.Identity
	ttls     map[string]time.Duration
	err      error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		sessions: make(map[string]identity.Identity),
		ttls:     make(map[string]time.Duration),
	}
}

func (f *fakeSessions) CreateSession(_ context.Context, id identity.Identity, ttl time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	sid := uuid.NewString()
	f.sessions[sid] = id
	f.ttls[sid] = ttl
	return sid, nil
}

func (f *fakeSessions) GetSession(_ context.Context, sid string) (identity.Identity, error) {
	if f.err != nil {
		return identity.Identity{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.sessions[sid]
	if !ok {
		return identity.Identity{}, ErrSessionNotFound
	}
	return id, nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, sid string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.sessions, sid)
	return nil
}

type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: make(map[string]time.Duration)}
}

func (f *fakeDenylist) RevokeToken(_ context.Context, token string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if ttl > 0 {
		f.revoked[token] = ttl
	}
	return nil
}

func (f *fakeDenylist) IsRevoked(_ context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.revoked[token]
	return ok, nil
}

type fakeLimiter struct {
	exceeded bool
	err      error
	recorded []string
}

func (f *fakeLimiter) CheckIPRateLimitWithPurpose(_ context.Context, _, _ string) (bool, error) {
	return f.exceeded, f.err
}

func (f *fakeLimiter) RecordIPRequestWithPurpose(_ context.Context, ip, purpose string) error {
	f.recorded = append(f.recorded, purpose+"@"+ip)
	return nil
}

var errStoreDown = errors.New("store down")

func discardLogger() *logging.Logger {
	return logging.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

package food

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/category"
	"github.com/redmonkez12/wasteless-api/internal/geocode"
	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/internal/user"
)

// Headers are enough for content sniffing.
var (
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00")
)

func discardLogger() *logging.Logger {
	return logging.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeStore struct {
	mu        sync.Mutex
	foods     []Food
	requested map[uuid.UUID][]string
	createErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{requested: make(map[uuid.UUID][]string)}
}

func (s *fakeStore) Create(_ context.Context, f *Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.foods = append(s.foods, *f)
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.foods {
		if f.ID == id {
			found := f
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) ListByCategory(_ context.Context, c category.Category, limit int, now time.Time) ([]Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []Food
	for _, f := range s.foods {
		if f.FoodType == c && !f.ExpiredAt.Before(now) && len(out) < limit {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeStore) ListAll(_ context.Context, limit, offset int, now time.Time) ([]Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var sorted []Food
	for _, f := range s.foods {
		if !f.ExpiredAt.Before(now) {
			sorted = append(sorted, f)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if offset >= len(sorted) {
		return nil, nil
	}
	sorted = sorted[offset:]
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (s *fakeStore) ListByOwner(_ context.Context, userID uuid.UUID) ([]Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Food
	for _, f := range s.foods {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeStore) Search(_ context.Context, query string, limit int, now time.Time) ([]Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	var out []Food
	for _, f := range s.foods {
		if f.ExpiredAt.Before(now) {
			continue
		}
		if strings.Contains(strings.ToLower(f.Name), q) || strings.Contains(strings.ToLower(f.Description), q) {
			out = append(out, f)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) RequestedCategories(_ context.Context, userID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested[userID], nil
}

func (s *fakeStore) DeleteExpired(_ context.Context, before time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.foods[:0]
	var keys []string
	for _, f := range s.foods {
		if f.ExpiredAt.Before(before) {
			keys = append(keys, f.PhotoKey)
			continue
		}
		kept = append(kept, f)
	}
	s.foods = kept
	return keys, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.foods)
}

type fakeUsers struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*user.User
	updateErr error
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{users: make(map[uuid.UUID]*user.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdateDonationHistory(_ context.Context, id uuid.UUID, history string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.DonationHistory = history
	return nil
}

type fakeGeocoder struct {
	results []geocode.Result
	err     error
	calls   int
}

func (g *fakeGeocoder) Resolve(_ context.Context, _ string) ([]geocode.Result, error) {
	g.calls++
	return g.results, g.err
}

// fakeUploader hands out URLs under cdn.example.com. With signedAt set, each
// URL carries an expires parameter of signedAt()+ttl, like a presigned URL.
type fakeUploader struct {
	err        error
	urlErr     error
	deleteErr  error
	puts       []string
	deletes    []string
	mediaTypes []string
	signedAt   func() time.Time
	ttl        time.Duration
}

func (u *fakeUploader) Put(ctx context.Context, key string, _ []byte, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.puts = append(u.puts, key)
	u.mediaTypes = append(u.mediaTypes, contentType)
	return u.URL(ctx, key)
}

func (u *fakeUploader) URL(_ context.Context, key string) (string, error) {
	if u.urlErr != nil {
		return "", u.urlErr
	}
	base := "https://cdn.example.com/" + key
	if u.signedAt == nil {
		return base, nil
	}
	return fmt.Sprintf("%s?expires=%d", base, u.signedAt().Add(u.ttl).Unix()), nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.deletes = append(u.deletes, key)
	return u.deleteErr
}

type fakeRecommender struct {
	category category.Category
	err      error
	got      []category.Histogram
}

func (r *fakeRecommender) Predict(_ context.Context, h category.Histogram) (category.Category, error) {
	r.got = append(r.got, h)
	return r.category, r.err
}

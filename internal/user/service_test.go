package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/wasteless-api/internal/geocode"
	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/identity"
	"github.com/redmonkez12/wasteless-api/internal/logging"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type fakeStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*User
	updateErr error
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, id uuid.UUID, p ProfileUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Location = &p.Location
	if p.Latitude != nil && p.Longitude != nil {
		u.Latitude, u.Longitude = p.Latitude, p.Longitude
	}
	if p.PhotoURL != nil {
		u.PhotoURL = p.PhotoURL
	}
	if p.PhotoKey != nil {
		u.PhotoKey = p.PhotoKey
	}
	return nil
}

type fakeGeocoder struct {
	results []geocode.Result
	err     error
}

func (f *fakeGeocoder) Resolve(_ context.Context, _ string) ([]geocode.Result, error) {
	return f.results, f.err
}

// fakeUploader stamps URLs with a signing sequence number so a URL issued
// on read can be told apart from the one returned at upload.
type fakeUploader struct {
	err     error
	urlErr  error
	puts    []string
	deletes []string
	signed  int
}

func (f *fakeUploader) Put(ctx context.Context, key string, _ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.puts = append(f.puts, key)
	return f.URL(ctx, key)
}

func (f *fakeUploader) URL(_ context.Context, key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	f.signed++
	return fmt.Sprintf("https://cdn.example.com/%s?sig=%d", key, f.signed), nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

type profileEnv struct {
	svc      *Service
	store    *fakeStore
	geocoder *fakeGeocoder
	uploader *fakeUploader
	user     *User
}

func newProfileEnv() *profileEnv {
	u := &User{ID: uuid.New(), Name: "Sari", Email: "sari@example.com"}
	env := &profileEnv{
		store: &fakeStore{users: map[uuid.UUID]*User{u.ID: u}},
		geocoder: &fakeGeocoder{results: []geocode.Result{
			{Address: "Jl. Malioboro, Yogyakarta, Indonesia", Latitude: -7.7926, Longitude: 110.3658},
		}},
		uploader: &fakeUploader{},
		user:     u,
	}
	logger := logging.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	env.svc = NewService(env.store, env.geocoder, env.uploader, logger)
	return env
}

func TestService_UpdateProfile(t *testing.T) {
	env := newProfileEnv()

	u, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileInput{
		Location: " malioboro ",
		Photo:    jpegBytes,
	})
	require.NoError(t, err)

	require.NotNil(t, u.Location)
	assert.Equal(t, "Jl. Malioboro, Yogyakarta, Indonesia", *u.Location)
	require.NotNil(t, u.Latitude)
	assert.InDelta(t, -7.7926, *u.Latitude, 1e-9)
	require.Len(t, env.uploader.puts, 1)
	assert.True(t, strings.HasPrefix(env.uploader.puts[0], "profilePhoto/"))
	assert.True(t, strings.HasSuffix(env.uploader.puts[0], ".jpg"))
	require.NotNil(t, u.PhotoURL)
	assert.True(t, strings.HasPrefix(*u.PhotoURL, "https://cdn.example.com/"+env.uploader.puts[0]+"?sig="), *u.PhotoURL)
	require.NotNil(t, env.store.users[env.user.ID].PhotoKey)
	assert.Equal(t, env.uploader.puts[0], *env.store.users[env.user.ID].PhotoKey)
}

func TestService_UpdateProfilePNGKeepsExtension(t *testing.T) {
	env := newProfileEnv()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	_, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileInput{Location: "x", Photo: png})
	require.NoError(t, err)
	require.Len(t, env.uploader.puts, 1)
	assert.True(t, strings.HasSuffix(env.uploader.puts[0], ".png"), env.uploader.puts[0])
}

func TestService_ProfileIssuesPhotoURLOnEachRead(t *testing.T) {
	env := newProfileEnv()
	stale, key := "https://cdn.example.com/profilePhoto/a.jpg?sig=expired", "profilePhoto/a.jpg"
	env.user.PhotoURL, env.user.PhotoKey = &stale, &key

	first, err := env.svc.Profile(context.Background(), env.user.ID)
	require.NoError(t, err)
	second, err := env.svc.Profile(context.Background(), env.user.ID)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/profilePhoto/a.jpg?sig=1", *first.PhotoURL)
	assert.Equal(t, "https://cdn.example.com/profilePhoto/a.jpg?sig=2", *second.PhotoURL)
	assert.Equal(t, stale, *env.store.users[env.user.ID].PhotoURL)
}

func TestService_ProfileKeepsStoredURLWhenSigningFails(t *testing.T) {
	env := newProfileEnv()
	stored, key := "https://cdn.example.com/profilePhoto/a.jpg", "profilePhoto/a.jpg"
	env.user.PhotoURL, env.user.PhotoKey = &stored, &key
	env.uploader.urlErr = errors.New("no credentials")

	u, err := env.svc.Profile(context.Background(), env.user.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, *u.PhotoURL)
}

func TestService_UpdateProfileWithoutPhoto(t *testing.T) {
	env := newProfileEnv()

	u, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileInput{Location: "malioboro"})
	require.NoError(t, err)
	assert.Nil(t, u.PhotoURL)
	assert.Empty(t, env.uploader.puts)
}

func TestService_UpdateProfileErrors(t *testing.T) {
	t.Run("missing location", func(t *testing.T) {
		env := newProfileEnv()
		_, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileInput{Location: "  "})
		var verrs httputil.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "location", verrs[0].Field)
	})

	t.Run("photo is not an image", func(t *testing.T) {
		env := newProfileEnv()
		_, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileInput{Location: "x", Photo: []byte("plain text")})
		var verrs httputil.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "fotoProfile", verrs[0].Field)
	})

	t.Run("unresolvable location", func(t *testing.T) {
		env := newProfileEnv()
		env.geocoder.results = nil
		_, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileInput{Location: "nowhere"})
		assert.ErrorIs(t, err, ErrInvalidLocation)
	})

	t.Run("geocoder down", func(t *testing.T) {
		env := newProfileEnv()
		env.geocoder.err = errors.New("timeout")
		_, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileInput{Location: "x"})
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("failed write removes the photo", func(t *testing.T) {
		env := newProfileEnv()
		env.store.updateErr = errors.New("db down")
		_, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileInput{Location: "x", Photo: jpegBytes})
		require.Error(t, err)
		assert.Equal(t, env.uploader.puts, env.uploader.deletes)
	})
}

func authed(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(identity.WithIdentity(req.Context(), identity.Identity{UserID: userID}))
}

func profileForm(t *testing.T, location string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if location != "" {
		require.NoError(t, mw.WriteField("location", location))
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("fotoProfile", "me.jpg")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandler_GetProfile(t *testing.T) {
	env := newProfileEnv()
	h := NewHandler(env.svc, 1<<20)

	rec := httptest.NewRecorder()
	h.GetProfile(rec, authed(httptest.NewRequest(http.MethodGet, "/userProfile", nil), env.user.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"sari@example.com"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = httptest.NewRecorder()
	h.GetProfile(rec, authed(httptest.NewRequest(http.MethodGet, "/userProfile", nil), uuid.New()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.GetProfile(rec, httptest.NewRequest(http.MethodGet, "/userProfile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_UpdateProfile(t *testing.T) {
	tests := []struct {
		name     string
		location string
		photo    []byte
		geocoded bool
		status   int
	}{
		{"location and photo", "malioboro", jpegBytes, true, http.StatusOK},
		{"location only", "malioboro", nil, true, http.StatusOK},
		{"missing location", "", jpegBytes, true, http.StatusBadRequest},
		{"unresolvable location", "nowhere", nil, false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newProfileEnv()
			if !tt.geocoded {
				env.geocoder.results = nil
			}
			h := NewHandler(env.svc, 1<<20)

			body, contentType := profileForm(t, tt.location, tt.photo)
			req := httptest.NewRequest(http.MethodPut, "/userProfile", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			h.UpdateProfile(rec, authed(req, env.user.ID))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandler_UpdateProfileNotMultipart(t *testing.T) {
	env := newProfileEnv()
	h := NewHandler(env.svc, 1<<20)

	req := httptest.NewRequest(http.MethodPut, "/userProfile", strings.NewReader("location=malioboro"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, authed(req, env.user.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.uploader.puts)

	req = httptest.NewRequest(http.MethodPut, "/userProfile", strings.NewReader(`{"location":"malioboro"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.UpdateProfile(rec, authed(req, env.user.ID))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, httputil.CodeValidationFailed, resp.Code)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "location", resp.Errors[0].Field)
}

package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/geocode"
	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/internal/storage"
)

var (
	ErrInvalidLocation = errors.New("invalid location")
	ErrUpstream        = errors.New("profile dependency failed")
)

// Store is the identity store used by the profile service
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, p ProfileUpdate) error
}

// ProfileInput is the profile form. Photo is optional.
type ProfileInput struct {
	Location string
	Photo    []byte
}

// Service handles profile reads and updates
type Service struct {
	users    Store
	geocoder geocode.Geocoder
	uploader storage.Uploader
	logger   *logging.Logger
}

func NewService(users Store, geocoder geocode.Geocoder, uploader storage.Uploader, logger *logging.Logger) *Service {
	return &Service{
		users:    users,
		geocoder: geocoder,
		uploader: uploader,
		logger:   logger,
	}
}

// Profile returns the user record with a photo URL issued at read time
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.withPhotoURL(ctx, u)
	return u, nil
}

// withPhotoURL swaps the stored photo URL, which may be a lapsed presigned
// URL, for a fresh one. Records without a key keep what they have.
func (s *Service) withPhotoURL(ctx context.Context, u *User) {
	if u.PhotoKey == nil || *u.PhotoKey == "" {
		return
	}
	url, err := s.uploader.URL(ctx, *u.PhotoKey)
	if err != nil {
		s.logger.Warn("failed to issue profile photo url", "user_id", u.ID, "key", *u.PhotoKey, "error", err.Error())
		return
	}
	u.PhotoURL = &url
}

// UpdateProfile resolves the new location and stores the optional photo
// before writing either to the user record.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*User, error) {
	location := strings.TrimSpace(in.Location)

	var errs httputil.ValidationErrors
	errs.Required("location", location)
	var mediaType, ext string
	if len(in.Photo) > 0 {
		mediaType = http.DetectContentType(in.Photo)
		var ok bool
		if ext, ok = storage.ImageExtension(mediaType); !ok {
			errs.Add("fotoProfile", "fotoProfile must be a JPEG, PNG or WebP image")
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	results, err := s.geocoder.Resolve(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(results) == 0 {
		return nil, ErrInvalidLocation
	}

	update := ProfileUpdate{
		Location:  results[0].Address,
		Latitude:  &results[0].Latitude,
		Longitude: &results[0].Longitude,
	}

	var key string
	if len(in.Photo) > 0 {
		key = storage.NewObjectKey(storage.ProfilePhotoFolder, ext)
		url, err := s.uploader.Put(ctx, key, in.Photo, mediaType)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		update.PhotoURL = &url
		update.PhotoKey = &key
	}

	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		if key != "" {
			if delErr := s.uploader.Delete(ctx, key); delErr != nil {
				s.logger.Warn("failed to remove orphaned profile photo", "key", key, "error", delErr.Error())
			}
		}
		return nil, err
	}

	return s.Profile(ctx, userID)
}

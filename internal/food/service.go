package food

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/category"
	"github.com/redmonkez12/wasteless-api/internal/geocode"
	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/internal/metrics"
	"github.com/redmonkez12/wasteless-api/internal/recommend"
	"github.com/redmonkez12/wasteless-api/internal/storage"
	"github.com/redmonkez12/wasteless-api/internal/user"
)

var (
	ErrNotFound             = errors.New("food not found")
	ErrInvalidLocation      = errors.New("invalid location")
	ErrGeocoderFailed       = errors.New("failed to resolve location")
	ErrUploadFailed         = errors.New("failed to upload photo")
	ErrRecommendationFailed = errors.New("failed to get recommendation")
	ErrInvalidSearchQuery   = errors.New("search query is required")
)

const (
	// RecommendationPageSize caps the listings returned for a predicted category.
	RecommendationPageSize = 4

	// DefaultPageSize applies to the unfiltered list and to search.
	DefaultPageSize = 50
)

// Accepted expiry layouts. The first is what the mobile client sends.
var expiryLayouts = []string{"02-01-2006", "2006-01-02"}

// Store is the listing persistence used by the pipeline.
type Store interface {
	Create(ctx context.Context, f *Food) error
	GetByID(ctx context.Context, id uuid.UUID) (*Food, error)
	ListByCategory(ctx context.Context, c category.Category, limit int, now time.Time) ([]Food, error)
	ListAll(ctx context.Context, limit, offset int, now time.Time) ([]Food, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]Food, error)
	Search(ctx context.Context, query string, limit int, now time.Time) ([]Food, error)
	RequestedCategories(ctx context.Context, userID uuid.UUID) ([]string, error)
	DeleteExpired(ctx context.Context, before time.Time) ([]string, error)
}

// UserStore is the part of the identity store the pipeline touches.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateDonationHistory(ctx context.Context, userID uuid.UUID, history string) error
}

// Service orchestrates donation posting and listing retrieval
type Service struct {
	foods       Store
	users       UserStore
	geocoder    geocode.Geocoder
	uploader    storage.Uploader
	recommender recommend.Recommender
	logger      *logging.Logger
	now         func() time.Time
}

func NewService(
	foods Store,
	users UserStore,
	geocoder geocode.Geocoder,
	uploader storage.Uploader,
	recommender recommend.Recommender,
	logger *logging.Logger,
) *Service {
	return &Service{
		foods:       foods,
		users:       users,
		geocoder:    geocoder,
		uploader:    uploader,
		recommender: recommender,
		logger:      logger,
		now:         time.Now,
	}
}

type validDonation struct {
	quantity  int
	expiredAt time.Time
	foodType  category.Category
	mediaType string
	photoExt  string
}

// Create runs the donation pipeline: validate, geocode, upload, persist,
// append to the owner's history. The first failing stage decides the error.
// Work issued on behalf of the donor is not aborted if the client goes away.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, d Donation) (*Food, error) {
	v, err := validateDonation(d)
	if err != nil {
		metrics.RecordDonationFailure("validation")
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	results, err := s.geocoder.Resolve(ctx, d.Location)
	if err != nil {
		metrics.RecordDonationFailure("geocode")
		return nil, fmt.Errorf("%w: %w", ErrGeocoderFailed, err)
	}
	if len(results) == 0 {
		metrics.RecordDonationFailure("geocode")
		return nil, ErrInvalidLocation
	}
	place := results[0]

	key := storage.NewObjectKey(storage.FoodDonationFolder, v.photoExt)
	photoURL, err := s.uploader.Put(ctx, key, d.Photo, v.mediaType)
	if err != nil {
		metrics.RecordDonationFailure("upload")
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	f := &Food{
		ID:          uuid.New(),
		PhotoURL:    photoURL,
		PhotoKey:    key,
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Quantity:    v.quantity,
		Location:    place.Address,
		Latitude:    place.Latitude,
		Longitude:   place.Longitude,
		ExpiredAt:   v.expiredAt,
		FoodType:    v.foodType,
		UserID:      ownerID,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.foods.Create(ctx, f); err != nil {
		metrics.RecordDonationFailure("persist")
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned photo", "key", key, "error", delErr.Error())
		}
		return nil, err
	}
	metrics.RecordDonationPosted()

	if err := s.appendHistory(ctx, ownerID, f.Name); err != nil {
		metrics.RecordDonationFailure("history")
		s.logger.Error("listing created but donation history not updated",
			"food_id", f.ID,
			"user_id", ownerID,
			"error", err.Error(),
		)
	}

	return f, nil
}

func (s *Service) appendHistory(ctx context.Context, userID uuid.UUID, name string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	line := fmt.Sprintf("%s - %s", name, s.now().UTC().Format(time.RFC3339))
	history := line
	if u.DonationHistory != "" {
		history = u.DonationHistory + "\n" + line
	}

	return s.users.UpdateDonationHistory(ctx, userID, history)
}

// validateDonation checks every field before any external call and reports
// all problems at once.
func validateDonation(d Donation) (validDonation, error) {
	var v validDonation
	var errs httputil.ValidationErrors

	errs.Required("foodName", d.Name)
	errs.Required("description", d.Description)
	errs.Required("quantity", d.Quantity)
	errs.Required("location", d.Location)
	errs.Required("expiredAt", d.ExpiredAt)
	errs.Required("foodType", d.FoodType)

	if len(d.Photo) == 0 {
		errs.Add("fotoMakanan", "fotoMakanan is required")
	} else {
		v.mediaType = http.DetectContentType(d.Photo)
		ext, ok := storage.ImageExtension(v.mediaType)
		if !ok {
			errs.Add("fotoMakanan", "fotoMakanan must be a JPEG, PNG or WebP image")
		}
		v.photoExt = ext
	}

	if q := strings.TrimSpace(d.Quantity); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			errs.Add("quantity", "quantity must be a non-negative integer")
		}
		v.quantity = n
	}

	if e := strings.TrimSpace(d.ExpiredAt); e != "" {
		t, err := parseExpiry(e)
		if err != nil {
			errs.Add("expiredAt", "expiredAt must be in DD-MM-YYYY format")
		}
		v.expiredAt = t
	}

	if t := strings.TrimSpace(d.FoodType); t != "" {
		c, ok := category.Parse(t)
		if !ok {
			errs.Add("foodType", "unknown foodType %q", t)
		}
		v.foodType = c
	}

	return v, errs.Err()
}

func parseExpiry(s string) (time.Time, error) {
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Recommend builds the requester's category histogram, asks the
// recommendation service for a category and returns listings of it.
func (s *Service) Recommend(ctx context.Context, userID uuid.UUID) (*Recommendation, error) {
	tags, err := s.foods.RequestedCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	hist := category.NewHistogram(tags)

	c, err := s.recommender.Predict(ctx, hist)
	if err != nil {
		metrics.RecordRecommendation("error")
		return nil, fmt.Errorf("%w: %w", ErrRecommendationFailed, err)
	}
	metrics.RecordRecommendation("ok")

	foods, err := s.foods.ListByCategory(ctx, c, RecommendationPageSize, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.withPhotoURLs(ctx, foods)

	s.logger.Debug("recommendation served",
		"user_id", userID,
		"interactions", hist.Total(),
		"category", c,
		"count", len(foods),
	)

	return &Recommendation{Category: c, Foods: foods}, nil
}

// List returns listings that have not expired yet, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Food, error) {
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	foods, err := s.foods.ListAll(ctx, limit, offset, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return s.withPhotoURLs(ctx, foods), nil
}

// ListByOwner returns everything a donor posted, expired or not.
func (s *Service) ListByOwner(ctx context.Context, userID uuid.UUID) ([]Food, error) {
	foods, err := s.foods.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withPhotoURLs(ctx, foods), nil
}

// Search matches unexpired listings by name or description.
func (s *Service) Search(ctx context.Context, query string) ([]Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidSearchQuery
	}
	foods, err := s.foods.Search(ctx, query, DefaultPageSize, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return s.withPhotoURLs(ctx, foods), nil
}

func (s *Service) Detail(ctx context.Context, id uuid.UUID) (*Food, error) {
	f, err := s.foods.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.withPhotoURL(ctx, f)
	return f, nil
}

// withPhotoURL replaces the stored photo URL, which may be a presigned URL
// past its expiry, with one issued now from the photo key. On failure the
// stored URL is served as is.
func (s *Service) withPhotoURL(ctx context.Context, f *Food) {
	if f.PhotoKey == "" {
		return
	}
	u, err := s.uploader.URL(ctx, f.PhotoKey)
	if err != nil {
		s.logger.Warn("failed to issue photo url", "food_id", f.ID, "key", f.PhotoKey, "error", err.Error())
		return
	}
	f.PhotoURL = u
}

func (s *Service) withPhotoURLs(ctx context.Context, foods []Food) []Food {
	for i := range foods {
		s.withPhotoURL(ctx, &foods[i])
	}
	return foods
}

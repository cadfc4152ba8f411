package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/wasteless-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrDuplicateName  = errors.New("name already exists")
)

// Repository handles user data persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, nu NewUser) (*User, error) {
	dbUser := &database.User{
		ID:           uuid.New(),
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Gender:       optional(nu.Gender),
		Address:      optional(nu.Address),
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "email = ?", email)
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByName retrieves a user by display name
func (r *Repository) GetByName(ctx context.Context, name string) (*User, error) {
	return r.getOne(ctx, "name = ?", name)
}

func (r *Repository) getOne(ctx context.Context, where string, arg any) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where(where, arg).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdateDonationHistory overwrites the donation history log of a user
func (r *Repository) UpdateDonationHistory(ctx context.Context, userID uuid.UUID, history string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("donation_history = ?", history).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update donation history: %w", err)
	}

	return requireAffected(result)
}

// UpdateProfile writes the location and, when present, coordinates and photo
func (r *Repository) UpdateProfile(ctx context.Context, userID uuid.UUID, p ProfileUpdate) error {
	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("location = ?", p.Location).
		Set("updated_at = NOW()").
		Where("id = ?", userID)

	if p.Latitude != nil && p.Longitude != nil {
		q = q.Set("latitude = ?", *p.Latitude).Set("longitude = ?", *p.Longitude)
	}
	if p.PhotoURL != nil {
		q = q.Set("photo_url = ?", *p.PhotoURL)
	}
	if p.PhotoKey != nil {
		q = q.Set("photo_key = ?", *p.PhotoKey)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:              dbu.ID,
		Name:            dbu.Name,
		Email:           dbu.Email,
		PasswordHash:    dbu.PasswordHash,
		Gender:          dbu.Gender,
		Address:         dbu.Address,
		Location:        dbu.Location,
		Latitude:        dbu.Latitude,
		Longitude:       dbu.Longitude,
		PhotoURL:        dbu.PhotoURL,
		PhotoKey:        dbu.PhotoKey,
		DonationHistory: dbu.DonationHistory,
		CreatedAt:       dbu.CreatedAt,
		UpdatedAt:       dbu.UpdatedAt,
	}
}

package food

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/wasteless-api/internal/category"
	"github.com/redmonkez12/wasteless-api/internal/database"
)

// Repository handles listing persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a listing. The caller assigns the ID.
func (r *Repository) Create(ctx context.Context, f *Food) error {
	dbFood := mapModelToDBFood(f)

	if _, err := r.db.NewInsert().Model(dbFood).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create food: %w", err)
	}

	return nil
}

// GetByID retrieves a listing by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Food, error) {
	dbFood := new(database.Food)
	err := r.db.NewSelect().
		Model(dbFood).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get food by id: %w", err)
	}

	f := mapDBFoodToModel(dbFood)
	return &f, nil
}

// ListByCategory returns up to limit unexpired listings of one category. No
// ORDER BY: rows come back in whatever order the storage engine yields them.
func (r *Repository) ListByCategory(ctx context.Context, c category.Category, limit int, now time.Time) ([]Food, error) {
	var rows []database.Food
	err := r.db.NewSelect().
		Model(&rows).
		Where("food_type = ?", string(c)).
		Where("expired_at >= ?", now).
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list food by category: %w", err)
	}

	return mapDBFoods(rows), nil
}

// ListAll returns listings expiring at or after now, newest first
func (r *Repository) ListAll(ctx context.Context, limit, offset int, now time.Time) ([]Food, error) {
	var rows []database.Food
	err := r.db.NewSelect().
		Model(&rows).
		Where("expired_at >= ?", now).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list food: %w", err)
	}

	return mapDBFoods(rows), nil
}

// ListByOwner returns every listing posted by a user, newest first
func (r *Repository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]Food, error) {
	var rows []database.Food
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list food by owner: %w", err)
	}

	return mapDBFoods(rows), nil
}

// Search matches the query against name and description of unexpired
// listings, case-insensitively
func (r *Repository) Search(ctx context.Context, query string, limit int, now time.Time) ([]Food, error) {
	pattern := "%" + escapeLike(query) + "%"

	var rows []database.Food
	err := r.db.NewSelect().
		Model(&rows).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("food_name ILIKE ?", pattern).
				WhereOr("description ILIKE ?", pattern)
		}).
		Where("expired_at >= ?", now).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to search food: %w", err)
	}

	return mapDBFoods(rows), nil
}

// RequestedCategories returns the category of every listing the user has
// requested, one entry per ledger row. Ledger rows whose listing is gone are skipped.
func (r *Repository) RequestedCategories(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var types []string
	err := r.db.NewSelect().
		TableExpr("histories AS h").
		ColumnExpr("f.food_type").
		Join("JOIN foods AS f ON f.id = h.food_id").
		Where("h.requester_id = ?", userID).
		Scan(ctx, &types)

	if err != nil {
		return nil, fmt.Errorf("failed to read requested categories: %w", err)
	}

	return types, nil
}

// DeleteExpired removes every listing whose expiry is strictly before the
// cutoff and returns the photo keys of the removed rows.
func (r *Repository) DeleteExpired(ctx context.Context, before time.Time) ([]string, error) {
	var keys []string
	_, err := r.db.NewDelete().
		Model((*database.Food)(nil)).
		Where("expired_at < ?", before).
		Returning("photo_key").
		Exec(ctx, &keys)

	if err != nil {
		return nil, fmt.Errorf("failed to delete expired food: %w", err)
	}

	return keys, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func mapModelToDBFood(f *Food) *database.Food {
	return &database.Food{
		ID:          f.ID,
		PhotoURL:    f.PhotoURL,
		PhotoKey:    f.PhotoKey,
		Name:        f.Name,
		Description: f.Description,
		Quantity:    f.Quantity,
		Location:    f.Location,
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
		ExpiredAt:   f.ExpiredAt,
		FoodType:    string(f.FoodType),
		UserID:      f.UserID,
		CreatedAt:   f.CreatedAt,
	}
}

func mapDBFoods(rows []database.Food) []Food {
	out := make([]Food, 0, len(rows))
	for i := range rows {
		out = append(out, mapDBFoodToModel(&rows[i]))
	}
	return out
}

// mapDBFoodToModel converts database model to domain model
func mapDBFoodToModel(dbf *database.Food) Food {
	return Food{
		ID:          dbf.ID,
		PhotoURL:    dbf.PhotoURL,
		PhotoKey:    dbf.PhotoKey,
		Name:        dbf.Name,
		Description: dbf.Description,
		Quantity:    dbf.Quantity,
		Location:    dbf.Location,
		Latitude:    dbf.Latitude,
		Longitude:   dbf.Longitude,
		ExpiredAt:   dbf.ExpiredAt,
		FoodType:    category.Category(dbf.FoodType),
		UserID:      dbf.UserID,
		CreatedAt:   dbf.CreatedAt,
	}
}

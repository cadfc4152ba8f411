package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/wasteless-api/internal/database"
)

// Repository handles request-ledger persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a pending entry. A second open request by the same requester
// for the same listing violates idx_histories_pending_request and yields
// ErrAlreadyRequested.
func (r *Repository) Create(ctx context.Context, e *Entry) error {
	dbEntry := &database.History{
		ID:          e.ID,
		RequesterID: e.RequesterID,
		FoodID:      e.FoodID,
		DonorID:     e.DonorID,
		Fulfilled:   e.Fulfilled,
		CreatedAt:   e.CreatedAt,
	}

	if _, err := r.db.NewInsert().Model(dbEntry).Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyRequested
		}
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	return nil
}

// GetByID retrieves an entry by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	dbEntry := new(database.History)
	err := r.db.NewSelect().
		Model(dbEntry).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}

	e := mapDBEntryToModel(dbEntry)
	return &e, nil
}

// HasPending reports whether the requester already has an open request for the listing
func (r *Repository) HasPending(ctx context.Context, requesterID, foodID uuid.UUID) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.History)(nil)).
		Where("requester_id = ?", requesterID).
		Where("food_id = ?", foodID).
		Where("fulfilled = FALSE").
		Exists(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}

	return exists, nil
}

// ListForUser returns the entries where the user is requester, donor, or either
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, role Role) ([]Entry, error) {
	var rows []database.History
	q := r.db.NewSelect().Model(&rows)

	switch role {
	case RoleRequester:
		q = q.Where("requester_id = ?", userID)
	case RoleDonor:
		q = q.Where("donor_id = ?", userID)
	default:
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("requester_id = ?", userID).WhereOr("donor_id = ?", userID)
		})
	}

	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	out := make([]Entry, 0, len(rows))
	for i := range rows {
		out = append(out, mapDBEntryToModel(&rows[i]))
	}
	return out, nil
}

// MarkFulfilled flips a pending entry to fulfilled. The status only moves
// once: an entry that is already fulfilled yields ErrAlreadyFulfilled.
func (r *Repository) MarkFulfilled(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.History)(nil)).
		Set("fulfilled = TRUE").
		Set("fulfilled_at = ?", at).
		Where("id = ?", id).
		Where("fulfilled = FALSE").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark history fulfilled: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAlreadyFulfilled
	}

	return nil
}

func mapDBEntryToModel(dbe *database.History) Entry {
	return Entry{
		ID:          dbe.ID,
		RequesterID: dbe.RequesterID,
		FoodID:      dbe.FoodID,
		DonorID:     dbe.DonorID,
		Fulfilled:   dbe.Fulfilled,
		CreatedAt:   dbe.CreatedAt,
		FulfilledAt: dbe.FulfilledAt,
	}
}

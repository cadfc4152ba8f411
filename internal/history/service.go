package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/email"
	"github.com/redmonkez12/wasteless-api/internal/food"
	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/internal/user"
)

var (
	ErrNotFound         = errors.New("history entry not found")
	ErrFoodNotFound     = errors.New("food not found")
	ErrOwnListing       = errors.New("cannot request your own food")
	ErrAlreadyRequested = errors.New("food already requested")
	ErrNotDonor         = errors.New("only the donor can fulfill this request")
	ErrAlreadyFulfilled = errors.New("request already fulfilled")
)

// Store is the request-ledger persistence used by the service.
type Store interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	HasPending(ctx context.Context, requesterID, foodID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID, role Role) ([]Entry, error)
	MarkFulfilled(ctx context.Context, id uuid.UUID, at time.Time) error
}

type FoodLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*food.Food, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Notifier delivers ledger events by email
type Notifier interface {
	SendRequestNotification(ctx context.Context, n email.Notice) error
	SendFulfilledNotification(ctx context.Context, n email.Notice) error
}

// Service handles the request/fulfillment workflow
type Service struct {
	entries  Store
	foods    FoodLookup
	users    UserLookup
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewService(entries Store, foods FoodLookup, users UserLookup, notifier Notifier, logger *logging.Logger) *Service {
	return &Service{
		entries:  entries,
		foods:    foods,
		users:    users,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Request records the requester's interest in a listing. The donor is taken
// from the listing owner.
func (s *Service) Request(ctx context.Context, requesterID, foodID uuid.UUID) (*Entry, error) {
	f, err := s.foods.GetByID(ctx, foodID)
	if err != nil {
		if errors.Is(err, food.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}

	if f.UserID == requesterID {
		return nil, ErrOwnListing
	}

	pending, err := s.entries.HasPending(ctx, requesterID, foodID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrAlreadyRequested
	}

	e := &Entry{
		ID:          uuid.New(),
		RequesterID: requesterID,
		FoodID:      foodID,
		DonorID:     f.UserID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, err
	}

	s.notify(ctx, f.UserID, requesterID, f.Name, s.notifier.SendRequestNotification)

	return e, nil
}

// List returns the caller's ledger entries, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, role Role) ([]Entry, error) {
	return s.entries.ListForUser(ctx, userID, role)
}

// Fulfill marks an entry as handed over. Only the donor may do it, once.
func (s *Service) Fulfill(ctx context.Context, actorID, entryID uuid.UUID) (*Entry, error) {
	e, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if e.DonorID != actorID {
		return nil, ErrNotDonor
	}
	if e.Fulfilled {
		return nil, ErrAlreadyFulfilled
	}

	at := s.now().UTC()
	if err := s.entries.MarkFulfilled(ctx, entryID, at); err != nil {
		return nil, err
	}
	e.Fulfilled = true
	e.FulfilledAt = &at

	foodName := "your food"
	if f, err := s.foods.GetByID(ctx, e.FoodID); err == nil {
		foodName = f.Name
	}
	s.notify(ctx, e.RequesterID, e.DonorID, foodName, s.notifier.SendFulfilledNotification)

	return e, nil
}

// notify emails recipientID about an event caused by otherID. Delivery runs in
// the background and never fails the request.
func (s *Service) notify(ctx context.Context, recipientID, otherID uuid.UUID, foodName string, send func(context.Context, email.Notice) error) {
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		recipient, err := s.users.GetByID(ctx, recipientID)
		if err != nil {
			s.logger.Warn("notification skipped: recipient lookup failed", "user_id", recipientID, "error", err.Error())
			return
		}
		other, err := s.users.GetByID(ctx, otherID)
		if err != nil {
			s.logger.Warn("notification skipped: user lookup failed", "user_id", otherID, "error", err.Error())
			return
		}

		n := email.Notice{
			To:            recipient.Email,
			RecipientName: recipient.Name,
			OtherName:     other.Name,
			FoodName:      foodName,
		}
		if err := send(ctx, n); err != nil {
			s.logger.Warn("failed to send notification", "email", recipient.Email, "error", err.Error())
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

package history

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one user's request for one listing, tracked until the donor hands it over.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	RequesterID uuid.UUID  `json:"requesterId"`
	FoodID      uuid.UUID  `json:"foodId"`
	DonorID     uuid.UUID  `json:"donorId"`
	Fulfilled   bool       `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	FulfilledAt *time.Time `json:"fulfilledAt,omitempty"`
}

// Role filters ledger entries by the caller's side of the exchange.
type Role string

const (
	RoleAny       Role = ""
	RoleRequester Role = "requester"
	RoleDonor     Role = "donor"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAny, RoleRequester, RoleDonor:
		return r, true
	}
	return "", false
}

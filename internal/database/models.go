package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persisted identity record.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	Name            string    `bun:"name,notnull"`
	Email           string    `bun:"email,notnull,unique"`
	PasswordHash    string    `bun:"password_hash,notnull"`
	Gender          *string   `bun:"gender"`
	Address         *string   `bun:"address"`
	Location        *string   `bun:"location"`
	Latitude        *float64  `bun:"latitude"`
	Longitude       *float64  `bun:"longitude"`
	PhotoURL        *string   `bun:"photo_url"`
	PhotoKey        *string   `bun:"photo_key"`
	DonationHistory string    `bun:"donation_history,notnull,default:''"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Food is a persisted donation listing.
type Food struct {
	bun.BaseModel `bun:"table:foods,alias:f"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	PhotoURL    string    `bun:"photo_url,notnull"`
	PhotoKey    string    `bun:"photo_key,notnull"`
	Name        string    `bun:"food_name,notnull"`
	Description string    `bun:"description,notnull"`
	Quantity    int       `bun:"quantity,notnull"`
	Location    string    `bun:"location,notnull"`
	Latitude    float64   `bun:"latitude,notnull"`
	Longitude   float64   `bun:"longitude,notnull"`
	ExpiredAt   time.Time `bun:"expired_at,notnull"`
	FoodType    string    `bun:"food_type,notnull"`
	UserID      uuid.UUID `bun:"user_id,type:uuid,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// History is a request-ledger entry linking a requester, a listing and its donor.
type History struct {
	bun.BaseModel `bun:"table:histories,alias:h"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid"`
	RequesterID uuid.UUID  `bun:"requester_id,type:uuid,notnull"`
	FoodID      uuid.UUID  `bun:"food_id,type:uuid,notnull"`
	DonorID     uuid.UUID  `bun:"donor_id,type:uuid,notnull"`
	Fulfilled   bool       `bun:"fulfilled,notnull,default:false"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	FulfilledAt *time.Time `bun:"fulfilled_at"`
}

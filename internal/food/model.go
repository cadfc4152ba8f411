package food

import (
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/category"
)

// Food is a donation listing.
type Food struct {
	ID          uuid.UUID         `json:"foodId"`
	PhotoURL    string            `json:"fotoMakanan"`
	PhotoKey    string            `json:"-"`
	Name        string            `json:"foodName"`
	Description string            `json:"description"`
	Quantity    int               `json:"quantity"`
	Location    string            `json:"location"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	ExpiredAt   time.Time         `json:"expiredAt"`
	FoodType    category.Category `json:"foodType"`
	UserID      uuid.UUID         `json:"userId"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Donation is the raw input of the posting pipeline, as submitted by the donor.
type Donation struct {
	Name        string
	Description string
	Quantity    string
	Location    string
	ExpiredAt   string
	FoodType    string
	Photo       []byte
}

// Recommendation is the outcome of preference-aware retrieval.
type Recommendation struct {
	Category category.Category
	Foods    []Food
}

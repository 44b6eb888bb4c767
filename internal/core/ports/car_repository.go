package ports

import (
	"context"

	"github.com/rentaride/rental-system/internal/core/domain"
)

// CarPatch carries the replaceable car fields. Owner is immutable and is
// deliberately absent. AddMedia entries are appended to the existing media
// list rather than replacing it.
type CarPatch struct {
	Make               string
	Model              string
	Capacity           int
	YearOfManufacture  string
	RegistrationNumber string
	Condition          string
	Rate               float64
	Plan               string
	Type               string
	Location           string
	MaxDuration        int
	Description        string
	Terms              string
	AddMedia           []domain.Media
}

// CarRepository persists car aggregates.
type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) (*domain.Car, error)
	FindByID(ctx context.Context, id string) (*domain.Car, error)
	// FindByIDAndOwner returns domain.ErrCarNotFound both when the car is
	// absent and when it belongs to a different owner.
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Car, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Car, error)
	FindAvailable(ctx context.Context) ([]*domain.Car, error)
	Update(ctx context.Context, id, ownerID string, patch CarPatch) (*domain.Car, error)
	Delete(ctx context.Context, id string) error

	SetAvailability(ctx context.Context, id, ownerID string, availability domain.Availability) (*domain.Car, error)

	AppendReservation(ctx context.Context, carID, reservationID string) error
	RemoveReservation(ctx context.Context, carID, reservationID string) error

	// ReplaceMediaURL swaps one media entry's URL in place. A missing oldURL
	// is a no-op, which makes the compression callback idempotent.
	ReplaceMediaURL(ctx context.Context, carID, oldURL, newURL string) error
}

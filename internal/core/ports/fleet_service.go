package ports

import (
	"context"

	"github.com/rentaride/rental-system/internal/core/domain"
)

// AddCarInput carries everything needed to list a new car. OwnerID must name
// a renter profile.
type AddCarInput struct {
	OwnerID            string
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
	Media              []domain.Media
}

// FleetService keeps the User↔Car ownership graph consistent through
// multi-step, non-transactional writes.
type FleetService interface {
	// AddCar inserts the car row, then appends its id to the owner's car
	// list. A failed append leaves an orphan car row behind; reconciliation
	// is an offline concern, not an inline one.
	AddCar(ctx context.Context, input AddCarInput) (*domain.Car, error)

	UpdateCar(ctx context.Context, carID, ownerID string, patch CarPatch) (*domain.Car, error)

	// DeleteCar removes the owner's back-reference before the car row so a
	// concurrent reader never follows a car reference into a missing
	// document. Media cleanup is fired, not awaited.
	DeleteCar(ctx context.Context, carID, ownerID string) error

	ChangeAvailability(ctx context.Context, carID, ownerID string, availability domain.Availability) (*domain.Car, error)
	FindAvailableCars(ctx context.Context) ([]*domain.Car, error)
	RenterCars(ctx context.Context, ownerID string) ([]*domain.Car, error)
	CarHistory(ctx context.Context, carID, ownerID string) ([]*domain.Reservation, error)

	// UpdateCarMedia is the idempotent completion callback from the media
	// pipeline; replaying it with a stale oldURL is a no-op.
	UpdateCarMedia(ctx context.Context, carID, oldURL, newURL string) error
}

package ports

import (
	"context"
	"time"

	"github.com/rentaride/rental-system/internal/core/domain"
)

// CreateReservationInput carries a booking request. The renter reference is
// not accepted from the caller; it is copied from the car's owner.
type CreateReservationInput struct {
	CustomerID string
	CarID      string
	StartDate  time.Time
	ReturnDate time.Time
}

// ReservationService governs the reservation lifecycle and the projections
// it maintains on profiles and cars.
type ReservationService interface {
	Create(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)

	// UpdateStatus applies the state machine; a transition out of a
	// terminal status fails with domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, reservationID string, status domain.ReservationStatus) (*domain.Reservation, error)

	Update(ctx context.Context, reservationID string, patch ReservationPatch) (*domain.Reservation, error)

	// Delete is the admin cascade: unlink both sides, then drop the row.
	Delete(ctx context.Context, reservationID string) error

	// CustomerDelete cancels the reservation and unlinks the customer side
	// only. The caller must be the reservation's customer.
	CustomerDelete(ctx context.Context, reservationID, customerID string) error

	// RenterDelete cancels the reservation and unlinks the car side only.
	RenterDelete(ctx context.Context, reservationID string) error
}

package ports

import (
	"context"
	"time"

	"github.com/rentaride/rental-system/internal/core/domain"
)

// ReservationPatch carries the replaceable reservation fields. Status moves
// only through SetStatus so the state machine cannot be bypassed by a plain
// update.
type ReservationPatch struct {
	StartDate  time.Time
	ReturnDate time.Time
}

// ReservationRepository persists reservation aggregates. The reservation row
// is the system of record; back-reference lists elsewhere are projections.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error)
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Reservation, error)
	Update(ctx context.Context, id string, patch ReservationPatch) (*domain.Reservation, error)
	SetStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error)
	Delete(ctx context.Context, id string) error
}

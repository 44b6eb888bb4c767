package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

// ReservationService implements ports.ReservationService. The reservation
// row is the system of record; the back-reference lists on profile and car
// are best-effort projections maintained by the same ordered steps.
type ReservationService struct {
	reservations ports.ReservationRepository
	profiles     ports.ProfileRepository
	cars         ports.CarRepository
	log          zerolog.Logger
}

func NewReservationService(
	reservations ports.ReservationRepository,
	profiles ports.ProfileRepository,
	cars ports.CarRepository,
	log zerolog.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		profiles:     profiles,
		cars:         cars,
		log:          log,
	}
}

// Create resolves both referenced aggregates, inserts the reservation row,
// then appends its id to the customer's and the car's projections. The two
// appends are independent; the first failing step's error surfaces and the
// row remains authoritative either way.
func (s *ReservationService) Create(ctx context.Context, input ports.CreateReservationInput) (*domain.Reservation, error) {
	customer, err := s.profiles.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReservationCreate, err)
	}
	car, err := s.cars.FindByID(ctx, input.CarID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReservationCreate, err)
	}

	reservation := &domain.Reservation{
		Customer:   domain.Customer{ID: customer.ID, Name: customer.Name},
		Renter:     car.Owner, // copied at creation; ownership is immutable
		Car:        car.ID,
		StartDate:  input.StartDate,
		ReturnDate: input.ReturnDate,
		Status:     domain.ReservationPending,
	}

	created, err := s.reservations.Create(ctx, reservation)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.AppendReservation(ctx, customer.ID, created.ID); err != nil {
		s.log.Error().Err(err).Str("reservation_id", created.ID).Msg("customer back-reference failed")
		return nil, fmt.Errorf("create reservation: link customer: %w", err)
	}
	if err := s.cars.AppendReservation(ctx, car.ID, created.ID); err != nil {
		s.log.Error().Err(err).Str("reservation_id", created.ID).Msg("car back-reference failed")
		return nil, fmt.Errorf("create reservation: link car: %w", err)
	}

	s.log.Info().
		Str("reservation_id", created.ID).
		Str("customer_id", customer.ID).
		Str("car_id", car.ID).
		Msg("reservation created")

	return created, nil
}

// UpdateStatus applies the state machine. A reservation in a terminal
// status never transitions again.
func (s *ReservationService) UpdateStatus(ctx context.Context, reservationID string, status domain.ReservationStatus) (*domain.Reservation, error) {
	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if !reservation.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, reservation.Status, status)
	}

	updated, err := s.reservations.SetStatus(ctx, reservationID, status)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("reservation_id", reservationID).
		Str("status", string(status)).
		Msg("reservation status changed")

	return updated, nil
}

// Update replaces the reschedulable fields; status is not part of a patch.
func (s *ReservationService) Update(ctx context.Context, reservationID string, patch ports.ReservationPatch) (*domain.Reservation, error) {
	return s.reservations.Update(ctx, reservationID, patch)
}

// Delete is the admin cascade: both projections are unlinked, then the row
// itself is removed.
func (s *ReservationService) Delete(ctx context.Context, reservationID string) error {
	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}

	car, err := s.cars.FindByID(ctx, reservation.Car)
	if err != nil {
		return err
	}
	customer, err := s.profiles.FindByID(ctx, reservation.Customer.ID)
	if err != nil {
		return err
	}

	if err := s.cars.RemoveReservation(ctx, car.ID, reservation.ID); err != nil {
		return err
	}
	if err := s.profiles.RemoveReservation(ctx, customer.ID, reservation.ID); err != nil {
		return err
	}

	return s.reservations.Delete(ctx, reservation.ID)
}

// CustomerDelete cancels the reservation and unlinks the customer side. The
// status flips to Cancelled before the unlink so a concurrent history read
// sees a cancelled reservation, never a vanished one. The cancellation is
// applied directly, outside the transition table: a customer may withdraw
// from an already-accepted booking.
func (s *ReservationService) CustomerDelete(ctx context.Context, reservationID, customerID string) error {
	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if reservation.Customer.ID != customerID {
		return domain.ErrForbidden
	}

	if _, err := s.reservations.SetStatus(ctx, reservationID, domain.ReservationCancelled); err != nil {
		return err
	}

	return s.profiles.RemoveReservation(ctx, customerID, reservationID)
}

// RenterDelete cancels the reservation and unlinks the car side only. The
// row survives in a cancelled state for the customer's history.
func (s *ReservationService) RenterDelete(ctx context.Context, reservationID string) error {
	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}

	car, err := s.cars.FindByID(ctx, reservation.Car)
	if err != nil {
		if errors.Is(err, domain.ErrCarNotFound) {
			return domain.ErrReservationNotFound
		}
		return err
	}

	if _, err := s.reservations.SetStatus(ctx, reservationID, domain.ReservationCancelled); err != nil {
		return err
	}

	return s.cars.RemoveReservation(ctx, car.ID, reservationID)
}

package service

import (
	"context"
	"fmt"
	"path"

	"github.com/rs/zerolog"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

// FleetService implements ports.FleetService. There is no multi-document
// transaction underneath: every operation runs its steps in a fixed order
// chosen so that partial failure degrades to a documented, tolerable state.
type FleetService struct {
	cars         ports.CarRepository
	profiles     ports.ProfileRepository
	reservations ports.ReservationRepository
	cleaner      ports.StorageCleaner
	log          zerolog.Logger
}

func NewFleetService(
	cars ports.CarRepository,
	profiles ports.ProfileRepository,
	reservations ports.ReservationRepository,
	cleaner ports.StorageCleaner,
	log zerolog.Logger,
) *FleetService {
	return &FleetService{
		cars:         cars,
		profiles:     profiles,
		reservations: reservations,
		cleaner:      cleaner,
		log:          log,
	}
}

// AddCar inserts the car row, then appends its id to the owner's car list.
// If the append fails the car row stays behind as an orphan with no forward
// reference; an offline reconciliation pass owns that case, not this path.
func (s *FleetService) AddCar(ctx context.Context, input ports.AddCarInput) (*domain.Car, error) {
	car := &domain.Car{
		Owner:              input.OwnerID,
		Make:               input.Make,
		Model:              input.Model,
		Capacity:           input.Capacity,
		YearOfManufacture:  input.YearOfManufacture,
		RegistrationNumber: input.RegistrationNumber,
		Condition:          input.Condition,
		Rate:               input.Rate,
		Plan:               input.Plan,
		Type:               input.Type,
		Availability:       domain.CarAvailable,
		Location:           input.Location,
		MaxDuration:        input.MaxDuration,
		Description:        input.Description,
		Terms:              input.Terms,
		RentalHistory:      []string{},
		Media:              input.Media,
	}

	created, err := s.cars.Create(ctx, car)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.AppendCar(ctx, input.OwnerID, created.ID); err != nil {
		s.log.Error().Err(err).
			Str("car_id", created.ID).
			Str("owner_id", input.OwnerID).
			Msg("car inserted but owner back-reference failed")
		return nil, fmt.Errorf("add car: link owner: %w", err)
	}

	s.log.Info().Str("car_id", created.ID).Str("owner_id", input.OwnerID).Msg("car added")
	return created, nil
}

// UpdateCar replaces descriptive fields. Ownership is not patchable.
func (s *FleetService) UpdateCar(ctx context.Context, carID, ownerID string, patch ports.CarPatch) (*domain.Car, error) {
	return s.cars.Update(ctx, carID, ownerID, patch)
}

// DeleteCar unlinks the owner's back-reference before dropping the car row,
// so a concurrent reader never follows a live reference into a missing
// document. A crash between unlink and delete leaves an unreachable car row,
// which availability queries tolerate.
func (s *FleetService) DeleteCar(ctx context.Context, carID, ownerID string) error {
	car, err := s.cars.FindByIDAndOwner(ctx, carID, ownerID)
	if err != nil {
		return err
	}

	// A missing owner profile here is a data-integrity violation; it is
	// still surfaced as not-found rather than an internal failure.
	if _, err := s.profiles.FindByID(ctx, ownerID); err != nil {
		return err
	}

	if err := s.profiles.RemoveCar(ctx, ownerID, car.ID); err != nil {
		return err
	}

	// Media cleanup is fired, never awaited.
	s.cleaner.DeleteTree(path.Join("cars", ownerID, car.ID))

	if err := s.cars.Delete(ctx, car.ID); err != nil {
		return err
	}

	s.log.Info().Str("car_id", car.ID).Str("owner_id", ownerID).Msg("car deleted")
	return nil
}

// ChangeAvailability toggles the car-scoped availability flag. It is never
// invoked implicitly by a reservation transition; that pairing is the
// caller's responsibility.
func (s *FleetService) ChangeAvailability(ctx context.Context, carID, ownerID string, availability domain.Availability) (*domain.Car, error) {
	return s.cars.SetAvailability(ctx, carID, ownerID, availability)
}

func (s *FleetService) FindAvailableCars(ctx context.Context) ([]*domain.Car, error) {
	return s.cars.FindAvailable(ctx)
}

// RenterCars lists the owner's fleet through the carRefs projection.
func (s *FleetService) RenterCars(ctx context.Context, ownerID string) ([]*domain.Car, error) {
	profile, err := s.profiles.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.cars.FindByIDs(ctx, profile.Cars)
}

// CarHistory returns the reservations recorded against the car. Missing ids
// in the projection are skipped, not errors.
func (s *FleetService) CarHistory(ctx context.Context, carID, ownerID string) ([]*domain.Reservation, error) {
	car, err := s.cars.FindByIDAndOwner(ctx, carID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.reservations.FindByIDs(ctx, car.RentalHistory)
}

// UpdateCarMedia is the completion callback from the media pipeline.
// Replays with a stale oldURL are no-ops.
func (s *FleetService) UpdateCarMedia(ctx context.Context, carID, oldURL, newURL string) error {
	return s.cars.ReplaceMediaURL(ctx, carID, oldURL, newURL)
}

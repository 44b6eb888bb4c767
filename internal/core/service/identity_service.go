package service

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

// IdentityService implements ports.IdentityService. Multi-aggregate writes
// here are ordered micro-sagas: each step commits locally and the documented
// compensations undo earlier steps when a later one fails.
type IdentityService struct {
	credentials  ports.CredentialRepository
	profiles     ports.ProfileRepository
	reservations ports.ReservationRepository
	sessions     ports.SessionService
	fleet        ports.FleetService
	cleaner      ports.StorageCleaner
	bcryptCost   int
	log          zerolog.Logger
}

func NewIdentityService(
	credentials ports.CredentialRepository,
	profiles ports.ProfileRepository,
	reservations ports.ReservationRepository,
	sessions ports.SessionService,
	fleet ports.FleetService,
	cleaner ports.StorageCleaner,
	bcryptCost int,
	log zerolog.Logger,
) *IdentityService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &IdentityService{
		credentials:  credentials,
		profiles:     profiles,
		reservations: reservations,
		sessions:     sessions,
		fleet:        fleet,
		cleaner:      cleaner,
		bcryptCost:   bcryptCost,
		log:          log,
	}
}

// SignUp creates credential, profile and session in that order. If the
// profile insert fails the credential is rolled back; if the session fails
// both credential and profile are rolled back, so a credential exists
// exactly when a profile with the same email does.
func (s *IdentityService) SignUp(ctx context.Context, input ports.SignUpInput) (*ports.SignUpResult, error) {
	if input.Role != domain.RoleCustomer && input.Role != domain.RoleRenter {
		return nil, fmt.Errorf("%w: role %q not allowed at signup", domain.ErrForbidden, input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	// Step 1: credential. Nothing else is attempted if this fails.
	if _, err := s.credentials.Create(ctx, &domain.Credential{
		Email:        input.Email,
		PasswordHash: string(hash),
	}); err != nil {
		return nil, err
	}

	// Step 2: profile. Compensate the credential on failure.
	profile := &domain.Profile{
		Role:             input.Role,
		Name:             input.Name,
		Email:            input.Email,
		DateOfBirth:      input.DateOfBirth,
		PhoneNumber:      input.PhoneNumber,
		PlaceOfResidence: input.PlaceOfResidence,
		ProfilePicture:   input.ProfilePicture,
		IdentityCard:     input.IdentityCard,
		Reservations:     []string{},
	}
	if input.Role == domain.RoleRenter {
		profile.Cars = []string{}
	}

	created, err := s.profiles.Create(ctx, profile)
	if err != nil {
		s.rollbackCredential(ctx, input.Email)
		return nil, err
	}

	// Step 3: session. Compensate both earlier aggregates on failure.
	tokens, err := s.sessions.Create(ctx, created, input.UserAgent)
	if err != nil {
		if delErr := s.profiles.Delete(ctx, created.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("profile_id", created.ID).Msg("signup rollback: profile delete failed")
		}
		s.rollbackCredential(ctx, input.Email)
		return nil, err
	}

	s.log.Info().Str("profile_id", created.ID).Str("role", string(created.Role)).Msg("identity created")

	return &ports.SignUpResult{Profile: created, Session: tokens}, nil
}

func (s *IdentityService) rollbackCredential(ctx context.Context, email string) {
	if err := s.credentials.DeleteByEmail(ctx, email); err != nil {
		s.log.Error().Err(err).Msg("signup rollback: credential delete failed")
	}
}

// Login authenticates a credential and returns the current profile. An
// unknown email and a wrong password produce the same error.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	cred, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.profiles.FindByEmail(ctx, email)
}

func (s *IdentityService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// DeleteIdentity retires the whole identity. Owned cars go first, through
// the fleet deletion path, so no car is left referencing a missing profile;
// then credential, session and finally the profile row.
func (s *IdentityService) DeleteIdentity(ctx context.Context, profileID, sessionID string) error {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return err
	}

	if profile.IsRenter() {
		for _, carID := range profile.Cars {
			if err := s.fleet.DeleteCar(ctx, carID, profileID); err != nil {
				return fmt.Errorf("delete identity: retire car %s: %w", carID, err)
			}
		}
	}

	if err := s.credentials.DeleteByEmail(ctx, profile.Email); err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return err
	}

	s.cleaner.DeleteTree(path.Join("users", profileID))

	if err := s.profiles.Delete(ctx, profileID); err != nil {
		return err
	}

	s.log.Info().Str("profile_id", profileID).Msg("identity deleted")
	return nil
}

// UpgradeToRenter is the one-way Customer→Renter role change.
func (s *IdentityService) UpgradeToRenter(ctx context.Context, profileID string) (*domain.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.IsRenter() {
		return nil, domain.ErrAlreadyRenter
	}

	upgraded, err := s.profiles.SetRole(ctx, profileID, domain.RoleRenter)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("profile_id", profileID).Msg("profile upgraded to renter")
	return upgraded, nil
}

func (s *IdentityService) GetProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	return s.profiles.FindByID(ctx, profileID)
}

func (s *IdentityService) UpdateProfile(ctx context.Context, profileID string, patch ports.ProfilePatch) (*domain.Profile, error) {
	return s.profiles.Update(ctx, profileID, patch)
}

// UpdateProfileMedia is the completion callback from the media pipeline. It
// may arrive arbitrarily late, more than once, or not at all.
func (s *IdentityService) UpdateProfileMedia(ctx context.Context, profileID, url string) error {
	return s.profiles.SetProfilePicture(ctx, profileID, url)
}

// ReservationHistory lists the reservations the profile's back-reference
// list points at. The list is a best-effort projection; ids that no longer
// resolve are simply absent from the result.
func (s *IdentityService) ReservationHistory(ctx context.Context, profileID string) ([]*domain.Reservation, error) {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.reservations.FindByIDs(ctx, profile.Reservations)
}

// ClearReservationHistory empties the profile's reservation projection. The
// reservation rows themselves are untouched.
func (s *IdentityService) ClearReservationHistory(ctx context.Context, profileID string) error {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return err
	}
	for _, reservationID := range profile.Reservations {
		if err := s.profiles.RemoveReservation(ctx, profileID, reservationID); err != nil {
			return err
		}
	}
	return nil
}

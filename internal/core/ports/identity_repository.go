package ports

import (
	"context"
	"time"

	"github.com/rentaride/rental-system/internal/core/domain"
)

// CredentialRepository persists login secrets, separately from profiles.
type CredentialRepository interface {
	// Create inserts a credential. Returns domain.ErrCredentialExists when
	// the email is already registered.
	Create(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)
	FindByEmail(ctx context.Context, email string) (*domain.Credential, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// ProfilePatch carries the replaceable profile fields. Role, email and the
// back-reference lists are never part of a patch; they change only through
// their dedicated operations.
type ProfilePatch struct {
	Name             string
	DateOfBirth      time.Time
	PhoneNumber      string
	PlaceOfResidence domain.Coordinates
	IdentityCard     string
	ProfilePicture   string
}

// ProfileRepository persists profile aggregates and their back-reference
// lists. List mutations are single-document updates; concurrent appends to
// the same list are last-writer-wins at the storage layer.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Update(ctx context.Context, id string, patch ProfilePatch) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error

	// SetRole upgrades the profile's role, initialising the car list when
	// the new role is renter.
	SetRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error)
	SetProfilePicture(ctx context.Context, id, url string) error

	// AppendCar adds a car back-reference. The update matches only profiles
	// with the renter role; domain.ErrProfileNotFound otherwise.
	AppendCar(ctx context.Context, ownerID, carID string) error
	RemoveCar(ctx context.Context, ownerID, carID string) error

	AppendReservation(ctx context.Context, profileID, reservationID string) error
	RemoveReservation(ctx context.Context, profileID, reservationID string) error
}

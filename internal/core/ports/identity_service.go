package ports

import (
	"context"
	"time"

	"github.com/rentaride/rental-system/internal/core/domain"
)

// SignUpInput carries everything needed to create a new identity. Role may
// be customer or renter; admin accounts are never self-service.
type SignUpInput struct {
	Email            string
	Password         string
	Name             string
	Role             domain.Role
	DateOfBirth      time.Time
	PhoneNumber      string
	PlaceOfResidence domain.Coordinates
	IdentityCard     string
	ProfilePicture   string
	UserAgent        string
}

// SignUpResult is the profile plus the session opened for it.
type SignUpResult struct {
	Profile *domain.Profile
	Session *SessionTokens
}

// IdentityService owns credentials, profiles and their lifecycle, including
// the renter cascade on identity deletion.
type IdentityService interface {
	// SignUp creates credential, profile and session in that order. A later
	// step failing rolls the earlier aggregates back so a credential never
	// outlives its profile and vice versa.
	SignUp(ctx context.Context, input SignUpInput) (*SignUpResult, error)

	// Login authenticates an email/password pair and returns the current
	// profile. Unknown email and wrong password are indistinguishable.
	Login(ctx context.Context, email, password string) (*domain.Profile, error)

	Logout(ctx context.Context, sessionID string) error

	// DeleteIdentity retires every owned car first (for renters), then the
	// credential, the session and finally the profile row.
	DeleteIdentity(ctx context.Context, profileID, sessionID string) error

	// UpgradeToRenter is one-way; there is no downgrade path.
	UpgradeToRenter(ctx context.Context, profileID string) (*domain.Profile, error)

	GetProfile(ctx context.Context, profileID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profileID string, patch ProfilePatch) (*domain.Profile, error)

	// UpdateProfileMedia is the idempotent completion callback from the
	// media pipeline.
	UpdateProfileMedia(ctx context.Context, profileID, url string) error

	ReservationHistory(ctx context.Context, profileID string) ([]*domain.Reservation, error)
	ClearReservationHistory(ctx context.Context, profileID string) error
}

package domain

import "errors"

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrCarNotFound         = errors.New("car not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrCredentialNotFound  = errors.New("credential not found")

	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike, so a caller cannot enumerate registered emails.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrCredentialExists  = errors.New("credential already exists")
	ErrForbidden         = errors.New("access forbidden")
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrInvalidTransition = errors.New("invalid reservation status transition")
	ErrReservationCreate = errors.New("reservation could not be created")
	ErrAlreadyRenter     = errors.New("profile is already a renter")
)

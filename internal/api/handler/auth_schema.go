package handler

import (
	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

// dateLayout is the wire format for calendar dates (date of birth).
const dateLayout = "2006-01-02"

type coordinatesRequest struct {
	Lat string `json:"lat" validate:"required"`
	Lng string `json:"lng" validate:"required"`
}

type signupRequest struct {
	Email            string             `json:"email"              validate:"required,email"`
	Password         string             `json:"password"           validate:"required,min=8"`
	Name             string             `json:"name"               validate:"required"`
	Role             string             `json:"role"               validate:"required,oneof=customer renter"`
	DateOfBirth      string             `json:"date_of_birth"      validate:"required,datetime=2006-01-02"`
	PhoneNumber      string             `json:"phone_number"       validate:"required"`
	PlaceOfResidence coordinatesRequest `json:"place_of_residence" validate:"required"`
	IdentityCard     string             `json:"identity_card"`
	ProfilePicture   string             `json:"profile_picture"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	SessionID    string `json:"session_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	Profile *domain.Profile `json:"profile"`
	Session sessionResponse `json:"session"`
}

func toSessionResponse(t *ports.SessionTokens) sessionResponse {
	return sessionResponse{
		SessionID:    t.SessionID,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
}

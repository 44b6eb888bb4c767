package handler

import "github.com/rentaride/rental-system/internal/core/domain"

type updateProfileRequest struct {
	Name             string             `json:"name"               validate:"required"`
	DateOfBirth      string             `json:"date_of_birth"      validate:"required,datetime=2006-01-02"`
	PhoneNumber      string             `json:"phone_number"       validate:"required"`
	PlaceOfResidence coordinatesRequest `json:"place_of_residence" validate:"required"`
	IdentityCard     string             `json:"identity_card"`
	ProfilePicture   string             `json:"profile_picture"`
}

type uploadPictureRequest struct {
	Path     string `json:"path"      validate:"required"`
	MimeType string `json:"mime_type" validate:"required"`
}

type profileResponse struct {
	Profile *domain.Profile `json:"profile"`
}

type reservationListResponse struct {
	Reservations []*domain.Reservation `json:"reservations"`
}

package handler

import "github.com/rentaride/rental-system/internal/core/domain"

type mediaRequest struct {
	URL      string `json:"url"       validate:"required"`
	MimeType string `json:"mime_type"`
}

type addCarRequest struct {
	Make               string         `json:"make"                validate:"required"`
	Model              string         `json:"model"               validate:"required"`
	Capacity           int            `json:"capacity"            validate:"required,gt=0"`
	YearOfManufacture  string         `json:"year_of_manufacture" validate:"required"`
	RegistrationNumber string         `json:"registration_number" validate:"required"`
	Condition          string         `json:"condition"           validate:"required"`
	Rate               float64        `json:"rate"                validate:"required,gt=0"`
	Plan               string         `json:"plan"                validate:"required"`
	Type               string         `json:"type"                validate:"required"`
	Location           string         `json:"location"            validate:"required"`
	MaxDuration        int            `json:"max_duration"        validate:"required,gt=0"`
	Description        string         `json:"description"`
	Terms              string         `json:"terms"`
	Media              []mediaRequest `json:"media"`
}

type updateCarRequest struct {
	Make               string         `json:"make"                validate:"required"`
	Model              string         `json:"model"               validate:"required"`
	Capacity           int            `json:"capacity"            validate:"required,gt=0"`
	YearOfManufacture  string         `json:"year_of_manufacture" validate:"required"`
	RegistrationNumber string         `json:"registration_number" validate:"required"`
	Condition          string         `json:"condition"           validate:"required"`
	Rate               float64        `json:"rate"                validate:"required,gt=0"`
	Plan               string         `json:"plan"                validate:"required"`
	Type               string         `json:"type"                validate:"required"`
	Location           string         `json:"location"            validate:"required"`
	MaxDuration        int            `json:"max_duration"        validate:"required,gt=0"`
	Description        string         `json:"description"`
	Terms              string         `json:"terms"`
	AddMedia           []mediaRequest `json:"add_media"`
}

type availabilityRequest struct {
	Availability string `json:"availability" validate:"required,oneof=available unavailable"`
}

type carResponse struct {
	Car *domain.Car `json:"car"`
}

type carListResponse struct {
	Cars []*domain.Car `json:"cars"`
}

func toDomainMedia(in []mediaRequest) []domain.Media {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Media, 0, len(in))
	for _, m := range in {
		out = append(out, domain.Media{URL: m.URL})
	}
	return out
}

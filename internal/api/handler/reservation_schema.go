package handler

import "github.com/rentaride/rental-system/internal/core/domain"

type createReservationRequest struct {
	CarID      string `json:"car_id"      validate:"required"`
	StartDate  string `json:"start_date"  validate:"required,datetime=2006-01-02"`
	ReturnDate string `json:"return_date" validate:"required,datetime=2006-01-02"`
}

type updateReservationRequest struct {
	StartDate  string `json:"start_date"  validate:"required,datetime=2006-01-02"`
	ReturnDate string `json:"return_date" validate:"required,datetime=2006-01-02"`
}

type reservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Accepted Rejected Cancelled"`
}

type reservationResponse struct {
	Reservation *domain.Reservation `json:"reservation"`
}

package domain

import "time"

// ReservationStatus represents the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "Pending"
	ReservationAccepted  ReservationStatus = "Accepted"
	ReservationRejected  ReservationStatus = "Rejected"
	ReservationCancelled ReservationStatus = "Cancelled"
)

// validTransitions defines the allowed state machine transitions. Accepted,
// Rejected and Cancelled are terminal.
var validTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending: {ReservationAccepted, ReservationRejected, ReservationCancelled},
}

// CanTransitionTo reports whether a transition from the current status to
// next is valid.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Customer is the denormalized customer reference stored on a reservation.
type Customer struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Reservation is the booking aggregate root. Renter is copied from the
// car's owner at creation time. The reservation row is the system of
// record; the back-reference lists on Profile and Car are projections.
type Reservation struct {
	ID         string            `json:"id"`
	Customer   Customer          `json:"customer"`
	Renter     string            `json:"renter"`
	Car        string            `json:"car"`
	StartDate  time.Time         `json:"start_date"`
	ReturnDate time.Time         `json:"return_date"`
	Status     ReservationStatus `json:"status"`
}

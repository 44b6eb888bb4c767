package domain

// Availability is the rentable state of a car.
type Availability string

const (
	CarAvailable   Availability = "available"
	CarUnavailable Availability = "unavailable"
)

// Media is a single uploaded image or video attached to a car.
type Media struct {
	URL string `json:"url" bson:"url"`
}

// Car is the vehicle aggregate root. Owner is set at creation and is
// immutable afterwards; RentalHistory is the back-reference list of
// reservation ids made against this car.
type Car struct {
	ID                 string       `json:"id"`
	Owner              string       `json:"owner"`
	Make               string       `json:"make"`
	Model              string       `json:"model"`
	Capacity           int          `json:"capacity"`
	YearOfManufacture  string       `json:"year_of_manufacture"`
	RegistrationNumber string       `json:"registration_number"`
	Condition          string       `json:"condition"`
	Rate               float64      `json:"rate"`
	Plan               string       `json:"plan"`
	Type               string       `json:"type"`
	Availability       Availability `json:"availability"`
	Location           string       `json:"location"`
	MaxDuration        int          `json:"max_duration"`
	Description        string       `json:"description"`
	Terms              string       `json:"terms"`
	RentalHistory      []string     `json:"rental_history"`
	Media              []Media      `json:"media"`
}

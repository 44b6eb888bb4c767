package domain

import "time"

// Role classifies what a profile is allowed to do.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleRenter   Role = "renter"
	RoleAdmin    Role = "admin"
)

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat string `json:"lat" bson:"lat"`
	Lng string `json:"lng" bson:"lng"`
}

// Profile is the user aggregate root. Credentials live in a separate
// aggregate; Profile never carries a password.
//
// Cars is populated only for renter profiles. Role is the authoritative
// discriminator; Cars is the back-reference list it implies.
type Profile struct {
	ID               string      `json:"id"`
	Role             Role        `json:"role"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	DateOfBirth      time.Time   `json:"date_of_birth"`
	PhoneNumber      string      `json:"phone_number"`
	PlaceOfResidence Coordinates `json:"place_of_residence"`
	ProfilePicture   string      `json:"profile_picture"`
	IdentityCard     string      `json:"identity_card,omitempty"`
	Reservations     []string    `json:"reservations"`
	Cars             []string    `json:"cars,omitempty"`
}

// IsRenter reports whether this profile can own cars.
func (p *Profile) IsRenter() bool {
	return p.Role == RoleRenter
}

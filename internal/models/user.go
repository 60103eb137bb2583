package models

import "time"

// User represents a registered donor with a geocoded home address.
// The location is only nil for a user that has never been persisted:
// registration and address updates refuse to store a user whose address
// could not be resolved.
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Password      string     `json:"password,omitempty"`
	BloodGroup    BloodGroup `json:"bloodGroup"`
	Phone         string     `json:"phone"`
	AddressRaw    string     `json:"addressRaw"`
	Location      *GeoPoint  `json:"location"`
	LastDonatedAt *time.Time `json:"lastDonatedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Sanitized returns a copy of the user with the password cleared, suitable
// for API responses.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// HasLocation reports whether the user has resolved coordinates.
func (u User) HasLocation() bool {
	return u.Location != nil
}

// internal/models/booking.go
package models

import "time"

// TestDriveBooking is a request to test drive a listed car.
type TestDriveBooking struct {
	ID           string    `json:"bookingId"`
	ListingID    string    `json:"listingId"`
	DealershipID string    `json:"dealershipId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Slot         time.Time `json:"slot"`
	Message      string    `json:"message,omitempty"`
}

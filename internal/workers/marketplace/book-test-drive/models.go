package booktestdrive

type Input struct {
	ListingID    string `json:"listingId"`
	DealershipID string `json:"dealershipId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Date         string `json:"date"` // YYYY-MM-DD
	Time         string `json:"time"` // HH:00
	Message      string `json:"message,omitempty"`
}

type Output struct {
	BookingID string `json:"bookingId"`
	Slot      string `json:"slot"` // RFC 3339 in dealership time
	Status    string `json:"status"`
}

const StatusBooked = "booked"

package searchlistings

import "car-mzansi-connect/internal/marketplace/listings"

type Input struct {
	Query   string            `json:"query"`
	Filters *listings.Filters `json:"filters,omitempty"`
}

// ListingSummary is a feed card with its WhatsApp inquiry link.
type ListingSummary struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Price        string  `json:"price"`
	Mileage      int     `json:"mileage"`
	Dealership   string  `json:"dealership"`
	Location     string  `json:"location"`
	Verified     bool    `json:"verified"`
	Rating       float64 `json:"rating"`
	WhatsAppLink string  `json:"whatsAppLink,omitempty"`
}

type Output struct {
	Listings      []ListingSummary `json:"listings"`
	Total         int              `json:"total"`
	ActiveFilters int              `json:"activeFilters"`
}

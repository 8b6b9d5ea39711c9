// Package listings holds the dealership feed: the sample catalogue, free-text
// search, advanced filters and WhatsApp inquiry links.
package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"car-mzansi-connect/internal/models"
)

var ErrListingNotFound = errors.New("listing not found")

// Catalogue looks up listings. Search applies query first, then filters.
type Catalogue interface {
	Search(ctx context.Context, query string, filters *Filters) ([]models.Listing, error)
	Get(ctx context.Context, id string) (models.Listing, error)
}

// Sample is the fixed in-memory feed shown on the home page.
type Sample struct {
	listings []models.Listing
}

func NewSample(now time.Time) *Sample {
	return &Sample{listings: []models.Listing{
		{
			ID: "1",
			Car: models.Car{
				Make: "BMW", Model: "320i M Sport", Year: 2022, Price: 599000,
				Mileage: 25000, FuelType: "Petrol", Transmission: "Automatic",
			},
			Dealership: models.Dealership{
				ID: "premium-motors-jhb", Name: "Premium Motors JHB", Location: "Sandton, Johannesburg",
				Phone: "+27123456789", Verified: true, Rating: 4.5,
			},
			Description: "Stunning BMW 320i M Sport in pristine condition. Full service history, premium features, and exceptional performance. Perfect for the discerning driver.",
			Likes:       24,
			Comments:    12,
			PostedAt:    now.Add(-2 * time.Hour),
		},
		{
			ID: "2",
			Car: models.Car{
				Make: "Mercedes-Benz", Model: "C200 AMG Line", Year: 2023, Price: 750000,
				Mileage: 12000, FuelType: "Petrol", Transmission: "Automatic",
			},
			Dealership: models.Dealership{
				ID: "cape-town-luxury-cars", Name: "Cape Town Luxury Cars", Location: "V&A Waterfront, Cape Town",
				Phone: "+27987654321", Verified: true, Rating: 4.8,
			},
			Description: "Immaculate Mercedes-Benz C200 with AMG styling package. Advanced safety features, luxury interior, and Mercedes reliability.",
			Likes:       18,
			Comments:    8,
			PostedAt:    now.Add(-4 * time.Hour),
		},
		{
			ID: "3",
			Car: models.Car{
				Make: "Audi", Model: "A4 2.0T FSI", Year: 2021, Price: 520000,
				Mileage: 35000, FuelType: "Petrol", Transmission: "Automatic",
			},
			Dealership: models.Dealership{
				ID: "pretoria-auto-elite", Name: "Pretoria Auto Elite", Location: "Menlyn, Pretoria",
				Phone: "+27111222333", Verified: false, Rating: 4.2,
			},
			Description: "Well-maintained Audi A4 with excellent fuel economy and sophisticated design. Great value for luxury sedan enthusiasts.",
			Likes:       12,
			Comments:    5,
			PostedAt:    now.Add(-6 * time.Hour),
		},
	}}
}

func (s *Sample) All() []models.Listing {
	out := make([]models.Listing, len(s.listings))
	copy(out, s.listings)
	return out
}

func (s *Sample) Search(_ context.Context, query string, filters *Filters) ([]models.Listing, error) {
	var out []models.Listing
	for _, l := range s.listings {
		if MatchesQuery(l, query) && filters.Match(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Sample) Get(_ context.Context, id string) (models.Listing, error) {
	for _, l := range s.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return models.Listing{}, ErrListingNotFound
}

// MatchesQuery is a case-insensitive substring match on make, model and dealership name.
// The empty query matches everything.
func MatchesQuery(l models.Listing, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Car.Make), q) ||
		strings.Contains(strings.ToLower(l.Car.Model), q) ||
		strings.Contains(strings.ToLower(l.Dealership.Name), q)
}

package listings

import (
	"fmt"
	"slices"
	"strings"

	"car-mzansi-connect/internal/models"
)

// Range is an inclusive [Min, Max] bound.
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

func (r Range) Contains(v int64) bool {
	return v >= r.Min && v <= r.Max
}

// Filters are the advanced feed filters. Empty lists do not constrain.
type Filters struct {
	PriceRange    Range    `json:"priceRange"`
	MileageRange  Range    `json:"mileageRange"`
	YearRange     Range    `json:"yearRange"`
	Makes         []string `json:"makes,omitempty"`
	FuelTypes     []string `json:"fuelTypes,omitempty"`
	Transmissions []string `json:"transmissions,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	Verified      bool     `json:"verified"`
}

func DefaultFilters() Filters {
	return Filters{
		PriceRange:   Range{0, 2000000},
		MileageRange: Range{0, 200000},
		YearRange:    Range{2015, 2024},
	}
}

// ActiveCount counts selected options; ranges are not counted.
func (f Filters) ActiveCount() int {
	n := len(f.Makes) + len(f.FuelTypes) + len(f.Transmissions) + len(f.Locations)
	if f.Verified {
		n++
	}
	return n
}

func (f Filters) Validate() error {
	for name, r := range map[string]Range{"price": f.PriceRange, "mileage": f.MileageRange, "year": f.YearRange} {
		if r.Min < 0 || r.Min > r.Max {
			return fmt.Errorf("invalid %s range [%d, %d]", name, r.Min, r.Max)
		}
	}
	return nil
}

// Match reports whether l passes every filter. A nil receiver matches everything.
func (f *Filters) Match(l models.Listing) bool {
	if f == nil {
		return true
	}
	if !f.PriceRange.Contains(l.Car.Price) ||
		!f.MileageRange.Contains(int64(l.Car.Mileage)) ||
		!f.YearRange.Contains(int64(l.Car.Year)) {
		return false
	}
	if len(f.Makes) > 0 && !slices.Contains(f.Makes, l.Car.Make) {
		return false
	}
	if len(f.FuelTypes) > 0 && !slices.Contains(f.FuelTypes, l.Car.FuelType) {
		return false
	}
	if len(f.Transmissions) > 0 && !slices.Contains(f.Transmissions, l.Car.Transmission) {
		return false
	}
	if len(f.Locations) > 0 && !slices.ContainsFunc(f.Locations, func(loc string) bool {
		return strings.Contains(l.Dealership.Location, loc)
	}) {
		return false
	}
	if f.Verified && !l.Dealership.Verified {
		return false
	}
	return true
}

// internal/models/car.go
package models

import (
	"fmt"
	"time"
)

// Car is the read-only vehicle descriptor embedded in applications and listings.
type Car struct {
	Make         string `json:"make" yaml:"make"`
	Model        string `json:"model" yaml:"model"`
	Year         int    `json:"year" yaml:"year"`
	Price        int64  `json:"price" yaml:"price"` // whole rands
	Mileage      int    `json:"mileage,omitempty" yaml:"mileage,omitempty"`
	FuelType     string `json:"fuelType,omitempty" yaml:"fuelType,omitempty"`
	Transmission string `json:"transmission,omitempty" yaml:"transmission,omitempty"`
}

// Title renders "2022 BMW 320i M Sport".
func (c Car) Title() string {
	return fmt.Sprintf("%d %s %s", c.Year, c.Make, c.Model)
}

// Dealership is the read-only seller descriptor.
type Dealership struct {
	ID       string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string  `json:"name" yaml:"name"`
	Location string  `json:"location" yaml:"location"`
	Phone    string  `json:"phone,omitempty" yaml:"phone,omitempty"`
	Verified bool    `json:"verified" yaml:"verified"`
	Rating   float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
}

// Listing is a dealership post in the marketplace feed.
type Listing struct {
	ID          string     `json:"id"`
	Car         Car        `json:"car"`
	Dealership  Dealership `json:"dealership"`
	Description string     `json:"description"`
	Images      []string   `json:"images,omitempty"`
	Likes       int        `json:"likes"`
	Comments    int        `json:"comments"`
	PostedAt    time.Time  `json:"postedAt"`
}

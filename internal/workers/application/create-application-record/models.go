// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import (
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/finance/consent"
	"car-mzansi-connect/internal/models"
)

type Input struct {
	ApplicationID string                        `json:"applicationId"`
	UserID        string                        `json:"userId"`
	ListingID     string                        `json:"listingId"`
	Reference     string                        `json:"reference"`
	Car           models.Car                    `json:"car"`
	Dealership    models.Dealership             `json:"dealership"`
	Application   application.ApplicationRecord `json:"application"`
	Consent       consent.Record                `json:"consent"`
	// Affordable is set by check-affordability; nil when the check was skipped.
	Affordable *bool `json:"affordable,omitempty"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}

type submittedEvent struct {
	ApplicationID string `json:"applicationId"`
	Reference     string `json:"reference"`
	UserID        string `json:"userId"`
	ListingID     string `json:"listingId"`
	DealershipID  string `json:"dealershipId"`
	Car           string `json:"car"`
	Status        string `json:"status"`
}

package validatefinanceapplication

import (
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/finance/consent"
	"car-mzansi-connect/internal/models"
)

// Input is the process start document.
type Input struct {
	ApplicationID string                        `json:"applicationId"`
	UserID        string                        `json:"userId"`
	ListingID     string                        `json:"listingId,omitempty"`
	Reference     string                        `json:"reference,omitempty"`
	Car           models.Car                    `json:"car"`
	Dealership    models.Dealership             `json:"dealership"`
	Application   application.ApplicationRecord `json:"application"`
	Consent       consent.Record                `json:"consent"`
}

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type Output struct {
	Validated        bool         `json:"validated"`
	ValidationErrors []FieldError `json:"validationErrors,omitempty"`
}

// internal/workers/application/send-notification/models.go
package sendnotification

import (
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/models"
)

type Input struct {
	ApplicationID     string                        `json:"applicationId"`
	Reference         string                        `json:"reference"`
	ApplicationStatus string                        `json:"applicationStatus"`
	Car               models.Car                    `json:"car"`
	Dealership        models.Dealership             `json:"dealership"`
	Application       application.ApplicationRecord `json:"application"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "disabled"
	EmailStatus    string `json:"emailStatus"`
	SMSStatus      string `json:"smsStatus"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeApplicationSubmitted = "application_submitted"
	TypeNewApplication       = "new_application"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusSkipped  = "skipped"
)

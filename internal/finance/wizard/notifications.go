// internal/finance/wizard/notifications.go
package wizard

import (
	"fmt"

	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/models"
)

type NotificationKind string

const (
	KindSuccess    NotificationKind = "success"
	KindFailure    NotificationKind = "failure"
	KindValidation NotificationKind = "validation"
	KindConsent    NotificationKind = "consent"
)

// Notification is a user-facing message raised by the wizard.
type Notification struct {
	WizardID    string           `json:"wizardId"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
}

// Notifier receives wizard notifications. Notify must not block or call back
// into the controller.
type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}

func successNotification(car models.Car, dealership models.Dealership) Notification {
	return Notification{
		Kind:  KindSuccess,
		Title: "Application Submitted Successfully!",
		Description: fmt.Sprintf(
			"Your application for the %s has been sent to %s. They will contact you within 24 hours.",
			car.Title(), dealership.Name,
		),
	}
}

func failureNotification() Notification {
	return Notification{
		Kind:        KindFailure,
		Title:       "Submission Failed",
		Description: "There was an error submitting your application. Please try again.",
	}
}

func consentNotification() Notification {
	return Notification{
		Kind:        KindConsent,
		Title:       "Consent Required",
		Description: "You must accept the privacy policy to submit your application.",
	}
}

func validationNotification(verr *application.ValidationError) Notification {
	return Notification{
		Kind:        KindValidation,
		Title:       "Please fix the highlighted fields",
		Description: fmt.Sprintf("%d field(s) on the %s step need attention.", len(verr.Fields), verr.Step),
	}
}

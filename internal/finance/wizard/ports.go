// internal/finance/wizard/ports.go
package wizard

import (
	"context"
	"time"

	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/finance/consent"
	"car-mzansi-connect/internal/models"
)

// SessionAccessor reports the signed-in user, if any.
type SessionAccessor interface {
	CurrentUser(ctx context.Context) (models.User, bool)
}

// SessionFunc adapts a function to SessionAccessor.
type SessionFunc func(ctx context.Context) (models.User, bool)

func (f SessionFunc) CurrentUser(ctx context.Context) (models.User, bool) {
	return f(ctx)
}

// Submission is the payload handed to the gateway when consent is accepted.
type Submission struct {
	ApplicationID string                        `json:"applicationId"`
	UserID        string                        `json:"userId"`
	ListingID     string                        `json:"listingId,omitempty"`
	Car           models.Car                    `json:"car"`
	Dealership    models.Dealership             `json:"dealership"`
	Application   application.ApplicationRecord `json:"application"`
	Consent       consent.Record                `json:"consent"`
	SubmittedAt   time.Time                     `json:"submittedAt"`
}

// Receipt acknowledges an accepted submission.
type Receipt struct {
	Reference  string    `json:"reference"`
	AcceptedAt time.Time `json:"acceptedAt"`
}

// SubmissionGateway delivers a submission. Implementations must honour ctx.
type SubmissionGateway interface {
	Submit(ctx context.Context, sub Submission) (Receipt, error)
}

// Clock supplies time and timers so the success dwell can be driven in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type systemClock struct{}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

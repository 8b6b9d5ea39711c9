// internal/finance/wizard/controller.go
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/common/metrics"
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/finance/consent"
	"car-mzansi-connect/internal/models"

	"github.com/google/uuid"
)

// Stage is the wizard's position in the auth, form, consent, success sequence.
type Stage string

const (
	StageAuth    Stage = "auth"
	StageForm    Stage = "form"
	StageConsent Stage = "consent"
	StageSuccess Stage = "success"
)

// DefaultSuccessDwell is how long the success stage stays up before closing.
const DefaultSuccessDwell = 3 * time.Second

var (
	ErrNotOpen              = errors.New("WIZARD_NOT_OPEN")
	ErrAlreadyOpen          = errors.New("WIZARD_ALREADY_OPEN")
	ErrWrongStage           = errors.New("WRONG_STAGE")
	ErrAuthRequired         = errors.New("AUTH_REQUIRED")
	ErrSubmissionInProgress = errors.New("SUBMISSION_IN_PROGRESS")
	ErrSubmissionFailed     = errors.New("SUBMISSION_FAILED")
	ErrClosed               = errors.New("WIZARD_CLOSED")
)

// Controller drives one finance application wizard for a single car and
// dealership. All methods are safe for concurrent use; they are serialised so
// the wizard behaves as if driven by a single caller.
type Controller struct {
	id       string
	session  SessionAccessor
	gateway  SubmissionGateway
	notifier Notifier
	clock    Clock
	dwell    time.Duration
	onClose  func(id string)
	logger   logger.Logger

	mu         sync.Mutex
	open       bool
	stage      Stage
	user       models.User
	listingID  string
	car        models.Car
	dealership models.Dealership
	form       *application.Form
	consent    *consent.Capture
	submitted  *application.ApplicationRecord
	fieldErrs  *application.ValidationError
	receipt    *Receipt
	busy       bool
	generation uint64
	closeTimer Timer
}

type Option func(*Controller)

func WithClock(c Clock) Option { return func(w *Controller) { w.clock = c } }

func WithNotifier(n Notifier) Option { return func(w *Controller) { w.notifier = n } }

func WithLogger(l logger.Logger) Option { return func(w *Controller) { w.logger = l } }

func WithSuccessDwell(d time.Duration) Option { return func(w *Controller) { w.dwell = d } }

func WithID(id string) Option { return func(w *Controller) { w.id = id } }

// WithCloseHook registers f to run, outside the controller lock, after every reset.
func WithCloseHook(f func(id string)) Option { return func(w *Controller) { w.onClose = f } }

// New builds a closed wizard.
func New(session SessionAccessor, gateway SubmissionGateway, opts ...Option) *Controller {
	c := &Controller{
		id:       uuid.NewString(),
		session:  session,
		gateway:  gateway,
		notifier: discardNotifier{},
		clock:    SystemClock,
		dwell:    DefaultSuccessDwell,
		logger:   logger.NewNoOpLogger(),
		stage:    StageAuth,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithFields(map[string]interface{}{"wizardId": c.id})
	return c
}

func (c *Controller) ID() string { return c.id }

// Owner returns the ID of the user bound at Open or AuthSucceeded, or "" while
// the wizard is unbound.
func (c *Controller) Owner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user.ID
}

// Open starts the wizard for car and dealership. It enters the form stage
// when a session is present and the auth stage otherwise.
func (c *Controller) Open(ctx context.Context, car models.Car, dealership models.Dealership) error {
	return c.openFor(ctx, "", car, dealership)
}

// OpenListing opens the wizard for a marketplace listing.
func (c *Controller) OpenListing(ctx context.Context, listing models.Listing) error {
	return c.openFor(ctx, listing.ID, listing.Car, listing.Dealership)
}

func (c *Controller) openFor(ctx context.Context, listingID string, car models.Car, dealership models.Dealership) error {
	user, signedIn := c.session.CurrentUser(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return ErrAlreadyOpen
	}

	c.generation++
	c.open = true
	c.listingID = listingID
	c.car = car
	c.dealership = dealership
	c.form = application.NewForm()
	c.stage = StageAuth
	metrics.WizardsOpen.Inc()

	if signedIn {
		c.user = user
		c.transition(StageForm)
	}

	c.logger.Info("wizard opened", map[string]interface{}{
		"car":        car.Title(),
		"dealership": dealership.Name,
		"stage":      string(c.stage),
	})
	return nil
}

// Close cancels the wizard from any stage and resets it. A submission still in
// flight is abandoned; its result is discarded.
func (c *Controller) Close() error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrNotOpen
	}
	c.logger.Info("wizard cancelled", map[string]interface{}{"stage": string(c.stage)})
	c.reset()
	c.mu.Unlock()

	c.closed()
	return nil
}

// AuthSucceeded moves from auth to form once the session provider reports a user.
func (c *Controller) AuthSucceeded(ctx context.Context) error {
	user, signedIn := c.session.CurrentUser(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require("AuthSucceeded", StageAuth); err != nil {
		return err
	}
	if !signedIn {
		return ErrAuthRequired
	}
	c.user = user
	c.transition(StageForm)
	return nil
}

// UpdateField stores a form value without validating it.
func (c *Controller) UpdateField(field application.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require("UpdateField", StageForm); err != nil {
		return err
	}
	if err := c.form.UpdateField(field, value); err != nil {
		return err
	}
	if c.fieldErrs != nil {
		delete(c.fieldErrs.Fields, field)
	}
	return nil
}

// Value reads back a form value.
func (c *Controller) Value(field application.Field) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return "", ErrNotOpen
	}
	return c.form.Value(field)
}

// Advance validates the current form step. On the last step a valid form is
// submitted to the consent stage. Validation failures are returned as
// *application.ValidationError and leave the step unchanged.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require("Advance", StageForm); err != nil {
		return err
	}

	outcome, err := c.form.Advance()
	if err == nil && outcome == application.ReadyForConsent {
		var rec application.ApplicationRecord
		rec, err = c.form.Submit()
		if err == nil {
			c.submitted = &rec
			c.consent = consent.New()
			c.transition(StageConsent)
		}
	}

	var verr *application.ValidationError
	if errors.As(err, &verr) {
		// The caller owns verr; UpdateField prunes only the stored copy.
		c.fieldErrs = verr.Clone()
		c.notify(validationNotification(verr))
		c.logger.Debug("form step invalid", map[string]interface{}{
			"step":   verr.Step.String(),
			"fields": verr.FieldNames(),
		})
		return verr
	}
	if err != nil {
		return err
	}

	c.fieldErrs = nil
	return nil
}

// Retreat moves back one form step. It reports whether the step changed.
func (c *Controller) Retreat() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require("Retreat", StageForm); err != nil {
		return false, err
	}
	c.fieldErrs = nil
	return c.form.Retreat(), nil
}

func (c *Controller) SetConsent(flag consent.Flag, value bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require("SetConsent", StageConsent); err != nil {
		return err
	}
	if c.busy {
		return ErrSubmissionInProgress
	}
	return c.consent.Set(flag, value)
}

// Decline returns to the form with the entered record intact.
func (c *Controller) Decline() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require("Decline", StageConsent); err != nil {
		return err
	}
	if c.busy {
		return ErrSubmissionInProgress
	}
	c.consent.Decline()
	c.consent = nil
	c.submitted = nil
	c.notify(consentNotification())
	c.transition(StageForm)
	return nil
}

// Accept finalises consent and submits the application through the gateway.
// Only one submission may be outstanding; a concurrent call returns
// ErrSubmissionInProgress without side effects. On gateway failure the wizard
// stays on the consent stage and the call may be retried.
func (c *Controller) Accept(ctx context.Context) (Receipt, error) {
	c.mu.Lock()
	if err := c.require("Accept", StageConsent); err != nil {
		c.mu.Unlock()
		return Receipt{}, err
	}
	if c.busy {
		c.mu.Unlock()
		return Receipt{}, ErrSubmissionInProgress
	}

	now := c.clock.Now()
	rec, err := c.consent.Accept(now)
	if err != nil {
		c.notify(consentNotification())
		c.mu.Unlock()
		return Receipt{}, err
	}

	sub := Submission{
		ApplicationID: uuid.NewString(),
		UserID:        c.user.ID,
		ListingID:     c.listingID,
		Car:           c.car,
		Dealership:    c.dealership,
		Application:   *c.submitted,
		Consent:       rec,
		SubmittedAt:   now.UTC(),
	}
	c.busy = true
	gen := c.generation
	c.mu.Unlock()

	c.logger.Info("submitting application", map[string]interface{}{"applicationId": sub.ApplicationID})
	start := time.Now()
	receipt, err := c.gateway.Submit(ctx, sub)
	metrics.WizardSubmissionDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		metrics.WizardSubmissions.WithLabelValues("abandoned").Inc()
		return Receipt{}, ErrClosed
	}
	c.busy = false

	if err != nil {
		metrics.WizardSubmissions.WithLabelValues("failed").Inc()
		c.logger.WithError(err).Warn("submission failed", map[string]interface{}{"applicationId": sub.ApplicationID})
		c.notify(failureNotification())
		return Receipt{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	metrics.WizardSubmissions.WithLabelValues("succeeded").Inc()
	c.receipt = &receipt
	c.transition(StageSuccess)
	c.notify(successNotification(c.car, c.dealership))
	c.closeTimer = c.clock.AfterFunc(c.dwell, func() { c.autoClose(gen) })
	return receipt, nil
}

// Dismiss closes the wizard from the success stage before the dwell elapses.
func (c *Controller) Dismiss() error {
	c.mu.Lock()
	if err := c.require("Dismiss", StageSuccess); err != nil {
		c.mu.Unlock()
		return err
	}
	c.reset()
	c.mu.Unlock()

	c.closed()
	return nil
}

func (c *Controller) autoClose(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || !c.open || c.stage != StageSuccess {
		c.mu.Unlock()
		return
	}
	c.logger.Debug("success dwell elapsed", nil)
	c.reset()
	c.mu.Unlock()

	c.closed()
}

// reset clears the records and returns to a closed auth stage. Callers hold mu
// and must call closed after releasing it.
func (c *Controller) reset() {
	if c.closeTimer != nil {
		c.closeTimer.Stop()
		c.closeTimer = nil
	}
	if c.open {
		metrics.WizardsOpen.Dec()
	}
	c.generation++
	c.transition(StageAuth)
	c.open = false
	c.busy = false
	c.user = models.User{}
	c.listingID = ""
	c.car = models.Car{}
	c.dealership = models.Dealership{}
	c.form = nil
	c.consent = nil
	c.submitted = nil
	c.fieldErrs = nil
	c.receipt = nil
}

func (c *Controller) closed() {
	if c.onClose != nil {
		c.onClose(c.id)
	}
}

func (c *Controller) require(op string, want Stage) error {
	if !c.open {
		return ErrNotOpen
	}
	if c.stage != want {
		return fmt.Errorf("%w: %s requires %s stage, wizard is in %s", ErrWrongStage, op, want, c.stage)
	}
	return nil
}

func (c *Controller) transition(to Stage) {
	if c.stage == to {
		return
	}
	metrics.WizardTransitions.WithLabelValues(string(c.stage), string(to)).Inc()
	c.logger.Debug("stage transition", map[string]interface{}{"from": string(c.stage), "to": string(to)})
	c.stage = to
}

func (c *Controller) notify(n Notification) {
	n.WizardID = c.id
	c.notifier.Notify(n)
}

// Snapshot is a read-only view of the wizard for rendering.
type Snapshot struct {
	ID         string                       `json:"id"`
	Open       bool                         `json:"open"`
	Stage      Stage                        `json:"stage"`
	Step       application.Step             `json:"step,omitempty"`
	Busy       bool                         `json:"busy"`
	ListingID  string                       `json:"listingId,omitempty"`
	Car        models.Car                   `json:"car"`
	Dealership models.Dealership            `json:"dealership"`
	Values     map[application.Field]string `json:"values,omitempty"`
	Errors     map[string]string            `json:"errors,omitempty"`
	Consent    *consent.Record              `json:"consent,omitempty"`
	CanAccept  bool                         `json:"canAccept"`
	Receipt    *Receipt                     `json:"receipt,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		ID:         c.id,
		Open:       c.open,
		Stage:      c.stage,
		Busy:       c.busy,
		ListingID:  c.listingID,
		Car:        c.car,
		Dealership: c.dealership,
	}
	if c.form != nil {
		s.Step = c.form.Step()
		rec := c.form.Record()
		s.Values = rec.Values()
	}
	if c.fieldErrs != nil && len(c.fieldErrs.Fields) > 0 {
		s.Errors = c.fieldErrs.Messages()
	}
	if c.consent != nil {
		flags := c.consent.Flags()
		s.Consent = &flags
		s.CanAccept = c.consent.CanAccept()
	}
	if c.receipt != nil {
		r := *c.receipt
		s.Receipt = &r
	}
	return s
}

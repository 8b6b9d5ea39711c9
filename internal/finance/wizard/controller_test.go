package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/finance/consent"
	"car-mzansi-connect/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ==========================
// Test Doubles
// ==========================

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	mu      sync.Mutex
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and fires every live timer that came due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		t.mu.Lock()
		if !t.stopped && t.d <= d {
			t.stopped = true
			due = append(due, t)
		}
		t.mu.Unlock()
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) lastTimer() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   []Submission
	errs    []error
	started chan struct{}
	release chan struct{}
}

func (g *fakeGateway) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	g.mu.Lock()
	g.calls = append(g.calls, sub)
	var err error
	if len(g.errs) > 0 {
		err, g.errs = g.errs[0], g.errs[1:]
	}
	g.mu.Unlock()

	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	}
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{Reference: "FIN-" + sub.ApplicationID[:8], AcceptedAt: sub.SubmittedAt}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (n *recordingNotifier) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, note)
}

func (n *recordingNotifier) kinds() []NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotificationKind, len(n.items))
	for i, it := range n.items {
		out[i] = it.Kind
	}
	return out
}

func (n *recordingNotifier) last() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.items[len(n.items)-1]
}

// ==========================
// Test Helpers
// ==========================

var (
	testUser       = models.User{ID: "user-1", Name: "Thandi Nkosi", Email: "thandi@example.co.za"}
	testCar        = models.Car{Make: "BMW", Model: "320i M Sport", Year: 2022, Price: 599000}
	testDealership = models.Dealership{Name: "Premium Motors JHB", Location: "Sandton, Johannesburg"}
)

func signedIn() SessionAccessor {
	return SessionFunc(func(context.Context) (models.User, bool) { return testUser, true })
}

func signedOut() SessionAccessor {
	return SessionFunc(func(context.Context) (models.User, bool) { return models.User{}, false })
}

type harness struct {
	ctrl     *Controller
	clock    *fakeClock
	gateway  *fakeGateway
	notifier *recordingNotifier
	closed   chan string
}

func newHarness(t *testing.T, session SessionAccessor) *harness {
	t.Helper()
	h := &harness{
		clock:    newFakeClock(),
		gateway:  &fakeGateway{},
		notifier: &recordingNotifier{},
		closed:   make(chan string, 4),
	}
	h.ctrl = New(session, h.gateway,
		WithClock(h.clock),
		WithNotifier(h.notifier),
		WithLogger(logger.NewTestLogger(t)),
		WithCloseHook(func(id string) { h.closed <- id }),
	)
	return h
}

func validAnswers() map[application.Field]string {
	return map[application.Field]string{
		application.FieldFirstName:       "Thandi",
		application.FieldLastName:        "Nkosi",
		application.FieldIDNumber:        "8001015009087",
		application.FieldEmail:           "thandi@example.co.za",
		application.FieldPhone:           "0821234567",
		application.FieldAddress:         "12 Rivonia Road, Sandton, Johannesburg",
		application.FieldMonthlyIncome:   "45000",
		application.FieldEmployer:        "Standard Bank",
		application.FieldBankName:        "FNB",
		application.FieldMonthlyExpenses: "15000",
		application.FieldDepositAmount:   "50000",
	}
}

func fillAndAdvanceToConsent(t *testing.T, c *Controller) {
	t.Helper()
	for f, v := range validAnswers() {
		require.NoError(t, c.UpdateField(f, v))
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, c.Advance())
	}
	require.Equal(t, StageConsent, c.Snapshot().Stage)
}

func grantMandatory(t *testing.T, c *Controller) {
	t.Helper()
	for _, f := range consent.Mandatory {
		require.NoError(t, c.SetConsent(f, true))
	}
}

// ==========================
// Entry and Auth Gate
// ==========================

func TestOpen_WithSessionEntersForm(t *testing.T) {
	h := newHarness(t, signedIn())

	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))

	snap := h.ctrl.Snapshot()
	assert.True(t, snap.Open)
	assert.Equal(t, StageForm, snap.Stage)
	assert.Equal(t, application.StepPersonal, snap.Step)
	assert.Equal(t, "60", snap.Values[application.FieldPreferredLoanTerm])
}

func TestOpen_WithoutSessionEntersAuth(t *testing.T) {
	var present bool
	var mu sync.Mutex
	session := SessionFunc(func(context.Context) (models.User, bool) {
		mu.Lock()
		defer mu.Unlock()
		return testUser, present
	})
	h := newHarness(t, session)

	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	assert.Equal(t, StageAuth, h.ctrl.Snapshot().Stage)

	err := h.ctrl.UpdateField(application.FieldFirstName, "Thandi")
	assert.True(t, errors.Is(err, ErrWrongStage))

	assert.True(t, errors.Is(h.ctrl.AuthSucceeded(context.Background()), ErrAuthRequired))
	assert.Equal(t, StageAuth, h.ctrl.Snapshot().Stage)

	mu.Lock()
	present = true
	mu.Unlock()

	require.NoError(t, h.ctrl.AuthSucceeded(context.Background()))
	assert.Equal(t, StageForm, h.ctrl.Snapshot().Stage)
}

func TestOpen_Twice(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))

	assert.True(t, errors.Is(h.ctrl.Open(context.Background(), testCar, testDealership), ErrAlreadyOpen))
}

func TestOperations_RequireOpenWizard(t *testing.T) {
	h := newHarness(t, signedIn())

	assert.True(t, errors.Is(h.ctrl.Advance(), ErrNotOpen))
	assert.True(t, errors.Is(h.ctrl.Close(), ErrNotOpen))
	_, err := h.ctrl.Accept(context.Background())
	assert.True(t, errors.Is(err, ErrNotOpen))
	assert.True(t, errors.Is(h.ctrl.Dismiss(), ErrNotOpen))
}

// ==========================
// Form Stage
// ==========================

func TestAdvance_InvalidStepStaysPut(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	require.NoError(t, h.ctrl.UpdateField(application.FieldIDNumber, "12345"))

	err := h.ctrl.Advance()

	var verr *application.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldNames(), application.FieldIDNumber)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, application.StepPersonal, snap.Step)
	assert.Equal(t, "ID number must be 13 digits", snap.Errors["idNumber"])
	assert.Equal(t, []NotificationKind{KindValidation}, h.notifier.kinds())

	require.NoError(t, h.ctrl.UpdateField(application.FieldIDNumber, "8001015009087"))
	_, stillFlagged := h.ctrl.Snapshot().Errors["idNumber"]
	assert.False(t, stillFlagged)
}

func TestAdvance_ReturnedErrorIsNotPrunedByLaterEdits(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))

	var verr *application.ValidationError
	require.ErrorAs(t, h.ctrl.Advance(), &verr)
	before := verr.FieldNames()
	require.Contains(t, before, application.FieldFirstName)

	require.NoError(t, h.ctrl.UpdateField(application.FieldFirstName, "Thandi"))

	assert.Equal(t, before, verr.FieldNames())
	_, stillFlagged := h.ctrl.Snapshot().Errors["firstName"]
	assert.False(t, stillFlagged)
}

func TestAdvance_ConcurrentWithUpdateField(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			var verr *application.ValidationError
			if errors.As(h.ctrl.Advance(), &verr) {
				for f, res := range verr.Fields {
					_ = f
					_ = res.Message
				}
				_ = verr.Error()
			}
		}()
		go func() {
			defer wg.Done()
			_ = h.ctrl.UpdateField(application.FieldFirstName, "Thandi")
			_ = h.ctrl.UpdateField(application.FieldLastName, "Nkosi")
		}()
	}
	wg.Wait()

	assert.Equal(t, StageForm, h.ctrl.Snapshot().Stage)
}

func TestAdvance_LastStepGoesToConsentNotSuccess(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))

	fillAndAdvanceToConsent(t, h.ctrl)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, StageConsent, snap.Stage)
	assert.False(t, snap.CanAccept)
	require.NotNil(t, snap.Consent)
	assert.Equal(t, 0, h.gateway.callCount())
}

func TestRetreat(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))

	moved, err := h.ctrl.Retreat()
	require.NoError(t, err)
	assert.False(t, moved)

	for f, v := range validAnswers() {
		require.NoError(t, h.ctrl.UpdateField(f, v))
	}
	require.NoError(t, h.ctrl.Advance())

	moved, err = h.ctrl.Retreat()
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, application.StepPersonal, h.ctrl.Snapshot().Step)
}

// ==========================
// Consent Stage
// ==========================

func TestAccept_IncompleteConsent(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	fillAndAdvanceToConsent(t, h.ctrl)

	require.NoError(t, h.ctrl.SetConsent(consent.DataProcessing, true))
	require.NoError(t, h.ctrl.SetConsent(consent.MarketingCommunication, true))

	_, err := h.ctrl.Accept(context.Background())

	assert.True(t, errors.Is(err, consent.ErrConsentIncomplete))
	assert.Equal(t, StageConsent, h.ctrl.Snapshot().Stage)
	assert.Equal(t, 0, h.gateway.callCount())
	assert.Equal(t, "Consent Required", h.notifier.last().Title)
}

func TestAccept_MarketingNotRequired(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	fillAndAdvanceToConsent(t, h.ctrl)
	grantMandatory(t, h.ctrl)
	require.NoError(t, h.ctrl.SetConsent(consent.MarketingCommunication, false))

	_, err := h.ctrl.Accept(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageSuccess, h.ctrl.Snapshot().Stage)

	require.NoError(t, h.ctrl.Dismiss())
}

func TestDecline_ReturnsToFormWithRecordIntact(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	fillAndAdvanceToConsent(t, h.ctrl)
	grantMandatory(t, h.ctrl)

	require.NoError(t, h.ctrl.Decline())

	snap := h.ctrl.Snapshot()
	assert.Equal(t, StageForm, snap.Stage)
	assert.Equal(t, application.StepLoan, snap.Step)
	assert.Nil(t, snap.Consent)
	for f, want := range validAnswers() {
		got, err := h.ctrl.Value(f)
		require.NoError(t, err)
		assert.Equal(t, want, got, f)
	}
	assert.Equal(t, "You must accept the privacy policy to submit your application.", h.notifier.last().Description)

	// consent starts over on re-entry
	require.NoError(t, h.ctrl.Advance())
	assert.False(t, h.ctrl.Snapshot().CanAccept)
}

// ==========================
// Submission
// ==========================

func TestAccept_AtMostOneOutstandingSubmission(t *testing.T) {
	h := newHarness(t, signedIn())
	h.gateway.started = make(chan struct{}, 1)
	h.gateway.release = make(chan struct{})

	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	fillAndAdvanceToConsent(t, h.ctrl)
	grantMandatory(t, h.ctrl)

	type result struct {
		receipt Receipt
		err     error
	}
	done := make(chan result, 1)
	go func() {
		r, err := h.ctrl.Accept(context.Background())
		done <- result{r, err}
	}()
	<-h.gateway.started

	assert.True(t, h.ctrl.Snapshot().Busy)
	for i := 0; i < 3; i++ {
		_, err := h.ctrl.Accept(context.Background())
		assert.True(t, errors.Is(err, ErrSubmissionInProgress))
	}
	assert.True(t, errors.Is(h.ctrl.Decline(), ErrSubmissionInProgress))

	close(h.gateway.release)
	res := <-done
	require.NoError(t, res.err)
	assert.NotEmpty(t, res.receipt.Reference)
	assert.Equal(t, 1, h.gateway.callCount())
	assert.False(t, h.ctrl.Snapshot().Busy)

	require.NoError(t, h.ctrl.Dismiss())
}

func TestAccept_FailureKeepsConsentAndAllowsRetry(t *testing.T) {
	h := newHarness(t, signedIn())
	gatewayErr := errors.New("dealer endpoint unavailable")
	h.gateway.errs = []error{gatewayErr}

	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	fillAndAdvanceToConsent(t, h.ctrl)
	grantMandatory(t, h.ctrl)

	_, err := h.ctrl.Accept(context.Background())
	assert.True(t, errors.Is(err, ErrSubmissionFailed))
	assert.True(t, errors.Is(err, gatewayErr))

	snap := h.ctrl.Snapshot()
	assert.Equal(t, StageConsent, snap.Stage)
	assert.False(t, snap.Busy)
	assert.True(t, snap.CanAccept)
	assert.Equal(t, "Submission Failed", h.notifier.last().Title)

	_, err = h.ctrl.Accept(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageSuccess, h.ctrl.Snapshot().Stage)
	assert.Equal(t, 2, h.gateway.callCount())

	require.NoError(t, h.ctrl.Dismiss())
}

func TestClose_DuringSubmissionDiscardsResult(t *testing.T) {
	h := newHarness(t, signedIn())
	h.gateway.started = make(chan struct{}, 1)
	h.gateway.release = make(chan struct{})

	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	fillAndAdvanceToConsent(t, h.ctrl)
	grantMandatory(t, h.ctrl)

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Accept(context.Background())
		done <- err
	}()
	<-h.gateway.started

	require.NoError(t, h.ctrl.Close())
	assert.Equal(t, h.ctrl.ID(), <-h.closed)

	close(h.gateway.release)
	assert.True(t, errors.Is(<-done, ErrClosed))

	snap := h.ctrl.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, StageAuth, snap.Stage)
	assert.Nil(t, h.clock.lastTimer())
}

// ==========================
// Success Stage
// ==========================

func TestSuccess_AutoClosesAfterDwell(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	fillAndAdvanceToConsent(t, h.ctrl)
	grantMandatory(t, h.ctrl)

	_, err := h.ctrl.Accept(context.Background())
	require.NoError(t, err)
	require.NotNil(t, h.clock.lastTimer())
	assert.Equal(t, DefaultSuccessDwell, h.clock.lastTimer().d)

	h.clock.Advance(2 * time.Second)
	assert.Equal(t, StageSuccess, h.ctrl.Snapshot().Stage)

	h.clock.Advance(DefaultSuccessDwell)
	assert.Equal(t, h.ctrl.ID(), <-h.closed)

	snap := h.ctrl.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, StageAuth, snap.Stage)
	assert.Empty(t, snap.Values)
}

func TestDismiss_StopsTimerAndIgnoresLateFire(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	fillAndAdvanceToConsent(t, h.ctrl)
	grantMandatory(t, h.ctrl)
	_, err := h.ctrl.Accept(context.Background())
	require.NoError(t, err)

	timer := h.clock.lastTimer()
	require.NoError(t, h.ctrl.Dismiss())
	<-h.closed
	assert.False(t, timer.Stop(), "dismiss should have stopped the dwell timer")

	// reopen, then simulate the stale callback racing in
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))
	timer.f()

	assert.True(t, h.ctrl.Snapshot().Open)
	assert.Len(t, h.closed, 0)
}

func TestDismiss_WrongStage(t *testing.T) {
	h := newHarness(t, signedIn())
	require.NoError(t, h.ctrl.Open(context.Background(), testCar, testDealership))

	assert.True(t, errors.Is(h.ctrl.Dismiss(), ErrWrongStage))
}

// ==========================
// End to End
// ==========================

func TestEndToEnd_BMWPremiumMotors(t *testing.T) {
	h := newHarness(t, signedIn())
	ctx := context.Background()

	require.NoError(t, h.ctrl.OpenListing(ctx, models.Listing{ID: "listing-1", Car: testCar, Dealership: testDealership}))
	assert.Equal(t, StageForm, h.ctrl.Snapshot().Stage)

	steps := []map[application.Field]string{
		{
			application.FieldFirstName: "Thandi",
			application.FieldLastName:  "Nkosi",
			application.FieldIDNumber:  "8001015009087",
			application.FieldEmail:     "thandi@example.co.za",
			application.FieldPhone:     "0821234567",
			application.FieldAddress:   "12 Rivonia Road, Sandton, Johannesburg",
		},
		{
			application.FieldEmploymentStatus: "employed",
			application.FieldEmployer:         "Standard Bank",
			application.FieldJobTitle:         "Analyst",
			application.FieldMonthlyIncome:    "45000",
		},
		{
			application.FieldBankName:        "FNB",
			application.FieldAccountType:     "current",
			application.FieldMonthlyExpenses: "15000",
		},
		{
			application.FieldPreferredLoanTerm: "60",
			application.FieldDepositAmount:     "50000",
			application.FieldIntendedUse:       "personal",
		},
	}
	for _, answers := range steps {
		for f, v := range answers {
			require.NoError(t, h.ctrl.UpdateField(f, v))
		}
		require.NoError(t, h.ctrl.Advance())
	}
	assert.Equal(t, StageConsent, h.ctrl.Snapshot().Stage)

	grantMandatory(t, h.ctrl)
	_, err := h.ctrl.Accept(ctx)
	require.NoError(t, err)
	assert.Equal(t, StageSuccess, h.ctrl.Snapshot().Stage)

	require.Len(t, h.gateway.calls, 1)
	sub := h.gateway.calls[0]
	want := Submission{
		UserID:     "user-1",
		ListingID:  "listing-1",
		Car:        testCar,
		Dealership: testDealership,
		Application: application.ApplicationRecord{
			FirstName:         "Thandi",
			LastName:          "Nkosi",
			IDNumber:          "8001015009087",
			Email:             "thandi@example.co.za",
			Phone:             "0821234567",
			Address:           "12 Rivonia Road, Sandton, Johannesburg",
			EmploymentStatus:  application.EmploymentEmployed,
			Employer:          "Standard Bank",
			JobTitle:          "Analyst",
			MonthlyIncome:     "45000",
			BankName:          "FNB",
			AccountType:       application.AccountCurrent,
			MonthlyExpenses:   "15000",
			PreferredLoanTerm: application.LoanTerm60,
			DepositAmount:     "50000",
			IntendedUse:       application.UsePersonal,
		},
		Consent: consent.Record{
			DataProcessing:    true,
			ThirdPartySharing: true,
			DataRetention:     true,
			Timestamp:         h.clock.Now(),
		},
		SubmittedAt: h.clock.Now(),
	}
	if diff := cmp.Diff(want, sub, cmpopts.IgnoreFields(Submission{}, "ApplicationID")); diff != "" {
		t.Errorf("submission mismatch (-want +got):\n%s", diff)
	}

	note := h.notifier.last()
	assert.Equal(t, "Application Submitted Successfully!", note.Title)
	assert.Equal(t, "Your application for the 2022 BMW 320i M Sport has been sent to Premium Motors JHB. They will contact you within 24 hours.", note.Description)

	h.clock.Advance(DefaultSuccessDwell)
	<-h.closed

	snap := h.ctrl.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, StageAuth, snap.Stage)
	assert.Empty(t, snap.Values)

	require.NoError(t, h.ctrl.Open(ctx, testCar, testDealership))
	snap = h.ctrl.Snapshot()
	assert.Equal(t, StageForm, snap.Stage)
	assert.Equal(t, "", snap.Values[application.FieldFirstName])
}

func TestControllers_AreIndependent(t *testing.T) {
	a := newHarness(t, signedIn())
	b := newHarness(t, signedOut())

	require.NoError(t, a.ctrl.Open(context.Background(), testCar, testDealership))
	require.NoError(t, b.ctrl.Open(context.Background(), testCar, testDealership))
	require.NoError(t, a.ctrl.UpdateField(application.FieldFirstName, "Thandi"))

	assert.Equal(t, StageForm, a.ctrl.Snapshot().Stage)
	assert.Equal(t, StageAuth, b.ctrl.Snapshot().Stage)
	assert.NotEqual(t, a.ctrl.ID(), b.ctrl.ID())
}

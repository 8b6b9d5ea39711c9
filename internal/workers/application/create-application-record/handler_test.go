// internal/workers/application/create-application-record/handler_test.go
package createapplicationrecord

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/events"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/finance/consent"
	"car-mzansi-connect/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type publishedEvent struct {
	topic, key, eventType string
	payload               interface{}
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, topic, key, eventType string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{topic, key, eventType, payload})
	return nil
}

func createTestInput() *Input {
	rec := application.NewRecord()
	rec.FirstName = "Thandi"
	rec.LastName = "Nkosi"
	rec.Email = "thandi@example.co.za"
	affordable := true
	return &Input{
		ApplicationID: "app-001",
		UserID:        "user-001",
		ListingID:     "1",
		Reference:     "FIN-APP001",
		Car:           models.Car{Make: "BMW", Model: "320i M Sport", Year: 2022, Price: 599000},
		Dealership:    models.Dealership{ID: "dealer-1", Name: "Premium Motors Sandton"},
		Application:   rec,
		Consent:       consent.Record{DataProcessing: true, ThirdPartySharing: true, DataRetention: true},
		Affordable:    &affordable,
	}
}

func newTestHandler(t *testing.T, pub events.Publisher) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(LoadConfig("finance-applications"), db, pub, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	return h, mock
}

func expectNoExisting(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT application_id, status, created_at FROM finance_applications`).
		WithArgs("user-001", "1").
		WillReturnRows(sqlmock.NewRows([]string{"application_id", "status", "created_at"}))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	pub := &fakePublisher{}
	h, mock := newTestHandler(t, pub)

	expectNoExisting(mock)
	mock.ExpectExec(`INSERT INTO finance_applications`).
		WithArgs("app-001", "user-001", "1", "dealer-1",
			sqlmock.AnyArg(), sqlmock.AnyArg(), true, "submitted", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("finance_application", "app-001", "created", "user-001").
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, "app-001", output.ApplicationID)
	assert.Equal(t, models.ApplicationStatusSubmitted, output.ApplicationStatus)
	assert.Equal(t, "2025-03-14T09:30:00Z", output.CreatedAt)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "finance-applications", pub.events[0].topic)
	assert.Equal(t, "app-001", pub.events[0].key)
	assert.Equal(t, events.TypeApplicationSubmitted, pub.events[0].eventType)
	assert.Equal(t, "2022 BMW 320i M Sport", pub.events[0].payload.(submittedEvent).Car)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UnaffordableIsReferred(t *testing.T) {
	h, mock := newTestHandler(t, &fakePublisher{})
	input := createTestInput()
	affordable := false
	input.Affordable = &affordable

	expectNoExisting(mock)
	mock.ExpectExec(`INSERT INTO finance_applications`).
		WithArgs("app-001", "user-001", "1", "dealer-1",
			sqlmock.AnyArg(), sqlmock.AnyArg(), false, "referred", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusReferred, output.ApplicationStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DuplicateApplication(t *testing.T) {
	pub := &fakePublisher{}
	h, mock := newTestHandler(t, pub)

	mock.ExpectQuery(`SELECT application_id`).
		WithArgs("user-001", "1").
		WillReturnRows(sqlmock.NewRows([]string{"application_id", "status", "created_at"}).
			AddRow("app-000", "submitted", time.Now()))

	output, err := h.Execute(context.Background(), createTestInput())
	assert.Nil(t, output)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDuplicateApplication, stdErr.Code)
	assert.Equal(t, "app-000", stdErr.Details)
	assert.False(t, stdErr.Retryable)
	assert.Empty(t, pub.events)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ReplayIsIdempotent(t *testing.T) {
	pub := &fakePublisher{}
	h, mock := newTestHandler(t, pub)
	created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT application_id`).
		WithArgs("user-001", "1").
		WillReturnRows(sqlmock.NewRows([]string{"application_id", "status", "created_at"}).
			AddRow("app-001", "submitted", created))

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14T09:00:00Z", output.CreatedAt)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_DuplicateCheckError(t *testing.T) {
	h, mock := newTestHandler(t, &fakePublisher{})

	mock.ExpectQuery(`SELECT application_id`).
		WithArgs("user-001", "1").
		WillReturnError(stderrors.New("database connection failed"))

	_, err := h.Execute(context.Background(), createTestInput())
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeQueryExecutionFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InsertError(t *testing.T) {
	h, mock := newTestHandler(t, &fakePublisher{})

	expectNoExisting(mock)
	mock.ExpectExec(`INSERT INTO finance_applications`).
		WillReturnError(stderrors.New("insert failed"))

	_, err := h.Execute(context.Background(), createTestInput())
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "insert failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ConcurrentInsertIsDuplicate(t *testing.T) {
	pub := &fakePublisher{}
	h, mock := newTestHandler(t, pub)

	expectNoExisting(mock)
	mock.ExpectExec(`INSERT INTO finance_applications`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "finance_applications_user_listing_key"})
	mock.ExpectQuery(`SELECT application_id`).
		WithArgs("user-001", "1").
		WillReturnRows(sqlmock.NewRows([]string{"application_id", "status", "created_at"}).
			AddRow("app-002", "submitted", time.Now()))

	output, err := h.Execute(context.Background(), createTestInput())
	assert.Nil(t, output)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDuplicateApplication, stdErr.Code)
	assert.Equal(t, "app-002", stdErr.Details)
	assert.False(t, stdErr.Retryable)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ConcurrentReplayIsIdempotent(t *testing.T) {
	pub := &fakePublisher{}
	h, mock := newTestHandler(t, pub)
	created := time.Date(2025, 3, 14, 9, 29, 0, 0, time.UTC)

	expectNoExisting(mock)
	mock.ExpectExec(`INSERT INTO finance_applications`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(`SELECT application_id`).
		WithArgs("user-001", "1").
		WillReturnRows(sqlmock.NewRows([]string{"application_id", "status", "created_at"}).
			AddRow("app-001", "submitted", created))

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, "app-001", output.ApplicationID)
	assert.Equal(t, "2025-03-14T09:29:00Z", output.CreatedAt)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AuditAndPublishFailuresAreTolerated(t *testing.T) {
	h, mock := newTestHandler(t, &fakePublisher{err: stderrors.New("broker down")})
	input := createTestInput()
	input.Affordable = nil

	expectNoExisting(mock)
	mock.ExpectExec(`INSERT INTO finance_applications`).
		WithArgs("app-001", "user-001", "1", "dealer-1",
			sqlmock.AnyArg(), sqlmock.AnyArg(), nil, "submitted", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnError(stderrors.New("audit log failed"))

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "app-001", output.ApplicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/events"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/models"
	"car-mzansi-connect/internal/workers/jobs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
)

const (
	TaskType = "create-application-record"

	uniqueViolation = "23505"
)

type Handler struct {
	config     *Config
	db         *sql.DB
	publisher  events.Publisher
	now        func() time.Time
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, publisher events.Publisher, log logger.Logger) *Handler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		publisher:  publisher,
		now:        time.Now,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	jobs.Started(h.logger, job)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := jobs.Decode(job, &input); err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}
	return jobs.Complete(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	status := models.ApplicationStatusSubmitted
	if input.Affordable != nil && !*input.Affordable {
		status = models.ApplicationStatusReferred
	}

	// One application per user and listing. A replay of the same job finds
	// its own row and completes without inserting again.
	if output, err := h.existing(ctx, input); output != nil || err != nil {
		return output, err
	}

	applicationJSON, err := json.Marshal(input.Application)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("marshal application: %w", err))
	}
	consentJSON, err := json.Marshal(input.Consent)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(fmt.Errorf("marshal consent: %w", err))
	}

	createdAt := h.now().UTC()
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO finance_applications (
			application_id, user_id, listing_id, dealership_id,
			application, consent, affordable, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		input.ApplicationID,
		input.UserID,
		input.ListingID,
		input.Dealership.ID,
		applicationJSON,
		consentJSON,
		nullableBool(input.Affordable),
		status,
		createdAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			// A concurrent job inserted first; report it the way the pre-check would.
			if output, lookupErr := h.existing(ctx, input); output != nil || lookupErr != nil {
				return output, lookupErr
			}
			return nil, errors.NewDuplicateApplicationError(input.ApplicationID).
				WithMetadata("userId", input.UserID).
				WithMetadata("listingId", input.ListingID)
		}
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	// audit trail is best effort
	if _, err := h.db.ExecContext(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, actor_id)
		VALUES ($1, $2, $3, $4)`,
		"finance_application", input.ApplicationID, "created", input.UserID,
	); err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err.Error(),
			"applicationId": input.ApplicationID,
		})
	}

	if h.config.Topic != "" {
		err := h.publisher.Publish(ctx, h.config.Topic, input.ApplicationID, events.TypeApplicationSubmitted, submittedEvent{
			ApplicationID: input.ApplicationID,
			Reference:     input.Reference,
			UserID:        input.UserID,
			ListingID:     input.ListingID,
			DealershipID:  input.Dealership.ID,
			Car:           input.Car.Title(),
			Status:        status,
		})
		if err != nil {
			h.logger.Warn("application event not published", map[string]interface{}{
				"error":         err.Error(),
				"applicationId": input.ApplicationID,
			})
		}
	}

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"userId":        input.UserID,
		"listingId":     input.ListingID,
		"status":        status,
	})

	return &Output{
		ApplicationID:     input.ApplicationID,
		ApplicationStatus: status,
		CreatedAt:         createdAt.Format(time.RFC3339),
	}, nil
}

// existing returns the stored output when this job already wrote its row, and
// a duplicate error when another application holds the (user, listing) pair.
// Both results are nil when no row exists.
func (h *Handler) existing(ctx context.Context, input *Input) (*Output, error) {
	var existingID, existingStatus string
	var existingAt time.Time
	err := h.db.QueryRowContext(ctx, `
		SELECT application_id, status, created_at FROM finance_applications
		WHERE user_id = $1 AND listing_id = $2
		LIMIT 1`, input.UserID, input.ListingID).Scan(&existingID, &existingStatus, &existingAt)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, errors.NewQueryExecutionFailedError("duplicate-check", err)
	case existingID == input.ApplicationID:
		h.logger.Info("application record already exists", map[string]interface{}{
			"applicationId": existingID,
		})
		return &Output{
			ApplicationID:     existingID,
			ApplicationStatus: existingStatus,
			CreatedAt:         existingAt.UTC().Format(time.RFC3339),
		}, nil
	default:
		return nil, errors.NewDuplicateApplicationError(existingID).
			WithMetadata("userId", input.UserID).
			WithMetadata("listingId", input.ListingID)
	}
}

func nullableBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

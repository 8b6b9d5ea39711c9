// internal/workers/marketplace/submit-review/handler.go
package submitreview

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/events"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/models"
	"car-mzansi-connect/internal/workers/jobs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "submit-review"
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
	review := models.Review{
		ID:           uuid.New().String(),
		DealershipID: input.DealershipID,
		UserID:       input.UserID,
		Rating:       input.Rating,
		Title:        strings.TrimSpace(input.Title),
		Content:      strings.TrimSpace(input.Content),
	}
	if problems := h.validate(review); len(problems) > 0 {
		return nil, errors.NewReviewInvalidError(strings.Join(problems, "; "))
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO reviews (review_id, dealership_id, user_id, rating, title, content)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.DealershipID, review.UserID, review.Rating, review.Title, review.Content,
	)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	if h.config.Topic != "" {
		if err := h.publisher.Publish(ctx, h.config.Topic, review.DealershipID, events.TypeReviewSubmitted, review); err != nil {
			h.logger.Warn("review event not published", map[string]interface{}{
				"error":    err.Error(),
				"reviewId": review.ID,
			})
		}
	}

	h.logger.Info("review submitted", map[string]interface{}{
		"reviewId":     review.ID,
		"dealershipId": review.DealershipID,
		"rating":       review.Rating,
	})

	return &Output{
		ReviewID:    review.ID,
		RatingLabel: models.RatingLabel(review.Rating),
		SubmittedAt: h.now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) validate(r models.Review) []string {
	var problems []string
	if r.DealershipID == "" {
		problems = append(problems, "dealershipId is required")
	}
	if r.UserID == "" {
		problems = append(problems, "sign in to leave a review")
	}
	if r.Rating < 1 || r.Rating > 5 {
		problems = append(problems, "rating must be between 1 and 5")
	}
	if r.Title == "" {
		problems = append(problems, "title is required")
	} else if utf8.RuneCountInString(r.Title) > h.config.MaxTitleLength {
		problems = append(problems, fmt.Sprintf("title must be at most %d characters", h.config.MaxTitleLength))
	}
	if r.Content == "" {
		problems = append(problems, "content is required")
	} else if utf8.RuneCountInString(r.Content) > h.config.MaxContentLength {
		problems = append(problems, fmt.Sprintf("content must be at most %d characters", h.config.MaxContentLength))
	}
	return problems
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

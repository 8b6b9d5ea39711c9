// internal/workers/marketplace/book-test-drive/handler.go
package booktestdrive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/events"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/models"
	"car-mzansi-connect/internal/workers/jobs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "book-test-drive"
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
	slot, problems := h.validate(input)
	if len(problems) > 0 {
		return nil, errors.NewBookingInvalidError(strings.Join(problems, "; "))
	}

	booking := models.TestDriveBooking{
		ID:           uuid.New().String(),
		ListingID:    input.ListingID,
		DealershipID: input.DealershipID,
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Slot:         slot,
		Message:      strings.TrimSpace(input.Message),
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO test_drive_bookings (
			booking_id, listing_id, dealership_id, name, email, phone, slot, message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		booking.ID, booking.ListingID, booking.DealershipID,
		booking.Name, booking.Email, booking.Phone, booking.Slot, booking.Message,
	)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	if h.config.Topic != "" {
		if err := h.publisher.Publish(ctx, h.config.Topic, booking.DealershipID, events.TypeTestDriveBooked, booking); err != nil {
			h.logger.Warn("booking event not published", map[string]interface{}{
				"error":     err.Error(),
				"bookingId": booking.ID,
			})
		}
	}

	h.logger.Info("test drive booked", map[string]interface{}{
		"bookingId": booking.ID,
		"listingId": booking.ListingID,
		"slot":      slot.Format(time.RFC3339),
	})

	return &Output{
		BookingID: booking.ID,
		Slot:      slot.Format(time.RFC3339),
		Status:    StatusBooked,
	}, nil
}

// validate returns the booked slot and any problems with the request.
func (h *Handler) validate(input *Input) (time.Time, []string) {
	var problems []string
	if input.ListingID == "" {
		problems = append(problems, "listingId is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		problems = append(problems, "name is required")
	}
	if res := application.Validate(application.FieldEmail, input.Email); !res.Valid {
		problems = append(problems, "email: "+res.Message)
	}
	if res := application.Validate(application.FieldPhone, input.Phone); !res.Valid {
		problems = append(problems, "phone: "+res.Message)
	}

	loc := h.config.Location
	day, err := time.ParseInLocation("2006-01-02", input.Date, loc)
	if err != nil {
		return time.Time{}, append(problems, "date must be YYYY-MM-DD")
	}
	now := h.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		problems = append(problems, "date cannot be in the past")
	}

	slot, err := time.ParseInLocation("2006-01-02 15:04", input.Date+" "+input.Time, loc)
	if err != nil || slot.Minute() != 0 || slot.Hour() < h.config.FirstSlot || slot.Hour() > h.config.LastSlot {
		problems = append(problems, fmt.Sprintf("time must be a whole hour from %02d:00 to %02d:00", h.config.FirstSlot, h.config.LastSlot))
	} else if !day.Before(today) && !slot.After(now) {
		problems = append(problems, "time slot has already passed")
	}
	return slot, problems
}

// Slots lists the bookable times of day.
func (c *Config) Slots() []string {
	out := make([]string, 0, c.LastSlot-c.FirstSlot+1)
	for hr := c.FirstSlot; hr <= c.LastSlot; hr++ {
		out = append(out, fmt.Sprintf("%02d:00", hr))
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// internal/workers/marketplace/search-listings/handler.go
package searchlistings

import (
	"context"
	stderrors "errors"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/marketplace/listings"
	"car-mzansi-connect/internal/workers/jobs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "search-listings"
)

type Handler struct {
	config     *Config
	catalogue  listings.Catalogue
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, catalogue listings.Catalogue, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		catalogue:  catalogue,
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
	active := 0
	if input.Filters != nil {
		if err := input.Filters.Validate(); err != nil {
			return nil, errors.NewInvalidFilterFormatError(err.Error())
		}
		active = input.Filters.ActiveCount()
	}

	found, err := h.catalogue.Search(ctx, input.Query, input.Filters)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewSearchTimeoutError(h.config.Index)
		}
		return nil, errors.NewSearchQueryFailedError(h.config.Index, err)
	}

	total := len(found)
	if h.config.Limit > 0 && len(found) > h.config.Limit {
		found = found[:h.config.Limit]
	}

	out := &Output{Listings: make([]ListingSummary, 0, len(found)), Total: total, ActiveFilters: active}
	for _, l := range found {
		s := ListingSummary{
			ID:         l.ID,
			Title:      l.Car.Title(),
			Price:      listings.FormatRand(l.Car.Price),
			Mileage:    l.Car.Mileage,
			Dealership: l.Dealership.Name,
			Location:   l.Dealership.Location,
			Verified:   l.Dealership.Verified,
			Rating:     l.Dealership.Rating,
		}
		if l.Dealership.Phone != "" {
			s.WhatsAppLink = listings.WhatsAppLink(l.Dealership.Phone, listings.InquiryMessage(l.Car, l.Dealership))
		}
		out.Listings = append(out.Listings, s)
	}

	h.logger.Debug("listings searched", map[string]interface{}{
		"query":         input.Query,
		"activeFilters": active,
		"total":         total,
	})
	return out, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

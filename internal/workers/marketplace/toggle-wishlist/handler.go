// internal/workers/marketplace/toggle-wishlist/handler.go
package togglewishlist

import (
	"context"
	stderrors "errors"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/marketplace/listings"
	"car-mzansi-connect/internal/workers/jobs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "toggle-wishlist"
)

// Handler flips a listing in and out of the user's wishlist, a Redis set
// keyed by user ID.
type Handler struct {
	config     *Config
	redis      redis.Cmdable
	catalogue  listings.Catalogue
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, rdb redis.Cmdable, catalogue listings.Catalogue, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		redis:      rdb,
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
	if input.UserID == "" {
		return nil, errors.NewAuthRequiredError("sign in to save cars to your wishlist")
	}
	if h.catalogue != nil {
		if _, err := h.catalogue.Get(ctx, input.ListingID); err != nil {
			if stderrors.Is(err, listings.ErrListingNotFound) {
				return nil, errors.NewInvalidFilterFormatError("unknown listing " + input.ListingID)
			}
			return nil, err
		}
	}

	key := h.config.KeyPrefix + input.UserID

	added, err := h.redis.SAdd(ctx, key, input.ListingID).Result()
	if err != nil {
		return nil, errors.NewCacheOperationFailedError("sadd", err)
	}
	wishlisted := added == 1
	if !wishlisted {
		if err := h.redis.SRem(ctx, key, input.ListingID).Err(); err != nil {
			return nil, errors.NewCacheOperationFailedError("srem", err)
		}
	}

	count, err := h.redis.SCard(ctx, key).Result()
	if err != nil {
		return nil, errors.NewCacheOperationFailedError("scard", err)
	}

	h.logger.Info("wishlist toggled", map[string]interface{}{
		"userId":     input.UserID,
		"listingId":  input.ListingID,
		"wishlisted": wishlisted,
	})

	return &Output{ListingID: input.ListingID, Wishlisted: wishlisted, Count: count}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

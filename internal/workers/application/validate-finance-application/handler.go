// internal/workers/application/validate-finance-application/handler.go
package validatefinanceapplication

import (
	"context"
	"strings"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/common/validation"
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/workers/jobs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-finance-application"
)

// Handler re-validates a submitted application server side: document shape
// against the submission schema, every field rule, and the mandatory consents.
type Handler struct {
	config   *Config
	logger   logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		logger:   log,
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	var fieldErrors []FieldError

	schemaResult, err := validation.ValidateFinanceSubmission(input)
	if err != nil {
		return nil, err
	}
	for _, e := range schemaResult.Errors {
		fieldErrors = append(fieldErrors, FieldError{Field: e.Field, Code: e.Code, Message: e.Message})
	}

	if verr := application.ValidateRecord(input.Application); verr != nil {
		for _, f := range verr.FieldNames() {
			res := verr.Fields[f]
			fieldErrors = appendUnique(fieldErrors, FieldError{
				Field:   "application." + string(f),
				Code:    res.Code,
				Message: res.Message,
			})
		}
	}

	for _, flag := range input.Consent.Missing() {
		fieldErrors = appendUnique(fieldErrors, FieldError{
			Field:   "consent." + string(flag),
			Code:    string(errors.ErrCodeConsentIncomplete),
			Message: "consent is required",
		})
	}

	if len(fieldErrors) > 0 {
		fields := make([]string, len(fieldErrors))
		for i, fe := range fieldErrors {
			fields[i] = fe.Field
		}
		h.logger.Warn("application failed validation", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"fields":        fields,
		})
		return nil, errors.NewApplicationValidationFailedError(strings.Join(fields, ", ")).
			WithMetadata("validationErrors", fieldErrors)
	}

	h.logger.Info("application validated", map[string]interface{}{"applicationId": input.ApplicationID})
	return &Output{Validated: true}, nil
}

// appendUnique keeps the first error reported for a field.
func appendUnique(list []FieldError, fe FieldError) []FieldError {
	for _, existing := range list {
		if existing.Field == fe.Field {
			return list
		}
	}
	return append(list, fe)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

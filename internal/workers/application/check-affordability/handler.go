// internal/workers/application/check-affordability/handler.go
package checkaffordability

import (
	"context"
	"fmt"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/finance/calculator"
	"car-mzansi-connect/internal/workers/jobs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/shopspring/decimal"
)

const (
	TaskType = "check-affordability"
)

// Handler prices the requested loan and compares the instalment with the
// applicant's disposable income (income less expenses).
type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	rec := input.Application

	income, err := application.ParseAmount(rec.MonthlyIncome)
	if err != nil {
		return nil, errors.NewAffordabilityCheckFailedError(fmt.Sprintf("monthlyIncome: %v", err))
	}
	expenses, err := application.ParseAmount(rec.MonthlyExpenses)
	if err != nil {
		return nil, errors.NewAffordabilityCheckFailedError(fmt.Sprintf("monthlyExpenses: %v", err))
	}
	deposit, err := application.ParseAmount(rec.DepositAmount)
	if err != nil {
		return nil, errors.NewAffordabilityCheckFailedError(fmt.Sprintf("depositAmount: %v", err))
	}

	quote, err := calculator.Calculate(calculator.Quote{
		Price:      decimal.NewFromInt(input.Car.Price),
		Deposit:    deposit,
		AnnualRate: h.config.AnnualRate,
		TermMonths: rec.PreferredLoanTerm.Months(),
	})
	if err != nil {
		return nil, errors.NewAffordabilityCheckFailedError(err.Error())
	}

	disposable := income.Sub(expenses)
	ratio, ok := calculator.InstalmentRatio(quote.MonthlyInstalment, income, expenses)
	affordable := ok && ratio.LessThanOrEqual(h.config.MaxInstalmentRatio)

	h.logger.Info("affordability assessed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"affordable":    affordable,
		"ratio":         ratio.String(),
	})

	return &Output{
		Affordable:        affordable,
		MonthlyInstalment: quote.MonthlyInstalment.StringFixed(2),
		DisposableIncome:  disposable.StringFixed(2),
		InstalmentRatio:   ratio.StringFixed(4),
		AnnualRate:        h.config.AnnualRate.String(),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

package gateway

import (
	"context"

	"car-mzansi-connect/internal/common/events"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/finance/wizard"
)

// Publishing announces every accepted submission on topic after next accepts it.
// A publish failure is logged; the submission itself has already succeeded.
type Publishing struct {
	next      wizard.SubmissionGateway
	publisher events.Publisher
	topic     string
	logger    logger.Logger
}

func NewPublishing(next wizard.SubmissionGateway, publisher events.Publisher, topic string, log logger.Logger) *Publishing {
	return &Publishing{next: next, publisher: publisher, topic: topic, logger: log}
}

type submittedEvent struct {
	ApplicationID string `json:"applicationId"`
	Reference     string `json:"reference"`
	UserID        string `json:"userId"`
	ListingID     string `json:"listingId,omitempty"`
	Car           string `json:"car"`
	Dealership    string `json:"dealership"`
	Price         int64  `json:"price"`
	Deposit       string `json:"deposit"`
	LoanTerm      string `json:"loanTerm"`
}

func (p *Publishing) Submit(ctx context.Context, sub wizard.Submission) (wizard.Receipt, error) {
	receipt, err := p.next.Submit(ctx, sub)
	if err != nil {
		return receipt, err
	}

	ev := submittedEvent{
		ApplicationID: sub.ApplicationID,
		Reference:     receipt.Reference,
		UserID:        sub.UserID,
		ListingID:     sub.ListingID,
		Car:           sub.Car.Title(),
		Dealership:    sub.Dealership.Name,
		Price:         sub.Car.Price,
		Deposit:       sub.Application.DepositAmount,
		LoanTerm:      string(sub.Application.PreferredLoanTerm),
	}
	if err := p.publisher.Publish(ctx, p.topic, sub.ApplicationID, events.TypeApplicationSubmitted, ev); err != nil {
		p.logger.WithError(err).Warn("Submission accepted but event not published", map[string]interface{}{
			"applicationId": sub.ApplicationID,
		})
	}
	return receipt, nil
}

// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/marketplace/listings"
	"car-mzansi-connect/internal/models"
	"car-mzansi-connect/internal/workers/jobs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-notification"
)

// EmailSender is satisfied by aws.Mailer.
type EmailSender interface {
	Send(ctx context.Context, to, subject, text, html string) (string, error)
}

// SMSSender is satisfied by aws.Texter.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

// Handler emails the applicant a confirmation and texts the dealership that a
// new application is waiting. Email is the channel of record: its failure
// fails the job, an SMS failure is only reported in the output.
type Handler struct {
	config     *Config
	email      EmailSender
	sms        SMSSender
	templates  map[string]models.NotificationTemplate
	now        func() time.Time
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		email:      email,
		sms:        sms,
		templates:  loadTemplates(),
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
	data := map[string]interface{}{
		"firstName":      input.Application.FirstName,
		"applicationId":  input.ApplicationID,
		"reference":      input.Reference,
		"car":            input.Car.Title(),
		"price":          listings.FormatRand(input.Car.Price),
		"dealershipName": input.Dealership.Name,
		"applicantName":  strings.TrimSpace(input.Application.FirstName + " " + input.Application.LastName),
		"applicantPhone": input.Application.Phone,
		"status":         input.ApplicationStatus,
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		EmailStatus:    StatusDisabled,
		SMSStatus:      StatusDisabled,
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	if h.config.EmailEnabled && h.email != nil {
		output.EmailStatus = StatusSkipped
		if to := strings.TrimSpace(input.Application.Email); to != "" {
			tmpl := h.templates[TypeApplicationSubmitted]
			body := renderTemplate(tmpl.Body, data)
			if _, err := h.email.Send(ctx, to, renderTemplate(tmpl.Subject, data), body, ""); err != nil {
				return nil, errors.NewNotificationSendFailedError("email", err).
					WithMetadata("applicationId", input.ApplicationID)
			}
			output.EmailStatus = StatusSent
		}
	}

	if h.config.SMSEnabled && h.sms != nil {
		output.SMSStatus = StatusSkipped
		if phone := e164(input.Dealership.Phone); phone != "" {
			body := renderTemplate(h.templates[TypeNewApplication].Body, data)
			if _, err := h.sms.Send(ctx, phone, body); err != nil {
				h.logger.Error("SMS send failed", map[string]interface{}{
					"error":         err.Error(),
					"applicationId": input.ApplicationID,
				})
				output.SMSStatus = StatusFailed
			} else {
				output.SMSStatus = StatusSent
			}
		}
	}

	output.Status = StatusDisabled
	if output.EmailStatus == StatusSent || output.SMSStatus == StatusSent {
		output.Status = StatusSent
	}

	h.logger.Info("notifications processed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"email":         output.EmailStatus,
		"sms":           output.SMSStatus,
	})
	return output, nil
}

// e164 turns a South African number such as "012 345 6789" into "+27123456789".
func e164(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case d == "":
		return ""
	case strings.HasPrefix(d, "27"):
		return "+" + d
	case strings.HasPrefix(d, "0"):
		return "+27" + d[1:]
	default:
		return "+27" + d
	}
}

// renderTemplate substitutes {{key}} placeholders and drops unknown ones.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}

func loadTemplates() map[string]models.NotificationTemplate {
	return map[string]models.NotificationTemplate{
		TypeApplicationSubmitted: {
			ID:      "tpl-application-submitted",
			Type:    TypeApplicationSubmitted,
			Subject: "Your finance application {{reference}} has been submitted",
			Body: "Hi {{firstName}}, your application for the {{car}} ({{price}}) has been sent to " +
				"{{dealershipName}}. They will contact you within 24 hours. Reference: {{reference}}.",
		},
		TypeNewApplication: {
			ID:   "tpl-new-application",
			Type: TypeNewApplication,
			Body: "Car Mzansi: new finance application {{reference}} from {{applicantName}} ({{applicantPhone}}) for the {{car}}.",
		},
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

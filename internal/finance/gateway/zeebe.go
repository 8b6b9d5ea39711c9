package gateway

import (
	"context"
	"fmt"
	"time"

	"car-mzansi-connect/internal/common/camunda"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/common/observability"
	"car-mzansi-connect/internal/finance/wizard"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ProcessStarter starts BPMN process instances. *camunda.Client implements it.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables interface{}) (camunda.ProcessInstance, error)
}

// Zeebe submits applications by starting the finance application process,
// whose service tasks are handled by the application workers.
type Zeebe struct {
	starter   ProcessStarter
	processID string
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
}

func NewZeebe(starter ProcessStarter, processID string, obs *observability.Observability, log logger.Logger) *Zeebe {
	return &Zeebe{
		starter:   starter,
		processID: processID,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"processId": processID}),
		now:       time.Now,
	}
}

// processVariables is the variable document the process starts with.
type processVariables struct {
	wizard.Submission
	Reference string `json:"reference"`
}

func (z *Zeebe) Submit(ctx context.Context, sub wizard.Submission) (wizard.Receipt, error) {
	ctx, span := z.obs.StartSpan(ctx, "finance.submit",
		attribute.String("application.id", sub.ApplicationID),
		attribute.String("process.id", z.processID),
	)
	defer span.End()

	ref := Reference(sub.ApplicationID)
	instance, err := z.starter.StartProcess(ctx, z.processID, processVariables{Submission: sub, Reference: ref})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "start process failed")
		z.logger.WithError(err).Error("Failed to start finance application process", map[string]interface{}{
			"applicationId": sub.ApplicationID,
		})
		return wizard.Receipt{}, fmt.Errorf("start %s: %w", z.processID, err)
	}

	span.SetAttributes(attribute.Int64("process.instance_key", instance.ProcessInstanceKey))
	z.logger.Info("Finance application process started", map[string]interface{}{
		"applicationId":      sub.ApplicationID,
		"processInstanceKey": instance.ProcessInstanceKey,
		"reference":          ref,
	})
	return wizard.Receipt{Reference: ref, AcceptedAt: z.now().UTC()}, nil
}

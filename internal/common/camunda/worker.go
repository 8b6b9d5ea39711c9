// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/common/metrics"
	"car-mzansi-connect/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
)

// JobHandler is implemented by every worker Handler. Handlers complete, fail or
// throw the job themselves; a returned error is only logged and counted.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// JobHandlerFunc adapts a function to JobHandler.
type JobHandlerFunc func(client worker.JobClient, job entities.Job) error

func (f JobHandlerFunc) Handle(client worker.JobClient, job entities.Job) error {
	return f(client, job)
}

// Options tune a job worker subscription.
type Options struct {
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker subscription for taskType.
func NewWorker(
	client zbc.Client,
	taskType string,
	opts Options,
	handler JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, obs, log)).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}

	return &CamundaWorker{
		worker:   step.Open(),
		logger:   log,
		taskType: taskType,
	}
}

// Instrument wraps a handler with active-job gauges, duration metrics and a span.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability, log logger.Logger) worker.JobHandler {
	return instrumented{taskType: taskType, next: handler, obs: obs, log: log}.Handle
}

type instrumented struct {
	taskType string
	next     JobHandler
	obs      *observability.Observability
	log      logger.Logger
}

func (h instrumented) Handle(client worker.JobClient, job entities.Job) {
	active := metrics.WorkerJobsActive.WithLabelValues(h.taskType)
	active.Inc()
	defer active.Dec()

	ctx, span := h.obs.StartSpan(context.Background(), "job."+h.taskType,
		attribute.Int64("job.key", job.Key),
		attribute.String("job.bpmn_process_id", job.BpmnProcessId),
	)
	defer span.End()

	start := time.Now()
	err := h.next.Handle(client, job)
	elapsed := time.Since(start)

	status, code := "completed", ""
	if err != nil {
		status, code = "failed", errorCode(err)
		span.RecordError(err)
		h.log.WithError(err).Error("Handler returned error", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
	metrics.ObserveJob(h.taskType, elapsed.Seconds(), code)
	h.obs.RecordJob(ctx, h.taskType, status, elapsed)
}

func errorCode(err error) string {
	if stdErr, ok := errors.AsStandardError(err); ok {
		return string(stdErr.Code)
	}
	return string(errors.ErrCodeInternal)
}

func (w *CamundaWorker) TaskType() string { return w.taskType }

func (w *CamundaWorker) Start() {
	w.logger.Info("worker started", nil)
}

// Stop closes the subscription and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

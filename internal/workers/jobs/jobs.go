// Package jobs holds the decode/complete plumbing shared by every worker Handler.
package jobs

import (
	"context"
	"encoding/json"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Decode unmarshals the job variables into v.
func Decode(job entities.Job, v interface{}) error {
	if err := json.Unmarshal([]byte(job.Variables), v); err != nil {
		return errors.NewInvalidJobVariablesError(err)
	}
	return nil
}

// Complete sends the complete command with output as the job's result variables.
func Complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return err
	}

	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return err
	}

	log.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
	return nil
}

// Started logs the start of a job.
func Started(log logger.Logger, job entities.Job) {
	log.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
		"retries":            job.Retries,
	})
}

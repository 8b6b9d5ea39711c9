// Package gateway holds the SubmissionGateway implementations used by the wizard.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/finance/wizard"
)

// ErrSimulatedFailure is returned by a Simulated gateway configured to fail.
var ErrSimulatedFailure = errors.New("simulated submission failure")

// Simulated waits Delay and then accepts every submission, or rejects every
// submission when Fail is set.
type Simulated struct {
	Delay  time.Duration
	Fail   bool
	Now    func() time.Time
	Logger logger.Logger
}

func NewSimulated(delay time.Duration, fail bool, log logger.Logger) *Simulated {
	return &Simulated{Delay: delay, Fail: fail, Now: time.Now, Logger: log}
}

func (s *Simulated) Submit(ctx context.Context, sub wizard.Submission) (wizard.Receipt, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return wizard.Receipt{}, ctx.Err()
		}
	}

	if s.Fail {
		s.log().Warn("Simulated submission rejected", map[string]interface{}{
			"applicationId": sub.ApplicationID,
		})
		return wizard.Receipt{}, ErrSimulatedFailure
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	receipt := wizard.Receipt{Reference: Reference(sub.ApplicationID), AcceptedAt: now().UTC()}
	s.log().Info("Simulated submission accepted", map[string]interface{}{
		"applicationId": sub.ApplicationID,
		"reference":     receipt.Reference,
		"car":           sub.Car.Title(),
	})
	return receipt, nil
}

func (s *Simulated) log() logger.Logger {
	if s.Logger == nil {
		return logger.NewNoOpLogger()
	}
	return s.Logger
}

// Reference derives the customer-facing reference from an application id.
func Reference(applicationID string) string {
	compact := strings.ToUpper(strings.ReplaceAll(applicationID, "-", ""))
	if len(compact) > 10 {
		compact = compact[:10]
	}
	return fmt.Sprintf("FIN-%s", compact)
}

// Package consent captures the applicant's POPIA consent before a finance
// application is released to a dealership.
package consent

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrConsentIncomplete = errors.New("CONSENT_INCOMPLETE")
	ErrUnknownFlag       = errors.New("UNKNOWN_CONSENT_FLAG")
)

// Flag names one consent checkbox.
type Flag string

const (
	DataProcessing         Flag = "dataProcessing"
	ThirdPartySharing      Flag = "thirdPartySharing"
	MarketingCommunication Flag = "marketingCommunication"
	DataRetention          Flag = "dataRetention"
)

// Mandatory lists the flags that must be granted before submission.
var Mandatory = []Flag{DataProcessing, ThirdPartySharing, DataRetention}

// Record is the consent given for one submission.
type Record struct {
	DataProcessing         bool      `json:"dataProcessing"`
	ThirdPartySharing      bool      `json:"thirdPartySharing"`
	MarketingCommunication bool      `json:"marketingCommunication"`
	DataRetention          bool      `json:"dataRetention"`
	Timestamp              time.Time `json:"timestamp"`
}

func (r *Record) slot(f Flag) *bool {
	switch f {
	case DataProcessing:
		return &r.DataProcessing
	case ThirdPartySharing:
		return &r.ThirdPartySharing
	case MarketingCommunication:
		return &r.MarketingCommunication
	case DataRetention:
		return &r.DataRetention
	}
	return nil
}

// Granted reports whether f is set.
func (r Record) Granted(f Flag) bool {
	if p := r.slot(f); p != nil {
		return *p
	}
	return false
}

// Complete reports whether every mandatory flag is granted.
func (r Record) Complete() bool {
	return len(r.Missing()) == 0
}

// Missing lists the mandatory flags that are not granted.
func (r Record) Missing() []Flag {
	var out []Flag
	for _, f := range Mandatory {
		if !r.Granted(f) {
			out = append(out, f)
		}
	}
	return out
}

// Capture holds the consent flags while the applicant is on the consent stage.
// It is not safe for concurrent use.
type Capture struct {
	flags Record
}

// New returns a capture with every flag cleared.
func New() *Capture {
	return &Capture{}
}

func (c *Capture) Set(f Flag, value bool) error {
	p := c.flags.slot(f)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownFlag, f)
	}
	*p = value
	return nil
}

// Flags returns the current flags. Timestamp is zero until Accept.
func (c *Capture) Flags() Record {
	return c.flags
}

func (c *Capture) CanAccept() bool {
	return c.flags.Complete()
}

// Accept finalises the consent stamped with now in UTC.
func (c *Capture) Accept(now time.Time) (Record, error) {
	if missing := c.flags.Missing(); len(missing) > 0 {
		return Record{}, fmt.Errorf("%w: missing %v", ErrConsentIncomplete, missing)
	}
	rec := c.flags
	rec.Timestamp = now.UTC()
	return rec, nil
}

// Decline clears every flag. The applicant must consent afresh on return.
func (c *Capture) Decline() {
	c.flags = Record{}
}

// internal/workers/application/send-notification/config.go
package sendnotification

import (
	"time"

	"car-mzansi-connect/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	Timeout      time.Duration
}

func LoadConfig(n config.NotificationConfig) *Config {
	return &Config{
		EmailEnabled: n.Email.Enabled,
		SMSEnabled:   n.SMS.Enabled,
		Timeout:      30 * time.Second,
	}
}

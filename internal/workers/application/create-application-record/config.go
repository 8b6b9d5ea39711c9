// internal/workers/application/create-application-record/config.go
package createapplicationrecord

import "time"

type Config struct {
	Timeout time.Duration
	// Topic receives finance.application.submitted events. Empty disables publishing.
	Topic string
}

func LoadConfig(topic string) *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Topic:   topic,
	}
}

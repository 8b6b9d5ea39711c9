package submitreview

import "time"

type Config struct {
	Timeout          time.Duration
	Topic            string
	MaxTitleLength   int
	MaxContentLength int
}

func LoadConfig(topic string) *Config {
	return &Config{
		Timeout:          10 * time.Second,
		Topic:            topic,
		MaxTitleLength:   120,
		MaxContentLength: 2000,
	}
}

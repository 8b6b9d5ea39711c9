package searchlistings

import "time"

type Config struct {
	Timeout time.Duration
	// Index names the listings index in error reports.
	Index string
	Limit int
}

func LoadConfig(index string) *Config {
	if index == "" {
		index = "listings"
	}
	return &Config{
		Timeout: 5 * time.Second,
		Index:   index,
		Limit:   50,
	}
}

package togglewishlist

import "time"

type Config struct {
	Timeout   time.Duration
	KeyPrefix string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   5 * time.Second,
		KeyPrefix: "wishlist:",
	}
}

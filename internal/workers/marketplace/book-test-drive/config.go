package booktestdrive

import "time"

type Config struct {
	Timeout time.Duration
	Topic   string
	// Location is the dealership time zone slots are booked in.
	Location *time.Location
	// FirstSlot and LastSlot are whole hours, inclusive.
	FirstSlot int
	LastSlot  int
}

// SAST is South African Standard Time. A fixed zone avoids depending on tzdata.
var SAST = time.FixedZone("SAST", 2*60*60)

func LoadConfig(topic string) *Config {
	return &Config{
		Timeout:   10 * time.Second,
		Topic:     topic,
		Location:  SAST,
		FirstSlot: 9,
		LastSlot:  17,
	}
}

package config

import "time"

type Config struct {
	SessionTimeout time.Duration // idle threshold that ends a conversation
	ScrapeTimeout  time.Duration
	SendTimeout    time.Duration
	MaxHistory     int // turns replayed into the prompt
}

func NewConfig() *Config {
	return &Config{
		SessionTimeout: 5 * time.Minute,
		ScrapeTimeout:  15 * time.Second,
		SendTimeout:    30 * time.Second,
		MaxHistory:     40,
	}
}

// Package marketstack provides a client for the marketstack EOD API.
package marketstack

import (
	"os"
	"time"
)

// DefaultBaseURL is the public marketstack v1 endpoint.
const DefaultBaseURL = "http://api.marketstack.com/v1"

// Config holds configuration for the marketstack API client.
type Config struct {
	AccessKey string        // access_key query credential
	BaseURL   string        // API base (e.g., "http://api.marketstack.com/v1")
	Timeout   time.Duration // HTTP request timeout
}

// LoadConfig loads marketstack configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("MARKETSTACK_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := 10 * time.Second
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}
	return Config{
		AccessKey: os.Getenv("MARKETSTACK_ACCESS_KEY"),
		BaseURL:   base,
		Timeout:   timeout,
	}
}

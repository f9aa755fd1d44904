package inspect

import "time"

// Config holds configuration for one inspector run.
type Config struct {
	BaseURL string        // Base URL of the service
	Metric  string        // Ranking metric; empty uses the service default
	Top     int           // Top entries to fetch; negative uses the service default
	Bottom  int           // Bottom entries to fetch; negative uses the service default
	Timeout time.Duration // HTTP request timeout
}

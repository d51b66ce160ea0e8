package repository

import "time"

// Granularity is the bucket width of archive statistics.
type Granularity string

const (
	G1m Granularity = "1m"
	G1h Granularity = "1h"
	G1d Granularity = "1d"
)

// IsValidGranularity returns true if g is a supported bucket width.
func IsValidGranularity(g Granularity) bool {
	switch g {
	case G1m, G1h, G1d:
		return true
	default:
		return false
	}
}

// DefaultGranularity returns the default bucket width.
func DefaultGranularity() Granularity { return G1h }

// NormalizeGranularity converts raw string to a valid granularity (or default).
func NormalizeGranularity(s string) Granularity {
	if s == "" {
		return DefaultGranularity()
	}
	g := Granularity(s)
	if IsValidGranularity(g) {
		return g
	}
	return DefaultGranularity()
}

// Duration is the bucket width as a time.Duration.
func (g Granularity) Duration() time.Duration {
	switch g {
	case G1m:
		return time.Minute
	case G1d:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

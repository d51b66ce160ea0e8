package models

import (
	"fmt"
	"time"
)

// Category tags a pattern definition.
type Category string

const (
	CategoryMathematical Category = "mathematical"
	CategorySequence     Category = "sequence"
	CategorySpecial      Category = "special"
	CategoryAstronomical Category = "astronomical"
	CategorySymmetry     Category = "symmetry"
)

// TimeSample is an immutable decomposition of an instant into calendar/clock fields.
// Fields are read in the location of the instant it was built from.
type TimeSample struct {
	Instant time.Time
	Year    int
	Month   int // 0-based
	Day     int
	Hour    int
	Minute  int
	Second  int
	HHMMSS  string
	HHMM    string
}

// NewTimeSample decomposes t in t.Location(). Sub-second precision is dropped.
func NewTimeSample(t time.Time) TimeSample {
	t = t.Truncate(time.Second)
	y, m, d := t.Date()
	h, mi, s := t.Clock()
	return TimeSample{
		Instant: t,
		Year:    y,
		Month:   int(m) - 1,
		Day:     d,
		Hour:    h,
		Minute:  mi,
		Second:  s,
		HHMMSS:  fmt.Sprintf("%02d%02d%02d", h, mi, s),
		HHMM:    fmt.Sprintf("%02d%02d", h, mi),
	}
}

// Clock renders the sample as HH:MM:SS.
func (s TimeSample) Clock() string {
	return fmt.Sprintf("%02d:%02d:%02d", s.Hour, s.Minute, s.Second)
}

// N is the pattern-numeric encoding used by number-theoretic predicates: hour*100+minute.
func (s TimeSample) N() int {
	return s.Hour*100 + s.Minute
}

// DetectedPattern is a pattern active at the sample instant.
type DetectedPattern struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
}

// PredictedOccurrence is the next future instant at which a pattern holds.
type PredictedOccurrence struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	OccurringAt time.Time `json:"occurring_at"`
}

// PatternEvent is a detection exported to the archive backends.
type PatternEvent struct {
	EventID     string    `json:"event_id"`
	PatternID   string    `json:"pattern_id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	DetectedAt  time.Time `json:"detected_at"`
	Timezone    string    `json:"timezone"`
}

// PatternCount is one row of archive statistics.
type PatternCount struct {
	Bucket    time.Time `json:"bucket"`
	PatternID string    `json:"pattern_id"`
	Count     uint64    `json:"count"`
}

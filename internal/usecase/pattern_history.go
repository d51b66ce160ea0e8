package usecase

import (
	"sync"

	"CosmicClock/internal/domain/models"
)

// DefaultHistoryCap bounds the rolling history log.
const DefaultHistoryCap = 10

// PatternHistory is a rolling log of significant detections, newest first,
// holding at most one entry per pattern name.
type PatternHistory struct {
	mu      sync.RWMutex
	cap     int
	entries []models.DetectedPattern
}

func NewPatternHistory(capacity int) *PatternHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &PatternHistory{cap: capacity}
}

// Significant reports whether a detection is worth keeping in history.
func Significant(p models.DetectedPattern) bool {
	switch p.Category {
	case models.CategorySpecial, models.CategoryAstronomical:
		return true
	case models.CategoryMathematical:
		return p.ID == "perfect-square"
	case models.CategorySequence:
		return p.ID == "geometric" || p.ID == "fibonacci"
	default:
		return false
	}
}

// Record prepends the significant patterns of active and drops older entries
// sharing a name with any active pattern. It returns the number prepended.
func (h *PatternHistory) Record(active []models.DetectedPattern) int {
	if len(active) == 0 {
		return 0
	}
	fresh := make([]models.DetectedPattern, 0, len(active))
	names := make(map[string]struct{}, len(active))
	for _, p := range active {
		names[p.Name] = struct{}{}
		if Significant(p) {
			fresh = append(fresh, p)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	next := make([]models.DetectedPattern, 0, h.cap)
	next = append(next, fresh...)
	for _, e := range h.entries {
		if _, dup := names[e.Name]; !dup {
			next = append(next, e)
		}
	}
	if len(next) > h.cap {
		next = next[:h.cap]
	}
	h.entries = next
	return len(fresh)
}

// Entries returns a copy, newest first.
func (h *PatternHistory) Entries() []models.DetectedPattern {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.DetectedPattern, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *PatternHistory) Reset() {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
}

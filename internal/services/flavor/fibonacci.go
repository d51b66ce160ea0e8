package flavor

import (
	"time"

	"CosmicClock/internal/domain/models"
)

const (
	RoleOff     = "off"
	RoleHours   = "hours"
	RoleMinutes = "minutes"
	RoleBoth    = "both"
)

var fibonacciTiles = [5]int{5, 3, 2, 1, 1}

// FibonacciClock colors the 5, 3, 2, 1, 1 tiles so that the hour tiles sum to
// the 12-hour clock hour and the minute tiles sum to the minute divided by 5.
// Tiles are assigned greedily from the largest.
func FibonacciClock(t time.Time) []models.FibonacciSquare {
	h, m, _ := t.Clock()
	hours := h % 12
	if hours == 0 {
		hours = 12
	}
	minutes := m / 5

	out := make([]models.FibonacciSquare, 0, len(fibonacciTiles))
	for _, v := range fibonacciTiles {
		role := RoleOff
		switch {
		case hours >= v && minutes >= v:
			role = RoleBoth
			hours -= v
			minutes -= v
		case hours >= v:
			role = RoleHours
			hours -= v
		case minutes >= v:
			role = RoleMinutes
			minutes -= v
		}
		out = append(out, models.FibonacciSquare{Value: v, Role: role})
	}
	return out
}

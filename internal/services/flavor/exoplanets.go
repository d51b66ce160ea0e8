package flavor

import (
	"math"
	"time"

	"CosmicClock/internal/domain/models"
)

// Exoplanet is a planet with its rotation in Earth hours and orbit in Earth days.
type Exoplanet struct {
	Name     string
	DayHours float64
	YearDays float64
}

var Exoplanets = []Exoplanet{
	{Name: "Kepler-452b", DayHours: 24.7, YearDays: 384.8},
	{Name: "Proxima Centauri b", DayHours: 24, YearDays: 11.2},
	{Name: "TRAPPIST-1e", DayHours: 24, YearDays: 6.1},
	{Name: "TOI-715b", DayHours: 19.3, YearDays: 19.3},
	{Name: "K2-18b", DayHours: 24, YearDays: 33},
	{Name: "Gliese 667Cc", DayHours: 24, YearDays: 28.1},
	{Name: "HD 40307g", DayHours: 24, YearDays: 197.8},
}

// ExoplanetTime reads t as a 24 hour clock stretched over the planet's day,
// with a season taken from the local day of year folded into its orbit.
func ExoplanetTime(t time.Time, p Exoplanet) models.ExoplanetClock {
	dayMs := p.DayHours * float64(time.Hour/time.Millisecond)
	clock := math.Mod(float64(t.UnixMilli()), dayMs) / dayMs * 24
	hours := math.Floor(clock)

	progress := math.Mod(float64(t.YearDay()), p.YearDays) / p.YearDays
	var season string
	switch {
	case progress < 0.25:
		season = "Spring"
	case progress < 0.5:
		season = "Summer"
	case progress < 0.75:
		season = "Autumn"
	default:
		season = "Winter"
	}
	return models.ExoplanetClock{
		Name:    p.Name,
		Hours:   int(hours),
		Minutes: int((clock - hours) * 60),
		Season:  season,
	}
}

func exoplanetClocks(t time.Time, planets []Exoplanet) []models.ExoplanetClock {
	out := make([]models.ExoplanetClock, 0, len(planets))
	for _, p := range planets {
		out = append(out, ExoplanetTime(t, p))
	}
	return out
}

package flavor

import (
	"math"
	"strconv"
	"time"

	"CosmicClock/internal/domain/models"
)

const (
	tidalCycleHours = 12.42
	tidalCycle      = tidalCycleHours * float64(time.Hour/time.Millisecond)
	waveHz          = 0.1
)

// Tide places t in the semidiurnal cycle counted from the Unix epoch.
func Tide(t time.Time) models.TideState {
	phase := math.Mod(float64(t.UnixMilli()), tidalCycle) / tidalCycle
	if phase < 0 {
		phase++
	}
	var name string
	switch {
	case phase < 0.25:
		name = "Rising"
	case phase < 0.5:
		name = "High"
	case phase < 0.75:
		name = "Falling"
	default:
		name = "Low"
	}
	return models.TideState{
		Phase:    name,
		Progress: strconv.FormatFloat(phase*100, 'f', 1, 64),
		NextHigh: strconv.FormatFloat((1-phase)*tidalCycleHours, 'f', 2, 64),
	}
}

// WavesToday counts 10 second swells since local midnight.
func WavesToday(t time.Time) int {
	return int(float64(secondsOfDay(t)) * waveHz)
}

// WhaleMigration follows a yearly sine over the local day of year.
func WhaleMigration(t time.Time) string {
	v := math.Sin(float64(t.YearDay()) / 365.25 * 2 * math.Pi)
	switch {
	case v > 0.5:
		return "Northward Migration"
	case v > -0.5:
		return "Feeding Grounds"
	default:
		return "Southward Migration"
	}
}

// PlanktonDepth is the depth in meters of the diel vertical migration.
// Daytime depths run from 100 to 200 m, night depths from 100 to 180 m.
func PlanktonDepth(t time.Time) int {
	h, m, _ := t.Clock()
	tod := float64(h) + float64(m)/60
	if tod >= 6 && tod <= 18 {
		return int(200 - math.Sin((tod-6)/12*math.Pi)*100)
	}
	night := tod + 6
	if tod > 18 {
		night = tod - 18
	}
	return int(100 + math.Sin(night/12*math.Pi)*80)
}

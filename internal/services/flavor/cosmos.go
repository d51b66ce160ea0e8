package flavor

import (
	"math"
	"strconv"
	"time"

	"CosmicClock/internal/domain/models"
)

const (
	galacticYear     = 225e6
	julianYearSecs   = 365.25 * secondsPerDay
	pulsarPeriod     = 1.337
	supernovaEvery   = 50 * julianYearSecs
	synodicMonth     = 29.5 * 24 * time.Hour
	cosmicMonthDays  = 30.44
	caesiumHz        = 9192631770
	lhcHz            = 11245
	avogadro         = 6.022e23
	carbon14HalfLife = 5730 * julianYearSecs
	asteroidOrbit    = 4.6 * julianYearSecs * time.Second
)

var lunarPhaseNames = [8]string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

// GalacticYearProgress is the share of a 225 million year galactic orbit
// covered by the calendar year.
func GalacticYearProgress(t time.Time) string {
	return strconv.FormatFloat(math.Mod(float64(t.Year()), galacticYear)/galacticYear*100, 'f', 10, 64)
}

// AsteroidBeltTime is the percentage through a 4.6 year main-belt orbit.
func AsteroidBeltTime(t time.Time) string {
	period := asteroidOrbit.Milliseconds()
	return strconv.FormatFloat(float64(t.UnixMilli()%period)/float64(period)*100, 'f', 2, 64)
}

// CosmicCalendarAt maps the local day of year onto months of 30.44 days.
func CosmicCalendarAt(t time.Time) models.CosmicCalendar {
	doy := float64(t.YearDay())
	h, m, _ := t.Clock()
	return models.CosmicCalendar{
		Month:  min(int(doy/cosmicMonthDays)+1, 12),
		Day:    int(math.Mod(doy, cosmicMonthDays)) + 1,
		Hour:   h,
		Minute: m,
	}
}

// PulsarRotations counts PSR B1919+21 turns since local midnight.
func PulsarRotations(t time.Time) int {
	return int(float64(secondsOfDay(t)) / pulsarPeriod)
}

// MilkyWaySupernovae is the expected galactic supernova count since local midnight.
func MilkyWaySupernovae(t time.Time) string {
	return strconv.FormatFloat(float64(secondsOfDay(t))/supernovaEvery, 'f', 8, 64)
}

// Lunar places t in a 29.5 day cycle counted from the Unix epoch.
func Lunar(t time.Time) models.LunarPhase {
	frac := math.Mod(float64(t.UnixMilli())/float64(synodicMonth.Milliseconds()), 1)
	if frac < 0 {
		frac++
	}
	idx := int(frac * 8)
	return models.LunarPhase{
		Index:    idx,
		Name:     lunarPhaseNames[idx],
		Progress: math.Round(frac * 100),
	}
}

func CesiumOscillations(t time.Time) string {
	return strconv.FormatFloat(float64(secondsOfDay(t))*caesiumHz, 'e', 2, 64)
}

// LHCRevolutions counts beam turns around the collider since local midnight.
func LHCRevolutions(t time.Time) int64 {
	return int64(secondsOfDay(t)) * lhcHz
}

// Carbon14Decays is the number of decays in one gram of carbon-14 since local midnight.
func Carbon14Decays(t time.Time) int64 {
	lambda := math.Ln2 / carbon14HalfLife
	return int64(avogadro / 14 * lambda * float64(secondsOfDay(t)))
}

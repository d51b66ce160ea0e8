// Package flavor computes the whimsical alternate clock readings shown next to
// the pattern engine.
package flavor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"CosmicClock/internal/domain/models"
)

const (
	phi            = 1.618033988749895
	siderealRate   = 1.002737909350795
	marsSol        = 24*time.Hour + 39*time.Minute + 35244*time.Millisecond
	jovianDay      = 9*time.Hour + 55*time.Minute + 30*time.Second
	lightKmPerSec  = 299792.0
	planckSeconds  = 5.391247e-44
	gpsDriftPerDay = 45e-6
	secondsPerDay  = 86400
)

var j2000 = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

// Body is a fixed distance used for light-travel readings.
type Body struct {
	Name string
	Km   float64
}

// Bodies are approximate distances from Earth.
var Bodies = []Body{
	{Name: "Moon", Km: 384400},
	{Name: "Mars", Km: 225000000},
	{Name: "L1", Km: 1500000},
	{Name: "L3", Km: 149600000},
	{Name: "Jupiter", Km: 628730000},
	{Name: "Kuiper Belt", Km: 4474341000},
}

func secondsOfDay(t time.Time) int {
	h, m, s := t.Clock()
	return h*3600 + m*60 + s
}

func dayFraction(t time.Time) float64 {
	return float64(secondsOfDay(t)) / secondsPerDay
}

func PhiTime(t time.Time) string { return strconv.FormatFloat(dayFraction(t)*math.Pi*phi, 'f', 6, 64) }
func PiTime(t time.Time) string  { return strconv.FormatFloat(dayFraction(t)*math.Pi*10, 'f', 6, 64) }
func ETime(t time.Time) string   { return strconv.FormatFloat(dayFraction(t)*math.E*10, 'f', 6, 64) }

// MetricTime counts 100000 metric seconds per day.
func MetricTime(t time.Time) string {
	return strconv.FormatFloat(dayFraction(t)*100000, 'f', 2, 64)
}

// DecimalTime is the 10-hour French revolutionary clock, floored per unit.
func DecimalTime(t time.Time) string {
	hours := dayFraction(t) * 10
	minutes := math.Mod(hours, 1) * 100
	seconds := math.Mod(minutes, 1) * 100
	return fmt.Sprintf("%d:%d:%d", int(hours), int(minutes), int(seconds))
}

// HexTime renders the seconds of the day in hex.
func HexTime(t time.Time) string {
	h := strings.ToUpper(strconv.FormatInt(int64(secondsOfDay(t)), 16))
	if len(h) < 4 {
		h = strings.Repeat("0", 4-len(h)) + h
	}
	return h
}

// InternetTime is Swatch .beat time, anchored on UTC+1.
func InternetTime(t time.Time) string {
	utc := secondsOfDay(t.UTC())
	beats := int(float64((utc+3600)%secondsPerDay) / 86.4)
	return fmt.Sprintf("@%03d", beats)
}

// Stardate uses the local calendar date.
func Stardate(t time.Time) string {
	sd := float64(t.Year()-2000)*1000 + float64(int(t.Month())-1)*83.33 + float64(t.Day())*2.74
	return strconv.FormatFloat(sd, 'f', 2, 64)
}

// SiderealTime is the fractional sidereal rotation since J2000 as HH:MM.
func SiderealTime(t time.Time) string {
	days := float64(t.Sub(j2000)) / float64(24*time.Hour)
	frac := math.Mod(days*siderealRate, 1)
	if frac < 0 {
		frac++
	}
	hours := int(frac * 24)
	minutes := int(math.Mod(frac*24*60, 60))
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

func planetaryClock(t time.Time, day time.Duration) string {
	ms := t.UnixMilli() % day.Milliseconds()
	return strconv.FormatFloat(float64(ms)/float64(day.Milliseconds())*24, 'f', 3, 64)
}

func MarsTime(t time.Time) string   { return planetaryClock(t, marsSol) }
func JovianTime(t time.Time) string { return planetaryClock(t, jovianDay) }

// UnixEpochProgress is the percentage of the signed 32-bit range consumed.
func UnixEpochProgress(t time.Time) float64 {
	return float64(t.Unix()) / math.MaxInt32 * 100
}

func PlanckUnits(t time.Time) string {
	return strconv.FormatFloat(float64(secondsOfDay(t))/planckSeconds, 'e', 2, 64)
}

// GPSDilation is the accumulated relativistic drift of a GPS clock today, in seconds.
func GPSDilation(t time.Time) string {
	return strconv.FormatFloat(gpsDriftPerDay*dayFraction(t), 'f', 9, 64)
}

func QuaternionTime(t time.Time) string {
	h, m, s := t.Clock()
	return fmt.Sprintf("%di + %dj + %dk", h/2, m/30, s/12)
}

// PolarAngle is the day's progress in radians.
func PolarAngle(t time.Time) string {
	return strconv.FormatFloat(dayFraction(t)*2*math.Pi, 'f', 12, 64)
}

// RecursionState is the second in 6-bit binary.
func RecursionState(t time.Time) string {
	b := strconv.FormatInt(int64(t.Second()), 2)
	return strings.Repeat("0", 6-len(b)) + b
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// GCDPattern holds when hour and minute share a factor above one.
func GCDPattern(t time.Time) bool {
	h, m, _ := t.Clock()
	return gcd(h, m) > 1
}

// RecursionBaseCase holds when hour, minute and second are all multiples of three.
func RecursionBaseCase(t time.Time) bool {
	h, m, s := t.Clock()
	return h%3 == 0 && m%3 == 0 && s%3 == 0
}

// LightSeconds formats the one-way light delay to each body.
func LightSeconds(bodies []Body) map[string]string {
	out := make(map[string]string, len(bodies))
	for _, b := range bodies {
		out[b.Name] = strconv.FormatFloat(b.Km/lightKmPerSec, 'f', 3, 64)
	}
	return out
}

// Readings computes every alternate clock for t, read in t.Location().
func Readings(t time.Time, markets []Market) models.ClockReadings {
	t = t.Truncate(time.Second)
	r := models.ClockReadings{
		Instant:           t,
		Timezone:          t.Location().String(),
		Local:             t.Format("2006-01-02 15:04:05 MST"),
		PhiTime:           PhiTime(t),
		PiTime:            PiTime(t),
		ETime:             ETime(t),
		MetricTime:        MetricTime(t),
		DecimalTime:       DecimalTime(t),
		HexTime:           HexTime(t),
		InternetTime:      InternetTime(t),
		Stardate:          Stardate(t),
		SiderealTime:      SiderealTime(t),
		MarsTime:          MarsTime(t),
		JovianTime:        JovianTime(t),
		UnixEpochProgress: UnixEpochProgress(t),
		PlanckUnits:       PlanckUnits(t),
		GPSDilation:       GPSDilation(t),
		QuaternionTime:    QuaternionTime(t),
		PolarAngle:        PolarAngle(t),
		RecursionState:    RecursionState(t),
		GCDPattern:        GCDPattern(t),
		RecursionBaseCase: RecursionBaseCase(t),
		LightSeconds:      LightSeconds(Bodies),

		GalacticYearProgress: GalacticYearProgress(t),
		AsteroidBeltTime:     AsteroidBeltTime(t),
		CosmicCalendar:       CosmicCalendarAt(t),
		PulsarRotations:      PulsarRotations(t),
		MilkyWaySupernovae:   MilkyWaySupernovae(t),
		Lunar:                Lunar(t),
		Tide:                 Tide(t),
		WavesToday:           WavesToday(t),
		WhaleMigration:       WhaleMigration(t),
		PlanktonDepth:        PlanktonDepth(t),
		CesiumOscillations:   CesiumOscillations(t),
		LHCRevolutions:       LHCRevolutions(t),
		Carbon14Decays:       Carbon14Decays(t),
		Exoplanets:           exoplanetClocks(t, Exoplanets),
		Fibonacci:            FibonacciClock(t),
	}
	r.Markets = make([]models.MarketState, 0, len(markets))
	for _, m := range markets {
		r.Markets = append(r.Markets, MarketStatus(t, m))
	}
	return r
}

package patterns

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CosmicClock/internal/domain/models"
)

var (
	clockForecastSet = []string{"palindrome", "hex-special", "triple-equal"}
	wholeCatalog     = []string{AllPatterns}
)

func TestPredictStrictlyAfterFrom(t *testing.T) {
	p := NewPredictor()
	for _, from := range []models.TimeSample{
		sampleAt(0, 0, 0),
		sampleAt(13, 37, 0),
		sampleAt(23, 59, 59),
		models.NewTimeSample(time.Date(2024, time.December, 20, 23, 0, 0, 0, time.UTC)),
	} {
		for _, opts := range []PredictOptions{{}, {Only: wholeCatalog}} {
			for _, occ := range p.Predict(from, opts) {
				assert.True(t, occ.OccurringAt.After(from.Instant), "%s at %s", occ.ID, occ.OccurringAt)
			}
		}
	}
}

func TestPredictBoundAndSorted(t *testing.T) {
	p := NewPredictor()
	from := sampleAt(5, 5, 5)
	for _, cap := range []int{0, 1, 3, 10, 50} {
		got := p.Predict(from, PredictOptions{Cap: cap, Only: wholeCatalog})
		want := cap
		if want <= 0 || want > MaxCap {
			want = MaxCap
		}
		assert.LessOrEqual(t, len(got), want, "cap=%d", cap)
		assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
			return got[i].OccurringAt.Before(got[j].OccurringAt)
		}), "cap=%d", cap)
	}
}

func TestPredictIdempotent(t *testing.T) {
	p := NewPredictor()
	from := sampleAt(11, 11, 0)
	assert.Equal(t, p.Predict(from, PredictOptions{}), p.Predict(from, PredictOptions{}))
	assert.Equal(t, p.Predict(from, PredictOptions{Only: wholeCatalog}), p.Predict(from, PredictOptions{Only: wholeCatalog}))
}

func TestPredictTripleEqualFromFiveOhFive(t *testing.T) {
	p := NewPredictor()
	from := sampleAt(5, 5, 5)
	want := time.Date(2024, time.January, 15, 6, 6, 6, 0, time.UTC)

	for _, only := range [][]string{nil, clockForecastSet, {"triple-equal"}} {
		got := p.Predict(from, PredictOptions{Only: only})
		found := false
		for _, occ := range got {
			if occ.ID == "triple-equal" && occ.OccurringAt.Equal(want) {
				found = true
				assert.Equal(t, "All time units are equal: 06:06:06", occ.Description)
			}
		}
		assert.True(t, found, "only=%v", only)
	}

	// Over the whole catalog, minute-resolution hits before 06:00 fill the cap.
	for _, occ := range p.Predict(from, PredictOptions{Only: wholeCatalog}) {
		assert.True(t, occ.OccurringAt.Before(want))
	}
}

func TestPredictClockForecastSet(t *testing.T) {
	p := NewPredictor()
	got := p.Predict(sampleAt(5, 5, 5), PredictOptions{Only: clockForecastSet})
	assert.Equal(t, got, p.Predict(sampleAt(5, 5, 5), PredictOptions{}))
	assert.Equal(t, clockForecastSet, p.DefaultForecast())

	var clocks []string
	for _, occ := range got {
		clocks = append(clocks, occ.ID+"@"+occ.OccurringAt.Format("15:04:05"))
	}
	assert.Equal(t, []string{
		"palindrome@05:11:50",
		"palindrome@05:22:50",
		"palindrome@05:33:50",
		"triple-equal@06:06:06",
		"triple-equal@07:07:07",
		"triple-equal@08:08:08",
	}, clocks)
}

func TestPredictDefaultForecastOption(t *testing.T) {
	from := sampleAt(13, 0, 0)
	p := NewPredictor(WithDefaultForecast("leet"))
	got := p.Predict(from, PredictOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, "leet", got[0].ID)

	// explicit ids still win over the default
	got = p.Predict(from, PredictOptions{Only: []string{"triple-equal"}})
	require.NotEmpty(t, got)
	assert.Equal(t, "triple-equal", got[0].ID)

	assert.Equal(t, clockForecastSet, NewPredictor(WithDefaultForecast()).DefaultForecast())
	assert.Empty(t, NewPredictor(WithCatalog(DefaultCatalog())).DefaultForecast())
}

func TestPredictExactAdvancesOneDay(t *testing.T) {
	from := sampleAt(13, 37, 0)
	got := NewPredictor().Predict(from, PredictOptions{Only: []string{"leet"}})
	require.Len(t, got, 1)
	assert.True(t, got[0].OccurringAt.Equal(from.Instant.Add(24*time.Hour)))

	got = NewPredictor().Predict(from, PredictOptions{Only: []string{"leet"}, Horizon: time.Hour})
	assert.Empty(t, got)
}

func TestPredictMinuteOnsets(t *testing.T) {
	got := NewPredictor().Predict(sampleAt(5, 5, 5), PredictOptions{Only: []string{"numerology"}})
	require.Len(t, got, 3)
	assert.Equal(t, "05:07:00", got[0].OccurringAt.Format("15:04:05"))
	assert.Equal(t, "05:11:00", got[1].OccurringAt.Format("15:04:05"))
	assert.Equal(t, "05:13:00", got[2].OccurringAt.Format("15:04:05"))
}

func TestPredictCalendarSweep(t *testing.T) {
	from := models.NewTimeSample(time.Date(2024, time.December, 10, 12, 0, 0, 0, time.UTC))
	got := NewPredictor().Predict(from, PredictOptions{Only: []string{"astronomical"}})
	require.Len(t, got, 3)

	assert.Equal(t, time.Date(2024, time.December, 14, 2, 0, 0, 0, time.UTC), got[0].OccurringAt)
	assert.Equal(t, "Geminids Peak", got[0].Description)
	assert.Equal(t, time.Date(2024, time.December, 21, 0, 0, 0, 0, time.UTC), got[1].OccurringAt)
	assert.Equal(t, "December Solstice", got[1].Description)
	assert.Equal(t, time.Date(2025, time.January, 3, 2, 0, 0, 0, time.UTC), got[2].OccurringAt)

	short := NewPredictor().Predict(from, PredictOptions{Only: []string{"astronomical"}, CalendarDays: 5})
	require.Len(t, short, 1)
}

func TestPredictCalendarSameDayMidnightExcluded(t *testing.T) {
	from := models.NewTimeSample(time.Date(2024, time.December, 21, 0, 0, 0, 0, time.UTC))
	for _, occ := range NewPredictor().Predict(from, PredictOptions{Only: []string{"astronomical"}}) {
		assert.NotEqual(t, "December Solstice", occ.Description)
	}
}

func TestPredictExhaustionIsEmpty(t *testing.T) {
	var exhausted []string
	never := PatternDefinition{
		ID:       "never",
		Name:     "Never",
		Category: models.CategorySpecial,
		Family:   FamilySearch,
		Step:     time.Second,
		Match:    func(models.TimeSample) bool { return false },
	}
	p := NewPredictor(
		WithCatalog(Catalog{never}),
		WithExhaustionHook(func(id string) { exhausted = append(exhausted, id) }),
	)

	got := p.Predict(sampleAt(0, 0, 0), PredictOptions{MaxSteps: 10_000_000})
	assert.Empty(t, got)
	assert.Equal(t, []string{"never"}, exhausted)
}

func TestPredictStepBudgetIsHard(t *testing.T) {
	calls := 0
	counting := PatternDefinition{
		ID:     "count",
		Name:   "Count",
		Family: FamilySearch,
		Step:   time.Second,
		Match: func(models.TimeSample) bool {
			calls++
			return false
		},
	}
	NewPredictor(WithCatalog(Catalog{counting})).Predict(sampleAt(0, 0, 0), PredictOptions{Horizon: 72 * time.Hour})
	assert.Equal(t, MaxSearchSteps, calls)
}

func TestNormalize(t *testing.T) {
	o := PredictOptions{}.Normalize()
	assert.Equal(t, DefaultHorizon, o.Horizon)
	assert.Equal(t, DefaultCap, o.Cap)
	assert.Equal(t, DefaultPerPredicate, o.PerPredicate)
	assert.Equal(t, DefaultCalendarDays, o.CalendarDays)
	assert.Equal(t, MaxSearchSteps, o.MaxSteps)

	o = PredictOptions{Cap: 99, MaxSteps: 1 << 30}.Normalize()
	assert.Equal(t, MaxCap, o.Cap)
	assert.Equal(t, MaxSearchSteps, o.MaxSteps)
}

package patterns

import (
	"sort"
	"time"

	"CosmicClock/internal/domain/models"
)

const (
	DefaultHorizon      = 24 * time.Hour
	DefaultCap          = 10
	MaxCap              = 10
	DefaultPerPredicate = 3
	DefaultCalendarDays = 30
	// MaxSearchSteps bounds every forward search loop, whatever the options say.
	MaxSearchSteps = 86400
	// AllPatterns in Only selects the whole catalog.
	AllPatterns = "all"
)

// DefaultForecastIDs is the subset forecast when Only is empty.
var DefaultForecastIDs = []string{"palindrome", "hex-special", "triple-equal"}

// PredictOptions tunes a forecast. Zero values take the defaults.
type PredictOptions struct {
	Horizon      time.Duration
	Cap          int
	PerPredicate int
	CalendarDays int
	MaxSteps     int
	// Only restricts the forecast to these definition ids. Empty means the
	// predictor's default subset; AllPatterns means the whole catalog.
	Only []string
}

// Normalize fills defaults and clamps out-of-range values.
func (o PredictOptions) Normalize() PredictOptions {
	if o.Horizon <= 0 {
		o.Horizon = DefaultHorizon
	}
	if o.Cap <= 0 {
		o.Cap = DefaultCap
	}
	if o.Cap > MaxCap {
		o.Cap = MaxCap
	}
	if o.PerPredicate <= 0 {
		o.PerPredicate = DefaultPerPredicate
	}
	if o.CalendarDays <= 0 {
		o.CalendarDays = DefaultCalendarDays
	}
	if o.MaxSteps <= 0 || o.MaxSteps > MaxSearchSteps {
		o.MaxSteps = MaxSearchSteps
	}
	return o
}

func selected(only []string, id string) bool {
	if len(only) == 0 {
		return true
	}
	for _, v := range only {
		if v == id || v == AllPatterns {
			return true
		}
	}
	return false
}

// ExhaustionFunc is notified when a search definition spends its whole step
// budget without reaching PerPredicate matches.
type ExhaustionFunc func(id string)

// Predictor searches forward for the next occurrences of each definition.
type Predictor struct {
	catalog   Catalog
	defaults  []string
	exhausted ExhaustionFunc
}

// PredictorOption configures a Predictor.
type PredictorOption func(*Predictor)

// WithCatalog replaces the default catalog. A custom catalog forecasts every
// definition unless WithDefaultForecast follows.
func WithCatalog(c Catalog) PredictorOption {
	return func(p *Predictor) {
		p.catalog = c
		p.defaults = nil
	}
}

// WithDefaultForecast sets the ids forecast when a request leaves Only empty.
// No ids keeps the current default.
func WithDefaultForecast(ids ...string) PredictorOption {
	return func(p *Predictor) {
		if len(ids) > 0 {
			p.defaults = append([]string(nil), ids...)
		}
	}
}

// WithExhaustionHook registers fn for budget exhaustion reports.
func WithExhaustionHook(fn ExhaustionFunc) PredictorOption {
	return func(p *Predictor) { p.exhausted = fn }
}

// NewPredictor creates a predictor over the default catalog.
func NewPredictor(opts ...PredictorOption) *Predictor {
	p := &Predictor{catalog: defaultCatalog, defaults: DefaultForecastIDs}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DefaultForecast returns the ids forecast when Only is empty. Nil means the
// whole catalog.
func (p *Predictor) DefaultForecast() []string {
	return append([]string(nil), p.defaults...)
}

type candidate struct {
	at    time.Time
	order int
	occ   models.PredictedOccurrence
}

// Predict returns at most opts.Cap occurrences strictly after from, sorted ascending.
func (p *Predictor) Predict(from models.TimeSample, opts PredictOptions) []models.PredictedOccurrence {
	opts = opts.Normalize()
	start := from.Instant
	only := opts.Only
	if len(only) == 0 {
		only = p.defaults
	}

	var cands []candidate
	order := 0
	add := func(def PatternDefinition, at time.Time) {
		s := models.NewTimeSample(at)
		desc := def.Name
		if def.Describe != nil {
			desc = def.Describe(s)
		}
		cands = append(cands, candidate{
			at:    s.Instant,
			order: order,
			occ: models.PredictedOccurrence{
				ID:          def.ID,
				Name:        def.Name,
				Category:    def.Category,
				Description: desc,
				OccurringAt: s.Instant,
			},
		})
		order++
	}

	for _, def := range p.catalog {
		if !selected(only, def.ID) {
			continue
		}
		switch def.Family {
		case FamilyExact:
			for _, at := range exactInstants(def, start, opts) {
				add(def, at)
			}
		case FamilySearch:
			found := p.search(def, start, opts)
			for _, at := range found {
				add(def, at)
			}
		case FamilyCalendar:
			for _, at := range calendarInstants(def, start, opts) {
				add(def, at)
			}
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if !cands[i].at.Equal(cands[j].at) {
			return cands[i].at.Before(cands[j].at)
		}
		return cands[i].order < cands[j].order
	})
	if len(cands) > opts.Cap {
		cands = cands[:opts.Cap]
	}

	out := make([]models.PredictedOccurrence, len(cands))
	for i, c := range cands {
		out[i] = c.occ
	}
	return out
}

func exactInstants(def PatternDefinition, from time.Time, opts PredictOptions) []time.Time {
	if def.Targets == nil {
		return nil
	}
	limit := from.Add(opts.Horizon)
	y, m, d := from.Date()
	loc := from.Location()

	var out []time.Time
	for _, c := range def.Targets() {
		if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 || c.Second < 0 || c.Second > 59 {
			continue
		}
		at := time.Date(y, m, d, c.Hour, c.Minute, c.Second, 0, loc)
		if !at.After(from) {
			at = time.Date(y, m, d+1, c.Hour, c.Minute, c.Second, 0, loc)
		}
		if at.After(limit) {
			continue
		}
		out = append(out, at)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	if len(out) > opts.PerPredicate {
		out = out[:opts.PerPredicate]
	}
	return out
}

func (p *Predictor) search(def PatternDefinition, from time.Time, opts PredictOptions) []time.Time {
	if def.Match == nil {
		return nil
	}
	step := def.Step
	if step <= 0 {
		step = time.Second
	}

	cursor := from.Truncate(step).Add(step)
	limit := from.Add(opts.Horizon)
	budget := int(opts.Horizon / step)
	if budget > opts.MaxSteps {
		budget = opts.MaxSteps
	}

	var out []time.Time
	steps := 0
	for ; steps < budget && len(out) < opts.PerPredicate && !cursor.After(limit); steps++ {
		if def.Match(models.NewTimeSample(cursor)) {
			out = append(out, cursor)
		}
		cursor = cursor.Add(step)
	}
	if len(out) < opts.PerPredicate && steps >= budget && p.exhausted != nil {
		p.exhausted(def.ID)
	}
	return out
}

func calendarInstants(def PatternDefinition, from time.Time, opts PredictOptions) []time.Time {
	y, m, d := from.Date()
	loc := from.Location()

	var out []time.Time
	for i := 0; i < opts.CalendarDays; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		month0, dom := int(day.Month())-1, day.Day()
		for _, a := range def.Dates {
			if a.Month != month0 || a.Day != dom {
				continue
			}
			at := day
			if a.Hour >= 0 {
				at = time.Date(day.Year(), day.Month(), dom, a.Hour, 0, 0, 0, loc)
			}
			if at.After(from) {
				out = append(out, at)
			}
		}
	}
	return out
}

package patterns

import (
	"fmt"
	"strconv"
	"time"

	"CosmicClock/internal/domain/models"
)

// Family selects how the predictor searches for the next occurrence of a definition.
type Family string

const (
	// FamilyExact definitions hold at fixed clock targets.
	FamilyExact Family = "exact"
	// FamilySearch definitions have no closed form; the predictor steps forward.
	FamilySearch Family = "search"
	// FamilyCalendar definitions hold on fixed calendar days.
	FamilyCalendar Family = "calendar"
)

// Clock is a time-of-day target.
type Clock struct {
	Hour, Minute, Second int
}

// PatternDefinition is one entry of the predicate catalog.
type PatternDefinition struct {
	ID       string
	Name     string
	Category models.Category
	Family   Family
	// Step is the search resolution (time.Second or time.Minute). Search family only.
	Step time.Duration
	// Targets lists the clock targets of an exact definition. Invalid clocks are dropped.
	Targets func() []Clock
	// Dates lists the calendar days of a calendar definition.
	Dates []Alignment

	Match    func(models.TimeSample) bool
	Describe func(models.TimeSample) string
}

// Catalog is an ordered set of definitions; order is the detector output order.
type Catalog []PatternDefinition

// Lookup finds a definition by id.
func (c Catalog) Lookup(id string) (PatternDefinition, bool) {
	for _, d := range c {
		if d.ID == id {
			return d, true
		}
	}
	return PatternDefinition{}, false
}

var defaultCatalog = Catalog{
	{
		ID:       "leet",
		Name:     "L337 Time (Elite o'clock)",
		Category: models.CategorySpecial,
		Family:   FamilyExact,
		Targets:  func() []Clock { return []Clock{{Hour: 13, Minute: 37}} },
		Match:    func(s models.TimeSample) bool { return s.Hour == 13 && s.Minute == 37 },
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("%02d:%02d reads as 1337 in leetspeak", s.Hour, s.Minute)
		},
	},
	{
		ID:       "palindrome",
		Name:     "Palindrome Time",
		Category: models.CategorySequence,
		Family:   FamilySearch,
		Step:     time.Second,
		Match:    func(s models.TimeSample) bool { return IsPalindrome(s.HHMMSS) },
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("%s reads the same forwards and backwards", s.Clock())
		},
	},
	{
		ID:       "repeating",
		Name:     "Repeating Digits Time",
		Category: models.CategorySequence,
		Family:   FamilySearch,
		Step:     time.Second,
		Match:    func(s models.TimeSample) bool { return isRepeating(s.HHMMSS) },
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("Every digit of %s is %c", s.Clock(), s.HHMMSS[0])
		},
	},
	{
		ID:       "binary-minute",
		Name:     "Binary Minute Pattern",
		Category: models.CategoryMathematical,
		Family:   FamilySearch,
		Step:     time.Minute,
		Match:    func(s models.TimeSample) bool { return isUniformBinary(s.Minute) },
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("Minute %02d in binary is %s", s.Minute, binaryMinute(s.Minute))
		},
	},
	{
		ID:       "sequential",
		Name:     "Sequential Time",
		Category: models.CategorySequence,
		Family:   FamilySearch,
		Step:     time.Second,
		Match:    func(s models.TimeSample) bool { return isSequentialWrap(s.HHMMSS) },
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("The digits of %s count upwards", s.Clock())
		},
	},
	{
		ID:       "hex-special",
		Name:     "Hex Special Time",
		Category: models.CategorySpecial,
		Family:   FamilyExact,
		Targets:  hexTargets,
		Match: func(s models.TimeSample) bool {
			_, ok := lookupHex(HexOf(s.N()))
			return ok
		},
		Describe: func(s models.TimeSample) string {
			hex := HexOf(s.N())
			p, _ := lookupHex(hex)
			return fmt.Sprintf("Hex %s (0x%s)", p.Label, hex)
		},
	},
	{
		ID:       "triple-equal",
		Name:     "Triple Equal Time",
		Category: models.CategoryMathematical,
		Family:   FamilyExact,
		Targets:  tripleTargets,
		Match:    func(s models.TimeSample) bool { return s.Hour == s.Minute && s.Minute == s.Second },
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("All time units are equal: %s", s.Clock())
		},
	},
	{
		ID:       "perfect-square",
		Name:     "Perfect Square Time",
		Category: models.CategoryMathematical,
		Family:   FamilySearch,
		Step:     time.Minute,
		Match:    func(s models.TimeSample) bool { return IsPerfectSquare(s.N()) },
		Describe: func(s models.TimeSample) string {
			n := s.N()
			r := isqrt(n)
			return fmt.Sprintf("%d = %d²", n, r)
		},
	},
	{
		ID:       "triangular",
		Name:     "Triangular Number Time",
		Category: models.CategoryMathematical,
		Family:   FamilySearch,
		Step:     time.Minute,
		Match:    func(s models.TimeSample) bool { return IsTriangular(s.N()) },
		Describe: func(s models.TimeSample) string {
			n := s.N()
			k := (isqrt(8*n+1) - 1) / 2
			return fmt.Sprintf("%d is the triangular number T(%d)", n, k)
		},
	},
	{
		ID:       "pentagonal",
		Name:     "Pentagonal Number Time",
		Category: models.CategoryMathematical,
		Family:   FamilySearch,
		Step:     time.Minute,
		Match:    func(s models.TimeSample) bool { return IsPentagonal(s.N()) },
		Describe: func(s models.TimeSample) string {
			n := s.N()
			k := (isqrt(24*n+1) + 1) / 6
			return fmt.Sprintf("%d is the pentagonal number P(%d)", n, k)
		},
	},
	{
		ID:       "prime",
		Name:     "Prime Time",
		Category: models.CategoryMathematical,
		Family:   FamilySearch,
		Step:     time.Minute,
		Match:    func(s models.TimeSample) bool { return IsPrime(s.N()) },
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("%d is prime", s.N())
		},
	},
	{
		ID:       "fibonacci",
		Name:     "Fibonacci Time",
		Category: models.CategorySequence,
		Family:   FamilySearch,
		Step:     time.Minute,
		Match:    func(s models.TimeSample) bool { return IsFibonacci(s.N()) },
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("%d is a Fibonacci number", s.N())
		},
	},
	{
		ID:       "time-mirror",
		Name:     "Time Mirror",
		Category: models.CategorySymmetry,
		Family:   FamilySearch,
		Step:     time.Second,
		Match:    func(s models.TimeSample) bool { return isTimeSymmetric(s.Hour, s.Minute, s.Second) },
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("%s mirrors itself around the minutes", s.Clock())
		},
	},
	{
		ID:       "arithmetic",
		Name:     "Arithmetic Sequence Time",
		Category: models.CategorySequence,
		Family:   FamilySearch,
		Step:     time.Second,
		Match:    func(s models.TimeSample) bool { return isArithmetic(s.HHMMSS) },
		Describe: func(s models.TimeSample) string {
			d := digits(s.HHMMSS)
			return fmt.Sprintf("The digits of %s step by %d", s.Clock(), d[1]-d[0])
		},
	},
	{
		ID:       "geometric",
		Name:     "Geometric Sequence Time",
		Category: models.CategorySequence,
		Family:   FamilySearch,
		Step:     time.Second,
		Match:    func(s models.TimeSample) bool { return isGeometric(s.HHMMSS) },
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("The non-zero digits of %s form a geometric sequence", s.Clock())
		},
	},
	{
		ID:       "numerology",
		Name:     "Numerological Harmony",
		Category: models.CategoryMathematical,
		Family:   FamilySearch,
		Step:     time.Minute,
		Match: func(s models.TimeSample) bool {
			switch DigitalRoot(s.N()) {
			case 1, 3, 7, 9:
				return true
			}
			return false
		},
		Describe: func(s models.TimeSample) string {
			return fmt.Sprintf("%s reduces to %d", s.HHMM, DigitalRoot(s.N()))
		},
	},
	{
		ID:       "astronomical",
		Name:     "Astronomical Alignment",
		Category: models.CategoryAstronomical,
		Family:   FamilyCalendar,
		Dates:    Alignments,
		Match: func(s models.TimeSample) bool {
			_, ok := activeAlignment(s)
			return ok
		},
		Describe: func(s models.TimeSample) string {
			a, _ := activeAlignment(s)
			return a.Name
		},
	},
}

// DefaultCatalog returns a copy of the built-in catalog.
func DefaultCatalog() Catalog {
	out := make(Catalog, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

func tripleTargets() []Clock {
	out := make([]Clock, 0, 24)
	for h := 0; h < 24; h++ {
		out = append(out, Clock{Hour: h, Minute: h, Second: h})
	}
	return out
}

// hexTargets decodes each hex token to hour*100+minute. No token fits a valid
// clock (the smallest, 0xB00B, is 45067), so the list is empty.
func hexTargets() []Clock {
	var out []Clock
	for _, p := range HexPatterns {
		n, err := strconv.ParseInt(p.Token, 16, 64)
		if err != nil {
			continue
		}
		h, m := int(n/100), int(n%100)
		if h < 24 && m < 60 {
			out = append(out, Clock{Hour: h, Minute: m})
		}
	}
	return out
}

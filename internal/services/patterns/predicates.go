package patterns

import (
	"math"
	"strconv"
	"strings"

	"CosmicClock/internal/domain/models"
)

// Phi is the golden ratio.
var Phi = (1 + math.Sqrt(5)) / 2

// HexPattern is an entry of the hex-word dictionary.
type HexPattern struct {
	Token string
	Label string
}

// HexPatterns lists the hex words recognised by the hex-special predicate, in lookup order.
var HexPatterns = []HexPattern{
	{Token: "CAFE", Label: "Café Time"},
	{Token: "FACE", Label: "Face Time"},
	{Token: "BABE", Label: "Babe Time"},
	{Token: "DEAD", Label: "Dead Time"},
	{Token: "BEEF", Label: "Beef Time"},
	{Token: "C0DE", Label: "Code Time"},
	{Token: "B00B", Label: "Boob Time"},
	{Token: "FADE", Label: "Fade Time"},
	{Token: "FEED", Label: "Feed Time"},
	{Token: "F00D", Label: "Food Time"},
}

// Alignment is a fixed calendar day, optionally gated to one local hour.
type Alignment struct {
	Name  string
	Month int // 0-based
	Day   int
	Hour  int // -1 when the whole day matches
}

// Alignments holds approximate equinox, solstice and meteor-shower peak dates.
var Alignments = []Alignment{
	{Name: "March Equinox", Month: 2, Day: 20, Hour: -1},
	{Name: "June Solstice", Month: 5, Day: 21, Hour: -1},
	{Name: "September Equinox", Month: 8, Day: 22, Hour: -1},
	{Name: "December Solstice", Month: 11, Day: 21, Hour: -1},
	{Name: "Quadrantids Peak", Month: 0, Day: 3, Hour: 2},
	{Name: "Lyrids Peak", Month: 3, Day: 22, Hour: 2},
	{Name: "Perseids Peak", Month: 7, Day: 12, Hour: 2},
	{Name: "Orionids Peak", Month: 9, Day: 21, Hour: 2},
	{Name: "Geminids Peak", Month: 11, Day: 14, Hour: 2},
}

func isqrt(n int) int {
	if n < 0 {
		return -1
	}
	r := int(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

// IsPerfectSquare reports whether n is a square of an integer.
func IsPerfectSquare(n int) bool {
	if n < 0 {
		return false
	}
	r := isqrt(n)
	return r*r == n
}

// IsTriangular reports whether (sqrt(8n+1)-1)/2 is an integer.
func IsTriangular(n int) bool {
	return n >= 0 && IsPerfectSquare(8*n+1)
}

// IsPentagonal reports whether (sqrt(24n+1)+1)/6 is an integer.
func IsPentagonal(n int) bool {
	if n < 0 {
		return false
	}
	k := 24*n + 1
	s := isqrt(k)
	return s*s == k && (s+1)%6 == 0
}

// IsPrime uses trial division up to sqrt(n).
func IsPrime(n int) bool {
	if n <= 1 {
		return false
	}
	if n < 4 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for d := 3; d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// IsFibonacci applies the Beatty-interval test: n >= 1 is Fibonacci iff
// [n*phi - 1/n, n*phi + 1/n] contains an integer. Zero is F0.
func IsFibonacci(n int) bool {
	if n < 0 {
		return false
	}
	if n == 0 {
		return true
	}
	x := float64(n) * Phi
	return math.Abs(x-math.Round(x)) <= 1/float64(n)
}

// DigitalRoot repeatedly sums the decimal digits of n until one digit remains.
func DigitalRoot(n int) int {
	if n < 0 {
		n = -n
	}
	for n > 9 {
		sum := 0
		for n > 0 {
			sum += n % 10
			n /= 10
		}
		n = sum
	}
	return n
}

// IsPalindrome reports whether s reads the same reversed.
func IsPalindrome(s string) bool {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if s[i] != s[j] {
			return false
		}
	}
	return true
}

func digits(s string) []int {
	out := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = int(s[i] - '0')
	}
	return out
}

// isRepeating: every character identical.
func isRepeating(s string) bool {
	return s != "" && strings.Count(s, s[:1]) == len(s)
}

// isSequentialWrap: each adjacent pair increments by one mod 10 across the whole string.
func isSequentialWrap(s string) bool {
	d := digits(s)
	if len(d) < 2 {
		return false
	}
	for i := 0; i+1 < len(d); i++ {
		if d[i+1] != (d[i]+1)%10 {
			return false
		}
	}
	return true
}

func isArithmetic(s string) bool {
	d := digits(s)
	if len(d) < 2 {
		return false
	}
	diff := d[1] - d[0]
	for i := 1; i+1 < len(d); i++ {
		if d[i+1]-d[i] != diff {
			return false
		}
	}
	return true
}

// isGeometric needs at least three non-zero digits; ratios are compared by
// cross multiplication (d[i]^2 == d[i-1]*d[i+1]).
func isGeometric(s string) bool {
	var nz []int
	for _, v := range digits(s) {
		if v != 0 {
			nz = append(nz, v)
		}
	}
	if len(nz) < 3 {
		return false
	}
	for i := 1; i+1 < len(nz); i++ {
		if nz[i]*nz[i] != nz[i-1]*nz[i+1] {
			return false
		}
	}
	return true
}

func binaryMinute(minute int) string {
	b := strconv.FormatInt(int64(minute), 2)
	if len(b) < 6 {
		b = strings.Repeat("0", 6-len(b)) + b
	}
	return b
}

func isUniformBinary(minute int) bool {
	b := binaryMinute(minute)
	return isRepeating(b)
}

// HexOf returns the uppercase hex rendering of n.
func HexOf(n int) string {
	return strings.ToUpper(strconv.FormatInt(int64(n), 16))
}

func lookupHex(hex string) (HexPattern, bool) {
	for _, p := range HexPatterns {
		if p.Token == hex {
			return p, true
		}
	}
	return HexPattern{}, false
}

func isTimeSymmetric(hour, minute, second int) bool {
	b := []byte{
		byte('0' + hour/10), byte('0' + hour%10),
		byte('0' + minute/10), byte('0' + minute%10),
		byte('0' + second/10), byte('0' + second%10),
	}
	return IsPalindrome(string(b))
}

// alignmentsOn returns the table entries falling on the sample's date.
func alignmentsOn(month, day int) []Alignment {
	var out []Alignment
	for _, a := range Alignments {
		if a.Month == month && a.Day == day {
			out = append(out, a)
		}
	}
	return out
}

func activeAlignment(s models.TimeSample) (Alignment, bool) {
	for _, a := range alignmentsOn(s.Month, s.Day) {
		if a.Hour < 0 || a.Hour == s.Hour {
			return a, true
		}
	}
	return Alignment{}, false
}

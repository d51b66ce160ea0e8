package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberPredicates(t *testing.T) {
	cases := []struct {
		name string
		fn   func(int) bool
		yes  []int
		no   []int
	}{
		{"square", IsPerfectSquare, []int{0, 1, 144, 529, 2304}, []int{2, 143, 2359, -4}},
		{"triangular", IsTriangular, []int{0, 1, 3, 10, 528, 1830}, []int{2, 4, 527, -1}},
		{"pentagonal", IsPentagonal, []int{1, 5, 12, 22, 35, 532}, []int{0, 2, 6, 531}},
		{"prime", IsPrime, []int{2, 3, 5, 509, 521, 2357}, []int{-7, 0, 1, 4, 507, 2359}},
		{"fibonacci", IsFibonacci, []int{0, 1, 2, 3, 5, 8, 13, 21, 55, 144, 233, 377, 610, 987, 1597}, []int{4, 6, 7, 9, 100, 1000, 2000}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, n := range tc.yes {
				assert.True(t, tc.fn(n), "%d", n)
			}
			for _, n := range tc.no {
				assert.False(t, tc.fn(n), "%d", n)
			}
		})
	}
}

func TestFibonacciMatchesGeneratedSequence(t *testing.T) {
	fib := map[int]bool{}
	for a, b := 0, 1; a <= 2359; a, b = b, a+b {
		fib[a] = true
	}
	for n := 0; n <= 2359; n++ {
		assert.Equal(t, fib[n], IsFibonacci(n), "n=%d", n)
	}
}

func TestDigitalRoot(t *testing.T) {
	assert.Equal(t, 0, DigitalRoot(0))
	assert.Equal(t, 1, DigitalRoot(2359))
	assert.Equal(t, 3, DigitalRoot(507))
	assert.Equal(t, 9, DigitalRoot(999))
}

func TestDigitPredicates(t *testing.T) {
	assert.True(t, isRepeating("111111"))
	assert.False(t, isRepeating("111112"))

	assert.True(t, isSequentialWrap("012345"))
	assert.True(t, isSequentialWrap("123456"))
	assert.True(t, isSequentialWrap("789012"))
	assert.False(t, isSequentialWrap("123457"))

	assert.True(t, isArithmetic("000000"))
	assert.True(t, isArithmetic("012345"))
	assert.True(t, isArithmetic("543210"))
	assert.False(t, isArithmetic("135790"))

	assert.True(t, isGeometric("124800"))
	assert.True(t, isGeometric("050550"))
	assert.False(t, isGeometric("120000"), "two non-zero digits do not fix a ratio")
	assert.False(t, isGeometric("000000"))
	assert.False(t, isGeometric("123000"))

	assert.True(t, isUniformBinary(0))
	assert.False(t, isUniformBinary(1))
	assert.Equal(t, "000101", binaryMinute(5))

	assert.True(t, isTimeSymmetric(12, 55, 21))
	assert.False(t, isTimeSymmetric(12, 55, 12))
}

func TestHexTargetsEmpty(t *testing.T) {
	assert.Empty(t, hexTargets())
	assert.Equal(t, "937", HexOf(2359))
}

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowRefills(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a", 2, 1))
	assert.True(t, l.Allow("a", 2, 1))
	assert.False(t, l.Allow("a", 2, 1))
	assert.True(t, l.Allow("b", 2, 1), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a", 2, 1))
	assert.False(t, l.Allow("a", 2, 1))
}

func TestPrune(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New()
	l.now = func() time.Time { return now }
	l.Allow("a", 1, 1)
	now = now.Add(time.Hour)
	assert.Equal(t, 1, l.Prune(time.Minute))
}

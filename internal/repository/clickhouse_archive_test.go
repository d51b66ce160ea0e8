package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CosmicClock/internal/domain/models"
	domrepo "CosmicClock/internal/domain/repository"
)

func TestBuildCHInsertSkipsInvalid(t *testing.T) {
	at := time.Date(2024, 1, 15, 13, 37, 0, 0, time.FixedZone("X", 3600))
	q, args := buildCHInsert("pattern_events", []*models.PatternEvent{
		{EventID: "e1", PatternID: "leet", Name: "Leet Time", Category: models.CategorySpecial, DetectedAt: at, Timezone: "UTC"},
		nil,
		{PatternID: "no-id"},
	})
	require.NotEmpty(t, q)
	assert.Contains(t, q, "INSERT INTO pattern_events (event_id, pattern_id")
	assert.Contains(t, q, "VALUES (?, ?, ?, ?, ?, ?, ?)")
	assert.NotContains(t, q, "),(")
	require.Len(t, args, 7)
	assert.Equal(t, "special", args[3])
	assert.Equal(t, at.UTC(), args[5])

	q, args = buildCHInsert("pattern_events", []*models.PatternEvent{nil})
	assert.Empty(t, q)
	assert.Nil(t, args)
}

func TestBucketFunctions(t *testing.T) {
	assert.Equal(t, "toStartOfMinute", chBucketFunc(domrepo.G1m))
	assert.Equal(t, "toStartOfHour", chBucketFunc(domrepo.G1h))
	assert.Equal(t, "toStartOfDay", chBucketFunc(domrepo.G1d))
	assert.Equal(t, "minute", pgTruncUnit(domrepo.G1m))
	assert.Equal(t, "hour", pgTruncUnit(""))
	assert.Equal(t, "day", pgTruncUnit(domrepo.G1d))
}

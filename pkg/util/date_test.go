package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	require.True(t, ok)
	assert.Equal(t, s, got.UTC().Format(time.RFC3339))

	got, ok = ParseTime("2024-10-10T13:37:00.5+02:00")
	require.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, time.Duration(got.Nanosecond()))
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	require.True(t, ok)
	assert.Equal(t, ts, got.Unix())

	_, ok = ParseTime("-5")
	assert.False(t, ok)
	_, ok = ParseTime("yesterday")
	assert.False(t, ok)
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	assert.True(t, ParseTimeDefault("", def).Equal(def))
	assert.True(t, ParseTimeDefault("garbage", def).Equal(def))
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())

	_, err = LoadLocation("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestAlignRange(t *testing.T) {
	from := time.Date(2024, 1, 15, 13, 37, 42, 0, time.UTC)
	f, to := AlignRange(from, from.Add(time.Hour), time.Hour)
	assert.Equal(t, time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC), f)
	assert.Equal(t, time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC), to)
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, SplitCSV("  "))
	assert.Equal(t, []string{"leet", "hex-special"}, SplitCSV(" leet, ,hex-special,"))
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTemporalRange_SingleWindowWhenRangeFitsInThirtyDays(t *testing.T) {
	windows, err := SplitTemporalRange("2024-01-01T00:00:00Z,2024-01-10T00:00:00Z")
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "2024-01-01T00:00:00Z", windows[0].Start)
	assert.Equal(t, "2024-01-10T00:00:00Z", windows[0].End)
}

func TestSplitTemporalRange_SplitsIntoConsecutiveThirtyDayWindows(t *testing.T) {
	windows, err := SplitTemporalRange("2024-01-01T00:00:00Z,2024-03-15T00:00:00Z")
	require.NoError(t, err)
	require.True(t, len(windows) >= 2)

	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].End, windows[i].Start)
	}
	assert.Equal(t, "2024-01-01T00:00:00Z", windows[0].Start)
	assert.Equal(t, "2024-03-15T00:00:00Z", windows[len(windows)-1].End)
}

func TestSplitTemporalRange_LastWindowClipsToExactRequestedEnd(t *testing.T) {
	windows, err := SplitTemporalRange("2024-01-01T00:00:00Z,2024-02-05T12:34:56Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-05T12:34:56Z", windows[len(windows)-1].End)
}

func TestSplitTemporalRange_ErrorsWhenMissingComma(t *testing.T) {
	_, err := SplitTemporalRange("2024-01-01T00:00:00Z")
	assert.ErrorIs(t, err, ErrMalformedTemporalRange)
}

func TestSplitTemporalRange_ErrorsOnUnparseableTimestamp(t *testing.T) {
	_, err := SplitTemporalRange("not-a-date,2024-01-10T00:00:00Z")
	assert.ErrorIs(t, err, ErrMalformedTemporalRange)
}

func TestSplitTemporalRange_ErrorsWhenEndNotAfterStart(t *testing.T) {
	_, err := SplitTemporalRange("2024-01-10T00:00:00Z,2024-01-01T00:00:00Z")
	assert.ErrorIs(t, err, ErrMalformedTemporalRange)
}

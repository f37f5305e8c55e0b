package cyclepass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AssignsDenseIdsInFirstAppearanceOrder(t *testing.T) {
	uris := []string{
		"s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_PIC0_01.zip",
		"s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_011_NA_20240101T000100_20240101T000110_PIC0_01.zip",
		"s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240102T000000_20240102T000010_PIC0_01.zip",
	}

	idx := NewCycleIndexer()
	forward, reverse, err := idx.Index(uris)
	require.NoError(t, err)

	require.Len(t, forward, 2, "the repeated (001, 010) pair must collapse to a single id")
	assert.Equal(t, 1, forward["001_010"])
	assert.Equal(t, 2, forward["001_011"])
	assert.Equal(t, CyclePass{Cycle: "001", Pass: "010"}, reverse[1])
	assert.Equal(t, CyclePass{Cycle: "001", Pass: "011"}, reverse[2])
}

func TestIndex_RoundTripIsIdentityOnObservedPairs(t *testing.T) {
	uris := []string{
		"s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_PIC0_01.zip",
		"s3://bucket/SWOT_L2_HR_RiverSP_2.0_002_020_NA_20240201T000000_20240201T000010_PIC0_01.zip",
		"s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240301T000000_20240301T000010_PIC0_01.zip",
	}

	forward, reverse, err := NewCycleIndexer().Index(uris)
	require.NoError(t, err)

	for key, id := range forward {
		cp, ok := reverse[id]
		require.True(t, ok, "id %d missing from reverse map", id)
		assert.Equal(t, key, cp.String(), "forward(reverse(id)) must be the identity")
	}
}

func TestIndex_MalformedGranuleNameIsSkippedNotFatal(t *testing.T) {
	uris := []string{
		"s3://bucket/too_short_name.zip",
		"s3://bucket/SWOT_L2_HR_RiverSP_001_010_NA_20240101T000000_20240101T000010_PIC0_01.zip",
	}

	forward, reverse, err := NewCycleIndexer().Index(uris)
	assert.ErrorIs(t, err, ErrMalformedGranuleName)
	require.Len(t, forward, 1)
	assert.Equal(t, 1, forward["001_010"])
	assert.Len(t, reverse, 1)
}

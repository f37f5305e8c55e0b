package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalSortStrings_OrdersDigitRunsByValueNotLexically(t *testing.T) {
	uris := []string{
		"s3://bucket/granule_12.zip",
		"s3://bucket/granule_2.zip",
		"s3://bucket/granule_9.zip",
		"s3://bucket/granule_100.zip",
	}

	NaturalSortStrings(uris)
	assert.Equal(t, []string{
		"s3://bucket/granule_2.zip",
		"s3://bucket/granule_9.zip",
		"s3://bucket/granule_12.zip",
		"s3://bucket/granule_100.zip",
	}, uris)
}

func TestNaturalSortStrings_StableAcrossZeroPaddingWidth(t *testing.T) {
	padded := []string{"granule_012.zip", "granule_002.zip", "granule_009.zip"}
	unpadded := []string{"granule_12.zip", "granule_2.zip", "granule_9.zip"}

	NaturalSortStrings(padded)
	NaturalSortStrings(unpadded)

	assert.Equal(t, []string{"granule_002.zip", "granule_009.zip", "granule_012.zip"}, padded)
	assert.Equal(t, []string{"granule_2.zip", "granule_9.zip", "granule_12.zip"}, unpadded)
}

func TestNaturalSortStrings_MultipleDigitRunsComparedFieldByField(t *testing.T) {
	uris := []string{
		"SWOT_L2_HR_RiverSP_001_011_NA.zip",
		"SWOT_L2_HR_RiverSP_001_002_NA.zip",
		"SWOT_L2_HR_RiverSP_001_010_NA.zip",
	}

	NaturalSortStrings(uris)
	assert.Equal(t, []string{
		"SWOT_L2_HR_RiverSP_001_002_NA.zip",
		"SWOT_L2_HR_RiverSP_001_010_NA.zip",
		"SWOT_L2_HR_RiverSP_001_011_NA.zip",
	}, uris)
}

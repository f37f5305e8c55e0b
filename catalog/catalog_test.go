package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterByContinent_MatchesGroupedCodes(t *testing.T) {
	uris := []string{
		"s3://bucket/SWOT_NA_reach_001.zip",
		"s3://bucket/SWOT_AR_reach_002.zip",
		"s3://bucket/SWOT_GR_reach_003.zip",
		"s3://bucket/SWOT_EU_reach_004.zip",
	}

	out, err := FilterByContinent(uris, "NA")
	require.NoError(t, err)
	assert.ElementsMatch(t, uris[:3], out, "NA continent must also match its AR and GR granule codes")
}

func TestFilterByContinent_UnknownContinent(t *testing.T) {
	_, err := FilterByContinent([]string{"s3://bucket/x.zip"}, "ZZ")
	assert.ErrorIs(t, err, ErrUnknownContinent)
}

func TestParseProvider_CaseInsensitive(t *testing.T) {
	p, err := ParseProvider("pocloud")
	require.NoError(t, err)
	assert.Equal(t, ProviderPOCLOUD, p)

	_, err = ParseProvider("not-a-provider")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestCollapseReprocessed_KeepsHighestProcessingNumber(t *testing.T) {
	uris := []string{
		"s3://bucket/SWOT_L2_HR_RiverSP_001_010_NA_20240101T000000_20240101T000010_PIC0_01.zip",
		"s3://bucket/SWOT_L2_HR_RiverSP_001_010_NA_20240101T000000_20240101T000010_PIC0_02.zip",
		"s3://bucket/SWOT_L2_HR_RiverSP_001_011_NA_20240101T000100_20240101T000110_PIC0_01.zip",
	}

	out := CollapseReprocessed(uris)
	require.Len(t, out, 2)
	assert.Contains(t, out, "s3://bucket/SWOT_L2_HR_RiverSP_001_010_NA_20240101T000000_20240101T000010_PIC0_02.zip")
	assert.Contains(t, out, "s3://bucket/SWOT_L2_HR_RiverSP_001_011_NA_20240101T000100_20240101T000110_PIC0_01.zip")
}

func TestCollapseReprocessed_SingletonsPassThrough(t *testing.T) {
	uris := []string{"s3://bucket/granule_only_one_01.zip"}
	out := CollapseReprocessed(uris)
	assert.Equal(t, uris, out)
}

func TestZipGranules_DropsNonZipURLs(t *testing.T) {
	uris := []string{"s3://bucket/a.zip", "s3://bucket/a.xml", "s3://bucket/b.zip"}
	out := ZipGranules(uris)
	assert.Equal(t, []string{"s3://bucket/a.zip", "s3://bucket/b.zip"}, out)
}

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swot-confluence/invsets"
	"github.com/swot-confluence/invsets/cyclepass"
	"github.com/swot-confluence/invsets/setbuilder"
)

func TestBuildReachManifest_SortsAscendingAndFillsFilenames(t *testing.T) {
	ids := []invsets.ReachID{710020001, 710010001}
	out := BuildReachManifest(ids, "na_sword_v16.nc", "na_sos.nc")

	require.Len(t, out, 2)
	assert.Equal(t, int64(710010001), out[0].ReachID)
	assert.Equal(t, int64(710020001), out[1].ReachID)
	assert.Equal(t, "710010001_SWOT.nc", out[0].Swot)
	assert.Equal(t, "na_sword_v16.nc", out[0].Sword)
	assert.Equal(t, "na_sos.nc", out[0].Sos)
}

func TestBuildBasinManifest_GroupsBySixDigitBasinCode(t *testing.T) {
	ids := []invsets.ReachID{710010001, 710010021, 710020001}
	out := BuildBasinManifest(ids, "na_sword_v16.nc", "na_sos.nc")

	require.Len(t, out, 2)
	assert.Equal(t, int64(710010), out[0].BasinID)
	assert.ElementsMatch(t, []int64{710010001, 710010021}, out[0].ReachID)
	assert.Len(t, out[0].Swot, 2)
	assert.Equal(t, int64(710020), out[1].BasinID)
	assert.Equal(t, []int64{710020001}, out[1].ReachID)
}

func TestBuildReachNodeManifest_AssociatesNodesSharingReachPrefix(t *testing.T) {
	db := invsets.NewReferenceDB()
	db.Put(&invsets.Reach{ReachID: 7100100011})
	db.PutNode(7100100011, 71001000110001)
	db.PutNode(7100100011, 71001000110002)

	out := BuildReachNodeManifest(db, []invsets.ReachID{7100100011})
	require.Len(t, out, 1)

	pair, ok := out[0].([]any)
	require.True(t, ok)
	assert.Equal(t, int64(7100100011), pair[0])
	assert.Equal(t, []int64{71001000110001, 71001000110002}, pair[1])
}

func TestBuildPassesManifest_KeysByDecimalStringID(t *testing.T) {
	reverse := map[int]cyclepass.CyclePass{
		1: {Cycle: "001", Pass: "010"},
		2: {Cycle: "001", Pass: "011"},
	}
	out := BuildPassesManifest(reverse)
	assert.Equal(t, [2]string{"001", "010"}, out["1"])
	assert.Equal(t, [2]string{"001", "011"}, out["2"])
}

func TestBuildS3ReachManifest_SortsGranuleURIsPerReach(t *testing.T) {
	index := map[int64][]string{
		710010001: {"s3://b/z.zip", "s3://b/a.zip"},
	}
	out := BuildS3ReachManifest(index)
	assert.Equal(t, []string{"s3://b/a.zip", "s3://b/z.zip"}, out["710010001"])
}

func TestBuildSetsManifest_PreservesCanonicalMemberOrder(t *testing.T) {
	sets := []*setbuilder.InversionSet{
		{Members: []invsets.ReachID{710010021, 710010011, 710010001}},
	}
	out := BuildSetsManifest(sets, "na_sword_v16.nc", "na_sos.nc")

	require.Len(t, out, 1)
	require.Len(t, out[0], 3)
	assert.Equal(t, []int64{710010021, 710010011, 710010001},
		[]int64{out[0][0].ReachID, out[0][1].ReachID, out[0][2].ReachID})
}

func TestBuildHLSManifest_KeepsOnlyHLSGranulesInNaturalOrder(t *testing.T) {
	granules := []string{
		"s3://b/SWOT_L2_HR_RiverSP_001.zip",
		"s3://b/HLS.S30.T12ABC.2024012.v2.0.zip",
		"s3://b/HLS.L30.T12ABC.2024002.v2.0.zip",
	}
	out := BuildHLSManifest(granules)
	assert.Equal(t, []string{
		"s3://b/HLS.L30.T12ABC.2024002.v2.0.zip",
		"s3://b/HLS.S30.T12ABC.2024012.v2.0.zip",
	}, out)
}

package shapefile

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGranuleZip assembles an in-memory granule zip with a DBF member and
// an XML version sidecar, named after base.
func buildGranuleZip(t *testing.T, base, version string, fields []testField, rows [][]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	dbfw, err := zw.Create(base + ".dbf")
	require.NoError(t, err)
	_, err = dbfw.Write(buildDBF(t, fields, rows))
	require.NoError(t, err)

	xmlw, err := zw.Create(base + ".xml")
	require.NoError(t, err)
	_, err = fmt.Fprintf(xmlw, `<Collection><SwordVersion>%s</SwordVersion></Collection>`, version)
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func mapFetch(granules map[string][]byte) FetchFunc {
	return func(_ context.Context, uri string) ([]byte, error) {
		data, ok := granules[uri]
		if !ok {
			return nil, fmt.Errorf("no such granule: %s", uri)
		}
		return data, nil
	}
}

func TestRead_ExtractsReachIDsFromClassifiedGranule(t *testing.T) {
	uri := "s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_Reach_01.zip"
	base := "SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_Reach_01"
	data := buildGranuleZip(t, base, "v17", []testField{{"reach_id", 12}}, [][]string{
		{"710001001"},
		{"710001011"},
	})

	reader := NewReader(mapFetch(map[string][]byte{uri: data}), nil, "", nil, 2)
	result := reader.Read(context.Background(), []string{uri})

	assert.Empty(t, result.Warnings)
	assert.Equal(t, []int64{710001001, 710001011}, result.ReachIDs)
	assert.Empty(t, result.NodeIDs)
	assert.ElementsMatch(t, []string{uri}, result.ReachIndex[710001001])
}

func TestRead_ExtractsNodeIDsFromClassifiedGranule(t *testing.T) {
	uri := "s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_Node_01.zip"
	base := "SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_Node_01"
	data := buildGranuleZip(t, base, "v17", []testField{{"node_id", 14}}, [][]string{
		{"71000100010001"},
	})

	reader := NewReader(mapFetch(map[string][]byte{uri: data}), nil, "", nil, 2)
	result := reader.Read(context.Background(), []string{uri})

	assert.Empty(t, result.Warnings)
	assert.Equal(t, []int64{71000100010001}, result.NodeIDs)
	assert.Empty(t, result.ReachIDs)
}

func TestRead_VersionMismatchYieldsWarningNotAbort(t *testing.T) {
	uri := "s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_Reach_01.zip"
	base := "SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_Reach_01"
	data := buildGranuleZip(t, base, "v16", []testField{{"reach_id", 12}}, [][]string{{"710001001"}})

	reader := NewReader(mapFetch(map[string][]byte{uri: data}), nil, "v17", nil, 2)
	result := reader.Read(context.Background(), []string{uri})

	require.Len(t, result.Warnings, 1)
	assert.ErrorIs(t, result.Warnings[0], ErrVersionMismatch)
	assert.Empty(t, result.ReachIDs)
}

func TestRead_PassMismatchYieldsWarningNotAbort(t *testing.T) {
	uri := "s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_Reach_01.zip"
	base := "SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_Reach_01"
	data := buildGranuleZip(t, base, "v17", []testField{{"reach_id", 12}}, [][]string{{"710001001"}})

	reader := NewReader(mapFetch(map[string][]byte{uri: data}), nil, "", []string{"099"}, 2)
	result := reader.Read(context.Background(), []string{uri})

	require.Len(t, result.Warnings, 1)
	assert.ErrorIs(t, result.Warnings[0], ErrPassMismatch)
}

func TestRead_DedupsReachIDsAcrossGranulesAndMergesIndex(t *testing.T) {
	uriA := "s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_Reach_01.zip"
	baseA := "SWOT_L2_HR_RiverSP_2.0_001_010_NA_20240101T000000_20240101T000010_Reach_01"
	uriB := "s3://bucket/SWOT_L2_HR_RiverSP_2.0_001_011_NA_20240101T000100_20240101T000110_Reach_01.zip"
	baseB := "SWOT_L2_HR_RiverSP_2.0_001_011_NA_20240101T000100_20240101T000110_Reach_01"

	dataA := buildGranuleZip(t, baseA, "v17", []testField{{"reach_id", 12}}, [][]string{{"710001001"}})
	dataB := buildGranuleZip(t, baseB, "v17", []testField{{"reach_id", 12}}, [][]string{{"710001001"}, {"710001011"}})

	reader := NewReader(mapFetch(map[string][]byte{uriA: dataA, uriB: dataB}), nil, "", nil, 2)
	result := reader.Read(context.Background(), []string{uriA, uriB})

	assert.Equal(t, []int64{710001001, 710001011}, result.ReachIDs)
	assert.ElementsMatch(t, []string{uriA, uriB}, result.ReachIndex[710001001])
	assert.ElementsMatch(t, []string{uriB}, result.ReachIndex[710001011])
}

func TestFetchWithRetry_RefreshesCredentialsBetweenAttempts(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	refreshes := 0

	fetch := FetchFunc(func(_ context.Context, _ string) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient io error")
		}
		return []byte("ok"), nil
	})
	refresh := RefreshFunc(func(_ context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		refreshes++
		return nil
	})

	reader := NewReader(fetch, refresh, "", nil, 1)
	data, err := reader.fetchWithRetry(context.Background(), "s3://bucket/granule.zip")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, refreshes)
}

func TestFetchWithRetry_ExhaustsAttemptsAndReturnsError(t *testing.T) {
	fetch := FetchFunc(func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("permanent io error")
	})

	reader := NewReader(fetch, nil, "", nil, 1)
	_, err := reader.fetchWithRetry(context.Background(), "s3://bucket/granule.zip")
	assert.Error(t, err)
}

package shapefile

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/alitto/pond"
)

// LakeResult is the aggregated outcome of reading a batch of lake-context
// ("Priors") granules: these carry a lake_id attribute instead of the
// reach_id/node_id pair a river-context granule carries, so they are read
// through a dedicated path rather than Reader.Read.
//
// Grounded on original_source/Lake.py: the lake context has no
// hydrography graph to partition, so it never builds an InversionSet —
// it only maps lake identifiers to the granules that observed them.
type LakeResult struct {
	LakeIDs  []int64
	Warnings []error
}

// ReadLakeIDs extracts lake_id values from every "Priors" shapefile
// granule, using the same worker-pool/coarse-merge shape as Reader.Read.
func ReadLakeIDs(ctx context.Context, fetch FetchFunc, refresh RefreshFunc, granules []string, workers int) *LakeResult {
	if workers <= 0 {
		workers = 4
	}
	result := &LakeResult{}
	var mu sync.Mutex

	r := &Reader{fetch: fetch, refresh: refresh, workers: workers}

	pool := pond.New(workers, 0, pond.MinWorkers(workers), pond.Context(ctx))
	for _, g := range granules {
		granule := g
		pool.Submit(func() {
			ids, err := readLakeGranule(ctx, r, granule)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Warnings = append(result.Warnings, err)
				return
			}
			result.LakeIDs = append(result.LakeIDs, ids...)
		})
	}
	pool.StopAndWait()

	result.LakeIDs = dedupSortInt64(result.LakeIDs)
	return result
}

func readLakeGranule(ctx context.Context, r *Reader, uri string) ([]int64, error) {
	data, err := r.fetchWithRetry(ctx, uri)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening granule zip %s: %w", uri, err)
	}

	base := strings.TrimSuffix(path.Base(uri), path.Ext(uri))
	table, err := readDBFMember(zr, base+".dbf")
	if err != nil {
		return nil, fmt.Errorf("granule %s: %w", uri, err)
	}

	ids, err := extractInt64Column(table, "lake_id")
	if err != nil {
		return nil, fmt.Errorf("granule %s: %w", uri, err)
	}
	return ids, nil
}

// Package shapefile extracts reach and node identifiers from SWOT
// shapefile granules: each granule is a zip containing a DBF attribute
// table and an XML metadata sidecar (spec.md §4.4, "ShapefileReader";
// grounded on original_source/generate_data.py:extract_ids).
package shapefile

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/alitto/pond"
	"github.com/samber/lo"
)

// passField is the zero-based position of the pass number within a
// granule basename split on "_" — the same convention cyclepass uses for
// the cycle/pass pair.
const passField = 6

// FetchFunc retrieves the raw bytes of a granule zip object. Implementations
// are expected to surface credential/IO failures so Reader can decide
// whether a retry with refreshed credentials is warranted.
type FetchFunc func(ctx context.Context, uri string) ([]byte, error)

// RefreshFunc refreshes whatever credentials FetchFunc relies on.
type RefreshFunc func(ctx context.Context) error

// Result is the aggregated outcome of reading a batch of granules.
type Result struct {
	ReachIDs   []int64
	NodeIDs    []int64
	ReachIndex map[int64][]string // reach id -> granule URIs it appeared in
	Warnings   []error
}

// Reader reads SWOT shapefile granules concurrently via a bounded worker
// pool, validating each granule's reference-db version and pass number
// before extracting identifiers (spec.md §5, "ShapefileReader is
// embarrassingly parallel across granules").
type Reader struct {
	fetch         FetchFunc
	refresh       RefreshFunc
	targetVersion string
	targetPasses  map[string]struct{}
	workers       int
}

// NewReader constructs a Reader. targetVersion, if non-empty, must match
// a granule's XML sidecar version for the granule to be read. targetPasses,
// if non-empty, restricts reading to granules whose filename-derived pass
// number is in the list. workers <= 0 defaults to the number of CPUs.
func NewReader(fetch FetchFunc, refresh RefreshFunc, targetVersion string, targetPasses []string, workers int) *Reader {
	var passSet map[string]struct{}
	if len(targetPasses) > 0 {
		passSet = make(map[string]struct{}, len(targetPasses))
		for _, p := range targetPasses {
			passSet[p] = struct{}{}
		}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Reader{
		fetch:         fetch,
		refresh:       refresh,
		targetVersion: targetVersion,
		targetPasses:  passSet,
		workers:       workers,
	}
}

// Read fetches and parses every granule, merging per-granule identifier
// sets under a single coordinator lock at task completion (spec.md §5's
// "coarse-grained" merge policy). A granule that fails validation or
// parsing contributes a warning, never an abort.
func (r *Reader) Read(ctx context.Context, granules []string) *Result {
	result := &Result{ReachIndex: make(map[int64][]string)}
	var mu sync.Mutex

	pool := pond.New(r.workers, 0, pond.MinWorkers(r.workers), pond.Context(ctx))
	for _, g := range granules {
		granule := g
		pool.Submit(func() {
			reachIDs, nodeIDs, err := r.processGranule(ctx, granule)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Warnings = append(result.Warnings, err)
				return
			}
			for _, id := range reachIDs {
				result.ReachIDs = append(result.ReachIDs, id)
				result.ReachIndex[id] = append(result.ReachIndex[id], granule)
			}
			result.NodeIDs = append(result.NodeIDs, nodeIDs...)
		})
	}
	pool.StopAndWait()

	result.ReachIDs = dedupSortInt64(result.ReachIDs)
	result.NodeIDs = dedupSortInt64(result.NodeIDs)
	return result
}

func (r *Reader) processGranule(ctx context.Context, uri string) ([]int64, []int64, error) {
	data, err := r.fetchWithRetry(ctx, uri)
	if err != nil {
		return nil, nil, err
	}
	return r.parse(uri, data)
}

// fetchWithRetry attempts a granule up to three times, refreshing
// credentials before each retry (spec.md §4.4, §7 "Credential").
func (r *Reader) fetchWithRetry(ctx context.Context, uri string) ([]byte, error) {
	const maxAttempts = 3

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 && r.refresh != nil {
			if rerr := r.refresh(ctx); rerr != nil {
				lastErr = rerr
				continue
			}
		}
		data, err := r.fetch(ctx, uri)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("fetching %s after %d attempts: %w", uri, maxAttempts, lastErr)
}

func (r *Reader) parse(uri string, data []byte) ([]int64, []int64, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("opening granule zip %s: %w", uri, err)
	}

	base := strings.TrimSuffix(path.Base(uri), path.Ext(uri))

	if r.targetVersion != "" {
		version, err := readSidecarVersion(zr)
		if err != nil {
			return nil, nil, err
		}
		if version != r.targetVersion {
			return nil, nil, fmt.Errorf("%w: granule %s has version %q, want %q", ErrVersionMismatch, uri, version, r.targetVersion)
		}
	}

	if r.targetPasses != nil {
		parts := strings.Split(base, "_")
		if len(parts) <= passField {
			return nil, nil, fmt.Errorf("%w: cannot locate pass number in %s", ErrPassMismatch, uri)
		}
		if _, ok := r.targetPasses[parts[passField]]; !ok {
			return nil, nil, fmt.Errorf("%w: granule %s pass %q not in target list", ErrPassMismatch, uri, parts[passField])
		}
	}

	table, err := readDBFMember(zr, base+".dbf")
	if err != nil {
		return nil, nil, fmt.Errorf("granule %s: %w", uri, err)
	}

	switch {
	case strings.Contains(base, "Reach"):
		ids, err := extractInt64Column(table, "reach_id")
		if err != nil {
			return nil, nil, fmt.Errorf("granule %s: %w", uri, err)
		}
		return ids, nil, nil
	case strings.Contains(base, "Node"):
		ids, err := extractInt64Column(table, "node_id")
		if err != nil {
			return nil, nil, fmt.Errorf("granule %s: %w", uri, err)
		}
		return nil, ids, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnclassified, uri)
	}
}

func readSidecarVersion(zr *zip.Reader) (string, error) {
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".xml") {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("opening xml sidecar %s: %w", f.Name, err)
			}
			defer rc.Close()
			raw, err := io.ReadAll(rc)
			if err != nil {
				return "", fmt.Errorf("reading xml sidecar %s: %w", f.Name, err)
			}
			return referenceDBVersion(raw)
		}
	}
	return "", ErrXMLMemberAbsent
}

func readDBFMember(zr *zip.Reader, name string) (*dbfTable, error) {
	for _, f := range zr.File {
		if strings.EqualFold(path.Base(f.Name), name) {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("opening dbf member %s: %w", f.Name, err)
			}
			defer rc.Close()
			raw, err := io.ReadAll(rc)
			if err != nil {
				return nil, fmt.Errorf("reading dbf member %s: %w", f.Name, err)
			}
			return decodeDBF(raw)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDBFMemberAbsent, name)
}

func extractInt64Column(table *dbfTable, field string) ([]int64, error) {
	values, err := table.Column(field)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s value %q: %w", field, v, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// dedupSortInt64 mirrors extract_ids's list(set(...)).sort() collapse of
// duplicate identifiers contributed by multiple granules, using lo.Uniq
// the same way the teacher's qa.go uses lo.Union to collapse repeated
// ping timestamps.
func dedupSortInt64(ids []int64) []int64 {
	out := lo.Uniq(ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

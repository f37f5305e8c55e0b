// Package cyclepass assigns stable, dense numeric identifiers to the
// (cycle, pass) orbit pairs observed across a filtered granule list.
package cyclepass

import (
	"fmt"
	"path"
	"strings"
)

// cycleField and passField are the zero-based positions of the cycle and
// pass components within a granule basename, split on "_"
// (original_source/CyclePass.py:get_cycle_pass_data).
const (
	cycleField = 5
	passField  = 6
)

// CyclePass is a single (cycle, pass) orbit pair.
type CyclePass struct {
	Cycle string
	Pass  string
}

// String renders the pair in the "cycle_pass" form used as the
// cycle_passes_<c>.json key (spec.md §6).
func (cp CyclePass) String() string {
	return cp.Cycle + "_" + cp.Pass
}

// CycleIndexer assigns a monotonically increasing identifier to each
// distinct (cycle, pass) pair, in first-appearance order over an ordered
// granule list (spec.md §4.5).
//
// Unlike the original implementation, the counter advances only when a
// new pair is first seen, so identifiers stay dense starting at 1 even
// when the granule list repeats a pair.
type CycleIndexer struct{}

// NewCycleIndexer constructs a CycleIndexer.
func NewCycleIndexer() *CycleIndexer {
	return &CycleIndexer{}
}

// Index scans uris in order and returns the forward map ("cycle_pass" ->
// id) and the reverse map (id -> CyclePass). A granule whose basename
// cannot be split into a cycle and a pass component yields
// ErrMalformedGranuleName; the offending granule is skipped and indexing
// continues, per spec.md §7's blanket "never aborts the build" stance on
// malformed inputs — the caller decides whether to surface the warning.
func (idx *CycleIndexer) Index(uris []string) (map[string]int, map[int]CyclePass, error) {
	forward := make(map[string]int)
	reverse := make(map[int]CyclePass)

	var firstErr error
	next := 1
	for _, u := range uris {
		cp, err := extractCyclePass(u)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		key := cp.String()
		if _, seen := forward[key]; seen {
			continue
		}
		forward[key] = next
		reverse[next] = cp
		next++
	}

	return forward, reverse, firstErr
}

// extractCyclePass pulls the cycle and pass components out of a granule
// URI's basename.
func extractCyclePass(uri string) (CyclePass, error) {
	name := strings.TrimSuffix(path.Base(uri), path.Ext(uri))
	parts := strings.Split(name, "_")
	if len(parts) <= passField {
		return CyclePass{}, fmt.Errorf("%w: %s", ErrMalformedGranuleName, uri)
	}
	return CyclePass{Cycle: parts[cycleField], Pass: parts[passField]}, nil
}

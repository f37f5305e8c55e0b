// Package setbuilder implements the inversion-set builder: a graph
// algorithm over the directed river network that, for each algorithm
// variant, produces reach groupings subject to the six interacting
// constraints described in spec.md §3-4 (orbit coverage, drainage-area
// continuity, junction policy, observed-population membership, maximum
// expansion, maximum overlap).
//
// Grounded on original_source/sets/sets.py (class sets) and
// original_source/sets/getAllSets.py, reimplemented as a deterministic,
// read-only-graph walk per spec.md §4.1 rather than the original's
// mutable-dict bookkeeping.
package setbuilder

import (
	"sort"
	"strconv"
	"strings"

	"github.com/swot-confluence/invsets"
)

// InversionSet is an ordered sequence of reach identifiers, upstream-first,
// together with its origin (seed) reach and the cached reach records for
// all members.
type InversionSet struct {
	// Origin is the seed reach that this set was expanded from.
	Origin invsets.ReachID

	// Members lists the reach identifiers in canonical, upstream-first
	// order (spec §4.1 Phase C).
	Members []invsets.ReachID

	// Upstream and Downstream are the current termini reached by the
	// expansion walk, prior to canonical reconstruction.
	Upstream   invsets.ReachID
	Downstream invsets.ReachID

	// Reaches caches the reach record for every member, keyed by
	// identifier.
	Reaches map[invsets.ReachID]*invsets.Reach
}

// Len returns the member count.
func (s *InversionSet) Len() int {
	return len(s.Members)
}

// Seed returns the cached record for the set's origin reach.
func (s *InversionSet) Seed() *invsets.Reach {
	return s.Reaches[s.Origin]
}

// sortedMemberKey returns a stable, sorted copy of the member list, used to
// test set identity in Phase C dedup (spec: "same sorted member multiset").
func (s *InversionSet) sortedMemberKey() string {
	ids := make([]int64, len(s.Members))
	for i, m := range s.Members {
		ids[i] = int64(m)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// memberSet returns the member identifiers as a lookup set.
func (s *InversionSet) memberSet() map[invsets.ReachID]struct{} {
	set := make(map[invsets.ReachID]struct{}, len(s.Members))
	for _, m := range s.Members {
		set[m] = struct{}{}
	}
	return set
}

// workingSet is the mutable expansion state for a single seed, before
// canonical ordering (Phase C) collapses it into an InversionSet.
type workingSet struct {
	seed           invsets.ReachID
	members        map[invsets.ReachID]struct{}
	upstreamTerm   invsets.ReachID
	downstreamTerm invsets.ReachID
	reaches        map[invsets.ReachID]*invsets.Reach
}

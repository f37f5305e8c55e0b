package setbuilder

import (
	"sort"

	"github.com/swot-confluence/invsets"
)

// maxOverlapPasses bounds Phase D's iterative pruning loop (spec §4.1
// Phase D: "cap: 10 000 passes, a safety bound").
const maxOverlapPasses = 10000

// overlapPct computes |members(A) ∩ members(B)| / ((|A| + |B|) / 2).
func overlapPct(a, b InversionSet) float64 {
	setA := a.memberSet()
	var shared int
	for _, m := range b.Members {
		if _, ok := setA[m]; ok {
			shared++
		}
	}
	denom := float64(a.Len()+b.Len()) / 2
	if denom == 0 {
		return 0
	}
	return float64(shared) / denom
}

// pruneOverlap runs Phase D. It is active only when
// profile.AllowedReachOverlap > 0. Pairs are enumerated with
// seed_id(A) < seed_id(B) (spec design note "Overlap-pruning determinism"),
// so the "delete the larger-seed set" rule is order-independent; each pass
// removes at most the offenders found in that pass, then restarts, until a
// pass removes nothing or the pass cap is reached.
func pruneOverlap(sets []InversionSet, profile invsets.AlgorithmProfile) []InversionSet {
	if profile.AllowedReachOverlap <= 0 {
		return sets
	}

	current := sets
	for pass := 0; pass < maxOverlapPasses; pass++ {
		removed := false

		order := make([]int, len(current))
		for i := range current {
			order[i] = i
		}
		sort.Slice(order, func(i, j int) bool {
			return current[order[i]].Origin < current[order[j]].Origin
		})

		toRemove := make(map[int]bool)
	pairs:
		for i := 0; i < len(order); i++ {
			if toRemove[order[i]] {
				continue
			}
			for j := i + 1; j < len(order); j++ {
				if toRemove[order[j]] {
					continue
				}
				a, b := current[order[i]], current[order[j]]
				if overlapPct(a, b) > profile.AllowedReachOverlap {
					// Second of the pair under fixed (seed-ascending)
					// enumeration order is always the larger seed.
					toRemove[order[j]] = true
					removed = true
					break pairs
				}
			}
		}

		if !removed {
			break
		}

		next := make([]InversionSet, 0, len(current))
		for i, s := range current {
			if !toRemove[i] {
				next = append(next, s)
			}
		}
		current = next
	}

	return current
}

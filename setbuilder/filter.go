package setbuilder

import (
	"github.com/swot-confluence/invsets"
)

// complete runs Phase E step 1: when profile.MinReaches == 1, every
// observed reach not already covered by a surviving set is emitted as a
// singleton set (still subject to the filters below).
func (b *Builder) complete(sets []InversionSet, profile invsets.AlgorithmProfile) []InversionSet {
	if profile.MinReaches != 1 {
		return sets
	}

	covered := make(map[invsets.ReachID]struct{})
	for _, s := range sets {
		for _, m := range s.Members {
			covered[m] = struct{}{}
		}
	}

	for _, id := range b.sortedObserved {
		if _, ok := covered[id]; ok {
			continue
		}
		reach, err := b.db.Lookup(id)
		if err != nil {
			continue
		}
		sets = append(sets, InversionSet{
			Origin:     id,
			Members:    []invsets.ReachID{id},
			Upstream:   id,
			Downstream: id,
			Reaches:    map[invsets.ReachID]*invsets.Reach{id: reach},
		})
	}

	return sets
}

// filterFinal runs Phase E steps 2-3: drop any set containing a non-river
// member, then drop sets below the minimum size, then drop singleton sets
// whose sole member is already contained in another surviving set.
func filterFinal(sets []InversionSet, profile invsets.AlgorithmProfile) []InversionSet {
	survivors := make([]InversionSet, 0, len(sets))
	for _, s := range sets {
		if containsNonRiver(s) {
			continue
		}
		if s.Len() < profile.MinReaches {
			continue
		}
		survivors = append(survivors, s)
	}

	out := make([]InversionSet, 0, len(survivors))
	for i, s := range survivors {
		if s.Len() == 1 && memberExistsElsewhere(survivors, i, s.Members[0]) {
			continue
		}
		out = append(out, s)
	}

	return out
}

func containsNonRiver(s InversionSet) bool {
	for _, m := range s.Members {
		if !m.IsRiverType() {
			return true
		}
	}
	return false
}

func memberExistsElsewhere(sets []InversionSet, skip int, member invsets.ReachID) bool {
	for i, s := range sets {
		if i == skip {
			continue
		}
		for _, m := range s.Members {
			if m == member {
				return true
			}
		}
	}
	return false
}

package setbuilder

import (
	"sort"

	"github.com/swot-confluence/invsets"
)

// canonicalize runs Phase C: it reconstructs each working set's canonical,
// upstream-first member order and materializes it as an InversionSet.
func (b *Builder) canonicalize(raw []*workingSet) []InversionSet {
	sets := make([]InversionSet, 0, len(raw))
	for _, ws := range raw {
		sets = append(sets, InversionSet{
			Origin:     ws.seed,
			Members:    canonicalOrder(ws),
			Upstream:   ws.upstreamTerm,
			Downstream: ws.downstreamTerm,
			Reaches:    ws.reaches,
		})
	}
	return sets
}

// canonicalOrder walks from the upstream terminus toward the downstream
// terminus via Reaches[curr].DownIDs[0], per spec §4.1 Phase C. The walk is
// bounded by the working set's member count; a topology inconsistency
// (spec design note "Canonical walk robustness") truncates the set at the
// last consistent member instead of wedging or producing a disconnected
// result.
func canonicalOrder(ws *workingSet) []invsets.ReachID {
	if len(ws.members) == 1 {
		return []invsets.ReachID{ws.seed}
	}

	list := []invsets.ReachID{ws.upstreamTerm}
	cur := ws.upstreamTerm
	limit := len(ws.members)

	for i := 0; i < limit; i++ {
		if cur == ws.downstreamTerm {
			break
		}

		r, ok := ws.reaches[cur]
		if !ok {
			break
		}

		next, ok := r.FirstDown()
		if !ok {
			break
		}
		if _, inSet := ws.members[next]; !inSet {
			break
		}

		list = append(list, next)
		cur = next
	}

	return list
}

// dedup removes sets that are identical under spec §4.1 Phase C's
// definition (same member count, same sorted member multiset), keeping the
// survivor whose seed has the smallest reach identifier.
func dedup(sets []InversionSet) []InversionSet {
	best := make(map[string]InversionSet)
	order := make([]string, 0, len(sets))

	for _, s := range sets {
		if s.Len() == 0 {
			continue
		}
		key := s.sortedMemberKey()
		existing, ok := best[key]
		if !ok {
			best[key] = s
			order = append(order, key)
			continue
		}
		if s.Origin < existing.Origin {
			best[key] = s
		}
	}

	sort.Strings(order)
	out := make([]InversionSet, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

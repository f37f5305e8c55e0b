package setbuilder

import (
	"sort"

	"github.com/swot-confluence/invsets"
)

// Builder produces InversionSets for a continent ReferenceDB and its
// observed-reach population. It is read-only over the ReferenceDB and
// holds no per-profile state, so a single Builder may run BuildFor
// concurrently for distinct profiles (spec §5: "The ReferenceDB is
// read-only during set building — safe to share by reference across
// profile builds").
type Builder struct {
	db       *invsets.ReferenceDB
	observed map[invsets.ReachID]struct{}
	// sortedObserved is the ascending, deduplicated observed-reach
	// population, computed once so every BuildFor call iterates it in the
	// same deterministic order (spec §5: "sort reach identifiers ascending
	// before iteration in SetBuilder").
	sortedObserved []invsets.ReachID
}

// NewBuilder constructs a Builder over the given continent ReferenceDB and
// observed-reach population.
func NewBuilder(db *invsets.ReferenceDB, observed []invsets.ReachID) *Builder {
	set := make(map[invsets.ReachID]struct{}, len(observed))
	for _, o := range observed {
		set[o] = struct{}{}
	}
	sorted := make([]invsets.ReachID, 0, len(set))
	for o := range set {
		sorted = append(sorted, o)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return &Builder{db: db, observed: set, sortedObserved: sorted}
}

// BuildFor runs the five-phase algorithm (spec §4.1) for a single
// AlgorithmProfile and returns its surviving InversionSets. Deterministic
// for fixed inputs.
func (b *Builder) BuildFor(profile invsets.AlgorithmProfile) []InversionSet {
	raw := b.expandAllSeeds(profile)
	sets := b.canonicalize(raw)
	sets = dedup(sets)
	sets = pruneOverlap(sets, profile)
	sets = b.complete(sets, profile)
	sets = filterFinal(sets, profile)
	return sets
}

// expandAllSeeds runs Phase A for every eligible observed reach.
func (b *Builder) expandAllSeeds(profile invsets.AlgorithmProfile) []*workingSet {
	var out []*workingSet

	for _, id := range b.sortedObserved {
		seed, err := b.db.Lookup(id)
		if err != nil {
			// Observed reach not present in the topology: a Topology
			// anomaly (spec §7); skip this seed, never abort the build.
			continue
		}

		if profile.SeedRequiresSingleUpstream && seed.NUp != 1 {
			continue
		}

		ws := &workingSet{
			seed:           id,
			members:        map[invsets.ReachID]struct{}{id: {}},
			upstreamTerm:   id,
			downstreamTerm: id,
			reaches:        map[invsets.ReachID]*invsets.Reach{id: seed},
		}

		b.walk(ws, seed, profile, "up")
		b.walk(ws, seed, profile, "down")

		out = append(out, ws)
	}

	return out
}

// walk performs the linear upstream or downstream expansion (spec §4.1
// steps 3-4). It stops when the candidate does not resolve, admissible
// returns false, or the step counter exceeds profile.MaxEachDirection.
func (b *Builder) walk(ws *workingSet, seed *invsets.Reach, profile invsets.AlgorithmProfile, direction string) {
	steps := 0
	cur := seed

	for {
		var (
			candID invsets.ReachID
			ok     bool
		)
		if direction == "up" {
			candID, ok = cur.FirstUp()
		} else {
			candID, ok = cur.FirstDown()
		}
		if !ok {
			return
		}

		cand, err := b.db.Lookup(candID)
		if err != nil {
			// Topology anomaly: neighbor referenced but absent. Terminate
			// this walk, keep the set formed so far (spec §7).
			return
		}

		if !admissible(seed, cand, direction, b.observed, profile) {
			return
		}

		ws.members[candID] = struct{}{}
		ws.reaches[candID] = cand

		if direction == "up" {
			ws.upstreamTerm = candID
		} else {
			ws.downstreamTerm = candID
		}

		steps++
		if steps > profile.MaxEachDirection {
			return
		}

		cur = cand
	}
}

// admissible implements Phase B exactly as tabulated in spec.md §4.1.
func admissible(seed, cand *invsets.Reach, direction string, observed map[invsets.ReachID]struct{}, profile invsets.AlgorithmProfile) bool {
	if _, isObserved := observed[cand.ReachID]; !isObserved {
		return false
	}

	if profile.RequireIdenticalOrbits {
		if !identicalOrbits(seed, cand) {
			return false
		}
	}

	drainagePct := (cand.Facc - seed.Facc) / seed.Facc * 100
	if drainagePct > profile.DrainageAreaPctCutoff {
		return false
	}

	if !profile.AllowRiverJunction {
		if seed.NUp > 1 || seed.NDown > 1 || cand.NUp > 1 || cand.NDown > 1 {
			return false
		}
	}

	return true
}

// identicalOrbits tests the orbit-identity constraint: equal swot_obs
// counts and an identical ordered swot_orbits sequence.
func identicalOrbits(seed, cand *invsets.Reach) bool {
	if seed.SwotObs != cand.SwotObs {
		return false
	}
	if len(seed.SwotOrbits) != len(cand.SwotOrbits) {
		return false
	}
	for i := range seed.SwotOrbits {
		if seed.SwotOrbits[i] != cand.SwotOrbits[i] {
			return false
		}
	}
	return true
}

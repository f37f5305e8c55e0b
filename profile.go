package invsets

import "math"

// unboundedExpansion stands in for the Python original's np.inf sentinel
// (original_source/sets/getAllSets.py: HiVDI and SIC both set
// MaximumReachesEachDirection to np.inf). math.MaxInt32 keeps the member
// count invariant's 2*MaxExpansion+1 bound representable without overflow.
const unboundedExpansion = math.MaxInt32 / 4

// AlgorithmProfile is a named parameter bundle controlling admissibility
// and set-shaping behavior for one inversion algorithm.
type AlgorithmProfile struct {
	// Name identifies the algorithm, used for output filenames
	// (<algo>sets_<cont>.json).
	Name string

	// RequireIdenticalOrbits: seed and every candidate must share the
	// exact swot_orbits sequence (and swot_obs count).
	RequireIdenticalOrbits bool

	// DrainageAreaPctCutoff bounds (cand.facc - seed.facc)/seed.facc*100.
	DrainageAreaPctCutoff float64

	// AllowRiverJunction: if false, a member with NUp>1 or NDown>1
	// invalidates the candidate.
	AllowRiverJunction bool

	// MaxEachDirection is the maximum expansion steps upstream, and
	// separately downstream.
	MaxEachDirection int

	// MinReaches is the minimum member count; sets smaller than this are
	// discarded.
	MinReaches int

	// AllowedReachOverlap: if > 0, after dedup, prune sets whose
	// member-overlap fraction with another surviving set exceeds this.
	// -1 means "dedup only, no overlap pruning" (spec §3: AllowedReachOverlap).
	AllowedReachOverlap float64

	// SeedRequiresSingleUpstream preserves the original implementation's
	// seed-selection asymmetry (spec §9, "Seed selection asymmetry"): only
	// reaches with exactly one upstream neighbor seed an expansion. This
	// is exposed as a toggle per spec's recommendation but defaults to
	// true for output parity with the original.
	SeedRequiresSingleUpstream bool
}

// MaxMembers returns the largest member count a set produced under this
// profile may have (spec invariant: |S| <= 2*MaxExpansion + 1).
func (p AlgorithmProfile) MaxMembers() int {
	return 2*p.MaxEachDirection + 1
}

// MetroManProfile is the shipped MetroMan parameter bundle, grounded on
// original_source/sets/getAllSets.py:SetParameters("MetroMan").
func MetroManProfile() AlgorithmProfile {
	return AlgorithmProfile{
		Name:                       "metro",
		RequireIdenticalOrbits:     true,
		DrainageAreaPctCutoff:      10.0,
		AllowRiverJunction:         false,
		MaxEachDirection:           2,
		MinReaches:                 3,
		AllowedReachOverlap:        -1,
		SeedRequiresSingleUpstream: true,
	}
}

// HiVDIProfile is the shipped HiVDI parameter bundle.
func HiVDIProfile() AlgorithmProfile {
	return AlgorithmProfile{
		Name:                       "hivdi",
		RequireIdenticalOrbits:     false,
		DrainageAreaPctCutoff:      30.0,
		AllowRiverJunction:         false,
		MaxEachDirection:           unboundedExpansion,
		MinReaches:                 1,
		AllowedReachOverlap:        0.5,
		SeedRequiresSingleUpstream: true,
	}
}

// SICProfile is the shipped SIC parameter bundle.
func SICProfile() AlgorithmProfile {
	return AlgorithmProfile{
		Name:                       "sic",
		RequireIdenticalOrbits:     false,
		DrainageAreaPctCutoff:      30.0,
		AllowRiverJunction:         false,
		MaxEachDirection:           unboundedExpansion,
		MinReaches:                 1,
		AllowedReachOverlap:        0.67,
		SeedRequiresSingleUpstream: true,
	}
}

// StandardProfiles returns the three shipped profiles in the order they are
// run by the original generate-all-sets script
// (original_source/sets/getAllSets.py: Algorithms=['MetroMan','HiVDI','SIC']).
func StandardProfiles() []AlgorithmProfile {
	return []AlgorithmProfile{MetroManProfile(), HiVDIProfile(), SICProfile()}
}

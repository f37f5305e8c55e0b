package invsets

import "strconv"

// ReachID is a hydrography-referenced reach identifier. Its decimal digits
// encode a basin code (positions 0-5), a reach ordinal (positions 9-10), and
// a terminal reach-type digit: '1' denotes a river reach, any other value a
// lake, dam, or ghost reach ineligible for inversion.
type ReachID int64

// NodeID is a hydrography-referenced node identifier. Its first ten decimal
// digits are shared with the node's parent reach identifier.
type NodeID int64

// BasinID returns the basin code shared by every reach whose identifier
// starts with the same six digits. Mirrors
// original_source/Basin.py:extract_reach_ids, which groups by
// int(str(reach_id)[0:6]).
func (r ReachID) BasinID() int64 {
	s := strconv.FormatInt(int64(r), 10)
	if len(s) < 6 {
		return int64(r)
	}
	basin, _ := strconv.ParseInt(s[:6], 10, 64)
	return basin
}

// terminalDigit returns the final decimal digit of the reach identifier,
// which encodes the reach type.
func (r ReachID) terminalDigit() byte {
	s := strconv.FormatInt(int64(r), 10)
	return s[len(s)-1]
}

// IsRiverType reports whether the reach identifier's terminal digit marks it
// as a river reach ('1'). Lakes, dams, and ghost reaches are never eligible
// for inversion (spec invariant: "All members are river-type").
func (r ReachID) IsRiverType() bool {
	return r.terminalDigit() == '1'
}

// nodePrefix returns the first ten decimal digits of the reach identifier,
// which every child node identifier shares. Mirrors
// original_source/datagen/ReachNode.py, which matches node identifiers
// against the regex "^{reach_id[:10]}.*".
func (r ReachID) nodePrefix() string {
	s := strconv.FormatInt(int64(r), 10)
	if len(s) < 10 {
		return s
	}
	return s[:10]
}

// BelongsToReach reports whether the node identifier shares its parent
// reach's first ten digits.
func (n NodeID) BelongsToReach(r ReachID) bool {
	s := strconv.FormatInt(int64(n), 10)
	prefix := r.nodePrefix()
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Reach is a directed-graph node in the continent hydrography topology.
// Neighbors are stored as identifier lists rather than pointers so the
// ReferenceDB can remain an arena of read-only records shareable by
// reference across concurrent algorithm-profile builds (spec design note:
// "graph representation").
type Reach struct {
	ReachID ReachID

	// Facc is the flow-accumulation (drainage) area, a positive real value.
	Facc float64

	// NUp and NDown are the in-/out-degree of the reach in the hydrography
	// graph (0-4 typical).
	NUp   int
	NDown int

	// UpIDs and DownIDs are the neighboring reach identifiers; their
	// lengths equal NUp and NDown respectively when the topology is
	// well-formed, but a reimplementation must tolerate shorter slices
	// (spec §7, "Topology" errors).
	UpIDs   []ReachID
	DownIDs []ReachID

	// SwotObs is the count of orbits observing this reach; SwotOrbits is
	// the ordered multiset of orbit identifiers, of length SwotObs.
	SwotObs     int
	SwotOrbits  []int32
}

// FirstUp returns the first listed upstream neighbor and whether one
// exists. The expansion walk in setbuilder always follows this slot
// (spec §4.1: "pick up_ids[0] as the candidate").
func (r *Reach) FirstUp() (ReachID, bool) {
	if len(r.UpIDs) == 0 {
		return 0, false
	}
	return r.UpIDs[0], true
}

// FirstDown returns the first listed downstream neighbor and whether one
// exists.
func (r *Reach) FirstDown() (ReachID, bool) {
	if len(r.DownIDs) == 0 {
		return 0, false
	}
	return r.DownIDs[0], true
}

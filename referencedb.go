package invsets

import "sort"

// ReferenceDB is a bulk, read-only container for every reach in one
// continent, plus a parallel node table. It is an arena of reach records
// indexed by reach identifier (a hash map to a dense array index, per spec
// design note "graph representation"), which sidesteps the cyclic-ownership
// trap of pointer-linked graph nodes and keeps the structure cheaply
// shareable by reference across concurrent algorithm-profile builds.
type ReferenceDB struct {
	reaches map[ReachID]*Reach
	// order preserves the continent's natural reach ordering for
	// deterministic bulk iteration.
	order []ReachID
	nodes map[ReachID][]NodeID
}

// NewReferenceDB constructs an empty, writable arena. Callers (refdb.Loader)
// populate it via Put before handing it off read-only to the rest of the
// pipeline.
func NewReferenceDB() *ReferenceDB {
	return &ReferenceDB{
		reaches: make(map[ReachID]*Reach),
		nodes:   make(map[ReachID][]NodeID),
	}
}

// Put inserts or overwrites a reach record. Used only during loading and
// patch application; the ReferenceDB is read-only afterward.
func (db *ReferenceDB) Put(r *Reach) {
	if _, exists := db.reaches[r.ReachID]; !exists {
		db.order = append(db.order, r.ReachID)
	}
	db.reaches[r.ReachID] = r
}

// PutNode associates a node identifier with its parent reach.
func (db *ReferenceDB) PutNode(reachID ReachID, nodeID NodeID) {
	db.nodes[reachID] = append(db.nodes[reachID], nodeID)
}

// Lookup resolves a reach identifier to its record. Returns ErrNotFound if
// the identifier is referenced in the topology but absent from the
// database — a condition spec §7 classifies as "Topology": the caller must
// treat it as a walk terminator, never a fatal error.
func (db *ReferenceDB) Lookup(id ReachID) (*Reach, error) {
	r, ok := db.reaches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// Nodes returns the node identifiers belonging to a reach, sorted ascending.
func (db *ReferenceDB) Nodes(id ReachID) []NodeID {
	ns := db.nodes[id]
	out := make([]NodeID, len(ns))
	copy(out, ns)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len reports the number of reaches held by the database.
func (db *ReferenceDB) Len() int {
	return len(db.reaches)
}

// Each calls fn once per reach, in ascending reach-identifier order — the
// deterministic bulk-iteration order spec §5 requires ("sort reach
// identifiers ascending before iteration in SetBuilder").
func (db *ReferenceDB) Each(fn func(*Reach)) {
	ids := make([]ReachID, len(db.order))
	copy(ids, db.order)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(db.reaches[id])
	}
}

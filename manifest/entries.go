// Package manifest builds and writes the per-continent JSON output files
// (spec.md §6, "Output JSON files"). Each builder is a pure function of
// its inputs; ManifestWriter's only side effect is the final write.
package manifest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/swot-confluence/invsets"
	"github.com/swot-confluence/invsets/catalog"
	"github.com/swot-confluence/invsets/cyclepass"
	"github.com/swot-confluence/invsets/setbuilder"
)

// ReachEntry is the per-reach file association record shared by
// reaches_<c>.json and the inner arrays of <algo>sets_<c>.json.
// Grounded on original_source/Reach.py:extract_data.
type ReachEntry struct {
	ReachID int64  `json:"reach_id"`
	Sword   string `json:"sword"`
	Swot    string `json:"swot"`
	Sos     string `json:"sos"`
}

// BasinEntry is one basin_<c>.json record. Grounded on
// original_source/datagen/Basin.py:get_sword/get_swot, with the basin-id
// width widened to the first six digits per spec.md §6 (the original
// groups on only the first four).
type BasinEntry struct {
	BasinID int64    `json:"basin_id"`
	ReachID []int64  `json:"reach_id"`
	Sword   string   `json:"sword"`
	Sos     string   `json:"sos"`
	Swot    []string `json:"swot"`
}

func swotFilename(id invsets.ReachID) string {
	return fmt.Sprintf("%d_SWOT.nc", int64(id))
}

func sortedReachIDs(ids []invsets.ReachID) []invsets.ReachID {
	out := append([]invsets.ReachID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildReachManifest builds reaches_<c>.json: one entry per reach,
// ascending reach-identifier order.
func BuildReachManifest(reachIDs []invsets.ReachID, swordFilename, sosFilename string) []ReachEntry {
	sorted := sortedReachIDs(reachIDs)
	out := make([]ReachEntry, 0, len(sorted))
	for _, id := range sorted {
		out = append(out, ReachEntry{
			ReachID: int64(id),
			Sword:   swordFilename,
			Swot:    swotFilename(id),
			Sos:     sosFilename,
		})
	}
	return out
}

// BuildBasinManifest builds basin_<c>.json: reaches grouped by their
// shared six-digit basin code, ascending basin-code order.
func BuildBasinManifest(reachIDs []invsets.ReachID, swordFilename, sosFilename string) []BasinEntry {
	sorted := sortedReachIDs(reachIDs)

	grouped := make(map[int64][]invsets.ReachID)
	var order []int64
	for _, id := range sorted {
		b := id.BasinID()
		if _, ok := grouped[b]; !ok {
			order = append(order, b)
		}
		grouped[b] = append(grouped[b], id)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make([]BasinEntry, 0, len(order))
	for _, b := range order {
		ids := grouped[b]
		reachIDsInt := make([]int64, len(ids))
		swot := make([]string, len(ids))
		for i, id := range ids {
			reachIDsInt[i] = int64(id)
			swot[i] = swotFilename(id)
		}
		out = append(out, BasinEntry{
			BasinID: b,
			ReachID: reachIDsInt,
			Sword:   swordFilename,
			Sos:     sosFilename,
			Swot:    swot,
		})
	}
	return out
}

// BuildReachNodeManifest builds reach_node_<c>.json: one [reach_id,
// [node_id, ...]] pair per reach, ascending reach-identifier order.
// Grounded on original_source/datagen/ReachNode.py:extract_data.
func BuildReachNodeManifest(db *invsets.ReferenceDB, reachIDs []invsets.ReachID) []any {
	sorted := sortedReachIDs(reachIDs)
	out := make([]any, 0, len(sorted))
	for _, id := range sorted {
		nodes := db.Nodes(id)
		nodeInts := make([]int64, len(nodes))
		for i, n := range nodes {
			nodeInts[i] = int64(n)
		}
		out = append(out, []any{int64(id), nodeInts})
	}
	return out
}

// BuildCyclePassesManifest builds cycle_passes_<c>.json directly from a
// CycleIndexer forward map: "cycle_pass" -> id.
func BuildCyclePassesManifest(forward map[string]int) map[string]int {
	return forward
}

// BuildPassesManifest builds passes_<c>.json: id -> [cycle, pass], keyed
// by the decimal string form of id (JSON object keys are always strings).
func BuildPassesManifest(reverse map[int]cyclepass.CyclePass) map[string][2]string {
	out := make(map[string][2]string, len(reverse))
	for id, cp := range reverse {
		out[strconv.Itoa(id)] = [2]string{cp.Cycle, cp.Pass}
	}
	return out
}

// BuildS3ListManifest builds s3_list_<c>.json: granule URIs in
// natural-numeric order (spec.md §5). catalog.GranuleLister and
// search.FindGranules both already return their URIs in this order; this
// re-applies the same comparator defensively so the manifest stays
// deterministic regardless of what produced the input slice.
func BuildS3ListManifest(uris []string) []string {
	out := append([]string(nil), uris...)
	catalog.NaturalSortStrings(out)
	return out
}

// BuildS3ReachManifest builds s3_reach_<c>.json: reach id -> granule URIs
// that contributed it, from a ShapefileReader's reach->granule index.
func BuildS3ReachManifest(index map[int64][]string) map[string][]string {
	out := make(map[string][]string, len(index))
	for id, uris := range index {
		sorted := append([]string(nil), uris...)
		catalog.NaturalSortStrings(sorted)
		out[strconv.FormatInt(id, 10)] = sorted
	}
	return out
}

// BuildSetsManifest builds <algo>sets_<c>.json: one inner array per
// inversion set, members in their already-canonical upstream-first order
// (setbuilder.InversionSet.Members) — this must NOT be re-sorted by
// identifier.
func BuildSetsManifest(sets []*setbuilder.InversionSet, swordFilename, sosFilename string) [][]ReachEntry {
	out := make([][]ReachEntry, 0, len(sets))
	for _, s := range sets {
		entries := make([]ReachEntry, 0, len(s.Members))
		for _, m := range s.Members {
			entries = append(entries, ReachEntry{
				ReachID: int64(m),
				Sword:   swordFilename,
				Swot:    swotFilename(m),
				Sos:     sosFilename,
			})
		}
		out = append(out, entries)
	}
	return out
}

// BuildHLSManifest filters granules to the subset naming an HLS
// collection, in natural-numeric order. Grounded on
// original_source/datagen/Ssc.py:find_hls_tiles's HLSL30.v2.0/HLSS30.v2.0
// collection naming; this only records tile membership, it does not
// resolve which reaches or nodes a tile overlaps (spec.md §6 scopes that
// resolution out of the inversion-set core).
func BuildHLSManifest(granules []string) []string {
	out := make([]string, 0)
	for _, g := range granules {
		if strings.Contains(g, "HLS") {
			out = append(out, g)
		}
	}
	catalog.NaturalSortStrings(out)
	return out
}

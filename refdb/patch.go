package refdb

import (
	"encoding/json"
	"strconv"

	"github.com/swot-confluence/invsets"
)

// Patch is the JSON shape of a sword-patch overlay: reach identifier
// (decimal string, JSON object keys are always strings) to a map of field
// name to replacement value.
type Patch map[string]map[string]json.RawMessage

// ApplyPatch overwrites per-reach fields in db from a decoded patch
// overlay. Per spec.md §4.2 ("ReferenceDBLoader"): a "metadata" field entry
// is always ignored, and a reach identifier present in the patch but
// absent from the database is silently skipped rather than treated as an
// error, since a patch is expected to be authored against the union of
// continents while db holds only one.
func ApplyPatch(db *invsets.ReferenceDB, patch Patch) error {
	for reachIDStr, fields := range patch {
		id, err := parseReachID(reachIDStr)
		if err != nil {
			return err
		}

		reach, lookupErr := db.Lookup(id)
		if lookupErr != nil {
			continue
		}

		for field, raw := range fields {
			if field == "metadata" {
				continue
			}
			if err := applyField(reach, field, raw); err != nil {
				return err
			}
		}
	}

	return nil
}

func applyField(reach *invsets.Reach, field string, raw json.RawMessage) error {
	switch field {
	case "facc", "Facc":
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		reach.Facc = v
	case "n_up", "NUp":
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		reach.NUp = v
	case "n_down", "NDown":
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		reach.NDown = v
	case "up_ids", "UpIDs":
		var v []int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		reach.UpIDs = toReachIDs(v)
		reach.NUp = len(v)
	case "down_ids", "DownIDs":
		var v []int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		reach.DownIDs = toReachIDs(v)
		reach.NDown = len(v)
	case "swot_obs", "SwotObs":
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		reach.SwotObs = v
	case "swot_orbits", "SwotOrbits":
		var v []int32
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		reach.SwotOrbits = v
	}
	// Unrecognized fields are ignored rather than rejected: a patch file
	// may carry forward-compatible or descriptive keys this loader has no
	// representation for.
	return nil
}

func parseReachID(s string) (invsets.ReachID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return invsets.ReachID(id), nil
}

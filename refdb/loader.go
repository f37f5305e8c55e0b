package refdb

import (
	"errors"
	"fmt"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	"github.com/swot-confluence/invsets"
)

// ErrOpenArray wraps any failure opening the reaches or nodes array.
var ErrOpenArray = errors.New("error opening reference database array")

// ErrQuery wraps any failure running a TileDB read query against the
// reference database.
var ErrQuery = errors.New("error querying reference database array")

// Loader opens a continent's reference database — a TileDB group holding a
// "reaches" sparse array and a "nodes" sparse array — and materializes it
// into an in-memory invsets.ReferenceDB. Grounded on the teacher's
// OpenGSF/GsfFile (file.go), generalized from a single VFS-backed binary
// stream to a pair of TileDB arrays.
type Loader struct {
	config *tiledb.Config
	ctx    *tiledb.Context
}

// NewLoader constructs a Loader. configURI, if non-empty, is a TileDB
// config file path (used to carry S3/object-store credentials); an empty
// string falls back to TileDB's default configuration, matching
// OpenGSF's config_uri handling.
func NewLoader(configURI string) (*Loader, error) {
	var (
		config *tiledb.Config
		err    error
	)

	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, errors.Join(ErrOpenArray, err)
	}

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, errors.Join(ErrOpenArray, err)
	}

	return &Loader{config: config, ctx: ctx}, nil
}

// Close releases the loader's TileDB context and configuration.
func (l *Loader) Close() {
	l.ctx.Free()
	l.config.Free()
}

// Load reads the reaches and nodes arrays under continentURI (expected
// layout: "<continentURI>/reaches" and "<continentURI>/nodes") and returns
// a populated invsets.ReferenceDB.
func (l *Loader) Load(continentURI string) (*invsets.ReferenceDB, error) {
	db := invsets.NewReferenceDB()

	if err := l.loadReaches(continentURI+"/reaches", db); err != nil {
		return nil, err
	}
	if err := l.loadNodes(continentURI+"/nodes", db); err != nil {
		return nil, err
	}

	return db, nil
}

func (l *Loader) loadReaches(uri string, db *invsets.ReferenceDB) error {
	array, err := invsets.ArrayOpen(l.ctx, uri, tiledb.TILEDB_READ)
	if err != nil {
		return errors.Join(ErrOpenArray, err, errors.New(uri))
	}
	defer array.Free()
	defer array.Close()

	nonEmpty, _, err := array.NonEmptyDomain()
	if err != nil {
		return errors.Join(ErrQuery, err)
	}

	query, err := tiledb.NewQuery(l.ctx, array)
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	defer query.Free()

	if err = query.SetLayout(tiledb.TILEDB_UNORDERED); err != nil {
		return errors.Join(ErrQuery, err)
	}

	subarray, err := array.NewSubarray()
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	defer subarray.Free()

	for _, rng := range nonEmpty {
		r, ok := rng.(tiledb.Range)
		if !ok {
			continue
		}
		if err = subarray.AddRangeByName("REACH_ID", r); err != nil {
			return errors.Join(ErrQuery, err)
		}
	}
	if err = query.SetSubarray(subarray); err != nil {
		return errors.Join(ErrQuery, err)
	}

	est, _, err := query.EstimateResultSize("REACH_ID")
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	n := int(est/8) + 1

	reachIDs := make([]int64, n)
	facc := make([]float64, n)
	nUp := make([]int32, n)
	nDown := make([]int32, n)
	swotObs := make([]int32, n)

	upData := make([]int64, n*4)
	upOffsets := make([]uint64, n)
	downData := make([]int64, n*4)
	downOffsets := make([]uint64, n)
	orbitData := make([]int32, n*8)
	orbitOffsets := make([]uint64, n)

	buffers := []struct {
		name string
		set  func() error
	}{
		{"REACH_ID", func() error { _, err := query.SetDataBuffer("REACH_ID", reachIDs); return err }},
		{"Facc", func() error { _, err := query.SetDataBuffer("Facc", facc); return err }},
		{"NUp", func() error { _, err := query.SetDataBuffer("NUp", nUp); return err }},
		{"NDown", func() error { _, err := query.SetDataBuffer("NDown", nDown); return err }},
		{"SwotObs", func() error { _, err := query.SetDataBuffer("SwotObs", swotObs); return err }},
		{"UpIDs", func() error {
			if _, err := query.SetOffsetsBuffer("UpIDs", upOffsets); err != nil {
				return err
			}
			_, err := query.SetDataBuffer("UpIDs", upData)
			return err
		}},
		{"DownIDs", func() error {
			if _, err := query.SetOffsetsBuffer("DownIDs", downOffsets); err != nil {
				return err
			}
			_, err := query.SetDataBuffer("DownIDs", downData)
			return err
		}},
		{"SwotOrbits", func() error {
			if _, err := query.SetOffsetsBuffer("SwotOrbits", orbitOffsets); err != nil {
				return err
			}
			_, err := query.SetDataBuffer("SwotOrbits", orbitData)
			return err
		}},
	}
	for _, b := range buffers {
		if err = b.set(); err != nil {
			return errors.Join(ErrQuery, err, fmt.Errorf("attribute %s", b.name))
		}
	}

	if err = query.Submit(); err != nil {
		return errors.Join(ErrQuery, err)
	}

	elems, err := query.ResultBufferElements()
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	count := int(elems["REACH_ID"][1])

	for i := 0; i < count; i++ {
		up := sliceVarCell(upData, upOffsets, i, count)
		down := sliceVarCell(downData, downOffsets, i, count)
		orbits := sliceVarCellInt32(orbitData, orbitOffsets, i, count)

		db.Put(&invsets.Reach{
			ReachID:    invsets.ReachID(reachIDs[i]),
			Facc:       facc[i],
			NUp:        int(nUp[i]),
			NDown:      int(nDown[i]),
			UpIDs:      toReachIDs(up),
			DownIDs:    toReachIDs(down),
			SwotObs:    int(swotObs[i]),
			SwotOrbits: orbits,
		})
	}

	return nil
}

func (l *Loader) loadNodes(uri string, db *invsets.ReferenceDB) error {
	array, err := invsets.ArrayOpen(l.ctx, uri, tiledb.TILEDB_READ)
	if err != nil {
		return errors.Join(ErrOpenArray, err, errors.New(uri))
	}
	defer array.Free()
	defer array.Close()

	nonEmpty, _, err := array.NonEmptyDomain()
	if err != nil {
		return errors.Join(ErrQuery, err)
	}

	query, err := tiledb.NewQuery(l.ctx, array)
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	defer query.Free()

	if err = query.SetLayout(tiledb.TILEDB_UNORDERED); err != nil {
		return errors.Join(ErrQuery, err)
	}

	subarray, err := array.NewSubarray()
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	defer subarray.Free()

	for _, rng := range nonEmpty {
		r, ok := rng.(tiledb.Range)
		if !ok {
			continue
		}
		if err = subarray.AddRangeByName("NODE_ID", r); err != nil {
			return errors.Join(ErrQuery, err)
		}
	}
	if err = query.SetSubarray(subarray); err != nil {
		return errors.Join(ErrQuery, err)
	}

	est, _, err := query.EstimateResultSize("NODE_ID")
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	n := int(est/8) + 1

	nodeIDs := make([]int64, n)
	parentReach := make([]int64, n)

	if _, err = query.SetDataBuffer("NODE_ID", nodeIDs); err != nil {
		return errors.Join(ErrQuery, err)
	}
	if _, err = query.SetDataBuffer("ReachID", parentReach); err != nil {
		return errors.Join(ErrQuery, err)
	}

	if err = query.Submit(); err != nil {
		return errors.Join(ErrQuery, err)
	}

	elems, err := query.ResultBufferElements()
	if err != nil {
		return errors.Join(ErrQuery, err)
	}
	count := int(elems["NODE_ID"][1])

	for i := 0; i < count; i++ {
		db.PutNode(invsets.ReachID(parentReach[i]), invsets.NodeID(nodeIDs[i]))
	}

	return nil
}

// sliceVarCell extracts the i'th variable-length cell from a flattened
// int64 data buffer using its offsets, mirroring the read-side counterpart
// of the teacher's write-side sliceOffsets helper (tiledb.go).
func sliceVarCell(data []int64, offsets []uint64, i, count int) []int64 {
	start := offsets[i] / 8
	var end uint64
	if i+1 < count {
		end = offsets[i+1] / 8
	} else {
		end = uint64(len(data))
	}
	return data[start:end]
}

func sliceVarCellInt32(data []int32, offsets []uint64, i, count int) []int32 {
	start := offsets[i] / 4
	var end uint64
	if i+1 < count {
		end = offsets[i+1] / 4
	} else {
		end = uint64(len(data))
	}
	return data[start:end]
}

func toReachIDs(ids []int64) []invsets.ReachID {
	out := make([]invsets.ReachID, len(ids))
	for i, id := range ids {
		out[i] = invsets.ReachID(id)
	}
	return out
}

// Package refdb loads a continent's hydrography reference database — the
// reach and node topology used by setbuilder — from a TileDB array group,
// and applies an optional JSON override ("sword patch") on top of it.
//
// Grounded on the teacher's schema.go (tag-driven TileDB schema
// construction) and tiledb.go/file.go (array and VFS lifecycle), adapted
// from a GSF ping array to the reach/node topology arrays described in
// spec.md §4.2.
package refdb

import (
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"

	"github.com/swot-confluence/invsets"
)

// reachTileExtent is the tile extent along the REACH_ID dimension; an
// arbitrary but reasonable choice for a per-continent reach count in the
// tens of thousands.
const reachTileExtent = 10000

// reachDomainMax bounds the REACH_ID dimension. SWORD reach identifiers are
// 11-digit decimal numbers, so 10^12 comfortably covers every basin.
const reachDomainMax = int64(1_000_000_000_000)

// ReachRecord is the on-disk attribute layout of the reaches array. Field
// tags are parsed by CreateAttr exactly as the teacher's schema.go does for
// its sensor record types.
type ReachRecord struct {
	ReachID    int64   `tiledb:"dtype=int64,ftype=dim"`
	Facc       float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	NUp        int32   `tiledb:"dtype=int32,ftype=attr" filters:"zstd(level=16)"`
	NDown      int32   `tiledb:"dtype=int32,ftype=attr" filters:"zstd(level=16)"`
	UpIDs      []int64 `tiledb:"dtype=int64,ftype=attr,var" filters:"bysh,zstd(level=16)"`
	DownIDs    []int64 `tiledb:"dtype=int64,ftype=attr,var" filters:"bysh,zstd(level=16)"`
	SwotObs    int32   `tiledb:"dtype=int32,ftype=attr" filters:"zstd(level=16)"`
	SwotOrbits []int32 `tiledb:"dtype=int32,ftype=attr,var" filters:"bysh,zstd(level=16)"`
}

// NodeRecord is the on-disk attribute layout of the nodes array: every node
// identifier paired with the reach identifier it belongs to.
type NodeRecord struct {
	NodeID  int64 `tiledb:"dtype=int64,ftype=dim"`
	ReachID int64 `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
}

// reachFieldNames lists ReachRecord's non-dimension fields in declaration
// order, matched against the struct tags by name.
var reachFieldNames = []string{"Facc", "NUp", "NDown", "UpIDs", "DownIDs", "SwotObs", "SwotOrbits"}

// NewReachArraySchema builds the sparse array schema for a continent's
// reaches array.
func NewReachArraySchema(ctx *tiledb.Context) (*tiledb.ArraySchema, error) {
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}
	defer domain.Free()

	dim, err := tiledb.NewDimension(ctx, "REACH_ID", tiledb.TILEDB_INT64, []int64{0, reachDomainMax}, int64(reachTileExtent))
	if err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}
	defer dim.Free()

	if err = domain.AddDimensions(dim); err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_SPARSE)
	if err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}

	if err = schema.SetDomain(domain); err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}
	if err = schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}
	if err = schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}

	if err = addStructAttrs(&ReachRecord{}, reachFieldNames, schema, ctx); err != nil {
		return nil, err
	}

	return schema, nil
}

// NewNodeArraySchema builds the sparse array schema for a continent's nodes
// array.
func NewNodeArraySchema(ctx *tiledb.Context) (*tiledb.ArraySchema, error) {
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}
	defer domain.Free()

	dim, err := tiledb.NewDimension(ctx, "NODE_ID", tiledb.TILEDB_INT64, []int64{0, reachDomainMax * 1000}, int64(reachTileExtent))
	if err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}
	defer dim.Free()

	if err = domain.AddDimensions(dim); err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_SPARSE)
	if err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}

	if err = schema.SetDomain(domain); err != nil {
		return nil, errors.Join(invsets.ErrCreateSchemaTdb, err)
	}

	if err = addStructAttrs(&NodeRecord{}, []string{"ReachID"}, schema, ctx); err != nil {
		return nil, err
	}

	return schema, nil
}

// addStructAttrs parses a struct's tiledb/filters tags and creates a TileDB
// attribute for each named field, in the teacher's schemaAttrs style.
func addStructAttrs(t any, fieldNames []string, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	filtDefs, _ := stgpsr.ParseStruct(t, "filters")
	tdbDefs, _ := stgpsr.ParseStruct(t, "tiledb")

	for _, name := range fieldNames {
		fieldTdbDefs := make(map[string]stgpsr.Definition)
		for _, v := range tdbDefs[name] {
			fieldTdbDefs[v.Name()] = v
		}

		if err := invsets.CreateAttr(name, filtDefs[name], fieldTdbDefs, schema, ctx); err != nil {
			return errors.Join(invsets.ErrCreateAttributeTdb, err)
		}
	}

	return nil
}

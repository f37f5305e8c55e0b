package invsets

import (
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

// ErrCreateAttributeTdb wraps any failure while constructing a TileDB
// attribute or attaching its filter pipeline.
var ErrCreateAttributeTdb = errors.New("error creating attribute for tiledb array")

// ErrCreateSchemaTdb wraps any failure while constructing a TileDB array
// schema.
var ErrCreateSchemaTdb = errors.New("error creating tiledb schema")

// ArrayOpen opens an existing TileDB array for the given query mode. Shared
// by refdb (reaches and nodes) and manifest (VFS-backed output writing).
func ArrayOpen(ctx *tiledb.Context, uri string, mode tiledb.QueryType) (*tiledb.Array, error) {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return nil, err
	}

	err = array.Open(mode)
	if err != nil {
		array.Free()
		return nil, err
	}

	return array, nil
}

// AddFilters sequentially appends compression filters to a filter pipeline.
func AddFilters(filterList *tiledb.FilterList, filters ...*tiledb.Filter) error {
	for _, filt := range filters {
		if err := filterList.AddFilter(filt); err != nil {
			return err
		}
	}
	return nil
}

// ZstdFilter initialises the Zstandard compression filter at the given level.
func ZstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}
	if err = filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// AttachFilters sets the same filter pipeline on every given attribute.
func AttachFilters(filterList *tiledb.FilterList, attrs ...*tiledb.Attribute) error {
	for _, attr := range attrs {
		if err := attr.SetFilterList(filterList); err != nil {
			return err
		}
	}
	return nil
}

// CreateAttr creates a TileDB attribute, including its compression filter
// pipeline, from a field's struct tags. Tags for tiledb include: dtype, var,
// ftype (dim fields are skipped by the caller before reaching here). Tags
// for filters include zstd(level=N) and bysh (byteshuffle); unlisted filter
// names are silently skipped, matching the teacher's tag-driven schema
// builder (schema.go) in permissiveness.
func CreateAttr(
	fieldName string,
	filterDefs []stgpsr.Definition,
	tiledbDefs map[string]stgpsr.Definition,
	schema *tiledb.ArraySchema,
	ctx *tiledb.Context,
) error {
	def, status := tiledbDefs["dtype"]
	if !status {
		return errors.Join(ErrCreateAttributeTdb, errors.New("dtype tag not found"))
	}
	dtype, _ := def.Attribute("dtype")

	var tdbDtype tiledb.Datatype
	switch dtype {
	case "int32":
		tdbDtype = tiledb.TILEDB_INT32
	case "int64":
		tdbDtype = tiledb.TILEDB_INT64
	case "uint64":
		tdbDtype = tiledb.TILEDB_UINT64
	case "float32":
		tdbDtype = tiledb.TILEDB_FLOAT32
	case "float64":
		tdbDtype = tiledb.TILEDB_FLOAT64
	case "string":
		tdbDtype = tiledb.TILEDB_STRING_UTF8
	}

	attrFilts, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return errors.Join(ErrCreateAttributeTdb, err)
	}
	defer attrFilts.Free()

	for _, filter := range filterDefs {
		switch filter.Name() {
		case "zstd":
			level, status := filter.Attribute("level")
			if !status {
				return errors.Join(ErrCreateAttributeTdb, errors.New("zstd level not defined"))
			}
			filt, err := ZstdFilter(ctx, int32(level.(int64)))
			if err != nil {
				return errors.Join(ErrCreateAttributeTdb, err)
			}
			defer filt.Free()
			if err = attrFilts.AddFilter(filt); err != nil {
				return errors.Join(ErrCreateAttributeTdb, err)
			}
		case "bysh":
			filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_BYTESHUFFLE)
			if err != nil {
				return errors.Join(ErrCreateAttributeTdb, err)
			}
			defer filt.Free()
			if err = attrFilts.AddFilter(filt); err != nil {
				return errors.Join(ErrCreateAttributeTdb, err)
			}
		}
	}

	attr, err := tiledb.NewAttribute(ctx, fieldName, tdbDtype)
	if err != nil {
		return errors.Join(ErrCreateAttributeTdb, err)
	}
	defer attr.Free()

	_, isVar := tiledbDefs["var"]
	if isVar {
		if err = attr.SetCellValNum(tiledb.TILEDB_VAR_NUM); err != nil {
			return errors.Join(ErrCreateAttributeTdb, err)
		}
	}

	if err = AttachFilters(attrFilts, attr); err != nil {
		return errors.Join(ErrCreateAttributeTdb, err)
	}

	if err = schema.AddAttributes(attr); err != nil {
		return errors.Join(ErrCreateAttributeTdb, err)
	}

	if isVar {
		offsetFilts, err := tiledb.NewFilterList(ctx)
		if err != nil {
			return errors.Join(ErrCreateAttributeTdb, err)
		}

		ddFilt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_POSITIVE_DELTA)
		if err != nil {
			return errors.Join(ErrCreateAttributeTdb, err)
		}

		zstdFilt, err := ZstdFilter(ctx, int32(16))
		if err != nil {
			return errors.Join(ErrCreateAttributeTdb, err)
		}

		if err = AddFilters(offsetFilts, ddFilt, zstdFilt); err != nil {
			return errors.Join(ErrCreateAttributeTdb, err)
		}

		if err = schema.SetOffsetsFilterList(offsetFilts); err != nil {
			return errors.Join(ErrCreateAttributeTdb, err)
		}
	}

	return nil
}

package shapefile

import "errors"

// ErrVersionMismatch and ErrPassMismatch are raised when a granule's XML
// sidecar disagrees with the run's targets; the granule is skipped, not
// fatal (spec.md §4.4, §7 "Shapefile-parse").
var (
	ErrVersionMismatch = errors.New("shapefile: reference-db version does not match run target")
	ErrPassMismatch    = errors.New("shapefile: pass number does not match run target")
	ErrDBFMemberAbsent = errors.New("shapefile: zip has no matching .dbf member")
	ErrXMLMemberAbsent = errors.New("shapefile: zip has no .xml sidecar member")
	ErrUnclassified    = errors.New("shapefile: granule name is neither Reach nor Node classified")
)

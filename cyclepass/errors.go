package cyclepass

import "errors"

// ErrMalformedGranuleName is returned when a granule URI does not carry
// enough underscore-delimited components to locate the cycle and pass
// fields (spec.md §4.5, "CycleIndexer").
var ErrMalformedGranuleName = errors.New("cyclepass: granule name has too few components to locate cycle/pass")

package invsets

import (
	"errors"
)

// Sentinel errors shared across the pipeline, declared at package scope in
// the teacher's flat style (errors.go).
var ErrNotFound = errors.New("reach or node identifier not found in reference database")
var ErrEmptyNeighbors = errors.New("reach has nonzero degree but an empty neighbor list")

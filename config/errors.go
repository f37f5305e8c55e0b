package config

import "errors"

// ErrConfiguration covers malformed or missing run configuration — an
// unknown continent index, an unreadable continent manifest, a missing
// batch-array environment variable. Spec §7 classifies these fatal:
// print and exit non-zero.
var ErrConfiguration = errors.New("config: invalid run configuration")

package manifest

import "errors"

// ErrManifestIO wraps a failure writing a manifest file, spec §7's
// "Output I/O" error kind — always fatal.
var ErrManifestIO = errors.New("manifest: output i/o failure")

package catalog

import "errors"

// ErrUnknownProvider is a Configuration error (spec §7): an unrecognized
// -p/--provider value. Fatal to the caller.
var ErrUnknownProvider = errors.New("unrecognized credential provider")

// ErrUnknownContinent is a Configuration error: a continent code with no
// entry in the continent→granule-code table.
var ErrUnknownContinent = errors.New("unrecognized continent code")

// ErrCatalogTransport is a Catalog/Transport error (spec §7): persistent
// HTTP failure against the catalog after the single transient retry.
var ErrCatalogTransport = errors.New("catalog request failed")

// ErrCredential is a Credential error (spec §7): failure to obtain or
// refresh temporary S3 credentials.
var ErrCredential = errors.New("credential broker request failed")

// ErrMalformedTemporalRange is a Configuration error: a -t/--temporalrange
// value that is not a well-formed "start,end" ISO-8601-Z pair.
var ErrMalformedTemporalRange = errors.New("malformed temporal range")

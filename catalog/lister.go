package catalog

import "context"

// ListOptions parameterizes a single GranuleLister run (spec.md §4.1,
// "GranuleLister").
type ListOptions struct {
	ShortName    string
	Provider     Provider
	TemporalRange string
	Continent    string
}

// GranuleLister enumerates zipped shapefile granules for a collection and
// temporal range, filtered to one continent, deduplicating reprocessed
// granules and returning a naturally-sorted, deterministic URI list.
type GranuleLister struct {
	cmr    *CMRClient
	broker *Broker
}

// NewGranuleLister constructs a GranuleLister over the production CMR host
// and a credential broker backed by the default AWS configuration.
func NewGranuleLister(ctx context.Context) (*GranuleLister, error) {
	broker, err := NewBroker(ctx)
	if err != nil {
		return nil, err
	}
	return &GranuleLister{cmr: NewCMRClient(), broker: broker}, nil
}

// List queries the catalog, applies the continent/zip-suffix filters, and
// collapses reprocessed duplicates, returning a sorted granule URI list.
//
// The requested temporal range is split into consecutive ≤30-day windows
// (SplitTemporalRange) and queried one window at a time, the same
// chunking the original generator applies before calling out to CMR, so
// a single run is never tripped up by a collection-specific bound on how
// wide a revision_date range the catalog will accept in one query.
func (g *GranuleLister) List(ctx context.Context, opts ListOptions) ([]string, error) {
	token, err := g.broker.EDLToken(ctx)
	if err != nil {
		return nil, err
	}

	windows, err := SplitTemporalRange(opts.TemporalRange)
	if err != nil {
		return nil, err
	}

	var uris []string
	for _, w := range windows {
		revisionDate := w.Start + "," + w.End
		page, err := g.cmr.Query(ctx, opts.ShortName, revisionDate, token)
		if err != nil {
			return nil, err
		}
		uris = append(uris, page...)
	}

	uris = ZipGranules(uris)

	uris, err = FilterByContinent(uris, opts.Continent)
	if err != nil {
		return nil, err
	}

	uris = CollapseReprocessed(uris)

	NaturalSortStrings(uris)
	return uris, nil
}

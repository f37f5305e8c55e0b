// Package search trawls a local granule directory for shapefile zip
// archives, the `-l/--local` counterpart to catalog.GranuleLister
// (adapted from the teacher's search/search.go, which does the equivalent
// walk for *.gsf files).
package search

import (
	"fmt"
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	"github.com/swot-confluence/invsets/catalog"
)

// trawl recursively matches pattern against file basenames under uri,
// using TileDB's VFS so the same code walks a local filesystem or an
// object store indifferently.
func trawl(vfs *tiledb.VFS, pattern, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return items, fmt.Errorf("listing %s: %w", uri, err)
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return items, fmt.Errorf("matching pattern %q: %w", pattern, err)
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items, err = trawl(vfs, pattern, dir, items)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// FindGranules recursively searches for "*.zip" shapefile granules under
// uri (a local directory or an object-store prefix), returning them in
// natural-sorted order.
func FindGranules(uri, configURI string) ([]string, error) {
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
		return nil, fmt.Errorf("loading tiledb config: %w", err)
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, fmt.Errorf("creating tiledb context: %w", err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating tiledb vfs: %w", err)
	}
	defer vfs.Free()

	items, err := trawl(vfs, "*.zip", uri, make([]string, 0))
	if err != nil {
		return nil, err
	}

	catalog.NaturalSortStrings(items)
	return items, nil
}

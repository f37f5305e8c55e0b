package manifest

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// Writer emits the per-continent JSON manifests to a directory URI, which
// may be a local path or an object-store location — TileDB's VFS layer
// handles both transparently (adapted from the teacher's json.go/WriteJson,
// with I/O failures returned rather than panicked on: spec §7 classifies
// "Output I/O" as fatal, which the caller enforces by exiting non-zero).
type Writer struct {
	outDirURI string
	configURI string
}

// NewWriter constructs a Writer targeting outDirURI, optionally configured
// from a TileDB config file at configURI (empty uses a default config).
func NewWriter(outDirURI, configURI string) *Writer {
	return &Writer{outDirURI: outDirURI, configURI: configURI}
}

// Write serializes data as indented JSON and writes it to name under the
// writer's output directory.
func (w *Writer) Write(name string, data any) error {
	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: marshaling %s: %v", ErrManifestIO, name, err)
	}
	if _, err := writeVFS(path.Join(w.outDirURI, name), w.configURI, jsn); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Bundle collects every manifest payload for one continent run, in the
// shape ManifestWriter's callers assemble from the upstream collaborators.
type Bundle struct {
	Continent    string
	Algorithm    string // e.g. "metroman", "hivdi", "sic" -> "<algo>sets_<c>.json"
	Basin        []BasinEntry
	Reaches      []ReachEntry
	ReachNode    []any
	CyclePasses  map[string]int
	Passes       map[string][2]string
	S3List       []string
	S3Reach      map[string][]string
	Sets         [][]ReachEntry
}

// WriteAll writes every file enumerated in spec.md §6 for one continent,
// in a fixed deterministic name order.
func (w *Writer) WriteAll(b Bundle) error {
	lc := strings.ToLower(b.Continent)
	algo := strings.ToLower(b.Algorithm)

	files := map[string]any{
		fmt.Sprintf("basin_%s.json", lc):         b.Basin,
		fmt.Sprintf("reaches_%s.json", lc):       b.Reaches,
		fmt.Sprintf("reach_node_%s.json", lc):    b.ReachNode,
		fmt.Sprintf("cycle_passes_%s.json", lc):  b.CyclePasses,
		fmt.Sprintf("passes_%s.json", lc):        b.Passes,
		fmt.Sprintf("s3_list_%s.json", lc):       b.S3List,
		fmt.Sprintf("s3_reach_%s.json", lc):      b.S3Reach,
		fmt.Sprintf("%ssets_%s.json", algo, lc):  b.Sets,
	}

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		if err := w.Write(n, files[n]); err != nil {
			return err
		}
	}
	return nil
}

// WriteHLSManifest writes hls_<c>.json: the subset of granules (the
// already-listed shapefile URIs, plus any caller-supplied HLS granule
// URIs) naming an HLS tile collection (spec.md §6 scopes full HLS
// resolution out of the inversion-set core; a caller gates this behind
// -b/--hls, making it a no-op otherwise).
func (w *Writer) WriteHLSManifest(continent string, granules []string) error {
	name := fmt.Sprintf("hls_%s.json", strings.ToLower(continent))
	return w.Write(name, BuildHLSManifest(granules))
}

func writeVFS(fileURI, configURI string, data []byte) (int, error) {
	var config *tiledb.Config
	var err error
	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrManifestIO, err)
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrManifestIO, err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrManifestIO, err)
	}
	defer vfs.Free()

	stream, err := vfs.Open(fileURI, tiledb.TILEDB_VFS_WRITE)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrManifestIO, err)
	}
	defer stream.Close()

	n, err := stream.Write(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrManifestIO, err)
	}
	return n, nil
}

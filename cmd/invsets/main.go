// Command invsets builds the per-continent work-item manifests that drive
// the downstream hydrology inversion pipeline: it lists the satellite
// shapefile granules observed in a temporal window, resolves the reach
// and node identifiers they carry, partitions river reaches into
// inversion sets per algorithm profile, and writes the resulting JSON
// manifests.
//
// Adapted from the teacher's cmd/main.go (urfave/cli App structure,
// pond worker-pool usage, log.Println-style progress reporting).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/swot-confluence/invsets"
	"github.com/swot-confluence/invsets/catalog"
	"github.com/swot-confluence/invsets/config"
	"github.com/swot-confluence/invsets/cyclepass"
	"github.com/swot-confluence/invsets/manifest"
	"github.com/swot-confluence/invsets/refdb"
	"github.com/swot-confluence/invsets/search"
	"github.com/swot-confluence/invsets/setbuilder"
	"github.com/swot-confluence/invsets/shapefile"
)

// swordSuffix and sosSuffix name the reference-db and SOS-prior files a
// continent's manifests point at, matching
// original_source/conf.py's sword_suffix/sos_suffix convention.
const (
	swordSuffix = "sword_v16"
	sosSuffix   = "sword_v16_SOS_priors.nc"
)

func main() {
	app := &cli.App{
		Name:  "invsets",
		Usage: "build per-continent inversion-set manifests",
		Flags: config.CLIFlags(),
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return run(ctx, config.FlagsFromContext(c))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, flags config.Flags) error {
	idx, err := config.ResolveIndex(flags.Index, os.Getenv)
	if err != nil {
		return err
	}

	manifestJSON, err := os.ReadFile(path.Join(flags.Directory, flags.JSONFile))
	if err != nil {
		return fmt.Errorf("%w: reading continent manifest: %v", config.ErrConfiguration, err)
	}
	continent, err := config.ResolveContinent(idx, manifestJSON)
	if err != nil {
		return err
	}
	log.Println("Continent:", continent)

	granules, err := listGranules(ctx, flags, continent)
	if err != nil {
		return err
	}
	log.Println("Granules found:", len(granules))

	fetch, refresh, err := buildFetcher(ctx, flags)
	if err != nil {
		return err
	}

	indexer := cyclepass.NewCycleIndexer()
	forward, reverse, cpErr := indexer.Index(granules)
	if cpErr != nil {
		log.Println("warning:", cpErr)
	}

	writer := manifest.NewWriter(flags.Directory, "")

	if strings.EqualFold(flags.Context, "lake") {
		return runLakeContext(ctx, flags, continent, granules, fetch, refresh, forward, reverse, writer)
	}
	return runRiverContext(ctx, flags, continent, granules, fetch, refresh, forward, reverse, writer)
}

// listGranules enumerates granule URIs for the run, either from the
// catalog (spec.md §4.1 "GranuleLister") or from a local directory when
// -l/--local is set.
func listGranules(ctx context.Context, flags config.Flags, continent string) ([]string, error) {
	if flags.Local {
		log.Println("Searching local shapefile directory:", flags.ShapefileDir)
		return search.FindGranules(flags.ShapefileDir, "")
	}

	if flags.Simulated {
		log.Println("Listing simulated-data bucket directly (-o/--simulated)")
		broker, err := catalog.NewBroker(ctx)
		if err != nil {
			return nil, err
		}
		creds, err := broker.PersistedCredentials(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.ListSimulatedGranules(ctx, creds)
	}

	provider, err := catalog.ParseProvider(flags.Provider)
	if err != nil {
		return nil, err
	}

	lister, err := catalog.NewGranuleLister(ctx)
	if err != nil {
		return nil, err
	}

	return lister.List(ctx, catalog.ListOptions{
		ShortName:     flags.ShortName,
		Provider:      provider,
		TemporalRange: flags.TemporalRange,
		Continent:     continent,
	})
}

// buildFetcher constructs the granule FetchFunc/RefreshFunc pair: local
// filesystem reads under -l/--local, or a credential-brokered S3 fetch
// otherwise.
func buildFetcher(ctx context.Context, flags config.Flags) (shapefile.FetchFunc, shapefile.RefreshFunc, error) {
	if flags.Local {
		fetch := func(_ context.Context, uri string) ([]byte, error) {
			return os.ReadFile(uri)
		}
		return fetch, nil, nil
	}

	broker, err := catalog.NewBroker(ctx)
	if err != nil {
		return nil, nil, err
	}

	if flags.Simulated {
		// The simulated-data path authenticates with whatever credentials
		// are already on file rather than brokering a fresh set, so
		// there's nothing meaningful for a forced refresh to do.
		credFn := func(ctx context.Context, _ bool) (*catalog.Credentials, error) {
			return broker.PersistedCredentials(ctx)
		}
		return shapefile.NewS3FetchFunc(credFn), shapefile.NewS3RefreshFunc(credFn), nil
	}

	provider, err := catalog.ParseProvider(flags.Provider)
	if err != nil {
		return nil, nil, err
	}

	var cached *catalog.Credentials
	credFn := func(ctx context.Context, forceRefresh bool) (*catalog.Credentials, error) {
		if cached != nil && !forceRefresh {
			return cached, nil
		}
		username, password, err := broker.EDLCredentials(ctx)
		if err != nil {
			return nil, err
		}
		creds, err := broker.FetchS3Credentials(ctx, provider, username, password)
		if err != nil {
			return nil, err
		}
		if err := broker.PersistToSSM(ctx, creds, flags.SSMKey); err != nil {
			return nil, err
		}
		cached = creds
		return creds, nil
	}

	return shapefile.NewS3FetchFunc(credFn), shapefile.NewS3RefreshFunc(credFn), nil
}

func loadPassList(flags config.Flags) ([]string, error) {
	if flags.PassList == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(flags.PassList)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pass list: %v", config.ErrConfiguration, err)
	}
	return config.ParsePassList(raw)
}

// runRiverContext runs the full pipeline: shapefile extraction, reference
// database load and patch, inversion-set building per algorithm profile,
// and manifest writing (spec.md §2 steps 2-6).
func runRiverContext(
	ctx context.Context,
	flags config.Flags,
	continent string,
	granules []string,
	fetch shapefile.FetchFunc,
	refresh shapefile.RefreshFunc,
	forward map[string]int,
	reverse map[int]cyclepass.CyclePass,
	writer *manifest.Writer,
) error {
	passList, err := loadPassList(flags)
	if err != nil {
		return err
	}

	reader := shapefile.NewReader(fetch, refresh, "", passList, 0)
	result := reader.Read(ctx, granules)
	for _, w := range result.Warnings {
		log.Println("warning:", w)
	}
	log.Println("Reaches observed:", len(result.ReachIDs), "nodes observed:", len(result.NodeIDs))

	loader, err := refdb.NewLoader("")
	if err != nil {
		return err
	}
	defer loader.Close()

	continentURI := path.Join(flags.Directory, "sword", strings.ToLower(continent))
	db, err := loader.Load(continentURI)
	if err != nil {
		return err
	}
	log.Println("Reference database loaded, reach count:", db.Len())

	if flags.SwordPatch != "" {
		raw, err := os.ReadFile(flags.SwordPatch)
		if err != nil {
			return fmt.Errorf("%w: reading sword patch: %v", config.ErrConfiguration, err)
		}
		var patch refdb.Patch
		if err := json.Unmarshal(raw, &patch); err != nil {
			return fmt.Errorf("%w: parsing sword patch: %v", config.ErrConfiguration, err)
		}
		if err := refdb.ApplyPatch(db, patch); err != nil {
			return err
		}
		log.Println("Applied sword patch:", flags.SwordPatch)
	}

	var subset map[int64]struct{}
	if flags.SubsetFile != "" {
		raw, err := os.ReadFile(flags.SubsetFile)
		if err != nil {
			return fmt.Errorf("%w: reading reach subset file: %v", config.ErrConfiguration, err)
		}
		ids, err := config.ParseReachSubset(raw)
		if err != nil {
			return err
		}
		subset = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			subset[id] = struct{}{}
		}
		log.Println("Restricting to reach subset:", flags.SubsetFile, "(", len(subset), "reaches )")
	}

	observed := make([]invsets.ReachID, 0, len(result.ReachIDs))
	for _, id := range result.ReachIDs {
		rid := invsets.ReachID(id)
		if !rid.IsRiverType() {
			continue
		}
		if subset != nil {
			if _, ok := subset[id]; !ok {
				continue
			}
		}
		observed = append(observed, rid)
	}

	sword := fmt.Sprintf("%s_%s.nc", strings.ToLower(continent), swordSuffix)
	sos := fmt.Sprintf("%s_%s", strings.ToLower(continent), sosSuffix)

	bundle := manifest.Bundle{
		Continent:   continent,
		Basin:       manifest.BuildBasinManifest(observed, sword, sos),
		Reaches:     manifest.BuildReachManifest(observed, sword, sos),
		ReachNode:   manifest.BuildReachNodeManifest(db, observed),
		CyclePasses: manifest.BuildCyclePassesManifest(forward),
		Passes:      manifest.BuildPassesManifest(reverse),
		S3List:      manifest.BuildS3ListManifest(granules),
		S3Reach:     manifest.BuildS3ReachManifest(result.ReachIndex),
	}

	builder := setbuilder.NewBuilder(db, observed)
	for _, profile := range invsets.StandardProfiles() {
		sets := builder.BuildFor(profile)
		log.Printf("Algorithm %s: %d inversion sets", profile.Name, len(sets))

		bundle.Algorithm = profile.Name
		bundle.Sets = manifest.BuildSetsManifest(sets, sword, sos)
		if err := writer.WriteAll(bundle); err != nil {
			return err
		}
	}

	if flags.HLS {
		if err := writer.WriteHLSManifest(continent, granules); err != nil {
			return err
		}
	}

	return nil
}

// runLakeContext skips set building entirely — lakes have no hydrography
// graph to partition — and writes only the granule/lake-identifier
// manifests, under the lake-specific filenames original_source/conf_lake.py
// declares.
func runLakeContext(
	ctx context.Context,
	flags config.Flags,
	continent string,
	granules []string,
	fetch shapefile.FetchFunc,
	refresh shapefile.RefreshFunc,
	forward map[string]int,
	reverse map[int]cyclepass.CyclePass,
	writer *manifest.Writer,
) error {
	lakeResult := shapefile.ReadLakeIDs(ctx, fetch, refresh, granules, 0)
	for _, w := range lakeResult.Warnings {
		log.Println("warning:", w)
	}
	log.Println("Lakes observed:", len(lakeResult.LakeIDs))

	lc := strings.ToLower(continent)

	if err := writer.Write(fmt.Sprintf("cycle_passes_lake_%s.json", lc), forward); err != nil {
		return err
	}
	if err := writer.Write(fmt.Sprintf("passes_lake_%s.json", lc), manifest.BuildPassesManifest(reverse)); err != nil {
		return err
	}
	if err := writer.Write(fmt.Sprintf("lakes_%s.json", lc), lakeResult.LakeIDs); err != nil {
		return err
	}
	s3ListName := "s3_list_lake"
	if flags.Local {
		s3ListName = "s3_list_lake_local"
	}
	if err := writer.Write(fmt.Sprintf("%s_%s.json", s3ListName, lc), manifest.BuildS3ListManifest(granules)); err != nil {
		return err
	}

	if flags.HLS {
		if err := writer.WriteHLSManifest(continent, granules); err != nil {
			return err
		}
	}

	return nil
}

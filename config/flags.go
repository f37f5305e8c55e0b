// Package config defines the command-line surface (spec.md §6, "CLI") and
// the batch-array continent resolution it feeds into the rest of the
// pipeline, grounded on original_source/generate_data.py:get_continent.
package config

import (
	"github.com/urfave/cli/v2"
)

// batchArrayIndexSentinel is the -i/--index value that means "read the
// index from AWS_BATCH_JOB_ARRAY_INDEX instead".
const batchArrayIndexSentinel = -235

// batchArrayIndexEnvVar is the environment variable an AWS Batch array job
// populates with this task's array index.
const batchArrayIndexEnvVar = "AWS_BATCH_JOB_ARRAY_INDEX"

// Flags holds one run's parsed command-line configuration.
type Flags struct {
	Context       string // -c/--context: "river" or "lake"
	Index         int    // -i/--index
	JSONFile      string // -j/--jsonfile
	Provider      string // -p/--provider
	ShortName     string // -s/--shortname
	TemporalRange string // -t/--temporalrange
	Directory     string // -d/--directory
	ShapefileDir  string // -f/--shapefiledir
	Local         bool   // -l/--local
	Simulated     bool   // -o/--simulated
	SubsetFile    string // -u/--subsetfile
	PassList      string // -a/--passlist
	SwordPatch    string // -w/--swordpatch
	HLS           bool   // -b/--hls
	SSMKey        string // -k/--ssmkey
}

// CLIFlags builds the urfave/cli flag set for the invsets command.
func CLIFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "context", Aliases: []string{"c"}, Usage: "run context: river or lake", Required: true},
		&cli.IntFlag{Name: "index", Aliases: []string{"i"}, Usage: "continent manifest index; -235 reads AWS_BATCH_JOB_ARRAY_INDEX", Required: true},
		&cli.StringFlag{Name: "jsonfile", Aliases: []string{"j"}, Usage: "continent manifest file name", Value: "continent.json"},
		&cli.StringFlag{Name: "provider", Aliases: []string{"p"}, Usage: "credential endpoint provider: POCLOUD, lpdaac, ornldaac, gesdisc"},
		&cli.StringFlag{Name: "shortname", Aliases: []string{"s"}, Usage: "catalog collection short name"},
		&cli.StringFlag{Name: "temporalrange", Aliases: []string{"t"}, Usage: "start,end ISO-8601-Z temporal range"},
		&cli.StringFlag{Name: "directory", Aliases: []string{"d"}, Usage: "output directory", Required: true},
		&cli.StringFlag{Name: "shapefiledir", Aliases: []string{"f"}, Usage: "local granule directory, used with -l"},
		&cli.BoolFlag{Name: "local", Aliases: []string{"l"}, Usage: "read granules from the local filesystem instead of the catalog"},
		&cli.BoolFlag{Name: "simulated", Aliases: []string{"o"}, Usage: "use the simulated-data credential path"},
		&cli.StringFlag{Name: "subsetfile", Aliases: []string{"u"}, Usage: "JSON list of reach identifiers to restrict to"},
		&cli.StringFlag{Name: "passlist", Aliases: []string{"a"}, Usage: "JSON list of pass numbers to restrict to"},
		&cli.StringFlag{Name: "swordpatch", Aliases: []string{"w"}, Usage: "path to a JSON reference-db patch overlay"},
		&cli.BoolFlag{Name: "hls", Aliases: []string{"b"}, Usage: "also emit the HLS-tile manifest"},
		&cli.StringFlag{Name: "ssmkey", Aliases: []string{"k"}, Usage: "parameter-store KMS key identifier"},
	}
}

// FlagsFromContext reads every flag out of an urfave/cli context.
func FlagsFromContext(c *cli.Context) Flags {
	return Flags{
		Context:       c.String("context"),
		Index:         c.Int("index"),
		JSONFile:      c.String("jsonfile"),
		Provider:      c.String("provider"),
		ShortName:     c.String("shortname"),
		TemporalRange: c.String("temporalrange"),
		Directory:     c.String("directory"),
		ShapefileDir:  c.String("shapefiledir"),
		Local:         c.Bool("local"),
		Simulated:     c.Bool("simulated"),
		SubsetFile:    c.String("subsetfile"),
		PassList:      c.String("passlist"),
		SwordPatch:    c.String("swordpatch"),
		HLS:           c.Bool("hls"),
		SSMKey:        c.String("ssmkey"),
	}
}

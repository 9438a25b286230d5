// Package cmd holds the minify-selectors command line interface.
package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cwbudde/minify-selectors/internal/config"
	"github.com/cwbudde/minify-selectors/internal/pipeline"
	"github.com/cwbudde/minify-selectors/internal/report"
)

// Version information (set by build flags)
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "minify-selectors",
	Short: "Minify class and id selector names across CSS, HTML, SVG and JS files",
	Long: `minify-selectors is a build-time post-processor that rewrites class and
id selector names into short alphabet-encoded identifiers, keeping every
cross-file reference intact.

Selectors are tallied across all inputs first, then encoded (hottest
selectors get the shortest names when sorting is enabled) and substituted
in a second pass. Authoring sources are never modified; the rewritten tree
is written to the output directory.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var (
	inputPath  string
	outputPath string
	configPath string
	startIndex uint
	alphabet   string

	customClassAttributes    []string
	customIDAttributes       []string
	customSelectorAttributes []string
	customAnchorAttributes   []string
	customStyleAttributes    []string
	customScriptAttributes   []string
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&inputPath, "input", "i", "", "file or directory to process")
	flags.StringVarP(&outputPath, "output", "o", "", "directory to write the rewritten tree to")
	flags.StringVarP(&configPath, "config", "c", "", "JSON config file with the same keys in camelCase")
	flags.UintVar(&startIndex, "start-index", 0, "ordinal to start encoding from")
	flags.StringVar(&alphabet, "alphabet", config.DefaultAlphabet, "character pool to encode with")

	optionalBool(flags, "parallel", false, "process files with parallel workers")
	optionalBool(flags, "sort", true, "reorder selectors by frequency before encoding")
	optionalBool(flags, "disable-sort", false, "skip reordering of selectors by frequency")

	flags.StringSliceVar(&customClassAttributes, "custom-class-attribute", nil, "additional attributes holding class names")
	flags.StringSliceVar(&customIDAttributes, "custom-id-attribute", nil, "additional attributes holding ids")
	flags.StringSliceVar(&customSelectorAttributes, "custom-selector-attribute", nil, "additional attributes holding selector strings")
	flags.StringSliceVar(&customAnchorAttributes, "custom-anchor-attribute", nil, "additional attributes holding URLs")
	flags.StringSliceVar(&customStyleAttributes, "custom-style-attribute", nil, "additional attributes holding inline styles")
	flags.StringSliceVar(&customScriptAttributes, "custom-script-attribute", nil, "additional attributes holding inline scripts")

	rootCmd.MarkFlagsMutuallyExclusive("config", "input")
	rootCmd.MarkFlagsMutuallyExclusive("config", "output")
}

// optionalBool registers a flag usable bare (--parallel) or with a value
// (--parallel=false).
func optionalBool(flags *pflag.FlagSet, name string, value bool, usage string) {
	flags.Bool(name, value, usage)
	flags.Lookup(name).NoOptDefVal = "true"
}

func run(command *cobra.Command, _ []string) error {
	opts, err := assembleOptions(command.Flags())
	if err != nil {
		return err
	}
	cfg, err := config.New(opts)
	if err != nil {
		return err
	}

	printer := report.New()
	stopwatch := time.Now()
	if err := pipeline.Run(cfg, printer); err != nil {
		return err
	}
	printer.Finished(time.Since(stopwatch))
	return nil
}

// assembleOptions merges the defaults, the JSON config file (when given)
// and any explicitly set flags, in that order.
func assembleOptions(flags *pflag.FlagSet) (config.Options, error) {
	opts := config.NewOptions()

	if configPath != "" {
		var err error
		if opts, err = config.LoadFile(configPath, opts); err != nil {
			return opts, err
		}
	}

	if flags.Changed("input") {
		opts.Source = inputPath
	}
	if flags.Changed("output") {
		opts.Output = outputPath
	}
	if flags.Changed("alphabet") {
		opts.Alphabet = alphabet
	}
	if flags.Changed("start-index") {
		opts.StartIndex = int(startIndex)
	}
	if flags.Changed("parallel") {
		opts.Parallel, _ = flags.GetBool("parallel")
	}
	if flags.Changed("sort") {
		opts.Sort, _ = flags.GetBool("sort")
	}
	if flags.Changed("disable-sort") {
		disabled, _ := flags.GetBool("disable-sort")
		opts.Sort = !disabled
	}

	opts.CustomClassAttributes = append(opts.CustomClassAttributes, customClassAttributes...)
	opts.CustomIDAttributes = append(opts.CustomIDAttributes, customIDAttributes...)
	opts.CustomSelectorAttributes = append(opts.CustomSelectorAttributes, customSelectorAttributes...)
	opts.CustomAnchorAttributes = append(opts.CustomAnchorAttributes, customAnchorAttributes...)
	opts.CustomStyleAttributes = append(opts.CustomStyleAttributes, customStyleAttributes...)
	opts.CustomScriptAttributes = append(opts.CustomScriptAttributes, customScriptAttributes...)

	return opts, nil
}

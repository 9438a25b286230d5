// Package config holds the run configuration shared by every stage of the
// pipeline: where to read and write, the encoding alphabet, the current
// processing step and the attribute whitelist extensions.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/cwbudde/minify-selectors/internal/encoder"
)

// ErrInvalid is reported for missing or contradictory configuration before
// any file is processed.
var ErrInvalid = errors.New("invalid configuration")

// DefaultAlphabet is the character pool used when --alphabet is not given.
const DefaultAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Step identifies the processing pass the pipeline is currently in. The
// extractor branches on it to decide between analysing and rewriting.
type Step uint8

const (
	ReadingFromFiles Step = iota
	EncodingSelectors
	WritingToFiles
)

// Config is the assembled run configuration. It is immutable during a pass;
// only Step changes between passes.
type Config struct {
	Source     string
	Output     string
	Alphabet   encoder.AlphabetSet
	StartIndex int
	Step       Step
	Parallel   bool
	Sort       bool

	// CustomAttributes maps additional HTML attribute names to their value
	// designation (class, id, selector, anchor, style or script). Entries
	// are merged over the built-in whitelist.
	CustomAttributes map[string]string
}

// Options carries raw configuration values before validation, either from
// CLI flags or from a JSON config file.
type Options struct {
	Source     string
	Output     string
	Alphabet   string
	StartIndex int
	Parallel   bool
	Sort       bool

	CustomClassAttributes    []string
	CustomIDAttributes       []string
	CustomSelectorAttributes []string
	CustomAnchorAttributes   []string
	CustomStyleAttributes    []string
	CustomScriptAttributes   []string
}

// NewOptions returns options with the documented defaults applied.
func NewOptions() Options {
	return Options{
		Alphabet: DefaultAlphabet,
		Sort:     true,
	}
}

// New validates raw options into a usable Config.
func New(opts Options) (*Config, error) {
	if opts.Source == "" {
		return nil, fmt.Errorf("%w: no input path given", ErrInvalid)
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("%w: no output path given", ErrInvalid)
	}
	if opts.StartIndex < 0 {
		return nil, fmt.Errorf("%w: start index must not be negative", ErrInvalid)
	}

	alphabet := encoder.NewAlphabetSet(opts.Alphabet)
	if err := alphabet.Validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Source:           opts.Source,
		Output:           opts.Output,
		Alphabet:         alphabet,
		StartIndex:       opts.StartIndex,
		Step:             ReadingFromFiles,
		Parallel:         opts.Parallel,
		Sort:             opts.Sort,
		CustomAttributes: make(map[string]string),
	}

	custom := []struct {
		names []string
		kind  string
	}{
		{opts.CustomClassAttributes, "class"},
		{opts.CustomIDAttributes, "id"},
		{opts.CustomSelectorAttributes, "selector"},
		{opts.CustomAnchorAttributes, "anchor"},
		{opts.CustomStyleAttributes, "style"},
		{opts.CustomScriptAttributes, "script"},
	}
	for _, group := range custom {
		for _, name := range group.names {
			if name == "" {
				continue
			}
			cfg.CustomAttributes[name] = group.kind
		}
	}

	return cfg, nil
}

// LoadFile reads a JSON config file and overlays its keys onto opts. Every
// key is optional; keys are camelCase versions of the CLI flags. Presence is
// tested explicitly so that e.g. "startIndex": 0 and an absent startIndex
// behave identically to the CLI.
func LoadFile(path string, opts Options) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading config %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return opts, fmt.Errorf("%w: %s is not valid JSON", ErrInvalid, path)
	}

	if v := gjson.GetBytes(data, "input"); v.Exists() {
		opts.Source = v.String()
	}
	if v := gjson.GetBytes(data, "output"); v.Exists() {
		opts.Output = v.String()
	}
	if v := gjson.GetBytes(data, "alphabet"); v.Exists() {
		opts.Alphabet = v.String()
	}
	if v := gjson.GetBytes(data, "startIndex"); v.Exists() {
		opts.StartIndex = int(v.Int())
	}
	if v := gjson.GetBytes(data, "parallel"); v.Exists() {
		opts.Parallel = v.Bool()
	}
	if v := gjson.GetBytes(data, "sort"); v.Exists() {
		opts.Sort = v.Bool()
	}

	lists := []struct {
		key  string
		dest *[]string
	}{
		{"customClassAttributes", &opts.CustomClassAttributes},
		{"customIdAttributes", &opts.CustomIDAttributes},
		{"customSelectorAttributes", &opts.CustomSelectorAttributes},
		{"customAnchorAttributes", &opts.CustomAnchorAttributes},
		{"customStyleAttributes", &opts.CustomStyleAttributes},
		{"customScriptAttributes", &opts.CustomScriptAttributes},
	}
	for _, list := range lists {
		if v := gjson.GetBytes(data, list.key); v.Exists() {
			for _, item := range v.Array() {
				*list.dest = append(*list.dest, item.String())
			}
		}
	}

	return opts, nil
}

// Package pipeline drives the three processing steps over all input files:
// a read pass that tallies selectors, the encoding step, and a write pass
// that emits the rewritten tree.
package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cwbudde/minify-selectors/internal/config"
	"github.com/cwbudde/minify-selectors/internal/parse"
	"github.com/cwbudde/minify-selectors/internal/registry"
	"github.com/cwbudde/minify-selectors/internal/report"
)

// Run executes the full pipeline described by cfg. The registry is private
// to one invocation; nothing survives the call.
func Run(cfg *config.Config, printer *report.Printer) error {
	files, sourceIsDir, err := collectFiles(cfg.Source)
	if err != nil {
		return err
	}

	sel := registry.New()

	cfg.Step = config.ReadingFromFiles
	if cfg.Parallel {
		err = parallelRead(files, sel, cfg, printer)
	} else {
		for _, path := range files {
			if err = readFile(path, sel, cfg, printer); err != nil {
				break
			}
		}
	}
	if err != nil {
		return err
	}

	cfg.Step = config.EncodingSelectors
	if cfg.Sort {
		sel.SortByFrequency()
	} else if cfg.Parallel {
		// Merge order depends on worker completion order; pin the
		// allocation order down so encodings are reproducible.
		sel.SortLexicographic()
	}
	sel.Process(cfg)

	cfg.Step = config.WritingToFiles
	write := func(path string) error {
		return writeFile(path, sel, cfg, sourceIsDir)
	}
	if cfg.Parallel {
		return forEachFile(files, write)
	}
	for _, path := range files {
		if err := write(path); err != nil {
			return err
		}
	}
	return nil
}

// processableExtension maps a path to its pipeline kind, or "" when the
// file is not one of ours.
func processableExtension(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "css":
		return "css"
	case "html", "svg":
		return "html"
	case "js":
		return "js"
	}
	return ""
}

// collectFiles resolves the input path to the list of files to process, in
// lexical walk order. Files with other extensions are skipped.
func collectFiles(source string) ([]string, bool, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, false, fmt.Errorf("reading input %s: %w", source, err)
	}

	if !info.IsDir() {
		if processableExtension(source) == "" {
			return nil, false, nil
		}
		return []string{source}, false, nil
	}

	var files []string
	err = filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("reading input %s: %w", path, err)
		}
		if !entry.IsDir() && processableExtension(path) != "" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, true, err
	}
	return files, true, nil
}

// parallelRead runs the read pass with one worker per file. Each worker
// tallies into a private registry and merges it into sel under exclusive
// access when its file completes.
func parallelRead(files []string, sel *registry.Selectors, cfg *config.Config, printer *report.Printer) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, path := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			local := registry.New()
			err := readFile(path, local, cfg, printer)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			sel.Merge(local)
		}(path)
	}
	wg.Wait()
	return firstErr
}

// forEachFile fans one worker out per file. The first error wins; the
// remaining workers still run to completion.
func forEachFile(files []string, work func(string) error) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, path := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			err := work(path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}(path)
	}
	wg.Wait()
	return firstErr
}

func readFile(path string, sel *registry.Selectors, cfg *config.Config, printer *report.Printer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	printer.File(path)
	transform(path, string(data), sel, cfg)
	return nil
}

func writeFile(path string, sel *registry.Selectors, cfg *config.Config, sourceIsDir bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	out := transform(path, string(data), sel, cfg)

	target := outputPath(path, cfg, sourceIsDir)
	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(target, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

func transform(path, contents string, sel *registry.Selectors, cfg *config.Config) string {
	switch processableExtension(path) {
	case "css":
		return parse.CSS(contents, sel, cfg)
	case "html":
		return parse.HTML(contents, sel, cfg)
	case "js":
		return parse.JS(contents, sel, cfg)
	}
	return contents
}

// outputPath mirrors the input tree under the output directory; a single
// file input lands at output/<basename>.
func outputPath(path string, cfg *config.Config, sourceIsDir bool) string {
	if !sourceIsDir {
		return filepath.Join(cfg.Output, filepath.Base(path))
	}
	rel, err := filepath.Rel(cfg.Source, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return filepath.Join(cfg.Output, rel)
}

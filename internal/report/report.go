// Package report prints the pipeline's user-visible output: one line per
// processed file, a final timing summary, and error diagnostics.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Printer writes progress lines. Workers share one Printer; lines are
// serialised so parallel output never interleaves.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// New returns a Printer writing to stdout and stderr.
func New() *Printer {
	return &Printer{out: os.Stdout, err: os.Stderr}
}

// NewWriter returns a Printer writing to the given writers.
func NewWriter(out, err io.Writer) *Printer {
	return &Printer{out: out, err: err}
}

// File announces that a file is being processed.
func (p *Printer) File(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "Processing file: %s\n", path)
}

// Finished prints the total wall time.
func (p *Printer) Finished(elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "minify-selectors finished in: %.2fs\n", elapsed.Seconds())
}

// Error prints the single diagnostic line for a failed run.
func (p *Printer) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.err, "minify-selectors has encountered an error: %v\n", err)
}

// Package registry stores every selector discovered during the read pass,
// with per-context usage counts, and assigns encoded replacements once all
// inputs have been tallied.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cwbudde/minify-selectors/internal/config"
	"github.com/cwbudde/minify-selectors/internal/encoder"
)

// Kind distinguishes class selectors from id selectors. It is inferred from
// the key's leading sigil and never changes afterwards.
type Kind uint8

const (
	KindClass Kind = iota
	KindID
)

// Usage names the syntactic context a selector occurrence was found in.
// UsageNone records a selector's existence without counting an occurrence,
// for sites that rename but do not represent a real use.
type Usage uint8

const (
	UsageNone Usage = iota
	UsageMarkupClass
	UsageMarkupID
	UsageSelectorString
	UsageAnchor
	UsageStyle
	UsageScript
	UsagePrefix
)

// Selector is the per-key record. Replacement stays empty until Process
// assigns an encoding; markup-only classes legitimately keep it empty.
type Selector struct {
	Kind        Kind
	Replacement string
	Counter     int

	MarkupClassCounter    int
	MarkupIDCounter       int
	SelectorStringCounter int
	AnchorCounter         int
	StyleCounter          int
	ScriptCounter         int
	PrefixCounter         int
}

func newSelector(key string) *Selector {
	switch {
	case strings.HasPrefix(key, "."):
		return &Selector{Kind: KindClass}
	case strings.HasPrefix(key, "#"):
		return &Selector{Kind: KindID}
	}
	panic(fmt.Sprintf("registry: selector %q has no kind sigil", key))
}

func (s *Selector) count(usage Usage) {
	if usage == UsageNone {
		return
	}
	s.Counter++
	switch usage {
	case UsageMarkupClass:
		s.MarkupClassCounter++
	case UsageMarkupID:
		s.MarkupIDCounter++
	case UsageSelectorString:
		s.SelectorStringCounter++
	case UsageAnchor:
		s.AnchorCounter++
	case UsageStyle:
		s.StyleCounter++
	case UsageScript:
		s.ScriptCounter++
	case UsagePrefix:
		s.PrefixCounter++
	}
}

func (s *Selector) sum(incoming *Selector) {
	s.Counter += incoming.Counter
	s.MarkupClassCounter += incoming.MarkupClassCounter
	s.MarkupIDCounter += incoming.MarkupIDCounter
	s.SelectorStringCounter += incoming.SelectorStringCounter
	s.AnchorCounter += incoming.AnchorCounter
	s.StyleCounter += incoming.StyleCounter
	s.ScriptCounter += incoming.ScriptCounter
	s.PrefixCounter += incoming.PrefixCounter
}

// Selectors is an insertion-ordered map from selector key (".name" or
// "#name", unescaped) to its record, plus the next ordinal per kind.
type Selectors struct {
	records map[string]*Selector
	order   []string

	ClassCounter int
	IDCounter    int
}

// New returns an empty registry.
func New() *Selectors {
	return &Selectors{records: make(map[string]*Selector)}
}

// Add creates the record for key if it does not exist yet and counts the
// given usage. Keys must carry their sigil; escape sequences are expected to
// have been normalised by the extractor.
func (s *Selectors) Add(key string, usage Usage) {
	record, ok := s.records[key]
	if !ok {
		record = newSelector(key)
		s.records[key] = record
		s.order = append(s.order, key)
	}
	record.count(usage)
}

// Merge folds a per-file registry into s. Counters for shared keys are
// summed; new keys are adopted wholesale in the incoming order.
func (s *Selectors) Merge(incoming *Selectors) {
	for _, key := range incoming.order {
		if record, ok := s.records[key]; ok {
			record.sum(incoming.records[key])
		} else {
			adopted := *incoming.records[key]
			s.records[key] = &adopted
			s.order = append(s.order, key)
		}
	}
}

// Get returns the record for key, or nil.
func (s *Selectors) Get(key string) *Selector {
	return s.records[key]
}

// Lookup returns the assigned replacement for key.
func (s *Selectors) Lookup(key string) (string, bool) {
	record, ok := s.records[key]
	if !ok || record.Replacement == "" {
		return "", false
	}
	return record.Replacement, true
}

// Len returns the number of registered selectors.
func (s *Selectors) Len() int {
	return len(s.records)
}

// Keys returns the selector keys in their current order. The slice is the
// registry's own ordering; callers must not mutate it.
func (s *Selectors) Keys() []string {
	return s.order
}

// SortByFrequency reorders entries by descending total counter. Ties break
// lexicographically on the key so encodings are reproducible across runs.
func (s *Selectors) SortByFrequency() {
	sort.SliceStable(s.order, func(i, j int) bool {
		a, b := s.records[s.order[i]], s.records[s.order[j]]
		if a.Counter != b.Counter {
			return a.Counter > b.Counter
		}
		return s.order[i] < s.order[j]
	})
}

// SortLexicographic reorders entries by key. Used to pin down the allocation
// order when frequency sorting is disabled but the read pass ran in
// parallel, where insertion order depends on worker completion order.
func (s *Selectors) SortLexicographic() {
	sort.Strings(s.order)
}

// Process assigns replacements to every entry in the current order.
//
// A class that only ever appears as a markup class attribute token is
// skipped: encoding it cannot shrink anything, because no stylesheet or
// script refers to it. A skipped class keeps its original name, so that
// name must not collide with any replacement issued to another class.
// Whenever a newly issued replacement collides with an already skipped
// name, the skipped entry is demoted and encoded on a later pass; the loop
// runs until a full pass issues no demotion. IDs always encode.
func (s *Selectors) Process(cfg *config.Config) {
	if s.ClassCounter < cfg.StartIndex {
		s.ClassCounter = cfg.StartIndex
	}
	if s.IDCounter < cfg.StartIndex {
		s.IDCounter = cfg.StartIndex
	}

	skipped := make(map[string]bool)
	encoded := make(map[string]bool)

	for recheck := true; recheck; {
		recheck = false

		for _, key := range s.order {
			record := s.records[key]
			if record.Replacement != "" {
				continue
			}

			if record.Kind == KindClass && record.MarkupClassCounter == record.Counter {
				name := strings.TrimPrefix(key, ".")
				if !encoded[name] {
					skipped[name] = true
					continue
				}
				// The original name now collides with an issued
				// replacement; the skip cannot stand.
				delete(skipped, name)
			}

			switch record.Kind {
			case KindClass:
				record.Replacement = encoder.ToRadix(s.ClassCounter, cfg.Alphabet)
				s.ClassCounter++
				encoded[record.Replacement] = true
				if skipped[record.Replacement] {
					recheck = true
				}
			case KindID:
				record.Replacement = encoder.ToRadix(s.IDCounter, cfg.Alphabet)
				s.IDCounter++
			}
		}
	}
}

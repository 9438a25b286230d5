package registry

import (
	"testing"

	"github.com/cwbudde/minify-selectors/internal/config"
)

func testConfig(t *testing.T, mutate func(*config.Options)) *config.Config {
	t.Helper()
	opts := config.NewOptions()
	opts.Source = "in"
	opts.Output = "out"
	opts.Sort = false
	if mutate != nil {
		mutate(&opts)
	}
	cfg, err := config.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestAddCountsUsage(t *testing.T) {
	s := New()
	s.Add(".foo", UsageSelectorString)
	s.Add(".foo", UsageMarkupClass)
	s.Add(".foo", UsageMarkupClass)
	s.Add(".foo", UsageNone)
	s.Add("#bar", UsageAnchor)

	foo := s.Get(".foo")
	if foo == nil || foo.Kind != KindClass {
		t.Fatalf("record for .foo = %+v", foo)
	}
	if foo.Counter != 3 {
		t.Errorf("counter = %d, want 3 (UsageNone must not count)", foo.Counter)
	}
	if foo.SelectorStringCounter != 1 || foo.MarkupClassCounter != 2 {
		t.Errorf("usage breakdown = %+v", foo)
	}

	bar := s.Get("#bar")
	if bar == nil || bar.Kind != KindID || bar.AnchorCounter != 1 {
		t.Fatalf("record for #bar = %+v", bar)
	}
}

func TestCounterEqualsUsageSum(t *testing.T) {
	s := New()
	usages := []Usage{
		UsageMarkupClass, UsageMarkupID, UsageSelectorString,
		UsageAnchor, UsageStyle, UsageScript, UsagePrefix, UsageNone,
	}
	for _, u := range usages {
		s.Add(".foo", u)
		s.Add(".foo", u)
	}

	foo := s.Get(".foo")
	sum := foo.MarkupClassCounter + foo.MarkupIDCounter + foo.SelectorStringCounter +
		foo.AnchorCounter + foo.StyleCounter + foo.ScriptCounter + foo.PrefixCounter
	if foo.Counter != sum {
		t.Errorf("counter = %d, usage sum = %d", foo.Counter, sum)
	}
}

func TestAddPanicsWithoutSigil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for key without sigil")
		}
	}()
	New().Add("foo", UsageMarkupClass)
}

func TestMergeCommutative(t *testing.T) {
	build := func(adds ...func(*Selectors)) *Selectors {
		s := New()
		for _, add := range adds {
			add(s)
		}
		return s
	}
	a := build(func(s *Selectors) {
		s.Add(".shared", UsageSelectorString)
		s.Add(".only-a", UsageMarkupClass)
	})
	b := build(func(s *Selectors) {
		s.Add(".shared", UsageScript)
		s.Add("#only-b", UsageAnchor)
	})

	ab := New()
	ab.Merge(a)
	ab.Merge(b)
	ba := New()
	ba.Merge(b)
	ba.Merge(a)

	for _, key := range []string{".shared", ".only-a", "#only-b"} {
		x, y := ab.Get(key), ba.Get(key)
		if x == nil || y == nil || x.Counter != y.Counter {
			t.Errorf("%s: merge order changed counters: %+v vs %+v", key, x, y)
		}
	}
	if shared := ab.Get(".shared"); shared.Counter != 2 {
		t.Errorf("shared counter = %d, want 2", shared.Counter)
	}
}

func TestProcessIndependentCounters(t *testing.T) {
	s := New()
	s.Add(".foo", UsageSelectorString)
	s.Add(".bar", UsageSelectorString)
	s.Add("#baz", UsageSelectorString)
	s.Process(testConfig(t, nil))

	if got := s.Get(".foo").Replacement; got != "a" {
		t.Errorf(".foo = %q, want a", got)
	}
	if got := s.Get(".bar").Replacement; got != "b" {
		t.Errorf(".bar = %q, want b", got)
	}
	if got := s.Get("#baz").Replacement; got != "a" {
		t.Errorf("#baz = %q, want a (ids allocate independently)", got)
	}
}

func TestProcessStartIndex(t *testing.T) {
	s := New()
	s.Add(".foo", UsageSelectorString)
	s.Process(testConfig(t, func(o *config.Options) { o.StartIndex = 2 }))

	if got := s.Get(".foo").Replacement; got != "c" {
		t.Errorf(".foo = %q, want c", got)
	}
}

func TestProcessSkipsMarkupOnlyClasses(t *testing.T) {
	s := New()
	s.Add(".only-in-markup", UsageMarkupClass)
	s.Add(".styled", UsageSelectorString)
	s.Add(".styled", UsageMarkupClass)
	s.Process(testConfig(t, nil))

	if got := s.Get(".only-in-markup").Replacement; got != "" {
		t.Errorf("markup-only class was encoded to %q", got)
	}
	if got := s.Get(".styled").Replacement; got != "a" {
		t.Errorf(".styled = %q, want a", got)
	}
	if _, ok := s.Lookup(".only-in-markup"); ok {
		t.Error("Lookup must miss for skipped classes")
	}
}

func TestProcessMarkupOnlyIDStillEncodes(t *testing.T) {
	s := New()
	s.Add("#target", UsageMarkupID)
	s.Process(testConfig(t, nil))

	if got := s.Get("#target").Replacement; got != "a" {
		t.Errorf("#target = %q, want a", got)
	}
}

// A markup-only class named like an issued replacement cannot keep its
// original name: it is demoted and encoded on a later pass.
func TestProcessSkipCollisionDemotes(t *testing.T) {
	s := New()
	s.Add(".a", UsageMarkupClass)
	s.Add(".foo", UsageSelectorString)
	s.Process(testConfig(t, nil))

	if got := s.Get(".foo").Replacement; got != "a" {
		t.Errorf(".foo = %q, want a", got)
	}
	if got := s.Get(".a").Replacement; got != "b" {
		t.Errorf(".a = %q, want b (demoted skip must encode)", got)
	}
}

// Demotion can cascade: encoding one demoted entry may collide with another
// skipped name, which must then be demoted as well.
func TestProcessSkipCollisionCascades(t *testing.T) {
	s := New()
	s.Add(".a", UsageMarkupClass)
	s.Add(".b", UsageMarkupClass)
	s.Add(".foo", UsageSelectorString)
	s.Process(testConfig(t, nil))

	foo := s.Get(".foo").Replacement
	a := s.Get(".a").Replacement
	b := s.Get(".b").Replacement
	if foo != "a" {
		t.Errorf(".foo = %q, want a", foo)
	}
	if a == "" || b == "" {
		t.Fatalf("demoted entries left unencoded: .a=%q .b=%q", a, b)
	}
	if a == b || a == foo || b == foo {
		t.Errorf("duplicate class replacements: .foo=%q .a=%q .b=%q", foo, a, b)
	}
}

func TestProcessNoDuplicateClassReplacements(t *testing.T) {
	s := New()
	s.Add(".kept", UsageMarkupClass)
	for _, key := range []string{".one", ".two", ".three", ".four"} {
		s.Add(key, UsageSelectorString)
	}
	s.Process(testConfig(t, nil))

	seen := make(map[string]string)
	for _, key := range s.Keys() {
		record := s.Get(key)
		if record.Kind != KindClass || record.Replacement == "" {
			continue
		}
		if prev, ok := seen[record.Replacement]; ok {
			t.Errorf("%s and %s share replacement %q", prev, key, record.Replacement)
		}
		seen[record.Replacement] = key
		if record.Replacement == "kept" {
			t.Errorf("%s was issued a skipped class's original name", key)
		}
	}
}

func TestSortByFrequency(t *testing.T) {
	s := New()
	s.Add(".rare", UsageSelectorString)
	for i := 0; i < 3; i++ {
		s.Add(".hot", UsageSelectorString)
	}
	s.Add(".tied-b", UsageSelectorString)
	s.Add(".tied-a", UsageSelectorString)
	s.SortByFrequency()

	keys := s.Keys()
	if keys[0] != ".hot" {
		t.Errorf("order = %v, want .hot first", keys)
	}
	// Frequency ties resolve lexicographically for reproducibility.
	want := []string{".hot", ".rare", ".tied-a", ".tied-b"}
	for i, key := range want {
		if keys[i] != key {
			t.Fatalf("order = %v, want %v", keys, want)
		}
	}
}

func TestSortThenProcessGivesShortestToHottest(t *testing.T) {
	s := New()
	s.Add(".rare", UsageSelectorString)
	for i := 0; i < 5; i++ {
		s.Add(".hot", UsageSelectorString)
	}
	s.SortByFrequency()
	s.Process(testConfig(t, nil))

	if got := s.Get(".hot").Replacement; got != "a" {
		t.Errorf(".hot = %q, want a", got)
	}
	if got := s.Get(".rare").Replacement; got != "b" {
		t.Errorf(".rare = %q, want b", got)
	}
}

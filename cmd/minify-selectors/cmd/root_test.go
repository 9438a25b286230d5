package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// One end-to-end pass through the real command: flags, pipeline, output
// tree. Flag state is process-global, so everything runs in one execution.
func TestRootCommand(t *testing.T) {
	source := t.TempDir()
	output := t.TempDir()

	css := filepath.Join(source, "styles.css")
	if err := os.WriteFile(css, []byte(".foo { } .foo:hover { } .bar { }"), 0o644); err != nil {
		t.Fatal(err)
	}
	html := filepath.Join(source, "page.html")
	if err := os.WriteFile(html, []byte(`<div class="foo bar"></div>`), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"-i", source, "-o", output, "--disable-sort"})
	if err := Execute(); err != nil {
		t.Fatalf("command failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(output, "styles.css"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != ".a { } .a:hover { } .b { }" {
		t.Errorf("styles.css = %q", got)
	}

	data, err = os.ReadFile(filepath.Join(output, "page.html"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `<div class="a b"></div>` {
		t.Errorf("page.html = %q", got)
	}
}

func TestOptionalBoolFlags(t *testing.T) {
	for _, name := range []string{"parallel", "sort", "disable-sort"} {
		flag := rootCmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("flag %s not registered", name)
		}
		if flag.NoOptDefVal != "true" {
			t.Errorf("--%s must be usable without a value", name)
		}
	}
}

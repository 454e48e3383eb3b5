package checker_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/funvibe/pytype/internal/config"
	"github.com/funvibe/pytype/internal/loader"
	"github.com/funvibe/pytype/internal/session"
)

// Each testdata/*.txtar archive bundles a "module.json" AST-construction
// fixture, a human-readable comment describing the Python source it
// stands for, and a "diagnostics" file listing every diagnostic the run
// must produce, one per line as "line:col rule". This is the same
// archive-of-named-files shape golang.org/x/tools itself uses for its
// own golden tests.
func TestGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txtar")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no golden fixtures found")
	}
	for _, path := range files {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			runGoldenFixture(t, path)
		})
	}
}

func runGoldenFixture(t *testing.T, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	archive := txtar.Parse(data)

	moduleJSON := findFile(archive, "module.json")
	if moduleJSON == nil {
		t.Fatalf("%s: missing module.json", path)
	}
	wantFile := findFile(archive, "diagnostics")
	if wantFile == nil {
		t.Fatalf("%s: missing diagnostics", path)
	}

	module, err := loader.LoadBytes(path, moduleJSON)
	if err != nil {
		t.Fatalf("%s: %v", path, err)
	}

	sess := session.New(path, module, config.Default())
	diags, _, converged := sess.Run()
	if !converged {
		t.Fatalf("%s: analysis did not converge", path)
	}

	var got []string
	for _, d := range diags {
		got = append(got, fmt.Sprintf("%d:%d %s", d.Range.Start.Line, d.Range.Start.Column, d.Rule))
	}
	want := splitNonEmptyLines(string(wantFile))

	if !equalLines(got, want) {
		t.Fatalf("%s: diagnostics mismatch\n got:  %v\n want: %v", path, got, want)
	}
}

func findFile(archive *txtar.Archive, name string) []byte {
	for _, f := range archive.Files {
		if f.Name == name {
			return f.Data
		}
	}
	return nil
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

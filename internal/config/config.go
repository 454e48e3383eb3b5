// Package config holds the small, framework-free settings structs that
// wire a checker run together, the same shape as the teacher's own
// internal/config/constants.go: package-level types and defaults, no
// reflection-driven options framework.
//
// Grounded on the teacher's config package for the "no framework" idiom,
// and on its go.mod's gopkg.in/yaml.v3 dependency for the on-disk format
// of DiagnosticSettings (internal/diagnostics.LoadSettings does the
// actual unmarshaling; this package is the CLI/session-facing front
// door that decides *which* file to load and what else a run needs).
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/funvibe/pytype/internal/diagnostics"
)

// DefaultSettingsFile is the conventional location a project's
// diagnostic-severity overrides live at, analogous to a pyright
// pyrightconfig.json but scoped to exactly the rules spec.md §6 names.
const DefaultSettingsFile = "pytype.yaml"

// StubFileSuffix marks an annotation-only companion file; spec.md's
// GLOSSARY "Stub file" entry — many checks relax inside one.
const StubFileSuffix = ".pyi"

// GeneratedSuffix marks the generated-protobuf-code exemption spec.md
// §4.5.1 calls out by name for the unused-import sweep.
const GeneratedSuffix = "_pb2.py"

// Config is everything one checker run needs beyond the parsed/bound
// module itself: which diagnostics fire at what severity, and how to
// classify the file being analyzed.
type Config struct {
	Diagnostics *diagnostics.Settings
	// IncludePatterns/ExcludePatterns are glob patterns (matched against
	// a path relative to the project root) the CLI's directory walk
	// consults before handing a file to the fixpoint driver.
	IncludePatterns []string
	ExcludePatterns []string
}

// Default returns a Config with spec.md's default diagnostic severities
// and no include/exclude filtering.
func Default() *Config {
	return &Config{Diagnostics: diagnostics.DefaultSettings()}
}

// Load reads diagnostic severities from path (falling back to defaults
// for any rule the file doesn't mention) and returns a ready-to-use
// Config. A missing file is not an error: most projects never
// customize severities, so Load degrades to Default() rather than
// forcing every caller to special-case os.IsNotExist.
func Load(path string) (*Config, error) {
	settings, err := diagnostics.LoadSettings(path)
	if err != nil {
		if strings.Contains(err.Error(), "no such file") {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	return &Config{Diagnostics: settings}, nil
}

// IsStubFile reports whether path names a stub file (spec.md GLOSSARY),
// by extension alone — locating a stub file on disk for a given source
// module is the binder/import-resolution layer's job (out of scope,
// spec.md §1), this just classifies a path the caller already resolved.
func IsStubFile(path string) bool {
	return strings.HasSuffix(path, StubFileSuffix)
}

// IsGeneratedModule reports whether path names an excluded generated
// file per spec.md §4.5.1's `_pb2.py` exemption.
func IsGeneratedModule(path string) bool {
	return strings.HasSuffix(path, GeneratedSuffix)
}

// MatchesAny reports whether name matches any of patterns (simple glob
// syntax via path/filepath, the same matcher the teacher's own
// directory-walk helpers use for extension filtering).
func MatchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// ShouldAnalyze applies cfg's include/exclude patterns to relPath: an
// exclude match always wins; an empty include list means "everything
// not excluded".
func (cfg *Config) ShouldAnalyze(relPath string) bool {
	if MatchesAny(cfg.ExcludePatterns, relPath) {
		return false
	}
	if len(cfg.IncludePatterns) == 0 {
		return true
	}
	return MatchesAny(cfg.IncludePatterns, relPath)
}

// Command pytypecheck runs the checker over a directory tree of modules
// and prints diagnostics to stdout.
//
// Grounded on the teacher's cmd/funxy/main.go: a small main package that
// parses flags by hand (stdlib flag, no CLI framework), wires up its
// config once, and drives the rest of the program from there.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/cache"
	"github.com/funvibe/pytype/internal/config"
	"github.com/funvibe/pytype/internal/diagnostics"
	"github.com/funvibe/pytype/internal/loader"
	"github.com/funvibe/pytype/internal/session"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "pytypecheck:", err)
		os.Exit(2)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("pytypecheck", flag.ContinueOnError)
	var (
		dir         = fs.String("dir", ".", "directory tree to analyze, recursively")
		configPath  = fs.String("config", "", "path to a pytype.yaml severities file (optional)")
		incremental = fs.Bool("incremental", false, "skip re-analyzing files whose content hash is unchanged since the last run")
		cachePath   = fs.String("cache", ".pytype-cache.db", "incremental cache database path, used only with -incremental")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	modules, err := loader.LoadDir(*dir, cfg)
	if err != nil {
		return err
	}

	var resultCache *cache.Cache
	if *incremental {
		resultCache, err = cache.Open(*cachePath)
		if err != nil {
			return err
		}
		defer resultCache.Close()
	}

	sawError := false
	for _, module := range modules {
		sink := diagnostics.NewConsoleSink(module.Path, cfg.Diagnostics, os.Stdout)
		diags, err := analyzeOne(module, cfg, resultCache, sink)
		if err != nil {
			return err
		}
		for _, d := range diags {
			if d.Severity == diagnostics.SeverityError {
				sawError = true
			}
		}
	}
	if sawError {
		os.Exit(1)
	}
	return nil
}

// analyzeOne runs (or replays, in -incremental mode) one module's
// analysis, then reports every diagnostic through sink once the run has
// finished (or the cached entry has been read).
func analyzeOne(module *ast.Module, cfg *config.Config, resultCache *cache.Cache, sink *diagnostics.ConsoleSink) ([]diagnostics.Diagnostic, error) {
	source, err := os.ReadFile(module.Path)
	if err != nil {
		return nil, err
	}
	hash := cache.Digest(source)

	if resultCache != nil {
		if entry, ok, err := resultCache.Lookup(module.Path, hash); err != nil {
			return nil, err
		} else if ok {
			for _, d := range entry.Diagnostics {
				sink.Report(d)
			}
			return entry.Diagnostics, nil
		}
	}

	sess := session.New(module.Path, module, cfg)
	diags, passes, converged := sess.Run()
	for _, d := range diags {
		sink.Report(d)
	}
	if resultCache != nil {
		if err := resultCache.Store(module.Path, hash, passes, converged, diags); err != nil {
			return nil, err
		}
	}
	return diags, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

package config

import (
	"testing"

	"github.com/funvibe/pytype/internal/diagnostics"
)

func TestIsStubFile(t *testing.T) {
	if !IsStubFile("pkg/models.pyi") {
		t.Errorf("expected .pyi suffix to be recognized as a stub file")
	}
	if IsStubFile("pkg/models.py") {
		t.Errorf("a plain .py file should not be treated as a stub")
	}
}

func TestIsGeneratedModule(t *testing.T) {
	if !IsGeneratedModule("proto/service_pb2.py") {
		t.Errorf("expected _pb2.py suffix to be recognized as generated")
	}
	if IsGeneratedModule("proto/service.py") {
		t.Errorf("a hand-written module should not be treated as generated")
	}
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load("/nonexistent/pytype.yaml")
	if err != nil {
		t.Fatalf("Load should tolerate a missing settings file, got error: %v", err)
	}
	if cfg.Diagnostics.Severity(diagnostics.RuleGeneralTypeIssues) != diagnostics.SeverityError {
		t.Fatalf("expected fallback to DefaultSettings' severities")
	}
}

func TestShouldAnalyzeExcludeWinsOverInclude(t *testing.T) {
	cfg := &Config{IncludePatterns: []string{"*.py"}, ExcludePatterns: []string{"*_test.py"}}
	if cfg.ShouldAnalyze("mod_test.py") {
		t.Errorf("an excluded path should never be analyzed even if it also matches include")
	}
	if !cfg.ShouldAnalyze("mod.py") {
		t.Errorf("a path matching include and not exclude should be analyzed")
	}
}

func TestShouldAnalyzeEmptyIncludeMeansEverything(t *testing.T) {
	cfg := &Config{ExcludePatterns: []string{"*.pyi"}}
	if !cfg.ShouldAnalyze("anything.py") {
		t.Errorf("an empty include list should mean 'everything not excluded'")
	}
	if cfg.ShouldAnalyze("stub.pyi") {
		t.Errorf("excluded pattern should still apply with an empty include list")
	}
}

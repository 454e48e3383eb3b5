package diagnostics

import (
	"testing"

	"github.com/funvibe/pytype/internal/token"
)

func rangeAt(line, col int) token.Range {
	pos := token.Position{Line: line, Column: col}
	return token.Range{Start: pos, End: pos}
}

func TestCollectingSinkDedupesSameFinding(t *testing.T) {
	sink := NewCollectingSink("m.py", DefaultSettings())
	d := Diagnostic{Rule: RuleUnusedImport, Message: "import \"os\" is not accessed", Range: rangeAt(3, 1)}
	sink.Report(d)
	sink.Report(d) // same path/position/rule, as a second fixpoint pass would re-report
	if got := len(sink.Diagnostics()); got != 1 {
		t.Fatalf("expected dedup to collapse to 1 diagnostic, got %d", got)
	}
}

func TestCollectingSinkDistinguishesByPosition(t *testing.T) {
	sink := NewCollectingSink("m.py", DefaultSettings())
	sink.Report(Diagnostic{Rule: RuleUnusedImport, Range: rangeAt(1, 1)})
	sink.Report(Diagnostic{Rule: RuleUnusedImport, Range: rangeAt(2, 1)})
	if got := len(sink.Diagnostics()); got != 2 {
		t.Fatalf("expected 2 distinct diagnostics, got %d", got)
	}
}

func TestCollectingSinkDropsSeverityNoneRule(t *testing.T) {
	settings := DefaultSettings()
	settings.Severities[RuleUnusedImport] = SeverityNone
	sink := NewCollectingSink("m.py", settings)
	sink.Report(Diagnostic{Rule: RuleUnusedImport, Range: rangeAt(1, 1)})
	if got := len(sink.Diagnostics()); got != 0 {
		t.Fatalf("expected a SeverityNone rule to be dropped entirely, got %d diagnostics", got)
	}
}

func TestDiagnosticsSortDeterministic(t *testing.T) {
	ds := []Diagnostic{
		{Path: "b.py", Range: rangeAt(1, 1), Rule: RuleUnusedImport},
		{Path: "a.py", Range: rangeAt(5, 1), Rule: RuleUnusedImport},
		{Path: "a.py", Range: rangeAt(1, 2), Rule: RuleUnusedImport},
		{Path: "a.py", Range: rangeAt(1, 1), Rule: RuleUnusedClass},
		{Path: "a.py", Range: rangeAt(1, 1), Rule: RuleUnusedImport},
	}
	Sort(ds)
	want := []string{"a.py:1:1:reportUnusedClass", "a.py:1:1:reportUnusedImport", "a.py:1:2:reportUnusedImport", "a.py:5:1:reportUnusedImport", "b.py:1:1:reportUnusedImport"}
	for i, d := range ds {
		got := d.dedupeKey()
		if got != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got, want[i])
		}
	}
}

func TestSettingsSeverityDefaultsUnrecognizedRuleToWarning(t *testing.T) {
	settings := DefaultSettings()
	if got := settings.Severity(Rule("reportSomethingNew")); got != SeverityWarning {
		t.Errorf("unrecognized rule should default to warning, got %s", got)
	}
}

func TestSettingsSeverityNilFallsBackToDefaults(t *testing.T) {
	var settings *Settings
	if got := settings.Severity(RuleGeneralTypeIssues); got != SeverityError {
		t.Errorf("nil settings should fall back to DefaultSettings, got %s", got)
	}
}

func TestParseSeverityRejectsUnknownValue(t *testing.T) {
	if _, err := parseSeverity("critical"); err == nil {
		t.Errorf("expected an error for an unrecognized severity string")
	}
}

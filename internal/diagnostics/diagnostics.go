// Package diagnostics implements the diagnostic sink (spec.md §4.7 /
// component C7): the typed, severity-tagged, deduplicated error stream
// every other component reports into, plus the per-rule severity
// configuration that decides whether a given report surfaces at all.
//
// Grounded on mcgru-funxy's internal/diagnostics/diagnostics.go — that
// file is absent from the chosen teacher snapshot (funvibe-funxy) even
// though funvibe-funxy's analyzer imports it; both repos share the
// module path github.com/funvibe/funxy and are plainly two snapshots of
// the same project, so mcgru-funxy's copy is used as grounding for the
// package funvibe-funxy itself depends on: an ErrorCode-keyed,
// position-carrying diagnostic struct collected into a sortable slice.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/funvibe/pytype/internal/token"
)

// Severity is how seriously a diagnostic rule's findings should be
// treated; a rule configured at SeverityNone never reaches a Sink at
// all (spec.md §6's "turn a check off entirely" requirement).
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInformation
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	default:
		return "none"
	}
}

// Rule names one of the configurable reportXxx checks spec.md §6
// enumerates. Keeping it a plain string (rather than an enum) matches
// the teacher's own ErrorCode, which is just a named string constant.
type Rule string

const (
	RuleGeneralTypeIssues        Rule = "reportGeneralTypeIssues"
	RuleUnusedImport             Rule = "reportUnusedImport"
	RuleUnusedVariable           Rule = "reportUnusedVariable"
	RuleUnusedClass              Rule = "reportUnusedClass"
	RuleUnusedFunction           Rule = "reportUnusedFunction"
	RuleSelfClsParameterName     Rule = "reportSelfClsParameterName"
	RuleIncompatibleMethodOverride Rule = "reportIncompatibleMethodOverride"
	RulePrivateUsage             Rule = "reportPrivateUsage"
	RuleUnnecessaryIsInstance    Rule = "reportUnnecessaryIsInstance"
	RuleReturnType               Rule = "reportReturnType"
	RuleCallInDefaultInitializer Rule = "reportCallInDefaultInitializer"
	RuleUnknownParameterType     Rule = "reportUnknownParameterType"
	RuleUnknownLambdaType        Rule = "reportUnknownLambdaType"
)

// Phase records which stage of the checker's analysis produced a
// diagnostic — purely informational (sorting/grouping for the console
// sink), mirroring the teacher's own Phase field on its diagnostics.
type Phase int

const (
	PhaseDeclaration Phase = iota
	PhaseBody
	PhaseOverride
	PhaseSweep
)

func (p Phase) String() string {
	switch p {
	case PhaseDeclaration:
		return "declaration"
	case PhaseOverride:
		return "override"
	case PhaseSweep:
		return "sweep"
	default:
		return "body"
	}
}

// Diagnostic is one reported finding.
type Diagnostic struct {
	Rule     Rule
	Severity Severity
	Phase    Phase
	Message  string
	Path     string
	Range    token.Range
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%s: %s: %s (%s)", d.Path, d.Range.Start.String(), d.Severity, d.Message, d.Rule)
}

// dedupeKey identifies a diagnostic for deduplication purposes: same
// file, same position, same rule is the same finding even if produced
// twice across fixpoint passes (spec.md §8's "idempotent after
// convergence" property depends on this).
func (d Diagnostic) dedupeKey() string {
	return fmt.Sprintf("%s:%d:%d:%s", d.Path, d.Range.Start.Line, d.Range.Start.Column, d.Rule)
}

// Sink is the narrow interface the checker, evaluator, and fixpoint
// driver all report through (spec.md §6 external interface): typed,
// severity-tagged findings via Report, and the separate dead-code-hint
// channel spec.md §6 names explicitly (`addUnusedCodeWithTextRange`) via
// AddUnusedCode — a lighter-weight signal with no rule or severity of
// its own, meant for editor dimming rather than a reportXxx finding.
type Sink interface {
	Report(d Diagnostic)
	AddUnusedCode(message string, r token.Range)
}

// UnusedCodeHint is one marker reported through AddUnusedCode: a span of
// source the checker considers dead, independent of whichever reportXxx
// rule (if any) also fired for the same symbol.
type UnusedCodeHint struct {
	Message string
	Path    string
	Range   token.Range
}

// Sort orders diagnostics deterministically: by path, then position,
// then rule name, matching spec.md §5's determinism requirement for
// final output.
func Sort(ds []Diagnostic) {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Range.Start.Line != b.Range.Start.Line {
			return a.Range.Start.Line < b.Range.Start.Line
		}
		if a.Range.Start.Column != b.Range.Start.Column {
			return a.Range.Start.Column < b.Range.Start.Column
		}
		return a.Rule < b.Rule
	})
}

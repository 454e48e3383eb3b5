// Package fixpoint implements the iteration-to-fixpoint driver (spec.md
// §2, component C6): it repeatedly invokes the walker's Analyze until a
// pass reports no change, so that forward references and mutual
// recursion between declarations converge across multiple passes
// instead of requiring the binder to pre-order them.
//
// Grounded on the teacher's internal/analyzer.Analyzer.Analyze, which
// drives a *Program through a fixed sequence of named passes
// (AnalyzeNaming/Headers/Instances/Bodies) and stops the sequence early
// once a pass reports errors; this driver keeps that same
// "coordinator holds the loop, passes are plain method calls" shape but
// loops a single pass to a convergence condition instead of running a
// fixed sequence once.
package fixpoint

import (
	"fmt"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/checker"
	"github.com/funvibe/pytype/internal/evaluator"
)

// Bound caps the number of passes a single Run will attempt before
// giving up, implementing spec.md §8's "Fixpoint termination" property
// as a hard backstop against a walker/evaluator bug that defeats the
// monotone-cache discipline and would otherwise loop forever. The spec
// bounds convergence by "expression nodes times lattice height"; since
// neither driver nor caller tracks node counts, this ships a generous
// fixed ceiling instead of computing the tighter bound per module.
const Bound = 256

// Result reports how a Run concluded.
type Result struct {
	Passes    int
	Converged bool
}

// Run repeatedly calls chk.Analyze(module), re-arming both the checker's
// and the evaluator's per-pass state via BeginPass before each attempt,
// until a pass reports no change or Bound passes have run.
func Run(chk *checker.Checker, eval *evaluator.Evaluator, module *ast.Module) Result {
	for pass := 1; pass <= Bound; pass++ {
		eval.BeginPass(pass)
		chk.BeginPass()
		if changed := chk.Analyze(module); !changed {
			return Result{Passes: pass, Converged: true}
		}
	}
	return Result{Passes: Bound, Converged: false}
}

// RunOrPanic is Run, but treats a failure to converge within Bound
// passes as the internal assertion failure spec.md §7 distinguishes
// from a user-facing diagnostic: it indicates a monotone-cache
// invariant violation elsewhere in the evaluator, not a malformed input
// module, so it is not reported through the diagnostic sink.
func RunOrPanic(chk *checker.Checker, eval *evaluator.Evaluator, module *ast.Module) Result {
	result := Run(chk, eval, module)
	if !result.Converged {
		panic(fmt.Sprintf("fixpoint: did not converge within %d passes", Bound))
	}
	return result
}

// Package session wires one module's entire checking run together:
// binding, the evaluator/checker pair, and the fixpoint loop that drives
// them to convergence. It sits above internal/checker and
// internal/fixpoint (which import each other's neighbors but not this
// package) purely to avoid a dependency cycle — internal/fixpoint
// already imports internal/checker to drive it, so the orchestration
// layer that also needs internal/fixpoint has to live one level up.
package session

import (
	"log"

	"github.com/google/uuid"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/binder"
	"github.com/funvibe/pytype/internal/checker"
	"github.com/funvibe/pytype/internal/config"
	"github.com/funvibe/pytype/internal/diagnostics"
	"github.com/funvibe/pytype/internal/evaluator"
	"github.com/funvibe/pytype/internal/fixpoint"
)

// Session is one module's entire checking run. ID gives every
// concurrently-running Session a correlation tag for log lines, the way
// the teacher threads per-request identifiers through its own
// concurrent module loader — grounded on the teacher's go.mod
// dependency on github.com/google/uuid, used here for exactly that
// purpose rather than anything content-addressed.
type Session struct {
	ID     uuid.UUID
	Path   string
	Config *config.Config

	module *ast.Module
	bound  *binder.Result
	sink   *diagnostics.CollectingSink
	eval   *evaluator.Evaluator
	check  *checker.Checker
}

// New builds the binder output and the evaluator/checker pair for one
// parsed module, ready for Run. cfg may be nil, in which case
// config.Default() severities apply.
func New(path string, module *ast.Module, cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	bound := binder.Bind(module)
	sink := diagnostics.NewCollectingSink(path, cfg.Diagnostics)
	eval := evaluator.New(bound, nil, sink, cfg.Diagnostics)
	eval.IsStub = config.IsStubFile(path)
	chk := checker.New(eval, bound, sink, path)

	return &Session{
		ID:     uuid.New(),
		Path:   path,
		Config: cfg,
		module: module,
		bound:  bound,
		sink:   sink,
		eval:   eval,
		check:  chk,
	}
}

// Run drives the fixpoint loop (component C6) to convergence and
// returns every diagnostic the pass(es) produced, in deterministic
// order (spec.md §5's determinism requirement).
func (s *Session) Run() (diags []diagnostics.Diagnostic, passes int, converged bool) {
	result := fixpoint.Run(s.check, s.eval, s.module)
	if !result.Converged {
		log.Printf("session %s: %s did not converge within %d passes", s.ID, s.Path, fixpoint.Bound)
	}
	return s.sink.Diagnostics(), result.Passes, result.Converged
}

// Diagnostics returns whatever has been collected so far without
// forcing another pass — used by callers that want partial results
// after a cancellation (spec.md §5's "cancellable only at statement
// boundaries" note: a Session's sink is always in a consistent,
// readable state between passes).
func (s *Session) Diagnostics() []diagnostics.Diagnostic {
	return s.sink.Diagnostics()
}

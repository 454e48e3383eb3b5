package binder

import "github.com/funvibe/pytype/internal/ast"

// markFlow attaches flow-node flags to every statement in a
// straight-line block: statements following an unconditional
// return/raise (or an if/try whose every branch is itself terminal) are
// flagged Unreachable, and the terminal statement itself is flagged
// AfterUnreachable so control-flow-sensitive checks (spec.md §4.5.4's
// `neverReturns`) can query it without re-deriving the answer.
//
// This is a conservative straight-line approximation, not a full CFG: it
// does not model break/continue escaping loops, nor does it special-case
// `while True`. That is an intentional scope cut for the out-of-scope
// binder stand-in (see package doc) — spec.md specifies the checker
// against whatever reachability flags the binder attached, not how a
// full flow graph is built.
func markFlow(stmts []ast.Statement) {
	dead := false
	for _, s := range stmts {
		holder, ok := s.(ast.FlowHolder)
		if !ok {
			continue
		}
		flow := &ast.FlowNode{}
		if dead {
			flow.Unreachable = true
		}
		if isTerminal(s) {
			flow.AfterUnreachable = true
			dead = true
		}
		holder.SetFlow(flow)
	}
}

func isTerminalBlock(stmts []ast.Statement) bool {
	for _, s := range stmts {
		if isTerminal(s) {
			return true
		}
	}
	return false
}

// isTerminal reports whether executing s always exits the enclosing
// block (via return/raise, or because every branch of an if/try does).
func isTerminal(s ast.Statement) bool {
	switch v := s.(type) {
	case *ast.Return:
		return true
	case *ast.Raise:
		return true
	case *ast.If:
		if len(v.OrElse) == 0 {
			return false
		}
		return isTerminalBlock(v.Body) && isTerminalBlock(v.OrElse)
	case *ast.With:
		return isTerminalBlock(v.Body)
	case *ast.Try:
		if len(v.Finally) > 0 && isTerminalBlock(v.Finally) {
			return true
		}
		if !isTerminalBlock(v.Body) {
			return false
		}
		for _, h := range v.Handlers {
			if !isTerminalBlock(h.Body) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

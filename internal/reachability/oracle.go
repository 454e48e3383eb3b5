// Package reachability implements the flow reachability oracle (spec.md
// §4.3 / component C3): for any parse node, report whether it — and the
// program point after it — is reachable, by reading the flow-node flags
// the binder attached. It holds no logic of its own beyond reading the
// flags of the flow node it is handed (the walker passes each
// statement's own flow node), matching spec.md's description of C3 as a
// thin query layer the walker consults to skip unreachable subtrees.
package reachability

import "github.com/funvibe/pytype/internal/ast"

// IsUnreachable reports whether flow's Unreachable flag is set. It does
// not walk ancestors: the caller passes the flow node of the statement
// in question (only statements carry flow nodes, expressions never do).
// A nil flow node is reachable by default.
func IsUnreachable(flow *ast.FlowNode) bool {
	if flow == nil {
		return false
	}
	return flow.Unreachable
}

// FallsThrough reports whether control may continue past a node whose
// flow node is flow — false when the node always raises or returns
// (break/continue are not modelled by the binder) (spec.md §4.5.4's `neverReturns`
// depends on the negation of this for a function's suite).
func FallsThrough(flow *ast.FlowNode) bool {
	if flow == nil {
		return true
	}
	return !flow.AfterUnreachable
}

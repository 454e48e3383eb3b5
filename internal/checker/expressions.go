package checker

import (
	"fmt"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/diagnostics"
	"github.com/funvibe/pytype/internal/evaluator"
	"github.com/funvibe/pytype/internal/types"
)

// Apart from a yield or yield-from standing as its own statement (which
// VisitExpressionStatement hands to VisitYield/VisitYieldFrom),
// expressions are never reached by walkBlock's statement-level Accept
// dispatch (the checker calls evaluator.GetType directly, recursively,
// from each statement visitor and from the evaluator's own computeType
// switch). These Visit* methods exist only to satisfy ast.Visitor so the
// Checker itself can stand in wherever a full Visitor is required; each
// one simply routes through the same evaluator entry point a statement
// visitor would have used directly.
func (c *Checker) visitExpr(e ast.Expression) {
	c.Eval.GetType(e, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
}

// VisitLambda implements spec.md §4.5's Lambda contract: like a
// function but inline — after the evaluator has typed the lambda
// (binding its scope and walking its body as a side effect), any
// parameter or result type left Unknown is reported at
// reportUnknownLambdaType rather than the function-level rule, since a
// lambda has no name to anchor a parameter-by-parameter report to.
func (c *Checker) VisitLambda(l *ast.Lambda) {
	fnType := c.Eval.GetType(l, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
	fn, ok := fnType.(*types.Function)
	if !ok {
		return
	}
	unknown := types.ContainsUnknown(fn.ReturnType())
	for _, p := range fn.Params {
		if types.ContainsUnknown(p.Type) {
			unknown = true
		}
	}
	if unknown {
		c.Sink.Report(diagnostics.Diagnostic{
			Rule:    diagnostics.RuleUnknownLambdaType,
			Phase:   diagnostics.PhaseBody,
			Message: fmt.Sprintf("lambda has an unknown parameter or result type (%s)", types.PrintType(fn)),
			Range:   l.GetRange(),
		})
	}
}
func (c *Checker) VisitCall(call *ast.Call)              { c.visitExpr(call) }
func (c *Checker) VisitMemberAccess(m *ast.MemberAccess)  { c.visitExpr(m) }
func (c *Checker) VisitName(n *ast.Name)                 { c.visitExpr(n) }
func (c *Checker) VisitFormatString(f *ast.FormatString)  { c.visitExpr(f) }
func (c *Checker) VisitStringList(s *ast.StringList)      { c.visitExpr(s) }
func (c *Checker) VisitErrorNode(e *ast.ErrorNode)        { c.visitExpr(e) }
func (c *Checker) VisitTuple(t *ast.TupleExpr)            { c.visitExpr(t) }
func (c *Checker) VisitListExpr(l *ast.ListExpr)          { c.visitExpr(l) }
func (c *Checker) VisitConstant(ct *ast.Constant)         { c.visitExpr(ct) }
func (c *Checker) VisitIndex(i *ast.IndexExpr)            { c.visitExpr(i) }
func (c *Checker) VisitBinOp(b *ast.BinOp)                { c.visitExpr(b) }
func (c *Checker) VisitUnaryOp(u *ast.UnaryOp)            { c.visitExpr(u) }
func (c *Checker) VisitBoolOp(b *ast.BoolOp)              { c.visitExpr(b) }
func (c *Checker) VisitCompare(cp *ast.Compare)            { c.visitExpr(cp) }
func (c *Checker) VisitConditional(cd *ast.Conditional)   { c.visitExpr(cd) }
func (c *Checker) VisitStarred(s *ast.Starred)            { c.visitExpr(s) }

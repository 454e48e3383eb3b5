package checker

import (
	"fmt"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/diagnostics"
	"github.com/funvibe/pytype/internal/evaluator"
	"github.com/funvibe/pytype/internal/types"
)

func (c *Checker) VisitReturn(r *ast.Return) {
	var valueType types.Type = types.None{}
	if r.Value != nil {
		valueType = c.Eval.GetType(r.Value, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
	}
	fn := c.enclosingFunction()
	if fn == nil {
		return
	}
	c.returnTypes[fn] = append(c.returnTypes[fn], valueType)
	if fnType, ok := c.Eval.CachedFunctionType(fn); ok && fnType.DeclaredReturn != nil {
		if _, isNoReturn := fnType.DeclaredReturn.(types.Never); isNoReturn {
			c.Sink.Report(diagnostics.Diagnostic{
				Rule:    diagnostics.RuleReturnType,
				Phase:   diagnostics.PhaseBody,
				Message: "function with declared return type 'NoReturn' cannot include a return statement",
				Range:   r.GetRange(),
			})
			return
		}
		var diag types.Diag
		if !types.CanAssign(fnType.DeclaredReturn, valueType, &diag, c.Eval.Imports) {
			c.reportReturnMismatch(r, fnType.DeclaredReturn, valueType, diag)
		}
	}
}

func (c *Checker) VisitYield(y *ast.Yield) {
	var valueType types.Type = types.None{}
	if y.Value != nil {
		valueType = c.Eval.GetType(y.Value, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
	}
	fn := c.enclosingFunction()
	if fn == nil {
		return
	}
	c.yieldTypes[fn] = append(c.yieldTypes[fn], valueType)
	if fnType, ok := c.Eval.CachedFunctionType(fn); ok {
		if _, isNoReturn := fnType.DeclaredReturn.(types.Never); isNoReturn {
			c.Sink.Report(diagnostics.Diagnostic{
				Rule:    diagnostics.RuleReturnType,
				Phase:   diagnostics.PhaseBody,
				Message: "function with declared return type 'NoReturn' cannot include a yield statement",
				Range:   y.GetRange(),
			})
			return
		}
		if fnType.YieldType != nil && !types.ContainsUnknown(fnType.YieldType) {
			var diag types.Diag
			if !types.CanAssign(fnType.YieldType, valueType, &diag, c.Eval.Imports) {
				c.reportYieldMismatch(y, fnType.YieldType, valueType, diag)
			}
		}
	}
}

func (c *Checker) VisitYieldFrom(y *ast.YieldFrom) {
	iterType := c.Eval.GetType(y.Iterable, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
	elem := c.Eval.ElementTypeOf(iterType)
	if fn := c.enclosingFunction(); fn != nil {
		c.yieldTypes[fn] = append(c.yieldTypes[fn], elem)
	}
}

// VisitRaise implements spec.md §4.5's Raise contract: every subtype of
// the raised expression's type must be either a class deriving from
// BaseException (the type-expression form, `raise SomeError`) or an
// instance of one (the value-expression form, `raise SomeError()`).
// Any/Unknown subtypes are silently accepted (spec.md §7: an evaluator
// gap degrades precision, it never manufactures a false diagnostic).
func (c *Checker) VisitRaise(r *ast.Raise) {
	if r.Exception != nil {
		excType := c.Eval.GetType(r.Exception, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
		c.validateRaiseType(r, excType)
	}
	if r.Cause != nil {
		c.Eval.GetType(r.Cause, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
	}
}

func (c *Checker) validateRaiseType(r *ast.Raise, excType types.Type) {
	subtypes := []types.Type{excType}
	if u, ok := excType.(types.Union); ok {
		subtypes = u.Subtypes
	}
	for _, sub := range subtypes {
		if derivesFromBaseException(sub) {
			continue
		}
		c.Sink.Report(diagnostics.Diagnostic{
			Rule:    diagnostics.RuleGeneralTypeIssues,
			Phase:   diagnostics.PhaseBody,
			Message: fmt.Sprintf("expression of type %q cannot be raised; it does not derive from BaseException", types.PrintType(sub)),
			Range:   r.GetRange(),
		})
	}
}

// derivesFromBaseException accepts Any/Unknown (nothing to say), a
// Class deriving from BaseException (the `raise SomeError` form), an
// Object of such a class (`raise SomeError()`), and None/Never (a bare
// re-raise's absent exception never reaches here as a subtype anyway,
// but a None-typed cause expression is harmless).
func derivesFromBaseException(t types.Type) bool {
	switch v := t.(type) {
	case types.Any, types.Unknown, types.None, types.Never:
		return true
	case *types.Class:
		return types.DerivesFromClassRecursive(v, evaluator.BaseExceptionClass)
	case types.Object:
		return types.DerivesFromClassRecursive(v.Class, evaluator.BaseExceptionClass)
	default:
		return false
	}
}

func (c *Checker) VisitAssign(a *ast.Assign) {
	scope := c.currentScope()
	valueType := c.Eval.GetType(a.Value, scope, evaluator.MethodGet, nil, evaluator.FlagNone)
	valueType = c.Eval.TransformTypeForPossibleEnumClass(valueType, c.currentClass())
	if a.TypeCommentAnn != nil {
		declared := c.Eval.GetTypeOfAnnotation(a.TypeCommentAnn, scope)
		var diag types.Diag
		if !types.CanAssign(declared, valueType, &diag, c.Eval.Imports) {
			c.reportAssignMismatch(a, declared, valueType, diag)
		}
	}
	for _, target := range a.Targets {
		c.Eval.GetTypeOfAssignmentStatementTarget(target, valueType, scope)
	}
}

func (c *Checker) VisitAugAssign(a *ast.AugAssign) {
	scope := c.currentScope()
	targetType := c.Eval.GetType(a.Target, scope, evaluator.MethodGet, nil, evaluator.FlagNone)
	valueType := c.Eval.GetType(a.Value, scope, evaluator.MethodGet, nil, evaluator.FlagNone)
	result := types.Type(types.Unknown{})
	if types.IsTypeSame(targetType, valueType) {
		result = targetType
	}
	c.Eval.GetTypeOfAugmentedAssignmentTarget(a.Target, result, scope)
}

func (c *Checker) VisitAnnAssign(a *ast.AnnAssign) {
	scope := c.currentScope()
	declared := c.Eval.GetTypeOfAnnotation(a.Annotation, scope)
	if name, ok := a.Target.(*ast.Name); ok {
		if sym, ok := scope.Lookup(name.Value); ok && len(sym.Declarations) > 0 {
			sym.Declarations[len(sym.Declarations)-1].DeclaredType = declared
		}
	}
	if a.Value == nil {
		return // bare annotation, not an assignment
	}
	valueType := c.Eval.GetType(a.Value, scope, evaluator.MethodGet, nil, evaluator.FlagNone)
	var diag types.Diag
	if !types.CanAssign(declared, valueType, &diag, c.Eval.Imports) {
		c.reportAssignMismatch(a, declared, valueType, diag)
	}
}

func (c *Checker) VisitDel(d *ast.Del) {
	for _, target := range d.Targets {
		c.Eval.GetType(target, c.currentScope(), evaluator.MethodDel, nil, evaluator.FlagNone)
	}
}

func (c *Checker) VisitImport(i *ast.Import)         {}
func (c *Checker) VisitImportFrom(i *ast.ImportFrom) {}

func (c *Checker) VisitFor(f *ast.For) {
	scope := c.currentScope()
	iterType := c.Eval.GetType(f.Iterable, scope, evaluator.MethodGet, nil, evaluator.FlagNone)
	elem := c.Eval.ElementTypeOf(iterType)
	c.Eval.GetTypeOfForTarget(f.Target, elem, scope)
	c.walkBlock(f.Body)
	c.walkBlock(f.OrElse)
}

func (c *Checker) VisitWhile(w *ast.While) {
	c.Eval.GetType(w.Condition, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
	c.walkBlock(w.Body)
	c.walkBlock(w.OrElse)
}

func (c *Checker) VisitIf(i *ast.If) {
	c.Eval.GetType(i.Condition, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
	c.walkBlock(i.Body)
	c.walkBlock(i.OrElse)
}

func (c *Checker) VisitAssert(a *ast.Assert) {
	c.Eval.GetType(a.Condition, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
	if a.Message != nil {
		c.Eval.GetType(a.Message, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
	}
}

func (c *Checker) VisitWith(w *ast.With) {
	scope := c.currentScope()
	for _, item := range w.Items {
		ctxType := c.Eval.GetType(item.ContextExpr, scope, evaluator.MethodGet, nil, evaluator.FlagNone)
		if item.Target != nil {
			c.Eval.GetTypeOfWithItemTarget(item.Target, ctxType, scope)
		}
	}
	c.walkBlock(w.Body)
}

func (c *Checker) VisitTry(t *ast.Try) {
	scope := c.currentScope()
	c.walkBlock(t.Body)
	for _, h := range t.Handlers {
		exceptionType := types.Type(types.Unknown{})
		if h.Type != nil {
			exceptionType = c.Eval.GetType(h.Type, scope, evaluator.MethodGet, nil, evaluator.FlagNone)
		}
		if h.Name != nil {
			c.Eval.GetTypeOfExceptTarget(h.Name, exceptionType, scope)
		}
		c.walkBlock(h.Body)
	}
	c.walkBlock(t.OrElse)
	c.walkBlock(t.Finally)
}

func (c *Checker) VisitExpressionStatement(e *ast.ExpressionStatement) {
	switch e.Expression.(type) {
	case *ast.Yield, *ast.YieldFrom:
		e.Expression.Accept(c)
		return
	}
	c.Eval.GetType(e.Expression, c.currentScope(), evaluator.MethodGet, nil, evaluator.FlagNone)
}

// enclosingFunction returns the FunctionDef node owning the scope
// currently on top of the stack, or nil at module/class level.
func (c *Checker) enclosingFunction() *ast.FunctionDef {
	scope := c.currentScope()
	if scope == nil {
		return nil
	}
	fn, _ := scope.Owner.(*ast.FunctionDef)
	return fn
}

func (c *Checker) reportReturnMismatch(node ast.Node, declared, value types.Type, diag types.Diag) {
	c.reportMismatch(node, "return value", declared, value, diag)
}

func (c *Checker) reportYieldMismatch(node ast.Node, declared, value types.Type, diag types.Diag) {
	c.reportMismatch(node, "yielded value", declared, value, diag)
}

func (c *Checker) reportAssignMismatch(node ast.Node, declared, value types.Type, diag types.Diag) {
	c.reportMismatch(node, "assigned value", declared, value, diag)
}

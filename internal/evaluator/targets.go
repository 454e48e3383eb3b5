package evaluator

import (
	"fmt"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/diagnostics"
	"github.com/funvibe/pytype/internal/symbols"
	"github.com/funvibe/pytype/internal/types"
)

// bindNameTarget is the shared core behind every "a name becomes bound
// to a value of this type" contract spec.md §4.4 lists separately
// (assignment target, augmented-assignment target, for-target,
// with-target, except-target): if the symbol already carries an
// explicit declared type, the new value must be assignable to it; if
// not, the value's type is combined into the declaration's inferred
// type. Either way the name node's cached type is then overwritten with
// the value's type via UpdateExpressionTypeForNode, which bypasses the
// cache's monotone check, so later reads of the name see that type.
func (e *Evaluator) bindNameTarget(name *ast.Name, valueType types.Type, scope *symbols.Scope) {
	sym, ok := scope.Lookup(name.Value)
	if !ok {
		return
	}
	if decl, ok := symbols.GetLastTypedDeclaredForSymbol(sym); ok {
		declared := symbols.ResolveDeclaredType(decl, e.SymbolImports)
		var diag types.Diag
		if !types.CanAssign(declared, valueType, &diag, e.Imports) {
			e.reportAssignMismatch(name, declared, valueType, diag)
		}
	} else if len(sym.Declarations) > 0 {
		last := &sym.Declarations[len(sym.Declarations)-1]
		last.InferredType = types.Combine(last.InferredType, valueType)
	}
	e.UpdateExpressionTypeForNode(name, valueType)
}

func (e *Evaluator) reportAssignMismatch(node ast.Node, declared, value types.Type, diag types.Diag) {
	if e.Sink == nil {
		return
	}
	msg := fmt.Sprintf("cannot assign %s to declared type %s", types.PrintType(value), types.PrintType(declared))
	if len(diag.Reasons) > 0 {
		msg += ": " + diag.Reasons[0]
	}
	e.Sink.Report(diagnostics.Diagnostic{
		Rule:    diagnostics.RuleGeneralTypeIssues,
		Phase:   diagnostics.PhaseBody,
		Message: msg,
		Range:   node.GetRange(),
	})
}

// bindDestructuringTarget recurses through tuple/list/starred targets,
// matching valueType's shape where it is itself a known tuple; falls
// back to Unknown per element when the source shape can't be
// destructured statically (spec.md §9's deliberately-unmodeled
// structural unpacking).
func (e *Evaluator) bindDestructuringTarget(target ast.Expression, valueType types.Type, scope *symbols.Scope) {
	switch t := target.(type) {
	case *ast.Name:
		e.bindNameTarget(t, valueType, scope)
	case *ast.Starred:
		e.bindDestructuringTarget(t.Value, valueType, scope)
	case *ast.TupleExpr:
		e.bindElements(t.Elements, valueType, scope)
	case *ast.ListExpr:
		e.bindElements(t.Elements, valueType, scope)
	default:
		// Member/index assignment targets: no symbol to bind, but the
		// base expression is still evaluated for its own diagnostics.
		e.GetType(target, scope, MethodGet, nil, FlagNone)
	}
}

func (e *Evaluator) bindElements(elements []ast.Expression, valueType types.Type, scope *symbols.Scope) {
	tupleClass := types.GetSpecializedTupleType(valueType)
	for i, el := range elements {
		slot := types.Type(types.Unknown{})
		if tupleClass != nil && i < len(tupleClass.TypeArgs) {
			slot = tupleClass.TypeArgs[i]
		}
		e.bindDestructuringTarget(el, slot, scope)
	}
}

// GetTypeOfAssignmentStatementTarget implements `Targets... = Value`
// (spec.md §4.5 "Assignment"): every target is bound to the value's
// type, left to right.
func (e *Evaluator) GetTypeOfAssignmentStatementTarget(target ast.Expression, valueType types.Type, scope *symbols.Scope) {
	e.bindDestructuringTarget(target, valueType, scope)
}

// GetTypeOfAugmentedAssignmentTarget implements `Target OP= Value`: the
// target must already exist and be assignable from the combined-op
// result, which the checker computes before calling this with the
// resulting type.
func (e *Evaluator) GetTypeOfAugmentedAssignmentTarget(target ast.Expression, resultType types.Type, scope *symbols.Scope) {
	e.bindDestructuringTarget(target, resultType, scope)
}

// GetTypeOfForTarget implements `for Target in Iterable`: elementType
// is the type the checker derived from the iterable's element protocol.
func (e *Evaluator) GetTypeOfForTarget(target ast.Expression, elementType types.Type, scope *symbols.Scope) {
	e.bindDestructuringTarget(target, elementType, scope)
}

// GetTypeOfWithItemTarget implements `with Expr as Target`: contextType
// is the value the context manager's __enter__ would yield; since
// __enter__ resolution is out of this evaluator's modeled protocol set
// (spec.md §9), the checker passes the context expression's own type
// when it cannot do better.
func (e *Evaluator) GetTypeOfWithItemTarget(target ast.Expression, contextType types.Type, scope *symbols.Scope) {
	e.bindDestructuringTarget(target, contextType, scope)
}

// GetTypeOfExceptTarget implements `except Type as Target`: the target
// is bound to Object(Type) when Type is a bare class reference, else
// Unknown for a tuple-of-exception-types form.
func (e *Evaluator) GetTypeOfExceptTarget(target ast.Expression, exceptionType types.Type, scope *symbols.Scope) {
	bound := types.Type(types.Unknown{})
	if class, ok := exceptionType.(*types.Class); ok {
		bound = types.Object{Class: class}
	}
	e.bindDestructuringTarget(target, bound, scope)
}

package checker

import (
	"fmt"
	"strings"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/config"
	"github.com/funvibe/pytype/internal/diagnostics"
	"github.com/funvibe/pytype/internal/evaluator"
	"github.com/funvibe/pytype/internal/reachability"
	"github.com/funvibe/pytype/internal/symbols"
	"github.com/funvibe/pytype/internal/types"
)

type sweepScope int

const (
	sweepModuleKinds sweepScope = iota
	sweepFunctionKinds
)

// sweepUnused implements spec.md §4.5.1: every symbol in scope that was
// never read gets a rule specific to what declared it. Imports are
// always reportable (barring the __future__/_pb2.py exemptions);
// Variable/Parameter/Class/Function are reportable only when the name
// itself is private (evaluator.IsPrivateName, §4.5.6) — a public name of
// one of those kinds may be part of this module's external surface, so
// leaving it unread here is not on its own evidence of dead code.
func (c *Checker) sweepUnused(scope *symbols.Scope, which sweepScope) {
	for _, sym := range scope.Symbols() {
		if len(sym.Declarations) == 0 || c.Eval.IsUsed(sym.ID) {
			continue
		}
		if sym.IgnoredForProtocolMatch || sym.Name == "_" || isReservedDunderName(sym.Name) {
			continue
		}
		last := sym.LastDeclaration()
		rule, message, ok := c.unusedReportFor(sym, last, which)
		if !ok {
			continue
		}
		c.Sink.Report(diagnostics.Diagnostic{
			Rule:    rule,
			Phase:   diagnostics.PhaseSweep,
			Message: message,
			Range:   last.Node.GetRange(),
		})
		// spec.md §6: dead-code hinting is a separate channel from the
		// typed reportXxx diagnostic stream — an unused import or symbol
		// is exactly the "dead code" spec.md's addUnusedCodeWithTextRange
		// exists for, so every sweep finding is also reported there.
		c.Sink.AddUnusedCode(message, last.Node.GetRange())
	}
}

// unusedReportFor decides whether sym's last declaration is reportable
// and, if so, which rule and message to use.
func (c *Checker) unusedReportFor(sym *symbols.Symbol, last symbols.Declaration, which sweepScope) (diagnostics.Rule, string, bool) {
	switch last.Kind {
	case symbols.DeclAlias:
		if isFutureImport(last) || config.IsGeneratedModule(c.Path) {
			return "", "", false
		}
		message := fmt.Sprintf("import %q is not accessed", sym.Name)
		if last.DottedPath != "" && strings.Contains(last.DottedPath, ".") {
			message = fmt.Sprintf("import %q is not accessed", last.DottedPath)
		}
		return diagnostics.RuleUnusedImport, message, true
	case symbols.DeclClass:
		if !evaluator.IsPrivateName(sym.Name) {
			return "", "", false
		}
		return diagnostics.RuleUnusedClass, fmt.Sprintf("class %q is never used", sym.Name), true
	case symbols.DeclFunction:
		if !evaluator.IsPrivateName(sym.Name) {
			return "", "", false
		}
		return diagnostics.RuleUnusedFunction, fmt.Sprintf("function %q is never used", sym.Name), true
	case symbols.DeclVariable, symbols.DeclParameter:
		if which != sweepFunctionKinds || !evaluator.IsPrivateName(sym.Name) {
			return "", "", false
		}
		return diagnostics.RuleUnusedVariable, fmt.Sprintf("variable %q is never used", sym.Name), true
	default:
		return "", "", false
	}
}

func isFutureImport(d symbols.Declaration) bool {
	return d.AliasTarget == "__future__" || strings.HasPrefix(d.DottedPath, "__future__.")
}

// isReservedDunderName reports whether name matches the language's
// reserved double-underscore pattern (`__init__`, `__all__`, ...),
// exempted from the unused sweep entirely per spec.md §4.5.1 regardless
// of declaration kind.
func isReservedDunderName(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// validateMethodShape implements spec.md §4.5.2's method-shape rules.
func (c *Checker) validateMethodShape(fn *ast.FunctionDef, fnType *types.Function) {
	if fn.Name == "__new__" || fn.Name == "__init_subclass__" {
		c.requireFirstParamNamed(fn, []string{"cls", "mcs"})
		return
	}
	if fnType.Flags.StaticMethod {
		if len(fn.Params) > 0 && (fn.Params[0].Name == "self" || fn.Params[0].Name == "cls") {
			c.Sink.Report(diagnostics.Diagnostic{
				Rule:    diagnostics.RuleSelfClsParameterName,
				Phase:   diagnostics.PhaseDeclaration,
				Message: fmt.Sprintf("static method %q should not take %q as its first parameter", fn.Name, fn.Params[0].Name),
				Range:   fn.GetRange(),
			})
		}
		return
	}
	if fnType.Flags.ClassMethod {
		if len(fn.Params) > 0 && strings.HasPrefix(fn.Params[0].Name, "_") {
			return
		}
		if c.IsStub && len(fn.Params) > 0 && fn.Params[0].Name == "metacls" {
			return
		}
		c.requireFirstParamNamed(fn, []string{"cls"})
		return
	}
	if len(fn.Decorators) > 0 {
		return // a decorator may rebind the callable's shape entirely
	}
	if c.IsStub && isABCMetaRegisterIdiom(fn) {
		return
	}
	if len(fn.Params) > 0 && strings.HasPrefix(fn.Params[0].Name, "_") {
		return
	}
	if len(fn.Params) > 0 && fn.Params[0].Name == "self" && fn.Params[0].Category == ast.ParamSimple {
		return
	}
	c.Sink.Report(diagnostics.Diagnostic{
		Rule:    diagnostics.RuleSelfClsParameterName,
		Phase:   diagnostics.PhaseDeclaration,
		Message: fmt.Sprintf("instance method %q should take %q as its first parameter", fn.Name, "self"),
		Range:   fn.GetRange(),
	})
}

func (c *Checker) requireFirstParamNamed(fn *ast.FunctionDef, names []string) {
	if len(fn.Params) > 0 {
		for _, n := range names {
			if fn.Params[0].Name == n {
				return
			}
		}
	}
	c.Sink.Report(diagnostics.Diagnostic{
		Rule:    diagnostics.RuleSelfClsParameterName,
		Phase:   diagnostics.PhaseDeclaration,
		Message: fmt.Sprintf("%q should take %q as its first parameter", fn.Name, names[0]),
		Range:   fn.GetRange(),
	})
}

// isABCMetaRegisterIdiom recognizes the stub-only `ABCMeta.register(cls,
// subclass)` signature shape spec.md §4.5.2 exempts: an instance method
// whose first parameter is named `cls` rather than `self`.
func isABCMetaRegisterIdiom(fn *ast.FunctionDef) bool {
	return fn.Name == "register" && len(fn.Params) > 0 && fn.Params[0].Name == "cls"
}

// validateOverride implements spec.md §4.5.3: a method's signature must
// be a valid override of the first same-named method found along the
// base classes' MRO (contravariant params, covariant return, stable
// required arity); methods of the same name further up are not checked.
func (c *Checker) validateOverride(fn *ast.FunctionDef, fnType *types.Function, classType *types.Class) {
	if fnType.Flags.StaticMethod || classType == nil {
		return
	}
	sym, owner := symbols.GetSymbolFromBaseClasses(classType, fn.Name, c.Bound.ClassScopes)
	if sym == nil {
		return
	}
	baseType := symbols.GetEffectiveTypeOfSymbol(sym, c.Eval.SymbolImports)
	baseFn, ok := baseType.(*types.Function)
	if !ok {
		return
	}
	var diag types.Diag
	if !types.CanOverride(baseFn, fnType, &diag, c.Eval.Imports) {
		reason := ""
		if len(diag.Reasons) > 0 {
			reason = ": " + diag.Reasons[0]
		}
		c.Sink.Report(diagnostics.Diagnostic{
			Rule:    diagnostics.RuleIncompatibleMethodOverride,
			Phase:   diagnostics.PhaseOverride,
			Message: fmt.Sprintf("%q incompatibly overrides the method declared on %q%s", fn.Name, owner.Name, reason),
			Range:   fn.GetRange(),
		})
	}
}

// validateReturnContract implements spec.md §4.5.4: when a return type
// is declared, every return site's value must be assignable to it, and
// a body that can fall off the end must itself accept None — unless the
// function is an abstract method, which is exempt from both (its body is
// a placeholder, not a real implementation). A generator is exempt from
// the fall-through check: its annotation describes the iterator it
// returns, not a value reached by falling off the end. When no return type is
// declared, the inferred return type follows the same three cases §4.5.4
// lists: a generator's is its yield type wrapped in `Generator[...]`, a
// function that never returns control to its caller infers `NoReturn`,
// and everything else combines its reachable return sites (adding `None`
// when the body can fall off the end) — completing the monotone
// narrowing the evaluator's cache discipline expects across passes.
func (c *Checker) validateReturnContract(fn *ast.FunctionDef, fnType *types.Function) {
	canFall := canFallThrough(fn.Body)
	returns := c.returnTypes[fn]
	neverReturns := !canFall && len(returns) == 0

	if fnType.DeclaredReturn == nil {
		inferred := c.inferUnannotatedReturn(fn, fnType, returns, canFall, neverReturns)
		fnType.InferredReturn = inferred
		if types.ContainsUnknown(inferred) {
			c.Sink.Report(diagnostics.Diagnostic{
				Rule:    diagnostics.RuleUnknownParameterType,
				Phase:   diagnostics.PhaseDeclaration,
				Message: fmt.Sprintf("return type of %q is partially unknown", fn.Name),
				Range:   fn.GetRange(),
			})
		}
		return
	}

	if fnType.Flags.AbstractMethod {
		return
	}
	if canFall && !fn.IsGenerator {
		var diag types.Diag
		if !types.CanAssign(fnType.DeclaredReturn, types.None{}, &diag, c.Eval.Imports) {
			c.Sink.Report(diagnostics.Diagnostic{
				Rule:    diagnostics.RuleReturnType,
				Phase:   diagnostics.PhaseBody,
				Message: fmt.Sprintf("function declared to return %q may fall through without an explicit return", types.PrintType(fnType.DeclaredReturn)),
				Range:   fn.GetRange(),
			})
		}
	}
}

// inferUnannotatedReturn implements spec.md §4.5.4's "without an
// annotation" branch.
func (c *Checker) inferUnannotatedReturn(fn *ast.FunctionDef, fnType *types.Function, returns []types.Type, canFall, neverReturns bool) types.Type {
	if fn.IsGenerator {
		return c.wrapGeneratorReturn(fn)
	}
	if neverReturns && !fnType.Flags.AbstractMethod {
		return types.Never{}
	}
	inferred := types.Combine(returns...)
	if canFall {
		inferred = types.Combine(inferred, types.None{})
	}
	if inferred == nil {
		inferred = types.None{}
	}
	return inferred
}

// wrapGeneratorReturn builds the `Generator[Y, Any, Any]` a generator
// function without a declared return annotation implicitly returns,
// combining the same reachable yield sites validateYieldContract folds
// into the declared-yield-type case.
func (c *Checker) wrapGeneratorReturn(fn *ast.FunctionDef) types.Type {
	yieldType := types.Combine(c.yieldTypes[fn]...)
	if yieldType == nil {
		yieldType = types.None{}
	}
	template, ok := c.Eval.GetTypingType("Generator")
	if !ok {
		return types.Unknown{}
	}
	class, ok := template.(*types.Class)
	if !ok {
		return types.Unknown{}
	}
	specialized, ok := types.Specialize(class, types.TypeVarMap{"Y": yieldType}).(*types.Class)
	if !ok {
		return types.Unknown{}
	}
	return types.Object{Class: specialized}
}

// reportMismatch reports a general type-compatibility failure ("return
// value"/"assigned value") with whatever reason types.CanAssign recorded.
func (c *Checker) reportMismatch(node ast.Node, what string, declared, value types.Type, diag types.Diag) {
	reason := ""
	if len(diag.Reasons) > 0 {
		reason = ": " + diag.Reasons[0]
	}
	c.Sink.Report(diagnostics.Diagnostic{
		Rule:    diagnostics.RuleGeneralTypeIssues,
		Phase:   diagnostics.PhaseBody,
		Message: fmt.Sprintf("%s of type %q is not assignable to declared type %q%s", what, types.PrintType(value), types.PrintType(declared), reason),
		Range:   node.GetRange(),
	})
}

func canFallThrough(stmts []ast.Statement) bool {
	if len(stmts) == 0 {
		return true
	}
	last := stmts[len(stmts)-1]
	holder, ok := last.(ast.FlowHolder)
	if !ok {
		return true
	}
	return reachability.FallsThrough(holder.Flow())
}

// validateYieldContract folds every yield site's value type into the
// function's inferred yield type when none was declared via an
// Iterator[Y]/Generator[Y, S, R] return annotation (spec.md §4.5's
// yield node contract, §9 generator-protocol note).
func (c *Checker) validateYieldContract(fn *ast.FunctionDef, fnType *types.Function) {
	if !fn.IsGenerator {
		return
	}
	if !types.ContainsUnknown(fnType.YieldType) {
		return // already concretely declared
	}
	yields := c.yieldTypes[fn]
	inferred := types.Combine(yields...)
	if inferred == nil {
		inferred = types.Unknown{}
	}
	fnType.YieldType = inferred
}

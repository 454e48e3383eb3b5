// Package checker implements the analysis walker (spec.md §4.5 /
// component C5): the single pass over one module's parse tree, per
// fixpoint iteration, that drives declaration registration, expression
// evaluation, and every per-node-kind and cross-cutting validation the
// specification names.
//
// Grounded on the teacher's internal/analyzer package: same shape of a
// tree walker holding a scope stack plus a shared inference/evaluation
// context (the teacher's Analyzer + InferenceContext; here, Checker +
// evaluator.Evaluator), and the same "one Visit method per node kind,
// dispatched through the tree's own Accept" structure as the teacher's
// ast.Visitor implementations.
package checker

import (
	"fmt"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/binder"
	"github.com/funvibe/pytype/internal/config"
	"github.com/funvibe/pytype/internal/diagnostics"
	"github.com/funvibe/pytype/internal/evaluator"
	"github.com/funvibe/pytype/internal/reachability"
	"github.com/funvibe/pytype/internal/symbols"
	"github.com/funvibe/pytype/internal/types"
)

// Checker is C5: one instance walks one module for its entire
// multi-pass fixpoint run, sharing its Evaluator with the fixpoint
// driver (component C6) across passes.
type Checker struct {
	Eval  *evaluator.Evaluator
	Bound *binder.Result
	Sink  diagnostics.Sink
	Path  string
	// IsStub mirrors spec.md FileInfo.isStubFile: several checks relax
	// inside an annotation-only companion file (§4.5.2's `metacls`
	// classmethod exemption, §4.5's reportCallInDefaultInitializer).
	IsStub bool

	scopeStack []*symbols.Scope
	classStack []*types.Class

	// returnTypes/yieldTypes accumulate the types seen at each return/
	// yield site of the function currently being walked, keyed by the
	// FunctionDef node; reset every pass by BeginPass since passes
	// re-walk the whole tree from scratch.
	returnTypes map[*ast.FunctionDef][]types.Type
	yieldTypes  map[*ast.FunctionDef][]types.Type

	// changed records whether the evaluator's change callback fired
	// during the pass currently in progress; the fixpoint driver (C6)
	// reads it back through Analyze's return value.
	changed bool
}

var _ ast.Visitor = (*Checker)(nil)

// New creates a Checker sharing eval and bound with the rest of this
// module's analysis, and installs the change callback Analyze's return
// value depends on.
func New(eval *evaluator.Evaluator, bound *binder.Result, sink diagnostics.Sink, path string) *Checker {
	c := &Checker{Eval: eval, Bound: bound, Sink: sink, Path: path, IsStub: config.IsStubFile(path)}
	eval.SetChangeCallback(func(ast.Node, string) { c.changed = true })
	return c
}

// BeginPass resets the per-pass accumulators before a new fixpoint
// iteration walks the tree (spec.md §8: each pass starts from the
// previous pass's cached types, not from scratch, but per-pass-local
// bookkeeping like "every return site seen so far" must not leak
// between passes or it would double-count).
func (c *Checker) BeginPass() {
	c.returnTypes = make(map[*ast.FunctionDef][]types.Type)
	c.yieldTypes = make(map[*ast.FunctionDef][]types.Type)
	c.changed = false
}

func (c *Checker) currentScope() *symbols.Scope {
	if len(c.scopeStack) == 0 {
		return c.Bound.ModuleScope
	}
	return c.scopeStack[len(c.scopeStack)-1]
}

func (c *Checker) pushScope(s *symbols.Scope) { c.scopeStack = append(c.scopeStack, s) }
func (c *Checker) popScope()                  { c.scopeStack = c.scopeStack[:len(c.scopeStack)-1] }

func (c *Checker) currentClass() *types.Class {
	if len(c.classStack) == 0 {
		return nil
	}
	return c.classStack[len(c.classStack)-1]
}

// Analyze runs one complete pass over module and reports whether any
// node's cached type became more informative during the pass — the
// signal the fixpoint driver (C6) repeats on (spec.md §2, C6).
func (c *Checker) Analyze(module *ast.Module) bool {
	module.Accept(c)
	return c.changed
}

func (c *Checker) VisitModule(m *ast.Module) {
	c.pushScope(c.Bound.ModuleScope)
	c.walkBlock(m.Body)
	c.sweepUnused(c.Bound.ModuleScope, sweepModuleKinds)
	c.popScope()
}

// walkBlock walks stmts in order, skipping any statement the binder
// flagged unreachable (spec.md §4.3/§5: the walker consults the
// reachability oracle to skip unreachable subtrees entirely — no type
// contributions, no diagnostics from dead code).
func (c *Checker) walkBlock(stmts []ast.Statement) {
	for _, stmt := range stmts {
		if holder, ok := stmt.(ast.FlowHolder); ok && reachability.IsUnreachable(holder.Flow()) {
			continue
		}
		stmt.Accept(c)
	}
}

func (c *Checker) VisitClassDef(class *ast.ClassDef) {
	scope := c.currentScope()
	classType := c.Eval.GetTypeOfClass(class, scope)
	c.setDeclaredType(class.Name, classType)

	classScope := c.Bound.Scopes[class]
	c.pushScope(classScope)
	c.classStack = append(c.classStack, classType)

	for _, stmt := range class.Body {
		if fn, ok := stmt.(*ast.FunctionDef); ok {
			c.visitMethod(fn, class, classType)
			continue
		}
		stmt.Accept(c)
	}

	c.classStack = c.classStack[:len(c.classStack)-1]
	c.popScope()

	// spec.md §4.5's Class contract: decorators and base-class argument
	// expressions are walked after the suite, in that order, because a
	// decorator may reference the class name the suite walk just bound
	// onto its symbol.
	c.walkDecorators(class.Decorators, scope)
	for _, base := range class.Bases {
		c.Eval.GetType(base, scope, evaluator.MethodGet, nil, evaluator.FlagNone)
	}

	if class.IsTypedDict {
		c.validateTypedDictBody(class)
	}
	c.propagateAbstractness(class, classType)
}

// propagateAbstractness implements spec.md §4.5.3's closing clause: a
// class inherits "abstract" status from any base's abstract method it
// does not itself override with a concrete implementation, even when
// nothing in its own body is decorated @abstractmethod.
func (c *Checker) propagateAbstractness(class *ast.ClassDef, classType *types.Class) {
	if classType.Flags.Abstract {
		return
	}
	for _, base := range classType.Bases {
		if hasUnoverriddenAbstractMethod(classType, base, c.Bound.ClassScopes) {
			classType.Flags.Abstract = true
			return
		}
	}
}

func hasUnoverriddenAbstractMethod(class, base *types.Class, classScopes map[string]*symbols.Scope) bool {
	scope, ok := classScopes[base.Name]
	if !ok {
		return false
	}
	for _, sym := range scope.Symbols() {
		fnType, ok := symbols.GetEffectiveTypeOfSymbol(sym, nil).(*types.Function)
		if !ok || !fnType.Flags.AbstractMethod {
			continue
		}
		if _, overridden := class.FindField(sym.Name); overridden {
			continue
		}
		if scope, ok := classScopes[class.Name]; ok {
			if _, ok := scope.LookupLocal(sym.Name); ok {
				continue
			}
		}
		return true
	}
	for _, b := range base.Bases {
		if hasUnoverriddenAbstractMethod(class, b, classScopes) {
			return true
		}
	}
	return false
}

// validateTypedDictBody implements spec.md §4.5's Class contract for
// TypedDict classes: the suite may contain only type annotations,
// docstrings, ellipses, and pass statements — a plain assignment or any
// other statement breaks the "structural-only" guarantee callers of a
// TypedDict rely on.
func (c *Checker) validateTypedDictBody(class *ast.ClassDef) {
	for _, stmt := range class.Body {
		switch s := stmt.(type) {
		case *ast.AnnAssign:
			continue
		case *ast.ExpressionStatement:
			if isDocstringOrEllipsis(s.Expression) {
				continue
			}
		default:
		}
		c.Sink.Report(diagnostics.Diagnostic{
			Rule:    diagnostics.RuleGeneralTypeIssues,
			Phase:   diagnostics.PhaseBody,
			Message: "TypedDict classes can contain only type annotations",
			Range:   stmt.GetRange(),
		})
	}
}

func isDocstringOrEllipsis(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.StringList:
		return true
	case *ast.Constant:
		return v.Kind == ast.ConstEllipsis
	default:
		return false
	}
}

func (c *Checker) VisitFunctionDef(fn *ast.FunctionDef) {
	c.visitMethod(fn, nil, nil)
}

// visitMethod is shared by top-level defs and methods (class non-nil
// for the latter); it registers the function's declared type, validates
// method shape and override compatibility, walks the body, then
// resolves the return/yield contract.
func (c *Checker) visitMethod(fn *ast.FunctionDef, class *ast.ClassDef, classType *types.Class) {
	scope := c.currentScope()
	c.walkDecorators(fn.Decorators, scope)
	fnType := c.Eval.GetTypeOfFunction(fn, scope)
	c.setDeclaredType(fn.Name, fnType)

	if class != nil {
		c.validateMethodShape(fn, fnType)
		c.validateOverride(fn, fnType, classType)
	}
	c.reportUnknownParameterTypes(fn, fnType)

	fnScope := c.Bound.Scopes[fn]
	c.pushScope(fnScope)
	c.bindParamTypes(fn, fnType, fnScope)
	c.walkBlock(fn.Body)
	c.sweepUnused(fnScope, sweepFunctionKinds)
	c.popScope()

	c.validateReturnContract(fn, fnType)
	c.validateYieldContract(fn, fnType)
}

// walkDecorators type-queries each decorator expression in the scope
// enclosing the decorated def/class (spec.md §4.5's Class/Function
// contracts both require walking decorators), so a decorator referencing
// an imported name — `@mymodule.register`, `@decorator_factory(arg)` —
// marks that name used the same way any other expression does, rather
// than leaving it to the by-name-only matching `hasDecorator` does for
// shape detection (staticmethod/classmethod/abstractmethod).
func (c *Checker) walkDecorators(decorators []ast.Decorator, scope *symbols.Scope) {
	for _, d := range decorators {
		c.Eval.GetType(d.Expression, scope, evaluator.MethodGet, nil, evaluator.FlagNone)
	}
}

// bindParamTypes writes fnType's per-parameter types back onto the
// parameter symbols the binder already created in fnScope, so that Name
// references to a parameter inside the body resolve to its declared (or
// self/cls-inferred, see evaluator.GetTypeOfFunction) type instead of
// falling back to Unknown. This is the walker's "walk parameter names"
// step from spec.md §4.5's Function contract.
func (c *Checker) bindParamTypes(fn *ast.FunctionDef, fnType *types.Function, fnScope *symbols.Scope) {
	for i, p := range fn.Params {
		sym, ok := fnScope.LookupLocal(p.Name)
		if !ok || len(sym.Declarations) == 0 || i >= len(fnType.Params) {
			continue
		}
		sym.Declarations[len(sym.Declarations)-1].DeclaredType = fnType.Params[i].Type
	}
}

// reportUnknownParameterTypes implements the Function node contract of
// spec.md §4.5: every parameter the evaluator could not infer a
// concrete type for (no annotation, no usable default) is reported at
// reportUnknownParameterType, `self`/`cls` exempted since their type is
// always the enclosing class.
func (c *Checker) reportUnknownParameterTypes(fn *ast.FunctionDef, fnType *types.Function) {
	for i, p := range fn.Params {
		if i == 0 && fnType.Flags.ClassMethod {
			continue
		}
		if i == 0 && fn.EnclosingClass != nil && !fnType.Flags.StaticMethod && !fnType.Flags.ClassMethod {
			continue
		}
		if !types.ContainsUnknown(fnType.Params[i].Type) {
			continue
		}
		c.Sink.Report(diagnostics.Diagnostic{
			Rule:    diagnostics.RuleUnknownParameterType,
			Phase:   diagnostics.PhaseDeclaration,
			Message: fmt.Sprintf("parameter %q has an unknown type", p.Name),
			Range:   fn.GetRange(),
		})
	}
}

// setDeclaredType writes classType/fnType back onto the symbol the
// binder already created for this name, so later member/name lookups
// (via symbols.GetEffectiveTypeOfSymbol) see the fully-built shape
// instead of an untyped declaration.
func (c *Checker) setDeclaredType(name string, t types.Type) {
	sym, ok := c.currentScope().LookupLocal(name)
	if !ok || len(sym.Declarations) == 0 {
		return
	}
	sym.Declarations[len(sym.Declarations)-1].DeclaredType = t
}

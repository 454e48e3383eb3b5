// Package binder is the minimal stand-in for the upstream pass spec.md
// treats as an external collaborator (spec.md §1, §3 GLOSSARY
// "Binder"): it walks a parsed module once, building the scope tree and
// symbol tables the checker (internal/checker) consumes, resolving name
// references to symbol ids, and attaching flow-node flags that mark
// unreachable code. It intentionally does not duplicate any of the
// checker's own analysis — no type inference, no validation, no
// diagnostics beyond what is needed to let the checker run at all.
//
// This package exists only because spec.md describes the binder "at its
// interface": something upstream has to actually produce the
// Scope/Symbol/FlowNode data the checker is specified against. Its
// design follows the teacher's own "one registration pass over the
// tree, driven by a switch on node kind" shape (see
// internal/symbols/symbol_table_init.go in the teacher repo), scaled
// down to the handful of binder responsibilities spec.md names.
package binder

import (
	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/symbols"
)

// Result is everything the checker needs from a bound module.
type Result struct {
	ModuleScope *symbols.Scope
	// Scopes maps each Module/ClassDef/FunctionDef/Lambda node to the
	// scope it owns.
	Scopes map[ast.Node]*symbols.Scope
	// ClassScopes maps a class name to its scope, used by override
	// resolution (symbols.GetSymbolFromBaseClasses) to look members up
	// across the class hierarchy without re-walking the AST.
	ClassScopes map[string]*symbols.Scope
}

type binder struct {
	nextID      int
	scopes      map[ast.Node]*symbols.Scope
	classScopes map[string]*symbols.Scope
}

// Bind builds scopes, symbols, and flow information for module.
func Bind(module *ast.Module) *Result {
	b := &binder{
		scopes:      make(map[ast.Node]*symbols.Scope),
		classScopes: make(map[string]*symbols.Scope),
	}
	moduleScope := symbols.NewScope(symbols.ScopeModule, module, nil)
	b.scopes[module] = moduleScope
	b.bindBlock(module.Body, moduleScope)
	markFlow(module.Body)
	return &Result{ModuleScope: moduleScope, Scopes: b.scopes, ClassScopes: b.classScopes}
}

func (b *binder) freshID() int {
	b.nextID++
	return b.nextID
}

func (b *binder) define(scope *symbols.Scope, name string, decl symbols.Declaration) *symbols.Symbol {
	if sym, ok := scope.LookupLocal(name); ok {
		sym.AddDeclaration(decl)
		return sym
	}
	sym := &symbols.Symbol{ID: b.freshID(), Name: name, IsClassMember: scope.Kind == symbols.ScopeClass}
	sym.AddDeclaration(decl)
	scope.Define(sym)
	return sym
}

// bindBlock registers every statement-level declaration in stmts into
// scope, and recurses into nested scopes (classes, functions).
func (b *binder) bindBlock(stmts []ast.Statement, scope *symbols.Scope) {
	for _, stmt := range stmts {
		b.bindStatement(stmt, scope)
	}
}

func (b *binder) bindStatement(stmt ast.Statement, scope *symbols.Scope) {
	switch s := stmt.(type) {
	case *ast.Import:
		for _, n := range s.Names {
			name := n.Alias
			if name == "" {
				name = n.Path[0]
			}
			dotted := joinDots(n.Path)
			b.define(scope, name, symbols.Declaration{Kind: symbols.DeclAlias, Node: s, AliasTarget: dotted, DottedPath: dotted})
		}
	case *ast.ImportFrom:
		for _, n := range s.Names {
			name := n.Alias
			if name == "" {
				name = n.Path[0]
			}
			b.define(scope, name, symbols.Declaration{Kind: symbols.DeclAlias, Node: s, AliasTarget: s.Module, DottedPath: s.Module + "." + n.Path[0]})
		}
	case *ast.FunctionDef:
		b.bindFunctionDef(s, scope, nil)
	case *ast.ClassDef:
		b.bindClassDef(s, scope)
	case *ast.Assign:
		for _, target := range s.Targets {
			b.bindTarget(target, scope, symbols.DeclVariable)
		}
		b.bindExpr(s.Value, scope)
	case *ast.AugAssign:
		b.bindTarget(s.Target, scope, symbols.DeclVariable)
		b.bindExpr(s.Value, scope)
	case *ast.AnnAssign:
		b.bindTarget(s.Target, scope, symbols.DeclVariable)
		b.bindExpr(s.Annotation, scope)
		if s.Value != nil {
			b.bindExpr(s.Value, scope)
		}
	case *ast.Del:
		for _, target := range s.Targets {
			b.bindExpr(target, scope)
		}
	case *ast.Return:
		if s.Value != nil {
			b.bindExpr(s.Value, scope)
		}
	case *ast.Raise:
		if s.Exception != nil {
			b.bindExpr(s.Exception, scope)
		}
		if s.Cause != nil {
			b.bindExpr(s.Cause, scope)
		}
	case *ast.For:
		b.bindExpr(s.Iterable, scope)
		b.bindTarget(s.Target, scope, symbols.DeclVariable)
		b.bindBlock(s.Body, scope)
		b.bindBlock(s.OrElse, scope)
		markFlow(s.Body)
		markFlow(s.OrElse)
	case *ast.While:
		b.bindExpr(s.Condition, scope)
		b.bindBlock(s.Body, scope)
		b.bindBlock(s.OrElse, scope)
		markFlow(s.Body)
		markFlow(s.OrElse)
	case *ast.If:
		b.bindExpr(s.Condition, scope)
		b.bindBlock(s.Body, scope)
		b.bindBlock(s.OrElse, scope)
		markFlow(s.Body)
		markFlow(s.OrElse)
	case *ast.Assert:
		markAssertCondition(s.Condition)
		b.bindExpr(s.Condition, scope)
		if s.Message != nil {
			b.bindExpr(s.Message, scope)
		}
	case *ast.With:
		for _, item := range s.Items {
			b.bindExpr(item.ContextExpr, scope)
			if item.Target != nil {
				b.bindTarget(item.Target, scope, symbols.DeclVariable)
			}
		}
		b.bindBlock(s.Body, scope)
		markFlow(s.Body)
	case *ast.Try:
		b.bindBlock(s.Body, scope)
		markFlow(s.Body)
		for _, h := range s.Handlers {
			if h.Type != nil {
				b.bindExpr(h.Type, scope)
			}
			if h.Name != nil {
				b.bindTarget(h.Name, scope, symbols.DeclVariable)
			}
			b.bindBlock(h.Body, scope)
			markFlow(h.Body)
		}
		b.bindBlock(s.OrElse, scope)
		b.bindBlock(s.Finally, scope)
		markFlow(s.OrElse)
		markFlow(s.Finally)
	case *ast.ExpressionStatement:
		b.bindExpr(s.Expression, scope)
	}
}

func (b *binder) bindTarget(target ast.Expression, scope *symbols.Scope, kind symbols.DeclarationKind) {
	switch t := target.(type) {
	case *ast.Name:
		sym := b.define(scope, t.Value, symbols.Declaration{Kind: kind, Node: t})
		t.SymbolID = sym.ID
	case *ast.TupleExpr:
		for _, e := range t.Elements {
			b.bindTarget(e, scope, kind)
		}
	case *ast.ListExpr:
		for _, e := range t.Elements {
			b.bindTarget(e, scope, kind)
		}
	case *ast.Starred:
		b.bindTarget(t.Value, scope, kind)
	default:
		// Member/index assignment targets (obj.attr = x, arr[i] = x)
		// don't introduce a new symbol; still bind the sub-expressions
		// for reference resolution.
		b.bindExpr(target, scope)
	}
}

func (b *binder) bindFunctionDef(fn *ast.FunctionDef, scope *symbols.Scope, class *ast.ClassDef) {
	fn.EnclosingClass = class
	fn.IsGenerator = containsYield(fn.Body)

	kind := symbols.DeclFunction
	if class != nil {
		kind = symbols.DeclMethod
	}
	b.define(scope, fn.Name, symbols.Declaration{Kind: kind, Node: fn})

	for _, d := range fn.Decorators {
		b.bindExpr(d.Expression, scope)
	}
	if fn.ReturnAnnot != nil {
		b.bindExpr(fn.ReturnAnnot, scope)
	}

	fnScope := symbols.NewScope(symbols.ScopeFunction, fn, scope)
	b.scopes[fn] = fnScope
	for _, p := range fn.Params {
		if p.Annotation != nil {
			b.bindExpr(p.Annotation, scope)
		}
		if p.Default != nil {
			p.Default = markDefaultInitializer(p.Default)
			b.bindExpr(p.Default, scope)
		}
		sym := b.define(fnScope, p.Name, symbols.Declaration{Kind: symbols.DeclParameter, Node: fn})
		_ = sym
	}
	b.bindBlock(fn.Body, fnScope)
	markFlow(fn.Body)
}

func (b *binder) bindClassDef(class *ast.ClassDef, scope *symbols.Scope) {
	b.define(scope, class.Name, symbols.Declaration{Kind: symbols.DeclClass, Node: class})
	for _, d := range class.Decorators {
		b.bindExpr(d.Expression, scope)
	}
	for _, base := range class.Bases {
		b.bindExpr(base, scope)
	}

	classScope := symbols.NewScope(symbols.ScopeClass, class, scope)
	b.scopes[class] = classScope
	b.classScopes[class.Name] = classScope

	for _, stmt := range class.Body {
		if fn, ok := stmt.(*ast.FunctionDef); ok {
			b.bindFunctionDef(fn, classScope, class)
			continue
		}
		b.bindStatement(stmt, classScope)
	}
}

// bindExpr resolves Name references and recurses into sub-expressions.
// It does not define new symbols (targets are handled by bindTarget).
func (b *binder) bindExpr(expr ast.Expression, scope *symbols.Scope) {
	switch e := expr.(type) {
	case nil:
		return
	case *ast.Name:
		if sym, ok := scope.Lookup(e.Value); ok {
			e.SymbolID = sym.ID
		}
	case *ast.MemberAccess:
		b.bindExpr(e.Left, scope)
	case *ast.Call:
		b.bindExpr(e.Function, scope)
		for _, a := range e.Arguments {
			b.bindExpr(a, scope)
		}
		for _, v := range e.Keywords {
			b.bindExpr(v, scope)
		}
	case *ast.Lambda:
		lamScope := symbols.NewScope(symbols.ScopeFunction, e, scope)
		b.scopes[e] = lamScope
		for _, p := range e.Params {
			if p.Default != nil {
				b.bindExpr(p.Default, scope)
			}
			b.define(lamScope, p.Name, symbols.Declaration{Kind: symbols.DeclParameter, Node: e})
		}
		b.bindExpr(e.Body, lamScope)
	case *ast.Yield:
		if e.Value != nil {
			b.bindExpr(e.Value, scope)
		}
	case *ast.YieldFrom:
		b.bindExpr(e.Iterable, scope)
	case *ast.FormatString:
		for _, p := range e.Parts {
			b.bindExpr(p, scope)
		}
	case *ast.ErrorNode:
		if e.Child != nil {
			b.bindExpr(e.Child, scope)
		}
	case *ast.TupleExpr:
		for _, el := range e.Elements {
			b.bindExpr(el, scope)
		}
	case *ast.ListExpr:
		for _, el := range e.Elements {
			b.bindExpr(el, scope)
		}
	case *ast.IndexExpr:
		b.bindExpr(e.Left, scope)
		b.bindExpr(e.Index, scope)
	case *ast.BinOp:
		b.bindExpr(e.Left, scope)
		b.bindExpr(e.Right, scope)
	case *ast.UnaryOp:
		b.bindExpr(e.Operand, scope)
	case *ast.BoolOp:
		for _, v := range e.Values {
			b.bindExpr(v, scope)
		}
	case *ast.Compare:
		b.bindExpr(e.Left, scope)
		for _, c := range e.Comparators {
			b.bindExpr(c, scope)
		}
	case *ast.Conditional:
		b.bindExpr(e.Condition, scope)
		b.bindExpr(e.Body, scope)
		b.bindExpr(e.OrElse, scope)
	case *ast.Starred:
		b.bindExpr(e.Value, scope)
	}
}

func containsYield(stmts []ast.Statement) bool {
	found := false
	var walkExpr func(ast.Expression)
	walkExpr = func(e ast.Expression) {
		if found || e == nil {
			return
		}
		switch v := e.(type) {
		case *ast.Yield, *ast.YieldFrom:
			found = true
		case *ast.BinOp:
			walkExpr(v.Left)
			walkExpr(v.Right)
		case *ast.Call:
			walkExpr(v.Function)
			for _, a := range v.Arguments {
				walkExpr(a)
			}
		case *ast.Conditional:
			walkExpr(v.Condition)
			walkExpr(v.Body)
			walkExpr(v.OrElse)
		}
	}
	var walkStmt func(ast.Statement)
	walkStmt = func(s ast.Statement) {
		if found {
			return
		}
		switch v := s.(type) {
		case *ast.ExpressionStatement:
			walkExpr(v.Expression)
		case *ast.Return:
			walkExpr(v.Value)
		case *ast.Assign:
			walkExpr(v.Value)
		case *ast.If:
			for _, st := range v.Body {
				walkStmt(st)
			}
			for _, st := range v.OrElse {
				walkStmt(st)
			}
		case *ast.For:
			for _, st := range v.Body {
				walkStmt(st)
			}
		case *ast.While:
			for _, st := range v.Body {
				walkStmt(st)
			}
		case *ast.With:
			for _, st := range v.Body {
				walkStmt(st)
			}
		case *ast.Try:
			for _, st := range v.Body {
				walkStmt(st)
			}
			for _, h := range v.Handlers {
				for _, st := range h.Body {
					walkStmt(st)
				}
			}
		}
		// Note: nested FunctionDef/Lambda bodies are NOT walked — a
		// yield inside a nested function belongs to that function, not
		// this one.
	}
	for _, s := range stmts {
		if _, ok := s.(*ast.FunctionDef); ok {
			continue
		}
		walkStmt(s)
	}
	return found
}

func joinDots(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

// markDefaultInitializer tags a parameter default with
// InDefaultInitializer when the default expression itself is a Call, for
// spec.md §4.5's reportCallInDefaultInitializer contract. Calls nested
// deeper inside the default (e.g. `[f()]` or `g(f())`'s inner call) are
// not tagged.
func markDefaultInitializer(expr ast.Expression) ast.Expression {
	if call, ok := expr.(*ast.Call); ok {
		call.InDefaultInitializer = true
	}
	return expr
}

// markAssertCondition tags a top-level Call forming an assert's condition
// with InAssert, per spec.md §4.5.5's "not textually inside an assert"
// exemption for the unnecessary-isinstance-check rule: `assert
// isinstance(x, int)` is the idiomatic way to narrow a type for later
// code, not a redundant check to flag.
func markAssertCondition(expr ast.Expression) {
	if call, ok := expr.(*ast.Call); ok {
		call.InAssert = true
	}
}

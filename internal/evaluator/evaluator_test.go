package evaluator

import (
	"testing"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/binder"
	"github.com/funvibe/pytype/internal/diagnostics"
	"github.com/funvibe/pytype/internal/symbols"
	"github.com/funvibe/pytype/internal/types"
)

func intConst(n string) *ast.Constant { return &ast.Constant{Kind: ast.ConstInt, Str: n} }

func newEvalForModule(module *ast.Module) (*Evaluator, *binder.Result) {
	bound := binder.Bind(module)
	sink := diagnostics.NewCollectingSink("t.py", diagnostics.DefaultSettings())
	ev := New(bound, nil, sink, diagnostics.DefaultSettings())
	return ev, bound
}

func TestGetTypeOfConstantLiteral(t *testing.T) {
	module := &ast.Module{Body: []ast.Statement{}}
	ev, bound := newEvalForModule(module)
	c := intConst("1")
	got := ev.GetType(c, bound.ModuleScope, MethodGet, nil, FlagNone)
	obj, ok := got.(types.Object)
	if !ok || obj.Class.Name != "int" {
		t.Fatalf("expected int object, got %s", types.PrintType(got))
	}
}

func TestGetTypeCachesAcrossPasses(t *testing.T) {
	module := &ast.Module{Body: []ast.Statement{}}
	ev, bound := newEvalForModule(module)
	n := &ast.Name{Value: "x"}
	ev.Bound = bound
	sym := &symbols.Symbol{ID: 1, Name: "x"}
	sym.AddDeclaration(symbols.Declaration{Kind: symbols.DeclVariable, InferredType: types.Unknown{}})
	bound.ModuleScope.Define(sym)

	first := ev.GetType(n, bound.ModuleScope, MethodGet, nil, FlagNone)
	if !types.ContainsUnknown(first) {
		t.Fatalf("expected Unknown from untyped symbol, got %s", types.PrintType(first))
	}

	sym.Declarations[0].InferredType = types.Object{Class: IntClass}
	second := ev.GetType(n, bound.ModuleScope, MethodGet, nil, FlagNone)
	if obj, ok := second.(types.Object); !ok || obj.Class.Name != "int" {
		t.Fatalf("expected narrowing to int, got %s", types.PrintType(second))
	}
}

func TestBindNameTargetRejectsIncompatibleDeclaredType(t *testing.T) {
	module := &ast.Module{Body: []ast.Statement{}}
	sink := diagnostics.NewCollectingSink("t.py", diagnostics.DefaultSettings())
	ev := New(nil, nil, sink, diagnostics.DefaultSettings())
	scope := symbols.NewScope(symbols.ScopeModule, module, nil)
	sym := &symbols.Symbol{ID: 1, Name: "x"}
	sym.AddDeclaration(symbols.Declaration{Kind: symbols.DeclVariable, DeclaredType: types.Object{Class: IntClass}})
	scope.Define(sym)

	name := &ast.Name{Value: "x"}
	ev.bindNameTarget(name, types.Object{Class: StrClass}, scope)

	found := sink.Diagnostics()
	if len(found) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(found))
	}
	if found[0].Rule != diagnostics.RuleGeneralTypeIssues {
		t.Fatalf("expected reportGeneralTypeIssues, got %s", found[0].Rule)
	}
}

func TestGetTypeOfAnnotationResolvesOptional(t *testing.T) {
	module := &ast.Module{Body: []ast.Statement{}}
	ev, bound := newEvalForModule(module)
	annotation := &ast.IndexExpr{
		Left:  &ast.Name{Value: "Optional"},
		Index: &ast.Name{Value: "int"},
	}
	got := ev.GetTypeOfAnnotation(annotation, bound.ModuleScope)
	union, ok := got.(types.Union)
	if !ok || len(union.Subtypes) != 2 {
		t.Fatalf("expected a two-member union, got %s", types.PrintType(got))
	}
}

func TestGetTypeOfAnnotationSpecializesGeneric(t *testing.T) {
	module := &ast.Module{Body: []ast.Statement{}}
	ev, bound := newEvalForModule(module)
	annotation := &ast.IndexExpr{
		Left:  &ast.Name{Value: "list"},
		Index: &ast.Name{Value: "str"},
	}
	got := ev.GetTypeOfAnnotation(annotation, bound.ModuleScope)
	obj, ok := got.(types.Object)
	if !ok || obj.Class.Name != "list" || len(obj.Class.TypeArgs) != 1 {
		t.Fatalf("expected list[str], got %s", types.PrintType(got))
	}
	if obj.Class.TypeArgs[0].String() != "str" {
		t.Fatalf("expected element type str, got %s", obj.Class.TypeArgs[0])
	}
}

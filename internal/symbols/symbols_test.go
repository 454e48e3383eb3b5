package symbols

import (
	"testing"

	"github.com/funvibe/pytype/internal/types"
)

func TestGetEffectiveTypeOfSymbolPrefersLastTypedDeclaration(t *testing.T) {
	sym := &Symbol{Name: "x"}
	sym.AddDeclaration(Declaration{Kind: DeclVariable, InferredType: types.Object{Class: &types.Class{Name: "int"}}})
	sym.AddDeclaration(Declaration{Kind: DeclVariable, DeclaredType: types.Object{Class: &types.Class{Name: "str"}}})

	got := GetEffectiveTypeOfSymbol(sym, nil)
	if got.String() != "str" {
		t.Errorf("GetEffectiveTypeOfSymbol = %s, want str", got.String())
	}
}

func TestGetEffectiveTypeOfSymbolUnionsUntypedInference(t *testing.T) {
	sym := &Symbol{Name: "x"}
	sym.AddDeclaration(Declaration{Kind: DeclVariable, InferredType: types.Object{Class: &types.Class{Name: "int"}}})
	sym.AddDeclaration(Declaration{Kind: DeclVariable, InferredType: types.Object{Class: &types.Class{Name: "str"}}})

	got := GetEffectiveTypeOfSymbol(sym, nil)
	if got.String() != "int | str" {
		t.Errorf("GetEffectiveTypeOfSymbol = %s, want 'int | str'", got.String())
	}
}

func TestScopeLookupWalksParents(t *testing.T) {
	module := NewScope(ScopeModule, nil, nil)
	module.Define(&Symbol{ID: 1, Name: "g"})
	fn := NewScope(ScopeFunction, nil, module)

	if _, ok := fn.LookupLocal("g"); ok {
		t.Errorf("LookupLocal should not see parent-scope symbols")
	}
	if _, ok := fn.Lookup("g"); !ok {
		t.Errorf("Lookup should walk to the parent module scope")
	}
}

func TestGetSymbolFromBaseClassesWalksMRO(t *testing.T) {
	base := &types.Class{Name: "Base"}
	mid := &types.Class{Name: "Mid", Bases: []*types.Class{base}}
	leaf := &types.Class{Name: "Leaf", Bases: []*types.Class{mid}}

	baseScope := NewScope(ScopeClass, nil, nil)
	baseScope.Define(&Symbol{Name: "method"})
	scopes := map[string]*Scope{"Base": baseScope}

	sym, found := GetSymbolFromBaseClasses(leaf, "method", scopes)
	if sym == nil || found.Name != "Base" {
		t.Errorf("expected to find 'method' on Base via Leaf's MRO")
	}
}

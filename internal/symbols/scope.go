package symbols

import "github.com/funvibe/pytype/internal/ast"

// ScopeKind is one of the four scope flavors spec.md §3 names.
type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeClass
	ScopeFunction
	ScopeListComprehension
)

// Scope owns a symbol table and a parent pointer; scopes form a tree
// rooted at the module scope, and lookup walks parents — the same
// parent-chain model the teacher's symbols package uses for its
// ScopeType (ScopePrelude/ScopeGlobal/ScopeFunction/ScopeBlock), renamed
// to the four kinds spec.md's data model names.
type Scope struct {
	Kind   ScopeKind
	Owner  ast.Node // the Module/ClassDef/FunctionDef/comprehension node this scope belongs to
	Parent *Scope
	table  map[string]*Symbol
	order  []string // insertion order, for deterministic iteration (spec.md §5 determinism)
}

// NewScope creates an empty scope owned by the given node, chained to
// parent (nil for the module scope).
func NewScope(kind ScopeKind, owner ast.Node, parent *Scope) *Scope {
	return &Scope{Kind: kind, Owner: owner, Parent: parent, table: make(map[string]*Symbol)}
}

// Define adds sym to this scope's own table, keyed by sym.Name.
func (s *Scope) Define(sym *Symbol) {
	if _, exists := s.table[sym.Name]; !exists {
		s.order = append(s.order, sym.Name)
	}
	s.table[sym.Name] = sym
}

// LookupLocal finds a symbol defined directly in this scope, without
// walking parents.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.table[name]
	return sym, ok
}

// Lookup finds a symbol by walking this scope then its ancestors.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.table[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Symbols returns every symbol defined directly in this scope, in
// deterministic (insertion) order.
func (s *Scope) Symbols() []*Symbol {
	result := make([]*Symbol, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.table[name])
	}
	return result
}

// IsDefined reports whether name is bound anywhere in this scope chain.
func (s *Scope) IsDefined(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Package symbols implements the symbol and declaration model (spec.md
// §3, §4.2 / component C2), grounded on the teacher's internal/symbols
// package: a Symbol carries a Kind plus bookkeeping flags, and — per the
// teacher's own symbol_table_core.go — the definition site is tracked via
// a DefinitionNode field for scoped lookups. The teacher's Symbol is a
// single declaration; spec.md's model instead keeps one Symbol per name
// with a *list* of Declarations (to support redeclaration / multiple
// assignment sites), which is the one place this package departs from
// the teacher's shape to follow spec.md §3 exactly.
package symbols

import (
	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/types"
)

// DeclarationKind tags what introduced a name.
type DeclarationKind int

const (
	DeclAlias DeclarationKind = iota
	DeclVariable
	DeclParameter
	DeclFunction
	DeclMethod
	DeclClass
)

func (k DeclarationKind) String() string {
	switch k {
	case DeclAlias:
		return "alias"
	case DeclVariable:
		return "variable"
	case DeclParameter:
		return "parameter"
	case DeclFunction:
		return "function"
	case DeclMethod:
		return "method"
	case DeclClass:
		return "class"
	default:
		return "unknown"
	}
}

// Declaration is one specific introduction of a name.
type Declaration struct {
	Kind DeclarationKind
	Node ast.Node // the parse node that introduced it

	// DeclaredType is the explicit annotation, if any (nil for untyped
	// variable/parameter declarations).
	DeclaredType types.Type

	// InferredType is filled in once the evaluator has computed a type
	// for an untyped declaration (e.g. `x = 1`).
	InferredType types.Type

	// AliasTarget is set for DeclAlias: the dotted module path this
	// import ultimately names, before following re-exports.
	AliasTarget string
	// DottedPath is the full `import a.b.c` path for diagnostic
	// formatting (spec.md §4.5.1 unused-import message).
	DottedPath string
}

// EffectiveType returns the declared type if present, else the inferred
// type, else Unknown.
func (d Declaration) EffectiveType() types.Type {
	if d.DeclaredType != nil {
		return d.DeclaredType
	}
	if d.InferredType != nil {
		return d.InferredType
	}
	return types.Unknown{}
}

// Symbol is a stable-id'd name binding with its declaration history.
type Symbol struct {
	ID           int
	Name         string
	Declarations []Declaration

	IgnoredForProtocolMatch bool
	IsClassMember           bool
}

// LastDeclaration returns the most recently added declaration, or the
// zero Declaration if none exist yet.
func (s *Symbol) LastDeclaration() Declaration {
	if len(s.Declarations) == 0 {
		return Declaration{}
	}
	return s.Declarations[len(s.Declarations)-1]
}

// AddDeclaration appends a new declaration site for this symbol.
func (s *Symbol) AddDeclaration(d Declaration) {
	s.Declarations = append(s.Declarations, d)
}

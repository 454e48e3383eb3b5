// Package types implements the type lattice (spec.md §3, §4.1 / component
// C1): representation, equality, subsumption, assignability, union
// combination, and specialization. It is grounded on the teacher's own
// typesystem package (internal/typesystem/types.go) — same shape of a
// small sum-typed Type interface with String/Apply/FreeTypeVariables,
// same "canonicalize unions by flatten+dedup+sort" discipline in
// NormalizeUnion/Combine — adapted from the teacher's Hindley-Milner
// lattice (TVar/TCon/TApp/TFunc/TUnion/TForall) to the spec's nominal
// gradual-typing lattice (Unknown/Any/None/Never/Class/Object/Function/
// Union).
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the sum type every concrete type in the lattice implements.
type Type interface {
	String() string
	category() category
}

type category int

const (
	catUnknown category = iota
	catAny
	catNone
	catNever
	catClass
	catObject
	catFunction
	catUnion
)

// Unknown is the "unannotated, not yet inferred" placeholder. It
// propagates through operations the same way Any does for display but is
// tracked separately so ContainsUnknown can flag it for diagnostics like
// reportUnknownParameterType.
type Unknown struct{}

func (Unknown) String() string    { return "Unknown" }
func (Unknown) category() category { return catUnknown }

// Any is the explicit escape hatch: assignable to and from everything.
type Any struct{}

func (Any) String() string    { return "Any" }
func (Any) category() category { return catAny }

// None is the singleton absence value.
type None struct{}

func (None) String() string    { return "None" }
func (None) category() category { return catNone }

// Never (a.k.a. NoReturn at the declared-type level) is the empty type.
type Never struct{}

func (Never) String() string    { return "Never" }
func (Never) category() category { return catNever }

// ClassFlags are the boolean facets of a Class relevant to the checker.
type ClassFlags struct {
	Abstract   bool
	Builtin    bool
	TypedDict  bool
	Enum       bool
}

// Field is one member of a Class's declared shape, used by canAssign's
// structural checks on TypedDict/Protocol-like classes and by override
// lookup.
type Field struct {
	Name string
	Type Type
}

// Class is a class considered as a first-class value (e.g. the
// right-hand side of `isinstance(x, int)`'s second argument, or the
// type of a bare class reference). Identity is nominal: two Class values
// are the same class iff Name matches (spec.md §9 cyclic-class-graph
// note — classes are compared nominally on identity).
type Class struct {
	Name       string
	Bases      []*Class
	Fields     []Field
	TypeParams []string
	TypeArgs   []Type // nil unless specialized
	Flags      ClassFlags
}

func (c *Class) String() string {
	if len(c.TypeArgs) == 0 {
		return c.Name
	}
	args := make([]string, len(c.TypeArgs))
	for i, a := range c.TypeArgs {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", c.Name, strings.Join(args, ", "))
}
func (*Class) category() category { return catClass }

// FindField looks up a field by name in this class only (no MRO walk;
// callers that need inherited fields use DerivesFromClassRecursive plus
// a manual walk, mirroring the teacher's getSymbolFromBaseClasses which
// also walks explicitly rather than baking MRO into the type itself).
func (c *Class) FindField(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Object is an *instance of* a Class. Object(C) and C are never equal
// (spec.md §3 invariant) — they are distinct concrete types, which is
// why Object wraps rather than reuses *Class.
type Object struct {
	Class *Class
}

func (o Object) String() string    { return o.Class.String() }
func (Object) category() category { return catObject }

// FunctionFlags are the boolean facets of Function relevant to method
// shape / override validation (spec.md §4.5.2, §4.5.3).
type FunctionFlags struct {
	Generator     bool
	StaticMethod  bool
	ClassMethod   bool
	AbstractMethod bool
}

// Param is one parameter of a Function type.
type Param struct {
	Name     string
	Type     Type
	HasDefault bool
	Category ParamCategory
}

// ParamCategory mirrors ast.ParamCategory without importing ast (types
// must stay below ast in the dependency graph).
type ParamCategory int

const (
	ParamSimple ParamCategory = iota
	ParamArgsList
	ParamKwargsDict
)

// Function is a callable's type: parameters plus a declared and/or
// inferred return type. Declared wins when present; Inferred is filled
// in by the return-contract validation (spec.md §4.5.4) for
// unannotated functions.
type Function struct {
	Params         []Param
	DeclaredReturn Type // nil if undeclared
	InferredReturn Type // nil until computed
	// YieldType is the declared or inferred Y of Generator[Y, S, R] /
	// Iterator[Y], used by yield validation (spec.md §4.5, §9).
	YieldType Type
	Flags     FunctionFlags
}

// ReturnType returns DeclaredReturn if present, else InferredReturn, else
// Unknown — the "effective" return type external callers see.
func (f *Function) ReturnType() Type {
	if f.DeclaredReturn != nil {
		return f.DeclaredReturn
	}
	if f.InferredReturn != nil {
		return f.InferredReturn
	}
	return Unknown{}
}

func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		s := p.Type.String()
		switch p.Category {
		case ParamArgsList:
			s = "*" + s
		case ParamKwargsDict:
			s = "**" + s
		}
		if p.HasDefault {
			s += " = ..."
		}
		params[i] = s
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), f.ReturnType().String())
}
func (*Function) category() category { return catFunction }

// Union is a canonicalized union of two or more subtypes: no nested
// unions, no duplicates up to structural equality, deterministically
// ordered (spec.md §3 invariants). Construct via Combine, never directly.
type Union struct {
	Subtypes []Type
}

func (u Union) String() string {
	parts := make([]string, len(u.Subtypes))
	for i, t := range u.Subtypes {
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}
func (Union) category() category { return catUnion }

// Combine builds the canonical union of the given types: it flattens
// nested unions, deduplicates structurally-equal members, and collapses
// a single remaining member to itself. Never is the identity element
// (dropped unless it is the only member); Any absorbs everything other
// than itself only for assignability purposes, not here — Combine keeps
// Any visible in the display form per spec.md §3 ("collapses to Any on
// assignment checks but not on display").
//
// Grounded on the teacher's typesystem.NormalizeUnion: same
// flatten-dedupe-sort-collapse structure, swapped to this lattice's
// members and the Never-is-identity / single-member-collapse rules
// spec.md calls out explicitly.
func Combine(ts ...Type) Type {
	flat := make([]Type, 0, len(ts))
	for _, t := range ts {
		if t == nil {
			continue
		}
		if u, ok := t.(Union); ok {
			flat = append(flat, u.Subtypes...)
		} else {
			flat = append(flat, t)
		}
	}

	nonNever := make([]Type, 0, len(flat))
	for _, t := range flat {
		if _, ok := t.(Never); ok {
			continue
		}
		nonNever = append(nonNever, t)
	}
	if len(nonNever) == 0 {
		return Never{}
	}

	seen := make(map[string]bool)
	unique := make([]Type, 0, len(nonNever))
	for _, t := range nonNever {
		key := canonicalKey(t)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, t)
		}
	}

	if len(unique) == 1 {
		return unique[0]
	}

	sort.Slice(unique, func(i, j int) bool { return unique[i].String() < unique[j].String() })
	return Union{Subtypes: unique}
}

// IsTypeSame is structural equality, used for declared-type consistency
// checks (spec.md "Assignment"/"TypeAnnotation" node contracts).
func IsTypeSame(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return canonicalKey(a) == canonicalKey(b)
}

func canonicalKey(t Type) string {
	switch v := t.(type) {
	case Union:
		parts := make([]string, len(v.Subtypes))
		for i, s := range v.Subtypes {
			parts[i] = canonicalKey(s)
		}
		sort.Strings(parts)
		return "U(" + strings.Join(parts, ",") + ")"
	case *Class:
		// Object(C) displays as C's name too; the prefix keeps the class
		// itself distinct from its instances.
		return "class " + v.String()
	default:
		return t.String()
	}
}

// ContainsUnknown reports whether Unknown appears anywhere in t
// (including inside a union or a function's params/return).
func ContainsUnknown(t Type) bool {
	switch v := t.(type) {
	case nil:
		return false
	case Unknown:
		return true
	case Union:
		for _, s := range v.Subtypes {
			if ContainsUnknown(s) {
				return true
			}
		}
		return false
	case *Function:
		if ContainsUnknown(v.ReturnType()) {
			return true
		}
		for _, p := range v.Params {
			if ContainsUnknown(p.Type) {
				return true
			}
		}
		return false
	case Object:
		for _, a := range v.Class.TypeArgs {
			if ContainsUnknown(a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// PrintType renders a type deterministically and stably across passes
// (spec.md §4.1).
func PrintType(t Type) string {
	if t == nil {
		return "Unknown"
	}
	return t.String()
}

// TransformTypeObjectToClass turns `Object(class Type)` — the value a
// bare class reference like the builtin `int` evaluates to — into the
// underlying Class, per spec.md §4.1. In this lattice a bare class
// reference is represented directly as *Class, so this is only needed
// when a Class has been wrapped (e.g. a class stored as the payload of
// a generic `Type[C]` alias, modeled here as Object{Class: metaclass}
// whose sole type argument is the real class). Returns t unchanged
// otherwise.
func TransformTypeObjectToClass(t Type) Type {
	if obj, ok := t.(Object); ok && obj.Class.Name == "type" && len(obj.Class.TypeArgs) == 1 {
		if c, ok := obj.Class.TypeArgs[0].(*Class); ok {
			return c
		}
	}
	return t
}

// DoForSubtypes maps f over the members of a union (or applies it
// directly to a non-union type) and recombines the results with Combine.
func DoForSubtypes(t Type, f func(Type) Type) Type {
	if u, ok := t.(Union); ok {
		mapped := make([]Type, len(u.Subtypes))
		for i, s := range u.Subtypes {
			mapped[i] = f(s)
		}
		return Combine(mapped...)
	}
	return f(t)
}

// GetSpecializedTupleType returns t if it is an Object of the builtin
// tuple class carrying per-slot TypeArgs, else nil.
func GetSpecializedTupleType(t Type) *Class {
	obj, ok := t.(Object)
	if !ok {
		return nil
	}
	if obj.Class.Name == "tuple" && len(obj.Class.TypeArgs) > 0 {
		return obj.Class
	}
	return nil
}

package evaluator

import "github.com/funvibe/pytype/internal/types"

// Builtin classes are shared, stateless *types.Class values: since
// types.Class identity is nominal (spec.md §9: classes compare by
// name), every evaluator in the process can point at the same few
// builtin class values rather than constructing fresh ones per literal.
var (
	IntClass   = &types.Class{Name: "int", Flags: types.ClassFlags{Builtin: true}}
	FloatClass = &types.Class{Name: "float", Bases: []*types.Class{IntClass}, Flags: types.ClassFlags{Builtin: true}}
	BoolClass  = &types.Class{Name: "bool", Bases: []*types.Class{IntClass}, Flags: types.ClassFlags{Builtin: true}}
	StrClass   = &types.Class{Name: "str", Flags: types.ClassFlags{Builtin: true}}
	BytesClass = &types.Class{Name: "bytes", Flags: types.ClassFlags{Builtin: true}}
	ListClass  = &types.Class{Name: "list", TypeParams: []string{"T"}, Flags: types.ClassFlags{Builtin: true}}
	DictClass  = &types.Class{Name: "dict", TypeParams: []string{"K", "V"}, Flags: types.ClassFlags{Builtin: true}}
	TupleClass = &types.Class{Name: "tuple", TypeParams: []string{"T"}, Flags: types.ClassFlags{Builtin: true}}
	SetClass   = &types.Class{Name: "set", TypeParams: []string{"T"}, Flags: types.ClassFlags{Builtin: true}}
	ObjectClass = &types.Class{Name: "object", Flags: types.ClassFlags{Builtin: true}}

	// BaseExceptionClass/ExceptionClass ground spec.md §4.5's Raise
	// contract: every class or instance a `raise` statement names must
	// derive from BaseException. Exception is the common subclass most
	// user exception classes actually derive from.
	BaseExceptionClass = &types.Class{Name: "BaseException", Flags: types.ClassFlags{Builtin: true}}
	ExceptionClass      = &types.Class{Name: "Exception", Bases: []*types.Class{BaseExceptionClass}, Flags: types.ClassFlags{Builtin: true}}
)

// listOf/dictOf/tupleOf build a specialized Object of the corresponding
// builtin container class, used when inferring literal expressions
// (spec.md §4.4's ListExpr/TupleExpr contracts).
func listOf(elem types.Type) types.Object {
	c := *ListClass
	c.TypeArgs = []types.Type{elem}
	return types.Object{Class: &c}
}

func tupleOf(elems ...types.Type) types.Object {
	c := *TupleClass
	c.TypeArgs = elems
	return types.Object{Class: &c}
}

// builtinTypingModule supplies the canonical generic aliases
// GetTypingType resolves: Iterator[Y], Generator[Y, S, R], NoReturn.
// These are represented as template Class values whose TypeParams name
// the slots a subscript specializes (types.Specialize fills them in).
func builtinTypingModule() map[string]types.Type {
	iterator := &types.Class{Name: "Iterator", TypeParams: []string{"Y"}, Flags: types.ClassFlags{Builtin: true}}
	generator := &types.Class{Name: "Generator", TypeParams: []string{"Y", "S", "R"}, Flags: types.ClassFlags{Builtin: true}}
	return map[string]types.Type{
		"Iterator":  iterator,
		"Generator": generator,
		"NoReturn":  types.Never{},
		"Any":       types.Any{},
		"None":      types.None{},
	}
}

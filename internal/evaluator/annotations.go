package evaluator

import (
	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/symbols"
	"github.com/funvibe/pytype/internal/types"
)

// GetTypeOfAnnotation evaluates an expression used in annotation
// position (a parameter/return/variable annotation) to the type it
// names, per spec.md §4.4. This is a distinct code path from GetType:
// in annotation position a bare class name denotes "instances of this
// class", not "the class object itself" — `x: int` means x holds an
// int instance, while a bare `int` used as an ordinary expression (the
// second argument to isinstance) denotes the class object.
//
// Not modeled: Callable[...], Literal[...] value-level literals,
// ParamSpec/Concatenate, and TypeVar-scoped generics beyond simple
// per-class TypeParams substitution — these are acknowledged gaps
// (spec.md §9), not silently-wrong guesses; unresolved forms fall back
// to Unknown.
func (e *Evaluator) GetTypeOfAnnotation(expr ast.Expression, scope *symbols.Scope) types.Type {
	if bin, ok := expr.(*ast.BinOp); ok && bin.Op == "|" {
		left := e.GetTypeOfAnnotation(bin.Left, scope)
		right := e.GetTypeOfAnnotation(bin.Right, scope)
		return types.Combine(left, right)
	}
	return e.wrapAnnotationResult(e.resolveAnnotationClass(expr, scope))
}

// GetTypeOfAnnotationText handles a forward-reference string literal
// used in annotation position (`x: "Foo"`): the string's contents name
// a class the same way a bare identifier would.
func (e *Evaluator) GetTypeOfAnnotationText(n *ast.StringList, scope *symbols.Scope) types.Type {
	return e.wrapAnnotationResult(e.resolveAnnotationClassByName(n.Value, scope))
}

func (e *Evaluator) wrapAnnotationResult(resolved types.Type) types.Type {
	if class, ok := resolved.(*types.Class); ok {
		return types.Object{Class: class}
	}
	return resolved
}

// resolveAnnotationClass returns the "raw" annotation referent: a
// *types.Class for anything naming a class (to be wrapped in Object by
// the caller), or an already-final type (None/Any/Never/Union-of-Object)
// for the special forms that don't name a class at all.
func (e *Evaluator) resolveAnnotationClass(expr ast.Expression, scope *symbols.Scope) types.Type {
	switch n := expr.(type) {
	case *ast.Name:
		return e.resolveAnnotationClassByName(n.Value, scope)
	case *ast.MemberAccess:
		if t, ok := e.typingModule[n.Member]; ok {
			return t
		}
		return e.resolveAnnotationClass(n.Left, scope)
	case *ast.Constant:
		if n.Kind == ast.ConstNone {
			return types.None{}
		}
		return types.Unknown{}
	case *ast.StringList:
		return e.resolveAnnotationClassByName(n.Value, scope)
	case *ast.IndexExpr:
		return e.resolveSubscriptAnnotation(n, scope)
	default:
		return types.Unknown{}
	}
}

func (e *Evaluator) resolveAnnotationClassByName(name string, scope *symbols.Scope) types.Type {
	switch name {
	case "Any":
		return types.Any{}
	case "None", "NoneType":
		return types.None{}
	case "NoReturn", "Never":
		return types.Never{}
	}
	if builtin, ok := builtinClassByName(name); ok {
		return builtin
	}
	if t, ok := e.typingModule[name]; ok {
		return t
	}
	if scope == nil {
		return types.Unknown{}
	}
	sym, ok := scope.Lookup(name)
	if !ok {
		return types.Unknown{}
	}
	// An annotation referencing an imported name is a real read of that
	// name, the same as any other expression — without this, an import
	// used only in annotation position would be wrongly flagged as
	// unused (spec.md §4.5.1).
	e.markUsed(sym.ID)
	t := symbols.GetEffectiveTypeOfSymbol(sym, e.SymbolImports)
	if class, ok := t.(*types.Class); ok {
		return class
	}
	return types.Unknown{}
}

func builtinClassByName(name string) (*types.Class, bool) {
	switch name {
	case "int":
		return IntClass, true
	case "float":
		return FloatClass, true
	case "bool":
		return BoolClass, true
	case "str":
		return StrClass, true
	case "bytes":
		return BytesClass, true
	case "list", "List":
		return ListClass, true
	case "dict", "Dict":
		return DictClass, true
	case "tuple", "Tuple":
		return TupleClass, true
	case "set", "Set":
		return SetClass, true
	case "object":
		return ObjectClass, true
	case "BaseException":
		return BaseExceptionClass, true
	case "Exception":
		return ExceptionClass, true
	default:
		return nil, false
	}
}

// resolveSubscriptAnnotation handles `Left[Index]`: the typing special
// forms Union/Optional, and ordinary generic specialization (List[int],
// Dict[str, int], Iterator[Y], ...).
func (e *Evaluator) resolveSubscriptAnnotation(n *ast.IndexExpr, scope *symbols.Scope) types.Type {
	if name, ok := n.Left.(*ast.Name); ok {
		switch name.Value {
		case "Union":
			return e.combineAnnotationArgs(n.Index, scope)
		case "Optional":
			inner := e.GetTypeOfAnnotation(n.Index, scope)
			return types.Combine(inner, types.None{})
		}
	}
	leftResolved := e.resolveAnnotationClass(n.Left, scope)
	template, ok := leftResolved.(*types.Class)
	if !ok {
		return types.Unknown{}
	}
	args := e.annotationArgList(n.Index, scope)
	if len(template.TypeParams) == 0 || len(args) == 0 {
		specialized := *template
		specialized.TypeArgs = args
		return &specialized
	}
	bindings := make(types.TypeVarMap, len(template.TypeParams))
	for i, p := range template.TypeParams {
		if i < len(args) {
			bindings[p] = args[i]
		}
	}
	return types.Specialize(template, bindings)
}

func (e *Evaluator) annotationArgList(index ast.Expression, scope *symbols.Scope) []types.Type {
	if tuple, ok := index.(*ast.TupleExpr); ok {
		out := make([]types.Type, len(tuple.Elements))
		for i, el := range tuple.Elements {
			out[i] = e.GetTypeOfAnnotation(el, scope)
		}
		return out
	}
	return []types.Type{e.GetTypeOfAnnotation(index, scope)}
}

func (e *Evaluator) combineAnnotationArgs(index ast.Expression, scope *symbols.Scope) types.Type {
	args := e.annotationArgList(index, scope)
	return types.Combine(args...)
}

// IsAnnotationLiteralValue reports whether value, used as a subscript
// argument of `Literal[...]`, denotes a literal value rather than a
// forward-referenced type name (spec.md §4.4). StringList already
// carries this distinction from the (out-of-scope) parser; a bare
// Constant in that position is always a literal value.
func IsAnnotationLiteralValue(value ast.Expression) bool {
	switch v := value.(type) {
	case *ast.StringList:
		return v.IsAnnotationLiteral
	case *ast.Constant:
		return true
	default:
		return false
	}
}

// GetDeclaredTypeForExpression returns the explicit declared type
// behind a Name expression, distinct from GetType's effective-type
// result which also considers inference: callers that must know
// "was this annotated at all" (e.g. the unknown-parameter-type check)
// use this instead.
func (e *Evaluator) GetDeclaredTypeForExpression(expr ast.Expression, scope *symbols.Scope) (types.Type, bool) {
	name, ok := expr.(*ast.Name)
	if !ok {
		return nil, false
	}
	sym, ok := scope.Lookup(name.Value)
	if !ok {
		return nil, false
	}
	decl, ok := symbols.GetLastTypedDeclaredForSymbol(sym)
	if !ok {
		return nil, false
	}
	return symbols.ResolveDeclaredType(decl, e.SymbolImports), true
}

// GetTypingType resolves a name against the builtin typing-module stand
// in (Iterator/Generator/NoReturn/Any/None) used for yield/generator
// contracts (spec.md §4.5's yield node contract).
func (e *Evaluator) GetTypingType(name string) (types.Type, bool) {
	t, ok := e.typingModule[name]
	return t, ok
}

// TransformTypeForPossibleEnumClass rewrites a class-body assignment's
// inferred value type to Object(enclosingClass) when enclosingClass is
// an enum: `class Color(Enum): RED = 1` types RED as Color, not int
// (spec.md §4.4).
func (e *Evaluator) TransformTypeForPossibleEnumClass(valueType types.Type, enclosingClass *types.Class) types.Type {
	if enclosingClass == nil || !enclosingClass.Flags.Enum {
		return valueType
	}
	return types.Object{Class: enclosingClass}
}

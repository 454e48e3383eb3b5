package evaluator

import (
	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/symbols"
	"github.com/funvibe/pytype/internal/types"
)

// GetTypeOfClass builds the structural types.Class for a class
// declaration: bases, declared fields (from class-body annotated
// assignments), and the Enum/TypedDict/Abstract flags the checker's
// method-shape and override rules key off. The checker calls this once
// per class during the declaration phase (spec.md §5) and stores the
// result as the class symbol's declared type, before any method body is
// analyzed — so MemberAccess lookups during the body phase always see a
// fully-built class shape, never a partial one.
func (e *Evaluator) GetTypeOfClass(class *ast.ClassDef, scope *symbols.Scope) *types.Class {
	if cached, ok := e.classTypes[class]; ok {
		return cached
	}
	result := &types.Class{Name: class.Name}
	// Register early (even before bases/fields are filled in) so a
	// self-referential or mutually-recursive class graph terminates
	// instead of recursing forever (spec.md §9's cyclic-class-graph note).
	e.classTypes[class] = result

	for _, baseExpr := range class.Bases {
		if name, ok := baseExpr.(*ast.Name); ok {
			switch name.Value {
			case "Enum", "IntEnum":
				result.Flags.Enum = true
				continue
			case "TypedDict":
				class.IsTypedDict = true
				continue
			case "ABC":
				result.Flags.Abstract = true
				continue
			}
		}
		// resolveAnnotationClass (not the by-name-only lookup) so a base
		// named through a member access (`module.Base`) or a subscripted
		// generic (`Generic[T]`, `Protocol[T]`) resolves to its class the
		// same way an annotation referencing it would, instead of being
		// silently skipped.
		baseType := e.resolveAnnotationClass(baseExpr, scope)
		if baseClass, ok := baseType.(*types.Class); ok {
			result.Bases = append(result.Bases, baseClass)
		}
	}

	for _, stmt := range class.Body {
		ann, ok := stmt.(*ast.AnnAssign)
		if !ok {
			continue
		}
		target, ok := ann.Target.(*ast.Name)
		if !ok {
			continue
		}
		fieldType := e.GetTypeOfAnnotation(ann.Annotation, scope)
		if result.Flags.Enum {
			fieldType = types.Object{Class: result}
		}
		result.Fields = append(result.Fields, types.Field{Name: target.Value, Type: fieldType})
	}

	for _, stmt := range class.Body {
		fn, ok := stmt.(*ast.FunctionDef)
		if ok && hasDecorator(fn.Decorators, "abstractmethod") {
			result.Flags.Abstract = true
		}
	}

	return result
}

// GetTypeOfFunction builds the structural types.Function for a
// def-statement: parameter types (from annotations, Unknown otherwise),
// declared return type, and the static/class/generator/abstract flags
// method-shape and override validation need.
func (e *Evaluator) GetTypeOfFunction(fn *ast.FunctionDef, scope *symbols.Scope) *types.Function {
	if cached, ok := e.functionTypes[fn]; ok {
		return cached
	}
	isStatic := hasDecorator(fn.Decorators, "staticmethod")
	isClassMethod := hasDecorator(fn.Decorators, "classmethod")

	params := make([]types.Param, len(fn.Params))
	for i, p := range fn.Params {
		t := types.Type(types.Unknown{})
		if p.Annotation != nil {
			t = e.GetTypeOfAnnotation(p.Annotation, scope)
		} else if p.Default != nil {
			t = e.GetType(p.Default, scope, MethodGet, nil, FlagNone)
		} else if i == 0 && fn.EnclosingClass != nil && !isStatic {
			// Unannotated self/cls: its type is the enclosing class itself
			// (spec.md §4.5.2 treats self/cls specially; without this, a
			// method's own `self.attr` accesses would never resolve, since
			// nothing else ever types the first parameter).
			if owner, ok := e.classTypes[fn.EnclosingClass]; ok && owner != nil {
				if isClassMethod {
					t = owner
				} else {
					t = types.Object{Class: owner}
				}
			}
		}
		params[i] = types.Param{
			Name:       p.Name,
			Type:       t,
			HasDefault: p.Default != nil,
			Category:   convertParamCategory(p.Category),
		}
	}

	var declaredReturn types.Type
	if fn.ReturnAnnot != nil {
		declaredReturn = e.GetTypeOfAnnotation(fn.ReturnAnnot, scope)
	}

	result := &types.Function{
		Params:         params,
		DeclaredReturn: declaredReturn,
		Flags: types.FunctionFlags{
			Generator:      fn.IsGenerator,
			StaticMethod:   isStatic,
			ClassMethod:    isClassMethod,
			AbstractMethod: hasDecorator(fn.Decorators, "abstractmethod"),
		},
	}
	if fn.IsGenerator {
		result.YieldType = yieldTypeFromReturnAnnotation(declaredReturn)
	}
	e.functionTypes[fn] = result
	return result
}

// yieldTypeFromReturnAnnotation extracts Y from a declared
// Iterator[Y]/Generator[Y, S, R] return annotation, or Unknown if the
// return isn't annotated with one of those shapes.
func yieldTypeFromReturnAnnotation(declaredReturn types.Type) types.Type {
	obj, ok := declaredReturn.(types.Object)
	if !ok {
		return types.Unknown{}
	}
	if (obj.Class.Name == "Iterator" || obj.Class.Name == "Generator") && len(obj.Class.TypeArgs) > 0 {
		return obj.Class.TypeArgs[0]
	}
	return types.Unknown{}
}

func convertParamCategory(c ast.ParamCategory) types.ParamCategory {
	switch c {
	case ast.ParamArgsList:
		return types.ParamArgsList
	case ast.ParamKwargsDict:
		return types.ParamKwargsDict
	default:
		return types.ParamSimple
	}
}

// hasDecorator reports whether decorators contains a bare-name or
// dotted-member decorator matching name (`@staticmethod` or
// `@abc.abstractmethod`); decorator factories called with arguments
// (`@foo(bar)`) are matched on the called function's name.
func hasDecorator(decorators []ast.Decorator, name string) bool {
	for _, d := range decorators {
		if decoratorNames(d.Expression, name) {
			return true
		}
	}
	return false
}

func decoratorNames(expr ast.Expression, name string) bool {
	switch e := expr.(type) {
	case *ast.Name:
		return e.Value == name
	case *ast.MemberAccess:
		return e.Member == name
	case *ast.Call:
		return decoratorNames(e.Function, name)
	default:
		return false
	}
}

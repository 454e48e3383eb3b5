package types

// TypeVarMap substitutes a generic class's type parameter names to
// concrete types, the analogue of the teacher's typesystem.Subst for
// this nominal lattice.
type TypeVarMap map[string]Type

// Specialize substitutes type variables in t using m. With m absent
// (nil), each of the class's own type parameters is replaced by Any —
// the lattice has no explicit bound/constraint slot on TypeParams beyond
// the parameter name, so Any is the safe "replace with its bound" default
// spec.md §4.1 asks for. Specialize is idempotent on fully-specialized
// types: a *Class with no remaining bare type-parameter names is
// returned unchanged.
func Specialize(t Type, m TypeVarMap) Type {
	switch v := t.(type) {
	case *Class:
		if len(v.TypeParams) == 0 || len(v.TypeArgs) > 0 {
			return v
		}
		args := make([]Type, len(v.TypeParams))
		for i, p := range v.TypeParams {
			if m != nil {
				if sub, ok := m[p]; ok {
					args[i] = sub
					continue
				}
			}
			args[i] = Any{}
		}
		specialized := *v
		specialized.TypeArgs = args
		return &specialized
	case Object:
		return Object{Class: specializeClassArgsOnly(v.Class, m).(*Class)}
	case *Function:
		params := make([]Param, len(v.Params))
		for i, p := range v.Params {
			params[i] = Param{Name: p.Name, Type: Specialize(p.Type, m), HasDefault: p.HasDefault, Category: p.Category}
		}
		specialized := &Function{
			Params:         params,
			DeclaredReturn: specializeOrNil(v.DeclaredReturn, m),
			InferredReturn: specializeOrNil(v.InferredReturn, m),
			YieldType:      specializeOrNil(v.YieldType, m),
			Flags:          v.Flags,
		}
		return specialized
	case Union:
		subs := make([]Type, len(v.Subtypes))
		for i, s := range v.Subtypes {
			subs[i] = Specialize(s, m)
		}
		return Combine(subs...)
	default:
		return t
	}
}

func specializeOrNil(t Type, m TypeVarMap) Type {
	if t == nil {
		return nil
	}
	return Specialize(t, m)
}

// specializeClassArgsOnly substitutes a class's already-bound TypeArgs
// (used when specializing an Object's class further, e.g. nested
// generics), leaving TypeParams alone since the class shape itself
// isn't being re-parameterized.
func specializeClassArgsOnly(c *Class, m TypeVarMap) Type {
	if c == nil || len(c.TypeArgs) == 0 {
		return c
	}
	args := make([]Type, len(c.TypeArgs))
	for i, a := range c.TypeArgs {
		args[i] = Specialize(a, m)
	}
	specialized := *c
	specialized.TypeArgs = args
	return &specialized
}

package types

import "fmt"

// Diag collects a chain of human-readable reasons for an assignability
// failure, the way the teacher's Unify threads error context back up
// through nested calls. CanAssign/CanOverride append to it on failure;
// callers that don't care about the reason may pass nil.
type Diag struct {
	Reasons []string
}

func (d *Diag) add(format string, args ...interface{}) {
	if d == nil {
		return
	}
	d.Reasons = append(d.Reasons, fmt.Sprintf(format, args...))
}

// ImportLookup resolves a dotted module path to its exported symbol
// types; CanAssign needs it only for cross-module class identity checks,
// which in this self-contained lattice never occurs, but the parameter
// is kept so C1's signature matches spec.md §4.1 exactly and the
// checker/evaluator can always pass its real lookup through uniformly.
type ImportLookup interface {
	Lookup(modulePath string) (exports map[string]Type, ok bool)
}

// CanAssign reports whether a value of type src may be bound to a
// location of type dest, per the rules in spec.md §4.1.
func CanAssign(dest, src Type, diag *Diag, imports ImportLookup) bool {
	if dest == nil || src == nil {
		return true
	}

	// Any/Unknown are bidirectionally assignable.
	if isAnyOrUnknown(dest) || isAnyOrUnknown(src) {
		return true
	}

	// Never is assignable to everything.
	if _, ok := src.(Never); ok {
		return true
	}

	// dest Never only accepts Never (handled above) or itself.
	if _, ok := dest.(Never); ok {
		diag.add("'%s' is not assignable to 'Never'", PrintType(src))
		return false
	}

	// A union destination accepts src if ANY dest member accepts it.
	if destUnion, ok := dest.(Union); ok {
		for _, d := range destUnion.Subtypes {
			sub := &Diag{}
			if CanAssign(d, src, sub, imports) {
				return true
			}
		}
		diag.add("'%s' is not assignable to any member of '%s'", PrintType(src), PrintType(dest))
		return false
	}

	// A union source is assignable to dest iff EVERY member is.
	if srcUnion, ok := src.(Union); ok {
		for _, s := range srcUnion.Subtypes {
			if !CanAssign(dest, s, diag, imports) {
				diag.add("member '%s' of '%s' is not assignable to '%s'", PrintType(s), PrintType(src), PrintType(dest))
				return false
			}
		}
		return true
	}

	switch d := dest.(type) {
	case None:
		_, ok := src.(None)
		if !ok {
			diag.add("'%s' is not assignable to 'None'", PrintType(src))
		}
		return ok

	case Object:
		s, ok := src.(Object)
		if !ok {
			diag.add("'%s' is not an instance type, required '%s'", PrintType(src), PrintType(dest))
			return false
		}
		if !DerivesFromClassRecursive(s.Class, d.Class) {
			diag.add("'%s' is not derived from '%s'", s.Class.Name, d.Class.Name)
			return false
		}
		return classTypeArgsAssignable(d.Class, s.Class, diag, imports)

	case *Class:
		s, ok := src.(*Class)
		if !ok {
			diag.add("'%s' is not a class type, required '%s'", PrintType(src), PrintType(dest))
			return false
		}
		if !DerivesFromClassRecursive(s, d) {
			diag.add("class '%s' does not derive from '%s'", s.Name, d.Name)
			return false
		}
		return true

	case *Function:
		s, ok := src.(*Function)
		if !ok {
			diag.add("'%s' is not a function type", PrintType(src))
			return false
		}
		return functionAssignable(d, s, diag, imports, false)
	}

	diag.add("unhandled destination type '%s'", PrintType(dest))
	return false
}

func isAnyOrUnknown(t Type) bool {
	switch t.(type) {
	case Any, Unknown:
		return true
	}
	return false
}

func classTypeArgsAssignable(dest, src *Class, diag *Diag, imports ImportLookup) bool {
	if len(dest.TypeArgs) == 0 {
		return true
	}
	if len(src.TypeArgs) != len(dest.TypeArgs) {
		diag.add("'%s' and '%s' have a different number of type arguments", src.Name, dest.Name)
		return false
	}
	for i := range dest.TypeArgs {
		// Invariant by default; covariant containers (e.g. immutable
		// sequences) could relax this per type param, but spec.md leaves
		// container variance unspecified, so invariance is the safe
		// default that keeps CanAssign reflexive/transitive (§8).
		if !CanAssign(dest.TypeArgs[i], src.TypeArgs[i], diag, imports) || !CanAssign(src.TypeArgs[i], dest.TypeArgs[i], diag, imports) {
			diag.add("type argument %d of '%s' is not invariantly compatible", i, dest.Name)
			return false
		}
	}
	return true
}

// functionAssignable checks parameter-contravariant, return-covariant
// assignability (spec.md §4.1). When forOverride is true, the stricter
// name-matching rules for method overrides (§4.1 canOverride, §4.5.3)
// are applied instead of pure positional matching.
func functionAssignable(dest, src *Function, diag *Diag, imports ImportLookup, forOverride bool) bool {
	if !forOverride {
		if len(src.Params) > len(dest.Params) {
			diag.add("source function requires %d parameters, destination only supplies %d", len(src.Params), len(dest.Params))
			return false
		}
	} else {
		if len(dest.Params) != len(src.Params) {
			// Overrides may narrow arity only by adding defaults on the
			// derived side; extra required derived params are unsafe.
			if len(src.Params) > len(dest.Params) {
				for i := len(dest.Params); i < len(src.Params); i++ {
					if !src.Params[i].HasDefault {
						diag.add("override adds required parameter '%s' not present in base method", src.Params[i].Name)
						return false
					}
				}
			}
		}
	}

	n := len(dest.Params)
	if len(src.Params) < n {
		n = len(src.Params)
	}
	for i := 0; i < n; i++ {
		dp, sp := dest.Params[i], src.Params[i]
		// self/cls's type is implicitly the enclosing class on each side
		// of the override by construction (spec.md §4.5.2) — comparing it
		// structurally would reject every override solely because the
		// derived class differs from the base class, which is the whole
		// point of the override existing. Skip position 0 for overrides;
		// §4.5.2's method-shape checks already validate its name.
		if forOverride && i == 0 {
			continue
		}
		if forOverride && dp.Name != sp.Name && dp.Category == ParamSimple && sp.Category == ParamSimple {
			diag.add("parameter %d renamed from '%s' to '%s' in override", i, dp.Name, sp.Name)
			return false
		}
		// Contravariant: the src (derived) function's parameter type must
		// accept anything the dest (base) parameter type accepts, i.e. the
		// dest's param type must be assignable TO the src's.
		if !CanAssign(sp.Type, dp.Type, diag, imports) {
			diag.add("parameter '%s' is not contravariantly compatible", dp.Name)
			return false
		}
	}

	// Covariant return.
	if !CanAssign(dest.ReturnType(), src.ReturnType(), diag, imports) {
		diag.add("return type '%s' is not assignable from '%s'", PrintType(dest.ReturnType()), PrintType(src.ReturnType()))
		return false
	}
	return true
}

// CanOverride is CanAssign specialized to method-override rules: the
// base class's method signature is dest, the derived class's is src,
// and parameter names must line up (spec.md §4.1, §4.5.3).
func CanOverride(base, derived *Function, diag *Diag, imports ImportLookup) bool {
	return functionAssignable(base, derived, diag, imports, true)
}

// DerivesFromClassRecursive reports whether base appears in c's
// transitive base closure (including c itself).
func DerivesFromClassRecursive(c, base *Class) bool {
	if c == nil || base == nil {
		return false
	}
	if c.Name == base.Name {
		return true
	}
	for _, b := range c.Bases {
		if DerivesFromClassRecursive(b, base) {
			return true
		}
	}
	return false
}

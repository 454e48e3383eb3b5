package symbols

import "github.com/funvibe/pytype/internal/types"

// ImportLookup resolves a dotted module path to the symbol table of the
// module it names — the sole cross-module interface (spec.md §4.2, §6,
// component C8). Implementations live outside this package to keep
// symbols free of any notion of "how a module is found on disk".
type ImportLookup interface {
	Resolve(modulePath string) (*Scope, bool)
}

// GetEffectiveTypeOfSymbol is the last typed declaration's declared
// type, or else the union of inferred types of untyped declarations
// (spec.md §4.2, GLOSSARY "Effective type of a symbol").
func GetEffectiveTypeOfSymbol(sym *Symbol, imports ImportLookup) types.Type {
	if sym == nil {
		return types.Unknown{}
	}
	if last, ok := GetLastTypedDeclaredForSymbol(sym); ok {
		return ResolveDeclaredType(last, imports)
	}

	var inferred []types.Type
	for _, d := range sym.Declarations {
		if d.InferredType != nil {
			inferred = append(inferred, d.InferredType)
		}
	}
	if len(inferred) == 0 {
		return types.Unknown{}
	}
	return types.Combine(inferred...)
}

// ResolveDeclaredType follows an alias declaration to its ultimate
// definition's declared type before returning it; non-alias
// declarations return their own declared type unchanged.
func ResolveDeclaredType(d Declaration, imports ImportLookup) types.Type {
	if d.Kind != DeclAlias || imports == nil {
		return d.DeclaredType
	}
	resolved, _ := ResolveAliasDeclaration(d, imports)
	if resolved.DeclaredType != nil {
		return resolved.DeclaredType
	}
	return d.DeclaredType
}

// GetLastTypedDeclaredForSymbol returns the most recent declaration that
// carries an explicit type annotation, scanning from the newest
// declaration backward.
func GetLastTypedDeclaredForSymbol(sym *Symbol) (Declaration, bool) {
	for i := len(sym.Declarations) - 1; i >= 0; i-- {
		if sym.Declarations[i].DeclaredType != nil {
			return sym.Declarations[i], true
		}
	}
	return Declaration{}, false
}

// ResolveAliasDeclaration follows an import alias through the import
// lookup to the symbol it ultimately names, returning the original
// declaration unresolved if the target module or name can't be found
// (an unresolved import is diagnosed elsewhere, not here).
func ResolveAliasDeclaration(d Declaration, imports ImportLookup) (Declaration, bool) {
	if d.Kind != DeclAlias {
		return d, false
	}
	scope, ok := imports.Resolve(d.AliasTarget)
	if !ok {
		return d, false
	}
	// The aliased name within the target module is the last dotted-path
	// segment (import a.b.c binds c; import a.b.c as x still names c).
	name := lastSegment(d.DottedPath)
	target, ok := scope.LookupLocal(name)
	if !ok || len(target.Declarations) == 0 {
		return d, false
	}
	return target.LastDeclaration(), true
}

func lastSegment(dotted string) string {
	last := dotted
	for i := len(dotted) - 1; i >= 0; i-- {
		if dotted[i] == '.' {
			last = dotted[i+1:]
			break
		}
	}
	return last
}

// GetSymbolFromBaseClasses searches the MRO (base-list closure, in
// declaration order, depth-first) for a member named `name` and returns
// both the symbol and the class it was found on — used by override
// validation (spec.md §4.5.3).
func GetSymbolFromBaseClasses(class *types.Class, name string, classScopes map[string]*Scope) (*Symbol, *types.Class) {
	for _, base := range class.Bases {
		scope, ok := classScopes[base.Name]
		if ok {
			if sym, ok := scope.LookupLocal(name); ok {
				return sym, base
			}
		}
		if sym, found := GetSymbolFromBaseClasses(base, name, classScopes); sym != nil {
			return sym, found
		}
	}
	return nil, nil
}

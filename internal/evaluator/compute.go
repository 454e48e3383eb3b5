package evaluator

import (
	"fmt"
	"strings"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/diagnostics"
	"github.com/funvibe/pytype/internal/symbols"
	"github.com/funvibe/pytype/internal/types"
)

// computeType dispatches on the concrete expression kind. It never
// reports a diagnostic itself for "I don't know how to type this" —
// falling back to Unknown is the correct, spec.md §7-mandated response
// to an evaluator gap; diagnostics about a *known* mismatch are the
// checker's job, driven by the types this function returns.
func (e *Evaluator) computeType(node ast.Expression, scope *symbols.Scope, method Method, expected types.Type, flags Flags) types.Type {
	switch n := node.(type) {
	case *ast.Constant:
		return e.typeOfConstant(n)
	case *ast.Name:
		return e.typeOfName(n, scope)
	case *ast.MemberAccess:
		return e.typeOfMemberAccess(n, scope)
	case *ast.Call:
		return e.typeOfCall(n, scope)
	case *ast.Lambda:
		return e.typeOfLambda(n, scope)
	case *ast.Yield:
		if n.Value != nil {
			e.GetType(n.Value, scope, MethodGet, nil, flags)
		}
		return types.Unknown{}
	case *ast.YieldFrom:
		e.GetType(n.Iterable, scope, MethodGet, nil, flags)
		return types.Unknown{}
	case *ast.FormatString:
		for _, part := range n.Parts {
			e.GetType(part, scope, MethodGet, nil, flags)
		}
		return types.Object{Class: StrClass}
	case *ast.StringList:
		if n.IsAnnotationLiteral && flags&AllowForwardReferences != 0 {
			return e.GetTypeOfAnnotationText(n, scope)
		}
		return types.Object{Class: StrClass}
	case *ast.ErrorNode:
		if n.Child != nil {
			return e.GetType(n.Child, scope, MethodGet, nil, flags)
		}
		return types.Unknown{}
	case *ast.TupleExpr:
		return e.typeOfTuple(n, scope)
	case *ast.ListExpr:
		return e.typeOfListLiteral(n, scope)
	case *ast.IndexExpr:
		return e.typeOfIndex(n, scope)
	case *ast.BinOp:
		return e.typeOfBinOp(n, scope)
	case *ast.UnaryOp:
		return e.typeOfUnaryOp(n, scope)
	case *ast.BoolOp:
		return e.typeOfBoolOp(n, scope)
	case *ast.Compare:
		return e.typeOfCompare(n, scope)
	case *ast.Conditional:
		body := e.GetType(n.Body, scope, MethodGet, nil, flags)
		orElse := e.GetType(n.OrElse, scope, MethodGet, nil, flags)
		e.GetType(n.Condition, scope, MethodGet, nil, flags)
		return types.Combine(body, orElse)
	case *ast.Starred:
		return e.GetType(n.Value, scope, MethodGet, nil, flags)
	default:
		return types.Unknown{}
	}
}

func (e *Evaluator) typeOfConstant(c *ast.Constant) types.Type {
	switch c.Kind {
	case ast.ConstInt:
		return types.Object{Class: IntClass}
	case ast.ConstFloat:
		return types.Object{Class: FloatClass}
	case ast.ConstBool:
		return types.Object{Class: BoolClass}
	case ast.ConstStr:
		return types.Object{Class: StrClass}
	case ast.ConstNone:
		return types.None{}
	case ast.ConstEllipsis:
		return types.Any{}
	default:
		return types.Unknown{}
	}
}

// typeOfName is the symbol-table-backed case: a Name's type is the
// effective type of the symbol it was resolved to by the binder
// (spec.md GLOSSARY "Effective type of a symbol").
func (e *Evaluator) typeOfName(n *ast.Name, scope *symbols.Scope) types.Type {
	sym, ok := scope.Lookup(n.Value)
	if !ok {
		// A bare reference to a builtin type name with no bound symbol
		// (e.g. the `int` in `isinstance(x, int)`) denotes the class
		// object itself, not an instance of it — spec.md §4.1's
		// transformTypeObjectToClass idiom, the mirror image of
		// GetTypeOfAnnotation wrapping the same name in Object.
		if builtin, ok := builtinClassByName(n.Value); ok {
			return builtin
		}
		return types.Unknown{}
	}
	e.markUsed(sym.ID)
	e.checkModulePrivateUsage(n, sym)
	return symbols.GetEffectiveTypeOfSymbol(sym, e.SymbolImports)
}

// checkModulePrivateUsage implements spec.md §4.5.6's module-scope half
// of the private-usage check for the Name node contract (§4.5): a name
// bound by `from pkg import _helper` is, by construction, declared in a
// different module's scope than any site that can reference it here, so
// unlike the class case there is no "still inside the declaring scope"
// exemption to check for — only the private/protected wording differs.
func (e *Evaluator) checkModulePrivateUsage(n *ast.Name, sym *symbols.Symbol) {
	if e.Sink == nil || e.IsStub || !isPrivateName(n.Value) {
		return
	}
	last := sym.LastDeclaration()
	if last.Kind != symbols.DeclAlias {
		return
	}
	what := "private"
	if !isDunderPrivate(n.Value) {
		what = "protected"
	}
	module := last.AliasTarget
	if module == "" {
		module = last.DottedPath
	}
	e.Sink.Report(diagnostics.Diagnostic{
		Rule:    diagnostics.RulePrivateUsage,
		Phase:   diagnostics.PhaseBody,
		Message: fmt.Sprintf("%q is %s and used outside of the module %q that declares it", n.Value, what, module),
		Range:   n.GetRange(),
	})
}

// typeOfMemberAccess resolves `Left.Member` by looking the member up on
// Left's class (walking bases through the binder's ClassScopes), or as
// a plain Field for structural members (e.g. TypedDict keys), falling
// back to Unknown — attribute resolution through metaclasses, __getattr__
// hooks, or descriptors is out of scope (spec.md §9).
func (e *Evaluator) typeOfMemberAccess(n *ast.MemberAccess, scope *symbols.Scope) types.Type {
	leftType := e.GetType(n.Left, scope, MethodGet, nil, FlagNone)
	var class *types.Class
	switch l := leftType.(type) {
	case types.Object:
		class = l.Class
	case *types.Class:
		class = l
	default:
		return types.Unknown{}
	}
	if class == nil {
		return types.Unknown{}
	}
	if t, owner, ok := e.lookupMember(class, n.Member); ok {
		e.checkPrivateUsage(n, owner, scope)
		return t
	}
	if field, ok := class.FindField(n.Member); ok {
		return field.Type
	}
	return types.Unknown{}
}

// lookupMember walks class then its base closure (via the binder's
// ClassScopes) for a symbol named name, returning its effective type
// and the class that actually declares it (for private-usage checks).
func (e *Evaluator) lookupMember(class *types.Class, name string) (types.Type, *types.Class, bool) {
	if e.Bound == nil {
		return nil, nil, false
	}
	if scope, ok := e.Bound.ClassScopes[class.Name]; ok {
		if sym, ok := scope.LookupLocal(name); ok {
			return symbols.GetEffectiveTypeOfSymbol(sym, e.SymbolImports), class, true
		}
	}
	if sym, owner := symbols.GetSymbolFromBaseClasses(class, name, e.Bound.ClassScopes); sym != nil {
		return symbols.GetEffectiveTypeOfSymbol(sym, e.SymbolImports), owner, true
	}
	return nil, nil, false
}

// checkPrivateUsage implements spec.md §4.5.6: a member whose name
// starts with an underscore (and isn't a dunder) may only be accessed
// from code textually inside the class that declares it, OR from a
// method of a class that transitively derives from it (the "protected"
// exemption spec.md calls out explicitly — a subclass reading a base
// class's `_x` is not reportable, only truly external access is).
func (e *Evaluator) checkPrivateUsage(n *ast.MemberAccess, owner *types.Class, scope *symbols.Scope) {
	if e.Sink == nil || e.IsStub || owner == nil || !isPrivateName(n.Member) {
		return
	}
	enclosing := e.enclosingClassType(scope)
	if enclosing != nil && (enclosing.Name == owner.Name || types.DerivesFromClassRecursive(enclosing, owner)) {
		return
	}
	what := "private"
	if !isDunderPrivate(n.Member) {
		what = "protected"
	}
	e.Sink.Report(diagnostics.Diagnostic{
		Rule:    diagnostics.RulePrivateUsage,
		Phase:   diagnostics.PhaseBody,
		Message: fmt.Sprintf("%q is %s and used outside of a derived class of %q", n.Member, what, owner.Name),
		Range:   n.GetRange(),
	})
}

// enclosingClassType walks up scope to the nearest class scope's owner
// and returns its already-computed types.Class, or nil outside any class.
func (e *Evaluator) enclosingClassType(scope *symbols.Scope) *types.Class {
	for s := scope; s != nil; s = s.Parent {
		if s.Kind == symbols.ScopeClass {
			if class, ok := s.Owner.(*ast.ClassDef); ok {
				return e.classTypes[class]
			}
		}
	}
	return nil
}

func isPrivateName(name string) bool {
	return IsPrivateName(name)
}

// isDunderPrivate reports whether name uses the double-underscore
// private-name prefix (vs. the single-underscore protected prefix),
// per spec.md §4.5.6's (a)/(b) distinction.
func isDunderPrivate(name string) bool {
	return strings.HasPrefix(name, "__")
}

// IsPrivateName reports whether name starts with a private/protected
// underscore prefix and isn't a reserved dunder (spec.md §4.5.6); shared
// with the checker's unused-symbol sweep (§4.5.1), which gates
// Variable/Parameter/Class/Function reportability on the same privacy
// test.
func IsPrivateName(name string) bool {
	if len(name) < 2 || name[0] != '_' {
		return false
	}
	if len(name) > 4 && name[:2] == "__" && name[len(name)-2:] == "__" {
		return false // dunder
	}
	return true
}

// typeOfCall resolves a call's result type: a class reference is a
// constructor call returning Object(class); a function reference
// returns its declared/inferred return type; isinstance/issubclass are
// recognized by name since spec.md §4.5.5 needs their boolean result
// type regardless of how the builtin module is modeled.
func (e *Evaluator) typeOfCall(n *ast.Call, scope *symbols.Scope) types.Type {
	if n.InDefaultInitializer && e.Sink != nil && !e.IsStub {
		e.Sink.Report(diagnostics.Diagnostic{
			Rule:    diagnostics.RuleCallInDefaultInitializer,
			Phase:   diagnostics.PhaseDeclaration,
			Message: "call expression used as a parameter default is evaluated once at definition time",
			Range:   n.GetRange(),
		})
	}
	argTypes := make([]types.Type, len(n.Arguments))
	for i, a := range n.Arguments {
		argTypes[i] = e.GetType(a, scope, MethodGet, nil, FlagNone)
	}
	for _, v := range n.Keywords {
		e.GetType(v, scope, MethodGet, nil, FlagNone)
	}
	if name, ok := n.Function.(*ast.Name); ok {
		switch name.Value {
		case "isinstance":
			e.checkUnnecessaryIsInstance(n, argTypes, scope, false)
			return types.Object{Class: BoolClass}
		case "issubclass":
			e.checkUnnecessaryIsInstance(n, argTypes, scope, true)
			return types.Object{Class: BoolClass}
		}
	}
	calleeType := e.GetType(n.Function, scope, MethodGet, nil, FlagNone)
	switch c := calleeType.(type) {
	case *types.Class:
		return types.Object{Class: c}
	case *types.Function:
		return c.ReturnType()
	default:
		return types.Unknown{}
	}
}

// checkUnnecessaryIsInstance implements spec.md §4.5.5: narrow arg0
// against the class list built from arg1 (a single Class, or a
// Tuple[...] of Classes) and report when the narrowed result is Never
// (the check can never succeed) or is exactly arg0's original type (the
// check always succeeds, telling the reader nothing a plain annotation
// wouldn't already). isSubclass selects issubclass's semantics (the
// subject is itself a class, not an instance) over isinstance's.
func (e *Evaluator) checkUnnecessaryIsInstance(call *ast.Call, argTypes []types.Type, scope *symbols.Scope, isSubclass bool) {
	if e.Sink == nil || len(call.Arguments) != 2 || len(argTypes) != 2 || call.InAssert {
		return
	}
	arg0Type := types.TransformTypeObjectToClass(argTypes[0])
	subtypes := unionSubtypes(arg0Type)
	for _, s := range subtypes {
		if isAnyOrUnknownType(s) {
			return
		}
	}

	arg1Type := e.GetType(call.Arguments[1], scope, MethodGet, nil, FlagNone)
	classList := classListFromArg1(arg1Type)
	if len(classList) == 0 {
		return
	}

	var kept []types.Type
	for _, sub := range subtypes {
		subjectClass := classOfSubjectSubtype(sub, isSubclass)
		if subjectClass == nil {
			return // not a concrete class shape; nothing safe to narrow
		}
		for _, filter := range classList {
			narrowed := narrowClassAgainstFilter(subjectClass, filter)
			if narrowed == nil {
				continue
			}
			if isSubclass {
				kept = append(kept, narrowed)
			} else {
				kept = append(kept, types.Object{Class: narrowed})
			}
		}
	}

	funcName, verb := "isinstance", "instance"
	if isSubclass {
		funcName, verb = "issubclass", "subclass"
	}
	combined := types.Combine(kept...)
	if _, isNever := combined.(types.Never); isNever {
		e.Sink.Report(diagnostics.Diagnostic{
			Rule:    diagnostics.RuleUnnecessaryIsInstance,
			Phase:   diagnostics.PhaseBody,
			Message: fmt.Sprintf("unnecessary %s check, %q is never a %s of %s", funcName, types.PrintType(arg0Type), verb, classListNames(classList)),
			Range:   call.GetRange(),
		})
		return
	}
	if types.IsTypeSame(combined, arg0Type) {
		e.Sink.Report(diagnostics.Diagnostic{
			Rule:    diagnostics.RuleUnnecessaryIsInstance,
			Phase:   diagnostics.PhaseBody,
			Message: fmt.Sprintf("unnecessary %s check, %q is always a %s of %s", funcName, types.PrintType(arg0Type), verb, classListNames(classList)),
			Range:   call.GetRange(),
		})
	}
}

// unionSubtypes returns t's union members, or []Type{t} when t isn't a
// union — the uniform "each subtype" view spec.md §4.5.5 narrows over.
func unionSubtypes(t types.Type) []types.Type {
	if u, ok := t.(types.Union); ok {
		return u.Subtypes
	}
	return []types.Type{t}
}

func isAnyOrUnknownType(t types.Type) bool {
	switch t.(type) {
	case types.Any, types.Unknown:
		return true
	}
	return false
}

// classListFromArg1 resolves isinstance/issubclass's second argument to
// the list of Classes it tests against: a single Class, or a Tuple[...]
// whose type arguments are Classes (non-Class tuple members, e.g. an
// unresolved Unknown slot, are dropped rather than aborting the whole
// check).
func classListFromArg1(arg1Type types.Type) []*types.Class {
	switch t := arg1Type.(type) {
	case *types.Class:
		return []*types.Class{t}
	case types.Object:
		if t.Class == nil || t.Class.Name != "tuple" {
			return nil
		}
		var list []*types.Class
		for _, ta := range t.Class.TypeArgs {
			if c, ok := ta.(*types.Class); ok {
				list = append(list, c)
			}
		}
		return list
	default:
		return nil
	}
}

// classOfSubjectSubtype extracts the Class a narrowing comparison runs
// against: issubclass's subject is already a class reference, while
// isinstance's subject is an instance whose Class is what gets compared.
func classOfSubjectSubtype(sub types.Type, isSubclass bool) *types.Class {
	if isSubclass {
		c, ok := sub.(*types.Class)
		if !ok {
			return nil
		}
		return c
	}
	obj, ok := sub.(types.Object)
	if !ok {
		return nil
	}
	return obj.Class
}

// narrowClassAgainstFilter implements spec.md §4.5.5's per-(subtype,
// filter) narrowing rule: keep the more specific of the two when one
// derives from the other, or nil when they're unrelated (that pairing
// contributes nothing to the narrowed result).
func narrowClassAgainstFilter(subject, filter *types.Class) *types.Class {
	if types.DerivesFromClassRecursive(subject, filter) {
		return subject
	}
	if types.DerivesFromClassRecursive(filter, subject) {
		return filter
	}
	return nil
}

func classListNames(classes []*types.Class) string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

// ElementTypeOf returns the element type a for-loop target is bound to
// when iterating over iterableType (spec.md §4.5's For contract):
// list/set/tuple yield their element type(s), dict yields its key type,
// str yields str. Anything else yields Unknown — the full iterator
// protocol (__iter__/__next__ on arbitrary user classes) is out of
// scope (spec.md §9).
func (e *Evaluator) ElementTypeOf(iterableType types.Type) types.Type {
	obj, ok := iterableType.(types.Object)
	if !ok {
		return types.Unknown{}
	}
	switch obj.Class.Name {
	case "str":
		return types.Object{Class: StrClass}
	case "list", "set":
		if len(obj.Class.TypeArgs) > 0 {
			return obj.Class.TypeArgs[0]
		}
	case "tuple":
		if len(obj.Class.TypeArgs) > 0 {
			return types.Combine(obj.Class.TypeArgs...)
		}
	case "dict":
		if len(obj.Class.TypeArgs) > 0 {
			return obj.Class.TypeArgs[0]
		}
	case "Iterator", "Generator":
		if len(obj.Class.TypeArgs) > 0 {
			return obj.Class.TypeArgs[0]
		}
	}
	return types.Unknown{}
}

func (e *Evaluator) typeOfLambda(n *ast.Lambda, scope *symbols.Scope) types.Type {
	lamScope := scope
	if e.Bound != nil {
		if s, ok := e.Bound.Scopes[n]; ok {
			lamScope = s
		}
	}
	params := make([]types.Param, len(n.Params))
	for i, p := range n.Params {
		params[i] = types.Param{Name: p.Name, Type: types.Unknown{}, HasDefault: p.Default != nil}
	}
	bodyType := e.GetType(n.Body, lamScope, MethodGet, nil, FlagNone)
	return &types.Function{Params: params, InferredReturn: bodyType}
}

func (e *Evaluator) typeOfTuple(n *ast.TupleExpr, scope *symbols.Scope) types.Type {
	elemTypes := make([]types.Type, len(n.Elements))
	for i, el := range n.Elements {
		elemTypes[i] = e.GetType(el, scope, MethodGet, nil, FlagNone)
	}
	return tupleOf(elemTypes...)
}

func (e *Evaluator) typeOfListLiteral(n *ast.ListExpr, scope *symbols.Scope) types.Type {
	var elem types.Type
	for _, el := range n.Elements {
		elem = types.Combine(elem, e.GetType(el, scope, MethodGet, nil, FlagNone))
	}
	if elem == nil {
		elem = types.Unknown{}
	}
	return listOf(elem)
}

func (e *Evaluator) typeOfIndex(n *ast.IndexExpr, scope *symbols.Scope) types.Type {
	leftType := e.GetType(n.Left, scope, MethodGet, nil, FlagNone)
	e.GetType(n.Index, scope, MethodGet, nil, FlagNone)
	obj, ok := leftType.(types.Object)
	if !ok || len(obj.Class.TypeArgs) == 0 {
		return types.Unknown{}
	}
	switch obj.Class.Name {
	case "list", "set":
		return obj.Class.TypeArgs[0]
	case "dict":
		if len(obj.Class.TypeArgs) > 1 {
			return obj.Class.TypeArgs[1]
		}
		return types.Unknown{}
	case "tuple":
		if idx, ok := n.Index.(*ast.Constant); ok && idx.Kind == ast.ConstInt {
			if i, ok := parseIntLiteral(idx.Str); ok && i >= 0 && i < len(obj.Class.TypeArgs) {
				return obj.Class.TypeArgs[i]
			}
		}
		return types.Combine(obj.Class.TypeArgs...)
	default:
		return types.Unknown{}
	}
}

func parseIntLiteral(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// typeOfBinOp does not model Python's dunder-method operator resolution
// (spec.md §9): when both operands agree on a concrete type the result
// is that type (the common arithmetic/string-concatenation case);
// otherwise the result is Unknown rather than a guess.
func (e *Evaluator) typeOfBinOp(n *ast.BinOp, scope *symbols.Scope) types.Type {
	left := e.GetType(n.Left, scope, MethodGet, nil, FlagNone)
	right := e.GetType(n.Right, scope, MethodGet, nil, FlagNone)
	if types.IsTypeSame(left, right) {
		return left
	}
	return types.Unknown{}
}

func (e *Evaluator) typeOfUnaryOp(n *ast.UnaryOp, scope *symbols.Scope) types.Type {
	operand := e.GetType(n.Operand, scope, MethodGet, nil, FlagNone)
	if n.Op == "not" {
		return types.Object{Class: BoolClass}
	}
	return operand
}

func (e *Evaluator) typeOfBoolOp(n *ast.BoolOp, scope *symbols.Scope) types.Type {
	var combined types.Type
	for _, v := range n.Values {
		combined = types.Combine(combined, e.GetType(v, scope, MethodGet, nil, FlagNone))
	}
	if combined == nil {
		return types.Unknown{}
	}
	return combined
}

func (e *Evaluator) typeOfCompare(n *ast.Compare, scope *symbols.Scope) types.Type {
	e.GetType(n.Left, scope, MethodGet, nil, FlagNone)
	for _, c := range n.Comparators {
		e.GetType(c, scope, MethodGet, nil, FlagNone)
	}
	return types.Object{Class: BoolClass}
}

// Package evaluator implements the expression-type evaluator (spec.md
// §4.4 / component C4): given an expression node and a method (get/del)
// plus an optional expected type, it returns the expression's type,
// caching results keyed by node and analysis-pass version, and signals
// "analysis changed" when a type differs from the prior pass in an
// informative direction.
//
// Grounded on the teacher's internal/evaluator package for the overall
// shape of a tree-walking type/value computation split across many
// small per-node-kind files (expressions_*.go, object_*.go), and on the
// teacher's internal/analyzer/inference*.go for the idea of a shared,
// long-lived inference context threaded through one module's whole
// multi-pass analysis (InferenceContext in the teacher) — here that role
// is played by Evaluator itself, since this checker's "inference" is
// type assignment/narrowing rather than Hindley-Milner unification.
package evaluator

import (
	"fmt"

	"github.com/funvibe/pytype/internal/ast"
	"github.com/funvibe/pytype/internal/binder"
	"github.com/funvibe/pytype/internal/diagnostics"
	"github.com/funvibe/pytype/internal/symbols"
	"github.com/funvibe/pytype/internal/types"
)

// Method distinguishes a type query made to read a value (`get`) from
// one made to validate a deletion target (`del`), per spec.md §4.4.
type Method int

const (
	MethodGet Method = iota
	MethodDel
)

// Flags modify how getType resolves an expression.
type Flags int

const (
	FlagNone Flags = 0
	// AllowForwardReferences permits a StringList/Name to refer to a
	// symbol defined later in the same scope (used for annotations).
	AllowForwardReferences Flags = 1 << (iota - 1)
)

type cacheEntry struct {
	typ     types.Type
	version int
}

// ChangeCallback is invoked whenever a cached type is narrowed or
// concretized; the reason string is for debugging only (spec.md §4.4).
type ChangeCallback func(node ast.Node, reason string)

// Evaluator is C4: one instance is owned by a single module's checker
// for the module's entire multi-pass fixpoint run (spec.md §5: "owned
// by the walker/evaluator pair for a single module").
type Evaluator struct {
	Bound *binder.Result
	// Imports resolves a module path to its exported types, for
	// assignability checks that must look through an alias
	// (types.CanAssign's ImportLookup parameter).
	Imports types.ImportLookup
	// SymbolImports resolves a module path to its symbol scope, for
	// GetEffectiveTypeOfSymbol's alias-following. Kept as a second field
	// rather than one shared interface because symbols and types are
	// deliberately independent packages (see their respective
	// ImportLookup docs); one concrete resolver may implement both.
	SymbolImports symbols.ImportLookup
	Sink          diagnostics.Sink
	Config        *diagnostics.Settings
	// IsStub mirrors spec.md FileInfo.isStubFile: reportCallInDefaultInitializer
	// never fires inside a stub file (spec.md §4.5's Call node contract).
	IsStub bool

	cache      map[ast.Node]*cacheEntry
	passVersion int
	onChange   ChangeCallback

	// classTypes/functionTypes memoize GetTypeOfClass/GetTypeOfFunction
	// results per node across passes — the class/function *shape*
	// itself does not need the narrowing discipline getType uses,
	// because it is derived structurally from the declaration, not
	// inferred.
	classTypes    map[*ast.ClassDef]*types.Class
	functionTypes map[*ast.FunctionDef]*types.Function

	// typingModule supplies canonical generic aliases (Iterator,
	// Generator, NoReturn) per spec.md's getTypingType.
	typingModule map[string]types.Type

	// usedSymbols records every symbol ID that has been read at least
	// once via a Name expression, for the unused-symbol sweep (spec.md
	// §4.5.1). Binding occurrences (assignment/for/with/except targets)
	// never go through GetType on the target itself, so this only ever
	// sees genuine reads.
	usedSymbols map[int]bool
}

// IsUsed reports whether symbolID has been read by at least one Name
// expression so far this pass.
func (e *Evaluator) IsUsed(symbolID int) bool { return e.usedSymbols[symbolID] }

func (e *Evaluator) markUsed(symbolID int) {
	if symbolID == 0 {
		return
	}
	e.usedSymbols[symbolID] = true
}

// New creates an Evaluator for one module's analysis.
func New(bound *binder.Result, imports interface {
	types.ImportLookup
	symbols.ImportLookup
}, sink diagnostics.Sink, cfg *diagnostics.Settings) *Evaluator {
	e := &Evaluator{
		Bound:         bound,
		Sink:          sink,
		Config:        cfg,
		cache:         make(map[ast.Node]*cacheEntry),
		classTypes:    make(map[*ast.ClassDef]*types.Class),
		functionTypes: make(map[*ast.FunctionDef]*types.Function),
		typingModule:  builtinTypingModule(),
		usedSymbols:   make(map[int]bool),
	}
	if imports != nil {
		e.Imports = imports
		e.SymbolImports = imports
	}
	return e
}

// SetChangeCallback installs the callback the fixpoint driver (C6) uses
// to learn that this pass produced a more informative result than the
// last one.
func (e *Evaluator) SetChangeCallback(cb ChangeCallback) { e.onChange = cb }

// BeginPass increments the evaluator's pass version; called once per
// fixpoint iteration before the walker visits the tree.
func (e *Evaluator) BeginPass(version int) {
	e.passVersion = version
	e.usedSymbols = make(map[int]bool)
}

// GetType is the evaluator's central operation (spec.md §4.4). For
// expressions it has no special-cased handling for, it falls back to
// Unknown rather than failing — an evaluator gap degrades precision,
// it never aborts analysis (spec.md §7).
func (e *Evaluator) GetType(node ast.Expression, scope *symbols.Scope, method Method, expected types.Type, flags Flags) types.Type {
	if node == nil {
		return types.Unknown{}
	}
	computed := e.computeType(node, scope, method, expected, flags)
	e.writeCache(node, computed, "getType")
	return e.cachedOrComputed(node, computed)
}

// cachedOrComputed returns whatever ended up in the cache for node after
// writeCache's monotone check ran (which may differ from computed if a
// widening attempt was suppressed).
func (e *Evaluator) cachedOrComputed(node ast.Node, computed types.Type) types.Type {
	if entry, ok := e.cache[node]; ok {
		return entry.typ
	}
	return computed
}

// UpdateExpressionTypeForNode is a write-through to the per-node cache,
// bypassing the monotone check — used when the checker has independently
// derived a more authoritative type for a node (e.g. an explicit
// annotation) than whatever getType would recompute.
func (e *Evaluator) UpdateExpressionTypeForNode(node ast.Node, t types.Type) {
	e.cache[node] = &cacheEntry{typ: t, version: e.passVersion}
}

// CachedFunctionType returns the previously computed shape for fn, if
// GetTypeOfFunction has already run for it this pass or an earlier one.
func (e *Evaluator) CachedFunctionType(fn *ast.FunctionDef) (*types.Function, bool) {
	f, ok := e.functionTypes[fn]
	return f, ok
}

// CachedType returns the last type written for node, if any.
func (e *Evaluator) CachedType(node ast.Node) (types.Type, bool) {
	entry, ok := e.cache[node]
	if !ok {
		return nil, false
	}
	return entry.typ, true
}

// writeCache applies the monotone-narrowing discipline spec.md §4.4 and
// §8 ("Monotone cache") require: a re-evaluation that would widen the
// cached type is suppressed (no write, no change signal); anything that
// narrows or concretizes the type is written and reported via onChange.
func (e *Evaluator) writeCache(node ast.Node, newType types.Type, reason string) {
	old, existed := e.cache[node]
	if !existed {
		e.cache[node] = &cacheEntry{typ: newType, version: e.passVersion}
		if e.onChange != nil && !isUnknownish(newType) {
			e.onChange(node, reason+": first inference")
		}
		return
	}
	if types.IsTypeSame(old.typ, newType) {
		old.version = e.passVersion
		return
	}
	if isMoreInformative(old.typ, newType) {
		e.cache[node] = &cacheEntry{typ: newType, version: e.passVersion}
		if e.onChange != nil {
			e.onChange(node, fmt.Sprintf("%s: %s -> %s", reason, types.PrintType(old.typ), types.PrintType(newType)))
		}
		return
	}
	// Widening attempt: keep the cached value, signal nothing.
}

func isUnknownish(t types.Type) bool {
	_, ok := t.(types.Unknown)
	return ok
}

// isMoreInformative reports whether newType is a strict refinement of
// old: Unknown -> concrete, or a wider union -> a narrower one.
func isMoreInformative(old, newType types.Type) bool {
	if old == nil {
		return true
	}
	oldUnknown := types.ContainsUnknown(old)
	newUnknown := types.ContainsUnknown(newType)
	if oldUnknown && !newUnknown {
		return true
	}
	if !oldUnknown && newUnknown {
		return false
	}
	if oldUnion, ok := old.(types.Union); ok {
		if isUnionSubset(newType, oldUnion) {
			return true
		}
		return false
	}
	// old is already a single concrete type and new differs structurally
	// without being a pure narrowing of a union: treat as a legitimate
	// concretization only when old was Unknown-free and equal precision
	// is impossible to determine from shape alone. To keep the cache
	// monotone we default to "not more informative" so unrelated
	// mismatches never destabilize the fixpoint.
	return false
}

func isUnionSubset(candidate types.Type, wider types.Union) bool {
	var members []types.Type
	if u, ok := candidate.(types.Union); ok {
		members = u.Subtypes
	} else {
		members = []types.Type{candidate}
	}
	widerSet := make(map[string]bool, len(wider.Subtypes))
	for _, w := range wider.Subtypes {
		widerSet[w.String()] = true
	}
	for _, m := range members {
		if !widerSet[m.String()] {
			return false
		}
	}
	return len(members) < len(wider.Subtypes)
}

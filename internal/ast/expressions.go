package ast

import "github.com/funvibe/pytype/internal/token"

func (*Name) expressionNode()          {}
func (*MemberAccess) expressionNode()  {}
func (*Call) expressionNode()          {}
func (*Lambda) expressionNode()        {}
func (*Yield) expressionNode()         {}
func (*YieldFrom) expressionNode()     {}
func (*FormatString) expressionNode()  {}
func (*StringList) expressionNode()    {}
func (*ErrorNode) expressionNode()     {}
func (*TupleExpr) expressionNode()     {}
func (*ListExpr) expressionNode()      {}
func (*Constant) expressionNode()      {}
func (*IndexExpr) expressionNode()     {}
func (*BinOp) expressionNode()         {}
func (*UnaryOp) expressionNode()       {}
func (*BoolOp) expressionNode()        {}
func (*Compare) expressionNode()       {}
func (*Conditional) expressionNode()   {}
func (*Starred) expressionNode()       {}

// Name is a bare identifier reference; it is also used as an assignment
// target, a for-target, an except-target, and an import-as-target.
type Name struct {
	base
	Value    string
	SymbolID int // resolved by the binder; 0 means unresolved
}

func (n *Name) Accept(v Visitor) { v.VisitName(n) }

// MemberAccess: `Left.Member`.
type MemberAccess struct {
	base
	Left      Expression
	Member    string
	MemberTok token.Token
}

func (m *MemberAccess) Accept(v Visitor) { v.VisitMemberAccess(m) }

// Call: `Function(Arguments...)`.
type Call struct {
	base
	Function   Expression
	Arguments  []Expression
	Keywords   map[string]Expression
	InDefaultInitializer bool // set by the binder when this call sits inside a parameter default
	InAssert             bool // set by the binder when this call is the (top-level) condition of an assert
}

func (c *Call) Accept(v Visitor) { v.VisitCall(c) }

// Lambda: `lambda Params: Body`.
type Lambda struct {
	base
	Params []*Param
	Body   Expression
}

func (l *Lambda) Accept(v Visitor) { v.VisitLambda(l) }

// Yield: `yield Value` (Value nil for bare `yield`).
type Yield struct {
	base
	Value Expression
}

func (y *Yield) Accept(v Visitor) { v.VisitYield(y) }

// YieldFrom: `yield from Iterable`.
type YieldFrom struct {
	base
	Iterable Expression
}

func (y *YieldFrom) Accept(v Visitor) { v.VisitYieldFrom(y) }

// FormatString is an f-string-like literal with embedded expressions.
type FormatString struct {
	base
	Parts []Expression // only the embedded expression parts; literal text is not walked
}

func (f *FormatString) Accept(v Visitor) { v.VisitFormatString(f) }

// StringList is one or more adjacent string literals concatenated, the
// common spelling of a forward-reference type annotation (`"Foo"`).
type StringList struct {
	base
	Value              string
	IsAnnotationLiteral bool // true when used as the RHS of a TypeAnnotation and should not be recursed into as a forward ref
}

func (s *StringList) Accept(v Visitor) { v.VisitStringList(s) }

// ErrorNode stands in for a syntax error the (out-of-scope) parser
// recovered from; the checker still type-queries its Child so that
// completions keep working, per spec.md §4.5.
type ErrorNode struct {
	base
	Child Expression // nil if the parser produced no partial child
}

func (e *ErrorNode) Accept(v Visitor) { v.VisitErrorNode(e) }

// TupleExpr: `(a, b, c)`, usable as an expression or as an
// assignment/for/except target for destructuring.
type TupleExpr struct {
	base
	Elements []Expression
}

func (t *TupleExpr) Accept(v Visitor) { v.VisitTuple(t) }

// ListExpr: `[a, b, c]`.
type ListExpr struct {
	base
	Elements []Expression
}

func (l *ListExpr) Accept(v Visitor) { v.VisitListExpr(l) }

// ConstantKind tags the literal kind of a Constant node.
type ConstantKind int

const (
	ConstInt ConstantKind = iota
	ConstFloat
	ConstBool
	ConstNone
	ConstStr
	ConstEllipsis
)

// Constant is a literal value (int/float/bool/None/str/ellipsis).
type Constant struct {
	base
	Kind ConstantKind
	Str  string
}

func (c *Constant) Accept(v Visitor) { v.VisitConstant(c) }

// IndexExpr: `Left[Index]` (subscript).
type IndexExpr struct {
	base
	Left  Expression
	Index Expression
}

func (i *IndexExpr) Accept(v Visitor) { v.VisitIndex(i) }

// BinOp: `Left Op Right` (arithmetic/bitwise infix).
type BinOp struct {
	base
	Left  Expression
	Op    string
	Right Expression
}

func (b *BinOp) Accept(v Visitor) { v.VisitBinOp(b) }

// UnaryOp: `Op Operand`.
type UnaryOp struct {
	base
	Op      string
	Operand Expression
}

func (u *UnaryOp) Accept(v Visitor) { v.VisitUnaryOp(u) }

// BoolOp: `Values[0] Op Values[1] Op ...` (`and`/`or` chains).
type BoolOp struct {
	base
	Op     string
	Values []Expression
}

func (b *BoolOp) Accept(v Visitor) { v.VisitBoolOp(b) }

// Compare: `Left Ops[0] Comparators[0] Ops[1] Comparators[1] ...`.
type Compare struct {
	base
	Left        Expression
	Ops         []string
	Comparators []Expression
}

func (c *Compare) Accept(v Visitor) { v.VisitCompare(c) }

// Conditional: `Body if Condition else OrElse` (the ternary expression).
type Conditional struct {
	base
	Condition Expression
	Body      Expression
	OrElse    Expression
}

func (c *Conditional) Accept(v Visitor) { v.VisitConditional(c) }

// Starred: `*Value` in a call argument or assignment target.
type Starred struct {
	base
	Value Expression
}

func (s *Starred) Accept(v Visitor) { v.VisitStarred(s) }

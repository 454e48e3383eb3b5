// Package ast defines the parse-tree node shapes the checker walks.
//
// Tokenizing, parsing, and binding are out of this repository's scope
// (spec.md §1): the real front end for a gradually-typed language is a
// large, separate component. What lives here is the minimal, concrete
// shape of that upstream output — the tagged union of node kinds the
// checker's walker (internal/checker) dispatches on — so the checker has
// real input to run against and so tests can build literal scenario
// programs directly, the way the teacher's analyzer package is handed an
// already-parsed *ast.Program.
package ast

import "github.com/funvibe/pytype/internal/token"

// Node is the base interface for every node in the tree, mirroring the
// teacher's ast.Node (TokenLiteral + Accept) but named for this domain.
type Node interface {
	GetRange() token.Range
	Accept(v Visitor)
}

// Statement is a Node that appears in a statement position.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that appears in an expression position.
type Expression interface {
	Node
	expressionNode()
}

// FlowNode is attached by the binder to statements and certain
// expressions that are control-flow-significant; the checker's
// reachability oracle (C3) reads nothing but this flag.
type FlowNode struct {
	Unreachable bool
	// AfterUnreachable is set by the binder when control can never fall
	// through past this node (e.g. the node always returns/raises).
	AfterUnreachable bool
}

// base carries the fields every concrete node embeds: its source range
// and the flow node the binder attached to it. Flow is nil for nodes the
// binder does not track (most expressions); absence means "reachable".
type base struct {
	Range  token.Range
	flow   *FlowNode
}

func (b *base) GetRange() token.Range { return b.Range }

// Flow returns the flow node the binder attached to this statement, or
// nil if none was attached (the common case for plain expressions).
func (b *base) Flow() *FlowNode { return b.flow }

// SetFlow is called by the binder while building the tree.
func (b *base) SetFlow(f *FlowNode) { b.flow = f }

// FlowHolder is satisfied by every concrete node (through the embedded
// base) and lets binder/reachability code read and set flow flags
// without depending on the Node interface carrying them directly.
type FlowHolder interface {
	Flow() *FlowNode
	SetFlow(*FlowNode)
}

// Visitor is the double-dispatch interface the walker (C5) implements.
// One method per node kind — a flat switch table, not an inheritance
// hierarchy, per the teacher's own "polymorphism over tree nodes" idiom.
type Visitor interface {
	VisitModule(*Module)
	VisitClassDef(*ClassDef)
	VisitFunctionDef(*FunctionDef)
	VisitLambda(*Lambda)
	VisitCall(*Call)
	VisitReturn(*Return)
	VisitYield(*Yield)
	VisitYieldFrom(*YieldFrom)
	VisitRaise(*Raise)
	VisitAssign(*Assign)
	VisitAugAssign(*AugAssign)
	VisitAnnAssign(*AnnAssign)
	VisitDel(*Del)
	VisitMemberAccess(*MemberAccess)
	VisitImport(*Import)
	VisitImportFrom(*ImportFrom)
	VisitName(*Name)
	VisitFor(*For)
	VisitWhile(*While)
	VisitIf(*If)
	VisitAssert(*Assert)
	VisitWith(*With)
	VisitTry(*Try)
	VisitFormatString(*FormatString)
	VisitStringList(*StringList)
	VisitErrorNode(*ErrorNode)
	VisitExpressionStatement(*ExpressionStatement)
	VisitTuple(*TupleExpr)
	VisitListExpr(*ListExpr)
	VisitConstant(*Constant)
	VisitIndex(*IndexExpr)
	VisitBinOp(*BinOp)
	VisitUnaryOp(*UnaryOp)
	VisitBoolOp(*BoolOp)
	VisitCompare(*Compare)
	VisitConditional(*Conditional)
	VisitStarred(*Starred)
}

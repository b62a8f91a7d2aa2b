package syntax

import "fmt"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a syntax tree in depth-first order. Items, blocks,
// statements and expressions are visited; types, patterns and attributes
// are leaves reached only through their owning node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *File:
		walkItems(v, n.Items)

	// Items
	case *FnItem:
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *ModItem:
		walkItems(v, n.Items)
	case *ImplItem:
		walkItems(v, n.Items)
	case *TraitItem:
		walkItems(v, n.Items)
	case *ConstItem:
		walkExpr(v, n.Value)
	case *UseItem, *StructItem, *EnumItem, *TypeAliasItem, *MacroItem, *ExternCrateItem, *ForeignModItem:
		// leaves

	// Statements
	case *Block:
		for _, s := range n.Stmts {
			Walk(v, s)
		}
	case *LetStmt:
		walkExpr(v, n.Init)
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *ExprStmt:
		walkExpr(v, n.X)
	case *ItemStmt:
		Walk(v, n.Item)

	// Expressions
	case *LitExpr, *PathExpr, *ContinueExpr, *BadExpr:
		// leaves
	case *CallExpr:
		walkExpr(v, n.Func)
		walkExprs(v, n.Args)
	case *MethodCallExpr:
		walkExpr(v, n.Receiver)
		walkExprs(v, n.Args)
	case *FieldExpr:
		walkExpr(v, n.X)
	case *IndexExpr:
		walkExpr(v, n.X)
		walkExpr(v, n.Index)
	case *UnaryExpr:
		walkExpr(v, n.X)
	case *RefExpr:
		walkExpr(v, n.X)
	case *BinaryExpr:
		walkExpr(v, n.X)
		walkExpr(v, n.Y)
	case *CastExpr:
		walkExpr(v, n.X)
	case *RangeExpr:
		walkExpr(v, n.From)
		walkExpr(v, n.To)
	case *TryExpr:
		walkExpr(v, n.X)
	case *AwaitExpr:
		walkExpr(v, n.X)
	case *ParenExpr:
		walkExpr(v, n.X)
	case *TupleExpr:
		walkExprs(v, n.Elems)
	case *ArrayExpr:
		walkExprs(v, n.Elems)
		walkExpr(v, n.Len)
	case *StructExpr:
		for _, f := range n.Fields {
			walkExpr(v, f.Value)
		}
		walkExpr(v, n.Rest)
	case *BlockExpr:
		Walk(v, n.Block)
	case *ClosureExpr:
		walkExpr(v, n.Body)
	case *IfExpr:
		walkExpr(v, n.Cond)
		Walk(v, n.Then)
		walkExpr(v, n.Else)
	case *LetExpr:
		walkExpr(v, n.X)
	case *MatchExpr:
		walkExpr(v, n.X)
		for _, a := range n.Arms {
			walkExpr(v, a.Guard)
			walkExpr(v, a.Body)
		}
	case *WhileExpr:
		walkExpr(v, n.Cond)
		Walk(v, n.Body)
	case *LoopExpr:
		Walk(v, n.Body)
	case *ForExpr:
		walkExpr(v, n.Iter)
		Walk(v, n.Body)
	case *MacroExpr:
		walkExprs(v, n.Args)
	case *ReturnExpr:
		walkExpr(v, n.X)
	case *BreakExpr:
		walkExpr(v, n.X)

	default:
		panic(fmt.Sprintf("syntax.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

func walkItems(v Visitor, items []Item) {
	for _, it := range items {
		Walk(v, it)
	}
}

func walkExprs(v Visitor, list []Expr) {
	for _, x := range list {
		Walk(v, x)
	}
}

// walkExpr walks x unless it is nil; optional children are common.
func walkExpr(v Visitor, x Expr) {
	if x != nil {
		Walk(v, x)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses a syntax tree in depth-first order: It starts by
// calling f(node); node must not be nil. If f returns true, Inspect invokes
// f recursively for each of the non-nil children of node, followed by a
// call of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

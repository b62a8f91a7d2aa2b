package syntax

import "strings"

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() Pos
}

// Span records where a node starts. It is embedded in every node.
type Span struct {
	Position Pos
}

// Pos returns the start position of the node.
func (s Span) Pos() Pos { return s.Position }

// File is the parsed form of one source file.
type File struct {
	Span
	Path  string
	Attrs []*Attribute
	Items []Item

	// Recovered lists statement-level errors that were replaced by
	// BadExpr nodes.
	Recovered ErrorList
}

// ----------------------------------------------------------------------------
// Attributes and paths

// Attribute is an outer (#[..]) or inner (#![..]) attribute. Args holds the
// tokens inside the delimiter after the path, and Value holds the tokens
// after '=' for the #[name = value] form.
type Attribute struct {
	Span
	Inner   bool
	Path    Path
	HasArgs bool
	Args    []Token
	Value   []Token
}

// Name returns the last segment of the attribute path.
func (a *Attribute) Name() string {
	return a.Path.LastName()
}

// StringArg returns the first string literal inside the attribute's
// delimiter, as in #[get("/users")].
func (a *Attribute) StringArg() (string, bool) {
	if len(a.Args) == 0 {
		return "", false
	}
	first := a.Args[0]
	if first.Kind == Literal && first.LitKind == LitStr {
		return first.Value, true
	}
	return "", false
}

// PathSegment is one segment of a path, with the generic arguments that
// were attached to it (types only; lifetimes and bindings are dropped).
type PathSegment struct {
	Name string
	Args []Type
}

// Path is a possibly-global, '::'-separated path.
type Path struct {
	Global   bool
	Segments []PathSegment
}

// LastName returns the identifier of the final segment, or "".
func (p Path) LastName() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1].Name
}

// Last returns the final segment, or nil for an empty path.
func (p Path) Last() *PathSegment {
	if len(p.Segments) == 0 {
		return nil
	}
	return &p.Segments[len(p.Segments)-1]
}

// String joins the segment names with '::'.
func (p Path) String() string {
	names := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		names[i] = s.Name
	}
	s := strings.Join(names, "::")
	if p.Global {
		return "::" + s
	}
	return s
}

// ----------------------------------------------------------------------------
// Items

// Item is a top-level or nested declaration.
type Item interface {
	Node
	itemNode()
}

// Visibility is the pub qualifier of an item.
type Visibility struct {
	Public bool
	// Restriction is crate, super, self or in-path for pub(..) forms.
	Restriction string
}

type (
	// UseItem is a use declaration.
	UseItem struct {
		Span
		Attrs []*Attribute
		Vis   Visibility
		Tree  UseTree
	}

	// FnItem is a function or method declaration. Body is nil for
	// trait method declarations without a default body.
	FnItem struct {
		Span
		Attrs []*Attribute
		Vis   Visibility
		Sig   *Signature
		Body  *Block
	}

	// StructItem is a struct or union declaration.
	StructItem struct {
		Span
		Attrs  []*Attribute
		Vis    Visibility
		Name   string
		Kind   FieldsKind
		Fields []*Field
	}

	// EnumItem is an enum declaration.
	EnumItem struct {
		Span
		Attrs    []*Attribute
		Vis      Visibility
		Name     string
		Variants []*Variant
	}

	// ModItem is a module. Inline is false for `mod name;`.
	ModItem struct {
		Span
		Attrs  []*Attribute
		Vis    Visibility
		Name   string
		Inline bool
		Items  []Item
	}

	// ImplItem is an inherent or trait impl block.
	ImplItem struct {
		Span
		Attrs    []*Attribute
		Trait    *Path
		SelfType Type
		Items    []Item
	}

	// TraitItem is a trait declaration.
	TraitItem struct {
		Span
		Attrs []*Attribute
		Vis   Visibility
		Name  string
		Items []Item
	}

	// ConstItem is a const or static declaration.
	ConstItem struct {
		Span
		Attrs  []*Attribute
		Vis    Visibility
		Static bool
		Name   string
		Type   Type
		Value  Expr
	}

	// TypeAliasItem is a type alias or associated type.
	TypeAliasItem struct {
		Span
		Attrs []*Attribute
		Vis   Visibility
		Name  string
		Type  Type
	}

	// MacroItem is an item-position macro invocation or macro_rules!
	// definition. Name is set for macro_rules!.
	MacroItem struct {
		Span
		Attrs  []*Attribute
		Path   Path
		Name   string
		Tokens []Token
	}

	// ExternCrateItem is `extern crate name [as rename];`.
	ExternCrateItem struct {
		Span
		Attrs  []*Attribute
		Name   string
		Rename string
	}

	// ForeignModItem is an `extern "ABI" { .. }` block. Its contents are
	// kept as tokens.
	ForeignModItem struct {
		Span
		Attrs  []*Attribute
		Tokens []Token
	}
)

func (*UseItem) itemNode()         {}
func (*FnItem) itemNode()          {}
func (*StructItem) itemNode()      {}
func (*EnumItem) itemNode()        {}
func (*ModItem) itemNode()         {}
func (*ImplItem) itemNode()        {}
func (*TraitItem) itemNode()       {}
func (*ConstItem) itemNode()       {}
func (*TypeAliasItem) itemNode()   {}
func (*MacroItem) itemNode()       {}
func (*ExternCrateItem) itemNode() {}
func (*ForeignModItem) itemNode()  {}

// FieldsKind distinguishes named, tuple and unit field lists.
type FieldsKind int

const (
	NamedFields FieldsKind = iota
	TupleFields
	UnitFields
)

// Field is a struct or variant field. Name is empty for tuple fields.
type Field struct {
	Span
	Attrs []*Attribute
	Vis   Visibility
	Name  string
	Type  Type
}

// Variant is one enum variant.
type Variant struct {
	Span
	Attrs        []*Attribute
	Name         string
	Kind         FieldsKind
	Fields       []*Field
	Discriminant Expr
}

// Signature is a function signature. Output is nil for the default unit
// return type.
type Signature struct {
	Span
	Name   string
	Const  bool
	Async  bool
	Unsafe bool
	Inputs []*FnArg
	Output Type
}

// FnArg is one function parameter. Receiver arguments (self, &self,
// &mut self, self: T) set Receiver; Type is nil for the shorthand forms.
type FnArg struct {
	Span
	Attrs    []*Attribute
	Receiver bool
	Pat      Pat
	Type     Type
}

// ----------------------------------------------------------------------------
// Use trees

// UseTree is one node of a use declaration's tree.
type UseTree interface {
	Node
	useTreeNode()
}

type (
	// UsePath is `name::tree`.
	UsePath struct {
		Span
		Name string
		Tree UseTree
	}

	// UseName is a leaf import.
	UseName struct {
		Span
		Name string
	}

	// UseRename is `name as rename`.
	UseRename struct {
		Span
		Name   string
		Rename string
	}

	// UseGlob is `*`.
	UseGlob struct {
		Span
	}

	// UseGroup is `{a, b::c}`.
	UseGroup struct {
		Span
		Trees []UseTree
	}
)

func (*UsePath) useTreeNode()   {}
func (*UseName) useTreeNode()   {}
func (*UseRename) useTreeNode() {}
func (*UseGlob) useTreeNode()   {}
func (*UseGroup) useTreeNode()  {}

// ----------------------------------------------------------------------------
// Types

// Type is a type expression.
type Type interface {
	Node
	typeNode()
}

type (
	// PathType is a named type such as Json<User> or std::vec::Vec<T>.
	// QSelf is set for qualified paths like <T as Trait>::Output.
	PathType struct {
		Span
		QSelf Type
		Path  Path
	}

	// RefType is &'a mut T.
	RefType struct {
		Span
		Lifetime string
		Mut      bool
		Elem     Type
	}

	// PtrType is *const T or *mut T.
	PtrType struct {
		Span
		Mut  bool
		Elem Type
	}

	// TupleType is (A, B); the unit type has no elements.
	TupleType struct {
		Span
		Elems []Type
	}

	// SliceType is [T].
	SliceType struct {
		Span
		Elem Type
	}

	// ArrayType is [T; N].
	ArrayType struct {
		Span
		Elem Type
		Len  Expr
	}

	// ImplTraitType is impl Trait + 'a.
	ImplTraitType struct {
		Span
		Bounds []Path
	}

	// DynTraitType is dyn Trait, or a bare trait object.
	DynTraitType struct {
		Span
		Bounds []Path
	}

	// FnPtrType is fn(A) -> B.
	FnPtrType struct {
		Span
		Inputs []Type
		Output Type
	}

	// NeverType is !.
	NeverType struct {
		Span
	}

	// InferType is _.
	InferType struct {
		Span
	}

	// MacroType is a type-position macro invocation.
	MacroType struct {
		Span
		Path   Path
		Tokens []Token
	}
)

func (*PathType) typeNode()      {}
func (*RefType) typeNode()       {}
func (*PtrType) typeNode()       {}
func (*TupleType) typeNode()     {}
func (*SliceType) typeNode()     {}
func (*ArrayType) typeNode()     {}
func (*ImplTraitType) typeNode() {}
func (*DynTraitType) typeNode()  {}
func (*FnPtrType) typeNode()     {}
func (*NeverType) typeNode()     {}
func (*InferType) typeNode()     {}
func (*MacroType) typeNode()     {}

// ----------------------------------------------------------------------------
// Patterns

// Pat is a pattern kept as its token run. Patterns matter to the analysis
// only as binding names.
type Pat struct {
	Span
	Tokens []Token
}

// Ident returns the bound name of a simple identifier pattern such as
// `x`, `mut x` or `ref mut x`, and "" for anything else.
func (p Pat) Ident() string {
	toks := p.Tokens
	for len(toks) > 1 && (toks[0].Is("mut") || toks[0].Is("ref")) {
		toks = toks[1:]
	}
	if len(toks) == 1 && toks[0].Kind == Ident {
		return toks[0].Text
	}
	return ""
}

// ----------------------------------------------------------------------------
// Statements and blocks

// Block is a brace-delimited statement list.
type Block struct {
	Span
	Stmts []Stmt
}

// Stmt is a statement inside a block.
type Stmt interface {
	Node
	stmtNode()
}

type (
	// LetStmt is `let pat [: Type] [= init] [else { .. }];`.
	LetStmt struct {
		Span
		Pat  Pat
		Type Type
		Init Expr
		Else *Block
	}

	// ExprStmt is an expression statement. Semi records a trailing ';'.
	ExprStmt struct {
		Span
		X    Expr
		Semi bool
	}

	// ItemStmt is an item declared inside a block.
	ItemStmt struct {
		Span
		Item Item
	}
)

func (*LetStmt) stmtNode()  {}
func (*ExprStmt) stmtNode() {}
func (*ItemStmt) stmtNode() {}

// ----------------------------------------------------------------------------
// Expressions

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

type (
	// LitExpr is a literal. Bool literals use an Ident token.
	LitExpr struct {
		Span
		Tok Token
	}

	// PathExpr is a path used as a value, including turbofish arguments.
	PathExpr struct {
		Span
		Path Path
	}

	// CallExpr is func(args).
	CallExpr struct {
		Span
		Func Expr
		Args []Expr
	}

	// MethodCallExpr is receiver.method::<T>(args).
	MethodCallExpr struct {
		Span
		Receiver  Expr
		Method    string
		Turbofish []Type
		Args      []Expr
	}

	// FieldExpr is x.name or x.0.
	FieldExpr struct {
		Span
		X    Expr
		Name string
	}

	// IndexExpr is x[index].
	IndexExpr struct {
		Span
		X     Expr
		Index Expr
	}

	// UnaryExpr is -x, !x or *x.
	UnaryExpr struct {
		Span
		Op string
		X  Expr
	}

	// RefExpr is &x or &mut x.
	RefExpr struct {
		Span
		Mut bool
		X   Expr
	}

	// BinaryExpr covers arithmetic, comparison, logical and assignment
	// operators.
	BinaryExpr struct {
		Span
		Op string
		X  Expr
		Y  Expr
	}

	// CastExpr is x as T.
	CastExpr struct {
		Span
		X    Expr
		Type Type
	}

	// RangeExpr is a..b or a..=b; either end may be nil.
	RangeExpr struct {
		Span
		From      Expr
		To        Expr
		Inclusive bool
	}

	// TryExpr is x?.
	TryExpr struct {
		Span
		X Expr
	}

	// AwaitExpr is x.await.
	AwaitExpr struct {
		Span
		X Expr
	}

	// ParenExpr is (x).
	ParenExpr struct {
		Span
		X Expr
	}

	// TupleExpr is (a, b) or ().
	TupleExpr struct {
		Span
		Elems []Expr
	}

	// ArrayExpr is [a, b] or [x; n]. Len is set for the repeat form.
	ArrayExpr struct {
		Span
		Elems []Expr
		Len   Expr
	}

	// StructExpr is Path { field: value, ..rest }.
	StructExpr struct {
		Span
		Path   Path
		Fields []*FieldValue
		Rest   Expr
	}

	// BlockExpr is a block, possibly async, unsafe, const or labeled.
	BlockExpr struct {
		Span
		Label  string
		Async  bool
		Move   bool
		Unsafe bool
		Const  bool
		Block  *Block
	}

	// ClosureExpr is [async] [move] |params| [-> T] body.
	ClosureExpr struct {
		Span
		Async  bool
		Move   bool
		Params []*ClosureParam
		Output Type
		Body   Expr
	}

	// IfExpr is if cond { .. } [else ..]. Else is nil, another *IfExpr or
	// a *BlockExpr.
	IfExpr struct {
		Span
		Cond Expr
		Then *Block
		Else Expr
	}

	// LetExpr is the `let pat = x` condition of if-let and while-let.
	LetExpr struct {
		Span
		Pat Pat
		X   Expr
	}

	// MatchExpr is match x { arms }.
	MatchExpr struct {
		Span
		X    Expr
		Arms []*Arm
	}

	// WhileExpr is [label:] while cond { .. }.
	WhileExpr struct {
		Span
		Label string
		Cond  Expr
		Body  *Block
	}

	// LoopExpr is [label:] loop { .. }.
	LoopExpr struct {
		Span
		Label string
		Body  *Block
	}

	// ForExpr is [label:] for pat in iter { .. }.
	ForExpr struct {
		Span
		Label string
		Pat   Pat
		Iter  Expr
		Body  *Block
	}

	// MacroExpr is path!(..). Args holds the comma-separated arguments when
	// they parse as expressions and is nil otherwise.
	MacroExpr struct {
		Span
		Path   Path
		Delim  Delim
		Tokens []Token
		Args   []Expr
	}

	// ReturnExpr is return [x].
	ReturnExpr struct {
		Span
		X Expr
	}

	// BreakExpr is break ['label] [x].
	BreakExpr struct {
		Span
		Label string
		X     Expr
	}

	// ContinueExpr is continue ['label].
	ContinueExpr struct {
		Span
		Label string
	}

	// BadExpr stands in for a statement the parser could not understand.
	BadExpr struct {
		Span
		Tokens []Token
	}
)

// FieldValue is one field initializer of a struct expression.
type FieldValue struct {
	Span
	Name  string
	Value Expr
}

// ClosureParam is one closure parameter.
type ClosureParam struct {
	Span
	Pat  Pat
	Type Type
}

// Arm is one match arm.
type Arm struct {
	Span
	Pat   Pat
	Guard Expr
	Body  Expr
}

func (*LitExpr) exprNode()        {}
func (*PathExpr) exprNode()       {}
func (*CallExpr) exprNode()       {}
func (*MethodCallExpr) exprNode() {}
func (*FieldExpr) exprNode()      {}
func (*IndexExpr) exprNode()      {}
func (*UnaryExpr) exprNode()      {}
func (*RefExpr) exprNode()        {}
func (*BinaryExpr) exprNode()     {}
func (*CastExpr) exprNode()       {}
func (*RangeExpr) exprNode()      {}
func (*TryExpr) exprNode()        {}
func (*AwaitExpr) exprNode()      {}
func (*ParenExpr) exprNode()      {}
func (*TupleExpr) exprNode()      {}
func (*ArrayExpr) exprNode()      {}
func (*StructExpr) exprNode()     {}
func (*BlockExpr) exprNode()      {}
func (*ClosureExpr) exprNode()    {}
func (*IfExpr) exprNode()         {}
func (*LetExpr) exprNode()        {}
func (*MatchExpr) exprNode()      {}
func (*WhileExpr) exprNode()      {}
func (*LoopExpr) exprNode()       {}
func (*ForExpr) exprNode()        {}
func (*MacroExpr) exprNode()      {}
func (*ReturnExpr) exprNode()     {}
func (*BreakExpr) exprNode()      {}
func (*ContinueExpr) exprNode()   {}
func (*BadExpr) exprNode()        {}

// StringValue returns the decoded value of a string literal.
func (x *LitExpr) StringValue() (string, bool) {
	if x.Tok.Kind == Literal && x.Tok.LitKind == LitStr {
		return x.Tok.Value, true
	}
	return "", false
}

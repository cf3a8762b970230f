// ir.go: the statically-typed intermediate representation.
//
// Every node carries the static type the parser resolved for it. Nodes are
// immutable once built; ownership of the root Block passes to the executable
// backend. Statement-shaped nodes (Declare, Print) are Void.
package slate

// Node is one IR tree element.
type Node interface {
	Type() PrimitiveType
}

// Literal is a constant whose runtime type became its static type.
type Literal struct {
	Val any
	Typ PrimitiveType
}

func (n *Literal) Type() PrimitiveType { return n.Typ }

// VarRef reads a variable. It always resolves through the symbol table and
// never holds its own copy of the value.
type VarRef struct {
	Sym  *Symbol
	Line int
}

func (n *VarRef) Type() PrimitiveType { return n.Sym.Type }

// Declare introduces a variable. Init is nil when no initializer was given;
// otherwise it has already been coerced to the declared type.
type Declare struct {
	Sym  *Symbol
	Init Node
	Line int
}

func (n *Declare) Type() PrimitiveType { return TypeVoid }

// Assign stores Value into a declared variable. Compound operators were
// desugared by the parser: Value already embeds the binary operation and the
// trailing coercion to the variable's declared type.
type Assign struct {
	Sym   *Symbol
	Value Node
	Line  int
}

func (n *Assign) Type() PrimitiveType { return n.Sym.Type }

// IncDec is a prefix or postfix ++/-- on a variable.
type IncDec struct {
	Sym       *Symbol
	Prefix    bool
	Increment bool
	Line      int
}

func (n *IncDec) Type() PrimitiveType { return n.Sym.Type }

// Binary applies an infix operator. The parser only promotes operands where
// the grammar calls for it; the backend rejects the node at build time when
// the operand types are not representation-identical.
type Binary struct {
	Op    TokenType
	Left  Node
	Right Node
	Typ   PrimitiveType
	Line  int
}

func (n *Binary) Type() PrimitiveType { return n.Typ }

// Unary applies a prefix operator (!, -, ~).
type Unary struct {
	Op      TokenType
	Operand Node
	Typ     PrimitiveType
	Line    int
}

func (n *Unary) Type() PrimitiveType { return n.Typ }

// Concat is the string-append specialization of '+': both operands are
// Object-coerced and the right side is stringified at runtime.
type Concat struct {
	Left  Node
	Right Node
}

func (n *Concat) Type() PrimitiveType { return TypeString }

// Convert changes a value's representation to Target.
type Convert struct {
	Value  Node
	Target PrimitiveType
}

func (n *Convert) Type() PrimitiveType { return n.Target }

// Print writes its Object-coerced value through the session's intrinsics.
type Print struct {
	Value Node
	Line  int
}

func (n *Print) Type() PrimitiveType { return TypeVoid }

// Block is an ordered statement sequence. Its type is Void unless the caller
// treats the final statement's value as the block result (REPL echo mode),
// in which case Typ is the last element's type.
type Block struct {
	Stmts []Node
	Typ   PrimitiveType
}

func (n *Block) Type() PrimitiveType { return n.Typ }

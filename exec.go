// exec.go — the executable backend: compiles an accepted IR block into a
// runnable routine and runs it.
//
// Build walks the IR once and produces a tree of closures; Run invokes the
// root. The build step is where the "no implicit widening" rule is actually
// enforced: any Binary or Unary node whose operand representations are not
// identical is rejected with a TYPE ERROR before anything executes. Runtime
// failures (divide by zero, bad object conversion) surface as
// *Error{Kind: DiagRuntime} and never re-enter the parser.
//
// Value representations: int→int32, long→int64, double→float64,
// string→string, char→Char, bool→bool, object→any (boxed).
package slate

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

// Char is the runtime representation of the char type. It is distinct from
// int32 so boxed values keep their identity when printed or concatenated.
type Char rune

// Intrinsics is the small host-injected surface the backend calls through
// for generic operations; no runtime type lookup is involved.
type Intrinsics interface {
	Concat(a, b any) string
	PrintLine(v any)
}

// StdIntrinsics writes to Out using the default value formatting.
type StdIntrinsics struct {
	Out io.Writer
}

func (s StdIntrinsics) Concat(a, b any) string { return FormatValue(a) + FormatValue(b) }
func (s StdIntrinsics) PrintLine(v any)        { fmt.Fprintln(s.Out, FormatValue(v)) }

// FormatValue renders a runtime value the way print shows it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case Char:
		return string(rune(x))
	case bool:
		return strconv.FormatBool(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// thunk is one compiled node. Statement-shaped nodes yield nil.
type thunk func() (any, error)

// Program is a compiled, runnable block.
type Program struct {
	root thunk
	typ  PrimitiveType
}

// ResultType is the static type of the block's final statement (Void when
// the block ends in a statement with no value).
func (p *Program) ResultType() PrimitiveType { return p.typ }

// Run executes the program and returns the final statement's value.
func (p *Program) Run() (any, error) { return p.root() }

// Build compiles block against the given intrinsics. The caller must not
// pass a block from a session whose diagnostic sink recorded errors.
func Build(block *Block, intr Intrinsics) (*Program, error) {
	b := &builder{intr: intr}
	root, err := b.compile(block)
	if err != nil {
		return nil, err
	}
	return &Program{root: root, typ: block.Typ}, nil
}

type builder struct {
	intr Intrinsics
}

func (b *builder) compile(n Node) (thunk, error) {
	switch n := n.(type) {
	case *Block:
		return b.compileBlock(n)
	case *Literal:
		return b.compileLiteral(n)
	case *VarRef:
		cell := n.Sym.Cell
		return func() (any, error) { return cell.Get(), nil }, nil
	case *Declare:
		return b.compileDeclare(n)
	case *Assign:
		return b.compileAssign(n)
	case *IncDec:
		return b.compileIncDec(n)
	case *Binary:
		return b.compileBinary(n)
	case *Unary:
		return b.compileUnary(n)
	case *Concat:
		return b.compileConcat(n)
	case *Convert:
		return b.compileConvert(n)
	case *Print:
		return b.compilePrint(n)
	default:
		return nil, &Error{Kind: DiagType, Msg: fmt.Sprintf("cannot compile %T node", n)}
	}
}

func (b *builder) compileBlock(n *Block) (thunk, error) {
	steps := make([]thunk, len(n.Stmts))
	for i, st := range n.Stmts {
		t, err := b.compile(st)
		if err != nil {
			return nil, err
		}
		steps[i] = t
	}
	return func() (any, error) {
		var last any
		for _, step := range steps {
			v, err := step()
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	}, nil
}

func (b *builder) compileLiteral(n *Literal) (thunk, error) {
	v := n.Val
	if n.Typ == TypeChar {
		v = Char(n.Val.(rune))
	}
	return func() (any, error) { return v, nil }, nil
}

func (b *builder) compileDeclare(n *Declare) (thunk, error) {
	cell := n.Sym.Cell
	if n.Init == nil {
		zero := zeroValue(n.Sym.Type)
		return func() (any, error) {
			cell.Set(zero)
			return nil, nil
		}, nil
	}
	init, err := b.compile(n.Init)
	if err != nil {
		return nil, err
	}
	return func() (any, error) {
		v, err := init()
		if err != nil {
			return nil, err
		}
		cell.Set(v)
		return nil, nil
	}, nil
}

func (b *builder) compileAssign(n *Assign) (thunk, error) {
	value, err := b.compile(n.Value)
	if err != nil {
		return nil, err
	}
	cell := n.Sym.Cell
	return func() (any, error) {
		v, err := value()
		if err != nil {
			return nil, err
		}
		cell.Set(v)
		return v, nil
	}, nil
}

func (b *builder) compileIncDec(n *IncDec) (thunk, error) {
	cell := n.Sym.Cell
	line := n.Line
	var delta int64 = 1
	if !n.Increment {
		delta = -1
	}
	prefix := n.Prefix
	switch n.Sym.Type {
	case TypeInt:
		return func() (any, error) {
			old, ok := cell.Get().(int32)
			if !ok {
				return nil, rtErr(line, "variable used before initialization")
			}
			now := old + int32(delta)
			cell.Set(now)
			if prefix {
				return now, nil
			}
			return old, nil
		}, nil
	case TypeLong:
		return func() (any, error) {
			old, ok := cell.Get().(int64)
			if !ok {
				return nil, rtErr(line, "variable used before initialization")
			}
			now := old + delta
			cell.Set(now)
			if prefix {
				return now, nil
			}
			return old, nil
		}, nil
	case TypeDouble:
		return func() (any, error) {
			old, ok := cell.Get().(float64)
			if !ok {
				return nil, rtErr(line, "variable used before initialization")
			}
			now := old + float64(delta)
			cell.Set(now)
			if prefix {
				return now, nil
			}
			return old, nil
		}, nil
	default:
		return nil, &Error{Kind: DiagType, Line: line, Msg: fmt.Sprintf("cannot increment %s", n.Sym.Type)}
	}
}

func (b *builder) compileConcat(n *Concat) (thunk, error) {
	left, err := b.compile(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.compile(n.Right)
	if err != nil {
		return nil, err
	}
	intr := b.intr
	return func() (any, error) {
		l, err := left()
		if err != nil {
			return nil, err
		}
		r, err := right()
		if err != nil {
			return nil, err
		}
		return intr.Concat(l, r), nil
	}, nil
}

func (b *builder) compilePrint(n *Print) (thunk, error) {
	value, err := b.compile(n.Value)
	if err != nil {
		return nil, err
	}
	intr := b.intr
	return func() (any, error) {
		v, err := value()
		if err != nil {
			return nil, err
		}
		intr.PrintLine(v)
		return nil, nil
	}, nil
}

// ───────────────────────────── unary / binary ──────────────────────────────

func (b *builder) compileUnary(n *Unary) (thunk, error) {
	operand, err := b.compile(n.Operand)
	if err != nil {
		return nil, err
	}
	if n.Operand.Type() != n.Typ {
		return nil, &Error{Kind: DiagType, Line: n.Line,
			Msg: fmt.Sprintf("operand type mismatch: %s operator on %s", n.Typ, n.Operand.Type())}
	}
	var apply func(any) any
	switch n.Op {
	case NOT:
		apply = func(v any) any { return !v.(bool) }
	case MINUS:
		switch n.Typ {
		case TypeInt:
			apply = func(v any) any { return -v.(int32) }
		case TypeLong:
			apply = func(v any) any { return -v.(int64) }
		case TypeDouble:
			apply = func(v any) any { return -v.(float64) }
		}
	case TILDE:
		switch n.Typ {
		case TypeInt:
			apply = func(v any) any { return ^v.(int32) }
		case TypeLong:
			apply = func(v any) any { return ^v.(int64) }
		}
	}
	if apply == nil {
		return nil, &Error{Kind: DiagType, Line: n.Line, Msg: fmt.Sprintf("unsupported unary operator on %s", n.Typ)}
	}
	return func() (any, error) {
		v, err := operand()
		if err != nil {
			return nil, err
		}
		return apply(v), nil
	}, nil
}

func (b *builder) compileBinary(n *Binary) (thunk, error) {
	lt, rt := n.Left.Type(), n.Right.Type()
	if lt != rt {
		// The enforcement point for the no-implicit-widening rule: the
		// parser deliberately let mismatched arithmetic/bitwise operands
		// through, and they fail here, before anything runs.
		return nil, &Error{Kind: DiagType, Line: n.Line,
			Msg: fmt.Sprintf("operand type mismatch: %s vs %s", lt, rt)}
	}
	left, err := b.compile(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.compile(n.Right)
	if err != nil {
		return nil, err
	}
	apply, err := binaryOp(n.Op, lt, n.Line)
	if err != nil {
		return nil, err
	}
	return func() (any, error) {
		l, err := left()
		if err != nil {
			return nil, err
		}
		r, err := right()
		if err != nil {
			return nil, err
		}
		return apply(l, r)
	}, nil
}

type binFn func(l, r any) (any, error)

// binaryOp selects the operator implementation for representation-identical
// operands of type t.
func binaryOp(op TokenType, t PrimitiveType, line int) (binFn, error) {
	switch op {
	case EQ:
		return func(l, r any) (any, error) { return l == r, nil }, nil
	case NEQ:
		return func(l, r any) (any, error) { return l != r, nil }, nil
	}

	switch t {
	case TypeInt:
		if fn := intOp(op, line); fn != nil {
			return fn, nil
		}
	case TypeLong:
		if fn := longOp(op, line); fn != nil {
			return fn, nil
		}
	case TypeDouble:
		if fn := doubleOp(op, line); fn != nil {
			return fn, nil
		}
	}
	return nil, &Error{Kind: DiagType, Line: line, Msg: fmt.Sprintf("unsupported operator on %s", t)}
}

func intOp(op TokenType, line int) binFn {
	wrap := func(f func(a, b int32) (any, error)) binFn {
		return func(l, r any) (any, error) { return f(l.(int32), r.(int32)) }
	}
	switch op {
	case PLUS:
		return wrap(func(a, b int32) (any, error) { return a + b, nil })
	case MINUS:
		return wrap(func(a, b int32) (any, error) { return a - b, nil })
	case MULT:
		return wrap(func(a, b int32) (any, error) { return a * b, nil })
	case DIV:
		return wrap(func(a, b int32) (any, error) {
			if b == 0 {
				return nil, rtErr(line, "division by zero")
			}
			return a / b, nil
		})
	case MOD:
		return wrap(func(a, b int32) (any, error) {
			if b == 0 {
				return nil, rtErr(line, "modulo by zero")
			}
			return a % b, nil
		})
	case LESS:
		return wrap(func(a, b int32) (any, error) { return a < b, nil })
	case LESS_EQ:
		return wrap(func(a, b int32) (any, error) { return a <= b, nil })
	case GREATER:
		return wrap(func(a, b int32) (any, error) { return a > b, nil })
	case GREATER_EQ:
		return wrap(func(a, b int32) (any, error) { return a >= b, nil })
	case PIPE:
		return wrap(func(a, b int32) (any, error) { return a | b, nil })
	case CARET:
		return wrap(func(a, b int32) (any, error) { return a ^ b, nil })
	case AMP:
		return wrap(func(a, b int32) (any, error) { return a & b, nil })
	case SHL:
		return wrap(func(a, b int32) (any, error) {
			if b < 0 {
				return nil, rtErr(line, "negative shift amount")
			}
			return a << uint(b), nil
		})
	case SHR:
		return wrap(func(a, b int32) (any, error) {
			if b < 0 {
				return nil, rtErr(line, "negative shift amount")
			}
			return a >> uint(b), nil
		})
	}
	return nil
}

func longOp(op TokenType, line int) binFn {
	wrap := func(f func(a, b int64) (any, error)) binFn {
		return func(l, r any) (any, error) { return f(l.(int64), r.(int64)) }
	}
	switch op {
	case PLUS:
		return wrap(func(a, b int64) (any, error) { return a + b, nil })
	case MINUS:
		return wrap(func(a, b int64) (any, error) { return a - b, nil })
	case MULT:
		return wrap(func(a, b int64) (any, error) { return a * b, nil })
	case DIV:
		return wrap(func(a, b int64) (any, error) {
			if b == 0 {
				return nil, rtErr(line, "division by zero")
			}
			return a / b, nil
		})
	case MOD:
		return wrap(func(a, b int64) (any, error) {
			if b == 0 {
				return nil, rtErr(line, "modulo by zero")
			}
			return a % b, nil
		})
	case LESS:
		return wrap(func(a, b int64) (any, error) { return a < b, nil })
	case LESS_EQ:
		return wrap(func(a, b int64) (any, error) { return a <= b, nil })
	case GREATER:
		return wrap(func(a, b int64) (any, error) { return a > b, nil })
	case GREATER_EQ:
		return wrap(func(a, b int64) (any, error) { return a >= b, nil })
	case PIPE:
		return wrap(func(a, b int64) (any, error) { return a | b, nil })
	case CARET:
		return wrap(func(a, b int64) (any, error) { return a ^ b, nil })
	case AMP:
		return wrap(func(a, b int64) (any, error) { return a & b, nil })
	case SHL:
		return wrap(func(a, b int64) (any, error) {
			if b < 0 {
				return nil, rtErr(line, "negative shift amount")
			}
			return a << uint(b), nil
		})
	case SHR:
		return wrap(func(a, b int64) (any, error) {
			if b < 0 {
				return nil, rtErr(line, "negative shift amount")
			}
			return a >> uint(b), nil
		})
	}
	return nil
}

func doubleOp(op TokenType, line int) binFn {
	wrap := func(f func(a, b float64) any) binFn {
		return func(l, r any) (any, error) { return f(l.(float64), r.(float64)), nil }
	}
	switch op {
	case PLUS:
		return wrap(func(a, b float64) any { return a + b })
	case MINUS:
		return wrap(func(a, b float64) any { return a - b })
	case MULT:
		return wrap(func(a, b float64) any { return a * b })
	case DIV:
		return wrap(func(a, b float64) any { return a / b })
	case MOD:
		return wrap(func(a, b float64) any { return math.Mod(a, b) })
	case POW:
		return wrap(func(a, b float64) any { return math.Pow(a, b) })
	case LESS:
		return wrap(func(a, b float64) any { return a < b })
	case LESS_EQ:
		return wrap(func(a, b float64) any { return a <= b })
	case GREATER:
		return wrap(func(a, b float64) any { return a > b })
	case GREATER_EQ:
		return wrap(func(a, b float64) any { return a >= b })
	}
	return nil
}

// ───────────────────────────── conversions ─────────────────────────────────

func (b *builder) compileConvert(n *Convert) (thunk, error) {
	value, err := b.compile(n.Value)
	if err != nil {
		return nil, err
	}
	conv, err := converter(n.Value.Type(), n.Target)
	if err != nil {
		return nil, err
	}
	return func() (any, error) {
		v, err := value()
		if err != nil {
			return nil, err
		}
		return conv(v)
	}, nil
}

type convFn func(v any) (any, error)

func converter(from, to PrimitiveType) (convFn, error) {
	identity := func(v any) (any, error) { return v, nil }
	if from == to || to == TypeObject {
		// Boxing to object is a representation no-op.
		return identity, nil
	}
	if from == TypeObject {
		return unbox(to), nil
	}
	switch from {
	case TypeInt:
		switch to {
		case TypeLong:
			return func(v any) (any, error) { return int64(v.(int32)), nil }, nil
		case TypeDouble:
			return func(v any) (any, error) { return float64(v.(int32)), nil }, nil
		}
	case TypeLong:
		switch to {
		case TypeInt:
			return func(v any) (any, error) { return int32(v.(int64)), nil }, nil
		case TypeDouble:
			return func(v any) (any, error) { return float64(v.(int64)), nil }, nil
		}
	case TypeDouble:
		switch to {
		case TypeInt:
			return func(v any) (any, error) { return int32(v.(float64)), nil }, nil
		case TypeLong:
			return func(v any) (any, error) { return int64(v.(float64)), nil }, nil
		}
	}
	return nil, &Error{Kind: DiagType, Msg: fmt.Sprintf("cannot convert %s to %s", from, to)}
}

// unbox narrows a boxed object value back to a concrete representation,
// failing at runtime when the payload does not match.
func unbox(to PrimitiveType) convFn {
	return func(v any) (any, error) {
		ok := false
		switch to {
		case TypeInt:
			_, ok = v.(int32)
		case TypeLong:
			_, ok = v.(int64)
		case TypeDouble:
			_, ok = v.(float64)
		case TypeString:
			_, ok = v.(string)
		case TypeChar:
			_, ok = v.(Char)
		case TypeBool:
			_, ok = v.(bool)
		}
		if !ok {
			return nil, rtErr(0, fmt.Sprintf("cannot convert object value to %s", to))
		}
		return v, nil
	}
}

func zeroValue(t PrimitiveType) any {
	switch t {
	case TypeInt:
		return int32(0)
	case TypeLong:
		return int64(0)
	case TypeDouble:
		return float64(0)
	case TypeString:
		return ""
	case TypeChar:
		return Char(0)
	case TypeBool:
		return false
	default:
		return nil
	}
}

func rtErr(line int, msg string) *Error {
	return &Error{Kind: DiagRuntime, Line: line, Msg: msg}
}

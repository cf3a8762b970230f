// dump.go: compact s-expression rendering of IR trees.
//
// Dump exists for debugging and for structural assertions in tests; it is not
// a source formatter. Every node prints with its resolved static type so a
// dump doubles as a record of what the checker decided.
package slate

import (
	"fmt"
	"strconv"
	"strings"
)

// opNames maps operator tokens to their surface spelling.
var opNames = map[TokenType]string{
	EQ: "==", NEQ: "!=",
	LESS: "<", LESS_EQ: "<=", GREATER: ">", GREATER_EQ: ">=",
	PIPE: "|", CARET: "^", AMP: "&", SHL: "<<", SHR: ">>",
	PLUS: "+", MINUS: "-", MULT: "*", DIV: "/", MOD: "%", POW: "**",
	NOT: "!", TILDE: "~",
}

// Dump renders n as a single-line s-expression.
func Dump(n Node) string {
	var b strings.Builder
	dumpNode(&b, n)
	return b.String()
}

func dumpNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Block:
		b.WriteString("(block")
		for _, st := range n.Stmts {
			b.WriteByte(' ')
			dumpNode(b, st)
		}
		b.WriteByte(')')

	case *Literal:
		b.WriteString(dumpLiteral(n))

	case *VarRef:
		fmt.Fprintf(b, "%s:%s", n.Sym.Name, n.Sym.Type)

	case *Declare:
		fmt.Fprintf(b, "(decl %s:%s", n.Sym.Name, n.Sym.Type)
		if n.Init != nil {
			b.WriteByte(' ')
			dumpNode(b, n.Init)
		}
		b.WriteByte(')')

	case *Assign:
		fmt.Fprintf(b, "(= %s:%s ", n.Sym.Name, n.Sym.Type)
		dumpNode(b, n.Value)
		b.WriteByte(')')

	case *IncDec:
		op := "++"
		if !n.Increment {
			op = "--"
		}
		pos := "post"
		if n.Prefix {
			pos = "pre"
		}
		fmt.Fprintf(b, "(%s-%s %s:%s)", pos, op, n.Sym.Name, n.Sym.Type)

	case *Binary:
		fmt.Fprintf(b, "(%s:%s ", opNames[n.Op], n.Typ)
		dumpNode(b, n.Left)
		b.WriteByte(' ')
		dumpNode(b, n.Right)
		b.WriteByte(')')

	case *Unary:
		fmt.Fprintf(b, "(%s:%s ", opNames[n.Op], n.Typ)
		dumpNode(b, n.Operand)
		b.WriteByte(')')

	case *Concat:
		b.WriteString("(concat ")
		dumpNode(b, n.Left)
		b.WriteByte(' ')
		dumpNode(b, n.Right)
		b.WriteByte(')')

	case *Convert:
		fmt.Fprintf(b, "(conv:%s ", n.Target)
		dumpNode(b, n.Value)
		b.WriteByte(')')

	case *Print:
		b.WriteString("(print ")
		dumpNode(b, n.Value)
		b.WriteByte(')')

	default:
		fmt.Fprintf(b, "(?%T)", n)
	}
}

// dumpLiteral dispatches on the static type: int and char literals share the
// int32 representation, so a value-type switch cannot tell them apart.
func dumpLiteral(n *Literal) string {
	switch n.Typ {
	case TypeString:
		return strconv.Quote(n.Val.(string))
	case TypeChar:
		return "'" + string(n.Val.(rune)) + "'"
	case TypeBool:
		return strconv.FormatBool(n.Val.(bool))
	case TypeInt:
		return strconv.FormatInt(int64(n.Val.(int32)), 10)
	case TypeLong:
		return strconv.FormatInt(n.Val.(int64), 10) + "l"
	case TypeDouble:
		return strconv.FormatFloat(n.Val.(float64), 'g', -1, 64)
	default:
		if n.Val == nil {
			return "null"
		}
		return fmt.Sprint(n.Val)
	}
}

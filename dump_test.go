package slate

import (
	"testing"

	"github.com/nalgeon/be"
)

func dumpSrc(t *testing.T, src string) string {
	t.Helper()
	return Dump(parseClean(t, src))
}

func Test_Dump_Precedence_Shapes(t *testing.T) {
	be.Equal(t, dumpSrc(t, "1 + 2 * 3;"),
		"(block (+:int 1 (*:int 2 3)))")

	be.Equal(t, dumpSrc(t, "(1 + 2) * 3;"),
		"(block (*:int (+:int 1 2) 3))")
}

func Test_Dump_Checker_Decisions_Visible(t *testing.T) {
	// Comparison promotes; the conversions show up in the dump.
	be.Equal(t, dumpSrc(t, "1 < 2l;"),
		"(block (<:bool (conv:long 1) 2l))")

	// Power forces double on both sides.
	be.Equal(t, dumpSrc(t, "2 ** 3;"),
		"(block (**:double (conv:double 2) (conv:double 3)))")

	// String append boxes both operands.
	be.Equal(t, dumpSrc(t, `"n=" + 1;`),
		`(block (concat (conv:object "n=") (conv:object 1)))`)
}

func Test_Dump_Statements(t *testing.T) {
	be.Equal(t, dumpSrc(t, "int x = 5; print x; x++;"),
		"(block (decl x:int 5) (print (conv:object x:int)) (post-++ x:int))")
}

func Test_Dump_Literals(t *testing.T) {
	be.Equal(t, dumpSrc(t, `'a'; true; null; 1.5;`),
		"(block 'a' true null 1.5)")
}

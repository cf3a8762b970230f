package slate

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func Test_Session_State_Persists_Across_Parses(t *testing.T) {
	sess := NewSession()
	sess.SetIntrinsics(&testIntrinsics{})

	v, typ, err := sess.Eval("int x = 40;")
	be.Err(t, err, nil)
	be.Equal(t, typ, TypeVoid)
	wantVal(t, v, nil)

	// The variable declared by the first input is visible to the second.
	v, typ, err = sess.Eval("x + 2;")
	be.Err(t, err, nil)
	wantVal(t, v, int32(42))
	be.Equal(t, typ, TypeInt)
}

func Test_Session_Diagnostics_Do_Not_Persist(t *testing.T) {
	sess := NewSession()

	_, rep := sess.Parse("int x = ;")
	be.True(t, rep.HadError())

	// A fresh parse gets a fresh sink; the earlier failure does not taint it.
	_, rep = sess.Parse("1 + 1;")
	be.True(t, !rep.HadError())
}

func Test_Session_Failed_Declaration_Still_Declares(t *testing.T) {
	sess := NewSession()

	_, rep := sess.Parse("int x = ;")
	be.True(t, rep.HadError())

	// The name was entered before the initializer failed, so a retry is a
	// redeclaration. Assignment is the way forward.
	_, rep = sess.Parse("int x = 1;")
	be.True(t, rep.HadError())
	be.Equal(t, rep.Diagnostics()[0].Kind, DiagRedeclared)

	_, rep = sess.Parse("x = 1;")
	be.True(t, !rep.HadError())
}

func Test_Session_Eval_Collects_All_Diagnostics(t *testing.T) {
	sess := NewSession()
	_, _, err := sess.Eval("int a = ;\nint a = 1;\nghost;")
	be.Err(t, err)

	lines := strings.Split(err.Error(), "\n")
	be.Equal(t, len(lines), 3)
	be.True(t, strings.Contains(lines[0], "[line 1]"))
	be.True(t, strings.Contains(lines[1], "already declared"))
	be.True(t, strings.Contains(lines[2], "undefined variable 'ghost'"))
}

func Test_Session_Lex_Error_Reported_As_Diagnostic(t *testing.T) {
	sess := NewSession()
	block, rep := sess.Parse("int @ = 1;")
	be.True(t, block == nil)
	be.True(t, rep.HadError())
	be.Equal(t, rep.Diagnostics()[0].Kind, DiagLex)
}

func Test_Sessions_Are_Independent(t *testing.T) {
	a := NewSession()
	b := NewSession()

	_, _, err := a.Eval("int x = 1;")
	be.Err(t, err, nil)

	// x exists only in session a.
	_, rep := b.Parse("x;")
	be.True(t, rep.HadError())
	be.Equal(t, rep.Diagnostics()[0].Kind, DiagUndefined)
}

func Test_Session_Eval_Runtime_Error(t *testing.T) {
	sess := NewSession()
	sess.SetIntrinsics(&testIntrinsics{})

	_, _, err := sess.Eval("int z = 0; 5 / z;")
	be.Err(t, err)
	be.True(t, IsRuntime(err))
}

func Test_Diagnostic_String_Format(t *testing.T) {
	_, rep := NewSession().Parse("1 +")
	d := rep.Diagnostics()[0]
	be.Equal(t, d.String(), "[line 1] error at end: expected expression")
}

func Test_Diagnostic_Render_Caret_Snippet(t *testing.T) {
	src := "int x = 5\nprint x;"
	_, rep := NewSession().Parse(src)
	be.True(t, rep.HadError())

	out := rep.Diagnostics()[0].Render(src)
	be.True(t, strings.Contains(out, "PARSE ERROR at 2:1:"))
	be.True(t, strings.Contains(out, "   1 | int x = 5"))
	be.True(t, strings.Contains(out, "   2 | print x;"))
	be.True(t, strings.Contains(out, "     | ^"))
}

func Test_WrapErrorWithSource_Passthrough(t *testing.T) {
	src := "int x = 0; 1 / x;"
	sess := NewSession()
	sess.SetIntrinsics(&testIntrinsics{})
	_, _, err := sess.Eval(src)
	be.Err(t, err)

	wrapped := WrapErrorWithSource(err, src)
	be.True(t, strings.Contains(wrapped.Error(), "RUNTIME ERROR"))
	be.True(t, strings.Contains(wrapped.Error(), "division by zero"))
}

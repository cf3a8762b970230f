// session.go — the embedding surface.
//
// A Session owns one symbol table, one user-type registry and one intrinsics
// implementation. Variables persist across Parse calls, which is what makes
// the REPL stateful; diagnostics do not — every Parse gets a fresh sink, so
// one bad line never poisons the next.
package slate

import (
	"errors"
	"os"
	"strings"
)

// Session is one independent parse/execute context. Sessions share nothing;
// two sessions may run concurrently from different goroutines, but a single
// Session is not safe for concurrent use.
type Session struct {
	syms *SymbolTable
	reg  *TypeRegistry
	intr Intrinsics
}

// NewSession returns a session that prints to stdout.
func NewSession() *Session {
	return &Session{
		syms: NewSymbolTable(),
		reg:  NewTypeRegistry(),
		intr: StdIntrinsics{Out: os.Stdout},
	}
}

// SetIntrinsics replaces the host operations used by programs built after
// this call.
func (s *Session) SetIntrinsics(intr Intrinsics) { s.intr = intr }

// Symbols exposes the session's variable table, mainly for inspection.
func (s *Session) Symbols() *SymbolTable { return s.syms }

// Types exposes the user-type registry so embedders can bind extra names
// before parsing.
func (s *Session) Types() *TypeRegistry { return s.reg }

// Parse scans and parses src against the session state. It always returns a
// usable Reporter; the block is nil only when scanning failed outright. The
// caller must check Reporter.HadError before building — a block produced
// under errors is a partial tree for tooling, not a runnable program.
func (s *Session) Parse(src string) (*Block, *Reporter) {
	rep := NewReporter()
	toks, err := NewLexer(src).Scan()
	if err != nil {
		rep.Report(err)
		return nil, rep
	}
	p := &parser{toks: toks, syms: s.syms, reg: s.reg, diags: rep}
	return p.program(), rep
}

// Build compiles a clean block into a runnable program.
func (s *Session) Build(block *Block) (*Program, error) {
	return Build(block, s.intr)
}

// Eval is the one-shot convenience path: parse, build, run. The returned
// type is the static type of the source's final statement. On parse errors
// the error carries every diagnostic, one per line.
func (s *Session) Eval(src string) (any, PrimitiveType, error) {
	block, rep := s.Parse(src)
	if rep.HadError() {
		lines := make([]string, 0, len(rep.Diagnostics()))
		for _, d := range rep.Diagnostics() {
			lines = append(lines, d.String())
		}
		return nil, TypeVoid, errors.New(strings.Join(lines, "\n"))
	}
	prog, err := s.Build(block)
	if err != nil {
		return nil, TypeVoid, err
	}
	v, err := prog.Run()
	if err != nil {
		return nil, TypeVoid, err
	}
	return v, prog.ResultType(), nil
}

// errors.go: diagnostic error values and caret-snippet rendering
//
// Every recoverable front-end failure (bad token, grammar violation, type
// rule violation, symbol table conflict) is represented by *Error with a
// DiagKind discriminant and a 1-based source position. The parser returns
// these as ordinary error values; the statement driver reports them to the
// Diagnostic sink and resynchronizes, so a single pass can surface several
// independent problems.
//
// WrapErrorWithSource augments an *Error with a numbered source snippet and
// a caret under the offending column:
//
//	PARSE ERROR at 3:12: expected ';' after expression
//
//	   2 | int x = 5
//	   3 | print x
//	       |      ^
//
// Anything that is not an *Error passes through unchanged.
package slate

import (
	"fmt"
	"strings"
)

// DiagKind classifies a diagnostic. All kinds except DiagRuntime are
// recoverable at the statement boundary; DiagRuntime is raised only by the
// executable backend and is never recovered.
type DiagKind int

const (
	DiagLex          DiagKind = iota // malformed token
	DiagParse                        // grammar violation
	DiagType                         // operand fails a lattice requirement
	DiagRedeclared                   // duplicate variable declaration
	DiagUndefined                    // unresolved identifier
	DiagAssignTarget                 // assignment to a non-variable
	DiagRuntime                      // execution failure (backend only)
)

func (k DiagKind) String() string {
	switch k {
	case DiagLex:
		return "LEXICAL ERROR"
	case DiagParse:
		return "PARSE ERROR"
	case DiagType:
		return "TYPE ERROR"
	case DiagRedeclared:
		return "REDECLARATION ERROR"
	case DiagUndefined:
		return "UNDEFINED VARIABLE"
	case DiagAssignTarget:
		return "INVALID ASSIGNMENT TARGET"
	case DiagRuntime:
		return "RUNTIME ERROR"
	default:
		return "ERROR"
	}
}

// Error is the single front-end error carrier. Line and Col are 1-based.
// Lexeme is the offending token's text; empty means the error occurred at
// end of input.
type Error struct {
	Kind   DiagKind
	Line   int
	Col    int
	Lexeme string
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Col, e.Msg)
}

// IsRuntime reports whether err is a backend execution failure.
func IsRuntime(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == DiagRuntime
}

// WrapErrorWithSource returns err augmented with a caret-annotated snippet of
// src. Non-*Error values are returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	return fmt.Errorf("%s", prettyErrorString(src, e.Kind.String(), e.Line, e.Col, e.Msg))
}

// prettyErrorString builds the snippet: header, one line of context before
// and after when available, and a caret under the 1-based column. Out of
// range coordinates are clamped so rendering never fails.
func prettyErrorString(src, header string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

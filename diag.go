// diag.go: the diagnostic sink.
//
// One Reporter belongs to one parse session. The statement driver reports
// every recovered *Error here; the caller polls HadError before handing the
// IR block to the backend. The flag is latched: once set it is never cleared
// within the session.
package slate

import "fmt"

// Diagnostic is one accumulated report. Context is either "at end" or
// "at '<lexeme>'", naming where in the token stream the error was detected.
type Diagnostic struct {
	Kind    DiagKind
	Line    int
	Col     int
	Context string
	Msg     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[line %d] error %s: %s", d.Line, d.Context, d.Msg)
}

// Render returns the diagnostic as a caret-annotated snippet of src.
func (d Diagnostic) Render(src string) string {
	return prettyErrorString(src, d.Kind.String(), d.Line, d.Col, d.Msg)
}

// Reporter accumulates diagnostics in the order they were detected.
type Reporter struct {
	diags    []Diagnostic
	hadError bool
}

func NewReporter() *Reporter { return &Reporter{} }

// Report records err and latches the error flag. Non-*Error values are
// recorded with an empty position.
func (r *Reporter) Report(err error) {
	e, ok := err.(*Error)
	if !ok {
		r.diags = append(r.diags, Diagnostic{Kind: DiagParse, Context: "at end", Msg: err.Error()})
		r.hadError = true
		return
	}
	ctx := "at end"
	if e.Lexeme != "" {
		ctx = fmt.Sprintf("at '%s'", e.Lexeme)
	}
	r.diags = append(r.diags, Diagnostic{Kind: e.Kind, Line: e.Line, Col: e.Col, Context: ctx, Msg: e.Msg})
	r.hadError = true
}

// HadError reports whether any diagnostic has been recorded.
func (r *Reporter) HadError() bool { return r.hadError }

// Diagnostics returns the accumulated reports in detection order.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }

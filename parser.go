// parser.go — precedence-climbing parser and type checker for slate.
//
// OVERVIEW
// --------
// The parser consumes the token stream produced by lexer.go and builds the
// statically-typed IR defined in ir.go, consulting the type lattice
// (types.go) on every operator application and the session's symbol table
// (symbols.go) on every declaration and variable reference.
//
// Grammar:
//
//	Program     := Statement* EOF
//	Statement   := Declaration | PrintStatement | ExpressionStatement
//	Declaration := TypeKeyword ID ('=' Expression)? ';'
//	PrintStmt   := 'print' Expression ';'
//	ExprStmt    := Expression ';'
//
// Expression precedence, lowest to highest binding (left-associative at each
// level except assignment, which is right-associative, and prefix unary):
//
//	=, +=, -=, *=, /=, %=, **=
//	==, !=
//	<, <=, >, >=
//	|
//	^
//	&
//	<<, >>
//	+, -
//	*, /, %
//	**
//	!, -, ~, prefix ++/--
//	primary (literals, identifiers with optional postfix ++/--, grouping)
//
// Type-checking rules per operator family:
//   - ==, !=   same type compares directly; mixed numeric promotes via the
//     lattice; anything else is Object-coerced and compared by value.
//   - < <= > >=  always promote (error when either side is non-numeric).
//   - + - * / %  each operand must be numeric; NO promotion is performed, so
//     a mismatched pair reaches the backend and fails there at build time.
//     'string + x' is rerouted to Concat with both sides Object-coerced.
//   - **         both operands forced to double; result is double.
//   - | ^ & << >>  each operand must be an integer type; no widening.
//   - unary ! bool, unary - numeric, unary ~ integer.
//
// Error recovery: every grammar routine returns (Node, error) — there is no
// panic-driven unwinding. The statement driver reports a failed statement's
// error to the Diagnostic sink, then discards tokens until a semicolon was
// just consumed or the next token begins a new statement, and resumes. One
// pass can therefore surface several independent diagnostics.
//
// Dependencies: lexer.go, types.go, ir.go, symbols.go, diag.go, errors.go.
package slate

import "fmt"

type parser struct {
	toks  []Token
	i     int
	syms  *SymbolTable
	reg   *TypeRegistry
	diags *Reporter
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) match(tt ...TokenType) bool {
	if p.atEnd() {
		return false
	}
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(t TokenType, msg string) (Token, error) {
	if p.match(t) {
		return p.prev(), nil
	}
	return Token{}, p.errAt(p.peek(), DiagParse, msg)
}

// errAt builds an *Error positioned at tok. EOF yields an empty lexeme so the
// sink renders the context as "at end".
func (p *parser) errAt(tok Token, kind DiagKind, msg string) *Error {
	lex := tok.Lexeme
	if tok.Type == EOF {
		lex = ""
	}
	return &Error{Kind: kind, Line: tok.Line, Col: tok.Col, Lexeme: lex, Msg: msg}
}

// at stamps a position onto a lattice/table error that carries none.
func (p *parser) at(tok Token, err error) error {
	e, ok := err.(*Error)
	if !ok || e.Line != 0 {
		return err
	}
	e.Line, e.Col = tok.Line, tok.Col
	e.Lexeme = tok.Lexeme
	if tok.Type == EOF {
		e.Lexeme = ""
	}
	return e
}

// ───────────────────────── precedence / associativity ──────────────────────

func lbp(t TokenType) (int, bool) {
	switch t {
	case ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, MULT_ASSIGN, DIV_ASSIGN, MOD_ASSIGN, POW_ASSIGN:
		return 10, true
	case EQ, NEQ:
		return 20, true
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		return 30, true
	case PIPE:
		return 40, true
	case CARET:
		return 44, true
	case AMP:
		return 48, true
	case SHL, SHR:
		return 52, true
	case PLUS, MINUS:
		return 60, true
	case MULT, DIV, MOD:
		return 70, true
	case POW:
		return 80, true
	}
	return 0, false
}

const unaryBP = 90

func isAssignOp(t TokenType) bool {
	switch t {
	case ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, MULT_ASSIGN, DIV_ASSIGN, MOD_ASSIGN, POW_ASSIGN:
		return true
	}
	return false
}

// compoundBase maps a compound-assignment token to the binary operator it
// desugars to.
func compoundBase(t TokenType) (TokenType, bool) {
	switch t {
	case PLUS_ASSIGN:
		return PLUS, true
	case MINUS_ASSIGN:
		return MINUS, true
	case MULT_ASSIGN:
		return MULT, true
	case DIV_ASSIGN:
		return DIV, true
	case MOD_ASSIGN:
		return MOD, true
	case POW_ASSIGN:
		return POW, true
	}
	return 0, false
}

// ───────────────────────── program / statements ────────────────────────────

// program drives statement parsing inside the recovery boundary. Failed
// statements are reported and skipped; survivors accumulate into the root
// block, whose type is the last statement's type (Void when empty).
func (p *parser) program() *Block {
	var stmts []Node
	for !p.atEnd() {
		st, err := p.statement()
		if err != nil {
			p.diags.Report(err)
			p.synchronize()
			continue
		}
		stmts = append(stmts, st)
	}
	typ := TypeVoid
	if len(stmts) > 0 {
		typ = stmts[len(stmts)-1].Type()
	}
	return &Block{Stmts: stmts, Typ: typ}
}

// synchronize discards tokens until a semicolon was just consumed or the
// next token begins a new statement.
func (p *parser) synchronize() {
	for !p.atEnd() {
		if p.i > 0 && p.prev().Type == SEMI {
			return
		}
		switch p.peek().Type {
		case TYPEKW, PRINT, IF, ELSE, WHILE, FOR, RETURN, BREAK, CONTINUE, CLASS:
			return
		}
		p.i++
	}
}

func (p *parser) statement() (Node, error) {
	if p.match(TYPEKW) {
		return p.declaration(p.prev(), p.typeFromKeyword(p.prev()))
	}
	// A registered user-defined type name followed by an identifier also
	// starts a declaration. The registry is host-populated; with an empty
	// registry this lookup never fires.
	if p.peek().Type == ID && p.i+1 < len(p.toks) && p.toks[p.i+1].Type == ID {
		if t, ok := p.reg.Resolve(p.peek().Lexeme); ok {
			nameTok := p.peek()
			p.i++
			return p.declaration(nameTok, t)
		}
	}
	if p.match(PRINT) {
		return p.printStatement(p.prev())
	}
	return p.expressionStatement()
}

func (p *parser) typeFromKeyword(tok Token) PrimitiveType {
	switch tok.Literal.(string) {
	case "int":
		return TypeInt
	case "long":
		return TypeLong
	case "double":
		return TypeDouble
	case "string":
		return TypeString
	case "char":
		return TypeChar
	case "bool":
		return TypeBool
	default:
		return TypeObject
	}
}

// declaration parses 'T name (= expr)? ;'. The symbol is declared before the
// initializer is type-checked, and the initializer is coerced to the declared
// type before the node is finalized.
func (p *parser) declaration(typeTok Token, declType PrimitiveType) (Node, error) {
	nameTok, err := p.need(ID, "expected variable name")
	if err != nil {
		return nil, err
	}
	sym, err := p.syms.Declare(nameTok.Lexeme, declType)
	if err != nil {
		return nil, p.at(nameTok, err)
	}

	var init Node
	if p.match(ASSIGN) {
		expr, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		init = Coerce(expr, declType)
	}
	if _, err := p.need(SEMI, "expected ';' after declaration"); err != nil {
		return nil, err
	}
	return &Declare{Sym: sym, Init: init, Line: typeTok.Line}, nil
}

func (p *parser) printStatement(printTok Token) (Node, error) {
	expr, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(SEMI, "expected ';' after value"); err != nil {
		return nil, err
	}
	return &Print{Value: Coerce(expr, TypeObject), Line: printTok.Line}, nil
}

func (p *parser) expressionStatement() (Node, error) {
	expr, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(SEMI, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return expr, nil
}

// ───────────────────────────── expressions ─────────────────────────────────

func (p *parser) expr(minBP int) (Node, error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		bp, ok := lbp(op.Type)
		if !ok || bp < minBP {
			break
		}
		p.i++

		if isAssignOp(op.Type) {
			// Right-associative; the target must already be a variable ref.
			left, err = p.assignment(op, left)
			if err != nil {
				return nil, err
			}
			continue
		}

		right, err := p.expr(bp + 1)
		if err != nil {
			return nil, err
		}
		left, err = p.buildBinary(op, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) assignment(op Token, target Node) (Node, error) {
	ref, ok := target.(*VarRef)
	if !ok {
		return nil, p.errAt(op, DiagAssignTarget, "invalid assignment target")
	}
	rhs, err := p.expr(10) // same binding power: right-associative
	if err != nil {
		return nil, err
	}

	value := rhs
	if base, compound := compoundBase(op.Type); compound {
		// x op= e desugars to x = x op e, with the result coerced back to
		// the variable's declared type.
		cur := &VarRef{Sym: ref.Sym, Line: op.Line}
		value, err = p.buildBinary(Token{Type: base, Lexeme: op.Lexeme, Line: op.Line, Col: op.Col}, cur, rhs)
		if err != nil {
			return nil, err
		}
	}
	value = Coerce(value, ref.Sym.Type)
	return &Assign{Sym: ref.Sym, Value: value, Line: op.Line}, nil
}

func (p *parser) prefix() (Node, error) {
	tok := p.peek()
	p.i++

	switch tok.Type {
	case INTEGER:
		return &Literal{Val: tok.Literal, Typ: TypeInt}, nil
	case LONGINT:
		return &Literal{Val: tok.Literal, Typ: TypeLong}, nil
	case NUMBER:
		return &Literal{Val: tok.Literal, Typ: TypeDouble}, nil
	case STRING:
		return &Literal{Val: tok.Literal, Typ: TypeString}, nil
	case CHAR:
		return &Literal{Val: tok.Literal, Typ: TypeChar}, nil
	case BOOLEAN:
		return &Literal{Val: tok.Literal, Typ: TypeBool}, nil
	case NULL:
		return &Literal{Val: nil, Typ: TypeObject}, nil

	case ID:
		return p.variable(tok)

	case INCR, DECR:
		nameTok, err := p.need(ID, "expected variable name after prefix operator")
		if err != nil {
			return nil, err
		}
		sym, err := p.resolve(nameTok)
		if err != nil {
			return nil, err
		}
		if !Numeric(sym.Type) {
			return nil, p.errAt(tok, DiagType, fmt.Sprintf("'%s' requires a numeric variable, got %s", tok.Lexeme, sym.Type))
		}
		return &IncDec{Sym: sym, Prefix: true, Increment: tok.Type == INCR, Line: tok.Line}, nil

	case NOT:
		operand, err := p.expr(unaryBP)
		if err != nil {
			return nil, err
		}
		if _, err := RequireBoolean(operand); err != nil {
			return nil, p.at(tok, err)
		}
		return &Unary{Op: NOT, Operand: operand, Typ: TypeBool, Line: tok.Line}, nil

	case MINUS:
		operand, err := p.expr(unaryBP)
		if err != nil {
			return nil, err
		}
		if _, err := RequireNumeric(operand); err != nil {
			return nil, p.at(tok, err)
		}
		return &Unary{Op: MINUS, Operand: operand, Typ: operand.Type(), Line: tok.Line}, nil

	case TILDE:
		operand, err := p.expr(unaryBP)
		if err != nil {
			return nil, err
		}
		if _, err := RequireInteger(operand); err != nil {
			return nil, p.at(tok, err)
		}
		return &Unary{Op: TILDE, Operand: operand, Typ: operand.Type(), Line: tok.Line}, nil

	case LROUND:
		inner, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RROUND, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	return nil, p.errAt(tok, DiagParse, "expected expression")
}

// variable resolves an identifier and folds an immediately following postfix
// ++/-- into an IncDec node.
func (p *parser) variable(tok Token) (Node, error) {
	sym, err := p.resolve(tok)
	if err != nil {
		return nil, err
	}
	if p.peek().Type == INCR || p.peek().Type == DECR {
		opTok := p.peek()
		p.i++
		if !Numeric(sym.Type) {
			return nil, p.errAt(opTok, DiagType, fmt.Sprintf("'%s' requires a numeric variable, got %s", opTok.Lexeme, sym.Type))
		}
		return &IncDec{Sym: sym, Prefix: false, Increment: opTok.Type == INCR, Line: opTok.Line}, nil
	}
	return &VarRef{Sym: sym, Line: tok.Line}, nil
}

func (p *parser) resolve(tok Token) (*Symbol, error) {
	sym, ok := p.syms.Lookup(tok.Lexeme)
	if !ok {
		return nil, p.errAt(tok, DiagUndefined, fmt.Sprintf("undefined variable '%s'", tok.Lexeme))
	}
	return sym, nil
}

// ───────────────────────── binary type checking ────────────────────────────

// buildBinary applies the per-family typing rules from types.go and emits the
// IR node. Promotion happens only where the grammar calls for it; the
// arithmetic and bitwise families pass mismatched operand types through for
// the backend to reject at build time.
func (p *parser) buildBinary(op Token, left, right Node) (Node, error) {
	switch op.Type {
	case EQ, NEQ:
		lt, rt := left.Type(), right.Type()
		switch {
		case lt == rt:
			// compare directly
		case Numeric(lt) && Numeric(rt):
			t, err := Promote(lt, rt)
			if err != nil {
				return nil, p.at(op, err)
			}
			left, right = Coerce(left, t), Coerce(right, t)
		default:
			left, right = Coerce(left, TypeObject), Coerce(right, TypeObject)
		}
		return &Binary{Op: op.Type, Left: left, Right: right, Typ: TypeBool, Line: op.Line}, nil

	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		t, err := Promote(left.Type(), right.Type())
		if err != nil {
			return nil, p.at(op, err)
		}
		return &Binary{Op: op.Type, Left: Coerce(left, t), Right: Coerce(right, t), Typ: TypeBool, Line: op.Line}, nil

	case PLUS:
		if left.Type() == TypeString {
			return &Concat{Left: Coerce(left, TypeObject), Right: Coerce(right, TypeObject)}, nil
		}
		fallthrough
	case MINUS, MULT, DIV, MOD:
		if _, err := RequireNumeric(left); err != nil {
			return nil, p.at(op, err)
		}
		if _, err := RequireNumeric(right); err != nil {
			return nil, p.at(op, err)
		}
		// No promotion: the node keeps the left operand's type and a
		// mismatched pair fails at backend build time.
		return &Binary{Op: op.Type, Left: left, Right: right, Typ: left.Type(), Line: op.Line}, nil

	case POW:
		return &Binary{
			Op:   POW,
			Left: Coerce(left, TypeDouble), Right: Coerce(right, TypeDouble),
			Typ: TypeDouble, Line: op.Line,
		}, nil

	case PIPE, CARET, AMP, SHL, SHR:
		if _, err := RequireInteger(left); err != nil {
			return nil, p.at(op, err)
		}
		if _, err := RequireInteger(right); err != nil {
			return nil, p.at(op, err)
		}
		// No widening, same as the arithmetic family.
		return &Binary{Op: op.Type, Left: left, Right: right, Typ: left.Type(), Line: op.Line}, nil
	}

	return nil, p.errAt(op, DiagParse, fmt.Sprintf("unexpected operator '%s'", op.Lexeme))
}

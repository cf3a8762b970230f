// lexer.go: byte scanner producing the token stream consumed by the parser.
package slate

import (
	"strconv"
	"strings"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	SEMI   // ";"
	LROUND // "("
	RROUND // ")"

	// Assignment operators
	ASSIGN       // "="
	PLUS_ASSIGN  // "+="
	MINUS_ASSIGN // "-="
	MULT_ASSIGN  // "*="
	DIV_ASSIGN   // "/="
	MOD_ASSIGN   // "%="
	POW_ASSIGN   // "**="

	// Increment / decrement
	INCR // "++"
	DECR // "--"

	// Comparison / equality
	EQ         // "=="
	NEQ        // "!="
	LESS       // "<"
	LESS_EQ    // "<="
	GREATER    // ">"
	GREATER_EQ // ">="

	// Bitwise / shift
	PIPE  // "|"
	CARET // "^"
	AMP   // "&"
	SHL   // "<<"
	SHR   // ">>"

	// Arithmetic
	PLUS  // "+"
	MINUS // "-"
	MULT  // "*"
	DIV   // "/"
	MOD   // "%"
	POW   // "**"

	// Unary-only
	NOT   // "!"
	TILDE // "~"

	// Literals & identifiers
	ID
	INTEGER // int literal (int32 payload)
	LONGINT // long literal, 'l'/'L' suffix (int64 payload)
	NUMBER  // double literal (float64 payload)
	STRING
	CHAR
	BOOLEAN
	NULL

	// Keywords the grammar parses
	TYPEKW // int long double string char bool object (Literal = name)
	PRINT

	// Reserved keywords, recognized only for error-recovery synchronization
	IF
	ELSE
	WHILE
	FOR
	RETURN
	BREAK
	CONTINUE
	CLASS
)

// Token is a lexical token with optional literal value. Line and Col are
// 1-based; Col points at the first byte of the lexeme.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any // parsed value for literals; type name string for TYPEKW
	Line    int
	Col     int
}

var keywords = map[string]TokenType{
	"int":      TYPEKW,
	"long":     TYPEKW,
	"double":   TYPEKW,
	"string":   TYPEKW,
	"char":     TYPEKW,
	"bool":     TYPEKW,
	"object":   TYPEKW,
	"print":    PRINT,
	"true":     BOOLEAN,
	"false":    BOOLEAN,
	"null":     NULL,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"class":    CLASS,
}

// Lexer scans a slate source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 0}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekNext() byte {
	if l.cur+1 >= len(l.src) {
		return 0
	}
	return l.src[l.cur+1]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.src[l.cur] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) add(tt TokenType, lit any) {
	l.tokens = append(l.tokens, Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol + 1,
	})
}

func (l *Lexer) errf(msg string) *Error {
	return &Error{
		Kind:   DiagLex,
		Line:   l.tokStartLine,
		Col:    l.tokStartCol + 1,
		Lexeme: l.src[l.start:l.cur],
		Msg:    msg,
	}
}

// Scan tokenizes the whole source. The returned slice is always terminated
// by an EOF token. The first malformed token aborts the scan.
func (l *Lexer) Scan() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.cur
		l.tokStartLine = l.line
		l.tokStartCol = l.col
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Type: EOF, Line: l.line, Col: l.col + 1})
	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	ch := l.advance()
	switch ch {
	case ' ', '\t', '\r', '\n':
		// skip
	case ';':
		l.add(SEMI, nil)
	case '(':
		l.add(LROUND, nil)
	case ')':
		l.add(RROUND, nil)
	case '~':
		l.add(TILDE, nil)
	case '|':
		l.add(PIPE, nil)
	case '^':
		l.add(CARET, nil)
	case '&':
		l.add(AMP, nil)
	case '=':
		if l.match('=') {
			l.add(EQ, nil)
		} else {
			l.add(ASSIGN, nil)
		}
	case '!':
		if l.match('=') {
			l.add(NEQ, nil)
		} else {
			l.add(NOT, nil)
		}
	case '<':
		if l.match('=') {
			l.add(LESS_EQ, nil)
		} else if l.match('<') {
			l.add(SHL, nil)
		} else {
			l.add(LESS, nil)
		}
	case '>':
		if l.match('=') {
			l.add(GREATER_EQ, nil)
		} else if l.match('>') {
			l.add(SHR, nil)
		} else {
			l.add(GREATER, nil)
		}
	case '+':
		if l.match('+') {
			l.add(INCR, nil)
		} else if l.match('=') {
			l.add(PLUS_ASSIGN, nil)
		} else {
			l.add(PLUS, nil)
		}
	case '-':
		if l.match('-') {
			l.add(DECR, nil)
		} else if l.match('=') {
			l.add(MINUS_ASSIGN, nil)
		} else {
			l.add(MINUS, nil)
		}
	case '*':
		if l.match('*') {
			if l.match('=') {
				l.add(POW_ASSIGN, nil)
			} else {
				l.add(POW, nil)
			}
		} else if l.match('=') {
			l.add(MULT_ASSIGN, nil)
		} else {
			l.add(MULT, nil)
		}
	case '/':
		if l.match('/') {
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		} else if l.match('=') {
			l.add(DIV_ASSIGN, nil)
		} else {
			l.add(DIV, nil)
		}
	case '%':
		if l.match('=') {
			l.add(MOD_ASSIGN, nil)
		} else {
			l.add(MOD, nil)
		}
	case '"':
		return l.scanString()
	case '\'':
		return l.scanChar()
	default:
		switch {
		case isDigit(ch):
			return l.scanNumber()
		case isAlpha(ch):
			l.scanWord()
		default:
			return l.errf("unexpected character")
		}
	}
	return nil
}

func (l *Lexer) scanString() error {
	var b strings.Builder
	for !l.isAtEnd() && l.peek() != '"' {
		ch := l.advance()
		if ch == '\n' {
			return l.errf("unterminated string")
		}
		if ch == '\\' {
			esc, err := l.escape()
			if err != nil {
				return err
			}
			b.WriteRune(esc)
			continue
		}
		b.WriteByte(ch)
	}
	if l.isAtEnd() {
		return l.errf("unterminated string")
	}
	l.advance() // closing quote
	l.add(STRING, b.String())
	return nil
}

func (l *Lexer) scanChar() error {
	if l.isAtEnd() {
		return l.errf("unterminated character literal")
	}
	var r rune
	ch := l.advance()
	if ch == '\\' {
		esc, err := l.escape()
		if err != nil {
			return err
		}
		r = esc
	} else if ch == '\'' {
		return l.errf("empty character literal")
	} else {
		r = rune(ch)
	}
	if !l.match('\'') {
		return l.errf("unterminated character literal")
	}
	l.add(CHAR, r)
	return nil
}

func (l *Lexer) escape() (rune, error) {
	if l.isAtEnd() {
		return 0, l.errf("unterminated escape sequence")
	}
	switch l.advance() {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\':
		return '\\', nil
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	default:
		return 0, l.errf("unknown escape sequence")
	}
}

func (l *Lexer) scanNumber() error {
	for isDigit(l.peek()) {
		l.advance()
	}

	// Fractional part makes it a double.
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
		f, err := strconv.ParseFloat(l.src[l.start:l.cur], 64)
		if err != nil {
			return l.errf("malformed number literal")
		}
		l.add(NUMBER, f)
		return nil
	}

	// 'l'/'L' suffix makes it a long.
	if l.peek() == 'l' || l.peek() == 'L' {
		n, err := strconv.ParseInt(l.src[l.start:l.cur], 10, 64)
		l.advance() // suffix is not part of the parsed digits
		if err != nil {
			return l.errf("long literal out of range")
		}
		l.add(LONGINT, n)
		return nil
	}

	n, err := strconv.ParseInt(l.src[l.start:l.cur], 10, 32)
	if err != nil {
		return l.errf("int literal out of range")
	}
	l.add(INTEGER, int32(n))
	return nil
}

func (l *Lexer) scanWord() {
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}
	word := l.src[l.start:l.cur]
	if tt, ok := keywords[word]; ok {
		switch tt {
		case TYPEKW:
			l.add(TYPEKW, word)
		case BOOLEAN:
			l.add(BOOLEAN, word == "true")
		default:
			l.add(tt, nil)
		}
		return
	}
	l.add(ID, nil)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isAlpha(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlphaNumeric(ch byte) bool { return isAlpha(ch) || isDigit(ch) }

package lexer

import (
	"fmt"

	merrors "github.com/minqlang/minq/pkg/minq/errors"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	IDENT  // add, foo_bar
	NUMBER // 12, 3.5, 1.2.3 (validated by the parser)
	STRING // "foobar"

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	EQ       // ==
	NOT_EQ   // !=
	LT       // <
	GT       // >

	// Delimiters
	COMMA    // ,
	DOT      // .
	COLON    // :
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]

	// Keywords
	VAR      // "var"
	CONST    // "const"
	FUNCTION // "function" / "def"
	CLASS    // "class"
	MODULE   // "module"
	ENUM     // "enum"
	IF       // "if"
	WHILE    // "while"
	IMPORT   // "import"
	AS       // "as"
	SANDBOX  // "sandbox"
)

// EOFLiteral is the literal carried by the end-of-stream token.
const EOFLiteral = "EndOfFile"

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case IDENT:
		return "IDENT"
	case NUMBER:
		return "NUMBER"
	case STRING:
		return "STRING"
	case ASSIGN:
		return "="
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case ASTERISK:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	case EQ:
		return "=="
	case NOT_EQ:
		return "!="
	case LT:
		return "<"
	case GT:
		return ">"
	case COMMA:
		return ","
	case DOT:
		return "."
	case COLON:
		return ":"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACE:
		return "{"
	case RBRACE:
		return "}"
	case LBRACKET:
		return "["
	case RBRACKET:
		return "]"
	case VAR:
		return "VAR"
	case CONST:
		return "CONST"
	case FUNCTION:
		return "FUNCTION"
	case CLASS:
		return "CLASS"
	case MODULE:
		return "MODULE"
	case ENUM:
		return "ENUM"
	case IF:
		return "IF"
	case WHILE:
		return "WHILE"
	case IMPORT:
		return "IMPORT"
	case AS:
		return "AS"
	case SANDBOX:
		return "SANDBOX"
	default:
		return "UNKNOWN"
	}
}

// IsArithmetic reports whether the token is one of + - * / %.
func (tt TokenType) IsArithmetic() bool {
	return tt >= PLUS && tt <= PERCENT
}

// IsComparison reports whether the token is one of == != < >.
func (tt TokenType) IsComparison() bool {
	return tt >= EQ && tt <= GT
}

var keywords = map[string]TokenType{
	"var":      VAR,
	"const":    CONST,
	"function": FUNCTION,
	"def":      FUNCTION,
	"class":    CLASS,
	"module":   MODULE,
	"enum":     ENUM,
	"if":       IF,
	"while":    WHILE,
	"import":   IMPORT,
	"as":       AS,
	"sandbox":  SANDBOX,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int

	err *merrors.MinqError // first fatal error, scanning stops once set
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// Err returns the fatal error that stopped scanning, if any.
func (l *Lexer) Err() *merrors.MinqError {
	return l.err
}

// Tokenize scans the whole input. The returned slice always ends with an EOF
// token unless a fatal error occurred, in which case the error is returned.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == ILLEGAL {
			return nil, l.err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}

	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// NextToken scans the input and returns the next token.
// After a fatal error it keeps returning ILLEGAL.
func (l *Lexer) NextToken() Token {
	if l.err != nil {
		return Token{Type: ILLEGAL, Literal: l.err.Message, Line: l.err.Line, Column: l.err.Column}
	}

	l.skipWhitespaceAndComments()

	line, column := l.line, l.column
	if l.atEnd() {
		return Token{Type: EOF, Literal: EOFLiteral, Line: line, Column: column}
	}

	var tok Token
	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: EQ, Literal: "==", Line: line, Column: column}
		} else {
			tok = newToken(ASSIGN, l.ch, line, column)
		}
	case '!':
		if l.peekChar() != '=' {
			return l.fail("LEX-0001", line, column, map[string]any{"Char": "!"})
		}
		l.readChar()
		tok = Token{Type: NOT_EQ, Literal: "!=", Line: line, Column: column}
	case '<':
		tok = newToken(LT, l.ch, line, column)
	case '>':
		tok = newToken(GT, l.ch, line, column)
	case '+':
		tok = newToken(PLUS, l.ch, line, column)
	case '-':
		tok = newToken(MINUS, l.ch, line, column)
	case '*':
		tok = newToken(ASTERISK, l.ch, line, column)
	case '/':
		tok = newToken(SLASH, l.ch, line, column)
	case '%':
		tok = newToken(PERCENT, l.ch, line, column)
	case ',':
		tok = newToken(COMMA, l.ch, line, column)
	case '.':
		tok = newToken(DOT, l.ch, line, column)
	case ':':
		tok = newToken(COLON, l.ch, line, column)
	case '(':
		tok = newToken(LPAREN, l.ch, line, column)
	case ')':
		tok = newToken(RPAREN, l.ch, line, column)
	case '{':
		tok = newToken(LBRACE, l.ch, line, column)
	case '}':
		tok = newToken(RBRACE, l.ch, line, column)
	case '[':
		tok = newToken(LBRACKET, l.ch, line, column)
	case ']':
		tok = newToken(RBRACKET, l.ch, line, column)
	case '"':
		return l.readString(line, column)
	default:
		if isDigit(l.ch) {
			return Token{Type: NUMBER, Literal: l.readNumber(), Line: line, Column: column}
		}
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return Token{Type: LookupIdent(ident), Literal: ident, Line: line, Column: column}
		}
		return l.fail("LEX-0001", line, column, map[string]any{"Char": string(l.ch)})
	}

	l.readChar()
	return tok
}

func (l *Lexer) fail(code string, line, column int, data map[string]any) Token {
	l.err = merrors.NewWithPosition(code, line, column, data)
	return Token{Type: ILLEGAL, Literal: l.err.Message, Line: line, Column: column}
}

func newToken(tokenType TokenType, ch byte, line, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

// skipWhitespaceAndComments skips blanks, // line comments and /* */ block
// comments. An unterminated block comment runs to the end of input.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for !l.atEnd() && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !l.atEnd() && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if !l.atEnd() {
				l.readChar()
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a run of digits and dots without validating its shape.
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString reads a double-quoted literal. Only \n, \" and \\ are valid
// escapes; a raw newline or an unknown escape is fatal.
func (l *Lexer) readString(line, column int) Token {
	var result []byte
	l.readChar() // opening quote

	for l.ch != '"' {
		if l.atEnd() {
			return l.fail("LEX-0002", line, column, nil)
		}
		if l.ch == '\n' {
			return l.fail("LEX-0003", l.line, l.column, nil)
		}
		if l.ch == '\\' {
			escLine, escColumn := l.line, l.column
			l.readChar()
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case '"':
				result = append(result, '"')
			case '\\':
				result = append(result, '\\')
			default:
				if l.atEnd() {
					return l.fail("LEX-0002", line, column, nil)
				}
				return l.fail("LEX-0004", escLine, escColumn, map[string]any{"Char": string(l.ch)})
			}
		} else {
			result = append(result, l.ch)
		}
		l.readChar()
	}

	l.readChar() // closing quote
	return Token{Type: STRING, Literal: string(result), Line: line, Column: column}
}

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

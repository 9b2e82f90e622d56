// Package lexer tokenizes the type expressions used in contract
// descriptions, such as "Vec<(AccountId, Balance)>" or "[u8; 32]".
//
// Type expressions are single line, so tokens carry a column only.
package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Lexer tokenizes a type expression.
//
// Lexer instances are NOT thread-safe. Each goroutine must create its own
// Lexer via New.
type Lexer struct {
	source  string     // Source text to tokenize
	start   int        // Start position of current token
	current int        // Current position in source
	tokens  []Token    // Collected tokens
	errors  []LexError // Collected errors
}

// New creates a new Lexer for the given expression
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		tokens: make([]Token, 0),
		errors: make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Column: l.current + 1,
	})

	return l.tokens, l.errors
}

func (l *Lexer) scanToken() {
	c := l.advance()

	switch c {
	case '<':
		l.addToken(TOKEN_LT)
	case '>':
		l.addToken(TOKEN_GT)
	case '[':
		l.addToken(TOKEN_LBRACKET)
	case ']':
		l.addToken(TOKEN_RBRACKET)
	case '(':
		l.addToken(TOKEN_LPAREN)
	case ')':
		l.addToken(TOKEN_RPAREN)
	case ',':
		l.addToken(TOKEN_COMMA)
	case ';':
		l.addToken(TOKEN_SEMICOLON)
	case '&':
		l.addToken(TOKEN_AMPERSAND)
	case '.':
		l.addToken(TOKEN_DOT)
	case ':':
		if l.match(':') {
			l.addToken(TOKEN_PATH_SEP)
		} else {
			l.addError("Expected '::' path separator")
		}
	case ' ', '\t', '\r', '\n':
		// Ignore whitespace
	default:
		switch {
		case l.isDigit(c):
			l.number()
		case l.isAlpha(c):
			l.identifier()
		case c >= utf8.RuneSelf:
			// Identifiers are ASCII; report a multi-byte character once
			_, size := utf8.DecodeRuneInString(l.source[l.start:])
			l.current = l.start + size
			l.addError("Unexpected non-ASCII character")
		default:
			l.addError("Unexpected character")
		}
	}
}

// number handles array length literals
func (l *Lexer) number() {
	for l.isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	text := l.source[l.start:l.current]
	value, err := strconv.ParseUint(strings.ReplaceAll(text, "_", ""), 10, 32)
	if err != nil {
		l.addError("Invalid array length")
		return
	}
	l.addTokenWithLiteral(TOKEN_INT_LITERAL, uint32(value))
}

// identifier handles identifiers and keywords
func (l *Lexer) identifier() {
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]
	tokenType, isKeyword := Keywords[text]
	if !isKeyword {
		tokenType = TOKEN_IDENTIFIER
	}
	l.addToken(tokenType)
}

// Helper methods

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.current] != expected {
		return false
	}
	l.current++
	return true
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (l *Lexer) isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_'
}

func (l *Lexer) isAlphaNumeric(c byte) bool {
	return l.isAlpha(c) || l.isDigit(c)
}

func (l *Lexer) addToken(tokenType TokenType) {
	l.addTokenWithLiteral(tokenType, nil)
}

func (l *Lexer) addTokenWithLiteral(tokenType TokenType, literal interface{}) {
	l.tokens = append(l.tokens, Token{
		Type:    tokenType,
		Lexeme:  l.source[l.start:l.current],
		Literal: literal,
		Column:  l.start + 1,
	})
}

// addError records a lexical error
func (l *Lexer) addError(message string) {
	end := l.current
	if end > l.start+20 {
		end = l.start + 20
	}
	l.errors = append(l.errors, LexError{
		Message: message,
		Column:  l.start + 1,
		Lexeme:  l.source[l.start:end],
	})
}

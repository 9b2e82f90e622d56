package lexer

import "fmt"

// TokenType represents the type of a token in a type expression
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_ERROR represents a lexical error encountered during scanning.
	TOKEN_ERROR

	TOKEN_IDENTIFIER  // u128, Balance, Vec
	TOKEN_INT_LITERAL // 32

	TOKEN_LT        // <
	TOKEN_GT        // >
	TOKEN_LBRACKET  // [
	TOKEN_RBRACKET  // ]
	TOKEN_LPAREN    // (
	TOKEN_RPAREN    // )
	TOKEN_COMMA     // ,
	TOKEN_SEMICOLON // ;
	TOKEN_PATH_SEP  // ::
	TOKEN_DOT       // .
	TOKEN_AMPERSAND // &

	TOKEN_MUT // mut
)

var tokenNames = map[TokenType]string{
	TOKEN_EOF:         "EOF",
	TOKEN_ERROR:       "ERROR",
	TOKEN_IDENTIFIER:  "IDENTIFIER",
	TOKEN_INT_LITERAL: "INT_LITERAL",
	TOKEN_LT:          "LT",
	TOKEN_GT:          "GT",
	TOKEN_LBRACKET:    "LBRACKET",
	TOKEN_RBRACKET:    "RBRACKET",
	TOKEN_LPAREN:      "LPAREN",
	TOKEN_RPAREN:      "RPAREN",
	TOKEN_COMMA:       "COMMA",
	TOKEN_SEMICOLON:   "SEMICOLON",
	TOKEN_PATH_SEP:    "PATH_SEP",
	TOKEN_DOT:         "DOT",
	TOKEN_AMPERSAND:   "AMPERSAND",
	TOKEN_MUT:         "MUT",
}

// String returns the name of the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Keywords maps reserved words to their token types
var Keywords = map[string]TokenType{
	"mut": TOKEN_MUT,
}

// Token represents a lexical token
type Token struct {
	Type    TokenType   // The type of the token
	Lexeme  string      // The raw text of the token
	Literal interface{} // The parsed value (for literals)
	Column  int         // Column number (1-indexed)
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s '%s' (%v) at %d", t.Type, t.Lexeme, t.Literal, t.Column)
	}
	return fmt.Sprintf("%s '%s' at %d", t.Type, t.Lexeme, t.Column)
}

// LexError represents a lexical error
type LexError struct {
	Message string
	Column  int
	Lexeme  string
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("column %d: %s (near '%s')", e.Column, e.Message, e.Lexeme)
}

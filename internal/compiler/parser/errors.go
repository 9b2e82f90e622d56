package parser

import (
	"fmt"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	"github.com/conduit-lang/contractabi/internal/compiler/lexer"
)

// ParseError represents an error encountered while parsing a type expression.
// Location is relative to the expression: line 1, column of the token.
type ParseError struct {
	Message  string
	Location ast.SourceLocation
	Token    lexer.Token
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Token.Type == lexer.TOKEN_EOF {
		return fmt.Sprintf("column %d: %s (at end of expression)", e.Location.Column, e.Message)
	}
	return fmt.Sprintf("column %d: %s (near '%s')", e.Location.Column, e.Message, e.Token.Lexeme)
}

// NewParseError creates a new parse error
func NewParseError(message string, token lexer.Token) ParseError {
	return ParseError{
		Message:  message,
		Location: ast.SourceLocation{Line: 1, Column: token.Column},
		Token:    token,
	}
}

// fromLexError converts a lexical error into a parse error
func fromLexError(err lexer.LexError) ParseError {
	return ParseError{
		Message:  err.Message,
		Location: ast.SourceLocation{Line: 1, Column: err.Column},
		Token:    lexer.Token{Type: lexer.TOKEN_ERROR, Lexeme: err.Lexeme, Column: err.Column},
	}
}

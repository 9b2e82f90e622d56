// Package parser turns type expression tokens into ast.TypeRef trees using
// recursive descent.
//
// Grammar:
//
//	type  := '&' 'mut'? type
//	       | '[' type (';' INT)? ']'
//	       | '(' (type (',' type)* ','?)? ')'
//	       | path ('<' type (',' type)* '>')?
//	path  := IDENT (('::' | '.') IDENT)*
package parser

import (
	"fmt"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	"github.com/conduit-lang/contractabi/internal/compiler/lexer"
)

// maxDepth bounds nesting so hostile input cannot exhaust the stack
const maxDepth = 64

// Parser transforms a stream of tokens into a type tree
type Parser struct {
	tokens  []lexer.Token
	current int
	depth   int
	errors  []ParseError
}

// New creates a new parser for the given token stream
func New(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens: tokens,
		errors: make([]ParseError, 0),
	}
}

// ParseType lexes and parses a complete type expression.
func ParseType(source string) (ast.TypeRef, []ParseError) {
	tokens, lexErrors := lexer.New(source).ScanTokens()
	if len(lexErrors) > 0 {
		errs := make([]ParseError, 0, len(lexErrors))
		for _, e := range lexErrors {
			errs = append(errs, fromLexError(e))
		}
		return nil, errs
	}
	return New(tokens).Parse()
}

// Parse parses exactly one type and requires the stream to end after it
func (p *Parser) Parse() (ast.TypeRef, []ParseError) {
	if p.isAtEnd() {
		p.error(p.peek(), "Expected a type")
		return nil, p.errors
	}

	ref := p.parseType()
	if ref != nil && !p.isAtEnd() {
		p.error(p.peek(), "Unexpected token after type")
	}
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return ref, nil
}

func (p *Parser) parseType() ast.TypeRef {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		p.error(p.peek(), fmt.Sprintf("Type nested deeper than %d levels", maxDepth))
		return nil
	}

	tok := p.peek()
	switch tok.Type {
	case lexer.TOKEN_AMPERSAND:
		return p.parseRef()
	case lexer.TOKEN_LBRACKET:
		return p.parseSliceOrArray()
	case lexer.TOKEN_LPAREN:
		return p.parseTuple()
	case lexer.TOKEN_IDENTIFIER:
		return p.parsePath()
	default:
		p.error(tok, "Expected a type")
		return nil
	}
}

// parseRef parses &T and &mut T
func (p *Parser) parseRef() ast.TypeRef {
	amp := p.advance()
	mutable := p.match(lexer.TOKEN_MUT)
	elem := p.parseType()
	if elem == nil {
		return nil
	}
	return &ast.RefType{Elem: elem, Mutable: mutable, Loc: location(amp)}
}

// parseSliceOrArray parses [T] and [T; N]
func (p *Parser) parseSliceOrArray() ast.TypeRef {
	open := p.advance()
	elem := p.parseType()
	if elem == nil {
		return nil
	}

	if p.match(lexer.TOKEN_SEMICOLON) {
		lenTok := p.consume(lexer.TOKEN_INT_LITERAL, "Expected array length after ';'")
		if lenTok.Type == lexer.TOKEN_ERROR {
			return nil
		}
		if p.consume(lexer.TOKEN_RBRACKET, "Expected ']' after array length").Type == lexer.TOKEN_ERROR {
			return nil
		}
		n, _ := lenTok.Literal.(uint32)
		return &ast.ArrayType{Elem: elem, Len: n, Loc: location(open)}
	}

	if p.consume(lexer.TOKEN_RBRACKET, "Expected ']' or ';'").Type == lexer.TOKEN_ERROR {
		return nil
	}
	return &ast.SliceType{Elem: elem, Loc: location(open)}
}

// parseTuple parses (), (T,) and (A, B, ...). A single element without a
// trailing comma is a parenthesized type, not a tuple.
func (p *Parser) parseTuple() ast.TypeRef {
	open := p.advance()
	tuple := &ast.TupleType{Elems: make([]ast.TypeRef, 0), Loc: location(open)}

	trailingComma := false
	for !p.check(lexer.TOKEN_RPAREN) {
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		tuple.Elems = append(tuple.Elems, elem)
		trailingComma = p.match(lexer.TOKEN_COMMA)
		if !trailingComma {
			break
		}
	}

	if p.consume(lexer.TOKEN_RPAREN, "Expected ')' to close tuple").Type == lexer.TOKEN_ERROR {
		return nil
	}
	if len(tuple.Elems) == 1 && !trailingComma {
		return tuple.Elems[0]
	}
	return tuple
}

// parsePath parses a path with optional generic arguments
func (p *Parser) parsePath() ast.TypeRef {
	first := p.advance()
	path := &ast.PathType{Segments: []string{first.Lexeme}, Loc: location(first)}

	for p.match(lexer.TOKEN_PATH_SEP, lexer.TOKEN_DOT) {
		seg := p.consume(lexer.TOKEN_IDENTIFIER, "Expected identifier after path separator")
		if seg.Type == lexer.TOKEN_ERROR {
			return nil
		}
		path.Segments = append(path.Segments, seg.Lexeme)
	}

	if p.match(lexer.TOKEN_LT) {
		for {
			arg := p.parseType()
			if arg == nil {
				return nil
			}
			path.Args = append(path.Args, arg)
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
		if p.consume(lexer.TOKEN_GT, "Expected '>' to close generic arguments").Type == lexer.TOKEN_ERROR {
			return nil
		}
	}
	return path
}

func location(tok lexer.Token) ast.SourceLocation {
	return ast.SourceLocation{Line: 1, Column: tok.Column}
}

// peek returns the current token without consuming it
func (p *Parser) peek() lexer.Token {
	if len(p.tokens) == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF, Column: 1}
	}
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

// previous returns the most recently consumed token
func (p *Parser) previous() lexer.Token {
	if len(p.tokens) == 0 || p.current == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current-1]
}

// advance consumes the current token and returns it
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// check returns true if the current token matches the given type
func (p *Parser) check(tokenType lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// match consumes the token if it matches any of the given types
func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances if the next token matches, otherwise reports an error
func (p *Parser) consume(tokenType lexer.TokenType, message string) lexer.Token {
	if p.check(tokenType) {
		return p.advance()
	}
	p.error(p.peek(), message)
	return lexer.Token{Type: lexer.TOKEN_ERROR}
}

// isAtEnd returns true if we've reached the end of the token stream
func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == lexer.TOKEN_EOF
}

// error records a parse error
func (p *Parser) error(token lexer.Token, message string) {
	p.errors = append(p.errors, NewParseError(message, token))
}

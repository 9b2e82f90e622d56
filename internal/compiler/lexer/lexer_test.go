package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestScanTokens(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []TokenType
	}{
		{"primitive", "u128", []TokenType{TOKEN_IDENTIFIER, TOKEN_EOF}},
		{"path", "erc20::Balance", []TokenType{TOKEN_IDENTIFIER, TOKEN_PATH_SEP, TOKEN_IDENTIFIER, TOKEN_EOF}},
		{"dotted path", "env.Hash", []TokenType{TOKEN_IDENTIFIER, TOKEN_DOT, TOKEN_IDENTIFIER, TOKEN_EOF}},
		{"generic", "Vec<u8>", []TokenType{TOKEN_IDENTIFIER, TOKEN_LT, TOKEN_IDENTIFIER, TOKEN_GT, TOKEN_EOF}},
		{"array", "[u8; 32]", []TokenType{TOKEN_LBRACKET, TOKEN_IDENTIFIER, TOKEN_SEMICOLON, TOKEN_INT_LITERAL, TOKEN_RBRACKET, TOKEN_EOF}},
		{"tuple", "(u32, bool)", []TokenType{TOKEN_LPAREN, TOKEN_IDENTIFIER, TOKEN_COMMA, TOKEN_IDENTIFIER, TOKEN_RPAREN, TOKEN_EOF}},
		{"reference", "&mut str", []TokenType{TOKEN_AMPERSAND, TOKEN_MUT, TOKEN_IDENTIFIER, TOKEN_EOF}},
		{"empty", "", []TokenType{TOKEN_EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, errs := New(tt.source).ScanTokens()
			require.Empty(t, errs)
			assert.Equal(t, tt.want, tokenTypes(tokens))
		})
	}
}

func TestScanTokens_Columns(t *testing.T) {
	tokens, errs := New("Option< Balance >").ScanTokens()
	require.Empty(t, errs)
	require.Len(t, tokens, 5)

	assert.Equal(t, 1, tokens[0].Column)
	assert.Equal(t, 7, tokens[1].Column)
	assert.Equal(t, "Balance", tokens[2].Lexeme)
	assert.Equal(t, 9, tokens[2].Column)
	assert.Equal(t, 17, tokens[3].Column)
	assert.Equal(t, 18, tokens[4].Column)
}

func TestScanTokens_ArrayLength(t *testing.T) {
	tokens, errs := New("1_024").ScanTokens()
	require.Empty(t, errs)
	assert.Equal(t, uint32(1024), tokens[0].Literal)
}

func TestScanTokens_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		column int
	}{
		{"single colon", "a:b", 2},
		{"unexpected character", "Vec<u8>!", 8},
		{"length overflow", "[u8; 99999999999]", 6},
		{"non-ASCII letter", "Vec<é>", 5},
		{"non-ASCII in identifier", "Montant_é", 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := New(tt.source).ScanTokens()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.column, errs[0].Column)
			assert.Contains(t, errs[0].Error(), "column")
		})
	}
}

func TestScanTokens_NonASCII(t *testing.T) {
	tokens, errs := New("Größe").ScanTokens()
	require.Len(t, errs, 2)
	assert.Equal(t, "ö", errs[0].Lexeme)
	assert.Equal(t, "ß", errs[1].Lexeme)
	assert.Contains(t, errs[0].Message, "non-ASCII")

	var idents []string
	for _, tok := range tokens {
		if tok.Type == TOKEN_IDENTIFIER {
			idents = append(idents, tok.Lexeme)
		}
	}
	assert.Equal(t, []string{"Gr", "e"}, idents)
}

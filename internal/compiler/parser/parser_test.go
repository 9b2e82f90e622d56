package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"u128", "u128"},
		{"erc20::Balance", "erc20::Balance"},
		{"env.types.Hash", "env::types::Hash"},
		{"Vec<u8>", "Vec<u8>"},
		{"Result< (), erc20::Error >", "Result<(),erc20::Error>"},
		{"Mapping<AccountId, Balance>", "Mapping<AccountId,Balance>"},
		{"[u8]", "[u8]"},
		{"[u8; 32]", "[u8; 32]"},
		{"[[u8; 4]; 2]", "[[u8; 4]; 2]"},
		{"()", "()"},
		{"(u32,)", "(u32,)"},
		{"(u8)", "u8"},
		{"(u8,)", "(u8,)"},
		{"((u8, bool))", "(u8,bool)"},
		{"Vec<(u8)>", "Vec<u8>"},
		{"(u32, bool)", "(u32,bool)"},
		{"(u32, bool,)", "(u32,bool)"},
		{"&str", "&str"},
		{"&mut Vec<u8>", "&mut Vec<u8>"},
		{"Option<Vec<(AccountId, [u8; 32])>>", "Option<Vec<(AccountId,[u8; 32])>>"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			ref, errs := ParseType(tt.source)
			require.Empty(t, errs)
			assert.Equal(t, tt.want, ref.String())
		})
	}
}

func TestParseType_Structure(t *testing.T) {
	ref, errs := ParseType("Result<u32, [u8; 4]>")
	require.Empty(t, errs)

	path, ok := ref.(*ast.PathType)
	require.True(t, ok)
	assert.Equal(t, []string{"Result"}, path.Segments)
	require.Len(t, path.Args, 2)

	arr, ok := path.Args[1].(*ast.ArrayType)
	require.True(t, ok)
	assert.Equal(t, uint32(4), arr.Len)
	assert.Equal(t, 13, arr.Location().Column)
}

func TestParseType_ParenthesizedIsNotTuple(t *testing.T) {
	ref, errs := ParseType("(u8)")
	require.Empty(t, errs)
	path, ok := ref.(*ast.PathType)
	require.True(t, ok)
	assert.Equal(t, "u8", path.Name())

	ref, errs = ParseType("(u8,)")
	require.Empty(t, errs)
	tuple, ok := ref.(*ast.TupleType)
	require.True(t, ok)
	assert.Len(t, tuple.Elems, 1)

	ref, errs = ParseType("((u8, bool))")
	require.Empty(t, errs)
	tuple, ok = ref.(*ast.TupleType)
	require.True(t, ok)
	assert.Len(t, tuple.Elems, 2)
}

func TestParseType_Errors(t *testing.T) {
	tests := []struct {
		source  string
		column  int
		message string
	}{
		{"", 1, "Expected a type"},
		{"Vec<u8", 7, "Expected '>'"},
		{"[u8; ]", 6, "Expected array length"},
		{"[u8; 4", 7, "Expected ']'"},
		{"(u8 bool)", 5, "Expected ')'"},
		{"u8 u16", 4, "Unexpected token after type"},
		{"erc20::", 8, "Expected identifier"},
		{"<u8>", 1, "Expected a type"},
		{"Vec<u8>!", 8, "Unexpected character"},
		{"&mut", 5, "Expected a type"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			ref, errs := ParseType(tt.source)
			assert.Nil(t, ref)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.column, errs[0].Location.Column)
			assert.Contains(t, errs[0].Message, tt.message)
		})
	}
}

func TestParseType_DepthLimit(t *testing.T) {
	source := strings.Repeat("Vec<", maxDepth+1) + "u8" + strings.Repeat(">", maxDepth+1)
	_, errs := ParseType(source)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "nested deeper")
}

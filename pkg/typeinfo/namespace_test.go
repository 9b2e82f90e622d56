package typeinfo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNamespace(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{input: "Balance", want: []string{"Balance"}},
		{input: "erc20::Balance", want: []string{"erc20", "Balance"}},
		{input: "env.types.AccountId", want: []string{"env", "types", "AccountId"}},
		{input: "_private", want: []string{"_private"}},
		{input: "", wantErr: true},
		{input: "   ", wantErr: true},
		{input: "a::", wantErr: true},
		{input: "::a", wantErr: true},
		{input: "a::b.c", wantErr: true},
		{input: "1abc", wantErr: true},
		{input: "Vec<u8>", wantErr: true},
		{input: "_", wantErr: true},
		{input: "has space", wantErr: true},
		{input: "Montant_é", wantErr: true},
		{input: "erc20::Größe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ns, err := ParseNamespace(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidIdentifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ns.Segments())
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("Balance_2"))
	assert.True(t, IsIdentifier("_x"))
	assert.False(t, IsIdentifier("2x"))
	assert.False(t, IsIdentifier("Montant_é"))
	assert.False(t, IsIdentifier("日本"))
}

func TestNamespace_JSON(t *testing.T) {
	data, err := json.Marshal(Prelude())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	ns, err := NewNamespace([]string{"erc20", "Balance"})
	require.NoError(t, err)
	data, err = json.Marshal(ns)
	require.NoError(t, err)
	assert.Equal(t, `["erc20","Balance"]`, string(data))
	assert.Equal(t, "erc20::Balance", ns.String())
}

func TestNewPath(t *testing.T) {
	p, err := NewPath("erc20", "Error")
	require.NoError(t, err)
	assert.Equal(t, "Error", p.Name())
	assert.Equal(t, "erc20::Error", p.String())

	_, err = NewPath()
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = NewPath("ok", "not ok")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

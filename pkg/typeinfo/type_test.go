package typeinfo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	balance := NewComposite(Path{"erc20", "Balance"}, nil, Field{Name: "value", Type: U128})

	tests := []struct {
		name string
		ty   *Type
		want string
	}{
		{"primitive", Bool, "bool"},
		{"unit", Unit(), "()"},
		{"empty tuple is unit", TupleOf(), "()"},
		{"single tuple", TupleOf(U32), "(u32,)"},
		{"pair", TupleOf(U32, Bool), "(u32,bool)"},
		{"sequence", SequenceOf(U8), "[u8]"},
		{"array", ArrayOf(32, U8), "[u8; 32]"},
		{"option", OptionOf(U128), "Option<u128>"},
		{"result", ResultOf(Unit(), Str), "Result<(),str>"},
		{"named", balance, "erc20::Balance"},
		{"nested", SequenceOf(OptionOf(balance)), "[Option<erc20::Balance>]"},
		{"anonymous composite", &Type{def: Composite{Fields: []Field{{Name: "x", Type: I32}, {Type: I32}}}}, "{x:i32,i32}"},
		{"anonymous variant", &Type{def: Variant{Cases: []VariantCase{{Name: "A"}, {Name: "B", Fields: []Field{{Type: U8}}}}}}, "enum{A|B(u8)}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ty.Key()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey_IgnoresPointerIdentity(t *testing.T) {
	a, err := OptionOf(SequenceOf(U8)).Key()
	require.NoError(t, err)
	b, err := OptionOf(SequenceOf(U8)).Key()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKey_Errors(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		var ty *Type
		_, err := ty.Key()
		assert.ErrorIs(t, err, ErrNilType)
	})

	t.Run("nil element", func(t *testing.T) {
		_, err := SequenceOf(nil).Key()
		assert.ErrorIs(t, err, ErrNilType)
	})

	t.Run("cyclic anonymous type", func(t *testing.T) {
		seq := &Type{}
		seq.def = Sequence{Elem: seq}
		_, err := seq.Key()
		assert.ErrorIs(t, err, ErrCyclicType)
	})

	t.Run("undefined anonymous type", func(t *testing.T) {
		_, err := (&Type{}).Key()
		assert.ErrorIs(t, err, ErrUndefinedType)
	})
}

func TestDeclare_RecursiveType(t *testing.T) {
	node := Declare(Path{"tree", "Node"})
	require.NoError(t, node.DefineComposite(
		Field{Name: "value", Type: U32},
		Field{Name: "children", Type: SequenceOf(node)},
	))

	key, err := node.Key()
	require.NoError(t, err)
	assert.Equal(t, "tree::Node", key)
	assert.True(t, node.IsDefined())
	assert.Equal(t, KindComposite, node.Kind())

	err = node.DefineVariant(VariantCase{Name: "Leaf"})
	assert.True(t, errors.Is(err, ErrAlreadyDefined))
}

func TestDefine_RequiresDeclare(t *testing.T) {
	err := SequenceOf(U8).DefineComposite()
	assert.ErrorIs(t, err, ErrNotDeclared)
}

func TestPrimitiveByName(t *testing.T) {
	ty, ok := PrimitiveByName("u128")
	require.True(t, ok)
	assert.Same(t, U128, ty)

	_, ok = PrimitiveByName("Balance")
	assert.False(t, ok)
	assert.True(t, IsPrimitiveName("bool"))
}

func TestAccessorsReturnCopies(t *testing.T) {
	ty := NewComposite(Path{"a", "B"}, []*Type{U8})
	p := ty.Path()
	p[0] = "mutated"
	params := ty.Params()
	params[0] = Bool

	assert.Equal(t, "a::B<u8>", ty.String())
}

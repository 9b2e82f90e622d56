package typeinfo

// Primitive is a built-in scalar type.
type Primitive string

// Kind implements Def.
func (Primitive) Kind() DefKind { return KindPrimitive }

const (
	PrimBool Primitive = "bool"
	PrimChar Primitive = "char"
	PrimStr  Primitive = "str"
	PrimU8   Primitive = "u8"
	PrimU16  Primitive = "u16"
	PrimU32  Primitive = "u32"
	PrimU64  Primitive = "u64"
	PrimU128 Primitive = "u128"
	PrimI8   Primitive = "i8"
	PrimI16  Primitive = "i16"
	PrimI32  Primitive = "i32"
	PrimI64  Primitive = "i64"
	PrimI128 Primitive = "i128"
)

var (
	Bool = primitive(PrimBool)
	Char = primitive(PrimChar)
	Str  = primitive(PrimStr)
	U8   = primitive(PrimU8)
	U16  = primitive(PrimU16)
	U32  = primitive(PrimU32)
	U64  = primitive(PrimU64)
	U128 = primitive(PrimU128)
	I8   = primitive(PrimI8)
	I16  = primitive(PrimI16)
	I32  = primitive(PrimI32)
	I64  = primitive(PrimI64)
	I128 = primitive(PrimI128)
)

var primitives = map[Primitive]*Type{
	PrimBool: Bool,
	PrimChar: Char,
	PrimStr:  Str,
	PrimU8:   U8,
	PrimU16:  U16,
	PrimU32:  U32,
	PrimU64:  U64,
	PrimU128: U128,
	PrimI8:   I8,
	PrimI16:  I16,
	PrimI32:  I32,
	PrimI64:  I64,
	PrimI128: I128,
}

func primitive(p Primitive) *Type {
	return &Type{def: p}
}

// PrimitiveByName looks up a primitive descriptor by its name ("u128", "bool", ...).
func PrimitiveByName(name string) (*Type, bool) {
	t, ok := primitives[Primitive(name)]
	return t, ok
}

// IsPrimitiveName reports whether name is reserved by a primitive type.
func IsPrimitiveName(name string) bool {
	_, ok := primitives[Primitive(name)]
	return ok
}

package typeinfo

import "fmt"

// DefKind identifies the shape of a type definition.
type DefKind int

const (
	KindUndefined DefKind = iota
	KindPrimitive
	KindComposite
	KindVariant
	KindSequence
	KindArray
	KindTuple
)

// String returns the lowercase name of the kind.
func (k DefKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindComposite:
		return "composite"
	case KindVariant:
		return "variant"
	case KindSequence:
		return "sequence"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	default:
		return "undefined"
	}
}

// Def is a type definition.
type Def interface {
	Kind() DefKind
}

// Field is a named or positional member of a composite or variant case.
// Positional fields have an empty Name.
type Field struct {
	Name string
	Type *Type
}

// Composite is a struct-like definition.
type Composite struct {
	Fields []Field
}

// Kind implements Def.
func (Composite) Kind() DefKind { return KindComposite }

// VariantCase is one alternative of a Variant.
type VariantCase struct {
	Name         string
	Fields       []Field
	Discriminant *uint64
}

// Variant is an enum-like definition.
type Variant struct {
	Cases []VariantCase
}

// Kind implements Def.
func (Variant) Kind() DefKind { return KindVariant }

// Sequence is a dynamically sized list of Elem.
type Sequence struct {
	Elem *Type
}

// Kind implements Def.
func (Sequence) Kind() DefKind { return KindSequence }

// Array is a fixed size list of Elem.
type Array struct {
	Len  uint32
	Elem *Type
}

// Kind implements Def.
func (Array) Kind() DefKind { return KindArray }

// Tuple is an ordered, anonymous product of types. The empty tuple is unit.
type Tuple struct {
	Elems []*Type
}

// Kind implements Def.
func (Tuple) Kind() DefKind { return KindTuple }

var unit = &Type{def: Tuple{}}

// Unit returns the empty tuple, used as the default type of parameters.
func Unit() *Type {
	return unit
}

// SequenceOf returns an anonymous sequence of elem.
func SequenceOf(elem *Type) *Type {
	return &Type{def: Sequence{Elem: elem}}
}

// ArrayOf returns an anonymous fixed size array of elem.
func ArrayOf(n uint32, elem *Type) *Type {
	return &Type{def: Array{Len: n, Elem: elem}}
}

// TupleOf returns an anonymous tuple. TupleOf() is equivalent to Unit.
func TupleOf(elems ...*Type) *Type {
	if len(elems) == 0 {
		return unit
	}
	return &Type{def: Tuple{Elems: append([]*Type(nil), elems...)}}
}

// Declare creates a named type without a definition. The definition is set
// later, exactly once, with DefineComposite or DefineVariant, which allows a
// type to refer to itself through its fields.
func Declare(path Path, params ...*Type) *Type {
	return &Type{
		path:     append(Path(nil), path...),
		params:   append([]*Type(nil), params...),
		declared: true,
	}
}

// DefineComposite sets the definition of a declared type.
func (t *Type) DefineComposite(fields ...Field) error {
	return t.define(Composite{Fields: append([]Field(nil), fields...)})
}

// DefineVariant sets the definition of a declared type.
func (t *Type) DefineVariant(cases ...VariantCase) error {
	return t.define(Variant{Cases: append([]VariantCase(nil), cases...)})
}

func (t *Type) define(def Def) error {
	if t == nil {
		return ErrNilType
	}
	if !t.declared {
		return fmt.Errorf("%w: %s", ErrNotDeclared, t)
	}
	if t.def != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyDefined, t.path)
	}
	t.def = def
	return nil
}

// NewComposite returns a named, fully defined composite type.
func NewComposite(path Path, params []*Type, fields ...Field) *Type {
	t := Declare(path, params...)
	t.def = Composite{Fields: append([]Field(nil), fields...)}
	return t
}

// NewVariant returns a named, fully defined variant type.
func NewVariant(path Path, params []*Type, cases ...VariantCase) *Type {
	t := Declare(path, params...)
	t.def = Variant{Cases: append([]VariantCase(nil), cases...)}
	return t
}

// OptionOf returns Option<elem>: None | Some(elem).
func OptionOf(elem *Type) *Type {
	return NewVariant(Path{"Option"}, []*Type{elem},
		VariantCase{Name: "None"},
		VariantCase{Name: "Some", Fields: []Field{{Type: elem}}},
	)
}

// ResultOf returns Result<ok, err>: Ok(ok) | Err(err).
func ResultOf(ok, err *Type) *Type {
	return NewVariant(Path{"Result"}, []*Type{ok, err},
		VariantCase{Name: "Ok", Fields: []Field{{Type: ok}}},
		VariantCase{Name: "Err", Fields: []Field{{Type: err}}},
	)
}

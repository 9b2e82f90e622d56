// Package typeinfo describes the types referenced by a contract interface.
//
// A Type is either anonymous (primitives, sequences, arrays, tuples) or named
// (a Path plus optional generic parameters, backed by a composite or variant
// definition). The identity of a type is its canonical Key: two descriptors
// with equal keys are the same type, no matter which display name a caller
// attaches to them later.
package typeinfo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNilType is returned when a nil descriptor is used where a type is required.
	ErrNilType = errors.New("nil type descriptor")
	// ErrCyclicType is returned when an anonymous descriptor contains itself.
	ErrCyclicType = errors.New("cyclic type descriptor")
	// ErrUndefinedType is returned for a declared named type whose definition was never set.
	ErrUndefinedType = errors.New("type declared but not defined")
	// ErrAlreadyDefined is returned when a declared type is defined twice.
	ErrAlreadyDefined = errors.New("type already defined")
	// ErrNotDeclared is returned when defining a type that was not created with Declare.
	ErrNotDeclared = errors.New("type was not declared")
)

// Type is a type descriptor.
//
// Descriptors are immutable once defined. Primitive descriptors are shared
// singletons, so pointer equality is not a reliable identity check: use Key.
type Type struct {
	path     Path
	params   []*Type
	def      Def
	declared bool
}

// Path returns the type's namespace path. Anonymous types have an empty path.
func (t *Type) Path() Path {
	return append(Path(nil), t.path...)
}

// Params returns the generic parameters of a named type.
func (t *Type) Params() []*Type {
	return append([]*Type(nil), t.params...)
}

// Def returns the type definition, or nil for a declared but undefined type.
func (t *Type) Def() Def {
	return t.def
}

// IsNamed reports whether the type carries a path.
func (t *Type) IsNamed() bool {
	return len(t.path) > 0
}

// IsDefined reports whether the type has a definition.
func (t *Type) IsDefined() bool {
	return t != nil && t.def != nil
}

// Kind returns the kind of the type's definition.
func (t *Type) Kind() DefKind {
	if t == nil || t.def == nil {
		return KindUndefined
	}
	return t.def.Kind()
}

// Key returns the canonical identity of the type.
//
// Named types render as their path plus generic parameters and do not
// descend into their definition, so recursive named types have finite keys.
// Anonymous types render structurally.
func (t *Type) Key() (string, error) {
	var b strings.Builder
	if err := t.writeKey(&b, nil); err != nil {
		return "", err
	}
	return b.String(), nil
}

// String renders the key, or a marker when the descriptor is invalid.
func (t *Type) String() string {
	key, err := t.Key()
	if err != nil {
		return "<invalid type: " + err.Error() + ">"
	}
	return key
}

func (t *Type) writeKey(b *strings.Builder, stack []*Type) error {
	if t == nil {
		return ErrNilType
	}
	for _, seen := range stack {
		if seen == t {
			return fmt.Errorf("%w: %s", ErrCyclicType, describePartial(t))
		}
	}
	stack = append(stack, t)

	if t.IsNamed() {
		b.WriteString(t.path.String())
		if len(t.params) > 0 {
			b.WriteByte('<')
			if err := writeKeyList(b, t.params, stack); err != nil {
				return err
			}
			b.WriteByte('>')
		}
		return nil
	}

	switch d := t.def.(type) {
	case nil:
		return ErrUndefinedType
	case Primitive:
		b.WriteString(string(d))
	case Sequence:
		b.WriteByte('[')
		if err := d.Elem.writeKey(b, stack); err != nil {
			return err
		}
		b.WriteByte(']')
	case Array:
		b.WriteByte('[')
		if err := d.Elem.writeKey(b, stack); err != nil {
			return err
		}
		b.WriteString("; ")
		b.WriteString(strconv.FormatUint(uint64(d.Len), 10))
		b.WriteByte(']')
	case Tuple:
		b.WriteByte('(')
		if err := writeKeyList(b, d.Elems, stack); err != nil {
			return err
		}
		if len(d.Elems) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case Composite:
		b.WriteByte('{')
		if err := writeFieldKeys(b, d.Fields, stack); err != nil {
			return err
		}
		b.WriteByte('}')
	case Variant:
		b.WriteString("enum{")
		for i, c := range d.Cases {
			if i > 0 {
				b.WriteByte('|')
			}
			b.WriteString(c.Name)
			if len(c.Fields) > 0 {
				b.WriteByte('(')
				if err := writeFieldKeys(b, c.Fields, stack); err != nil {
					return err
				}
				b.WriteByte(')')
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("unknown type definition %T", d)
	}
	return nil
}

func writeKeyList(b *strings.Builder, types []*Type, stack []*Type) error {
	for i, p := range types {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := p.writeKey(b, stack); err != nil {
			return err
		}
	}
	return nil
}

func writeFieldKeys(b *strings.Builder, fields []Field, stack []*Type) error {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		if f.Name != "" {
			b.WriteString(f.Name)
			b.WriteByte(':')
		}
		if err := f.Type.writeKey(b, stack); err != nil {
			return err
		}
	}
	return nil
}

func describePartial(t *Type) string {
	if t.def == nil {
		return "undefined"
	}
	return t.def.Kind().String()
}

package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeName renders the type behind sym in the same canonical form as
// typeinfo.Type.Key, resolving every nested symbol through the tables.
func (r *Registry) TypeName(sym Symbol) (string, error) {
	var b strings.Builder
	if err := r.writeTypeName(&b, sym, nil); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Registry) writeTypeName(b *strings.Builder, sym Symbol, stack []Symbol) error {
	ct, ok := r.ResolveType(sym)
	if !ok {
		return fmt.Errorf("%w: type %d", ErrUnknownSymbol, sym)
	}
	for _, seen := range stack {
		if seen == sym {
			return fmt.Errorf("cyclic anonymous type at symbol %d", sym)
		}
	}
	stack = append(stack, sym)

	if len(ct.Path) > 0 {
		for i, seg := range ct.Path {
			if i > 0 {
				b.WriteString("::")
			}
			s, ok := r.ResolveString(seg)
			if !ok {
				return fmt.Errorf("%w: string %d", ErrUnknownSymbol, seg)
			}
			b.WriteString(s)
		}
		if len(ct.Params) > 0 {
			b.WriteByte('<')
			if err := r.writeTypeList(b, ct.Params, stack); err != nil {
				return err
			}
			b.WriteByte('>')
		}
		return nil
	}

	d := ct.Def
	switch {
	case d.Primitive != "":
		b.WriteString(d.Primitive)
	case d.Sequence != nil:
		b.WriteByte('[')
		if err := r.writeTypeName(b, d.Sequence.Type, stack); err != nil {
			return err
		}
		b.WriteByte(']')
	case d.Array != nil:
		b.WriteByte('[')
		if err := r.writeTypeName(b, d.Array.Type, stack); err != nil {
			return err
		}
		b.WriteString("; ")
		b.WriteString(strconv.FormatUint(uint64(d.Array.Len), 10))
		b.WriteByte(']')
	case d.Tuple != nil:
		b.WriteByte('(')
		if err := r.writeTypeList(b, d.Tuple.Fields, stack); err != nil {
			return err
		}
		if len(d.Tuple.Fields) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case d.Composite != nil:
		b.WriteByte('{')
		if err := r.writeFields(b, d.Composite.Fields, stack); err != nil {
			return err
		}
		b.WriteByte('}')
	case d.Variant != nil:
		b.WriteString("enum{")
		for i, c := range d.Variant.Cases {
			if i > 0 {
				b.WriteByte('|')
			}
			name, ok := r.ResolveString(c.Name)
			if !ok {
				return fmt.Errorf("%w: string %d", ErrUnknownSymbol, c.Name)
			}
			b.WriteString(name)
			if len(c.Fields) > 0 {
				b.WriteByte('(')
				if err := r.writeFields(b, c.Fields, stack); err != nil {
					return err
				}
				b.WriteByte(')')
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("type %d has no definition", sym)
	}
	return nil
}

func (r *Registry) writeTypeList(b *strings.Builder, syms []Symbol, stack []Symbol) error {
	for i, s := range syms {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := r.writeTypeName(b, s, stack); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) writeFields(b *strings.Builder, fields []CompactField, stack []Symbol) error {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		if !f.Name.IsZero() {
			name, ok := r.ResolveString(f.Name)
			if !ok {
				return fmt.Errorf("%w: string %d", ErrUnknownSymbol, f.Name)
			}
			b.WriteString(name)
			b.WriteByte(':')
		}
		if err := r.writeTypeName(b, f.Type, stack); err != nil {
			return err
		}
	}
	return nil
}

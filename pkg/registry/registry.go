// Package registry interns the strings and type descriptors of a contract
// manifest into two ordered tables.
//
// A Registry lives for exactly one compaction run. Every distinct string and
// every distinct type (by typeinfo.Type.Key) receives a Symbol in first-seen
// order, starting at 1. Symbol 0 is never assigned.
//
// A Registry is not safe for concurrent use. Index assignment depends on the
// order of registration, so callers must register from a single goroutine in
// a fixed traversal order.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/conduit-lang/contractabi/pkg/typeinfo"
)

// Symbol is a 1-based index into one of the registry tables.
type Symbol uint32

// IsZero reports whether the symbol is unset.
func (s Symbol) IsZero() bool {
	return s == 0
}

// ErrUnknownSymbol is returned when a symbol does not refer to a table entry.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Registry is the interning table of a compaction run.
type Registry struct {
	strings   []string
	stringIdx map[string]Symbol
	types     []CompactType
	typeIdx   map[string]Symbol

	// err is the first type registration failure. A failed run leaves
	// reserved placeholder entries behind, so the registry refuses further
	// type registrations once it is set.
	err error
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		strings:   make([]string, 0),
		stringIdx: make(map[string]Symbol),
		types:     make([]CompactType, 0),
		typeIdx:   make(map[string]Symbol),
	}
}

// RegisterString interns s and returns its symbol.
func (r *Registry) RegisterString(s string) Symbol {
	if sym, ok := r.stringIdx[s]; ok {
		return sym
	}
	r.strings = append(r.strings, s)
	sym := Symbol(len(r.strings))
	r.stringIdx[s] = sym
	return sym
}

// RegisterType interns t, and recursively everything t refers to, and
// returns its symbol.
//
// The symbol of t is reserved before its components are registered, which
// keeps recursive named types finite. Registration order is: the type
// itself, its path segments, its generic parameters, then its definition.
func (r *Registry) RegisterType(t *typeinfo.Type) (Symbol, error) {
	if r.err != nil {
		return 0, r.err
	}
	sym, err := r.registerType(t)
	if err != nil {
		r.err = err
		return 0, err
	}
	return sym, nil
}

func (r *Registry) registerType(t *typeinfo.Type) (Symbol, error) {
	key, err := t.Key()
	if err != nil {
		return 0, fmt.Errorf("register type: %w", err)
	}
	if sym, ok := r.typeIdx[key]; ok {
		return sym, nil
	}
	if !t.IsDefined() {
		return 0, fmt.Errorf("register type %s: %w", key, typeinfo.ErrUndefinedType)
	}

	r.types = append(r.types, CompactType{})
	sym := Symbol(len(r.types))
	r.typeIdx[key] = sym

	compact, err := r.compactType(t)
	if err != nil {
		return 0, fmt.Errorf("register type %s: %w", key, err)
	}
	r.types[sym-1] = compact
	return sym, nil
}

func (r *Registry) compactType(t *typeinfo.Type) (CompactType, error) {
	var ct CompactType
	for _, seg := range t.Path() {
		ct.Path = append(ct.Path, r.RegisterString(seg))
	}
	for _, param := range t.Params() {
		sym, err := r.registerType(param)
		if err != nil {
			return ct, err
		}
		ct.Params = append(ct.Params, sym)
	}

	switch d := t.Def().(type) {
	case typeinfo.Primitive:
		ct.Def.Primitive = string(d)
	case typeinfo.Composite:
		fields, err := r.compactFields(d.Fields)
		if err != nil {
			return ct, err
		}
		ct.Def.Composite = &CompactComposite{Fields: fields}
	case typeinfo.Variant:
		cases := make([]CompactVariantCase, 0, len(d.Cases))
		for _, c := range d.Cases {
			fields, err := r.compactFields(c.Fields)
			if err != nil {
				return ct, err
			}
			cases = append(cases, CompactVariantCase{
				Name:         r.RegisterString(c.Name),
				Fields:       fields,
				Discriminant: c.Discriminant,
			})
		}
		ct.Def.Variant = &CompactVariant{Cases: cases}
	case typeinfo.Sequence:
		elem, err := r.registerType(d.Elem)
		if err != nil {
			return ct, err
		}
		ct.Def.Sequence = &CompactSequence{Type: elem}
	case typeinfo.Array:
		elem, err := r.registerType(d.Elem)
		if err != nil {
			return ct, err
		}
		ct.Def.Array = &CompactArray{Len: d.Len, Type: elem}
	case typeinfo.Tuple:
		elems := make([]Symbol, 0, len(d.Elems))
		for _, e := range d.Elems {
			sym, err := r.registerType(e)
			if err != nil {
				return ct, err
			}
			elems = append(elems, sym)
		}
		ct.Def.Tuple = &CompactTuple{Fields: elems}
	default:
		return ct, fmt.Errorf("unsupported type definition %T", d)
	}
	return ct, nil
}

func (r *Registry) compactFields(fields []typeinfo.Field) ([]CompactField, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]CompactField, 0, len(fields))
	for _, f := range fields {
		var cf CompactField
		if f.Name != "" {
			cf.Name = r.RegisterString(f.Name)
		}
		sym, err := r.registerType(f.Type)
		if err != nil {
			return nil, err
		}
		cf.Type = sym
		out = append(out, cf)
	}
	return out, nil
}

// Strings returns a copy of the string table in symbol order.
func (r *Registry) Strings() []string {
	return append([]string{}, r.strings...)
}

// Types returns a copy of the type table in symbol order.
func (r *Registry) Types() []CompactType {
	return append([]CompactType{}, r.types...)
}

// StringCount returns the number of interned strings.
func (r *Registry) StringCount() int {
	return len(r.strings)
}

// TypeCount returns the number of interned types.
func (r *Registry) TypeCount() int {
	return len(r.types)
}

// ResolveString returns the string behind sym.
func (r *Registry) ResolveString(sym Symbol) (string, bool) {
	if sym == 0 || int(sym) > len(r.strings) {
		return "", false
	}
	return r.strings[sym-1], true
}

// ResolveType returns the compact type behind sym.
func (r *Registry) ResolveType(sym Symbol) (CompactType, bool) {
	if sym == 0 || int(sym) > len(r.types) {
		return CompactType{}, false
	}
	return r.types[sym-1], true
}

// LookupString returns the symbol of an already interned string.
func (r *Registry) LookupString(s string) (Symbol, bool) {
	sym, ok := r.stringIdx[s]
	return sym, ok
}

// LookupType returns the symbol of an already interned type key.
func (r *Registry) LookupType(key string) (Symbol, bool) {
	sym, ok := r.typeIdx[key]
	return sym, ok
}

type registryJSON struct {
	Strings []string      `json:"strings"`
	Types   []CompactType `json:"types"`
}

// MarshalJSON encodes both tables.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(registryJSON{
		Strings: r.Strings(),
		Types:   r.Types(),
	})
}

// UnmarshalJSON decodes both tables and rebuilds the lookup indexes, so a
// decoded registry resolves and deduplicates like the one that produced it.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var raw registryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	decoded := New()
	for i, s := range raw.Strings {
		if _, dup := decoded.stringIdx[s]; dup {
			return fmt.Errorf("duplicate string %q at symbol %d", s, i+1)
		}
		decoded.strings = append(decoded.strings, s)
		decoded.stringIdx[s] = Symbol(i + 1)
	}
	decoded.types = append(decoded.types, raw.Types...)

	for i := range decoded.types {
		sym := Symbol(i + 1)
		key, err := decoded.TypeName(sym)
		if err != nil {
			return err
		}
		if prev, dup := decoded.typeIdx[key]; dup {
			return fmt.Errorf("duplicate type %s at symbols %d and %d", key, prev, sym)
		}
		decoded.typeIdx[key] = sym
	}

	*r = *decoded
	return nil
}

package abi

import (
	"encoding/json"
	"fmt"

	"github.com/conduit-lang/contractabi/pkg/registry"
)

// The compact forms mirror the expanded specs field for field. Names and
// types become registry symbols. Selectors, flags and docs are copied.

// CompactTypeSpec is a TypeSpec with the type and display name interned.
type CompactTypeSpec struct {
	Type        registry.Symbol   `json:"ty"`
	DisplayName []registry.Symbol `json:"display_name"`
}

// CompactReturnTypeSpec encodes as the bare type spec, or null.
type CompactReturnTypeSpec struct {
	Type *CompactTypeSpec
}

// MarshalJSON writes null for a unit return.
func (r CompactReturnTypeSpec) MarshalJSON() ([]byte, error) {
	if r.Type == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.Type)
}

// UnmarshalJSON reads null back as a unit return.
func (r *CompactReturnTypeSpec) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		r.Type = nil
		return nil
	}
	var ts CompactTypeSpec
	if err := json.Unmarshal(data, &ts); err != nil {
		return err
	}
	r.Type = &ts
	return nil
}

// CompactMessageParamSpec is a constructor or message argument.
type CompactMessageParamSpec struct {
	Name registry.Symbol `json:"name"`
	Type CompactTypeSpec `json:"type"`
}

// CompactEventParamSpec is an event argument.
type CompactEventParamSpec struct {
	Name    registry.Symbol `json:"name"`
	Indexed bool            `json:"indexed"`
	Type    CompactTypeSpec `json:"type"`
	Docs    []string        `json:"docs"`
}

// CompactConstructorSpec is the manifest form of a ConstructorSpec.
type CompactConstructorSpec struct {
	Name     registry.Symbol           `json:"name"`
	Selector Selector                  `json:"selector"`
	Args     []CompactMessageParamSpec `json:"args"`
	Docs     []string                  `json:"docs"`
}

// CompactMessageSpec is the manifest form of a MessageSpec.
type CompactMessageSpec struct {
	Name       registry.Symbol           `json:"name"`
	Selector   Selector                  `json:"selector"`
	Mutates    bool                      `json:"mutates"`
	Args       []CompactMessageParamSpec `json:"args"`
	ReturnType CompactReturnTypeSpec     `json:"return_type"`
	Docs       []string                  `json:"docs"`
}

// CompactEventSpec is the manifest form of an EventSpec.
type CompactEventSpec struct {
	Name registry.Symbol         `json:"name"`
	Args []CompactEventParamSpec `json:"args"`
	Docs []string                `json:"docs"`
}

// CompactContractSpec is the contract section of a manifest.
type CompactContractSpec struct {
	Name         registry.Symbol          `json:"name"`
	Constructors []CompactConstructorSpec `json:"constructors"`
	Messages     []CompactMessageSpec     `json:"messages"`
	Events       []CompactEventSpec       `json:"events"`
	Docs         []string                 `json:"docs"`
}

// IntoCompact interns the type, then each display name segment.
func (t TypeSpec) IntoCompact(r *registry.Registry) (CompactTypeSpec, error) {
	sym, err := r.RegisterType(t.ty)
	if err != nil {
		return CompactTypeSpec{}, err
	}
	segments := t.displayName.Segments()
	names := make([]registry.Symbol, 0, len(segments))
	for _, seg := range segments {
		names = append(names, r.RegisterString(seg))
	}
	return CompactTypeSpec{Type: sym, DisplayName: names}, nil
}

// IntoCompact keeps a unit return as null.
func (ret ReturnTypeSpec) IntoCompact(r *registry.Registry) (CompactReturnTypeSpec, error) {
	ts, ok := ret.Type()
	if !ok {
		return CompactReturnTypeSpec{}, nil
	}
	compact, err := ts.IntoCompact(r)
	if err != nil {
		return CompactReturnTypeSpec{}, err
	}
	return CompactReturnTypeSpec{Type: &compact}, nil
}

// IntoCompact interns the argument name and its type.
func (p MessageParamSpec) IntoCompact(r *registry.Registry) (CompactMessageParamSpec, error) {
	name := r.RegisterString(p.name)
	ty, err := p.ty.IntoCompact(r)
	if err != nil {
		return CompactMessageParamSpec{}, fmt.Errorf("arg %s: %w", p.name, err)
	}
	return CompactMessageParamSpec{Name: name, Type: ty}, nil
}

// IntoCompact interns the argument name and its type.
func (p EventParamSpec) IntoCompact(r *registry.Registry) (CompactEventParamSpec, error) {
	name := r.RegisterString(p.name)
	ty, err := p.ty.IntoCompact(r)
	if err != nil {
		return CompactEventParamSpec{}, fmt.Errorf("field %s: %w", p.name, err)
	}
	return CompactEventParamSpec{
		Name:    name,
		Indexed: p.indexed,
		Type:    ty,
		Docs:    p.Docs(),
	}, nil
}

func compactArgs(r *registry.Registry, args []MessageParamSpec) ([]CompactMessageParamSpec, error) {
	out := make([]CompactMessageParamSpec, 0, len(args))
	for _, arg := range args {
		c, err := arg.IntoCompact(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// IntoCompact interns the name, then the arguments in order.
func (c ConstructorSpec) IntoCompact(r *registry.Registry) (CompactConstructorSpec, error) {
	name := r.RegisterString(c.name)
	args, err := compactArgs(r, c.args)
	if err != nil {
		return CompactConstructorSpec{}, fmt.Errorf("constructor %s: %w", c.name, err)
	}
	return CompactConstructorSpec{
		Name:     name,
		Selector: c.selector,
		Args:     args,
		Docs:     c.Docs(),
	}, nil
}

// IntoCompact interns the name, the arguments, then the return type.
func (m MessageSpec) IntoCompact(r *registry.Registry) (CompactMessageSpec, error) {
	name := r.RegisterString(m.name)
	args, err := compactArgs(r, m.args)
	if err != nil {
		return CompactMessageSpec{}, fmt.Errorf("message %s: %w", m.name, err)
	}
	ret, err := m.returnType.IntoCompact(r)
	if err != nil {
		return CompactMessageSpec{}, fmt.Errorf("message %s: return type: %w", m.name, err)
	}
	return CompactMessageSpec{
		Name:       name,
		Selector:   m.selector,
		Mutates:    m.mutates,
		Args:       args,
		ReturnType: ret,
		Docs:       m.Docs(),
	}, nil
}

// IntoCompact interns the name, then the arguments in order.
func (e EventSpec) IntoCompact(r *registry.Registry) (CompactEventSpec, error) {
	name := r.RegisterString(e.name)
	args := make([]CompactEventParamSpec, 0, len(e.args))
	for _, arg := range e.args {
		c, err := arg.IntoCompact(r)
		if err != nil {
			return CompactEventSpec{}, fmt.Errorf("event %s: %w", e.name, err)
		}
		args = append(args, c)
	}
	return CompactEventSpec{Name: name, Args: args, Docs: e.Docs()}, nil
}

// IntoCompact walks the contract depth-first in declared field order:
// name, constructors, messages, events. That order fixes the symbol
// assignment, so the same spec always compacts to the same tables.
func (c ContractSpec) IntoCompact(r *registry.Registry) (CompactContractSpec, error) {
	out := CompactContractSpec{
		Name:         r.RegisterString(c.name),
		Constructors: make([]CompactConstructorSpec, 0, len(c.constructors)),
		Messages:     make([]CompactMessageSpec, 0, len(c.messages)),
		Events:       make([]CompactEventSpec, 0, len(c.events)),
		Docs:         c.Docs(),
	}
	for _, ctor := range c.constructors {
		cc, err := ctor.IntoCompact(r)
		if err != nil {
			return CompactContractSpec{}, err
		}
		out.Constructors = append(out.Constructors, cc)
	}
	for _, msg := range c.messages {
		cm, err := msg.IntoCompact(r)
		if err != nil {
			return CompactContractSpec{}, err
		}
		out.Messages = append(out.Messages, cm)
	}
	for _, ev := range c.events {
		ce, err := ev.IntoCompact(r)
		if err != nil {
			return CompactContractSpec{}, err
		}
		out.Events = append(out.Events, ce)
	}
	return out, nil
}

package abi

import (
	"encoding/json"
	"fmt"

	"github.com/conduit-lang/contractabi/pkg/typeinfo"
)

// DisplayName is the alias path attached to a type reference.
type DisplayName = typeinfo.Namespace

// TypeSpec is a type reference plus an optional display name.
//
// The display name travels with the reference, not with the type: two
// references to u128, one displayed as Balance and one bare, share a single
// type table entry after compaction.
type TypeSpec struct {
	ty          *typeinfo.Type
	displayName DisplayName
}

// NewTypeSpec returns a reference to ty without a display name.
func NewTypeSpec(ty *typeinfo.Type) TypeSpec {
	return TypeSpec{ty: ty}
}

// NewTypeSpecWithName returns a reference to ty displayed as name, which is
// parsed as a "::" or "." delimited path.
func NewTypeSpecWithName(ty *typeinfo.Type, name string) (TypeSpec, error) {
	ns, err := typeinfo.ParseNamespace(name)
	if err != nil {
		return TypeSpec{}, fmt.Errorf("%w: %v", ErrInvalidDisplayName, err)
	}
	return TypeSpec{ty: ty, displayName: ns}, nil
}

// NewTypeSpecWithSegments returns a reference to ty displayed as the given
// path segments. An empty segment list means no display name.
func NewTypeSpecWithSegments(ty *typeinfo.Type, segments []string) (TypeSpec, error) {
	ns, err := typeinfo.NewNamespace(segments)
	if err != nil {
		return TypeSpec{}, fmt.Errorf("%w: %v", ErrInvalidDisplayName, err)
	}
	return TypeSpec{ty: ty, displayName: ns}, nil
}

// MustTypeSpecWithName is NewTypeSpecWithName for generated code. It panics
// on a malformed name.
func MustTypeSpecWithName(ty *typeinfo.Type, name string) TypeSpec {
	ts, err := NewTypeSpecWithName(ty, name)
	if err != nil {
		panic(err)
	}
	return ts
}

// unitTypeSpec is the default type of params whose type is never set.
func unitTypeSpec() TypeSpec {
	return TypeSpec{ty: typeinfo.Unit()}
}

// Type returns the referenced type.
func (t TypeSpec) Type() *typeinfo.Type {
	return t.ty
}

// DisplayName returns the display name, empty when there is none.
func (t TypeSpec) DisplayName() DisplayName {
	return t.displayName
}

// HasDisplayName reports whether the reference carries an alias.
func (t TypeSpec) HasDisplayName() bool {
	return !t.displayName.IsEmpty()
}

// String renders the display name when present, else the type key.
func (t TypeSpec) String() string {
	if t.HasDisplayName() {
		return t.displayName.String()
	}
	return t.ty.String()
}

type typeSpecJSON struct {
	Type        string      `json:"ty"`
	DisplayName DisplayName `json:"display_name"`
}

// MarshalJSON encodes the reference with the type rendered as its key.
func (t TypeSpec) MarshalJSON() ([]byte, error) {
	key, err := t.ty.Key()
	if err != nil {
		return nil, err
	}
	return json.Marshal(typeSpecJSON{Type: key, DisplayName: t.displayName})
}

// ReturnTypeSpec is the optional return type of a message.
type ReturnTypeSpec struct {
	ty *TypeSpec
}

// NewReturnType returns a return type of ts.
func NewReturnType(ts TypeSpec) ReturnTypeSpec {
	return ReturnTypeSpec{ty: &ts}
}

// NoReturn returns the absent return type.
func NoReturn() ReturnTypeSpec {
	return ReturnTypeSpec{}
}

// Type returns the return type, if any.
func (r ReturnTypeSpec) Type() (TypeSpec, bool) {
	if r.ty == nil {
		return TypeSpec{}, false
	}
	return *r.ty, true
}

// MarshalJSON encodes the type spec itself, or null.
func (r ReturnTypeSpec) MarshalJSON() ([]byte, error) {
	if r.ty == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*r.ty)
}

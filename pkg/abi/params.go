package abi

import "encoding/json"

// MessageParamSpec is a named argument of a constructor or message.
type MessageParamSpec struct {
	name string
	ty   TypeSpec
}

// Name returns the argument name.
func (p MessageParamSpec) Name() string { return p.name }

// Type returns the argument type.
func (p MessageParamSpec) Type() TypeSpec { return p.ty }

// MarshalJSON encodes the argument in expanded form.
func (p MessageParamSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name string   `json:"name"`
		Type TypeSpec `json:"type"`
	}{p.name, p.ty})
}

const paramFieldType fieldSet = 1 << 0

// MessageParamSpecBuilder builds a MessageParamSpec. The type defaults to unit.
type MessageParamSpecBuilder struct {
	state builderState
	spec  MessageParamSpec
}

// NewMessageParam starts a message argument.
func NewMessageParam(name string) *MessageParamSpecBuilder {
	return &MessageParamSpecBuilder{
		state: newBuilderState("message param", name),
		spec:  MessageParamSpec{name: name, ty: unitTypeSpec()},
	}
}

// OfType sets the argument type.
func (b *MessageParamSpecBuilder) OfType(ts TypeSpec) *MessageParamSpecBuilder {
	b.state.mark(paramFieldType, "type")
	b.spec.ty = ts
	return b
}

// Done finalizes the argument.
func (b *MessageParamSpecBuilder) Done() MessageParamSpec {
	b.state.close()
	return b.spec
}

// EventParamSpec is a named field of an event.
type EventParamSpec struct {
	name    string
	indexed bool
	ty      TypeSpec
	docs    []string
}

func (p EventParamSpec) Name() string { return p.name }
func (p EventParamSpec) Indexed() bool { return p.indexed }
func (p EventParamSpec) Type() TypeSpec { return p.ty }
func (p EventParamSpec) Docs() []string { return append([]string{}, p.docs...) }

// MarshalJSON encodes the field in expanded form.
func (p EventParamSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name    string   `json:"name"`
		Indexed bool     `json:"indexed"`
		Type    TypeSpec `json:"type"`
		Docs    []string `json:"docs"`
	}{p.name, p.indexed, p.ty, p.Docs()})
}

const (
	eventParamFieldIndexed fieldSet = 1 << (iota + 1)
	eventParamFieldDocs
)

// EventParamSpecBuilder builds an EventParamSpec. The type defaults to unit,
// indexed to false.
type EventParamSpecBuilder struct {
	state builderState
	spec  EventParamSpec
}

// NewEventParam starts an event field.
func NewEventParam(name string) *EventParamSpecBuilder {
	return &EventParamSpecBuilder{
		state: newBuilderState("event param", name),
		spec:  EventParamSpec{name: name, ty: unitTypeSpec()},
	}
}

// OfType sets the field type.
func (b *EventParamSpecBuilder) OfType(ts TypeSpec) *EventParamSpecBuilder {
	b.state.mark(paramFieldType, "type")
	b.spec.ty = ts
	return b
}

// Indexed sets whether the field is indexed by event consumers.
func (b *EventParamSpecBuilder) Indexed(indexed bool) *EventParamSpecBuilder {
	b.state.mark(eventParamFieldIndexed, "indexed")
	b.spec.indexed = indexed
	return b
}

// Docs sets the documentation lines.
func (b *EventParamSpecBuilder) Docs(docs ...string) *EventParamSpecBuilder {
	b.state.mark(eventParamFieldDocs, "docs")
	b.spec.docs = append([]string(nil), docs...)
	return b
}

// Done finalizes the field.
func (b *EventParamSpecBuilder) Done() EventParamSpec {
	b.state.close()
	return b.spec
}

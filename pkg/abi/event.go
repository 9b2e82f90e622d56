package abi

import "encoding/json"

// EventSpec describes an event a contract can emit.
type EventSpec struct {
	name string
	args []EventParamSpec
	docs []string
}

func (e EventSpec) Name() string { return e.name }
func (e EventSpec) Args() []EventParamSpec { return append([]EventParamSpec{}, e.args...) }
func (e EventSpec) Docs() []string { return append([]string{}, e.docs...) }

// MarshalJSON encodes the event in expanded form.
func (e EventSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name string           `json:"name"`
		Args []EventParamSpec `json:"args"`
		Docs []string         `json:"docs"`
	}{e.name, e.Args(), e.Docs()})
}

const (
	eventFieldArgs fieldSet = 1 << iota
	eventFieldDocs
)

// EventSpecBuilder builds an EventSpec. No field is required.
type EventSpecBuilder struct {
	state builderState
	spec  EventSpec
}

// NewEvent starts an event.
func NewEvent(name string) *EventSpecBuilder {
	return &EventSpecBuilder{
		state: newBuilderState("event", name),
		spec:  EventSpec{name: name},
	}
}

// Args sets the event fields, in emission order.
func (b *EventSpecBuilder) Args(args ...EventParamSpec) *EventSpecBuilder {
	b.state.mark(eventFieldArgs, "args")
	b.spec.args = append([]EventParamSpec(nil), args...)
	return b
}

// Docs sets the documentation lines.
func (b *EventSpecBuilder) Docs(docs ...string) *EventSpecBuilder {
	b.state.mark(eventFieldDocs, "docs")
	b.spec.docs = append([]string(nil), docs...)
	return b
}

// Done finalizes the event.
func (b *EventSpecBuilder) Done() EventSpec {
	b.state.close()
	return b.spec
}

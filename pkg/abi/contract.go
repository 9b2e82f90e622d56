package abi

import "encoding/json"

// ContractSpec is the root of a contract interface description.
type ContractSpec struct {
	name         string
	constructors []ConstructorSpec
	messages     []MessageSpec
	events       []EventSpec
	docs         []string
}

// Name returns the contract name.
func (c ContractSpec) Name() string { return c.name }

// Constructors returns the constructors in declaration order.
func (c ContractSpec) Constructors() []ConstructorSpec {
	return append([]ConstructorSpec{}, c.constructors...)
}

// Messages returns the messages in declaration order.
func (c ContractSpec) Messages() []MessageSpec {
	return append([]MessageSpec{}, c.messages...)
}

// Events returns the events in declaration order.
func (c ContractSpec) Events() []EventSpec {
	return append([]EventSpec{}, c.events...)
}

// Docs returns the contract level documentation.
func (c ContractSpec) Docs() []string {
	return append([]string{}, c.docs...)
}

// MarshalJSON encodes the contract in expanded form: literal names and type
// keys instead of registry symbols.
func (c ContractSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name         string            `json:"name"`
		Constructors []ConstructorSpec `json:"constructors"`
		Messages     []MessageSpec     `json:"messages"`
		Events       []EventSpec       `json:"events"`
		Docs         []string          `json:"docs"`
	}{c.name, c.Constructors(), c.Messages(), c.Events(), c.Docs()})
}

const (
	contractFieldConstructors fieldSet = 1 << iota
	contractFieldMessages
	contractFieldEvents
	contractFieldDocs
)

// ContractSpecBuilder builds a ContractSpec. A contract needs at least one
// constructor and at least one message.
type ContractSpecBuilder struct {
	state builderState
	spec  ContractSpec
}

// NewContract starts a contract.
func NewContract(name string) *ContractSpecBuilder {
	return &ContractSpecBuilder{
		state: newBuilderState("contract", name),
		spec:  ContractSpec{name: name},
	}
}

// Constructors sets the constructors.
func (b *ContractSpecBuilder) Constructors(ctors ...ConstructorSpec) *ContractSpecBuilder {
	b.state.mark(contractFieldConstructors, "constructors")
	b.spec.constructors = append([]ConstructorSpec(nil), ctors...)
	return b
}

// Messages sets the messages.
func (b *ContractSpecBuilder) Messages(msgs ...MessageSpec) *ContractSpecBuilder {
	b.state.mark(contractFieldMessages, "messages")
	b.spec.messages = append([]MessageSpec(nil), msgs...)
	return b
}

// Events sets the events.
func (b *ContractSpecBuilder) Events(events ...EventSpec) *ContractSpecBuilder {
	b.state.mark(contractFieldEvents, "events")
	b.spec.events = append([]EventSpec(nil), events...)
	return b
}

// Docs sets the documentation lines.
func (b *ContractSpecBuilder) Docs(docs ...string) *ContractSpecBuilder {
	b.state.mark(contractFieldDocs, "docs")
	b.spec.docs = append([]string(nil), docs...)
	return b
}

// Done finalizes the contract. Setting an empty constructor or message list
// counts as missing.
func (b *ContractSpecBuilder) Done() (ContractSpec, error) {
	var missing []string
	if len(b.spec.constructors) == 0 {
		missing = append(missing, "constructors")
	}
	if len(b.spec.messages) == 0 {
		missing = append(missing, "messages")
	}
	if err := b.state.finish(missing); err != nil {
		return ContractSpec{}, err
	}
	return b.spec, nil
}

// MustDone is Done for generated code. It panics on an incomplete spec.
func (b *ContractSpecBuilder) MustDone() ContractSpec {
	spec, err := b.Done()
	if err != nil {
		panic(err)
	}
	return spec
}

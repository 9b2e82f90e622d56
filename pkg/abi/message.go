package abi

import "encoding/json"

// MessageSpec describes a callable entry point of a contract instance.
type MessageSpec struct {
	name       string
	selector   Selector
	mutates    bool
	args       []MessageParamSpec
	returnType ReturnTypeSpec
	docs       []string
}

func (m MessageSpec) Name() string { return m.name }
func (m MessageSpec) Selector() Selector { return m.selector }
func (m MessageSpec) Mutates() bool { return m.mutates }
func (m MessageSpec) Args() []MessageParamSpec { return append([]MessageParamSpec{}, m.args...) }
func (m MessageSpec) ReturnType() ReturnTypeSpec { return m.returnType }
func (m MessageSpec) Docs() []string { return append([]string{}, m.docs...) }

// MarshalJSON encodes the message in expanded form.
func (m MessageSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name       string             `json:"name"`
		Selector   Selector           `json:"selector"`
		Mutates    bool               `json:"mutates"`
		Args       []MessageParamSpec `json:"args"`
		ReturnType ReturnTypeSpec     `json:"return_type"`
		Docs       []string           `json:"docs"`
	}{m.name, m.selector, m.mutates, m.Args(), m.returnType, m.Docs()})
}

const (
	msgFieldSelector fieldSet = 1 << iota
	msgFieldMutates
	msgFieldArgs
	msgFieldReturns
	msgFieldDocs
)

// MessageSpecBuilder builds a MessageSpec. Selector, mutability and return
// type are required; use NoReturn for messages without a result.
type MessageSpecBuilder struct {
	state builderState
	spec  MessageSpec
}

// NewMessage starts a message.
func NewMessage(name string) *MessageSpecBuilder {
	return &MessageSpecBuilder{
		state: newBuilderState("message", name),
		spec:  MessageSpec{name: name},
	}
}

// Selector sets the selector.
func (b *MessageSpecBuilder) Selector(sel Selector) *MessageSpecBuilder {
	b.state.mark(msgFieldSelector, "selector")
	b.spec.selector = sel
	return b
}

// Mutates sets whether the message may change contract state.
func (b *MessageSpecBuilder) Mutates(mutates bool) *MessageSpecBuilder {
	b.state.mark(msgFieldMutates, "mutates")
	b.spec.mutates = mutates
	return b
}

// Args sets the arguments, in call order.
func (b *MessageSpecBuilder) Args(args ...MessageParamSpec) *MessageSpecBuilder {
	b.state.mark(msgFieldArgs, "args")
	b.spec.args = append([]MessageParamSpec(nil), args...)
	return b
}

// Returns sets the return type.
func (b *MessageSpecBuilder) Returns(ret ReturnTypeSpec) *MessageSpecBuilder {
	b.state.mark(msgFieldReturns, "return_type")
	b.spec.returnType = ret
	return b
}

// Docs sets the documentation lines.
func (b *MessageSpecBuilder) Docs(docs ...string) *MessageSpecBuilder {
	b.state.mark(msgFieldDocs, "docs")
	b.spec.docs = append([]string(nil), docs...)
	return b
}

// Done finalizes the message. It returns an *IncompleteSpecError naming
// every required field that was never set.
func (b *MessageSpecBuilder) Done() (MessageSpec, error) {
	var missing []string
	if !b.state.has(msgFieldSelector) {
		missing = append(missing, "selector")
	}
	if !b.state.has(msgFieldMutates) {
		missing = append(missing, "mutates")
	}
	if !b.state.has(msgFieldReturns) {
		missing = append(missing, "return_type")
	}
	if err := b.state.finish(missing); err != nil {
		return MessageSpec{}, err
	}
	return b.spec, nil
}

// MustDone is Done for generated code. It panics on an incomplete spec.
func (b *MessageSpecBuilder) MustDone() MessageSpec {
	spec, err := b.Done()
	if err != nil {
		panic(err)
	}
	return spec
}

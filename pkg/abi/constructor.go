package abi

import "encoding/json"

// ConstructorSpec describes an entry point that creates a contract instance.
type ConstructorSpec struct {
	name     string
	selector Selector
	args     []MessageParamSpec
	docs     []string
}

func (c ConstructorSpec) Name() string { return c.name }
func (c ConstructorSpec) Selector() Selector { return c.selector }
func (c ConstructorSpec) Args() []MessageParamSpec { return append([]MessageParamSpec{}, c.args...) }
func (c ConstructorSpec) Docs() []string { return append([]string{}, c.docs...) }

// MarshalJSON encodes the constructor in expanded form.
func (c ConstructorSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string             `json:"name"`
		Selector Selector           `json:"selector"`
		Args     []MessageParamSpec `json:"args"`
		Docs     []string           `json:"docs"`
	}{c.name, c.selector, c.Args(), c.Docs()})
}

const (
	ctorFieldSelector fieldSet = 1 << iota
	ctorFieldArgs
	ctorFieldDocs
)

// ConstructorSpecBuilder builds a ConstructorSpec. The selector is required.
type ConstructorSpecBuilder struct {
	state builderState
	spec  ConstructorSpec
}

// NewConstructor starts a constructor.
func NewConstructor(name string) *ConstructorSpecBuilder {
	return &ConstructorSpecBuilder{
		state: newBuilderState("constructor", name),
		spec:  ConstructorSpec{name: name},
	}
}

// Selector sets the selector.
func (b *ConstructorSpecBuilder) Selector(sel Selector) *ConstructorSpecBuilder {
	b.state.mark(ctorFieldSelector, "selector")
	b.spec.selector = sel
	return b
}

// Args sets the arguments, in call order.
func (b *ConstructorSpecBuilder) Args(args ...MessageParamSpec) *ConstructorSpecBuilder {
	b.state.mark(ctorFieldArgs, "args")
	b.spec.args = append([]MessageParamSpec(nil), args...)
	return b
}

// Docs sets the documentation lines.
func (b *ConstructorSpecBuilder) Docs(docs ...string) *ConstructorSpecBuilder {
	b.state.mark(ctorFieldDocs, "docs")
	b.spec.docs = append([]string(nil), docs...)
	return b
}

// Done finalizes the constructor. It returns an *IncompleteSpecError when
// the selector was never set.
func (b *ConstructorSpecBuilder) Done() (ConstructorSpec, error) {
	var missing []string
	if !b.state.has(ctorFieldSelector) {
		missing = append(missing, "selector")
	}
	if err := b.state.finish(missing); err != nil {
		return ConstructorSpec{}, err
	}
	return b.spec, nil
}

// MustDone is Done for generated code. It panics on an incomplete spec.
func (b *ConstructorSpecBuilder) MustDone() ConstructorSpec {
	spec, err := b.Done()
	if err != nil {
		panic(err)
	}
	return spec
}

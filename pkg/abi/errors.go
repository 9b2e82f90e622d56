package abi

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFieldAlreadySet is the cause of the panic raised when a builder
	// setter is called twice for the same field.
	ErrFieldAlreadySet = errors.New("field already set")
	// ErrBuilderFinalized is the cause of the panic raised when a builder is
	// used after Done succeeded.
	ErrBuilderFinalized = errors.New("builder already finalized")
	// ErrIncompleteSpec is wrapped by IncompleteSpecError.
	ErrIncompleteSpec = errors.New("incomplete spec")
	// ErrInvalidDisplayName is returned for display names that are not a
	// "::" or "." delimited sequence of identifiers.
	ErrInvalidDisplayName = errors.New("invalid display name")
	// ErrInvalidSelector is returned when a selector cannot be parsed.
	ErrInvalidSelector = errors.New("invalid selector")
)

// MisuseError describes a builder used out of protocol. Builders panic with a
// *MisuseError: the producer controls the call order, so misuse is a bug.
type MisuseError struct {
	Builder string
	Name    string
	Field   string
	Err     error
}

func (e *MisuseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s %q: %v", e.Builder, e.Name, e.Err)
	}
	return fmt.Sprintf("%s %q: %s: %v", e.Builder, e.Name, e.Field, e.Err)
}

func (e *MisuseError) Unwrap() error {
	return e.Err
}

// IncompleteSpecError lists the required fields a builder was finalized without.
type IncompleteSpecError struct {
	Builder string
	Name    string
	Missing []string
}

func (e *IncompleteSpecError) Error() string {
	return fmt.Sprintf("%s %q: missing required %s", e.Builder, e.Name, strings.Join(e.Missing, ", "))
}

func (e *IncompleteSpecError) Unwrap() error {
	return ErrIncompleteSpec
}

// fieldSet is a bitset of builder fields that have been set.
type fieldSet uint8

// builderState tracks which fields of a builder are set and whether the
// builder has been finalized.
type builderState struct {
	builder string
	name    string
	set     fieldSet
	done    bool
}

func newBuilderState(builder, name string) builderState {
	return builderState{builder: builder, name: name}
}

// mark records field f as set. It panics if f was already set or the builder
// is finalized.
func (s *builderState) mark(f fieldSet, field string) {
	if s.done {
		panic(&MisuseError{Builder: s.builder, Name: s.name, Field: field, Err: ErrBuilderFinalized})
	}
	if s.set&f != 0 {
		panic(&MisuseError{Builder: s.builder, Name: s.name, Field: field, Err: ErrFieldAlreadySet})
	}
	s.set |= f
}

func (s *builderState) has(f fieldSet) bool {
	return s.set&f != 0
}

// checkOpen panics if the builder was already finalized.
func (s *builderState) checkOpen() {
	if s.done {
		panic(&MisuseError{Builder: s.builder, Name: s.name, Err: ErrBuilderFinalized})
	}
}

// finish validates the collected missing fields and closes the builder.
func (s *builderState) finish(missing []string) error {
	s.checkOpen()
	if len(missing) > 0 {
		return &IncompleteSpecError{Builder: s.builder, Name: s.name, Missing: missing}
	}
	s.done = true
	return nil
}

// close finalizes a builder that has no required fields.
func (s *builderState) close() {
	s.checkOpen()
	s.done = true
}

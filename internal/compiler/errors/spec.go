package errors

import (
	"fmt"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
)

// Spec construction error codes (SPC200-299)
const (
	// ErrMissingSelector indicates a constructor or message without a selector
	// while selector derivation is disabled
	ErrMissingSelector ErrorCode = "SPC201"
	// ErrInvalidSelector indicates a selector that is not 4 bytes of hex
	ErrInvalidSelector ErrorCode = "SPC202"
	// ErrDuplicateSelector indicates two entry points sharing a selector
	ErrDuplicateSelector ErrorCode = "SPC203"
	// ErrDuplicateEntry indicates two constructors, messages or events with one name
	ErrDuplicateEntry ErrorCode = "SPC204"
	// ErrMissingMutates indicates a message that does not declare mutability
	ErrMissingMutates ErrorCode = "SPC205"
	// ErrNoConstructors indicates a contract without constructors
	ErrNoConstructors ErrorCode = "SPC206"
	// ErrNoMessages indicates a contract without messages
	ErrNoMessages ErrorCode = "SPC207"
	// ErrIncompleteSpec indicates a spec builder rejected the entity
	ErrIncompleteSpec ErrorCode = "SPC208"
	// ErrDuplicateArg indicates two arguments of one entry point sharing a name
	ErrDuplicateArg ErrorCode = "SPC209"
	// ErrIgnoredMutates warns that mutates was set on a constructor
	ErrIgnoredMutates ErrorCode = "SPC210"
)

// NewMissingSelector creates a SPC201 error
func NewMissingSelector(loc ast.SourceLocation, kind, name string) *CompilerError {
	return newError(
		ErrMissingSelector,
		"missing_selector",
		CategorySpec,
		SeverityError,
		fmt.Sprintf("%s %q has no selector", kind, name),
		loc,
	).WithSuggestion("Add a selector, or build with --derive-selectors").
		WithExamples(`selector: "0x9bae9d5e"`, `selector: '["0x9B","0xAE","0x9D","0x5E"]'`)
}

// NewInvalidSelector creates a SPC202 error
func NewInvalidSelector(loc ast.SourceLocation, kind, name, raw string) *CompilerError {
	return newError(
		ErrInvalidSelector,
		"invalid_selector",
		CategorySpec,
		SeverityError,
		fmt.Sprintf("%s %q has an invalid selector", kind, name),
		loc,
	).WithExpected("4 bytes of hex, e.g. 0x9bae9d5e").
		WithActual(raw)
}

// NewDuplicateSelector creates a SPC203 error
func NewDuplicateSelector(loc ast.SourceLocation, selector, name, other string) *CompilerError {
	return newError(
		ErrDuplicateSelector,
		"duplicate_selector",
		CategorySpec,
		SeverityError,
		fmt.Sprintf("Selector %s of %q is already used by %q", selector, name, other),
		loc,
	).WithSuggestion("Every constructor and message needs a distinct selector")
}

// NewDuplicateEntry creates a SPC204 error
func NewDuplicateEntry(loc ast.SourceLocation, kind, name string) *CompilerError {
	return newError(
		ErrDuplicateEntry,
		"duplicate_entry",
		CategorySpec,
		SeverityError,
		fmt.Sprintf("%s %q is declared more than once", kind, name),
		loc,
	)
}

// NewMissingMutates creates a SPC205 error
func NewMissingMutates(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrMissingMutates,
		"missing_mutates",
		CategorySpec,
		SeverityError,
		fmt.Sprintf("message %q does not declare whether it mutates state", name),
		loc,
	).WithExamples("mutates: true", "mutates: false")
}

// NewNoConstructors creates a SPC206 error
func NewNoConstructors(loc ast.SourceLocation, contract string) *CompilerError {
	return newError(
		ErrNoConstructors,
		"no_constructors",
		CategorySpec,
		SeverityError,
		fmt.Sprintf("contract %q declares no constructors", contract),
		loc,
	).WithSuggestion("A contract needs at least one constructor to be instantiated")
}

// NewNoMessages creates a SPC207 error
func NewNoMessages(loc ast.SourceLocation, contract string) *CompilerError {
	return newError(
		ErrNoMessages,
		"no_messages",
		CategorySpec,
		SeverityError,
		fmt.Sprintf("contract %q declares no messages", contract),
		loc,
	).WithSuggestion("A contract needs at least one message to be called")
}

// NewIncompleteSpec creates a SPC208 error
func NewIncompleteSpec(loc ast.SourceLocation, cause error) *CompilerError {
	return newError(
		ErrIncompleteSpec,
		"incomplete_spec",
		CategorySpec,
		SeverityError,
		cause.Error(),
		loc,
	)
}

// NewDuplicateArg creates a SPC209 error
func NewDuplicateArg(loc ast.SourceLocation, owner, arg string) *CompilerError {
	return newError(
		ErrDuplicateArg,
		"duplicate_arg",
		CategorySpec,
		SeverityError,
		fmt.Sprintf("%s has more than one argument named %q", owner, arg),
		loc,
	)
}

// NewIgnoredMutates creates a SPC210 warning
func NewIgnoredMutates(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrIgnoredMutates,
		"ignored_mutates",
		CategorySpec,
		SeverityWarning,
		fmt.Sprintf("constructor %q sets mutates, which only applies to messages", name),
		loc,
	).WithSuggestion("Remove mutates from the constructor")
}

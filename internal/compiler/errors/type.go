package errors

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
)

// Type error codes (TYP100-199)
const (
	// ErrUnknownType indicates a reference to a type that is neither built in nor declared.
	ErrUnknownType ErrorCode = "TYP101"
	// ErrDuplicateType indicates two declarations with the same name.
	ErrDuplicateType ErrorCode = "TYP102"
	// ErrReservedTypeName indicates a declaration shadowing a built-in type.
	ErrReservedTypeName ErrorCode = "TYP103"
	// ErrGenericArity indicates a generic type used with the wrong number of arguments.
	ErrGenericArity ErrorCode = "TYP104"
	// ErrInvalidDisplayName indicates a display name that is not an identifier path.
	ErrInvalidDisplayName ErrorCode = "TYP105"
	// ErrCyclicAlias indicates aliases that resolve to each other.
	ErrCyclicAlias ErrorCode = "TYP106"
	// ErrEmptyEnum indicates an enum declaration without variants.
	ErrEmptyEnum ErrorCode = "TYP107"
	// ErrDuplicateMember indicates a repeated field or variant name in a declaration.
	ErrDuplicateMember ErrorCode = "TYP108"
	// ErrUnexpectedGenerics indicates generic arguments on a non-generic type.
	ErrUnexpectedGenerics ErrorCode = "TYP109"
)

// NewUnknownType creates a TYP101 error
func NewUnknownType(loc ast.SourceLocation, name string, known []string) *CompilerError {
	err := newError(
		ErrUnknownType,
		"unknown_type",
		CategoryType,
		SeverityError,
		fmt.Sprintf("Unknown type %q", name),
		loc,
	).WithSuggestion("Declare it under types, or use a built-in type")
	if len(known) > 0 {
		err.WithExamples(known...)
	}
	return err
}

// NewDuplicateType creates a TYP102 error
func NewDuplicateType(loc ast.SourceLocation, name string, first ast.SourceLocation) *CompilerError {
	return newError(
		ErrDuplicateType,
		"duplicate_type",
		CategoryType,
		SeverityError,
		fmt.Sprintf("Type %q is already declared at %s", name, first),
		loc,
	)
}

// NewReservedTypeName creates a TYP103 error
func NewReservedTypeName(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrReservedTypeName,
		"reserved_type_name",
		CategoryType,
		SeverityError,
		fmt.Sprintf("Type name %q is reserved for a built-in type", name),
		loc,
	).WithSuggestion("Pick a different name for the declaration")
}

// NewGenericArity creates a TYP104 error
func NewGenericArity(loc ast.SourceLocation, name string, want, got int) *CompilerError {
	return newError(
		ErrGenericArity,
		"generic_arity",
		CategoryType,
		SeverityError,
		fmt.Sprintf("%s takes %d type argument(s)", name, want),
		loc,
	).WithExpected(fmt.Sprintf("%d", want)).
		WithActual(fmt.Sprintf("%d", got))
}

// NewInvalidDisplayName creates a TYP105 error
func NewInvalidDisplayName(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrInvalidDisplayName,
		"invalid_display_name",
		CategoryType,
		SeverityError,
		fmt.Sprintf("Display name %q is not a path of identifiers", name),
		loc,
	).WithExamples("Balance", "erc20::Balance", "env.types.Hash")
}

// NewCyclicAlias creates a TYP106 error
func NewCyclicAlias(loc ast.SourceLocation, cycle []string) *CompilerError {
	return newError(
		ErrCyclicAlias,
		"cyclic_alias",
		CategoryType,
		SeverityError,
		fmt.Sprintf("Alias cycle: %s", strings.Join(cycle, " -> ")),
		loc,
	).WithSuggestion("Use a struct or enum declaration for recursive types")
}

// NewEmptyEnum creates a TYP107 error
func NewEmptyEnum(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrEmptyEnum,
		"empty_enum",
		CategoryType,
		SeverityError,
		fmt.Sprintf("Enum %q declares no variants", name),
		loc,
	)
}

// NewDuplicateMember creates a TYP108 error
func NewDuplicateMember(loc ast.SourceLocation, owner, kind, name string) *CompilerError {
	return newError(
		ErrDuplicateMember,
		"duplicate_member",
		CategoryType,
		SeverityError,
		fmt.Sprintf("%s declares %s %q more than once", owner, kind, name),
		loc,
	)
}

// NewUnexpectedGenerics creates a TYP109 error
func NewUnexpectedGenerics(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrUnexpectedGenerics,
		"unexpected_generics",
		CategoryType,
		SeverityError,
		fmt.Sprintf("Type %q does not take type arguments", name),
		loc,
	)
}

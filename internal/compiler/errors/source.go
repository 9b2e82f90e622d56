package errors

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
)

// Source error codes (SRC001-099)
const (
	// ErrUnreadableSource indicates the description file could not be read
	ErrUnreadableSource ErrorCode = "SRC001"
	// ErrUnsupportedFormat indicates a file extension no loader handles
	ErrUnsupportedFormat ErrorCode = "SRC002"
	// ErrMalformedSource indicates the YAML or HCL document failed to decode
	ErrMalformedSource ErrorCode = "SRC003"
	// ErrMissingKey indicates a required key is absent from the document
	ErrMissingKey ErrorCode = "SRC004"
	// ErrInvalidTypeExpr indicates a type expression with invalid syntax
	ErrInvalidTypeExpr ErrorCode = "SRC005"
	// ErrInvalidName indicates a name that is not a valid identifier
	ErrInvalidName ErrorCode = "SRC006"
)

// NewUnreadableSource creates a SRC001 error
func NewUnreadableSource(path string, cause error) *CompilerError {
	return newError(
		ErrUnreadableSource,
		"unreadable_source",
		CategorySource,
		SeverityError,
		fmt.Sprintf("Cannot read description: %v", cause),
		ast.SourceLocation{},
	).WithFile(path)
}

// NewUnsupportedFormat creates a SRC002 error
func NewUnsupportedFormat(path, ext string, supported []string) *CompilerError {
	return newError(
		ErrUnsupportedFormat,
		"unsupported_format",
		CategorySource,
		SeverityError,
		fmt.Sprintf("Unsupported description format %q", ext),
		ast.SourceLocation{},
	).WithFile(path).
		WithExpected(strings.Join(supported, ", ")).
		WithActual(ext)
}

// NewMalformedSource creates a SRC003 error
func NewMalformedSource(loc ast.SourceLocation, detail string) *CompilerError {
	return newError(
		ErrMalformedSource,
		"malformed_source",
		CategorySource,
		SeverityError,
		detail,
		loc,
	)
}

// NewMissingKey creates a SRC004 error
func NewMissingKey(loc ast.SourceLocation, owner, key string) *CompilerError {
	return newError(
		ErrMissingKey,
		"missing_key",
		CategorySource,
		SeverityError,
		fmt.Sprintf("%s is missing required key %q", owner, key),
		loc,
	)
}

// NewInvalidTypeExpr creates a SRC005 error
func NewInvalidTypeExpr(loc ast.SourceLocation, expr, detail string) *CompilerError {
	return newError(
		ErrInvalidTypeExpr,
		"invalid_type_expression",
		CategorySource,
		SeverityError,
		fmt.Sprintf("Invalid type expression: %s", detail),
		loc,
	).WithActual(expr).
		WithExamples("u128", "Vec<AccountId>", "[u8; 32]", "(u32, bool)", "Result<(), Error>")
}

// NewInvalidName creates a SRC006 error
func NewInvalidName(loc ast.SourceLocation, kind, name string) *CompilerError {
	return newError(
		ErrInvalidName,
		"invalid_name",
		CategorySource,
		SeverityError,
		fmt.Sprintf("Invalid %s name %q", kind, name),
		loc,
	).WithSuggestion("Names start with a letter or underscore followed by letters, digits or underscores")
}

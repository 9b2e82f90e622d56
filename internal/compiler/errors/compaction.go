package errors

import (
	"fmt"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
)

// Compaction error codes (CMP300-399)
const (
	// ErrCompactionFailed indicates the registry could not intern the contract
	ErrCompactionFailed ErrorCode = "CMP301"
	// ErrSerializationFailed indicates the manifest could not be encoded
	ErrSerializationFailed ErrorCode = "CMP302"
)

// NewCompactionFailed creates a CMP301 error
func NewCompactionFailed(loc ast.SourceLocation, cause error) *CompilerError {
	return newError(
		ErrCompactionFailed,
		"compaction_failed",
		CategoryCompaction,
		SeverityError,
		fmt.Sprintf("Compaction failed: %v", cause),
		loc,
	)
}

// NewSerializationFailed creates a CMP302 error
func NewSerializationFailed(cause error) *CompilerError {
	return newError(
		ErrSerializationFailed,
		"serialization_failed",
		CategoryCompaction,
		SeverityError,
		fmt.Sprintf("Cannot encode manifest: %v", cause),
		ast.SourceLocation{},
	)
}

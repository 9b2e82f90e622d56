// Package errors holds the diagnostics reported while turning a contract
// description into a manifest. Every diagnostic carries a stable code, the
// position in the description file and optional fix hints, and renders
// either for a terminal or as JSON for editor tooling.
package errors

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
)

// ErrorCode identifies a diagnostic across releases, e.g. "TYP101".
type ErrorCode string

// ErrorCategory groups codes by compilation stage. The code prefix and
// number range follow the category.
type ErrorCategory string

const (
	// CategorySource covers unreadable or malformed description files (SRC001-099)
	CategorySource ErrorCategory = "source"
	// CategoryType covers type expressions and type declarations (TYP100-199)
	CategoryType ErrorCategory = "type"
	// CategorySpec covers constructors, messages, events and selectors (SPC200-299)
	CategorySpec ErrorCategory = "spec"
	// CategoryCompaction covers interning the spec into a manifest (CMP300-399)
	CategoryCompaction ErrorCategory = "compaction"
)

// ErrorSeverity decides whether a diagnostic fails the build.
type ErrorSeverity string

const (
	SeverityError   ErrorSeverity = "error"   // no manifest is written
	SeverityWarning ErrorSeverity = "warning" // the manifest is written, e.g. an ignored key
	SeverityInfo    ErrorSeverity = "info"
)

// ErrorContext is the description text around a diagnostic.
type ErrorContext struct {
	Current     string   `json:"current"`
	SourceLines []string `json:"source_lines"` // line before, the line itself, line after
}

// CompilerError is one diagnostic about a description file. Code, Type,
// Category and Severity classify it; Message and Location say what went
// wrong and where. The remaining fields are optional fix hints shown
// below the source excerpt.
type CompilerError struct {
	Code     ErrorCode          `json:"code"`
	Type     string             `json:"type"` // snake_case name of the code, e.g. "unknown_type"
	Category ErrorCategory      `json:"category"`
	Severity ErrorSeverity      `json:"severity"`
	Message  string             `json:"message"`
	Location ast.SourceLocation `json:"location"`
	File     string             `json:"file,omitempty"`

	Context       *ErrorContext `json:"context,omitempty"`
	Expected      string        `json:"expected,omitempty"`
	Actual        string        `json:"actual,omitempty"`
	Suggestion    string        `json:"suggestion,omitempty"`
	Examples      []string      `json:"examples,omitempty"` // close matches, e.g. declared type names
	Documentation string        `json:"documentation,omitempty"`
}

// Error renders the terminal form.
func (e *CompilerError) Error() string {
	return e.Format()
}

// Format renders the diagnostic with its source excerpt.
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// ToJSON returns the diagnostic as indented JSON.
func (e *CompilerError) ToJSON() (string, error) {
	return indentJSON(e)
}

// WithFile names the description file the diagnostic belongs to.
func (e *CompilerError) WithFile(file string) *CompilerError {
	e.File = file
	return e
}

// WithContext attaches the offending line and its neighbours.
func (e *CompilerError) WithContext(current string, sourceLines []string) *CompilerError {
	e.Context = &ErrorContext{
		Current:     current,
		SourceLines: sourceLines,
	}
	return e
}

func (e *CompilerError) WithExpected(expected string) *CompilerError {
	e.Expected = expected
	return e
}

func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

// WithSuggestion sets the help line.
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// WithExamples sets the "did you mean" candidates.
func (e *CompilerError) WithExamples(examples ...string) *CompilerError {
	e.Examples = examples
	return e
}

// ErrorList collects every diagnostic of one build, so a description with
// several mistakes reports them all at once.
type ErrorList []*CompilerError

// Error renders every entry plus the build summary.
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// HasErrors reports whether any entry fails the build
func (el ErrorList) HasErrors() bool {
	return el.count(SeverityError) > 0
}

func (el ErrorList) HasWarnings() bool {
	return el.count(SeverityWarning) > 0
}

// ToJSON returns the entries as a JSON array, as printed by build --json
func (el ErrorList) ToJSON() (string, error) {
	return indentJSON(el)
}

// ErrorCount counts the entries per severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	return el.count(SeverityError), el.count(SeverityWarning), el.count(SeverityInfo)
}

func (el ErrorList) count(severity ErrorSeverity) int {
	n := 0
	for _, d := range el {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// WithFile sets the source file name on every entry
func (el ErrorList) WithFile(file string) ErrorList {
	for _, err := range el {
		err.WithFile(file)
	}
	return el
}

// Sort orders the entries by source location, keeping the original order
// of entries at the same position
func (el ErrorList) Sort() {
	sort.SliceStable(el, func(i, j int) bool {
		a, b := el[i].Location, el[j].Location
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// AttachContext fills in the source context of every located entry from
// the description text
func (el ErrorList) AttachContext(source string) {
	lines := strings.Split(source, "\n")
	for _, err := range el {
		line := err.Location.Line
		if line < 1 || line > len(lines) || err.Context != nil {
			continue
		}
		snippet := make([]string, 0, 3)
		for n := line - 1; n <= line+1; n++ {
			if n >= 1 && n <= len(lines) {
				snippet = append(snippet, strings.TrimRight(lines[n-1], "\r"))
			} else {
				snippet = append(snippet, "")
			}
		}
		err.WithContext(snippet[1], snippet)
	}
}

func indentJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func documentationURL(code ErrorCode) string {
	return fmt.Sprintf("https://docs.conduit-lang.org/contractabi/errors/%s", code)
}

func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	message string,
	loc ast.SourceLocation,
) *CompilerError {
	return &CompilerError{
		Code:          code,
		Type:          typ,
		Category:      category,
		Severity:      severity,
		Message:       message,
		Location:      loc,
		Documentation: documentationURL(code),
	}
}

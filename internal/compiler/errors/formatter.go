package errors

import (
	"fmt"
	"strings"
)

// FormatError renders a diagnostic for terminal output:
//
//	error[TYP101]: Unknown type "Balanse"
//	  --> erc20.yaml:2:9
//	   |
//	 1 | types:
//	 2 |   value: Balanse
//	   |          ^
//	 3 | messages: []
//	   |
//	   = help: Declare it under types, or use a built-in type
//	   = did you mean: Balance
func FormatError(e *CompilerError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s[%s]: %s\n", e.Severity, e.Code, e.Message)
	fmt.Fprintf(&b, "  --> %s\n", location(e))

	gutter := gutterWidth(e)
	pad := strings.Repeat(" ", gutter)

	if e.Context != nil && len(e.Context.SourceLines) > 0 {
		fmt.Fprintf(&b, "%s |\n", pad)
		// SourceLines holds the line before, the error line and the line after
		for i, line := range e.Context.SourceLines {
			lineNum := e.Location.Line - 1 + i
			if lineNum < 1 || (i == 2 && line == "") {
				continue
			}
			fmt.Fprintf(&b, "%*d | %s\n", gutter, lineNum, line)
			if i == 1 {
				fmt.Fprintf(&b, "%s | %s^\n", pad, caretIndent(line, e.Location.Column))
			}
		}
		fmt.Fprintf(&b, "%s |\n", pad)
	}

	if e.Expected != "" {
		fmt.Fprintf(&b, "%s = expected: %s\n", pad, e.Expected)
	}
	if e.Actual != "" {
		fmt.Fprintf(&b, "%s =    found: %s\n", pad, e.Actual)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "%s = help: %s\n", pad, e.Suggestion)
	}
	if len(e.Examples) > 0 {
		fmt.Fprintf(&b, "%s = did you mean: %s\n", pad, strings.Join(e.Examples, ", "))
	}
	if e.Documentation != "" {
		fmt.Fprintf(&b, "%s = see: %s\n", pad, e.Documentation)
	}

	return b.String()
}

// FormatErrorList renders every entry followed by a one-line summary
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder
	for _, err := range errors {
		b.WriteString(err.Format())
		b.WriteString("\n")
	}

	errCount, warnCount, _ := errors.ErrorCount()
	verdict := "build failed"
	if errCount == 0 {
		verdict = "build succeeded"
	}
	fmt.Fprintf(&b, "%s: %s, %s\n", verdict, plural(errCount, "error"), plural(warnCount, "warning"))
	return b.String()
}

// FormatCompact returns the one-line file:line:col form used by editors
// and CI annotations
func FormatCompact(e *CompilerError) string {
	return fmt.Sprintf("%s: %s: %s [%s]", location(e), e.Severity, e.Message, e.Code)
}

func location(e *CompilerError) string {
	file := e.File
	if file == "" {
		file = "<source>"
	}
	if e.Location.Line < 1 {
		return file
	}
	return fmt.Sprintf("%s:%d:%d", file, e.Location.Line, e.Location.Column)
}

// gutterWidth is the width of the widest line number shown
func gutterWidth(e *CompilerError) int {
	last := e.Location.Line + 1
	if e.Context == nil {
		last = e.Location.Line
	}
	w := len(fmt.Sprint(last))
	if w < 2 {
		w = 2
	}
	return w
}

// caretIndent keeps tabs from the source line so the caret lines up
func caretIndent(line string, column int) string {
	var b strings.Builder
	for i, r := range line {
		if i >= column-1 {
			break
		}
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

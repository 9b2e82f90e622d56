package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	cerrors "github.com/conduit-lang/contractabi/internal/compiler/errors"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Details      []string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// FormatError renders a message with suggestions and help commands
//
// Example output:
//
//	❌ MESSAGE NOT FOUND
//	   No message named 'trnsfer'.
//
//	   Did you mean: transfer?
//
//	   → List messages: contractabi inspect <manifest>
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var header, body *color.Color
	var symbol string
	switch opts.Level {
	case ErrorLevelWarning:
		header = paint(opts.NoColor, color.FgYellow, color.Bold)
		body = paint(opts.NoColor, color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		header = paint(opts.NoColor, color.FgCyan, color.Bold)
		body = paint(opts.NoColor, color.FgCyan)
		symbol = "ℹ️"
	default:
		header = paint(opts.NoColor, color.FgRed, color.Bold)
		body = paint(opts.NoColor, color.FgRed)
		symbol = "❌"
	}

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
		body.Fprintf(&b, "   %s\n", opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if len(opts.Details) > 0 {
		b.WriteString("\n")
		for _, d := range opts.Details {
			fmt.Fprintf(&b, "   %s\n", d)
		}
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := paint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// NotFoundError reports a manifest lookup miss. kind is "message",
// "constructor", "event", "selector" or "type".
func NotFoundError(kind, name string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     kind + " not found",
		Problem:     fmt.Sprintf("No %s named '%s'.", kind, name),
		Suggestions: suggestions,
		HelpCommands: []string{
			"List entries: contractabi inspect <manifest>",
			"Get help: contractabi inspect --help",
		},
		NoColor: noColor,
	})
}

// Diagnostics renders compiler diagnostics one per line, each followed by
// its hint when it has one.
func Diagnostics(list cerrors.ErrorList, noColor bool) []string {
	lines := make([]string, 0, len(list))
	for _, e := range list {
		var c *color.Color
		switch e.Severity {
		case cerrors.SeverityError:
			c = paint(noColor, color.FgRed)
		case cerrors.SeverityWarning:
			c = paint(noColor, color.FgYellow)
		default:
			c = paint(noColor, color.FgCyan)
		}
		lines = append(lines, c.Sprint(cerrors.FormatCompact(e)))
		if e.Suggestion != "" {
			lines = append(lines, "  hint: "+e.Suggestion)
		}
	}
	return lines
}

// BuildError reports a failed compilation of file
func BuildError(file string, list cerrors.ErrorList, noColor bool) string {
	errs, warns, _ := list.ErrorCount()
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "build failed",
		Problem: fmt.Sprintf("%s: %d error(s), %d warning(s)", file, errs, warns),
		Details: Diagnostics(list, noColor),
		HelpCommands: []string{
			"Get help: contractabi build --help",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "configuration error",
		Problem: message,
		HelpCommands: []string{
			"View config: cat contractabi.yml",
			"Get help: contractabi --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}

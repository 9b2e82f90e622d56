package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	cerrors "github.com/conduit-lang/contractabi/internal/compiler/errors"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
		excludes []string
	}{
		{
			name: "context header",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "message not found",
				Problem: "No message named 'trnsfer'.",
			},
			contains: []string{"❌ MESSAGE NOT FOUND\n", "   No message named 'trnsfer'.\n"},
		},
		{
			name: "no context",
			opts: ErrorOptions{
				Level:   ErrorLevelWarning,
				Problem: "manifest has no events",
			},
			contains: []string{"⚠️ manifest has no events\n"},
		},
		{
			name: "suggestions",
			opts: ErrorOptions{
				Problem:     "missing",
				Suggestions: []string{"transfer", "transfer_from"},
			},
			contains: []string{"Did you mean: transfer, transfer_from?"},
		},
		{
			name: "details and help",
			opts: ErrorOptions{
				Problem:      "bad",
				Details:      []string{"line one", "line two"},
				HelpCommands: []string{"Get help: contractabi --help"},
			},
			contains: []string{"   line one\n", "   line two\n", "   → Get help: contractabi --help\n"},
			excludes: []string{"Did you mean"},
		},
		{
			name:     "info",
			opts:     ErrorOptions{Level: ErrorLevelInfo, Problem: "serving"},
			contains: []string{"ℹ️ serving"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			out := FormatError(tt.opts)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	out := NotFoundError("message", "trnsfer", []string{"transfer"}, true)

	assert.Contains(t, out, "MESSAGE NOT FOUND")
	assert.Contains(t, out, "No message named 'trnsfer'.")
	assert.Contains(t, out, "Did you mean: transfer?")
	assert.Contains(t, out, "contractabi inspect <manifest>")
}

func TestBuildError(t *testing.T) {
	list := cerrors.ErrorList{
		cerrors.NewUnknownType(ast.SourceLocation{Line: 4, Column: 12}, "Balanse", []string{"Balance"}),
		cerrors.NewIgnoredMutates(ast.SourceLocation{Line: 9, Column: 3}, "new"),
	}.WithFile("token.yml")

	out := BuildError("token.yml", list, true)

	assert.Contains(t, out, "BUILD FAILED")
	assert.Contains(t, out, "token.yml: 1 error(s), 1 warning(s)")
	assert.Contains(t, out, "token.yml:4:12: error: Unknown type \"Balanse\" [TYP101]")
	assert.Contains(t, out, "token.yml:9:3: warning:")
	assert.Contains(t, out, "hint: Remove mutates from the constructor")
	assert.Contains(t, out, "contractabi build --help")
}

func TestDiagnostics(t *testing.T) {
	list := cerrors.ErrorList{
		cerrors.NewNoMessages(ast.SourceLocation{Line: 1, Column: 1}, "Flipper"),
	}

	lines := Diagnostics(list, true)

	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "<source>:1:1: error:"))
	assert.Equal(t, "  hint: A contract needs at least one message to be called", lines[1])
}

func TestConfigError(t *testing.T) {
	out := ConfigError("invalid selectors.hash \"md5\"", true)
	assert.Contains(t, out, "CONFIGURATION ERROR")
	assert.Contains(t, out, "cat contractabi.yml")
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "wrote token.json", true)
	assert.Equal(t, "✓ wrote token.json\n", buf.String())
}

func TestWarningAndInfo(t *testing.T) {
	assert.Contains(t, Warning("selector derived", []string{"0x9bae9d5e"}, true), "Did you mean: 0x9bae9d5e?")
	assert.Equal(t, "ℹ️ listening\n", Info("listening", true))
}

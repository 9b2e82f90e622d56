package commands

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/cli/ui"
	"github.com/conduit-lang/contractabi/internal/compiler"
	cerrors "github.com/conduit-lang/contractabi/internal/compiler/errors"
	"github.com/conduit-lang/contractabi/pkg/abi"
	"github.com/conduit-lang/contractabi/pkg/typeinfo"
)

//go:embed templates/*
var templatesFS embed.FS

var scaffoldTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

// ask runs survey prompts; tests replace it
var ask = survey.Ask

type newOptions struct {
	interactive bool
	format      string
	dir         string
	force       bool
}

// scaffold is the data rendered into a description template
type scaffold struct {
	Name        string
	Docs        string
	StateType   string
	Constructor string
	Messages    []scaffoldMessage
	Event       string
}

type scaffoldMessage struct {
	Name     string
	Selector string
	Mutates  bool
	Returns  string
}

// validateContractName checks that name can be used as a contract name
func validateContractName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 64 {
		return fmt.Errorf("contract name must be 1-64 characters")
	}
	if !typeinfo.IsIdentifier(name) {
		return fmt.Errorf("contract name must start with a letter or underscore and contain only letters, digits and underscores")
	}
	return nil
}

// NewNewCommand creates the new command
func NewNewCommand(s *session) *cobra.Command {
	opts := &newOptions{}

	cmd := &cobra.Command{
		Use:   "new [ContractName]",
		Short: "Create a contract description scaffold",
		Long: `Create a contract description with a constructor, a mutating message,
a read-only message and an event. Selectors are derived with the configured
hash scheme and written out, so the scaffold builds as is.

Examples:
  contractabi new Flipper
  contractabi new Token --format hcl -d contracts
  contractabi new --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runNew(cmd, s, opts, name)
		},
	}

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for the contract layout")
	cmd.Flags().StringVar(&opts.format, "format", "yaml", "Description format: yaml or hcl")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Directory to write the description to")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing file")

	return cmd
}

func runNew(cmd *cobra.Command, s *session, opts *newOptions, name string) error {
	hash := s.cfg.SelectorHash()

	answers := newAnswers{
		Name:      name,
		Format:    opts.format,
		Docs:      "",
		StateType: "bool",
		Mutating:  "flip",
		ReadOnly:  "get",
		Event:     true,
	}
	if opts.interactive {
		if err := promptNew(&answers); err != nil {
			return err
		}
	}
	if answers.Name == "" {
		return fmt.Errorf("contract name is required (pass it as an argument or use --interactive)")
	}
	if err := validateContractName(answers.Name); err != nil {
		return err
	}
	answers.Name = strings.TrimSpace(answers.Name)

	sc, err := answers.scaffold()
	if err != nil {
		return err
	}

	tmpl, ext := "contract.yml.tmpl", ".yml"
	switch answers.Format {
	case "yaml":
	case "hcl":
		tmpl, ext = "contract.hcl.tmpl", ".hcl"
	default:
		return fmt.Errorf("unknown format %q (want yaml or hcl)", answers.Format)
	}

	data, err := sc.render(tmpl, ext, hash, s)
	if err != nil {
		var list cerrors.ErrorList
		if errors.As(err, &list) {
			fmt.Fprint(cmd.ErrOrStderr(), ui.BuildError(sc.Name+ext, list, s.noColor))
			return &reportedError{msg: "scaffold does not compile"}
		}
		return err
	}

	path := filepath.Join(opts.dir, snakeCase(sc.Name)+ext)
	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(opts.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", opts.dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.log.Debug("wrote scaffold", zap.String("path", path), zap.String("hash", string(hash)))

	out := cmd.OutOrStdout()
	ui.WriteSuccess(out, "Created "+path, s.noColor)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next:")
	fmt.Fprintf(out, "  contractabi build %s\n", path)
	return nil
}

// newAnswers holds the scaffold choices, filled from flags or prompts
type newAnswers struct {
	Name      string
	Format    string
	Docs      string
	StateType string
	Mutating  string
	ReadOnly  string
	Event     bool
}

func promptNew(a *newAnswers) error {
	var qs []*survey.Question
	if a.Name == "" {
		qs = append(qs, &survey.Question{
			Name:   "Name",
			Prompt: &survey.Input{Message: "Contract name:"},
			Validate: survey.ComposeValidators(survey.Required, func(v interface{}) error {
				s, _ := v.(string)
				return validateContractName(s)
			}),
		})
	}
	qs = append(qs,
		&survey.Question{
			Name:   "Format",
			Prompt: &survey.Select{Message: "Description format:", Options: []string{"yaml", "hcl"}, Default: a.Format},
		},
		&survey.Question{
			Name:   "Docs",
			Prompt: &survey.Input{Message: "One-line description:"},
		},
		&survey.Question{
			Name:     "StateType",
			Prompt:   &survey.Input{Message: "State type:", Default: a.StateType},
			Validate: survey.Required,
		},
		&survey.Question{
			Name:   "Mutating",
			Prompt: &survey.Input{Message: "Mutating messages (comma separated):", Default: a.Mutating},
		},
		&survey.Question{
			Name:   "ReadOnly",
			Prompt: &survey.Input{Message: "Read-only messages (comma separated):", Default: a.ReadOnly},
		},
		&survey.Question{
			Name:   "Event",
			Prompt: &survey.Confirm{Message: "Emit an event on change?", Default: a.Event},
		},
	)
	return ask(qs, a)
}

// scaffold checks the answers and lays out the entries. Selectors are
// filled in by render.
func (a newAnswers) scaffold() (*scaffold, error) {
	sc := &scaffold{
		Name:      a.Name,
		Docs:      a.Docs,
		StateType: strings.TrimSpace(a.StateType),
	}
	if sc.Docs == "" {
		sc.Docs = "The " + a.Name + " contract."
	}
	if sc.StateType == "" {
		sc.StateType = "bool"
	}

	seen := map[string]bool{"new": true}
	add := func(list string, mutates bool) error {
		for _, name := range splitList(list) {
			if !typeinfo.IsIdentifier(name) {
				return fmt.Errorf("invalid message name %q", name)
			}
			if seen[name] {
				return fmt.Errorf("duplicate entry name %q", name)
			}
			seen[name] = true
			m := scaffoldMessage{Name: name, Mutates: mutates}
			if !mutates {
				m.Returns = sc.StateType
			}
			sc.Messages = append(sc.Messages, m)
		}
		return nil
	}
	if err := add(a.Mutating, true); err != nil {
		return nil, err
	}
	if err := add(a.ReadOnly, false); err != nil {
		return nil, err
	}
	if len(sc.Messages) == 0 {
		return nil, fmt.Errorf("a contract needs at least one message")
	}
	if a.Event {
		sc.Event = "Changed"
	}
	return sc, nil
}

// render compiles the scaffold with derived selectors, then renders it
// again with those selectors written out. A scaffold that does not compile
// returns the compiler's errors.ErrorList.
func (sc *scaffold) render(tmpl, ext string, hash abi.SelectorHash, s *session) ([]byte, error) {
	var buf bytes.Buffer
	if err := scaffoldTemplates.ExecuteTemplate(&buf, tmpl, sc); err != nil {
		return nil, fmt.Errorf("failed to render scaffold: %w", err)
	}

	result, err := compiler.CompileSource(sc.Name+ext, buf.Bytes(), compiler.Options{
		DeriveSelectors: true,
		SelectorHash:    hash,
		Logger:          s.log,
	})
	if err != nil {
		return nil, err
	}

	sc.Constructor = result.Spec.Constructors()[0].Selector().Hex()
	selectors := make(map[string]string)
	for _, m := range result.Spec.Messages() {
		selectors[m.Name()] = m.Selector().Hex()
	}
	for i := range sc.Messages {
		sc.Messages[i].Selector = selectors[sc.Messages[i].Name]
	}

	buf.Reset()
	if err := scaffoldTemplates.ExecuteTemplate(&buf, tmpl, sc); err != nil {
		return nil, fmt.Errorf("failed to render scaffold: %w", err)
	}
	return buf.Bytes(), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// snakeCase turns "MyToken" into "my_token"
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) && runes[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

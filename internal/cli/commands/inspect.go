package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/cli/ui"
	"github.com/conduit-lang/contractabi/pkg/abi"
	"github.com/conduit-lang/contractabi/runtime/metadata"
)

type inspectOptions struct {
	format string
	types  bool
}

// NewInspectCommand creates the inspect command
func NewInspectCommand(s *session) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <manifest> [name]",
		Short: "Show the contents of a manifest",
		Long: `Show the contract in a manifest, or a single entry of it.

name is looked up as a message, constructor, event, selector and finally
as a type. Types show the messages that use them and what they contain.`,
		Example: `  # Contract overview
  contractabi inspect erc20.abi.json

  # A message, by name or selector
  contractabi inspect erc20.abi.json transfer
  contractabi inspect erc20.abi.json 0x84a15da1

  # Which messages use a type
  contractabi inspect erc20.abi.json Balance

  # The registry type table
  contractabi inspect erc20.abi.json --types

  # JSON for scripting
  contractabi inspect erc20.abi.json transfer --format json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "table" && opts.format != "json" {
				return fmt.Errorf("unknown format %q (want table or json)", opts.format)
			}
			reg, err := loadManifest(args[0], s.log)
			if err != nil {
				return err
			}
			in := &inspector{reg: reg, out: cmd.OutOrStdout(), json: opts.format == "json", noColor: s.noColor}
			switch {
			case len(args) == 2:
				if err := in.entry(args[1]); err != nil {
					if errors.Is(err, metadata.ErrNotFound) {
						fmt.Fprint(cmd.ErrOrStderr(), ui.NotFoundError("entry", args[1], in.suggest(args[1]), s.noColor))
						return &reportedError{msg: err.Error()}
					}
					return err
				}
				return nil
			case opts.types:
				return in.typeTable()
			default:
				return in.contract()
			}
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&opts.types, "types", false, "List the registry type table")

	return cmd
}

// loadManifest reads a plain or gzip-compressed manifest
func loadManifest(path string, log *zap.Logger) (*metadata.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	reg := metadata.New()
	if err := reg.Load(data); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	log.Debug("loaded manifest", zap.String("path", path), zap.String("fingerprint", reg.Fingerprint()))
	return reg, nil
}

type inspector struct {
	reg     *metadata.Registry
	out     io.Writer
	json    bool
	noColor bool
}

func (in *inspector) writeJSON(v interface{}) error {
	enc := json.NewEncoder(in.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (in *inspector) contract() error {
	c, err := in.reg.Contract()
	if err != nil {
		return err
	}
	if in.json {
		return in.writeJSON(c)
	}

	ui.Header(in.out, c.Name, in.noColor)
	kv := ui.NewKeyValueTable(in.out, in.noColor)
	if c.Source != nil {
		kv.AddRow("source", c.Source.File)
		kv.AddRow("language", c.Source.Language)
		kv.AddRow("compiler", c.Source.Compiler)
		kv.AddRow("hash", c.Source.Hash)
	}
	kv.AddRow("fingerprint", in.reg.Fingerprint())
	kv.AddRow("strings", fmt.Sprint(len(in.reg.Strings())))
	kv.AddRow("types", fmt.Sprint(len(in.reg.Types())))
	kv.Render()
	fmt.Fprintln(in.out)

	docs := ui.NewSection(in.out, "Docs", in.noColor)
	for _, d := range c.Docs {
		docs.AddLine(d)
	}
	docs.Render()

	ctors := ui.NewTable(in.out, []string{"SELECTOR", "CONSTRUCTOR", "ARGS"}, &ui.TableOptions{NoColor: in.noColor})
	for _, ctor := range c.Constructors {
		ctors.AddRow(ctor.Selector.Hex(), ctor.Name, formatArgs(ctor.Args))
	}
	ctors.Render()
	fmt.Fprintln(in.out)

	msgs := ui.NewTable(in.out, []string{"SELECTOR", "MESSAGE", "MUTATES", "ARGS", "RETURNS"}, &ui.TableOptions{NoColor: in.noColor})
	for _, m := range c.Messages {
		msgs.AddRow(m.Selector.Hex(), m.Name, fmt.Sprint(m.Mutates), formatArgs(m.Args), formatReturns(m.Returns))
	}
	msgs.Render()

	if len(c.Events) > 0 {
		fmt.Fprintln(in.out)
		events := ui.NewTable(in.out, []string{"EVENT", "FIELDS"}, &ui.TableOptions{NoColor: in.noColor})
		for _, ev := range c.Events {
			events.AddRow(ev.Name, formatEventArgs(ev.Args))
		}
		events.Render()
	}
	return nil
}

func (in *inspector) typeTable() error {
	types := in.reg.Types()
	if in.json {
		return in.writeJSON(types)
	}
	t := ui.NewTable(in.out, []string{"ID", "KIND", "TYPE"}, &ui.TableOptions{NoColor: in.noColor})
	for _, te := range types {
		t.AddRow(fmt.Sprint(te.ID), te.Kind, te.Name)
	}
	t.Render()
	return nil
}

// entry shows the first entry matching name. It returns an error wrapping
// metadata.ErrNotFound when nothing matches.
func (in *inspector) entry(name string) error {
	if m, err := in.reg.Message(name); err == nil {
		return in.message(m)
	}
	if c, err := in.reg.Constructor(name); err == nil {
		return in.constructor(c)
	}
	if ev, err := in.reg.Event(name); err == nil {
		return in.event(ev)
	}
	if sel, err := abi.ParseSelector(name); err == nil {
		if e, err := in.reg.BySelector(sel); err == nil {
			if e.Message != nil {
				return in.message(e.Message)
			}
			return in.constructor(e.Constructor)
		}
	}
	return in.typeUsage(name)
}

func (in *inspector) message(m *metadata.MessageInfo) error {
	if in.json {
		return in.writeJSON(m)
	}
	kv := ui.NewKeyValueTable(in.out, in.noColor)
	kv.AddRow("message", m.Name)
	kv.AddRow("selector", m.Selector.Hex())
	kv.AddRow("mutates", fmt.Sprint(m.Mutates))
	kv.AddRow("returns", formatReturns(m.Returns))
	kv.Render()
	in.args(m.Args)
	in.docs(m.Docs)
	return nil
}

func (in *inspector) constructor(c *metadata.ConstructorInfo) error {
	if in.json {
		return in.writeJSON(c)
	}
	kv := ui.NewKeyValueTable(in.out, in.noColor)
	kv.AddRow("constructor", c.Name)
	kv.AddRow("selector", c.Selector.Hex())
	kv.Render()
	in.args(c.Args)
	in.docs(c.Docs)
	return nil
}

func (in *inspector) event(ev *metadata.EventInfo) error {
	if in.json {
		return in.writeJSON(ev)
	}
	ui.Header(in.out, "event "+ev.Name, in.noColor)
	t := ui.NewTable(in.out, []string{"FIELD", "TYPE", "INDEXED"}, &ui.TableOptions{NoColor: in.noColor})
	for _, a := range ev.Args {
		t.AddRow(a.Name, a.Type.Display, fmt.Sprint(a.Indexed))
	}
	t.Render()
	in.docs(ev.Docs)
	return nil
}

type typeUsage struct {
	Type     string                    `json:"type"`
	Messages []metadata.MessageInfo    `json:"messages"`
	Contains *metadata.DependencyGraph `json:"contains"`
}

func (in *inspector) typeUsage(name string) error {
	graph, err := in.reg.TypeDependencies(name, metadata.DependencyOptions{Depth: 1})
	if err != nil {
		return err
	}
	usage := typeUsage{Type: name, Messages: in.reg.MessagesByType(name), Contains: graph}
	if usage.Messages == nil {
		usage.Messages = []metadata.MessageInfo{}
	}
	if in.json {
		return in.writeJSON(usage)
	}

	ui.Header(in.out, "type "+name, in.noColor)
	contains := ui.NewSection(in.out, "Contains", in.noColor)
	for _, e := range graph.Edges {
		if n, ok := graph.Nodes[e.To]; ok {
			contains.AddLine(e.Via + ": " + n.Name)
		}
	}
	contains.Render()

	used := ui.NewSection(in.out, "Used by", in.noColor)
	for _, m := range usage.Messages {
		used.AddLine(m.Selector.Hex() + " " + m.Name)
	}
	used.Render()
	return nil
}

func (in *inspector) args(args []metadata.ArgInfo) {
	if len(args) == 0 {
		return
	}
	fmt.Fprintln(in.out)
	t := ui.NewTable(in.out, []string{"ARG", "TYPE"}, &ui.TableOptions{NoColor: in.noColor})
	for _, a := range args {
		t.AddRow(a.Name, a.Type.Display)
	}
	t.Render()
}

func (in *inspector) docs(docs []string) {
	if len(docs) == 0 {
		return
	}
	fmt.Fprintln(in.out)
	s := ui.NewSection(in.out, "Docs", in.noColor)
	for _, d := range docs {
		s.AddLine(d)
	}
	s.Render()
}

// suggest lists entry and type names close to name
func (in *inspector) suggest(name string) []string {
	var candidates []string
	for _, m := range in.reg.Messages() {
		candidates = append(candidates, m.Name)
	}
	for _, c := range in.reg.Constructors() {
		candidates = append(candidates, c.Name)
	}
	for _, ev := range in.reg.Events() {
		candidates = append(candidates, ev.Name)
	}
	for _, t := range in.reg.Types() {
		candidates = append(candidates, t.Name)
	}
	return ui.FindSimilar(name, candidates, nil)
}

func formatArgs(args []metadata.ArgInfo) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Name + ": " + a.Type.Display
	}
	return strings.Join(parts, ", ")
}

func formatEventArgs(args []metadata.EventArgInfo) string {
	parts := make([]string, len(args))
	for i, a := range args {
		p := a.Name + ": " + a.Type.Display
		if a.Indexed {
			p += " (indexed)"
		}
		parts[i] = p
	}
	return strings.Join(parts, ", ")
}

func formatReturns(ret *metadata.TypeRef) string {
	if ret == nil {
		return "-"
	}
	return ret.Display
}

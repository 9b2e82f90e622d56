package docs

import (
	"strings"

	"github.com/conduit-lang/contractabi/runtime/metadata"
)

// Extractor turns a loaded manifest into the documentation model
type Extractor struct {
	examples *ExampleGenerator
}

// NewExtractor creates a new documentation extractor
func NewExtractor() *Extractor {
	return &Extractor{examples: NewExampleGenerator()}
}

// Extract extracts documentation from a loaded registry
func (e *Extractor) Extract(reg *metadata.Registry) (*Documentation, error) {
	c, err := reg.Contract()
	if err != nil {
		return nil, err
	}

	doc := &Documentation{
		Name:        c.Name,
		Title:       c.Name,
		Description: cleanDocumentation(c.Docs),
		Fingerprint: reg.Fingerprint(),
	}
	if c.Source != nil {
		doc.SourceHash = c.Source.Hash
		doc.Language = c.Source.Language
		doc.Compiler = c.Source.Compiler
	}

	for i := range c.Constructors {
		doc.Constructors = append(doc.Constructors, e.extractConstructor(&c.Constructors[i]))
	}
	for i := range c.Messages {
		doc.Messages = append(doc.Messages, e.extractMessage(&c.Messages[i]))
	}
	for i := range c.Events {
		doc.Events = append(doc.Events, e.extractEvent(&c.Events[i]))
	}
	for _, t := range reg.Types() {
		doc.Types = append(doc.Types, &TypeDoc{ID: uint32(t.ID), Name: t.Name, Kind: t.Kind})
	}
	return doc, nil
}

func (e *Extractor) extractConstructor(ctor *metadata.ConstructorInfo) *CallDoc {
	return &CallDoc{
		Kind:        string(metadata.KindConstructor),
		Name:        ctor.Name,
		Selector:    ctor.Selector.Hex(),
		Mutates:     true,
		Args:        e.extractArgs(ctor.Args),
		Description: cleanDocumentation(ctor.Docs),
		Example:     e.argsExample(ctor.Args),
	}
}

func (e *Extractor) extractMessage(msg *metadata.MessageInfo) *CallDoc {
	call := &CallDoc{
		Kind:        string(metadata.KindMessage),
		Name:        msg.Name,
		Selector:    msg.Selector.Hex(),
		Mutates:     msg.Mutates,
		Args:        e.extractArgs(msg.Args),
		Description: cleanDocumentation(msg.Docs),
		Example:     e.argsExample(msg.Args),
	}
	if msg.Returns != nil {
		call.Returns = msg.Returns.Display
		call.ReturnExample = e.examples.GenerateForName(msg.Returns.Type)
	}
	return call
}

func (e *Extractor) extractEvent(ev *metadata.EventInfo) *EventDoc {
	out := &EventDoc{Name: ev.Name, Description: cleanDocumentation(ev.Docs)}
	for _, a := range ev.Args {
		out.Args = append(out.Args, &ArgDoc{
			Name:        a.Name,
			Type:        a.Type.Display,
			Indexed:     a.Indexed,
			Description: cleanDocumentation(a.Docs),
		})
	}
	return out
}

func (e *Extractor) extractArgs(args []metadata.ArgInfo) []*ArgDoc {
	out := make([]*ArgDoc, 0, len(args))
	for _, a := range args {
		out = append(out, &ArgDoc{Name: a.Name, Type: a.Type.Display})
	}
	return out
}

func (e *Extractor) argsExample(args []metadata.ArgInfo) map[string]interface{} {
	example := make(map[string]interface{}, len(args))
	for _, a := range args {
		example[a.Name] = e.examples.GenerateForName(a.Type.Type)
	}
	return example
}

// cleanDocumentation joins doc lines into paragraphs. Empty lines separate
// paragraphs.
func cleanDocumentation(lines []string) string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			flush()
			continue
		}
		current = append(current, l)
	}
	flush()
	return strings.Join(paragraphs, "\n\n")
}

package docs

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// MarkdownGenerator generates a single Markdown reference
type MarkdownGenerator struct {
	config *Config
}

// NewMarkdownGenerator creates a new Markdown generator
func NewMarkdownGenerator(config *Config) *MarkdownGenerator {
	return &MarkdownGenerator{
		config: config,
	}
}

// Render writes the reference for doc
func (g *MarkdownGenerator) Render(doc *Documentation, w io.Writer) error {
	var buf strings.Builder

	// Header
	title := doc.Title
	if doc.Version != "" {
		title += " " + doc.Version
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	if doc.Description != "" {
		buf.WriteString(fmt.Sprintf("%s\n\n", doc.Description))
	}

	buf.WriteString(fmt.Sprintf("- **Fingerprint:** `%s`\n", doc.Fingerprint))
	if doc.SourceHash != "" {
		buf.WriteString(fmt.Sprintf("- **Source hash:** `%s`\n", doc.SourceHash))
	}
	if doc.Language != "" {
		buf.WriteString(fmt.Sprintf("- **Language:** %s\n", doc.Language))
	}
	if doc.Compiler != "" {
		buf.WriteString(fmt.Sprintf("- **Compiler:** %s\n", doc.Compiler))
	}
	buf.WriteString("\n")

	// Table of contents
	buf.WriteString("## Contents\n\n")
	for _, section := range []struct {
		title string
		n     int
	}{
		{"Constructors", len(doc.Constructors)},
		{"Messages", len(doc.Messages)},
		{"Events", len(doc.Events)},
		{"Types", len(doc.Types)},
	} {
		if section.n > 0 {
			buf.WriteString(fmt.Sprintf("- [%s](#%s) (%d)\n", section.title, anchor(section.title), section.n))
		}
	}
	buf.WriteString("\n")

	if len(doc.Constructors) > 0 {
		buf.WriteString("## Constructors\n\n")
		g.writeSelectorTable(&buf, doc.Constructors)
		for _, c := range doc.Constructors {
			g.writeCall(&buf, c)
		}
	}

	if len(doc.Messages) > 0 {
		buf.WriteString("## Messages\n\n")
		g.writeSelectorTable(&buf, doc.Messages)
		for _, m := range doc.Messages {
			g.writeCall(&buf, m)
		}
	}

	if len(doc.Events) > 0 {
		buf.WriteString("## Events\n\n")
		for _, ev := range doc.Events {
			buf.WriteString(fmt.Sprintf("### %s\n\n", ev.Name))
			if ev.Description != "" {
				buf.WriteString(fmt.Sprintf("%s\n\n", ev.Description))
			}
			if len(ev.Args) == 0 {
				buf.WriteString("No fields.\n\n")
				continue
			}
			buf.WriteString("| Name | Type | Indexed | Description |\n")
			buf.WriteString("|------|------|---------|-------------|\n")
			for _, a := range ev.Args {
				indexed := "No"
				if a.Indexed {
					indexed = "Yes"
				}
				buf.WriteString(fmt.Sprintf("| `%s` | `%s` | %s | %s |\n", a.Name, a.Type, indexed, orDash(a.Description)))
			}
			buf.WriteString("\n")
		}
	}

	if len(doc.Types) > 0 {
		buf.WriteString("## Types\n\n")
		buf.WriteString("| ID | Name | Kind |\n")
		buf.WriteString("|----|------|------|\n")
		for _, t := range doc.Types {
			buf.WriteString(fmt.Sprintf("| %d | `%s` | %s |\n", t.ID, t.Name, t.Kind))
		}
		buf.WriteString("\n")
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

func (g *MarkdownGenerator) writeSelectorTable(buf *strings.Builder, calls []*CallDoc) {
	buf.WriteString("| Name | Selector | Mutates | Returns |\n")
	buf.WriteString("|------|----------|---------|---------|\n")
	for _, c := range calls {
		mutates := "No"
		if c.Mutates {
			mutates = "Yes"
		}
		returns := "-"
		if c.Returns != "" {
			returns = "`" + c.Returns + "`"
		}
		buf.WriteString(fmt.Sprintf("| [%s](#%s) | `%s` | %s | %s |\n", c.Name, anchor(c.Name), c.Selector, mutates, returns))
	}
	buf.WriteString("\n")
}

// writeCall writes a single constructor or message
func (g *MarkdownGenerator) writeCall(buf *strings.Builder, c *CallDoc) {
	buf.WriteString(fmt.Sprintf("### %s\n\n", c.Name))
	if c.Description != "" {
		buf.WriteString(fmt.Sprintf("%s\n\n", c.Description))
	}

	buf.WriteString(fmt.Sprintf("**Selector:** `%s`\n\n", c.Selector))

	if len(c.Args) > 0 {
		buf.WriteString("| Argument | Type |\n")
		buf.WriteString("|----------|------|\n")
		for _, a := range c.Args {
			buf.WriteString(fmt.Sprintf("| `%s` | `%s` |\n", a.Name, a.Type))
		}
		buf.WriteString("\n")

		buf.WriteString("**Example arguments:**\n\n")
		buf.WriteString("```json\n")
		exampleJSON, _ := json.MarshalIndent(c.Example, "", "  ")
		buf.WriteString(string(exampleJSON))
		buf.WriteString("\n```\n\n")
	}

	if c.Returns != "" {
		buf.WriteString(fmt.Sprintf("**Returns:** `%s`\n\n", c.Returns))
	}

	if c.Kind == "message" {
		buf.WriteString("```http\n")
		buf.WriteString(fmt.Sprintf("GET %s/selectors/%s\n", g.baseURL(), c.Selector))
		buf.WriteString("```\n\n")
	}
}

func (g *MarkdownGenerator) baseURL() string {
	if g.config != nil && g.config.BaseURL != "" {
		return strings.TrimRight(g.config.BaseURL, "/")
	}
	return "http://localhost:8080"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

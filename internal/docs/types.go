// Package docs generates reference documentation for a contract manifest.
// It supports Markdown, a single page HTML reference, and an OpenAPI 3.0
// description of the explorer API serving the manifest.
package docs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conduit-lang/contractabi/runtime/metadata"
)

// Format represents a documentation output format
type Format string

const (
	// FormatMarkdown generates a Markdown reference
	FormatMarkdown Format = "markdown"

	// FormatHTML generates a self-contained HTML reference
	FormatHTML Format = "html"

	// FormatOpenAPI generates an OpenAPI 3.0 description of the explorer API
	FormatOpenAPI Format = "openapi"
)

// Formats lists every supported format in generation order
var Formats = []Format{FormatMarkdown, FormatHTML, FormatOpenAPI}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown docs format %q (expected one of %v)", s, Formats)
}

// Extension returns the file extension of the format's output
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return ".openapi.json"
	}
}

// Config holds configuration for documentation generation
type Config struct {
	// Title overrides the contract name in headings
	Title string

	// Version is shown next to the title, e.g. a store version
	Version string

	// OutputDir is the directory generated files are written to
	OutputDir string

	// Formats specifies which formats to generate
	Formats []Format

	// BaseURL is the explorer address used in OpenAPI servers and
	// request examples
	BaseURL string
}

// Documentation is everything the renderers need about one contract
type Documentation struct {
	Name        string
	Title       string
	Version     string
	Description string
	Fingerprint string
	SourceHash  string
	Language    string
	Compiler    string

	Constructors []*CallDoc
	Messages     []*CallDoc
	Events       []*EventDoc
	Types        []*TypeDoc
}

// CallDoc documents a constructor or message
type CallDoc struct {
	// Kind is "constructor" or "message"
	Kind     string
	Name     string
	Selector string
	Mutates  bool
	Args     []*ArgDoc
	// Returns is empty for constructors and unit returning messages
	Returns     string
	Description string
	// Example is a sample argument object keyed by argument name
	Example map[string]interface{}
	// ReturnExample is a sample return value
	ReturnExample interface{}
}

// ArgDoc documents a call or event argument
type ArgDoc struct {
	Name        string
	Type        string
	Indexed     bool
	Description string
}

// EventDoc documents an event
type EventDoc struct {
	Name        string
	Args        []*ArgDoc
	Description string
}

// TypeDoc is one row of the type table
type TypeDoc struct {
	ID   uint32
	Name string
	Kind string
}

// Renderer writes one format
type Renderer interface {
	Render(doc *Documentation, w io.Writer) error
}

// Generator orchestrates documentation generation across formats
type Generator struct {
	config    *Config
	extractor *Extractor
}

// NewGenerator creates a generator. A config without formats generates
// all of them.
func NewGenerator(config *Config) (*Generator, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if len(config.Formats) == 0 {
		config.Formats = Formats
	}
	for _, f := range config.Formats {
		if _, err := ParseFormat(string(f)); err != nil {
			return nil, err
		}
	}
	return &Generator{config: config, extractor: NewExtractor()}, nil
}

// Renderer returns the renderer for format
func (g *Generator) Renderer(format Format) Renderer {
	switch format {
	case FormatMarkdown:
		return NewMarkdownGenerator(g.config)
	case FormatHTML:
		return NewHTMLGenerator(g.config)
	default:
		return NewOpenAPIGenerator(g.config)
	}
}

// Extract builds the documentation model for reg
func (g *Generator) Extract(reg *metadata.Registry) (*Documentation, error) {
	doc, err := g.extractor.Extract(reg)
	if err != nil {
		return nil, err
	}
	if g.config.Title != "" {
		doc.Title = g.config.Title
	}
	doc.Version = g.config.Version
	return doc, nil
}

// Generate writes every configured format for reg into OutputDir and
// returns the written paths in format order.
func (g *Generator) Generate(reg *metadata.Registry) ([]string, error) {
	if containsPathTraversal(g.config.OutputDir) {
		return nil, fmt.Errorf("invalid output directory: path traversal detected")
	}
	doc, err := g.Extract(reg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(g.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := fileBase(doc.Name)
	var written []string
	for _, format := range g.config.Formats {
		path := filepath.Join(g.config.OutputDir, base+format.Extension())
		if err := g.writeFile(path, doc, g.Renderer(format)); err != nil {
			return written, fmt.Errorf("failed to generate %s docs: %w", format, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func (g *Generator) writeFile(path string, doc *Documentation, r Renderer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(doc, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

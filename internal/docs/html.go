package docs

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// HTMLGenerator generates a self-contained single page reference
type HTMLGenerator struct {
	config    *Config
	templates *template.Template
}

// NewHTMLGenerator creates a new HTML generator
func NewHTMLGenerator(config *Config) *HTMLGenerator {
	return &HTMLGenerator{
		config: config,
	}
}

// Render writes the page for doc
func (g *HTMLGenerator) Render(doc *Documentation, w io.Writer) error {
	if err := g.loadTemplates(); err != nil {
		return err
	}
	baseURL := "http://localhost:8080"
	if g.config != nil && g.config.BaseURL != "" {
		baseURL = strings.TrimRight(g.config.BaseURL, "/")
	}
	data := map[string]interface{}{
		"Doc":     doc,
		"BaseURL": baseURL,
		"CSS":     template.CSS(cssContent),
		"JS":      template.JS(jsContent),
	}
	if err := g.templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to execute page template: %w", err)
	}
	return nil
}

// loadTemplates parses the page template once
func (g *HTMLGenerator) loadTemplates() error {
	if g.templates != nil {
		return nil
	}
	funcMap := template.FuncMap{
		"anchor":     anchor,
		"jsonPretty": toJSONPretty,
	}
	tmpl, err := template.New("").Funcs(funcMap).Parse(pageTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse page template: %w", err)
	}
	g.templates = tmpl
	return nil
}

// toJSONPretty returns indented JSON. The result is escaped by the
// template like any other text.
func toJSONPretty(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

const pageTemplate = `{{define "call"}}
<div class="call" id="{{anchor .Name}}" data-search="{{.Name}} {{.Selector}}">
    <div class="call-header">
        <span class="selector">{{.Selector}}</span>
        <h3>{{.Name}}</h3>
        {{if .Mutates}}<span class="badge badge-mut">mutates</span>{{else}}<span class="badge">read-only</span>{{end}}
    </div>
    {{if .Description}}<p>{{.Description}}</p>{{end}}
    {{if .Args}}
    <table>
        <thead><tr><th>Argument</th><th>Type</th></tr></thead>
        <tbody>
        {{range .Args}}<tr><td><code>{{.Name}}</code></td><td><code>{{.Type}}</code></td></tr>{{end}}
        </tbody>
    </table>
    <h4>Example arguments</h4>
    <pre><code>{{jsonPretty .Example}}</code></pre>
    {{end}}
    {{if .Returns}}<p><strong>Returns</strong> <code>{{.Returns}}</code></p>
    <pre><code>{{jsonPretty .ReturnExample}}</code></pre>{{end}}
</div>
{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Doc.Title}} - Contract Reference</title>
    <style>{{.CSS}}</style>
</head>
<body>
    <div class="container">
        <nav class="sidebar">
            <div class="sidebar-header">
                <h2>{{.Doc.Title}}</h2>
                {{if .Doc.Version}}<p class="version">{{.Doc.Version}}</p>{{end}}
            </div>
            <input type="text" id="search" class="search-input" placeholder="Filter by name or selector">
            {{if .Doc.Constructors}}
            <div class="nav-section">
                <h3>Constructors</h3>
                <ul class="nav-list">{{range .Doc.Constructors}}<li><a href="#{{anchor .Name}}">{{.Name}}</a></li>{{end}}</ul>
            </div>
            {{end}}
            {{if .Doc.Messages}}
            <div class="nav-section">
                <h3>Messages</h3>
                <ul class="nav-list">{{range .Doc.Messages}}<li><a href="#{{anchor .Name}}">{{.Name}}</a></li>{{end}}</ul>
            </div>
            {{end}}
            {{if .Doc.Events}}
            <div class="nav-section">
                <h3>Events</h3>
                <ul class="nav-list">{{range .Doc.Events}}<li><a href="#event-{{anchor .Name}}">{{.Name}}</a></li>{{end}}</ul>
            </div>
            {{end}}
        </nav>
        <main class="content">
            <div class="page-header">
                <h1>{{.Doc.Title}}</h1>
                {{if .Doc.Description}}<p class="description">{{.Doc.Description}}</p>{{end}}
                <dl class="facts">
                    <dt>Fingerprint</dt><dd><code>{{.Doc.Fingerprint}}</code></dd>
                    {{if .Doc.SourceHash}}<dt>Source hash</dt><dd><code>{{.Doc.SourceHash}}</code></dd>{{end}}
                    {{if .Doc.Language}}<dt>Language</dt><dd>{{.Doc.Language}}</dd>{{end}}
                    {{if .Doc.Compiler}}<dt>Compiler</dt><dd>{{.Doc.Compiler}}</dd>{{end}}
                    <dt>Explorer</dt><dd><code>{{.BaseURL}}</code></dd>
                </dl>
            </div>

            {{if .Doc.Constructors}}
            <div class="section">
                <h2>Constructors</h2>
                {{range .Doc.Constructors}}{{template "call" .}}{{end}}
            </div>
            {{end}}

            {{if .Doc.Messages}}
            <div class="section">
                <h2>Messages</h2>
                {{range .Doc.Messages}}{{template "call" .}}{{end}}
            </div>
            {{end}}

            {{if .Doc.Events}}
            <div class="section">
                <h2>Events</h2>
                {{range .Doc.Events}}
                <div class="call" id="event-{{anchor .Name}}" data-search="{{.Name}}">
                    <div class="call-header"><h3>{{.Name}}</h3></div>
                    {{if .Description}}<p>{{.Description}}</p>{{end}}
                    {{if .Args}}
                    <table>
                        <thead><tr><th>Field</th><th>Type</th><th>Indexed</th></tr></thead>
                        <tbody>
                        {{range .Args}}<tr><td><code>{{.Name}}</code></td><td><code>{{.Type}}</code></td><td>{{if .Indexed}}Yes{{else}}No{{end}}</td></tr>{{end}}
                        </tbody>
                    </table>
                    {{end}}
                </div>
                {{end}}
            </div>
            {{end}}

            {{if .Doc.Types}}
            <div class="section">
                <h2>Types</h2>
                <table>
                    <thead><tr><th>ID</th><th>Name</th><th>Kind</th></tr></thead>
                    <tbody>
                    {{range .Doc.Types}}<tr><td>{{.ID}}</td><td><code>{{.Name}}</code></td><td>{{.Kind}}</td></tr>{{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </main>
    </div>
    <script>{{.JS}}</script>
</body>
</html>
{{end}}`

const cssContent = `
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; line-height: 1.6; color: #333; background: #f5f5f5; }
.container { display: flex; min-height: 100vh; }
.sidebar { width: 260px; background: #2c3e50; color: white; padding: 20px; position: fixed; height: 100vh; overflow-y: auto; }
.sidebar-header h2 { margin-bottom: 5px; }
.version { color: #95a5a6; font-size: 0.9em; }
.nav-section { margin-top: 20px; }
.nav-section h3 { font-size: 0.9em; text-transform: uppercase; color: #95a5a6; margin-bottom: 10px; }
.nav-list { list-style: none; }
.nav-list a { color: white; text-decoration: none; display: block; padding: 4px 10px; border-radius: 4px; }
.nav-list a:hover { background: #34495e; }
.search-input { width: 100%; margin-top: 15px; padding: 8px; border: none; border-radius: 4px; }
.content { margin-left: 260px; padding: 40px; flex: 1; max-width: 1100px; }
.page-header { background: white; padding: 30px; border-radius: 8px; margin-bottom: 30px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.description { color: #7f8c8d; margin-top: 10px; }
.facts { display: grid; grid-template-columns: max-content 1fr; gap: 4px 16px; margin-top: 16px; font-size: 0.9em; }
.facts dt { font-weight: 600; }
.section { background: white; padding: 30px; border-radius: 8px; margin-bottom: 30px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.section h2 { margin-bottom: 20px; color: #2c3e50; }
.call { border: 1px solid #e0e0e0; border-radius: 6px; padding: 20px; margin-bottom: 20px; }
.call-header { display: flex; align-items: center; gap: 10px; margin-bottom: 10px; }
.selector { font-family: monospace; background: #ecf0f1; padding: 2px 8px; border-radius: 4px; }
.badge { font-size: 0.75em; padding: 2px 8px; border-radius: 10px; background: #27ae60; color: white; }
.badge-mut { background: #e67e22; }
table { width: 100%; border-collapse: collapse; margin: 10px 0; }
th, td { padding: 8px 12px; text-align: left; border-bottom: 1px solid #e0e0e0; }
th { background: #f8f9fa; font-weight: 600; }
code { background: #f8f9fa; padding: 2px 6px; border-radius: 3px; font-family: monospace; }
pre { background: #2c3e50; color: #ecf0f1; padding: 15px; border-radius: 6px; overflow-x: auto; margin: 10px 0; }
pre code { background: none; padding: 0; color: inherit; }
.hidden { display: none; }
`

const jsContent = `
document.getElementById('search').addEventListener('input', function (e) {
    var q = e.target.value.toLowerCase();
    document.querySelectorAll('[data-search]').forEach(function (el) {
        var text = el.getAttribute('data-search').toLowerCase();
        el.classList.toggle('hidden', q !== '' && text.indexOf(q) === -1);
    });
});
`

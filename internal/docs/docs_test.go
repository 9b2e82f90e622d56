package docs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conduit-lang/contractabi/internal/compiler"
	"github.com/conduit-lang/contractabi/runtime/metadata"
)

const erc20YAML = `name: Erc20
docs:
  - A fungible token.
  - ""
  - Balances are u128.
types:
  - name: Balance
    alias: u128
  - name: AccountId
    alias: "[u8; 32]"
  - name: erc20::Error
    enum:
      - name: InsufficientBalance
constructors:
  - name: new
    selector: "0x9bae9d5e"
    docs: [Mints the initial supply.]
    args:
      - {name: supply, type: Balance}
messages:
  - name: transfer
    selector: "0x84a15da1"
    mutates: true
    docs: [Moves value to an account.]
    args:
      - {name: to, type: "&AccountId"}
      - {name: value, type: Balance}
      - {name: memo, type: "Vec<u8>"}
    returns: Result<(), erc20::Error>
  - name: total_supply
    selector: "0xdb6375a8"
    mutates: false
    returns: Balance
events:
  - name: Transfer
    docs: [Emitted on every transfer.]
    args:
      - {name: from, type: AccountId, indexed: true}
      - {name: value, type: Balance}
`

func loadErc20(t *testing.T) *metadata.Registry {
	t.Helper()
	result, err := compiler.CompileSource("erc20.yml", []byte(erc20YAML), compiler.Options{})
	if err != nil {
		t.Fatalf("CompileSource failed: %v", err)
	}
	reg := metadata.New()
	if err := reg.LoadProject(result.Project); err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	return reg
}

func TestExtractor_Extract(t *testing.T) {
	doc, err := NewExtractor().Extract(loadErc20(t))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if doc.Name != "Erc20" || doc.Title != "Erc20" {
		t.Errorf("name/title: got %q/%q", doc.Name, doc.Title)
	}
	if !strings.HasPrefix(doc.Description, "A fungible token.") || !strings.HasSuffix(doc.Description, "Balances are u128.") {
		t.Errorf("description: got %q", doc.Description)
	}
	if !strings.HasPrefix(doc.SourceHash, "0x") || doc.Language != "yaml" {
		t.Errorf("source: got %q %q", doc.SourceHash, doc.Language)
	}
	if doc.Fingerprint == "" {
		t.Error("expected a fingerprint")
	}

	if len(doc.Constructors) != 1 || len(doc.Messages) != 2 || len(doc.Events) != 1 {
		t.Fatalf("counts: %d constructors, %d messages, %d events", len(doc.Constructors), len(doc.Messages), len(doc.Events))
	}

	ctor := doc.Constructors[0]
	if ctor.Kind != "constructor" || ctor.Selector != "0x9bae9d5e" || !ctor.Mutates {
		t.Errorf("constructor: %+v", ctor)
	}

	transfer := doc.Messages[0]
	if transfer.Description != "Moves value to an account." {
		t.Errorf("transfer docs: got %q", transfer.Description)
	}
	if transfer.Args[0].Type != "AccountId" {
		t.Errorf("display names win over canonical types: got %q", transfer.Args[0].Type)
	}
	if got := transfer.Example["to"]; got != "0x"+strings.Repeat("00", 32) {
		t.Errorf("to example: got %v", got)
	}
	if got := transfer.Example["value"]; got != "1000000000000" {
		t.Errorf("value example: got %v", got)
	}

	supply := doc.Messages[1]
	if supply.Mutates || supply.Returns != "Balance" {
		t.Errorf("total_supply: %+v", supply)
	}

	event := doc.Events[0]
	if !event.Args[0].Indexed || event.Args[1].Indexed {
		t.Errorf("indexed flags: %+v %+v", event.Args[0], event.Args[1])
	}
	if len(doc.Types) == 0 {
		t.Error("expected a type table")
	}
}

func TestExampleGenerator_GenerateForName(t *testing.T) {
	g := NewExampleGenerator()
	tests := []struct {
		name string
		want string
	}{
		{"bool", `true`},
		{"u32", `42`},
		{"u128", `"1000000000000"`},
		{"str", `"example string"`},
		{"[u8; 4]", `"0x00000000"`},
		{"[u8]", `"0x0102"`},
		{"Vec<u8>", `"0x0102"`},
		{"Vec<bool>", `[true]`},
		{"[u32; 8]", `[42,42,42,42]`},
		{"Option<u16>", `42`},
		{"(bool,u8)", `[true,42]`},
		{"()", `null`},
		{"Result<(),erc20::Error>", `{"Ok":null}`},
		{"&AccountId", `"5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"`},
		{"erc20::Error", `"<erc20::Error>"`},
		{"Vec<", `"<Vec<>"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetEscapeHTML(false)
			if err := enc.Encode(g.GenerateForName(tt.name)); err != nil {
				t.Fatalf("encode: %v", err)
			}
			if got := strings.TrimSpace(buf.String()); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMarkdownGenerator_Render(t *testing.T) {
	doc, err := NewExtractor().Extract(loadErc20(t))
	if err != nil {
		t.Fatal(err)
	}
	doc.Version = "v3"

	var buf bytes.Buffer
	if err := NewMarkdownGenerator(&Config{BaseURL: "https://abi.example.com/"}).Render(doc, &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Erc20 v3\n",
		"A fungible token.",
		"- [Messages](#messages) (2)",
		"| [transfer](#transfer) | `0x84a15da1` | Yes | `Result<(),erc20::Error>` |",
		"| [total_supply](#total_supply) | `0xdb6375a8` | No | `Balance` |",
		"| `to` | `AccountId` |",
		`"value": "1000000000000"`,
		"GET https://abi.example.com/selectors/0xdb6375a8",
		"| `from` | `AccountId` | Yes | - |",
		"## Types",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestHTMLGenerator_Render(t *testing.T) {
	doc, err := NewExtractor().Extract(loadErc20(t))
	if err != nil {
		t.Fatal(err)
	}
	doc.Description = "<script>alert(1)</script>"

	var buf bytes.Buffer
	g := NewHTMLGenerator(&Config{})
	if err := g.Render(doc, &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>Erc20 - Contract Reference</title>",
		`<div class="call" id="transfer" data-search="transfer 0x84a15da1">`,
		`<a href="#event-transfer">Transfer</a>`,
		"http://localhost:8080",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(out, "<script>alert(1)") {
		t.Error("description was not escaped")
	}

	// templates are parsed once and reused
	buf.Reset()
	if err := g.Render(doc, &buf); err != nil {
		t.Fatalf("second Render failed: %v", err)
	}
}

func TestOpenAPIGenerator_CreateSpec(t *testing.T) {
	doc, err := NewExtractor().Extract(loadErc20(t))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := NewOpenAPIGenerator(&Config{BaseURL: "https://abi.example.com"}).Render(doc, &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var spec struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths map[string]map[string]struct {
			Parameters []struct {
				Name   string `json:"name"`
				Schema struct {
					Enum []string `json:"enum"`
				} `json:"schema"`
			} `json:"parameters"`
			Responses map[string]interface{} `json:"responses"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(buf.Bytes(), &spec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if spec.OpenAPI != "3.0.3" || spec.Info.Title != "Erc20 explorer" || spec.Info.Version != doc.Fingerprint {
		t.Errorf("header: %+v", spec)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "https://abi.example.com" {
		t.Errorf("servers: %+v", spec.Servers)
	}

	msg := spec.Paths["/messages/{name}"]["get"]
	if len(msg.Parameters) != 1 || strings.Join(msg.Parameters[0].Schema.Enum, ",") != "transfer,total_supply" {
		t.Errorf("message names: %+v", msg.Parameters)
	}
	sel := spec.Paths["/selectors/{selector}"]["get"]
	if got := strings.Join(sel.Parameters[0].Schema.Enum, ","); got != "0x84a15da1,0xdb6375a8,0x9bae9d5e" {
		t.Errorf("selectors: %s", got)
	}
	if _, ok := spec.Paths["/admin/reload"]["post"].Responses["403"]; !ok {
		t.Error("admin reload should document 403")
	}
}

func TestGenerator_Generate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	g, err := NewGenerator(&Config{OutputDir: dir, Title: "ERC-20 Token"})
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	written, err := g.Generate(loadErc20(t))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := []string{
		filepath.Join(dir, "erc20.md"),
		filepath.Join(dir, "erc20.html"),
		filepath.Join(dir, "erc20.openapi.json"),
	}
	if strings.Join(written, ",") != strings.Join(want, ",") {
		t.Fatalf("written: got %v, want %v", written, want)
	}
	md, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(md), "# ERC-20 Token\n") {
		t.Errorf("title override not applied: %q", strings.SplitN(string(md), "\n", 2)[0])
	}
}

func TestNewGenerator_Errors(t *testing.T) {
	if _, err := NewGenerator(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewGenerator(&Config{Formats: []Format{"pdf"}}); err == nil {
		t.Error("expected error for unknown format")
	}

	g, err := NewGenerator(&Config{OutputDir: "../outside"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(loadErc20(t)); err == nil || !strings.Contains(err.Error(), "path traversal") {
		t.Errorf("expected path traversal error, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"markdown", "HTML", "openapi"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}

func TestAnchor(t *testing.T) {
	tests := map[string]string{
		"Messages":     "messages",
		"total_supply": "total_supply",
		"Flip It!":     "flip-it",
	}
	for in, want := range tests {
		if got := anchor(in); got != want {
			t.Errorf("anchor(%q) = %q, want %q", in, got, want)
		}
	}
}

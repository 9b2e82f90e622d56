package metadata

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	"github.com/conduit-lang/contractabi/internal/compiler/errors"
	"github.com/conduit-lang/contractabi/internal/compiler/loader"
	"github.com/conduit-lang/contractabi/pkg/abi"
)

const flipperYAML = `name: Flipper
constructors:
  - name: new
    selector: "0x9bae9d5e"
    args:
      - name: init_value
        type: bool
messages:
  - name: flip
    selector: "0x633aa551"
    mutates: true
  - name: get
    selector: "0x2f865bd9"
    mutates: false
    returns: bool
`

func parseYAML(t *testing.T, src string) *ast.Contract {
	t.Helper()
	c, errs := loader.Load("test.yaml", []byte(src))
	if errs.HasErrors() {
		t.Fatalf("Load() errors:\n%s", errs.Error())
	}
	return c
}

func extract(t *testing.T, src string, opts Options) (abi.ContractSpec, errors.ErrorList) {
	t.Helper()
	return NewExtractor(opts).Extract(parseYAML(t, src))
}

func codes(errs errors.ErrorList) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = string(e.Code)
	}
	return out
}

func TestExtractor_Flipper(t *testing.T) {
	spec, errs := extract(t, flipperYAML, Options{})
	if len(errs) > 0 {
		t.Fatalf("Extract() errors = %v", codes(errs))
	}

	if spec.Name() != "Flipper" {
		t.Errorf("Name = %q, want Flipper", spec.Name())
	}
	ctors := spec.Constructors()
	if len(ctors) != 1 || ctors[0].Selector().Hex() != "0x9bae9d5e" {
		t.Fatalf("Unexpected constructors %+v", ctors)
	}
	msgs := spec.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Messages count = %d, want 2", len(msgs))
	}
	if !msgs[0].Mutates() || msgs[1].Mutates() {
		t.Error("Mutability not carried over")
	}
	if _, ok := msgs[0].ReturnType().Type(); ok {
		t.Error("flip should not return a value")
	}
	ret, ok := msgs[1].ReturnType().Type()
	if !ok || ret.Type().String() != "bool" || ret.HasDisplayName() {
		t.Errorf("get return type = %v", ret)
	}

	project, err := abi.NewProject(spec)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	want := []string{"Flipper", "new", "init_value", "flip", "get"}
	if got := project.Registry.Strings(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Strings = %v, want %v", got, want)
	}
	if project.Registry.TypeCount() != 1 {
		t.Errorf("TypeCount = %d, want 1", project.Registry.TypeCount())
	}
}

func TestExtractor_TypesAndDisplayNames(t *testing.T) {
	src := `name: Erc20
types:
  - name: Balance
    alias: u128
  - name: Amount
    alias: Balance
  - name: AccountId
    alias: "[u8; 32]"
  - name: erc20::Error
    enum:
      - name: InsufficientBalance
      - name: Custom
        fields: [{type: String}]
  - name: Node
    struct:
      - {name: value, type: u32}
      - {name: next, type: Option<Box<Node>>}
constructors:
  - name: new
    selector: "0x9bae9d5e"
    args:
      - {name: supply, type: Balance}
messages:
  - name: transfer
    selector: "0x84a15da1"
    mutates: true
    args:
      - {name: to, type: "&AccountId"}
      - {name: value, type: Amount}
      - {name: memo, type: "Vec<u8>", display_name: erc20::Memo}
    returns: Result<(), erc20::Error>
  - name: head
    selector: "0x00000001"
    mutates: false
    returns: Node
`
	spec, errs := extract(t, src, Options{})
	if len(errs) > 0 {
		t.Fatalf("Extract() errors = %v\n%s", codes(errs), errs.Error())
	}

	args := spec.Messages()[0].Args()
	tests := []struct {
		arg     int
		key     string
		display string
	}{
		{0, "[u8; 32]", "AccountId"},
		{1, "u128", "Amount"},
		{2, "[u8]", "erc20::Memo"},
	}
	for _, tt := range tests {
		ts := args[tt.arg].Type()
		if got := ts.Type().String(); got != tt.key {
			t.Errorf("arg %d type = %q, want %q", tt.arg, got, tt.key)
		}
		if got := ts.DisplayName().String(); got != tt.display {
			t.Errorf("arg %d display name = %q, want %q", tt.arg, got, tt.display)
		}
	}

	ret, _ := spec.Messages()[0].ReturnType().Type()
	if got := ret.Type().String(); got != "Result<(),erc20::Error>" {
		t.Errorf("return type = %q", got)
	}
	if ret.HasDisplayName() {
		t.Error("generic return type should not carry a display name")
	}

	supply := spec.Constructors()[0].Args()[0].Type()
	if supply.DisplayName().String() != "Balance" {
		t.Errorf("alias display name = %q, want Balance", supply.DisplayName())
	}

	// Recursive struct compacts without looping
	if _, err := abi.NewProject(spec); err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
}

func TestExtractor_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want errors.ErrorCode
	}{
		{
			name: "unknown type",
			src:  "name: C\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages:\n  - {name: m, selector: '0x00000002', mutates: true, returns: Balanse}\n",
			want: errors.ErrUnknownType,
		},
		{
			name: "duplicate type",
			src:  "name: C\ntypes:\n  - {name: T, alias: u8}\n  - {name: T, alias: u16}\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrDuplicateType,
		},
		{
			name: "reserved type name",
			src:  "name: C\ntypes:\n  - {name: u128, alias: u64}\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrReservedTypeName,
		},
		{
			name: "generic arity",
			src:  "name: C\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages:\n  - {name: m, selector: '0x00000002', mutates: true, returns: 'Result<u8>'}\n",
			want: errors.ErrGenericArity,
		},
		{
			name: "alias cycle",
			src:  "name: C\ntypes:\n  - {name: A, alias: B}\n  - {name: B, alias: A}\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrCyclicAlias,
		},
		{
			name: "empty enum",
			src:  "name: C\ntypes:\n  - {name: E, enum: []}\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrEmptyEnum,
		},
		{
			name: "invalid type expression",
			src:  "name: C\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages:\n  - {name: m, selector: '0x00000002', mutates: true, returns: 'Vec<u8'}\n",
			want: errors.ErrInvalidTypeExpr,
		},
		{
			name: "invalid display name",
			src:  "name: C\nconstructors:\n  - {name: new, selector: '0x00000001', args: [{name: a, type: u8, display_name: '1bad'}]}\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrInvalidDisplayName,
		},
		{
			name: "missing selector",
			src:  "name: C\nconstructors: [{name: new}]\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrMissingSelector,
		},
		{
			name: "invalid selector",
			src:  "name: C\nconstructors: [{name: new, selector: '0x0001'}]\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrInvalidSelector,
		},
		{
			name: "duplicate selector",
			src:  "name: C\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages: [{name: m, selector: '0x00000001', mutates: true}]\n",
			want: errors.ErrDuplicateSelector,
		},
		{
			name: "duplicate message",
			src:  "name: C\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages:\n  - {name: m, selector: '0x00000002', mutates: true}\n  - {name: m, selector: '0x00000003', mutates: true}\n",
			want: errors.ErrDuplicateEntry,
		},
		{
			name: "missing mutates",
			src:  "name: C\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages: [{name: m, selector: '0x00000002'}]\n",
			want: errors.ErrMissingMutates,
		},
		{
			name: "no constructors",
			src:  "name: C\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrNoConstructors,
		},
		{
			name: "no messages",
			src:  "name: C\nconstructors: [{name: new, selector: '0x00000001'}]\n",
			want: errors.ErrNoMessages,
		},
		{
			name: "duplicate argument",
			src:  "name: C\nconstructors:\n  - {name: new, selector: '0x00000001', args: [{name: a, type: u8}, {name: a, type: u8}]}\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrDuplicateArg,
		},
		{
			name: "invalid name",
			src:  "name: C\nconstructors: [{name: 'new-one', selector: '0x00000001'}]\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrInvalidName,
		},
		{
			name: "non-ASCII name",
			src:  "name: C\nconstructors: [{name: 'créer', selector: '0x00000001'}]\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n",
			want: errors.ErrInvalidName,
		},
		{
			name: "generics on declared type",
			src:  "name: C\ntypes: [{name: T, alias: u8}]\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages: [{name: m, selector: '0x00000002', mutates: true, returns: 'T<u8>'}]\n",
			want: errors.ErrUnexpectedGenerics,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := extract(t, tt.src, Options{})
			if !errs.HasErrors() {
				t.Fatal("Expected errors")
			}
			found := false
			for _, e := range errs {
				if e.Code == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected %s, got %v", tt.want, codes(errs))
			}
		})
	}
}

func TestExtractor_CollectsAllErrors(t *testing.T) {
	src := `name: C
constructors:
  - name: new
messages:
  - name: a
    selector: "0x00000002"
  - name: b
    selector: "0x00000003"
    mutates: true
    returns: Missing
`
	_, errs := extract(t, src, Options{})
	got := strings.Join(codes(errs), " ")
	if got != "SPC201 SPC205 TYP101" {
		t.Errorf("Expected errors in source order, got %s", got)
	}
}

func TestExtractor_UnknownTypeSuggestions(t *testing.T) {
	src := "name: C\ntypes: [{name: Balance, alias: u128}]\nconstructors: [{name: new, selector: '0x00000001'}]\nmessages: [{name: m, selector: '0x00000002', mutates: true, returns: Balanse}]\n"
	_, errs := extract(t, src, Options{})
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %v", codes(errs))
	}
	if len(errs[0].Examples) != 1 || errs[0].Examples[0] != "Balance" {
		t.Errorf("Suggestions = %v, want [Balance]", errs[0].Examples)
	}
}

func TestExtractor_IgnoredMutatesWarning(t *testing.T) {
	src := "name: C\nconstructors: [{name: new, selector: '0x00000001', mutates: true}]\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n"
	spec, errs := extract(t, src, Options{})
	if errs.HasErrors() {
		t.Fatalf("Unexpected errors %v", codes(errs))
	}
	if !errs.HasWarnings() || errs[0].Code != errors.ErrIgnoredMutates {
		t.Errorf("Expected SPC210 warning, got %v", codes(errs))
	}
	if spec.Name() != "C" {
		t.Errorf("Spec should still be built, got %q", spec.Name())
	}
}

func TestExtractor_DeriveSelectors(t *testing.T) {
	src := `name: C
constructors:
  - name: new
messages:
  - name: transfer
    mutates: true
    args:
      - {name: to, type: "[u8; 32]"}
      - {name: value, type: u128}
`
	tests := []struct {
		hash abi.SelectorHash
		sig  string
	}{
		{abi.HashBlake2b, "transfer"},
		{abi.HashKeccak, "transfer([u8; 32],u128)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.hash), func(t *testing.T) {
			spec, errs := extract(t, src, Options{DeriveSelectors: true, SelectorHash: tt.hash})
			if errs.HasErrors() {
				t.Fatalf("Unexpected errors %v", codes(errs))
			}
			msg := spec.Messages()[0]
			if got := Signature(tt.hash, msg.Name(), msg.Args()); got != tt.sig {
				t.Errorf("Signature = %q, want %q", got, tt.sig)
			}
			want, _ := abi.DeriveSelector(tt.hash, tt.sig)
			if msg.Selector() != want {
				t.Errorf("Selector = %s, want %s", msg.Selector().Hex(), want.Hex())
			}
		})
	}
}

func TestExtractor_DeclaredSelectorWinsOverDerivation(t *testing.T) {
	spec, errs := extract(t, flipperYAML, Options{DeriveSelectors: true})
	if len(errs) > 0 {
		t.Fatalf("Unexpected errors %v", codes(errs))
	}
	if got := spec.Messages()[0].Selector().Hex(); got != "0x633aa551" {
		t.Errorf("Selector = %s, want declared 0x633aa551", got)
	}
}

func TestExtractor_ErrorsCarryFile(t *testing.T) {
	c := parseYAML(t, "name: C\nconstructors: [{name: new}]\nmessages: [{name: m, selector: '0x00000002', mutates: true}]\n")
	ext := NewExtractor(Options{})
	ext.SetFilePath("contracts/c.yaml")
	_, errs := ext.Extract(c)
	if len(errs) != 1 || errs[0].File != "contracts/c.yaml" {
		t.Fatalf("Unexpected errors %+v", errs)
	}
	if errs[0].Location.Line != 2 {
		t.Errorf("Location = %s, want line 2", errs[0].Location)
	}
}

func TestExtractor_ExpandedJSON(t *testing.T) {
	spec, errs := extract(t, flipperYAML, Options{})
	if len(errs) > 0 {
		t.Fatalf("Unexpected errors %v", codes(errs))
	}
	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"name":"Flipper"`, `"ty":"bool"`, `"return_type":null`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expanded JSON missing %s:\n%s", want, data)
		}
	}
}

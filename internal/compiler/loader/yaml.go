package loader

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	"github.com/conduit-lang/contractabi/internal/compiler/errors"
)

var (
	contractKeys = []string{"name", "docs", "types", "constructors", "messages", "events"}
	typeKeys     = []string{"name", "docs", "alias", "struct", "enum"}
	variantKeys  = []string{"name", "fields", "discriminant"}
	fieldKeys    = []string{"name", "type"}
	callableKeys = []string{"name", "selector", "mutates", "args", "returns", "docs"}
	argKeys      = []string{"name", "type", "display_name"}
	eventKeys    = []string{"name", "args", "docs"}
	eventArgKeys = []string{"name", "type", "display_name", "indexed", "docs"}
	typeRefKeys  = []string{"type", "display_name"}
)

// shapeError reports a document that decodes as YAML but does not have the
// layout of a contract description.
type shapeError struct {
	loc ast.SourceLocation
	msg string
}

func (e *shapeError) Error() string {
	return fmt.Sprintf("line %d: %s", e.loc.Line, e.msg)
}

func shapeErrorf(node *yaml.Node, format string, args ...interface{}) error {
	return &shapeError{loc: nodeLoc(node), msg: fmt.Sprintf(format, args...)}
}

func nodeLoc(node *yaml.Node) ast.SourceLocation {
	if node == nil {
		return ast.SourceLocation{}
	}
	return ast.SourceLocation{Line: node.Line, Column: node.Column}
}

// decodeMapping checks that node is a mapping with only the given keys and
// decodes it into out.
func decodeMapping(node *yaml.Node, what string, keys []string, out interface{}) error {
	if node.Kind != yaml.MappingNode {
		return shapeErrorf(node, "%s must be a mapping", what)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(keys, key.Value) {
			return shapeErrorf(key, "unknown key %q in %s (expected one of %s)",
				key.Value, what, strings.Join(keys, ", "))
		}
	}
	return node.Decode(out)
}

// valueNode returns the value stored under key in a mapping node
func valueNode(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	return valueNode(node, key) != nil
}

// docLines accepts a single (possibly multi-line) string or a list of lines
type docLines []string

func (d *docLines) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		text := strings.TrimRight(node.Value, "\n")
		if text == "" {
			*d = nil
			return nil
		}
		*d = strings.Split(text, "\n")
		return nil
	case yaml.SequenceNode:
		var lines []string
		if err := node.Decode(&lines); err != nil {
			return err
		}
		*d = lines
		return nil
	default:
		return shapeErrorf(node, "docs must be a string or a list of strings")
	}
}

// selectorText accepts hex text or a list of four byte strings
type selectorText string

func (s *selectorText) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = selectorText(node.Value)
		return nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return shapeErrorf(item, "selector bytes must be scalars")
			}
			parts = append(parts, item.Value)
		}
		text, err := json.Marshal(parts)
		if err != nil {
			return err
		}
		*s = selectorText(text)
		return nil
	default:
		return shapeErrorf(node, "selector must be hex text or a list of bytes")
	}
}

// yamlTypeRef is either a bare type expression or {type, display_name}
type yamlTypeRef struct {
	Type        string `yaml:"type"`
	DisplayName string `yaml:"display_name"`
	node        *yaml.Node
}

func (r *yamlTypeRef) UnmarshalYAML(node *yaml.Node) error {
	r.node = node
	if node.Kind == yaml.ScalarNode {
		r.Type = node.Value
		return nil
	}
	type plain yamlTypeRef
	if err := decodeMapping(node, "type reference", typeRefKeys, (*plain)(r)); err != nil {
		return err
	}
	if !hasKey(node, "type") {
		return shapeErrorf(node, "type reference is missing key \"type\"")
	}
	return nil
}

func (r *yamlTypeRef) toAST() *ast.TypeExpr {
	loc := nodeLoc(r.node)
	if v := valueNode(r.node, "type"); v != nil {
		loc = nodeLoc(v)
	}
	return &ast.TypeExpr{Raw: r.Type, DisplayName: r.DisplayName, Loc: loc}
}

type yamlField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	node *yaml.Node
}

func (f *yamlField) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlField
	f.node = node
	return decodeMapping(node, "field", fieldKeys, (*plain)(f))
}

type yamlVariant struct {
	Name         string      `yaml:"name"`
	Fields       []yamlField `yaml:"fields"`
	Discriminant *uint64     `yaml:"discriminant"`
	node         *yaml.Node
}

func (v *yamlVariant) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlVariant
	v.node = node
	return decodeMapping(node, "variant", variantKeys, (*plain)(v))
}

type yamlType struct {
	Name   string        `yaml:"name"`
	Docs   docLines      `yaml:"docs"`
	Alias  *yamlTypeRef  `yaml:"alias"`
	Struct []yamlField   `yaml:"struct"`
	Enum   []yamlVariant `yaml:"enum"`
	node   *yaml.Node
}

func (t *yamlType) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlType
	t.node = node
	return decodeMapping(node, "type declaration", typeKeys, (*plain)(t))
}

type yamlArg struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	DisplayName string   `yaml:"display_name"`
	Indexed     bool     `yaml:"indexed"`
	Docs        docLines `yaml:"docs"`
	node        *yaml.Node
}

type yamlCallableArg struct{ yamlArg }

func (a *yamlCallableArg) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlArg
	a.node = node
	return decodeMapping(node, "argument", argKeys, (*plain)(&a.yamlArg))
}

type yamlEventArg struct{ yamlArg }

func (a *yamlEventArg) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlArg
	a.node = node
	return decodeMapping(node, "event argument", eventArgKeys, (*plain)(&a.yamlArg))
}

type yamlCallable struct {
	Name     string            `yaml:"name"`
	Selector selectorText      `yaml:"selector"`
	Mutates  *bool             `yaml:"mutates"`
	Args     []yamlCallableArg `yaml:"args"`
	Returns  *yamlTypeRef      `yaml:"returns"`
	Docs     docLines          `yaml:"docs"`
	node     *yaml.Node
}

func (c *yamlCallable) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlCallable
	c.node = node
	return decodeMapping(node, "entry point", callableKeys, (*plain)(c))
}

type yamlEvent struct {
	Name string         `yaml:"name"`
	Args []yamlEventArg `yaml:"args"`
	Docs docLines       `yaml:"docs"`
	node *yaml.Node
}

func (e *yamlEvent) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlEvent
	e.node = node
	return decodeMapping(node, "event", eventKeys, (*plain)(e))
}

type yamlContract struct {
	Name         string         `yaml:"name"`
	Docs         docLines       `yaml:"docs"`
	Types        []yamlType     `yaml:"types"`
	Constructors []yamlCallable `yaml:"constructors"`
	Messages     []yamlCallable `yaml:"messages"`
	Events       []yamlEvent    `yaml:"events"`
	node         *yaml.Node
}

func (c *yamlContract) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlContract
	c.node = node
	return decodeMapping(node, "contract", contractKeys, (*plain)(c))
}

// loadYAML decodes a YAML or JSON description
func loadYAML(data []byte) (*ast.Contract, errors.ErrorList) {
	var doc yamlContract
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, yamlErrors(err)
	}
	if doc.node == nil {
		return nil, errors.ErrorList{
			errors.NewMalformedSource(ast.SourceLocation{Line: 1, Column: 1}, "Description is empty"),
		}
	}

	var errs errors.ErrorList
	contract := doc.toAST(&errs)
	return contract, errs
}

var yamlLinePattern = regexp.MustCompile(`line (\d+): (.*)`)

// yamlErrors converts decoder failures into located compiler errors
func yamlErrors(err error) errors.ErrorList {
	switch e := err.(type) {
	case *shapeError:
		return errors.ErrorList{errors.NewMalformedSource(e.loc, e.msg)}
	case *yaml.TypeError:
		list := make(errors.ErrorList, 0, len(e.Errors))
		for _, msg := range e.Errors {
			list = append(list, malformedYAML(msg))
		}
		return list
	default:
		return errors.ErrorList{malformedYAML(strings.TrimPrefix(err.Error(), "yaml: "))}
	}
}

func malformedYAML(msg string) *errors.CompilerError {
	loc := ast.SourceLocation{}
	if m := yamlLinePattern.FindStringSubmatch(msg); m != nil {
		if line, err := strconv.Atoi(m[1]); err == nil {
			loc = ast.SourceLocation{Line: line, Column: 1}
			msg = m[2]
		}
	}
	return errors.NewMalformedSource(loc, msg)
}

func (c *yamlContract) toAST(errs *errors.ErrorList) *ast.Contract {
	if !hasKey(c.node, "name") {
		*errs = append(*errs, errors.NewMissingKey(nodeLoc(c.node), "contract", "name"))
	}

	contract := &ast.Contract{
		Name: c.Name,
		Docs: c.Docs,
		Loc:  nodeLoc(c.node),
	}
	for i := range c.Types {
		if decl := c.Types[i].toAST(errs); decl != nil {
			contract.Types = append(contract.Types, decl)
		}
	}
	for i := range c.Constructors {
		if ctor := c.Constructors[i].toAST(ast.KindConstructor, errs); ctor != nil {
			contract.Constructors = append(contract.Constructors, ctor)
		}
	}
	for i := range c.Messages {
		if msg := c.Messages[i].toAST(ast.KindMessage, errs); msg != nil {
			contract.Messages = append(contract.Messages, msg)
		}
	}
	for i := range c.Events {
		if ev := c.Events[i].toAST(errs); ev != nil {
			contract.Events = append(contract.Events, ev)
		}
	}
	return contract
}

func (t *yamlType) toAST(errs *errors.ErrorList) *ast.TypeDecl {
	loc := nodeLoc(t.node)
	if !hasKey(t.node, "name") {
		*errs = append(*errs, errors.NewMissingKey(loc, "type declaration", "name"))
		return nil
	}

	decl := &ast.TypeDecl{Name: t.Name, Docs: t.Docs, Loc: loc}
	shapes := 0
	if hasKey(t.node, "alias") {
		shapes++
		decl.Kind = ast.DeclAlias
		if t.Alias != nil {
			decl.Alias = t.Alias.toAST()
		}
	}
	if hasKey(t.node, "struct") {
		shapes++
		decl.Kind = ast.DeclStruct
		decl.Fields = fieldsToAST(t.Struct, "type "+t.Name, errs)
	}
	if hasKey(t.node, "enum") {
		shapes++
		decl.Kind = ast.DeclEnum
		for i := range t.Enum {
			if v := t.Enum[i].toAST(t.Name, errs); v != nil {
				decl.Variants = append(decl.Variants, v)
			}
		}
	}

	switch {
	case shapes == 0:
		*errs = append(*errs, errors.NewMissingKey(loc, "type "+t.Name, "alias, struct or enum"))
		return nil
	case shapes > 1:
		*errs = append(*errs, errors.NewMalformedSource(loc,
			fmt.Sprintf("Type %q declares more than one of alias, struct and enum", t.Name)))
		return nil
	case decl.Kind == ast.DeclAlias && decl.Alias == nil:
		*errs = append(*errs, errors.NewMissingKey(loc, "type "+t.Name, "alias"))
		return nil
	}
	return decl
}

func (v *yamlVariant) toAST(owner string, errs *errors.ErrorList) *ast.VariantDecl {
	loc := nodeLoc(v.node)
	if !hasKey(v.node, "name") {
		*errs = append(*errs, errors.NewMissingKey(loc, "variant of "+owner, "name"))
		return nil
	}
	return &ast.VariantDecl{
		Name:         v.Name,
		Fields:       fieldsToAST(v.Fields, owner+"::"+v.Name, errs),
		Discriminant: v.Discriminant,
		Loc:          loc,
	}
}

// fieldsToAST converts struct or variant fields. Names are optional, which
// declares positional fields.
func fieldsToAST(fields []yamlField, owner string, errs *errors.ErrorList) []*ast.Param {
	var out []*ast.Param
	for _, f := range fields {
		loc := nodeLoc(f.node)
		typeNode := valueNode(f.node, "type")
		if typeNode == nil {
			*errs = append(*errs, errors.NewMissingKey(loc, "field of "+owner, "type"))
			continue
		}
		out = append(out, &ast.Param{
			Name: f.Name,
			Type: &ast.TypeExpr{Raw: f.Type, Loc: nodeLoc(typeNode)},
			Loc:  loc,
		})
	}
	return out
}

func (a *yamlArg) toAST(owner string, errs *errors.ErrorList) *ast.Param {
	loc := nodeLoc(a.node)
	ok := true
	if !hasKey(a.node, "name") {
		*errs = append(*errs, errors.NewMissingKey(loc, "argument of "+owner, "name"))
		ok = false
	}
	typeNode := valueNode(a.node, "type")
	if typeNode == nil {
		*errs = append(*errs, errors.NewMissingKey(loc, "argument of "+owner, "type"))
		ok = false
	}
	if !ok {
		return nil
	}
	return &ast.Param{
		Name:    a.Name,
		Type:    &ast.TypeExpr{Raw: a.Type, DisplayName: a.DisplayName, Loc: nodeLoc(typeNode)},
		Indexed: a.Indexed,
		Docs:    a.Docs,
		Loc:     loc,
	}
}

func (c *yamlCallable) toAST(kind ast.CallableKind, errs *errors.ErrorList) *ast.Callable {
	loc := nodeLoc(c.node)
	if !hasKey(c.node, "name") {
		*errs = append(*errs, errors.NewMissingKey(loc, kind.String(), "name"))
		return nil
	}
	owner := fmt.Sprintf("%s %q", kind, c.Name)

	callable := &ast.Callable{
		Kind:     kind,
		Name:     c.Name,
		Selector: string(c.Selector),
		Mutates:  c.Mutates,
		Docs:     c.Docs,
		Loc:      loc,
	}
	for i := range c.Args {
		if arg := c.Args[i].toAST(owner, errs); arg != nil {
			callable.Args = append(callable.Args, arg)
		}
	}
	if c.Returns != nil {
		if kind == ast.KindConstructor {
			*errs = append(*errs, errors.NewMalformedSource(nodeLoc(c.Returns.node),
				fmt.Sprintf("%s cannot declare a return type", owner)))
		} else {
			callable.Returns = c.Returns.toAST()
		}
	}
	return callable
}

func (e *yamlEvent) toAST(errs *errors.ErrorList) *ast.Event {
	loc := nodeLoc(e.node)
	if !hasKey(e.node, "name") {
		*errs = append(*errs, errors.NewMissingKey(loc, "event", "name"))
		return nil
	}
	owner := fmt.Sprintf("event %q", e.Name)

	event := &ast.Event{Name: e.Name, Docs: e.Docs, Loc: loc}
	for i := range e.Args {
		if arg := e.Args[i].toAST(owner, errs); arg != nil {
			event.Args = append(event.Args, arg)
		}
	}
	return event
}

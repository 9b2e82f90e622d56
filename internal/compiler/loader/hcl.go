package loader

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	"github.com/conduit-lang/contractabi/internal/compiler/errors"
)

// hclFile is the root of an HCL description: a single contract block.
type hclFile struct {
	Contracts []*hclContract `hcl:"contract,block"`
}

type hclContract struct {
	Name         string         `hcl:"name,label"`
	Docs         []string       `hcl:"docs,optional"`
	Types        []*hclType     `hcl:"type,block"`
	Constructors []*hclCallable `hcl:"constructor,block"`
	Messages     []*hclCallable `hcl:"message,block"`
	Events       []*hclEvent    `hcl:"event,block"`
	Remain       hcl.Body       `hcl:",remain"`
}

type hclType struct {
	Name     string         `hcl:"name,label"`
	Docs     []string       `hcl:"docs,optional"`
	Alias    hcl.Expression `hcl:"alias,optional"`
	Fields   []*hclField    `hcl:"field,block"`
	Variants []*hclVariant  `hcl:"variant,block"`
	Remain   hcl.Body       `hcl:",remain"`
}

// hclField is a struct or variant field. An empty label declares a
// positional field.
type hclField struct {
	Name   string         `hcl:"name,label"`
	Type   hcl.Expression `hcl:"type"`
	Remain hcl.Body       `hcl:",remain"`
}

type hclVariant struct {
	Name         string      `hcl:"name,label"`
	Discriminant *uint64     `hcl:"discriminant,optional"`
	Fields       []*hclField `hcl:"field,block"`
	Remain       hcl.Body    `hcl:",remain"`
}

type hclArg struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	DisplayName *string        `hcl:"display_name,optional"`
	Indexed     *bool          `hcl:"indexed,optional"`
	Docs        []string       `hcl:"docs,optional"`
	Remain      hcl.Body       `hcl:",remain"`
}

type hclCallable struct {
	Name               string         `hcl:"name,label"`
	Selector           hcl.Expression `hcl:"selector,optional"`
	Mutates            *bool          `hcl:"mutates,optional"`
	Args               []*hclArg      `hcl:"arg,block"`
	Returns            hcl.Expression `hcl:"returns,optional"`
	ReturnsDisplayName *string        `hcl:"returns_display_name,optional"`
	Docs               []string       `hcl:"docs,optional"`
	Remain             hcl.Body       `hcl:",remain"`
}

type hclEvent struct {
	Name   string    `hcl:"name,label"`
	Docs   []string  `hcl:"docs,optional"`
	Args   []*hclArg `hcl:"arg,block"`
	Remain hcl.Body  `hcl:",remain"`
}

// loadHCL decodes an HCL description
func loadHCL(data []byte) (*ast.Contract, errors.ErrorList) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, "description.hcl")
	if diags.HasErrors() {
		return nil, diagErrors(diags)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, diagErrors(diags)
	}

	switch len(root.Contracts) {
	case 0:
		return nil, errors.ErrorList{
			errors.NewMissingKey(ast.SourceLocation{Line: 1, Column: 1}, "description", "contract block"),
		}
	case 1:
	default:
		return nil, errors.ErrorList{
			errors.NewMalformedSource(bodyLoc(root.Contracts[1].Remain),
				"A description declares exactly one contract block"),
		}
	}

	var errs errors.ErrorList
	contract := root.Contracts[0].toAST(&errs)
	return contract, errs
}

// diagErrors converts HCL diagnostics into located compiler errors
func diagErrors(diags hcl.Diagnostics) errors.ErrorList {
	var list errors.ErrorList
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Summary
		if d.Detail != "" {
			msg = fmt.Sprintf("%s: %s", d.Summary, d.Detail)
		}
		list = append(list, errors.NewMalformedSource(rangeLoc(d.Subject), msg))
	}
	return list
}

func rangeLoc(r *hcl.Range) ast.SourceLocation {
	if r == nil {
		return ast.SourceLocation{}
	}
	return ast.SourceLocation{Line: r.Start.Line, Column: r.Start.Column}
}

// bodyLoc locates a block by the opening brace of its body
func bodyLoc(body hcl.Body) ast.SourceLocation {
	if body == nil {
		return ast.SourceLocation{}
	}
	r := body.MissingItemRange()
	return rangeLoc(&r)
}

// isExprDefined reports whether an optional attribute was written in the
// source. Omitted attributes decode to a zero-width placeholder expression.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// checkRemain reports arguments and blocks that no field consumed
func checkRemain(body hcl.Body, errs *errors.ErrorList) {
	if body == nil {
		return
	}
	attrs, diags := body.JustAttributes()
	*errs = append(*errs, diagErrors(diags)...)
	for name, attr := range attrs {
		*errs = append(*errs, errors.NewMalformedSource(rangeLoc(&attr.NameRange),
			fmt.Sprintf("Unsupported argument %q", name)))
	}
}

// typeExpr decodes a string attribute holding a type expression
func typeExpr(expr hcl.Expression, displayName *string, errs *errors.ErrorList) *ast.TypeExpr {
	var raw string
	if diags := gohcl.DecodeExpression(expr, nil, &raw); diags.HasErrors() {
		*errs = append(*errs, diagErrors(diags)...)
		return nil
	}
	te := &ast.TypeExpr{Raw: raw, Loc: rangeLoc(expr.Range().Ptr())}
	if displayName != nil {
		te.DisplayName = *displayName
	}
	return te
}

// selectorValue accepts a hex string or a list of four byte strings
func selectorValue(expr hcl.Expression, errs *errors.ErrorList) string {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		*errs = append(*errs, diagErrors(diags)...)
		return ""
	}
	loc := rangeLoc(expr.Range().Ptr())

	ty := val.Type()
	switch {
	case val.IsNull() || !val.IsKnown():
	case ty.Equals(cty.String):
		return val.AsString()
	case ty.IsTupleType() || ty.IsListType():
		parts := make([]string, 0, val.LengthInt())
		for _, item := range val.AsValueSlice() {
			if item.IsNull() || !item.Type().Equals(cty.String) {
				*errs = append(*errs, errors.NewMalformedSource(loc, "Selector bytes must be strings"))
				return ""
			}
			parts = append(parts, item.AsString())
		}
		text, err := json.Marshal(parts)
		if err == nil {
			return string(text)
		}
	}
	*errs = append(*errs, errors.NewMalformedSource(loc, "Selector must be hex text or a list of bytes"))
	return ""
}

func (c *hclContract) toAST(errs *errors.ErrorList) *ast.Contract {
	checkRemain(c.Remain, errs)

	contract := &ast.Contract{
		Name: c.Name,
		Docs: c.Docs,
		Loc:  bodyLoc(c.Remain),
	}
	for _, t := range c.Types {
		if decl := t.toAST(errs); decl != nil {
			contract.Types = append(contract.Types, decl)
		}
	}
	for _, ctor := range c.Constructors {
		contract.Constructors = append(contract.Constructors, ctor.toAST(ast.KindConstructor, errs))
	}
	for _, msg := range c.Messages {
		contract.Messages = append(contract.Messages, msg.toAST(ast.KindMessage, errs))
	}
	for _, ev := range c.Events {
		contract.Events = append(contract.Events, ev.toAST(errs))
	}
	return contract
}

func (t *hclType) toAST(errs *errors.ErrorList) *ast.TypeDecl {
	checkRemain(t.Remain, errs)
	loc := bodyLoc(t.Remain)

	decl := &ast.TypeDecl{Name: t.Name, Docs: t.Docs, Loc: loc}
	shapes := 0
	if isExprDefined(t.Alias) {
		shapes++
		decl.Kind = ast.DeclAlias
		decl.Alias = typeExpr(t.Alias, nil, errs)
	}
	if len(t.Fields) > 0 {
		shapes++
		decl.Kind = ast.DeclStruct
		decl.Fields = hclFields(t.Fields, errs)
	}
	if len(t.Variants) > 0 {
		shapes++
		decl.Kind = ast.DeclEnum
		for _, v := range t.Variants {
			checkRemain(v.Remain, errs)
			decl.Variants = append(decl.Variants, &ast.VariantDecl{
				Name:         v.Name,
				Fields:       hclFields(v.Fields, errs),
				Discriminant: v.Discriminant,
				Loc:          bodyLoc(v.Remain),
			})
		}
	}

	switch {
	case shapes == 0:
		*errs = append(*errs, errors.NewMissingKey(loc, "type "+t.Name, "alias, field or variant"))
		return nil
	case shapes > 1:
		*errs = append(*errs, errors.NewMalformedSource(loc,
			fmt.Sprintf("Type %q declares more than one of alias, field and variant", t.Name)))
		return nil
	case decl.Kind == ast.DeclAlias && decl.Alias == nil:
		return nil
	}
	return decl
}

func hclFields(fields []*hclField, errs *errors.ErrorList) []*ast.Param {
	out := make([]*ast.Param, 0, len(fields))
	for _, f := range fields {
		checkRemain(f.Remain, errs)
		te := typeExpr(f.Type, nil, errs)
		if te == nil {
			continue
		}
		out = append(out, &ast.Param{Name: f.Name, Type: te, Loc: bodyLoc(f.Remain)})
	}
	return out
}

func (a *hclArg) toAST(errs *errors.ErrorList) *ast.Param {
	checkRemain(a.Remain, errs)
	te := typeExpr(a.Type, a.DisplayName, errs)
	if te == nil {
		return nil
	}
	p := &ast.Param{Name: a.Name, Type: te, Docs: a.Docs, Loc: bodyLoc(a.Remain)}
	if a.Indexed != nil {
		p.Indexed = *a.Indexed
	}
	return p
}

func (c *hclCallable) toAST(kind ast.CallableKind, errs *errors.ErrorList) *ast.Callable {
	checkRemain(c.Remain, errs)
	loc := bodyLoc(c.Remain)
	owner := fmt.Sprintf("%s %q", kind, c.Name)

	callable := &ast.Callable{
		Kind:    kind,
		Name:    c.Name,
		Mutates: c.Mutates,
		Docs:    c.Docs,
		Loc:     loc,
	}
	if isExprDefined(c.Selector) {
		callable.Selector = selectorValue(c.Selector, errs)
	}
	for _, a := range c.Args {
		if a.Indexed != nil || len(a.Docs) > 0 {
			*errs = append(*errs, errors.NewMalformedSource(bodyLoc(a.Remain),
				fmt.Sprintf("Arguments of %s cannot set indexed or docs", owner)))
		}
		if arg := a.toAST(errs); arg != nil {
			callable.Args = append(callable.Args, arg)
		}
	}

	if isExprDefined(c.Returns) {
		if kind == ast.KindConstructor {
			*errs = append(*errs, errors.NewMalformedSource(rangeLoc(c.Returns.Range().Ptr()),
				fmt.Sprintf("%s cannot declare a return type", owner)))
		} else {
			callable.Returns = typeExpr(c.Returns, c.ReturnsDisplayName, errs)
		}
	} else if c.ReturnsDisplayName != nil {
		*errs = append(*errs, errors.NewMissingKey(loc, owner, "returns"))
	}
	return callable
}

func (e *hclEvent) toAST(errs *errors.ErrorList) *ast.Event {
	checkRemain(e.Remain, errs)

	event := &ast.Event{Name: e.Name, Docs: e.Docs, Loc: bodyLoc(e.Remain)}
	for _, a := range e.Args {
		if arg := a.toAST(errs); arg != nil {
			event.Args = append(event.Args, arg)
		}
	}
	return event
}

package metadata

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	"github.com/conduit-lang/contractabi/internal/compiler/errors"
	"github.com/conduit-lang/contractabi/internal/compiler/parser"
	"github.com/conduit-lang/contractabi/pkg/abi"
	"github.com/conduit-lang/contractabi/pkg/typeinfo"
)

// generics maps the built-in generic types to their arity
var generics = map[string]int{
	"Vec":    1,
	"Box":    1,
	"Option": 1,
	"Result": 2,
}

func isReserved(name string) bool {
	_, generic := generics[name]
	return generic || name == "String" || typeinfo.IsPrimitiveName(name)
}

// declareTypes registers every declaration by name and creates the named
// types for structs and enums, so definitions can refer to each other in
// any order.
func (e *Extractor) declareTypes(decls []*ast.TypeDecl) {
	for _, d := range decls {
		ns, err := typeinfo.ParseNamespace(d.Name)
		if err != nil {
			e.report(errors.NewInvalidName(d.Loc, "type", d.Name))
			continue
		}
		key := ns.String()
		if isReserved(key) {
			e.report(errors.NewReservedTypeName(d.Loc, key))
			continue
		}
		if first, ok := e.decls[key]; ok {
			e.report(errors.NewDuplicateType(d.Loc, key, first.Loc))
			continue
		}
		e.decls[key] = d
		e.declNames[d] = ns

		if d.Kind != ast.DeclAlias {
			e.named[key] = typeinfo.Declare(typeinfo.Path(ns.Segments()))
		}
	}
}

// defineTypes resolves alias targets and sets struct and enum definitions
func (e *Extractor) defineTypes(decls []*ast.TypeDecl) {
	for _, d := range decls {
		ns, ok := e.declNames[d]
		if !ok {
			continue
		}
		key := ns.String()

		switch d.Kind {
		case ast.DeclAlias:
			e.resolveAlias(key)
		case ast.DeclStruct:
			fields, ok := e.resolveFields(key, d.Fields)
			if ok {
				_ = e.named[key].DefineComposite(fields...)
			}
		case ast.DeclEnum:
			e.defineEnum(key, d)
		}
	}
}

func (e *Extractor) defineEnum(key string, d *ast.TypeDecl) {
	if len(d.Variants) == 0 {
		e.report(errors.NewEmptyEnum(d.Loc, key))
		return
	}

	ok := true
	seen := make(map[string]bool, len(d.Variants))
	cases := make([]typeinfo.VariantCase, 0, len(d.Variants))
	for _, v := range d.Variants {
		if !typeinfo.IsIdentifier(v.Name) {
			e.report(errors.NewInvalidName(v.Loc, "variant", v.Name))
			ok = false
			continue
		}
		if seen[v.Name] {
			e.report(errors.NewDuplicateMember(v.Loc, key, "variant", v.Name))
			ok = false
			continue
		}
		seen[v.Name] = true

		fields, fieldsOK := e.resolveFields(key+"::"+v.Name, v.Fields)
		ok = ok && fieldsOK
		cases = append(cases, typeinfo.VariantCase{
			Name:         v.Name,
			Fields:       fields,
			Discriminant: v.Discriminant,
		})
	}
	if ok {
		_ = e.named[key].DefineVariant(cases...)
	}
}

// resolveFields resolves struct or variant fields. Fields are either all
// named or all positional.
func (e *Extractor) resolveFields(owner string, params []*ast.Param) ([]typeinfo.Field, bool) {
	ok := true
	named := 0
	seen := make(map[string]bool, len(params))
	fields := make([]typeinfo.Field, 0, len(params))
	for _, p := range params {
		if p.Name != "" {
			named++
			if !typeinfo.IsIdentifier(p.Name) {
				e.report(errors.NewInvalidName(p.Loc, "field", p.Name))
				ok = false
			} else if seen[p.Name] {
				e.report(errors.NewDuplicateMember(p.Loc, owner, "field", p.Name))
				ok = false
			}
			seen[p.Name] = true
		}

		ty, _, resolved := e.resolveExpr(p.Type)
		if !resolved {
			ok = false
			continue
		}
		fields = append(fields, typeinfo.Field{Name: p.Name, Type: ty})
	}

	if named > 0 && named < len(params) {
		e.report(errors.NewMalformedSource(params[0].Loc,
			owner+" mixes named and positional fields"))
		ok = false
	}
	return fields, ok
}

// resolveAlias returns the target of an alias, detecting cycles. Failed
// aliases resolve to nil and report once.
func (e *Extractor) resolveAlias(key string) (*typeinfo.Type, bool) {
	if t, done := e.aliases[key]; done {
		return t, t != nil
	}
	d := e.decls[key]

	for i, name := range e.aliasStack {
		if name == key {
			cycle := append(append([]string(nil), e.aliasStack[i:]...), key)
			e.report(errors.NewCyclicAlias(d.Loc, cycle))
			return nil, false
		}
	}

	e.aliasStack = append(e.aliasStack, key)
	ty, _, ok := e.resolveExpr(d.Alias)
	e.aliasStack = e.aliasStack[:len(e.aliasStack)-1]

	if !ok {
		e.aliases[key] = nil
		return nil, false
	}
	e.aliases[key] = ty
	return ty, true
}

// resolveExpr parses and resolves a type expression
func (e *Extractor) resolveExpr(te *ast.TypeExpr) (*typeinfo.Type, ast.TypeRef, bool) {
	if te == nil {
		return typeinfo.Unit(), nil, true
	}
	ref, parseErrs := parser.ParseType(te.Raw)
	if len(parseErrs) > 0 {
		pe := parseErrs[0]
		e.report(errors.NewInvalidTypeExpr(te.Loc.Offset(pe.Location.Column), te.Raw, pe.Message))
		return nil, nil, false
	}
	ty, ok := e.resolveRef(ref, te.Loc)
	return ty, ref, ok
}

func (e *Extractor) resolveRef(ref ast.TypeRef, base ast.SourceLocation) (*typeinfo.Type, bool) {
	loc := base.Offset(ref.Location().Column)

	switch r := ref.(type) {
	case *ast.RefType:
		return e.resolveRef(r.Elem, base)
	case *ast.SliceType:
		elem, ok := e.resolveRef(r.Elem, base)
		if !ok {
			return nil, false
		}
		return typeinfo.SequenceOf(elem), true
	case *ast.ArrayType:
		elem, ok := e.resolveRef(r.Elem, base)
		if !ok {
			return nil, false
		}
		return typeinfo.ArrayOf(r.Len, elem), true
	case *ast.TupleType:
		elems := make([]*typeinfo.Type, 0, len(r.Elems))
		ok := true
		for _, el := range r.Elems {
			ty, elOK := e.resolveRef(el, base)
			ok = ok && elOK
			elems = append(elems, ty)
		}
		if !ok {
			return nil, false
		}
		return typeinfo.TupleOf(elems...), true
	case *ast.PathType:
		return e.resolvePath(r, base, loc)
	default:
		e.report(errors.NewInvalidTypeExpr(loc, ref.String(), "unsupported type form"))
		return nil, false
	}
}

func (e *Extractor) resolvePath(p *ast.PathType, base, loc ast.SourceLocation) (*typeinfo.Type, bool) {
	name := p.Name()

	args := make([]*typeinfo.Type, 0, len(p.Args))
	ok := true
	for _, a := range p.Args {
		ty, argOK := e.resolveRef(a, base)
		ok = ok && argOK
		args = append(args, ty)
	}
	if !ok {
		return nil, false
	}

	if arity, generic := generics[name]; generic {
		if len(args) != arity {
			e.report(errors.NewGenericArity(loc, name, arity, len(args)))
			return nil, false
		}
		switch name {
		case "Vec":
			return typeinfo.SequenceOf(args[0]), true
		case "Box":
			return args[0], true
		case "Option":
			return typeinfo.OptionOf(args[0]), true
		default:
			return typeinfo.ResultOf(args[0], args[1]), true
		}
	}

	if len(args) > 0 {
		if isReserved(name) || e.decls[name] != nil {
			e.report(errors.NewUnexpectedGenerics(loc, name))
		} else {
			e.report(errors.NewUnknownType(loc, name, e.similarTypes(name)))
		}
		return nil, false
	}

	if name == "String" {
		return typeinfo.Str, true
	}
	if ty, prim := typeinfo.PrimitiveByName(name); prim {
		return ty, true
	}
	if ty, declared := e.named[name]; declared {
		return ty, true
	}
	if _, declared := e.decls[name]; declared {
		return e.resolveAlias(name)
	}

	e.report(errors.NewUnknownType(loc, name, e.similarTypes(name)))
	return nil, false
}

// typeSpec resolves a type expression and applies its display name: an
// explicit display_name wins, then the alias it names, else none.
func (e *Extractor) typeSpec(te *ast.TypeExpr) (abi.TypeSpec, bool) {
	ty, ref, ok := e.resolveExpr(te)
	if !ok {
		return abi.TypeSpec{}, false
	}

	if te.DisplayName != "" {
		ts, err := abi.NewTypeSpecWithName(ty, te.DisplayName)
		if err != nil {
			e.report(errors.NewInvalidDisplayName(te.Loc, te.DisplayName))
			return abi.TypeSpec{}, false
		}
		return ts, true
	}

	if ns, isAlias := e.aliasNamespace(ref); isAlias {
		ts, err := abi.NewTypeSpecWithSegments(ty, ns.Segments())
		if err == nil {
			return ts, true
		}
	}
	return abi.NewTypeSpec(ty), true
}

// aliasNamespace reports the declared name of an alias when ref names one
// directly (references are looked through).
func (e *Extractor) aliasNamespace(ref ast.TypeRef) (typeinfo.Namespace, bool) {
	for {
		r, isRef := ref.(*ast.RefType)
		if !isRef {
			break
		}
		ref = r.Elem
	}
	p, isPath := ref.(*ast.PathType)
	if !isPath || len(p.Args) > 0 {
		return typeinfo.Namespace{}, false
	}
	d, declared := e.decls[p.Name()]
	if !declared || d.Kind != ast.DeclAlias {
		return typeinfo.Namespace{}, false
	}
	return e.declNames[d], true
}

// similarTypes suggests known type names close to an unknown one
func (e *Extractor) similarTypes(name string) []string {
	candidates := []string{"String", "Vec", "Box", "Option", "Result",
		"bool", "char", "str", "u8", "u16", "u32", "u64", "u128",
		"i8", "i16", "i32", "i64", "i128"}
	for key := range e.decls {
		candidates = append(candidates, key)
	}

	limit := 2
	if len(name) <= 3 {
		limit = 1
	}
	target := strings.ToLower(name)
	var out []string
	for _, c := range candidates {
		if levenshtein.Distance(target, strings.ToLower(c), nil) <= limit {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

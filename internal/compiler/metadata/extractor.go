package metadata

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	"github.com/conduit-lang/contractabi/internal/compiler/errors"
	"github.com/conduit-lang/contractabi/pkg/abi"
	"github.com/conduit-lang/contractabi/pkg/typeinfo"
)

// Options controls how a description becomes a contract spec
type Options struct {
	// DeriveSelectors computes selectors the description leaves out
	DeriveSelectors bool
	// SelectorHash is the derivation scheme. Defaults to blake2b.
	SelectorHash abi.SelectorHash
}

// Extractor turns a description tree into an expanded ContractSpec.
//
// Extraction does not stop at the first problem: every declaration is
// checked and all diagnostics are returned together, so a single build
// reports everything wrong with a description.
type Extractor struct {
	opts     Options
	filePath string

	errs       errors.ErrorList
	decls      map[string]*ast.TypeDecl
	declNames  map[*ast.TypeDecl]typeinfo.Namespace
	named      map[string]*typeinfo.Type
	aliases    map[string]*typeinfo.Type
	aliasStack []string
	selectors  map[abi.Selector]string
}

// NewExtractor creates a new extractor
func NewExtractor(opts Options) *Extractor {
	if opts.SelectorHash == "" {
		opts.SelectorHash = abi.HashBlake2b
	}
	return &Extractor{opts: opts}
}

// SetFilePath sets the description path reported in diagnostics
func (e *Extractor) SetFilePath(path string) {
	e.filePath = path
}

func (e *Extractor) reset() {
	e.errs = nil
	e.decls = make(map[string]*ast.TypeDecl)
	e.declNames = make(map[*ast.TypeDecl]typeinfo.Namespace)
	e.named = make(map[string]*typeinfo.Type)
	e.aliases = make(map[string]*typeinfo.Type)
	e.aliasStack = nil
	e.selectors = make(map[abi.Selector]string)
}

func (e *Extractor) report(err *errors.CompilerError) {
	e.errs = append(e.errs, err)
}

// Extract builds the contract spec. The returned list holds warnings when
// extraction succeeds, and at least one error when it does not.
func (e *Extractor) Extract(c *ast.Contract) (abi.ContractSpec, errors.ErrorList) {
	e.reset()

	if !typeinfo.IsIdentifier(c.Name) {
		e.report(errors.NewInvalidName(c.Loc, "contract", c.Name))
	}

	e.declareTypes(c.Types)
	e.defineTypes(c.Types)

	ctors := e.extractConstructors(c.Constructors)
	msgs := e.extractMessages(c.Messages)
	events := e.extractEvents(c.Events)

	if len(c.Constructors) == 0 {
		e.report(errors.NewNoConstructors(c.Loc, c.Name))
	}
	if len(c.Messages) == 0 {
		e.report(errors.NewNoMessages(c.Loc, c.Name))
	}

	if e.errs.HasErrors() {
		return abi.ContractSpec{}, e.finish()
	}

	spec, err := abi.NewContract(c.Name).
		Constructors(ctors...).
		Messages(msgs...).
		Events(events...).
		Docs(c.Docs...).
		Done()
	if err != nil {
		e.report(errors.NewIncompleteSpec(c.Loc, err))
		return abi.ContractSpec{}, e.finish()
	}
	return spec, e.finish()
}

func (e *Extractor) finish() errors.ErrorList {
	errs := e.errs
	if e.filePath != "" {
		errs.WithFile(e.filePath)
	}
	errs.Sort()
	return errs
}

func (e *Extractor) extractConstructors(decls []*ast.Callable) []abi.ConstructorSpec {
	specs := make([]abi.ConstructorSpec, 0, len(decls))
	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		if !e.checkEntryName(d.Loc, "constructor", d.Name, seen) {
			continue
		}
		if d.Mutates != nil {
			e.report(errors.NewIgnoredMutates(d.Loc, d.Name))
		}

		args, ok := e.extractArgs(d)
		sel, selOK := e.selector(d, args)
		if !ok || !selOK {
			continue
		}

		spec, err := abi.NewConstructor(d.Name).
			Selector(sel).
			Args(args...).
			Docs(d.Docs...).
			Done()
		if err != nil {
			e.report(errors.NewIncompleteSpec(d.Loc, err))
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

func (e *Extractor) extractMessages(decls []*ast.Callable) []abi.MessageSpec {
	specs := make([]abi.MessageSpec, 0, len(decls))
	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		if !e.checkEntryName(d.Loc, "message", d.Name, seen) {
			continue
		}

		ok := true
		if d.Mutates == nil {
			e.report(errors.NewMissingMutates(d.Loc, d.Name))
			ok = false
		}
		args, argsOK := e.extractArgs(d)
		sel, selOK := e.selector(d, args)
		ret, retOK := e.returnType(d.Returns)
		if !ok || !argsOK || !selOK || !retOK {
			continue
		}

		spec, err := abi.NewMessage(d.Name).
			Selector(sel).
			Mutates(*d.Mutates).
			Args(args...).
			Returns(ret).
			Docs(d.Docs...).
			Done()
		if err != nil {
			e.report(errors.NewIncompleteSpec(d.Loc, err))
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

func (e *Extractor) returnType(te *ast.TypeExpr) (abi.ReturnTypeSpec, bool) {
	if te == nil {
		return abi.NoReturn(), true
	}
	ts, ok := e.typeSpec(te)
	if !ok {
		return abi.ReturnTypeSpec{}, false
	}
	return abi.NewReturnType(ts), true
}

func (e *Extractor) extractEvents(decls []*ast.Event) []abi.EventSpec {
	specs := make([]abi.EventSpec, 0, len(decls))
	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		if !e.checkEntryName(d.Loc, "event", d.Name, seen) {
			continue
		}

		owner := fmt.Sprintf("event %q", d.Name)
		ok := true
		argNames := make(map[string]bool, len(d.Args))
		args := make([]abi.EventParamSpec, 0, len(d.Args))
		for _, a := range d.Args {
			if !e.checkArgName(owner, a, argNames) {
				ok = false
				continue
			}
			ts, tsOK := e.typeSpec(a.Type)
			if !tsOK {
				ok = false
				continue
			}
			args = append(args, abi.NewEventParam(a.Name).
				OfType(ts).
				Indexed(a.Indexed).
				Docs(a.Docs...).
				Done())
		}
		if !ok {
			continue
		}

		specs = append(specs, abi.NewEvent(d.Name).Args(args...).Docs(d.Docs...).Done())
	}
	return specs
}

func (e *Extractor) extractArgs(d *ast.Callable) ([]abi.MessageParamSpec, bool) {
	owner := fmt.Sprintf("%s %q", d.Kind, d.Name)
	ok := true
	names := make(map[string]bool, len(d.Args))
	args := make([]abi.MessageParamSpec, 0, len(d.Args))
	for _, a := range d.Args {
		if !e.checkArgName(owner, a, names) {
			ok = false
			continue
		}
		ts, tsOK := e.typeSpec(a.Type)
		if !tsOK {
			ok = false
			continue
		}
		args = append(args, abi.NewMessageParam(a.Name).OfType(ts).Done())
	}
	return args, ok
}

func (e *Extractor) checkEntryName(loc ast.SourceLocation, kind, name string, seen map[string]bool) bool {
	if !typeinfo.IsIdentifier(name) {
		e.report(errors.NewInvalidName(loc, kind, name))
		return false
	}
	if seen[name] {
		e.report(errors.NewDuplicateEntry(loc, kind, name))
		return false
	}
	seen[name] = true
	return true
}

func (e *Extractor) checkArgName(owner string, a *ast.Param, seen map[string]bool) bool {
	if !typeinfo.IsIdentifier(a.Name) {
		e.report(errors.NewInvalidName(a.Loc, "argument", a.Name))
		return false
	}
	if seen[a.Name] {
		e.report(errors.NewDuplicateArg(a.Loc, owner, a.Name))
		return false
	}
	seen[a.Name] = true
	return true
}

// selector parses the declared selector, or derives one when allowed.
// Constructors and messages share one selector space.
func (e *Extractor) selector(d *ast.Callable, args []abi.MessageParamSpec) (abi.Selector, bool) {
	kind := d.Kind.String()

	var sel abi.Selector
	switch {
	case d.Selector != "":
		parsed, err := abi.ParseSelector(d.Selector)
		if err != nil {
			e.report(errors.NewInvalidSelector(d.Loc, kind, d.Name, d.Selector))
			return sel, false
		}
		sel = parsed
	case e.opts.DeriveSelectors:
		derived, err := abi.DeriveSelector(e.opts.SelectorHash, Signature(e.opts.SelectorHash, d.Name, args))
		if err != nil {
			e.report(errors.NewInvalidSelector(d.Loc, kind, d.Name, err.Error()))
			return sel, false
		}
		sel = derived
	default:
		e.report(errors.NewMissingSelector(d.Loc, kind, d.Name))
		return sel, false
	}

	if other, taken := e.selectors[sel]; taken {
		e.report(errors.NewDuplicateSelector(d.Loc, sel.Hex(), d.Name, other))
		return sel, false
	}
	e.selectors[sel] = d.Name
	return sel, true
}

// Signature is the text hashed to derive a selector: the bare label for
// blake2b, and name(type,...) for keccak.
func Signature(hash abi.SelectorHash, name string, args []abi.MessageParamSpec) string {
	if hash != abi.HashKeccak {
		return name
	}
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.Type().Type().String()
	}
	return name + "(" + strings.Join(types, ",") + ")"
}

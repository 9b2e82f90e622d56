// Package ast defines the producer side tree of a contract description, as
// read from a YAML or HCL source file, and the parsed form of the type
// expressions it contains.
package ast

import "fmt"

// SourceLocation tracks the position of a node in the description file
type SourceLocation struct {
	Line   int `json:"line"`   // Line number (1-indexed)
	Column int `json:"column"` // Column number (1-indexed)
}

// String renders the location as line:column
func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// IsZero reports whether the location is unknown
func (l SourceLocation) IsZero() bool {
	return l.Line == 0 && l.Column == 0
}

// Offset returns the location shifted by a column offset on the same line.
// Type expression errors carry positions relative to the expression text.
func (l SourceLocation) Offset(column int) SourceLocation {
	if l.IsZero() {
		return SourceLocation{Line: 1, Column: column}
	}
	return SourceLocation{Line: l.Line, Column: l.Column + column - 1}
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	node()
}

// Contract is the root node of a description
type Contract struct {
	Name         string
	Docs         []string
	Types        []*TypeDecl
	Constructors []*Callable
	Messages     []*Callable
	Events       []*Event
	Loc          SourceLocation
}

func (c *Contract) node()                    {}
func (c *Contract) Location() SourceLocation { return c.Loc }

// CallableKind distinguishes constructors from messages
type CallableKind int

const (
	// KindConstructor is an entry point that instantiates the contract
	KindConstructor CallableKind = iota
	// KindMessage is an entry point called on an instance
	KindMessage
)

func (k CallableKind) String() string {
	if k == KindConstructor {
		return "constructor"
	}
	return "message"
}

// Callable is a constructor or message declaration
type Callable struct {
	Kind CallableKind
	Name string
	// Selector is the raw selector text; empty when not declared
	Selector string
	// Mutates is nil when not declared. Constructors ignore it.
	Mutates *bool
	Args    []*Param
	// Returns is nil for entry points without a result
	Returns *TypeExpr
	Docs    []string
	Loc     SourceLocation
}

func (c *Callable) node()                    {}
func (c *Callable) Location() SourceLocation { return c.Loc }

// Param is an argument, an event field, or a struct/variant field
type Param struct {
	Name    string
	Type    *TypeExpr
	Indexed bool
	Docs    []string
	Loc     SourceLocation
}

func (p *Param) node()                    {}
func (p *Param) Location() SourceLocation { return p.Loc }

// Event is an event declaration
type Event struct {
	Name string
	Args []*Param
	Docs []string
	Loc  SourceLocation
}

func (e *Event) node()                    {}
func (e *Event) Location() SourceLocation { return e.Loc }

// TypeDeclKind is the shape of a user declared type
type TypeDeclKind int

const (
	// DeclAlias names another type, e.g. Balance = u128
	DeclAlias TypeDeclKind = iota
	// DeclStruct declares a composite with named fields
	DeclStruct
	// DeclEnum declares a variant type
	DeclEnum
)

func (k TypeDeclKind) String() string {
	switch k {
	case DeclAlias:
		return "alias"
	case DeclStruct:
		return "struct"
	case DeclEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// TypeDecl is a user declared type
type TypeDecl struct {
	Name     string
	Kind     TypeDeclKind
	Alias    *TypeExpr
	Fields   []*Param
	Variants []*VariantDecl
	Docs     []string
	Loc      SourceLocation
}

func (t *TypeDecl) node()                    {}
func (t *TypeDecl) Location() SourceLocation { return t.Loc }

// VariantDecl is one case of an enum declaration
type VariantDecl struct {
	Name         string
	Fields       []*Param
	Discriminant *uint64
	Loc          SourceLocation
}

func (v *VariantDecl) node()                    {}
func (v *VariantDecl) Location() SourceLocation { return v.Loc }

// TypeExpr is an unparsed type expression such as "Vec<Balance>", with an
// optional display name override.
type TypeExpr struct {
	Raw         string
	DisplayName string
	Loc         SourceLocation
}

func (t *TypeExpr) node()                    {}
func (t *TypeExpr) Location() SourceLocation { return t.Loc }

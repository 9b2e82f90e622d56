package ast

import (
	"strconv"
	"strings"
)

// TypeRef is a parsed type expression
type TypeRef interface {
	Node
	String() string
	typeRef()
}

// PathType is a (possibly generic) named type: u128, erc20::Balance, Vec<T>
type PathType struct {
	Segments []string
	Args     []TypeRef
	Loc      SourceLocation
}

// SliceType is a dynamically sized list: [T]
type SliceType struct {
	Elem TypeRef
	Loc  SourceLocation
}

// ArrayType is a fixed size list: [T; N]
type ArrayType struct {
	Elem TypeRef
	Len  uint32
	Loc  SourceLocation
}

// TupleType is an anonymous product: (A, B). The empty tuple is unit.
type TupleType struct {
	Elems []TypeRef
	Loc   SourceLocation
}

// RefType is a borrowed type: &T or &mut T. References describe how a value
// is passed, not what it is, so they resolve to their element type.
type RefType struct {
	Elem    TypeRef
	Mutable bool
	Loc     SourceLocation
}

func (*PathType) node()  {}
func (*SliceType) node() {}
func (*ArrayType) node() {}
func (*TupleType) node() {}
func (*RefType) node()   {}

func (*PathType) typeRef()  {}
func (*SliceType) typeRef() {}
func (*ArrayType) typeRef() {}
func (*TupleType) typeRef() {}
func (*RefType) typeRef()   {}

func (t *PathType) Location() SourceLocation  { return t.Loc }
func (t *SliceType) Location() SourceLocation { return t.Loc }
func (t *ArrayType) Location() SourceLocation { return t.Loc }
func (t *TupleType) Location() SourceLocation { return t.Loc }
func (t *RefType) Location() SourceLocation   { return t.Loc }

// Name returns the path joined with "::"
func (t *PathType) Name() string {
	return strings.Join(t.Segments, "::")
}

func (t *PathType) String() string {
	if len(t.Args) == 0 {
		return t.Name()
	}
	return t.Name() + "<" + joinRefs(t.Args) + ">"
}

func (t *SliceType) String() string {
	return "[" + t.Elem.String() + "]"
}

func (t *ArrayType) String() string {
	return "[" + t.Elem.String() + "; " + strconv.FormatUint(uint64(t.Len), 10) + "]"
}

func (t *TupleType) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	return "(" + joinRefs(t.Elems) + ")"
}

func (t *RefType) String() string {
	if t.Mutable {
		return "&mut " + t.Elem.String()
	}
	return "&" + t.Elem.String()
}

func joinRefs(refs []TypeRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

package docs

import (
	"strings"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	"github.com/conduit-lang/contractabi/internal/compiler/parser"
)

// maxArrayExample caps the elements shown for fixed size arrays
const maxArrayExample = 4

// ExampleGenerator generates JSON-friendly example values for type names
type ExampleGenerator struct{}

// NewExampleGenerator creates a new example generator
func NewExampleGenerator() *ExampleGenerator {
	return &ExampleGenerator{}
}

// GenerateForName parses a canonical type name such as "Vec<(AccountId, u128)>"
// and generates an example for it. Names that do not parse produce a
// placeholder string.
func (g *ExampleGenerator) GenerateForName(name string) interface{} {
	if name == "" {
		return nil
	}
	ref, errs := parser.ParseType(name)
	if len(errs) > 0 || ref == nil {
		return "<" + name + ">"
	}
	return g.GenerateForType(ref)
}

// GenerateForType generates an example value for a parsed type
func (g *ExampleGenerator) GenerateForType(ref ast.TypeRef) interface{} {
	switch t := ref.(type) {
	case *ast.RefType:
		return g.GenerateForType(t.Elem)
	case *ast.TupleType:
		if len(t.Elems) == 0 {
			return nil
		}
		items := make([]interface{}, len(t.Elems))
		for i, e := range t.Elems {
			items[i] = g.GenerateForType(e)
		}
		return items
	case *ast.SliceType:
		if isByte(t.Elem) {
			return "0x0102"
		}
		return []interface{}{g.GenerateForType(t.Elem)}
	case *ast.ArrayType:
		if isByte(t.Elem) {
			return "0x" + strings.Repeat("00", int(t.Len))
		}
		n := int(t.Len)
		if n > maxArrayExample {
			n = maxArrayExample
		}
		items := make([]interface{}, n)
		for i := range items {
			items[i] = g.GenerateForType(t.Elem)
		}
		return items
	case *ast.PathType:
		return g.generatePathExample(t)
	default:
		return "example"
	}
}

func (g *ExampleGenerator) generatePathExample(t *ast.PathType) interface{} {
	name := t.Segments[len(t.Segments)-1]

	switch {
	case name == "Vec" && len(t.Args) == 1:
		if isByte(t.Args[0]) {
			return "0x0102"
		}
		return []interface{}{g.GenerateForType(t.Args[0])}
	case name == "Option" && len(t.Args) == 1:
		return g.GenerateForType(t.Args[0])
	case name == "Result" && len(t.Args) == 2:
		return map[string]interface{}{"Ok": g.GenerateForType(t.Args[0])}
	case (name == "BTreeMap" || name == "Mapping") && len(t.Args) == 2:
		return [][]interface{}{{g.GenerateForType(t.Args[0]), g.GenerateForType(t.Args[1])}}
	}

	if len(t.Args) == 0 {
		if v, ok := g.generatePrimitiveExample(name); ok {
			return v
		}
	}
	return "<" + t.String() + ">"
}

// generatePrimitiveExample covers the primitives plus the environment
// types contracts use everywhere
func (g *ExampleGenerator) generatePrimitiveExample(name string) (interface{}, bool) {
	switch name {
	case "bool":
		return true, true
	case "char":
		return "a", true
	case "str", "String":
		return "example string", true

	case "u8", "u16", "u32", "i8", "i16", "i32":
		return 42, true
	case "u64", "i64", "BlockNumber", "Timestamp":
		return 1700000000, true
	// 128 bit values exceed JSON's safe integer range
	case "u128", "i128", "Balance":
		return "1000000000000", true

	case "AccountId":
		return "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", true
	case "Hash":
		return "0x" + strings.Repeat("00", 32), true
	}
	return nil, false
}

func isByte(ref ast.TypeRef) bool {
	p, ok := ref.(*ast.PathType)
	return ok && len(p.Args) == 0 && p.Name() == "u8"
}

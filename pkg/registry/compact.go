package registry

// CompactType is a type table entry. Path segments are string symbols,
// params and every nested type reference are type symbols.
type CompactType struct {
	Path   []Symbol   `json:"path,omitempty"`
	Params []Symbol   `json:"params,omitempty"`
	Def    CompactDef `json:"def"`
}

// CompactDef holds exactly one populated definition.
type CompactDef struct {
	Primitive string            `json:"primitive,omitempty"`
	Composite *CompactComposite `json:"composite,omitempty"`
	Variant   *CompactVariant   `json:"variant,omitempty"`
	Sequence  *CompactSequence  `json:"sequence,omitempty"`
	Array     *CompactArray     `json:"array,omitempty"`
	Tuple     *CompactTuple     `json:"tuple,omitempty"`
}

// CompactField is a field of a composite or variant case. Name is zero for
// positional fields.
type CompactField struct {
	Name Symbol `json:"name,omitempty"`
	Type Symbol `json:"type"`
}

// CompactComposite is a struct with named or positional fields.
type CompactComposite struct {
	Fields []CompactField `json:"fields,omitempty"`
}

// CompactVariantCase is one case of an enum.
type CompactVariantCase struct {
	Name         Symbol         `json:"name"`
	Fields       []CompactField `json:"fields,omitempty"`
	Discriminant *uint64        `json:"discriminant,omitempty"`
}

// CompactVariant is an enum.
type CompactVariant struct {
	Cases []CompactVariantCase `json:"variants"`
}

// CompactSequence is a variable length sequence of Type.
type CompactSequence struct {
	Type Symbol `json:"type"`
}

// CompactArray is a fixed length array of Type.
type CompactArray struct {
	Len  uint32 `json:"len"`
	Type Symbol `json:"type"`
}

// CompactTuple lists the element types of a tuple.
type CompactTuple struct {
	Fields []Symbol `json:"fields"`
}

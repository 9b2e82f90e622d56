package abi

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/contractabi/pkg/registry"
)

// SourceInfo identifies the description a manifest was compiled from.
type SourceInfo struct {
	Hash     string `json:"hash"`
	Language string `json:"language,omitempty"`
	Compiler string `json:"compiler,omitempty"`
	File     string `json:"file,omitempty"`
}

// Project is a complete manifest: the compacted contract together with the
// registry tables its symbols refer to.
type Project struct {
	Source   *SourceInfo         `json:"source,omitempty"`
	Registry *registry.Registry  `json:"registry"`
	Contract CompactContractSpec `json:"contract"`
}

// NewProject compacts spec against a fresh registry.
func NewProject(spec ContractSpec) (*Project, error) {
	reg := registry.New()
	contract, err := spec.IntoCompact(reg)
	if err != nil {
		return nil, fmt.Errorf("compact contract %s: %w", spec.Name(), err)
	}
	return &Project{Registry: reg, Contract: contract}, nil
}

// String resolves a string symbol, returning "" for unknown symbols.
func (p *Project) String(sym registry.Symbol) string {
	s, _ := p.Registry.ResolveString(sym)
	return s
}

// DisplayType renders a compact type reference the way a user would read
// it: the display name when present, else the canonical type name.
func (p *Project) DisplayType(ts CompactTypeSpec) (string, error) {
	if len(ts.DisplayName) > 0 {
		segs := make([]string, 0, len(ts.DisplayName))
		for _, sym := range ts.DisplayName {
			s, ok := p.Registry.ResolveString(sym)
			if !ok {
				return "", fmt.Errorf("%w: string %d", registry.ErrUnknownSymbol, sym)
			}
			segs = append(segs, s)
		}
		return strings.Join(segs, "::"), nil
	}
	return p.Registry.TypeName(ts.Type)
}

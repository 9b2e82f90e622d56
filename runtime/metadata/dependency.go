package metadata

import (
	"fmt"
	"strconv"

	"github.com/conduit-lang/contractabi/pkg/registry"
)

// DependencyOptions configures type dependency queries
type DependencyOptions struct {
	Depth   int  // Maximum traversal depth (0 = unlimited)
	Reverse bool // Reverse traversal (find the types containing this one)
}

// DependencyNode is a type in a dependency graph
type DependencyNode struct {
	ID   registry.Symbol `json:"id"`
	Name string          `json:"name"`
	Kind string          `json:"kind"`
}

// DependencyEdge says that From contains To. Via names the position:
// a field name, a tuple index, "elem" or "param".
type DependencyEdge struct {
	From registry.Symbol `json:"from"`
	To   registry.Symbol `json:"to"`
	Via  string          `json:"via"`
}

// DependencyGraph is a set of types and their containment edges
type DependencyGraph struct {
	Root  registry.Symbol                     `json:"root,omitempty"`
	Nodes map[registry.Symbol]*DependencyNode `json:"nodes"`
	Edges []DependencyEdge                    `json:"edges"`
}

func newGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes: make(map[registry.Symbol]*DependencyNode),
		Edges: make([]DependencyEdge, 0),
	}
}

// BuildDependencyGraph constructs the containment graph of a type table
func BuildDependencyGraph(reg *registry.Registry) (*DependencyGraph, error) {
	graph := newGraph()
	if reg == nil {
		return graph, nil
	}

	for i := 0; i < reg.TypeCount(); i++ {
		sym := registry.Symbol(i + 1)
		ct, _ := reg.ResolveType(sym)
		name, err := reg.TypeName(sym)
		if err != nil {
			return nil, err
		}
		graph.Nodes[sym] = &DependencyNode{ID: sym, Name: name, Kind: defKind(ct.Def)}

		edges, err := typeEdges(reg, sym, ct)
		if err != nil {
			return nil, err
		}
		graph.Edges = append(graph.Edges, edges...)
	}
	return graph, nil
}

func typeEdges(reg *registry.Registry, from registry.Symbol, ct registry.CompactType) ([]DependencyEdge, error) {
	var edges []DependencyEdge
	add := func(to registry.Symbol, via string) {
		edges = append(edges, DependencyEdge{From: from, To: to, Via: via})
	}
	fields := func(prefix string, fs []registry.CompactField) error {
		for i, f := range fs {
			via := strconv.Itoa(i)
			if !f.Name.IsZero() {
				name, ok := reg.ResolveString(f.Name)
				if !ok {
					return fmt.Errorf("%w: string %d", registry.ErrUnknownSymbol, f.Name)
				}
				via = name
			}
			add(f.Type, prefix+via)
		}
		return nil
	}

	for _, p := range ct.Params {
		add(p, "param")
	}
	d := ct.Def
	switch {
	case d.Composite != nil:
		if err := fields("", d.Composite.Fields); err != nil {
			return nil, err
		}
	case d.Variant != nil:
		for _, c := range d.Variant.Cases {
			name, ok := reg.ResolveString(c.Name)
			if !ok {
				return nil, fmt.Errorf("%w: string %d", registry.ErrUnknownSymbol, c.Name)
			}
			if err := fields(name+".", c.Fields); err != nil {
				return nil, err
			}
		}
	case d.Sequence != nil:
		add(d.Sequence.Type, "elem")
	case d.Array != nil:
		add(d.Array.Type, "elem")
	case d.Tuple != nil:
		for i, t := range d.Tuple.Fields {
			add(t, strconv.Itoa(i))
		}
	}
	return edges, nil
}

// fullGraph returns the cached graph of the loaded manifest. Called with
// mu held for reading.
func (r *Registry) fullGraph() (*DependencyGraph, error) {
	if cached := r.getCached("deps:full"); cached != nil {
		return cached.(*DependencyGraph), nil
	}
	graph, err := BuildDependencyGraph(r.project.Registry)
	if err != nil {
		return nil, err
	}
	r.setCached("deps:full", graph)
	return graph, nil
}

// reaches reports whether target is from or is nested somewhere inside it.
func (r *Registry) reaches(from, target registry.Symbol) bool {
	if from == target {
		return true
	}
	graph, err := r.fullGraph()
	if err != nil {
		return false
	}
	sub := extractSubgraph(graph, from, DependencyOptions{})
	_, ok := sub.Nodes[target]
	return ok
}

// TypeDependencies returns the types reachable from typeName, or with
// opts.Reverse the types that contain it.
func (r *Registry) TypeDependencies(typeName string, opts DependencyOptions) (*DependencyGraph, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.project == nil {
		return nil, ErrNotLoaded
	}
	sym, ok := r.typesByName[typeName]
	if !ok {
		return nil, fmt.Errorf("type %s: %w", typeName, ErrNotFound)
	}

	cacheKey := fmt.Sprintf("deps:%d:%d:%v", sym, opts.Depth, opts.Reverse)
	if cached := r.getCached(cacheKey); cached != nil {
		return cached.(*DependencyGraph), nil
	}

	graph, err := r.fullGraph()
	if err != nil {
		return nil, err
	}
	result := extractSubgraph(graph, sym, opts)
	r.setCached(cacheKey, result)
	return result, nil
}

// QueryTypeDependencies runs TypeDependencies against the global registry.
func QueryTypeDependencies(typeName string, opts DependencyOptions) (*DependencyGraph, error) {
	return globalRegistry.TypeDependencies(typeName, opts)
}

// extractSubgraph extracts a subgraph using BFS traversal
func extractSubgraph(fullGraph *DependencyGraph, start registry.Symbol, opts DependencyOptions) *DependencyGraph {
	result := newGraph()
	result.Root = start

	visited := make(map[registry.Symbol]bool)
	queue := []depthNode{{id: start, depth: 0}}

	if node, exists := fullGraph.Nodes[start]; exists {
		result.Nodes[start] = node
	}
	visited[start] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if opts.Depth > 0 && current.depth >= opts.Depth {
			continue
		}

		var edges []DependencyEdge
		if opts.Reverse {
			edges = findIncomingEdges(fullGraph, current.id)
		} else {
			edges = findOutgoingEdges(fullGraph, current.id)
		}

		for _, edge := range edges {
			result.Edges = append(result.Edges, edge)

			next := edge.To
			if opts.Reverse {
				next = edge.From
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if node, exists := fullGraph.Nodes[next]; exists {
				result.Nodes[next] = node
			}
			queue = append(queue, depthNode{id: next, depth: current.depth + 1})
		}
	}

	return result
}

type depthNode struct {
	id    registry.Symbol
	depth int
}

func findOutgoingEdges(graph *DependencyGraph, node registry.Symbol) []DependencyEdge {
	var edges []DependencyEdge
	for _, edge := range graph.Edges {
		if edge.From == node {
			edges = append(edges, edge)
		}
	}
	return edges
}

func findIncomingEdges(graph *DependencyGraph, node registry.Symbol) []DependencyEdge {
	var edges []DependencyEdge
	for _, edge := range graph.Edges {
		if edge.To == node {
			edges = append(edges, edge)
		}
	}
	return edges
}

package metadata

import (
	"github.com/conduit-lang/contractabi/pkg/abi"
	"github.com/conduit-lang/contractabi/pkg/registry"
)

// TypeRef is a resolved type reference.
type TypeRef struct {
	ID registry.Symbol `json:"id"`
	// Type is the canonical type name, e.g. "Vec<u8>"
	Type string `json:"type"`
	// Display is the user facing name: the display name when the
	// manifest carries one, otherwise Type.
	Display string `json:"display"`
}

// ArgInfo is a resolved constructor or message argument.
type ArgInfo struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// EventArgInfo is a resolved event field.
type EventArgInfo struct {
	Name    string   `json:"name"`
	Type    TypeRef  `json:"type"`
	Indexed bool     `json:"indexed"`
	Docs    []string `json:"docs,omitempty"`
}

// ConstructorInfo is a resolved constructor entry.
type ConstructorInfo struct {
	Name     string       `json:"name"`
	Selector abi.Selector `json:"selector"`
	Args     []ArgInfo    `json:"args"`
	Docs     []string     `json:"docs,omitempty"`
}

// MessageInfo is a resolved message entry. Returns is nil for messages
// without a return value.
type MessageInfo struct {
	Name     string       `json:"name"`
	Selector abi.Selector `json:"selector"`
	Mutates  bool         `json:"mutates"`
	Args     []ArgInfo    `json:"args"`
	Returns  *TypeRef     `json:"returns"`
	Docs     []string     `json:"docs,omitempty"`
}

// EventInfo is a resolved event entry.
type EventInfo struct {
	Name string         `json:"name"`
	Args []EventArgInfo `json:"args"`
	Docs []string       `json:"docs,omitempty"`
}

// ContractInfo is the fully resolved contract of a manifest.
type ContractInfo struct {
	Name         string            `json:"name"`
	Source       *abi.SourceInfo   `json:"source,omitempty"`
	Constructors []ConstructorInfo `json:"constructors"`
	Messages     []MessageInfo     `json:"messages"`
	Events       []EventInfo       `json:"events"`
	Docs         []string          `json:"docs,omitempty"`
}

// EntryKind distinguishes the two callable kinds sharing the selector space.
type EntryKind string

const (
	KindConstructor EntryKind = "constructor"
	KindMessage     EntryKind = "message"
)

// SelectorEntry is the result of a selector lookup. Exactly one of
// Constructor and Message is set.
type SelectorEntry struct {
	Kind        EntryKind        `json:"kind"`
	Name        string           `json:"name"`
	Constructor *ConstructorInfo `json:"constructor,omitempty"`
	Message     *MessageInfo     `json:"message,omitempty"`
}

// TypeEntry is one row of the resolved type table.
type TypeEntry struct {
	ID   registry.Symbol `json:"id"`
	Name string          `json:"name"`
	Kind string          `json:"kind"`
}

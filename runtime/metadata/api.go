package metadata

import "strings"

// GetRegistry returns the global registry API.
// This is the primary entry point for runtime introspection.
//
// Example usage:
//
//	if err := metadata.RegisterManifest(data); err != nil {
//		log.Fatal(err)
//	}
//	for _, msg := range metadata.GetRegistry().Messages(metadata.MessageFilter{}) {
//		fmt.Printf("%s %s\n", msg.Selector.Hex(), msg.Name)
//	}
func GetRegistry() *RegistryAPI {
	return &RegistryAPI{registry: globalRegistry}
}

// NewAPI wraps a registry instance, e.g. one owned by a server.
func NewAPI(r *Registry) *RegistryAPI {
	return &RegistryAPI{registry: r}
}

// RegistryAPI provides filtered queries on top of a Registry.
type RegistryAPI struct {
	registry *Registry
}

// MessageFilter provides optional filters for message queries.
// All fields are optional and combined with AND logic.
//
// Example usage:
//
//	mutates := true
//	msgs := api.Messages(metadata.MessageFilter{Mutates: &mutates})
//
//	// Names starting with "get_"
//	msgs = api.Messages(metadata.MessageFilter{Name: "get_*"})
type MessageFilter struct {
	Mutates *bool  // Optional: only mutating or only read-only messages
	Name    string // Optional: name pattern, "*" wildcard at either end
	Type    string // Optional: messages using this type
}

// Registry returns the wrapped registry.
func (a *RegistryAPI) Registry() *Registry {
	return a.registry
}

// Contract returns the resolved contract.
func (a *RegistryAPI) Contract() (*ContractInfo, error) {
	return a.registry.Contract()
}

// Messages returns messages matching filter, in declaration order.
func (a *RegistryAPI) Messages(filter MessageFilter) []MessageInfo {
	var msgs []MessageInfo
	switch {
	case filter.Type != "":
		msgs = a.registry.MessagesByType(filter.Type)
	case filter.Mutates != nil && *filter.Mutates:
		msgs = a.registry.MutatingMessages()
	default:
		msgs = a.registry.Messages()
	}

	var result []MessageInfo
	for _, msg := range msgs {
		if filter.Mutates != nil && msg.Mutates != *filter.Mutates {
			continue
		}
		if filter.Name != "" && !matchPattern(msg.Name, filter.Name) {
			continue
		}
		result = append(result, msg)
	}
	return result
}

// Message finds a message by name.
func (a *RegistryAPI) Message(name string) (*MessageInfo, error) {
	return a.registry.Message(name)
}

// Events returns events whose name matches pattern. An empty pattern
// matches every event.
func (a *RegistryAPI) Events(pattern string) []EventInfo {
	events := a.registry.Events()
	if pattern == "" {
		return events
	}
	var result []EventInfo
	for _, ev := range events {
		if matchPattern(ev.Name, pattern) {
			result = append(result, ev)
		}
	}
	return result
}

// Dependencies queries the type dependency graph.
func (a *RegistryAPI) Dependencies(typeName string, opts DependencyOptions) (*DependencyGraph, error) {
	return a.registry.TypeDependencies(typeName, opts)
}

// matchPattern matches a string against a pattern with wildcards
func matchPattern(s, pattern string) bool {
	if pattern == s || pattern == "*" {
		return true
	}

	// Contains match (*foo*)
	if len(pattern) > 1 && strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") {
		return strings.Contains(s, strings.Trim(pattern, "*"))
	}

	// Prefix match (pattern ends with *)
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(s, strings.TrimSuffix(pattern, "*"))
	}

	// Suffix match (pattern starts with *)
	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(s, strings.TrimPrefix(pattern, "*"))
	}

	return false
}

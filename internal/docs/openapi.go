package docs

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OpenAPIGenerator describes the explorer API serving one manifest as an
// OpenAPI 3.0 document. Path parameters enumerate the contract's own
// message names, event names and selectors.
type OpenAPIGenerator struct {
	config *Config
}

// NewOpenAPIGenerator creates a new OpenAPI generator
func NewOpenAPIGenerator(config *Config) *OpenAPIGenerator {
	return &OpenAPIGenerator{
		config: config,
	}
}

// Render writes the OpenAPI document as indented JSON
func (g *OpenAPIGenerator) Render(doc *Documentation, w io.Writer) error {
	data, err := json.MarshalIndent(g.CreateSpec(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal OpenAPI spec: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// CreateSpec creates the complete OpenAPI document
func (g *OpenAPIGenerator) CreateSpec(doc *Documentation) map[string]interface{} {
	version := doc.Version
	if version == "" {
		version = doc.Fingerprint
	}
	description := fmt.Sprintf("Read-only explorer for the %s contract manifest.", doc.Name)
	if doc.Description != "" {
		description += "\n\n" + doc.Description
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       doc.Title + " explorer",
			"version":     version,
			"description": description,
		},
		"servers":    g.createServers(),
		"paths":      g.createPaths(doc),
		"components": g.createComponents(),
	}
}

// createServers creates the servers section
func (g *OpenAPIGenerator) createServers() []map[string]interface{} {
	if g.config != nil && g.config.BaseURL != "" {
		return []map[string]interface{}{{
			"url":         strings.TrimRight(g.config.BaseURL, "/"),
			"description": "Explorer",
		}}
	}
	return []map[string]interface{}{{
		"url":         "http://localhost:8080",
		"description": "Local explorer (contractabi serve)",
	}}
}

func (g *OpenAPIGenerator) createPaths(doc *Documentation) map[string]interface{} {
	var messageNames, eventNames, selectors []string
	for _, m := range doc.Messages {
		messageNames = append(messageNames, m.Name)
		selectors = append(selectors, m.Selector)
	}
	for _, c := range doc.Constructors {
		selectors = append(selectors, c.Selector)
	}
	for _, e := range doc.Events {
		eventNames = append(eventNames, e.Name)
	}

	return map[string]interface{}{
		"/healthz": get("Liveness", "health", nil, okResponse("Health", ref("Health"))),
		"/contract": get("Resolved contract", "getContract", nil,
			okResponse("The contract", ref("Contract"))),
		"/constructors": get("List constructors", "listConstructors", nil,
			okResponse("Constructors", arrayOf(ref("Constructor")))),
		"/messages": get("List messages", "listMessages", []map[string]interface{}{
			queryParam("mutates", "boolean", "Only mutating (true) or read-only (false) messages"),
			queryParam("name", "string", `Name pattern, "*" wildcard at either end`),
			queryParam("type", "string", "Only messages using this type"),
		}, okResponse("Messages", arrayOf(ref("Message")))),
		"/messages/{name}": get("Get a message", "getMessage", []map[string]interface{}{
			pathParam("name", "Message name", messageNames),
		}, okResponse("The message", ref("Message")), notFound()),
		"/selectors/{selector}": get("Look up a selector", "getSelector", []map[string]interface{}{
			pathParam("selector", "0x-prefixed 4 byte selector", selectors),
		}, okResponse("Constructor or message", ref("SelectorEntry")), notFound(), badRequest()),
		"/events": get("List events", "listEvents", []map[string]interface{}{
			queryParam("name", "string", `Name pattern, "*" wildcard at either end`),
		}, okResponse("Events", arrayOf(ref("Event")))),
		"/events/{name}": get("Get an event", "getEvent", []map[string]interface{}{
			pathParam("name", "Event name", eventNames),
		}, okResponse("The event", ref("Event")), notFound()),
		"/types/dependencies": get("Type dependency graph", "getTypeDependencies", []map[string]interface{}{
			queryParam("type", "string", "Root type; the whole graph when empty"),
			queryParam("reverse", "boolean", "Follow edges to the types containing the root"),
			queryParam("depth", "integer", "Maximum depth, 0 for unlimited"),
		}, okResponse("Dependency graph", map[string]interface{}{"type": "object"}), notFound()),
		"/registry/strings": get("Interned strings", "listStrings", nil,
			okResponse("Strings by symbol", arrayOf(map[string]interface{}{"type": "string"}))),
		"/registry/types": get("Type table", "listTypes", nil,
			okResponse("Types", arrayOf(ref("TypeEntry")))),
		"/admin/reload": map[string]interface{}{
			"post": map[string]interface{}{
				"summary":     "Reload the manifest from its source",
				"operationId": "reload",
				"tags":        []string{"admin"},
				"security":    []map[string]interface{}{{"bearerAuth": []string{}}},
				"responses": map[string]interface{}{
					"200": okResponse("Reload outcome", ref("ReloadResult")),
					"401": errorResponse("Missing, invalid or expired token"),
					"403": errorResponse("Token lacks the reload scope"),
					"422": errorResponse("The new manifest failed to load; the previous one keeps serving"),
				},
			},
		},
	}
}

func (g *OpenAPIGenerator) createComponents() map[string]interface{} {
	str := map[string]interface{}{"type": "string"}
	strs := arrayOf(str)
	typeRef := ref("TypeRef")
	args := arrayOf(ref("Arg"))

	return map[string]interface{}{
		"securitySchemes": map[string]interface{}{
			"bearerAuth": map[string]interface{}{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
		},
		"schemas": map[string]interface{}{
			"Error":  object(map[string]interface{}{"error": str, "message": str}),
			"Health": object(map[string]interface{}{"status": str, "contract": str}),
			"TypeRef": object(map[string]interface{}{
				"id":      map[string]interface{}{"type": "integer"},
				"type":    str,
				"display": str,
			}),
			"Arg": object(map[string]interface{}{"name": str, "type": typeRef}),
			"Constructor": object(map[string]interface{}{
				"name": str, "selector": str, "args": args, "docs": strs,
			}),
			"Message": object(map[string]interface{}{
				"name": str, "selector": str, "mutates": map[string]interface{}{"type": "boolean"},
				"args": args, "returns": typeRef, "docs": strs,
			}),
			"Event": object(map[string]interface{}{
				"name": str,
				"args": arrayOf(object(map[string]interface{}{
					"name": str, "type": typeRef, "indexed": map[string]interface{}{"type": "boolean"}, "docs": strs,
				})),
				"docs": strs,
			}),
			"Contract": object(map[string]interface{}{
				"name":         str,
				"constructors": arrayOf(ref("Constructor")),
				"messages":     arrayOf(ref("Message")),
				"events":       arrayOf(ref("Event")),
				"docs":         strs,
			}),
			"SelectorEntry": object(map[string]interface{}{
				"kind": map[string]interface{}{"type": "string", "enum": []string{"constructor", "message"}},
				"name": str, "constructor": ref("Constructor"), "message": ref("Message"),
			}),
			"TypeEntry": object(map[string]interface{}{
				"id": map[string]interface{}{"type": "integer"}, "name": str, "kind": str,
			}),
			"ReloadResult": object(map[string]interface{}{
				"contract": str, "fingerprint": str, "previous": str, "changed": map[string]interface{}{"type": "boolean"},
			}),
		},
	}
}

func get(summary, id string, params []map[string]interface{}, ok map[string]interface{}, more ...map[int]map[string]interface{}) map[string]interface{} {
	responses := map[string]interface{}{"200": ok}
	for _, m := range more {
		for code, r := range m {
			responses[fmt.Sprintf("%d", code)] = r
		}
	}
	op := map[string]interface{}{
		"summary":     summary,
		"operationId": id,
		"tags":        []string{"explorer"},
		"responses":   responses,
	}
	if len(params) > 0 {
		op["parameters"] = params
	}
	return map[string]interface{}{"get": op}
}

func okResponse(description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func errorResponse(description string) map[string]interface{} {
	return okResponse(description, ref("Error"))
}

func notFound() map[int]map[string]interface{} {
	return map[int]map[string]interface{}{404: errorResponse("Not found")}
}

func badRequest() map[int]map[string]interface{} {
	return map[int]map[string]interface{}{400: errorResponse("Malformed selector")}
}

func queryParam(name, typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"required":    false,
		"description": description,
		"schema":      map[string]interface{}{"type": typ},
	}
}

func pathParam(name, description string, values []string) map[string]interface{} {
	schema := map[string]interface{}{"type": "string"}
	p := map[string]interface{}{
		"name":        name,
		"in":          "path",
		"required":    true,
		"description": description,
		"schema":      schema,
	}
	if len(values) > 0 {
		schema["enum"] = values
		p["example"] = values[0]
	}
	return p
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func arrayOf(items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": items}
}

func object(props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": props}
}

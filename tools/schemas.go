// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package tools

// Spec describes one tool for /tools/list responses.
type Spec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// List returns the descriptors of every registered tool. The listing is
// not filtered by scope; enforcement happens at call time.
func List() []Spec {
	return []Spec{
		{
			Name:        "search",
			Description: "Search for records in a model",
			InputSchema: objectSchema(map[string]any{
				"model":  prop("string", "Odoo model name (e.g., res.partner)"),
				"domain": propDefault("array", "Search domain filter", []any{}),
				"limit":  propDefault("integer", "Max records to return", 100),
				"offset": propDefault("integer", "Records to skip", 0),
			}, "model"),
		},
		{
			Name:        "read",
			Description: "Read records from a model",
			InputSchema: objectSchema(map[string]any{
				"model":  prop("string", "Odoo model name"),
				"ids":    prop("array", "Record IDs to read"),
				"fields": propDefault("array", "Fields to return", []any{}),
			}, "model", "ids"),
		},
		{
			Name:        "search_read",
			Description: "Search and read records in one call",
			InputSchema: objectSchema(map[string]any{
				"model":  prop("string", "Odoo model name"),
				"domain": propDefault("array", "Search domain filter", []any{}),
				"fields": propDefault("array", "Fields to return", []any{}),
				"limit":  propDefault("integer", "Max records to return", 100),
				"offset": propDefault("integer", "Records to skip", 0),
			}, "model"),
		},
		{
			Name:        "search_count",
			Description: "Count records matching domain",
			InputSchema: objectSchema(map[string]any{
				"model":  prop("string", "Odoo model name"),
				"domain": propDefault("array", "Search domain filter", []any{}),
			}, "model"),
		},
		{
			Name:        "fields_get",
			Description: "Get field definitions for a model",
			InputSchema: objectSchema(map[string]any{
				"model":  prop("string", "Odoo model name"),
				"fields": propDefault("array", "Specific fields to describe", []any{}),
			}, "model"),
		},
		{
			Name:        "default_get",
			Description: "Get default values for model fields",
			InputSchema: objectSchema(map[string]any{
				"model":  prop("string", "Odoo model name"),
				"fields": propDefault("array", "Fields to get defaults for", []any{}),
			}, "model"),
		},
		{
			Name:        "create",
			Description: "Create a new record in a model",
			InputSchema: objectSchema(map[string]any{
				"model":  prop("string", "Odoo model name"),
				"values": prop("object", "Field values for new record"),
			}, "model", "values"),
		},
		{
			Name:        "write",
			Description: "Update existing records in a model",
			InputSchema: objectSchema(map[string]any{
				"model":  prop("string", "Odoo model name"),
				"ids":    prop("array", "Record IDs to update"),
				"values": prop("object", "Field values to set"),
			}, "model", "ids", "values"),
		},
		{
			Name:        "unlink",
			Description: "Delete records from a model",
			InputSchema: objectSchema(map[string]any{
				"model": prop("string", "Odoo model name"),
				"ids":   prop("array", "Record IDs to delete"),
			}, "model", "ids"),
		},
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func propDefault(typ, description string, def any) map[string]any {
	return map[string]any{"type": typ, "description": description, "default": def}
}

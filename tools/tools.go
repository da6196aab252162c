// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"sort"

	"odooflow/gateway/odoo"
)

// Handler executes one tool against a client. Arguments arrive as the
// decoded JSON "arguments" object of a /tools/call request.
type Handler func(ctx context.Context, client *odoo.Client, args map[string]any) (map[string]any, error)

// ArgumentError reports tool arguments that are missing or of the wrong
// type. It is classified separately from execution failures so callers
// can report an invalid request rather than a server error.
type ArgumentError struct {
	Tool    string
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Tool + ": " + e.Message
}

// registry maps tool names to their handlers. Scope enforcement is not
// done here: it happens inside the client on every call.
var registry = map[string]Handler{
	"search":       searchTool,
	"read":         readTool,
	"search_read":  searchReadTool,
	"search_count": searchCountTool,
	"fields_get":   fieldsGetTool,
	"default_get":  defaultGetTool,
	"create":       createTool,
	"write":        writeTool,
	"unlink":       unlinkTool,
}

// Lookup returns the handler for a tool name.
func Lookup(name string) (Handler, bool) {
	h, ok := registry[name]
	return h, ok
}

// Names returns all registered tool names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func searchTool(ctx context.Context, client *odoo.Client, args map[string]any) (map[string]any, error) {
	model, err := stringArg("search", args, "model")
	if err != nil {
		return nil, err
	}
	domain, err := listArg("search", args, "domain")
	if err != nil {
		return nil, err
	}
	limit, err := intArg("search", args, "limit", odoo.DefaultLimit)
	if err != nil {
		return nil, err
	}
	offset, err := intArg("search", args, "offset", 0)
	if err != nil {
		return nil, err
	}

	ids, err := client.Search(ctx, model, domain, limit, offset)
	if err != nil {
		return nil, err
	}
	return map[string]any{"ids": ids, "count": len(ids), "model": model}, nil
}

func readTool(ctx context.Context, client *odoo.Client, args map[string]any) (map[string]any, error) {
	model, err := stringArg("read", args, "model")
	if err != nil {
		return nil, err
	}
	ids, err := idsArg("read", args, "ids", true)
	if err != nil {
		return nil, err
	}
	fields, err := fieldsArg("read", args, "fields")
	if err != nil {
		return nil, err
	}

	records, err := client.Read(ctx, model, ids, fields)
	if err != nil {
		return nil, err
	}
	return map[string]any{"records": records, "count": len(records), "model": model}, nil
}

func searchReadTool(ctx context.Context, client *odoo.Client, args map[string]any) (map[string]any, error) {
	model, err := stringArg("search_read", args, "model")
	if err != nil {
		return nil, err
	}
	domain, err := listArg("search_read", args, "domain")
	if err != nil {
		return nil, err
	}
	fields, err := fieldsArg("search_read", args, "fields")
	if err != nil {
		return nil, err
	}
	limit, err := intArg("search_read", args, "limit", odoo.DefaultLimit)
	if err != nil {
		return nil, err
	}
	offset, err := intArg("search_read", args, "offset", 0)
	if err != nil {
		return nil, err
	}

	records, err := client.SearchRead(ctx, model, domain, fields, limit, offset)
	if err != nil {
		return nil, err
	}
	return map[string]any{"records": records, "count": len(records), "model": model}, nil
}

func searchCountTool(ctx context.Context, client *odoo.Client, args map[string]any) (map[string]any, error) {
	model, err := stringArg("search_count", args, "model")
	if err != nil {
		return nil, err
	}
	domain, err := listArg("search_count", args, "domain")
	if err != nil {
		return nil, err
	}

	count, err := client.SearchCount(ctx, model, domain)
	if err != nil {
		return nil, err
	}
	return map[string]any{"count": count, "model": model}, nil
}

func fieldsGetTool(ctx context.Context, client *odoo.Client, args map[string]any) (map[string]any, error) {
	model, err := stringArg("fields_get", args, "model")
	if err != nil {
		return nil, err
	}
	fields, err := fieldsArg("fields_get", args, "fields")
	if err != nil {
		return nil, err
	}

	defs, err := client.FieldsGet(ctx, model, fields)
	if err != nil {
		return nil, err
	}
	return map[string]any{"fields": defs, "count": len(defs), "model": model}, nil
}

func defaultGetTool(ctx context.Context, client *odoo.Client, args map[string]any) (map[string]any, error) {
	model, err := stringArg("default_get", args, "model")
	if err != nil {
		return nil, err
	}
	fields, err := fieldsArg("default_get", args, "fields")
	if err != nil {
		return nil, err
	}

	defaults, err := client.DefaultGet(ctx, model, fields)
	if err != nil {
		return nil, err
	}
	return map[string]any{"defaults": defaults, "model": model}, nil
}

func createTool(ctx context.Context, client *odoo.Client, args map[string]any) (map[string]any, error) {
	model, err := stringArg("create", args, "model")
	if err != nil {
		return nil, err
	}
	values, err := mapArg("create", args, "values", true)
	if err != nil {
		return nil, err
	}

	id, err := client.Create(ctx, model, values)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "model": model, "status": "created"}, nil
}

func writeTool(ctx context.Context, client *odoo.Client, args map[string]any) (map[string]any, error) {
	model, err := stringArg("write", args, "model")
	if err != nil {
		return nil, err
	}
	ids, err := idsArg("write", args, "ids", true)
	if err != nil {
		return nil, err
	}
	values, err := mapArg("write", args, "values", true)
	if err != nil {
		return nil, err
	}

	ok, err := client.Write(ctx, model, ids, values)
	if err != nil {
		return nil, err
	}
	return map[string]any{"success": ok, "count": len(ids), "model": model, "status": "updated"}, nil
}

func unlinkTool(ctx context.Context, client *odoo.Client, args map[string]any) (map[string]any, error) {
	model, err := stringArg("unlink", args, "model")
	if err != nil {
		return nil, err
	}
	ids, err := idsArg("unlink", args, "ids", true)
	if err != nil {
		return nil, err
	}

	ok, err := client.Unlink(ctx, model, ids)
	if err != nil {
		return nil, err
	}
	return map[string]any{"success": ok, "count": len(ids), "model": model, "status": "deleted"}, nil
}

// Argument decoding helpers. JSON numbers decode as float64; id lists
// accept any integral value.

func stringArg(tool string, args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", &ArgumentError{Tool: tool, Message: fmt.Sprintf("missing required argument '%s'", key)}
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", &ArgumentError{Tool: tool, Message: fmt.Sprintf("argument '%s' must be a non-empty string", key)}
	}
	return s, nil
}

func intArg(tool string, args map[string]any, key string, fallback int) (int, error) {
	v, ok := args[key]
	if !ok {
		return fallback, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, &ArgumentError{Tool: tool, Message: fmt.Sprintf("argument '%s' must be an integer", key)}
	}
}

func listArg(tool string, args map[string]any, key string) ([]any, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return []any{}, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &ArgumentError{Tool: tool, Message: fmt.Sprintf("argument '%s' must be an array", key)}
	}
	return list, nil
}

func fieldsArg(tool string, args map[string]any, key string) ([]string, error) {
	list, err := listArg(tool, args, key)
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, &ArgumentError{Tool: tool, Message: fmt.Sprintf("argument '%s' must be an array of strings", key)}
		}
		fields = append(fields, s)
	}
	return fields, nil
}

func idsArg(tool string, args map[string]any, key string, required bool) ([]int64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return nil, &ArgumentError{Tool: tool, Message: fmt.Sprintf("missing required argument '%s'", key)}
		}
		return []int64{}, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &ArgumentError{Tool: tool, Message: fmt.Sprintf("argument '%s' must be an array of integers", key)}
	}

	ids := make([]int64, 0, len(list))
	for _, item := range list {
		switch n := item.(type) {
		case float64:
			ids = append(ids, int64(n))
		case int:
			ids = append(ids, int64(n))
		case int64:
			ids = append(ids, n)
		default:
			return nil, &ArgumentError{Tool: tool, Message: fmt.Sprintf("argument '%s' must be an array of integers", key)}
		}
	}
	return ids, nil
}

func mapArg(tool string, args map[string]any, key string, required bool) (map[string]any, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return nil, &ArgumentError{Tool: tool, Message: fmt.Sprintf("missing required argument '%s'", key)}
		}
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &ArgumentError{Tool: tool, Message: fmt.Sprintf("argument '%s' must be an object", key)}
	}
	return m, nil
}

// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package odoo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"odooflow/gateway/auth"
	"odooflow/gateway/connection"
)

// DefaultLimit caps search results when the caller does not ask for a
// specific limit.
const DefaultLimit = 100

// RemoteError reports a call the backend accepted in form but rejected
// in substance (invalid arguments, access rules, constraint
// violations). The backend's message passes through unchanged.
type RemoteError struct {
	Model   string
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return "odoo error: " + e.Message
}

// ClientError reports any other failure of a remote call: transport
// breakage mid-call, undecodable results, unexpected value shapes.
type ClientError struct {
	Model   string
	Method  string
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s.%s: %s: %s", e.Model, e.Method, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s.%s: %s", e.Model, e.Method, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Client executes Odoo operations for one identity under one scope.
// Every call, including the convenience wrappers, goes through
// ExecuteKw and its enforcement sequence: permission check first, then
// connection resolution, then the remote call. A denied operation never
// touches the network.
type Client struct {
	url      string
	db       string
	username string
	password string
	scope    *auth.Scope
	manager  *connection.Manager
	logger   *log.Logger
}

// NewClient binds a client to an identity, its parsed scope and a
// connection manager.
func NewClient(url, db, username, password string, scope *auth.Scope, manager *connection.Manager) *Client {
	return &Client{
		url:      url,
		db:       db,
		username: username,
		password: password,
		scope:    scope,
		manager:  manager,
		logger:   log.New(os.Stdout, "[ODOO] ", log.LstdFlags),
	}
}

// ExecuteKw runs model.method with the given positional and keyword
// arguments. Outcomes are always one of: *auth.PermissionError (denied
// before any network activity), *connection.ConnError (could not obtain
// an authenticated connection), *RemoteError (backend rejected the
// call), or *ClientError (anything else); no raw transport error
// crosses this boundary.
func (c *Client) ExecuteKw(ctx context.Context, model, method string, args []any, kwargs map[string]any) (any, error) {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	if err := c.scope.EnforceCall(model, method); err != nil {
		c.logger.Printf("Permission denied for %s: %v", c.username, err)
		return nil, err
	}

	conn, err := c.manager.GetConnection(ctx, c.url, c.db, c.username, c.password, c.scope.String())
	if err != nil {
		c.logger.Printf("Connection failed for %s: %v", c.username, err)
		return nil, err
	}

	result, err := conn.Caller.ExecuteKw(ctx, conn.DB, conn.UID, c.password, model, method, args, kwargs)
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) {
			c.logger.Printf("Odoo rejected %s.%s: %s", model, method, remote.Message)
			return nil, remote
		}
		return nil, &ClientError{Model: model, Method: method, Message: "rpc call failed", Cause: err}
	}

	return result, nil
}

// Search returns the ids of records matching the domain.
func (c *Client) Search(ctx context.Context, model string, domain []any, limit, offset int) ([]int64, error) {
	if domain == nil {
		domain = []any{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	result, err := c.ExecuteKw(ctx, model, "search", []any{domain}, map[string]any{"limit": limit, "offset": offset})
	if err != nil {
		return nil, err
	}
	return c.toIDList(model, "search", result)
}

// Read fetches the given fields of the identified records. An empty
// fields list reads all fields.
func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error) {
	kwargs := map[string]any{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}

	result, err := c.ExecuteKw(ctx, model, "read", []any{ids}, kwargs)
	if err != nil {
		return nil, err
	}
	return c.toRecordList(model, "read", result)
}

// SearchRead combines Search and Read in a single roundtrip.
func (c *Client) SearchRead(ctx context.Context, model string, domain []any, fields []string, limit, offset int) ([]map[string]any, error) {
	if domain == nil {
		domain = []any{}
	}
	if fields == nil {
		fields = []string{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	kwargs := map[string]any{"fields": fields, "limit": limit, "offset": offset}
	result, err := c.ExecuteKw(ctx, model, "search_read", []any{domain}, kwargs)
	if err != nil {
		return nil, err
	}
	return c.toRecordList(model, "search_read", result)
}

// SearchCount returns the number of records matching the domain.
func (c *Client) SearchCount(ctx context.Context, model string, domain []any) (int64, error) {
	if domain == nil {
		domain = []any{}
	}

	result, err := c.ExecuteKw(ctx, model, "search_count", []any{domain}, nil)
	if err != nil {
		return 0, err
	}

	count, ok := toInt64(result)
	if !ok {
		return 0, &ClientError{Model: model, Method: "search_count", Message: fmt.Sprintf("unexpected result type %T", result)}
	}
	return count, nil
}

// FieldsGet returns field definitions for the model. An empty fields
// list describes every field.
func (c *Client) FieldsGet(ctx context.Context, model string, fields []string) (map[string]any, error) {
	if fields == nil {
		fields = []string{}
	}
	kwargs := map[string]any{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}

	result, err := c.ExecuteKw(ctx, model, "fields_get", []any{fields}, kwargs)
	if err != nil {
		return nil, err
	}
	return c.toRecordMap(model, "fields_get", result)
}

// DefaultGet returns default values for the given fields.
func (c *Client) DefaultGet(ctx context.Context, model string, fields []string) (map[string]any, error) {
	if fields == nil {
		fields = []string{}
	}

	result, err := c.ExecuteKw(ctx, model, "default_get", []any{fields}, nil)
	if err != nil {
		return nil, err
	}
	return c.toRecordMap(model, "default_get", result)
}

// Create inserts a record and returns its id.
func (c *Client) Create(ctx context.Context, model string, values map[string]any) (int64, error) {
	result, err := c.ExecuteKw(ctx, model, "create", []any{values}, nil)
	if err != nil {
		return 0, err
	}

	id, ok := toInt64(result)
	if !ok {
		return 0, &ClientError{Model: model, Method: "create", Message: fmt.Sprintf("unexpected result type %T", result)}
	}
	return id, nil
}

// Write updates the identified records with the given values.
func (c *Client) Write(ctx context.Context, model string, ids []int64, values map[string]any) (bool, error) {
	result, err := c.ExecuteKw(ctx, model, "write", []any{ids, values}, nil)
	if err != nil {
		return false, err
	}
	return c.toBool(model, "write", result)
}

// Unlink deletes the identified records.
func (c *Client) Unlink(ctx context.Context, model string, ids []int64) (bool, error) {
	result, err := c.ExecuteKw(ctx, model, "unlink", []any{ids}, nil)
	if err != nil {
		return false, err
	}
	return c.toBool(model, "unlink", result)
}

func (c *Client) toIDList(model, method string, result any) ([]int64, error) {
	raw, ok := result.([]any)
	if !ok {
		return nil, &ClientError{Model: model, Method: method, Message: fmt.Sprintf("unexpected result type %T", result)}
	}

	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, ok := toInt64(v)
		if !ok {
			return nil, &ClientError{Model: model, Method: method, Message: fmt.Sprintf("unexpected id type %T", v)}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Client) toRecordList(model, method string, result any) ([]map[string]any, error) {
	raw, ok := result.([]any)
	if !ok {
		return nil, &ClientError{Model: model, Method: method, Message: fmt.Sprintf("unexpected result type %T", result)}
	}

	records := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		record, ok := v.(map[string]any)
		if !ok {
			return nil, &ClientError{Model: model, Method: method, Message: fmt.Sprintf("unexpected record type %T", v)}
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *Client) toRecordMap(model, method string, result any) (map[string]any, error) {
	record, ok := result.(map[string]any)
	if !ok {
		return nil, &ClientError{Model: model, Method: method, Message: fmt.Sprintf("unexpected result type %T", result)}
	}
	return record, nil
}

func (c *Client) toBool(model, method string, result any) (bool, error) {
	b, ok := result.(bool)
	if !ok {
		return false, &ClientError{Model: model, Method: method, Message: fmt.Sprintf("unexpected result type %T", result)}
	}
	return b, nil
}

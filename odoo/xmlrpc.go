// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package odoo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kolo/xmlrpc"

	"odooflow/gateway/pool"
)

// Transport speaks Odoo's external XML-RPC API: authentication against
// /xmlrpc/2/common and execute_kw calls against /xmlrpc/2/object. It
// implements connection.Authenticator.
type Transport struct{}

// NewTransport creates an XML-RPC transport.
func NewTransport() *Transport {
	return &Transport{}
}

// Authenticate verifies the credentials against the instance's common
// endpoint and, on success, opens the object endpoint channel used for
// all subsequent operations. Odoo answers false (not a fault) for
// rejected credentials, which is reported distinctly from transport
// failures.
func (t *Transport) Authenticate(ctx context.Context, url, db, username, password string) (int64, pool.Caller, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	common, err := xmlrpc.NewClient(endpoint(url, "common"), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create common endpoint client: %w", err)
	}
	defer func() { _ = common.Close() }()

	var raw any
	if err := common.Call("authenticate", []any{db, username, password, map[string]any{}}, &raw); err != nil {
		var fault xmlrpc.FaultError
		if errors.As(err, &fault) {
			return 0, nil, fmt.Errorf("odoo error during authentication: %s", fault.String)
		}
		return 0, nil, fmt.Errorf("authentication request failed: %w", err)
	}

	uid, ok := toInt64(raw)
	if !ok || uid == 0 {
		return 0, nil, errors.New("authentication failed: invalid username/password")
	}

	object, err := xmlrpc.NewClient(endpoint(url, "object"), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create object endpoint client: %w", err)
	}

	return uid, &rpcCaller{client: object}, nil
}

func endpoint(url, service string) string {
	return strings.TrimSuffix(url, "/") + "/xmlrpc/2/" + service
}

// rpcCaller is the pooled operation channel: one XML-RPC client bound
// to an instance's object endpoint, reused for the life of the pool
// entry.
type rpcCaller struct {
	client *xmlrpc.Client
}

// ExecuteKw invokes model.method on the backend. Backend-side
// rejections (XML-RPC faults) map to *RemoteError with the backend's
// message; anything else is returned as-is for the client to classify.
func (c *rpcCaller) ExecuteKw(ctx context.Context, db string, uid int64, password, model, method string, args []any, kwargs map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	var result any
	if err := c.client.Call("execute_kw", []any{db, uid, password, model, method, args, kwargs}, &result); err != nil {
		var fault xmlrpc.FaultError
		if errors.As(err, &fault) {
			return nil, &RemoteError{Model: model, Method: method, Message: fault.String}
		}
		return nil, err
	}
	return result, nil
}

// toInt64 normalizes the XML-RPC authenticate result. Odoo returns an
// integer uid on success and the boolean false on rejection.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

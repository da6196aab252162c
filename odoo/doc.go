// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

/*
Package odoo provides the scope-gated Odoo client and its XML-RPC
transport.

Every operation flows through Client.ExecuteKw in a strict order:

 1. scope enforcement - a denied (model, operation) pair returns
    *auth.PermissionError with no side effects and no network activity
 2. connection resolution - pooled when available, authenticated
    otherwise (*connection.ConnError on failure)
 3. the remote execute_kw call - backend rejections become
    *RemoteError carrying the backend's message, anything else wraps
    into *ClientError

The high-level helpers (Search, Read, SearchRead, SearchCount,
FieldsGet, DefaultGet, Create, Write, Unlink) only shape arguments and
results; they add no state and inherit the same sequence.

Transport implements connection.Authenticator over Odoo's external
XML-RPC API (/xmlrpc/2/common for authenticate, /xmlrpc/2/object for
execute_kw).
*/
package odoo

// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

/*
Package gateway provides the HTTP surface of the OdooFlow gateway.

# Endpoints

	GET  /            server info
	GET  /health      health status with connection pool statistics
	GET  /metrics     JSON counters (tool calls, denials, pool)
	GET  /prometheus  Prometheus metrics
	POST /auth/generate   mint an encrypted API key from credentials
	POST /auth/validate   decrypt an API key and return its info
	POST /auth/logout     drop the pooled connection for the caller
	POST /tools/list      list available tools with input schemas
	POST /tools/call      execute a tool

# Authentication

/tools/call and /auth/logout accept either an X-API-Key header carrying
a Fernet-encrypted API key, or an X-Auth-Credentials header carrying
base64-encoded credential JSON. Tool call failures are reported over
HTTP 200 with a "status" field (auth_failed, scope_invalid,
connection_failed, permission_denied, odoo_error, tool_not_found,
invalid_request, execution_error) so clients can branch on the body.

The Server owns the single connection pool; one process serves many
tenants, each isolated by the pool's scope-aware cache keys.
*/
package gateway

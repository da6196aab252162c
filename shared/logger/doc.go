// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

/*
Package logger provides structured JSON logging with multi-tenant
support for the OdooFlow gateway.

Every entry is emitted as a single JSON line on stdout, carrying the
component name, instance and container identifiers, the tenant the
entry belongs to, and an optional request id for correlation:

	{"timestamp":"2025-01-15T10:30:00.123456789Z","level":"INFO",
	 "component":"gateway","instance_id":"i-abc123","container":"gw-xyz",
	 "tenant_id":"alice@example.com","request_id":"req-456",
	 "message":"Tool 'search' executed","fields":{"duration_ms":12.5}}

Entries below the minimum level are dropped before serialization. The
minimum comes from LOG_LEVEL (default INFO) and can be changed at
runtime with SetLevel.

Usage:

	log := logger.New("gateway")
	log.Info("alice@example.com", "req-456", "Tool executed", map[string]interface{}{
	    "tool": "search",
	})

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger

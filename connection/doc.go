// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

// Package connection resolves authenticated Odoo connections through
// the scope-aware pool: pool hit first, remote authentication only on a
// miss, with the result pooled under the identity's TTL. Authentication
// failures and transport faults both surface as *ConnError and are
// never retried here.
package connection

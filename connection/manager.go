// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package connection

import (
	"context"
	"log"
	"os"

	"odooflow/gateway/pool"
)

// Authenticator performs remote authentication against an Odoo instance
// and opens the operation channel for subsequent calls. A zero uid with
// a nil error is treated as rejected credentials by the Manager.
type Authenticator interface {
	Authenticate(ctx context.Context, url, db, username, password string) (int64, pool.Caller, error)
}

// ConnError reports a failure to obtain an authenticated connection:
// rejected credentials and transport faults both surface as this one
// kind. The Manager never retries; retrying is the caller's decision.
type ConnError struct {
	URL      string
	Username string
	Message  string
	Cause    error
}

func (e *ConnError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ConnError) Unwrap() error {
	return e.Cause
}

// Manager resolves authenticated connections, consulting the pool first
// and authenticating only on a miss.
type Manager struct {
	pool   *pool.Pool
	auth   Authenticator
	logger *log.Logger
}

// NewManager creates a Manager backed by the given pool and
// authenticator.
func NewManager(p *pool.Pool, auth Authenticator) *Manager {
	return &Manager{
		pool:   p,
		auth:   auth,
		logger: log.New(os.Stdout, "[CONN] ", log.LstdFlags),
	}
}

// GetConnection returns a pooled connection for the identity, or
// authenticates and pools a new one. No network activity happens on a
// pool hit; authentication happens outside any pool lock.
func (m *Manager) GetConnection(ctx context.Context, url, db, username, password, scope string) (*pool.Conn, error) {
	if conn, ok := m.pool.Get(url, username, scope); ok {
		return conn, nil
	}

	uid, caller, err := m.auth.Authenticate(ctx, url, db, username, password)
	if err != nil {
		return nil, &ConnError{URL: url, Username: username, Message: "failed to connect to Odoo", Cause: err}
	}
	if uid == 0 || caller == nil {
		return nil, &ConnError{URL: url, Username: username, Message: "authentication failed: invalid username/password"}
	}

	m.logger.Printf("Authenticated %s (UID: %d)", username, uid)
	return m.pool.Set(url, username, scope, uid, db, caller), nil
}

// Invalidate removes the pooled connection for the identity, forcing
// re-authentication on the next call. Idempotent.
func (m *Manager) Invalidate(url, username, scope string) {
	m.pool.Invalidate(url, username, scope)
}

// PoolStats exposes the pool snapshot for health reporting.
func (m *Manager) PoolStats() pool.Stats {
	return m.pool.Stats()
}

// PoolSize returns the number of pooled connections.
func (m *Manager) PoolSize() int {
	return m.pool.Size()
}

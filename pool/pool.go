// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"
	"sync"
	"time"
)

// DefaultTTLMinutes is used when a pool is created with a non-positive TTL.
const DefaultTTLMinutes = 60

// Caller is the operation channel stored with a pooled connection: a
// handle bound to one Odoo instance's execute_kw surface.
type Caller interface {
	ExecuteKw(ctx context.Context, db string, uid int64, password, model, method string, args []any, kwargs map[string]any) (any, error)
}

// Conn is one authenticated connection. Entries are immutable once
// stored; the pool only ever replaces them wholesale.
type Conn struct {
	UID       int64
	DB        string
	Caller    Caller
	Scope     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Stats is a point-in-time snapshot of the pool for monitoring. Expiry
// is checked lazily on Get, so expired-but-unread entries linger in the
// counts until their next access.
type Stats struct {
	TotalConnections   int `json:"total_connections"`
	ActiveConnections  int `json:"active_connections"`
	ExpiredConnections int `json:"expired_connections"`
	TTLMinutes         int `json:"ttl_minutes"`
}

// Pool is a thread-safe, scope-aware cache of authenticated
// connections. The cache key incorporates a hash of the raw scope
// string, so the same identity under two different scopes never shares
// a connection entry, even when the effective permissions are equal.
//
// Expired entries are removed lazily on read; there is no background
// sweeper. Staleness only matters at the moment a connection is about
// to be reused, so checking then is sufficient and keeps the pool a
// single-lock structure with no second mutator to reason about.
type Pool struct {
	mu     sync.Mutex
	conns  map[string]*Conn
	maxAge time.Duration
	logger *log.Logger
}

// New creates a pool whose entries live for ttlMinutes after storage.
func New(ttlMinutes int) *Pool {
	if ttlMinutes <= 0 {
		ttlMinutes = DefaultTTLMinutes
	}
	p := &Pool{
		conns:  make(map[string]*Conn),
		maxAge: time.Duration(ttlMinutes) * time.Minute,
		logger: log.New(os.Stdout, "[POOL] ", log.LstdFlags),
	}
	p.logger.Printf("Connection pool initialized with TTL: %d minutes", ttlMinutes)
	return p
}

// key derives the cache key for an (url, username, scope) triple. The
// scope string is hashed first and then combined with url and username
// into the final digest, so key inequality is syntactic on the raw
// scope string, not semantic on the permissions it grants.
func key(url, username, scope string) string {
	scopeSum := sha256.Sum256([]byte(scope))
	combined := url + ":" + username + ":" + hex.EncodeToString(scopeSum[:])
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}

// Get returns the pooled connection for the triple if present and not
// expired. An expired entry is removed under the same lock that found
// it, so no other goroutine can observe the check and the removal as
// separate steps.
func (p *Pool) Get(url, username, scope string) (*Conn, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := key(url, username, scope)
	conn, ok := p.conns[k]
	if !ok {
		return nil, false
	}

	if time.Now().After(conn.ExpiresAt) {
		p.logger.Printf("Connection expired for %s, removing from pool", username)
		delete(p.conns, k)
		return nil, false
	}

	return conn, true
}

// Set stores a connection for the triple, replacing any existing entry,
// and returns the stored value.
func (p *Pool) Set(url, username, scope string, uid int64, db string, caller Caller) *Conn {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	conn := &Conn{
		UID:       uid,
		DB:        db,
		Caller:    caller,
		Scope:     scope,
		CreatedAt: now,
		ExpiresAt: now.Add(p.maxAge),
	}
	p.conns[key(url, username, scope)] = conn

	p.logger.Printf("Stored connection in pool for %s (TTL: %s)", username, p.maxAge)
	return conn
}

// Invalidate removes the entry for the triple. Removing an absent entry
// is a no-op, so logout and forced re-authentication are idempotent.
func (p *Pool) Invalidate(url, username, scope string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := key(url, username, scope)
	if _, ok := p.conns[k]; ok {
		delete(p.conns, k)
		p.logger.Printf("Invalidated pooled connection for %s", username)
	}
}

// Size returns the number of entries currently held, expired or not.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

// Stats returns a best-effort snapshot of the pool.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	expired := 0
	now := time.Now()
	for _, conn := range p.conns {
		if now.After(conn.ExpiresAt) {
			expired++
		}
	}

	return Stats{
		TotalConnections:   len(p.conns),
		ActiveConnections:  len(p.conns) - expired,
		ExpiredConnections: expired,
		TTLMinutes:         int(p.maxAge / time.Minute),
	}
}

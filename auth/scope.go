// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// Perm is a bitmask of model permissions. The domain is closed (read,
// write, delete), so a three-bit mask replaces a set container.
type Perm uint8

const (
	// PermRead covers search, read, search_read, search_count,
	// fields_get and default_get.
	PermRead Perm = 1 << iota
	// PermWrite covers create and write.
	PermWrite
	// PermDelete covers unlink.
	PermDelete

	// PermNone is the empty permission set: an explicit denial when it
	// appears as a scope entry.
	PermNone Perm = 0
)

// Wildcard is the reserved model token that acts as a fallback for
// models without an explicit scope entry.
const Wildcard = "*"

// operationPerms maps Odoo method names to the permission they require.
// Operations outside this table are always denied.
var operationPerms = map[string]Perm{
	"search":       PermRead,
	"read":         PermRead,
	"search_read":  PermRead,
	"search_count": PermRead,
	"fields_get":   PermRead,
	"default_get":  PermRead,
	"create":       PermWrite,
	"write":        PermWrite,
	"unlink":       PermDelete,
}

var scopeLog = log.New(os.Stdout, "[SCOPE] ", log.LstdFlags)

// Has reports whether p contains all permissions in q.
func (p Perm) Has(q Perm) bool {
	return p&q == q
}

// String renders the mask as permission letters in RWD order.
func (p Perm) String() string {
	var b strings.Builder
	if p.Has(PermRead) {
		b.WriteByte('R')
	}
	if p.Has(PermWrite) {
		b.WriteByte('W')
	}
	if p.Has(PermDelete) {
		b.WriteByte('D')
	}
	return b.String()
}

// RequiredPerm returns the permission an operation needs. ok is false
// for operations outside the fixed table.
func RequiredPerm(operation string) (Perm, bool) {
	p, ok := operationPerms[operation]
	return p, ok
}

// ScopeError reports a scope string that could not be parsed into any
// usable model permissions.
type ScopeError struct {
	Scope  string
	Reason string
}

func (e *ScopeError) Error() string {
	return "invalid scope: " + e.Reason
}

// PermissionError reports a call rejected by scope enforcement.
type PermissionError struct {
	Model     string
	Operation string
	Required  Perm
}

func (e *PermissionError) Error() string {
	required := e.Required.String()
	if required == "" {
		required = "?"
	}
	return fmt.Sprintf("permission denied: no '%s' permission for operation '%s' on model '%s'",
		required, e.Operation, e.Model)
}

// Scope is a parsed, immutable permission grant table for one caller.
//
// Wire grammar: comma-separated "model:letters" entries, where letters
// is a case-insensitive subset of RWD and may be empty (an explicit
// denial for that model). The reserved model "*" is consulted only when
// no explicit entry matches; explicit entries always shadow it, for
// denials as much as for grants.
type Scope struct {
	raw    string
	models map[string]Perm
}

// ParseScope parses a scope string. Malformed entries (no colon, empty
// model token) are skipped with a warning and unknown permission
// letters are dropped; parsing fails only when nothing valid remains.
func ParseScope(scope string) (*Scope, error) {
	if strings.TrimSpace(scope) == "" {
		return nil, &ScopeError{Scope: scope, Reason: "scope string cannot be empty"}
	}

	models := make(map[string]Perm)

	for _, pair := range strings.Split(scope, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		model, letters, found := strings.Cut(pair, ":")
		if !found {
			scopeLog.Printf("Invalid scope pair (missing colon): %q", pair)
			continue
		}

		model = strings.TrimSpace(model)
		if model == "" {
			scopeLog.Printf("Invalid scope pair (empty model): %q", pair)
			continue
		}

		perms, dropped := parseLetters(letters)
		if dropped != "" {
			scopeLog.Printf("Invalid permissions %q in scope for model %q, ignoring them", dropped, model)
		}

		// An empty mask is retained: it is an explicit denial for the
		// model, not an absent entry.
		models[model] = perms
	}

	if len(models) == 0 {
		return nil, &ScopeError{Scope: scope, Reason: "scope string resulted in no valid model permissions"}
	}

	return &Scope{raw: scope, models: models}, nil
}

// parseLetters converts a permission-letter run into a mask, returning
// any unrecognized letters for the caller to log.
func parseLetters(letters string) (Perm, string) {
	var perms Perm
	var dropped strings.Builder

	for _, r := range strings.ToUpper(strings.TrimSpace(letters)) {
		switch r {
		case 'R':
			perms |= PermRead
		case 'W':
			perms |= PermWrite
		case 'D':
			perms |= PermDelete
		default:
			dropped.WriteRune(r)
		}
	}

	return perms, dropped.String()
}

// String returns the raw scope string the Scope was parsed from.
func (s *Scope) String() string {
	return s.raw
}

// CanCall reports whether the scope permits operation on model.
//
// An explicit model entry fully determines the decision, even when it
// is an empty denial; the wildcard is consulted only when no explicit
// entry exists. Unknown operations are always denied.
func (s *Scope) CanCall(model, operation string) bool {
	required, ok := operationPerms[operation]
	if !ok {
		scopeLog.Printf("Unknown operation: %q", operation)
		return false
	}

	if perms, ok := s.models[model]; ok {
		return perms.Has(required)
	}
	if perms, ok := s.models[Wildcard]; ok {
		return perms.Has(required)
	}
	return false
}

// EnforceCall returns a *PermissionError when CanCall denies the
// operation, and nil otherwise.
func (s *Scope) EnforceCall(model, operation string) error {
	if s.CanCall(model, operation) {
		return nil
	}
	required := operationPerms[operation]
	return &PermissionError{Model: model, Operation: operation, Required: required}
}

// AccessibleModels lists the models the scope grants entries for,
// sorted for stable output. It returns nil when a wildcard entry exists
// at any permission level, meaning every model is at least visible.
func (s *Scope) AccessibleModels() []string {
	if _, ok := s.models[Wildcard]; ok {
		return nil
	}

	models := make([]string, 0, len(s.models))
	for model := range s.models {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// ModelPermissions returns the effective permission mask for a model:
// the explicit entry if present, else the wildcard entry, else none.
func (s *Scope) ModelPermissions(model string) Perm {
	if perms, ok := s.models[model]; ok {
		return perms
	}
	if perms, ok := s.models[Wildcard]; ok {
		return perms
	}
	return PermNone
}

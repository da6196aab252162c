// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

/*
Package auth provides scope-based permission enforcement and credential
handling for the OdooFlow gateway.

# Scope Format

A scope string grants an identity access to Odoo models:

	model:PERMISSIONS,model:PERMISSIONS

Examples:
  - "res.partner:RWD" - full access to res.partner
  - "sale.order:RW" - search/read/write, no delete
  - "product.product:R" - read-only access
  - "*:R" - read-only access to all models
  - "*:RWD,res.partner:" - full access to all models except res.partner
  - "res.partner:RWD,sale.order:RW,*:R" - specific grants plus fallback

Permission letters:

	R = Read   (search, read, search_read, search_count, fields_get, default_get)
	W = Write  (create, write)
	D = Delete (unlink)

An explicit model entry always shadows the wildcard, including the empty
entry "model:" which denies the model outright.

# Usage

Parse a scope once per request and gate every call through it:

	scope, err := auth.ParseScope("res.partner:RWD,*:R")
	if err != nil {
	    // scope cannot be trusted, reject the request
	}
	if err := scope.EnforceCall("res.partner", "unlink"); err != nil {
	    // *auth.PermissionError
	}

# Credentials and API Keys

Credentials arrive either as a base64 JSON bundle in the
X-Auth-Credentials header (ParseCredentialsHeader) or inside a
Fernet-encrypted API key minted by /auth/generate (KeyManager). Both
paths produce the same Credentials value; the password round-trips but
is never echoed back (see Credentials.Info).
*/
package auth

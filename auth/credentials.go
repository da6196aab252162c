// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Credentials is one caller's Odoo identity bundle, as carried in the
// X-Auth-Credentials header or inside an encrypted API key.
type Credentials struct {
	URL      string `json:"url"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	Scope    string `json:"scope"`
}

// CredentialsError reports credentials that could not be parsed or
// validated.
type CredentialsError struct {
	Reason string
	Cause  error
}

func (e *CredentialsError) Error() string {
	if e.Cause != nil {
		return e.Reason + ": " + e.Cause.Error()
	}
	return e.Reason
}

func (e *CredentialsError) Unwrap() error {
	return e.Cause
}

// Validate checks that every field is a non-empty string.
func (c *Credentials) Validate() error {
	fields := map[string]string{
		"url":      c.URL,
		"database": c.Database,
		"username": c.Username,
		"password": c.Password,
		"scope":    c.Scope,
	}
	for _, name := range []string{"url", "database", "username", "password", "scope"} {
		if strings.TrimSpace(fields[name]) == "" {
			return &CredentialsError{Reason: fmt.Sprintf("field '%s' must be a non-empty string", name)}
		}
	}
	return nil
}

// Info returns the credential fields safe to echo back to a caller.
// The password is never included.
func (c *Credentials) Info() map[string]any {
	return map[string]any{
		"url":      c.URL,
		"database": c.Database,
		"username": c.Username,
		"scope":    c.Scope,
	}
}

// ParseCredentialsHeader decodes an X-Auth-Credentials header value:
// base64 of a JSON object with url, database, username, password and
// scope. All fields are required and trimmed, except the password where
// surrounding whitespace may be intentional.
func ParseCredentialsHeader(headerValue string) (*Credentials, error) {
	if headerValue == "" {
		return nil, &CredentialsError{Reason: "missing X-Auth-Credentials header"}
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(headerValue))
	if err != nil {
		return nil, &CredentialsError{Reason: "invalid base64 encoding in X-Auth-Credentials", Cause: err}
	}

	var creds Credentials
	if err := json.Unmarshal(decoded, &creds); err != nil {
		return nil, &CredentialsError{Reason: "invalid JSON in X-Auth-Credentials", Cause: err}
	}

	if err := creds.Validate(); err != nil {
		return nil, err
	}

	creds.URL = strings.TrimSpace(creds.URL)
	creds.Database = strings.TrimSpace(creds.Database)
	creds.Username = strings.TrimSpace(creds.Username)
	creds.Scope = strings.TrimSpace(creds.Scope)

	return &creds, nil
}

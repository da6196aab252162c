// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odooflow/gateway/auth"
	"odooflow/gateway/config"
	"odooflow/gateway/pool"
)

type stubCaller struct {
	result any
	err    error
}

func (c *stubCaller) ExecuteKw(ctx context.Context, db string, uid int64, password, model, method string, args []any, kwargs map[string]any) (any, error) {
	return c.result, c.err
}

type stubAuthenticator struct {
	calls  int
	uid    int64
	caller pool.Caller
	err    error
}

func (a *stubAuthenticator) Authenticate(ctx context.Context, url, db, username, password string) (int64, pool.Caller, error) {
	a.calls++
	return a.uid, a.caller, a.err
}

func testConfig() *config.Config {
	return &config.Config{
		Host:           "127.0.0.1",
		Port:           3000,
		LogLevel:       "ERROR",
		PoolTTLMinutes: 60,
		EncryptionKey:  auth.GenerateKey(),
	}
}

func newTestServer(t *testing.T, authn *stubAuthenticator) *Server {
	t.Helper()
	srv, err := NewServerWithAuthenticator(testConfig(), authn)
	require.NoError(t, err)
	return srv
}

func credsHeader(t *testing.T, scope string) string {
	t.Helper()
	payload, err := json.Marshal(auth.Credentials{
		URL:      "https://odoo.example.com",
		Database: "production",
		Username: "alice@example.com",
		Password: "secret",
		Scope:    scope,
	})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(payload)
}

func callTool(t *testing.T, srv *Server, headers map[string]string, body any) map[string]any {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/tools/call", bytes.NewReader(payload))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestHandleRoot(t *testing.T) {
	srv := newTestServer(t, &stubAuthenticator{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "OdooFlow Gateway", body["name"])
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubAuthenticator{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string     `json:"status"`
		Pool   pool.Stats `json:"pool"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 60, body.Pool.TTLMinutes)
	assert.Equal(t, 0, body.Pool.TotalConnections)
}

func TestAuthGenerateAndValidate(t *testing.T) {
	srv := newTestServer(t, &stubAuthenticator{})

	creds := map[string]any{
		"url":      "https://odoo.example.com",
		"database": "production",
		"username": "alice@example.com",
		"password": "secret",
		"scope":    "res.partner:RW",
	}
	payload, _ := json.Marshal(creds)

	req := httptest.NewRequest(http.MethodPost, "/auth/generate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var genResp struct {
		APIKey      string         `json:"api_key"`
		Credentials map[string]any `json:"credentials"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &genResp))
	require.NotEmpty(t, genResp.APIKey)
	assert.NotContains(t, genResp.Credentials, "password")

	validatePayload, _ := json.Marshal(map[string]string{"api_key": genResp.APIKey})
	req = httptest.NewRequest(http.MethodPost, "/auth/validate", bytes.NewReader(validatePayload))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var valResp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &valResp))
	assert.Equal(t, "valid", valResp["status"])
}

func TestAuthGenerateRejectsIncomplete(t *testing.T) {
	srv := newTestServer(t, &stubAuthenticator{})

	payload, _ := json.Marshal(map[string]any{"url": "https://odoo.example.com"})
	req := httptest.NewRequest(http.MethodPost, "/auth/generate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthValidateRejectsBadKey(t *testing.T) {
	srv := newTestServer(t, &stubAuthenticator{})

	payload, _ := json.Marshal(map[string]string{"api_key": "garbage"})
	req := httptest.NewRequest(http.MethodPost, "/auth/validate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToolsList(t *testing.T) {
	srv := newTestServer(t, &stubAuthenticator{})

	req := httptest.NewRequest(http.MethodPost, "/tools/list", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tools []map[string]any `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Tools, 9)
}

func TestToolsCallWithCredentialsHeader(t *testing.T) {
	authn := &stubAuthenticator{uid: 7, caller: &stubCaller{result: []any{int64(1), int64(2)}}}
	srv := newTestServer(t, authn)

	result := callTool(t, srv,
		map[string]string{"X-Auth-Credentials": credsHeader(t, "res.partner:R")},
		map[string]any{"name": "search", "arguments": map[string]any{"model": "res.partner"}})

	require.NotContains(t, result, "error", "unexpected error: %v", result["error"])
	inner := result["result"].(map[string]any)
	assert.Equal(t, float64(2), inner["count"])
	assert.Equal(t, 1, authn.calls)
}

func TestToolsCallWithAPIKey(t *testing.T) {
	authn := &stubAuthenticator{uid: 7, caller: &stubCaller{result: []any{}}}
	srv := newTestServer(t, authn)

	apiKey, err := srv.keys.Encrypt(&auth.Credentials{
		URL:      "https://odoo.example.com",
		Database: "production",
		Username: "alice@example.com",
		Password: "secret",
		Scope:    "*:R",
	})
	require.NoError(t, err)

	result := callTool(t, srv,
		map[string]string{"X-API-Key": apiKey},
		map[string]any{"name": "search", "arguments": map[string]any{"model": "res.partner"}})

	require.NotContains(t, result, "error", "unexpected error: %v", result["error"])
}

func TestToolsCallStatusKinds(t *testing.T) {
	tests := []struct {
		name       string
		authn      *stubAuthenticator
		headers    func(t *testing.T, srv *Server) map[string]string
		body       map[string]any
		wantStatus string
	}{
		{
			name:       "missing auth headers",
			authn:      &stubAuthenticator{},
			headers:    func(t *testing.T, srv *Server) map[string]string { return nil },
			body:       map[string]any{"name": "search"},
			wantStatus: statusAuthFailed,
		},
		{
			name:  "invalid api key",
			authn: &stubAuthenticator{},
			headers: func(t *testing.T, srv *Server) map[string]string {
				return map[string]string{"X-API-Key": "garbage"}
			},
			body:       map[string]any{"name": "search"},
			wantStatus: statusAuthFailed,
		},
		{
			name:  "invalid scope",
			authn: &stubAuthenticator{uid: 7, caller: &stubCaller{}},
			headers: func(t *testing.T, srv *Server) map[string]string {
				return map[string]string{"X-Auth-Credentials": credsHeader(t, "no-colon-entries")}
			},
			body:       map[string]any{"name": "search"},
			wantStatus: statusScopeInvalid,
		},
		{
			name:  "rejected credentials",
			authn: &stubAuthenticator{uid: 0},
			headers: func(t *testing.T, srv *Server) map[string]string {
				return map[string]string{"X-Auth-Credentials": credsHeader(t, "*:R")}
			},
			body:       map[string]any{"name": "search", "arguments": map[string]any{"model": "res.partner"}},
			wantStatus: statusConnectionFailed,
		},
		{
			name:  "permission denied",
			authn: &stubAuthenticator{uid: 7, caller: &stubCaller{}},
			headers: func(t *testing.T, srv *Server) map[string]string {
				return map[string]string{"X-Auth-Credentials": credsHeader(t, "res.partner:R")}
			},
			body:       map[string]any{"name": "unlink", "arguments": map[string]any{"model": "res.partner", "ids": []any{1}}},
			wantStatus: statusPermissionDenied,
		},
		{
			name:  "unknown tool",
			authn: &stubAuthenticator{uid: 7, caller: &stubCaller{}},
			headers: func(t *testing.T, srv *Server) map[string]string {
				return map[string]string{"X-Auth-Credentials": credsHeader(t, "*:R")}
			},
			body:       map[string]any{"name": "launch_missiles"},
			wantStatus: statusToolNotFound,
		},
		{
			name:  "missing tool name",
			authn: &stubAuthenticator{uid: 7, caller: &stubCaller{}},
			headers: func(t *testing.T, srv *Server) map[string]string {
				return map[string]string{"X-Auth-Credentials": credsHeader(t, "*:R")}
			},
			body:       map[string]any{"arguments": map[string]any{}},
			wantStatus: statusInvalidRequest,
		},
		{
			name:  "bad tool arguments",
			authn: &stubAuthenticator{uid: 7, caller: &stubCaller{}},
			headers: func(t *testing.T, srv *Server) map[string]string {
				return map[string]string{"X-Auth-Credentials": credsHeader(t, "*:R")}
			},
			body:       map[string]any{"name": "search", "arguments": map[string]any{}},
			wantStatus: statusInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.authn)
			result := callTool(t, srv, tt.headers(t, srv), tt.body)
			assert.Equal(t, tt.wantStatus, result["status"], "error: %v", result["error"])
			assert.NotEmpty(t, result["error"])
		})
	}
}

func TestToolsCallDeniedNeverAuthenticates(t *testing.T) {
	authn := &stubAuthenticator{uid: 7, caller: &stubCaller{}}
	srv := newTestServer(t, authn)

	// The connection is resolved before dispatch, so a denied tool call
	// authenticates once but never reaches execute_kw.
	result := callTool(t, srv,
		map[string]string{"X-Auth-Credentials": credsHeader(t, "res.partner:")},
		map[string]any{"name": "search", "arguments": map[string]any{"model": "res.partner"}})
	assert.Equal(t, statusPermissionDenied, result["status"])
}

func TestLogoutInvalidatesConnection(t *testing.T) {
	authn := &stubAuthenticator{uid: 7, caller: &stubCaller{result: []any{}}}
	srv := newTestServer(t, authn)
	headers := map[string]string{"X-Auth-Credentials": credsHeader(t, "*:R")}
	body := map[string]any{"name": "search", "arguments": map[string]any{"model": "res.partner"}}

	callTool(t, srv, headers, body)
	require.Equal(t, 1, authn.calls)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("X-Auth-Credentials", headers["X-Auth-Credentials"])
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, srv.manager.PoolSize())

	callTool(t, srv, headers, body)
	assert.Equal(t, 2, authn.calls, "logout should force re-authentication")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubAuthenticator{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "tool_calls_total")
	assert.Contains(t, body, "pool")
}

func TestPrometheusEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubAuthenticator{})

	req := httptest.NewRequest(http.MethodGet, "/prometheus", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "odooflow_gateway") ||
		strings.Contains(rec.Body.String(), "go_goroutines"))
}

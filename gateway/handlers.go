// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"odooflow/gateway/auth"
	"odooflow/gateway/connection"
	"odooflow/gateway/odoo"
	"odooflow/gateway/tools"
)

const serverVersion = "1.0.0"

// Status kinds returned in tool call responses. Tool call errors are
// reported over HTTP 200 with a status field so clients always get a
// JSON body they can branch on.
const (
	statusAuthFailed       = "auth_failed"
	statusScopeInvalid     = "scope_invalid"
	statusConnectionFailed = "connection_failed"
	statusPermissionDenied = "permission_denied"
	statusOdooError        = "odoo_error"
	statusToolNotFound     = "tool_not_found"
	statusInvalidRequest   = "invalid_request"
	statusExecutionError   = "execution_error"
	statusSuccess          = "success"
)

// toolCallRequest is the /tools/call body.
type toolCallRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// callCounters track lifetime tool call outcomes for the JSON metrics
// endpoint.
type callCounters struct {
	total   atomic.Int64
	success atomic.Int64
	failed  atomic.Int64
	denied  atomic.Int64
}

var counters callCounters

var startTime = time.Now()

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent, nothing left to do but log
		log.Printf("Error encoding response: %v", err)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":      "OdooFlow Gateway",
		"version":   serverVersion,
		"transport": "http",
		"status":    "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.manager.PoolStats()
	promPoolConnections.Set(float64(stats.ActiveConnections))

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": serverVersion,
		"pool":    stats,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats := s.manager.PoolStats()
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds":     int64(time.Since(startTime).Seconds()),
		"tool_calls_total":   counters.total.Load(),
		"tool_calls_success": counters.success.Load(),
		"tool_calls_failed":  counters.failed.Load(),
		"permission_denials": counters.denied.Load(),
		"pool":               stats,
	})
}

func (s *Server) handleGenerateKey(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return
	}

	apiKey, err := s.keys.Encrypt(&creds)
	if err != nil {
		s.log.Warn(creds.Username, "", "API key generation failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": fmt.Sprintf("Failed to generate API key: %s", err),
		})
		return
	}

	s.log.Info(creds.Username, "", "Generated API key", nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"api_key":     apiKey,
		"credentials": creds.Info(),
	})
}

func (s *Server) handleValidateKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.APIKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing api_key in request body"})
		return
	}

	creds, err := s.keys.Decrypt(body.APIKey)
	if err != nil {
		s.log.Warn("", "", "Invalid API key presented", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": err.Error()})
		return
	}

	s.log.Info(creds.Username, "", "API key validated", nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "valid",
		"credentials": creds.Info(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	creds, _, err := s.resolveCredentials(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": err.Error()})
		return
	}

	s.manager.Invalidate(creds.URL, creds.Username, creds.Scope)
	s.log.Info(creds.Username, "", "Connection invalidated on logout", nil)
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}

func (s *Server) handleToolsList(w http.ResponseWriter, r *http.Request) {
	// Unfiltered by scope: enforcement happens at call time.
	writeJSON(w, http.StatusOK, map[string]any{"tools": tools.List()})
}

func (s *Server) handleToolsCall(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	start := time.Now()

	// 1. Resolve credentials from X-API-Key or X-Auth-Credentials
	creds, kind, err := s.resolveCredentials(r)
	if err != nil {
		promAuthFailures.Inc()
		s.failCall(w, "", requestID, kind, err.Error())
		return
	}
	tenant := creds.Username

	// 2. Parse and validate scope
	scope, err := auth.ParseScope(creds.Scope)
	if err != nil {
		s.failCall(w, tenant, requestID, statusScopeInvalid, fmt.Sprintf("Invalid scope: %s", err))
		return
	}

	// 3. Resolve the Odoo connection, from pool or fresh authentication
	conn, err := s.manager.GetConnection(r.Context(), creds.URL, creds.Database, creds.Username, creds.Password, creds.Scope)
	if err != nil {
		promAuthFailures.Inc()
		s.failCall(w, tenant, requestID, statusConnectionFailed, err.Error())
		return
	}
	s.log.Debug(tenant, requestID, "Resolved connection", map[string]interface{}{"uid": conn.UID})
	promPoolConnections.Set(float64(s.manager.PoolSize()))

	// 4. Build the scoped client
	client := odoo.NewClient(creds.URL, creds.Database, creds.Username, creds.Password, scope, s.manager)

	// 5. Parse and execute the tool
	var req toolCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.failCall(w, tenant, requestID, statusInvalidRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		s.failCall(w, tenant, requestID, statusInvalidRequest, "Missing 'name' in request")
		return
	}

	handler, ok := tools.Lookup(req.Name)
	if !ok {
		s.failCall(w, tenant, requestID, statusToolNotFound,
			fmt.Sprintf("Tool '%s' not found. Available tools: %v", req.Name, tools.Names()))
		return
	}

	counters.total.Add(1)
	result, err := handler(r.Context(), client, req.Arguments)
	durationMS := float64(time.Since(start).Milliseconds())
	promRequestDuration.WithLabelValues(req.Name).Observe(durationMS)

	if err != nil {
		kind := classifyToolError(err)
		if kind == statusPermissionDenied {
			counters.denied.Add(1)
			promPermissionDenials.Inc()
		}
		counters.failed.Add(1)
		promRequestsTotal.WithLabelValues(kind).Inc()
		s.log.ErrorWithCode(tenant, requestID, fmt.Sprintf("Tool '%s' failed", req.Name), http.StatusOK, err,
			map[string]interface{}{"status": kind})
		writeJSON(w, http.StatusOK, map[string]any{"error": err.Error(), "status": kind})
		return
	}

	counters.success.Add(1)
	promRequestsTotal.WithLabelValues(statusSuccess).Inc()
	s.log.InfoWithDuration(tenant, requestID, fmt.Sprintf("Tool '%s' executed", req.Name), durationMS, nil)
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

// resolveCredentials extracts credentials from the request headers.
// X-API-Key takes precedence over X-Auth-Credentials. The returned
// string is the status kind to report when err is non-nil.
func (s *Server) resolveCredentials(r *http.Request) (*auth.Credentials, string, error) {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		creds, err := s.keys.Decrypt(apiKey)
		if err != nil {
			return nil, statusAuthFailed, err
		}
		return creds, "", nil
	}

	if header := r.Header.Get("X-Auth-Credentials"); header != "" {
		creds, err := auth.ParseCredentialsHeader(header)
		if err != nil {
			return nil, statusAuthFailed, err
		}
		return creds, "", nil
	}

	return nil, statusAuthFailed, errors.New("missing X-API-Key or X-Auth-Credentials header")
}

func (s *Server) failCall(w http.ResponseWriter, tenant, requestID, kind, message string) {
	counters.failed.Add(1)
	promRequestsTotal.WithLabelValues(kind).Inc()
	s.log.Warn(tenant, requestID, message, map[string]interface{}{"status": kind})
	writeJSON(w, http.StatusOK, map[string]any{"error": message, "status": kind})
}

// classifyToolError maps error types from the client stack onto
// response status kinds.
func classifyToolError(err error) string {
	var permErr *auth.PermissionError
	if errors.As(err, &permErr) {
		return statusPermissionDenied
	}
	var connErr *connection.ConnError
	if errors.As(err, &connErr) {
		return statusConnectionFailed
	}
	var remoteErr *odoo.RemoteError
	if errors.As(err, &remoteErr) {
		return statusOdooError
	}
	var argErr *tools.ArgumentError
	if errors.As(err, &argErr) {
		return statusInvalidRequest
	}
	var clientErr *odoo.ClientError
	if errors.As(err, &clientErr) {
		return statusOdooError
	}
	return statusExecutionError
}

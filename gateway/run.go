// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"odooflow/gateway/auth"
	"odooflow/gateway/config"
	"odooflow/gateway/connection"
	"odooflow/gateway/odoo"
	"odooflow/gateway/pool"
	"odooflow/gateway/shared/logger"
)

// Server wires the HTTP surface to the connection manager and key
// manager. It owns the single connection pool instance.
type Server struct {
	cfg     *config.Config
	keys    *auth.KeyManager
	pool    *pool.Pool
	manager *connection.Manager
	router  *mux.Router
	cors    *cors.Cors
	log     *logger.Logger
}

// NewServer builds a Server that authenticates against real Odoo
// backends over XML-RPC.
func NewServer(cfg *config.Config) (*Server, error) {
	return NewServerWithAuthenticator(cfg, odoo.NewTransport())
}

// NewServerWithAuthenticator builds a Server with an injected
// authenticator; tests use this to avoid network calls.
func NewServerWithAuthenticator(cfg *config.Config, authenticator connection.Authenticator) (*Server, error) {
	keys, err := auth.NewKeyManager(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key manager: %w", err)
	}

	p := pool.New(cfg.PoolTTLMinutes)
	s := &Server{
		cfg:     cfg,
		keys:    keys,
		pool:    p,
		manager: connection.NewManager(p, authenticator),
		router:  mux.NewRouter(),
		log:     logger.New("gateway"),
	}

	// CORS middleware - configured once, used for all requests
	s.cors = cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	s.router.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	s.router.HandleFunc("/auth/generate", s.handleGenerateKey).Methods("POST")
	s.router.HandleFunc("/auth/validate", s.handleValidateKey).Methods("POST")
	s.router.HandleFunc("/auth/logout", s.handleLogout).Methods("POST")

	s.router.HandleFunc("/tools/list", s.handleToolsList).Methods("POST", "GET")
	s.router.HandleFunc("/tools/call", s.handleToolsCall).Methods("POST")
}

// Handler returns the full middleware-wrapped handler; exposed for
// httptest.
func (s *Server) Handler() http.Handler {
	return s.cors.Handler(s.router)
}

// Run starts the HTTP server and blocks until it fails.
func (s *Server) Run() error {
	addr := s.cfg.Addr()
	s.log.Info("", "", "OdooFlow gateway starting", map[string]interface{}{
		"addr":        addr,
		"ttl_minutes": s.cfg.PoolTTLMinutes,
	})
	return http.ListenAndServe(addr, s.Handler())
}

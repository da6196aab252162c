// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log"

	"odooflow/gateway/config"
	"odooflow/gateway/gateway"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	srv, err := gateway.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize gateway: %v", err)
	}

	log.Printf("OdooFlow Gateway listening on %s", cfg.Addr())
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"odooflow/gateway/auth"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HOST", "PORT", "LOG_LEVEL", "POOL_TTL_MINUTES", "ENCRYPTION_KEY", "GATEWAY_CONFIG_FILE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", cfg.Host)
	}
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("LogLevel = %q, want INFO", cfg.LogLevel)
	}
	if cfg.PoolTTLMinutes != 60 {
		t.Errorf("PoolTTLMinutes = %d, want 60", cfg.PoolTTLMinutes)
	}
	// A temporary key is generated when none is configured.
	if cfg.EncryptionKey == "" {
		t.Error("EncryptionKey not generated")
	}
	if _, err := auth.NewKeyManager(cfg.EncryptionKey); err != nil {
		t.Errorf("generated key unusable: %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	key := auth.GenerateKey()
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("POOL_TTL_MINUTES", "15")
	t.Setenv("ENCRYPTION_KEY", key)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Host != "127.0.0.1" || cfg.Port != 8080 || cfg.LogLevel != "DEBUG" || cfg.PoolTTLMinutes != 15 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.EncryptionKey != key {
		t.Error("configured encryption key not used")
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("POOL_TTL_MINUTES", "sixty")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.PoolTTLMinutes != 60 {
		t.Errorf("PoolTTLMinutes = %d, want default 60", cfg.PoolTTLMinutes)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")

	path := filepath.Join(t.TempDir(), "gateway.yaml")
	content := "port: 9090\nlog_level: WARN\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("GATEWAY_CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want file override 9090", cfg.Port)
	}
	if cfg.LogLevel != "WARN" {
		t.Errorf("LogLevel = %q, want WARN", cfg.LogLevel)
	}
	// Keys absent from the file keep their environment/default values.
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want default", cfg.Host)
	}
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(path, []byte("port: [not an int\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("GATEWAY_CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Host:           "0.0.0.0",
			Port:           3000,
			LogLevel:       "INFO",
			PoolTTLMinutes: 60,
			EncryptionKey:  auth.GenerateKey(),
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero TTL", func(c *Config) { c.PoolTTLMinutes = 0 }},
		{"negative TTL", func(c *Config) { c.PoolTTLMinutes = -5 }},
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "VERBOSE" }},
		{"bad encryption key", func(c *Config) { c.EncryptionKey = "short" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted bad config")
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: 8080}
	if got := cfg.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}

// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"odooflow/gateway/auth"
)

// defaultConfigPaths are checked in order when GATEWAY_CONFIG_FILE is
// not set.
var defaultConfigPaths = []string{
	"./gateway.yaml",
	"./config/gateway.yaml",
	"/etc/odooflow/gateway.yaml",
}

var validLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// Config holds the gateway's runtime configuration. Values come from
// environment variables, optionally overridden by a YAML file
// (GATEWAY_CONFIG_FILE or one of the default paths).
type Config struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	LogLevel       string `yaml:"log_level"`
	PoolTTLMinutes int    `yaml:"pool_ttl_minutes"`
	EncryptionKey  string `yaml:"encryption_key"`
}

// fileConfig mirrors Config with pointer fields so a YAML file only
// overrides the keys it actually sets.
type fileConfig struct {
	Host           *string `yaml:"host"`
	Port           *int    `yaml:"port"`
	LogLevel       *string `yaml:"log_level"`
	PoolTTLMinutes *int    `yaml:"pool_ttl_minutes"`
	EncryptionKey  *string `yaml:"encryption_key"`
}

// Load builds the configuration from the environment and an optional
// config file, then validates it. When no encryption key is configured
// a temporary one is generated; API keys minted with it die with the
// process.
func Load() (*Config, error) {
	cfg := &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnvInt("PORT", 3000),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		PoolTTLMinutes: getEnvInt("POOL_TTL_MINUTES", 60),
		EncryptionKey:  os.Getenv("ENCRYPTION_KEY"),
	}

	if path := findConfigFile(); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
		log.Printf("Loaded configuration overrides from %s", path)
	}

	if cfg.EncryptionKey == "" {
		cfg.EncryptionKey = auth.GenerateKey()
		log.Printf("WARNING: no ENCRYPTION_KEY set, generated temporary key (fingerprint: %s). "+
			"API keys will become invalid on restart; set ENCRYPTION_KEY for production.",
			auth.KeyFingerprint(cfg.EncryptionKey))
	} else {
		log.Printf("Using persistent encryption key (fingerprint: %s)", auth.KeyFingerprint(cfg.EncryptionKey))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges; it runs at startup so bad deployments
// fail fast.
func (c *Config) Validate() error {
	if c.PoolTTLMinutes < 1 {
		return fmt.Errorf("pool TTL must be >= 1 minute, got %d", c.PoolTTLMinutes)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if _, err := auth.NewKeyManager(c.EncryptionKey); err != nil {
		return fmt.Errorf("invalid encryption key: %w", err)
	}
	return nil
}

// Addr returns the host:port to listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func findConfigFile() string {
	if path := os.Getenv("GATEWAY_CONFIG_FILE"); path != "" {
		return path
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Host != nil {
		cfg.Host = *fc.Host
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.PoolTTLMinutes != nil {
		cfg.PoolTTLMinutes = *fc.PoolTTLMinutes
	}
	if fc.EncryptionKey != nil {
		cfg.EncryptionKey = *fc.EncryptionKey
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, fallback)
		return fallback
	}
	return n
}

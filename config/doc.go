// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

// Package config loads gateway configuration from environment
// variables with an optional YAML override file. Precedence is
// file over environment over built-in defaults; the file location
// comes from GATEWAY_CONFIG_FILE or a short list of default paths.
package config

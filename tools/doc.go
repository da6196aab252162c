// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

// Package tools maps MCP tool names to Odoo client operations. Each
// handler validates and shapes the tool's JSON arguments, delegates to
// the client (which enforces the caller's scope), and produces the
// tool's result object. List exposes the tool descriptors with their
// input schemas for /tools/list.
package tools

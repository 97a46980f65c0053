// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Integration tests for the MCP server with a live Postgres instance.

//go:build integration

package integration

import "testing"

func TestIntegrationPlaceholder(t *testing.T) {
	t.Skip("integration tests require a provisioned crime database")
}

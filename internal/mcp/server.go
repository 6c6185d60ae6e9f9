// Package mcp provides a Model Context Protocol server for loom.
//
// It exposes the knowledge base read-only over MCP: entity search and
// lookup, pending proposals, and store statistics. Agents consume the
// knowledge base through these tools; all mutation goes through the
// pipeline stages, never through MCP.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hurttlocker/loom/internal/merge"
	"github.com/hurttlocker/loom/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Store   store.Store
	Version string
}

// dbMu serializes tool calls that touch the database. The mcp-go library
// dispatches handlers concurrently, and the store assumes one caller.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all loom tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"loom",
		ver,
		server.WithToolCapabilities(false),
	)

	registerSearchTool(s, cfg.Store)
	registerEntityTool(s, cfg.Store)
	registerProposalsTool(s, cfg.Store)
	registerStatsTool(s, cfg.Store)

	return s
}

func registerSearchTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("loom_search",
		mcp.WithDescription("Search knowledge entities by title or body text. Returns entities ordered by mention count."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 10, max: 50)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		limit := 10
		if limitVal, err := req.RequireFloat("limit"); err == nil {
			if n := int(limitVal); n > 0 {
				limit = n
			}
			if limit > 50 {
				limit = 50
			}
		}

		entities, err := st.SearchEntities(ctx, query, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(entities, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerEntityTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("loom_entity",
		mcp.WithDescription("Look up one knowledge entity by name or key. Returns the full record including body and source provenance."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Entity display name or normalized key (e.g. 'Jane Doe' or 'jane-doe')"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		name, err := req.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}

		entity, err := st.GetEntityByKey(ctx, merge.NormalizeKey(name))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup error: %v", err)), nil
		}
		if entity == nil {
			return mcp.NewToolResultError(fmt.Sprintf("no entity found for %q", name)), nil
		}

		sources, err := st.ListProvenance(ctx, entity.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("provenance error: %v", err)), nil
		}

		payload := map[string]any{
			"entity":  entity,
			"sources": sources,
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerProposalsTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("loom_proposals",
		mcp.WithDescription("List change proposals awaiting human review. Proposals are suggestions only; nothing applies them automatically."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("status",
			mcp.Description("Filter by review status (default: pending_review). Empty string lists all."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of proposals (default: 20, max: 100)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		status := store.ProposalStatusPending
		if v, err := req.RequireString("status"); err == nil {
			status = v
		}

		limit := 20
		if limitVal, err := req.RequireFloat("limit"); err == nil {
			if n := int(limitVal); n > 0 {
				limit = n
			}
			if limit > 100 {
				limit = 100
			}
		}

		proposals, err := st.ListProposals(ctx, status, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("proposals error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(proposals, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerStatsTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("loom_stats",
		mcp.WithDescription("Knowledge base statistics: entity, provenance, and proposal counts, broken down by entity class."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		stats, err := st.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("stats error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(stats, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

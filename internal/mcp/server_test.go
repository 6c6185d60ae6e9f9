package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hurttlocker/loom/internal/store"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// helper: create a test store with some data
func setupTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewStore(store.StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	ctx := context.Background()

	entities := []*store.Entity{
		{Key: "jane-doe", Title: "Jane Doe", Class: store.ClassPerson, MentionCount: 12, Body: "## Jane Doe\n"},
		{Key: "cdc", Title: "CDC", Class: store.ClassDefinition, MentionCount: 7, Body: "Change Data Capture\n"},
		{Key: "apache-iceberg-status", Title: "Apache Iceberg Status", Class: store.ClassStatus, MentionCount: 3},
	}
	for _, e := range entities {
		id, err := s.UpsertEntity(ctx, e)
		if err != nil {
			t.Fatalf("adding test entity: %v", err)
		}
		if _, err := s.AddProvenance(ctx, id, "2025-01-15-transcript-sync.md"); err != nil {
			t.Fatalf("adding test provenance: %v", err)
		}
	}

	if err := s.AddProposal(ctx, &store.Proposal{
		ID:         "test-proposal-1",
		TargetKey:  "jane-doe",
		ChangeType: "mention-update",
		SourceDoc:  "processed/2025-01-15-transcript-sync.md",
		Confidence: "medium",
	}); err != nil {
		t.Fatalf("adding test proposal: %v", err)
	}

	return s
}

func TestNewServer(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	srv := NewServer(ServerConfig{Store: s, Version: "test"})
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
}

// callTool invokes an MCP tool through the server's JSON-RPC entry point.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) *mcplib.CallToolResult {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}
	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	callResult := &mcplib.CallToolResult{IsError: resp.Result.IsError}
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			callResult.Content = append(callResult.Content, mcplib.NewTextContent(c.Text))
		}
	}
	return callResult
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func getTextContent(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content found")
	return ""
}

func TestSearchTool(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	srv := NewServer(ServerConfig{Store: s, Version: "test"})

	result := callTool(t, srv, "loom_search", map[string]interface{}{
		"query": "Jane",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var entities []store.Entity
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &entities); err != nil {
		t.Fatalf("parsing search results: %v", err)
	}
	if len(entities) != 1 || entities[0].Key != "jane-doe" {
		t.Errorf("search results = %+v", entities)
	}
}

func TestEntityTool(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	srv := NewServer(ServerConfig{Store: s, Version: "test"})

	// Display-name lookup goes through key normalization.
	result := callTool(t, srv, "loom_entity", map[string]interface{}{
		"name": "Jane Doe",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var payload struct {
		Entity  store.Entity `json:"entity"`
		Sources []string     `json:"sources"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &payload); err != nil {
		t.Fatalf("parsing entity payload: %v", err)
	}
	if payload.Entity.Key != "jane-doe" || payload.Entity.MentionCount != 12 {
		t.Errorf("entity = %+v", payload.Entity)
	}
	if len(payload.Sources) != 1 {
		t.Errorf("sources = %v", payload.Sources)
	}
}

func TestEntityToolMissing(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	srv := NewServer(ServerConfig{Store: s, Version: "test"})

	result := callTool(t, srv, "loom_entity", map[string]interface{}{
		"name": "Nobody Here",
	})
	if !result.IsError {
		t.Fatal("expected error result for unknown entity")
	}
	if text := getTextContent(t, result); !strings.Contains(text, "no entity found") {
		t.Errorf("error text = %q", text)
	}
}

func TestProposalsTool(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	srv := NewServer(ServerConfig{Store: s, Version: "test"})

	result := callTool(t, srv, "loom_proposals", map[string]interface{}{})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var proposals []store.Proposal
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &proposals); err != nil {
		t.Fatalf("parsing proposals: %v", err)
	}
	if len(proposals) != 1 || proposals[0].TargetKey != "jane-doe" {
		t.Errorf("proposals = %+v", proposals)
	}
}

func TestStatsTool(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	srv := NewServer(ServerConfig{Store: s, Version: "test"})

	result := callTool(t, srv, "loom_stats", map[string]interface{}{})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var stats store.Stats
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &stats); err != nil {
		t.Fatalf("parsing stats: %v", err)
	}
	if stats.EntityCount != 3 || stats.ProposalCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

package server

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func newTestClient(t *testing.T) *client.Client {
	t.Helper()

	// nil config: validation still works, database calls report unavailable
	s := server.NewMCPServer(ServerName, ServerVersion)
	Register(s, nil, nil)

	c, err := client.NewInProcessClient(s)
	if err != nil {
		t.Fatalf("NewInProcessClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "1.0.0"}
	if _, err := c.Initialize(context.Background(), initReq); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return c
}

func callTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func TestPingTool(t *testing.T) {
	c := newTestClient(t)

	res := callTool(t, c, "ping", map[string]any{})
	if res.IsError {
		t.Errorf("ping returned error")
	}
	if text := textContent(res); text != `{"message":"pong"}` {
		t.Errorf("ping result: got %q, want {\"message\":\"pong\"}", text)
	}
}

func TestToolListing(t *testing.T) {
	c := newTestClient(t)

	toolsRes, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	want := map[string]bool{"ping": false, "query": false, "inspect_schema": false}
	for _, tool := range toolsRes.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected %s tool in list", name)
		}
	}
}

// Write statements must be rejected by screening before any connection is
// attempted; with no database configured the rejection message must still be
// about the keyword, not about connectivity.
func TestQueryToolRejectsWrites(t *testing.T) {
	c := newTestClient(t)

	res := callTool(t, c, "query", map[string]any{"sql": "DROP TABLE users"})
	if !res.IsError {
		t.Fatal("expected error result for DROP")
	}
	text := textContent(res)
	if !strings.Contains(text, "read-only keyword") {
		t.Errorf("unexpected rejection message: %q", text)
	}
	if strings.Contains(text, "database") {
		t.Errorf("rejection should not mention connectivity: %q", text)
	}
}

func TestQueryToolRejectsSmuggledWrite(t *testing.T) {
	c := newTestClient(t)

	res := callTool(t, c, "query", map[string]any{"sql": "SELECT 1; /* x */ DELETE FROM t"})
	if !res.IsError {
		t.Fatal("expected error result for batch containing DELETE")
	}
	if text := textContent(res); !strings.Contains(text, "statement 1") {
		t.Errorf("expected the failing statement index in %q", text)
	}
}

func TestQueryToolMissingArgument(t *testing.T) {
	c := newTestClient(t)

	res := callTool(t, c, "query", map[string]any{})
	if !res.IsError {
		t.Error("expected error result without sql argument")
	}
}

func TestQueryToolNoDatabase(t *testing.T) {
	c := newTestClient(t)

	// read-only statement passes screening, then fails at the pool
	res := callTool(t, c, "query", map[string]any{"sql": "SELECT 1"})
	if !res.IsError {
		t.Fatal("expected error result with no database configured")
	}
	if text := textContent(res); !strings.Contains(text, "no database configured") {
		t.Errorf("unexpected message: %q", text)
	}
}

func textContent(res *mcp.CallToolResult) string {
	if res == nil || len(res.Content) == 0 {
		return ""
	}
	if tc, ok := mcp.AsTextContent(res.Content[0]); ok {
		return tc.Text
	}
	return ""
}

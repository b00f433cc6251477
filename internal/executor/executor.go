// Package executor is the client for the external MCP tool service.
// Tool execution happens out of process; latency and failure modes of the
// server are opaque to the orchestration core.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	provider "github.com/medifinder/chat/internal/provider/models"
)

// rpc is the subset of the MCP client the executor needs. Abstracted for
// testing.
type rpc interface {
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// toolFailedPrefix marks failures the MCP server reports in-band via
// IsError rather than as transport errors.
const toolFailedPrefix = "tool reported error"

// Client talks to the MCP tool server. It caches tool declarations after
// Connect; Execute performs one tool call per invocation with no retry.
type Client struct {
	rpc     rpc
	closer  func() error
	timeout time.Duration
	logger  *slog.Logger

	mu    sync.RWMutex
	tools []provider.ToolDefinition
	names []string
}

// New creates a client for the MCP server at serverURL using the
// streamable HTTP transport. timeout bounds each tool call; zero means
// no bound.
func New(serverURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	c, err := mcpclient.NewStreamableHttpClient(serverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}
	return &Client{rpc: c, closer: c.Close, timeout: timeout, logger: logger}, nil
}

// NewWithRPC creates a client over an existing MCP connection (for tests).
func NewWithRPC(r rpc, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{rpc: r, closer: r.Close, timeout: timeout, logger: logger}
}

// Connect performs the MCP handshake and caches the server's tool list.
func (c *Client) Connect(ctx context.Context) error {
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "medifinder-chat",
		Version: "1.0.0",
	}

	if _, err := c.rpc.Initialize(ctx, initReq); err != nil {
		return fmt.Errorf("MCP initialize failed: %w", err)
	}

	c.logger.Info("MCP session initialized")
	return c.RefreshTools(ctx)
}

// RefreshTools re-reads the tool list from the server.
func (c *Client) RefreshTools(ctx context.Context) error {
	result, err := c.rpc.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("MCP list tools failed: %w", err)
	}

	tools := make([]provider.ToolDefinition, 0, len(result.Tools))
	names := make([]string, 0, len(result.Tools))
	for _, t := range result.Tools {
		def, err := toToolDefinition(t)
		if err != nil {
			c.logger.Warn("skipping tool with unusable schema", "tool", t.Name, "error", err)
			continue
		}
		tools = append(tools, def)
		names = append(names, t.Name)
	}

	c.mu.Lock()
	c.tools = tools
	c.names = names
	c.mu.Unlock()

	c.logger.Info("MCP tools discovered", "count", len(tools))
	return nil
}

// Tools returns the cached tool declarations for the completion provider.
func (c *Client) Tools() []provider.ToolDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]provider.ToolDefinition, len(c.tools))
	copy(out, c.tools)
	return out
}

// ToolNames returns the names of the cached tools.
func (c *Client) ToolNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Execute calls a tool on the MCP server with the provided arguments and
// returns the flattened text result. Arguments pass through unmodified;
// schema validation is the server's responsibility.
func (c *Client) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	c.logger.Debug("calling tool", "tool", name)

	result, err := c.rpc.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("MCP call failed: %w", err)
	}

	text := flattenContent(result.Content)
	if result.IsError {
		if text == "" {
			text = "unknown tool failure"
		}
		return "", fmt.Errorf("%s: %s", toolFailedPrefix, text)
	}

	c.logger.Debug("tool call completed", "tool", name, "result_length", len(text))
	return text, nil
}

// Ping re-lists tools to verify the server is reachable, refreshing the
// cache as a side effect. Used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.RefreshTools(ctx)
}

// Close tears down the MCP connection.
func (c *Client) Close() error {
	return c.closer()
}

// flattenContent extracts a single text payload from MCP content blocks.
// Non-text blocks are JSON-encoded so the model still sees something useful.
func flattenContent(content []mcp.Content) string {
	var b strings.Builder
	for _, item := range content {
		switch tc := item.(type) {
		case mcp.TextContent:
			b.WriteString(tc.Text)
		case *mcp.TextContent:
			b.WriteString(tc.Text)
		default:
			if data, err := json.Marshal(item); err == nil {
				b.Write(data)
			}
		}
	}
	return b.String()
}

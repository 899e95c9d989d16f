//go:build mcp

package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type sdkClient struct {
	session *mcp.ClientSession
}

// New starts the MCP server named by command (a program path plus arguments,
// space-separated) and connects over stdio.
func New(ctx context.Context, command string, opts ...Option) (Client, error) {
	cfg := config{clientName: "trackbot"}
	for _, opt := range opts {
		opt(&cfg)
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty mcp server command")
	}
	client := mcp.NewClient(&mcp.Implementation{Name: cfg.clientName, Version: "v1"}, nil)
	transport := &mcp.CommandTransport{Command: exec.Command(fields[0], fields[1:]...)}
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect mcp server: %w", err)
	}
	return &sdkClient{session: session}, nil
}

func (c *sdkClient) ListTools(ctx context.Context) ([]RemoteTool, error) {
	res, err := c.session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, err
	}
	out := make([]RemoteTool, 0, len(res.Tools))
	for _, t := range res.Tools {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("encode schema for %s: %w", t.Name, err)
		}
		out = append(out, RemoteTool{Name: t.Name, Description: t.Description, InputSchema: schema})
	}
	return out, nil
}

func (c *sdkClient) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("mcp tool %s failed: %s", name, sb.String())
	}
	return sb.String(), nil
}

func (c *sdkClient) Close() error { return c.session.Close() }

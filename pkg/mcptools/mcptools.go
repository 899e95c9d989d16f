// Package mcptools bridges tools served by an MCP server into the agent's
// tool catalog, so remote actions sit next to the built-in workout tools. The
// SDK-backed client is compiled in with the mcp build tag; the default build
// carries a stub that reports MCP as unavailable.
package mcptools

import (
	"context"
	"fmt"

	"github.com/wilhg/trackbot/pkg/agent"
)

// RemoteTool describes one tool advertised by an MCP server.
type RemoteTool struct {
	Name        string
	Description string
	InputSchema []byte
}

// Client is the minimal MCP surface the catalog bridge needs.
type Client interface {
	ListTools(ctx context.Context) ([]RemoteTool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
	Close() error
}

// Option configures the client constructor.
type Option func(*config)

type config struct {
	clientName string
}

// WithClientName sets the name reported to the server during the handshake.
func WithClientName(name string) Option {
	return func(c *config) { c.clientName = name }
}

// RegisterAll lists the server's tools and registers each on the catalog.
// Remote names collide with local ones under the usual duplicate_action rule.
func RegisterAll(ctx context.Context, cat *agent.Catalog, client Client) error {
	remote, err := client.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("list mcp tools: %w", err)
	}
	for _, rt := range remote {
		if err := cat.Register(newRemote(client, rt)); err != nil {
			return err
		}
	}
	return nil
}

func newRemote(client Client, rt RemoteTool) agent.Tool {
	return agent.ToolFunc{
		Descriptor: agent.ToolDescriptor{
			Name:        rt.Name,
			Description: rt.Description,
			InputSchema: rt.InputSchema,
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return client.CallTool(ctx, rt.Name, args)
		},
	}
}

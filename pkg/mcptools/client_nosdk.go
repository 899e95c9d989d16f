//go:build !mcp

package mcptools

import (
	"context"
	"errors"
)

// New returns a stub client which reports not supported unless built with the
// mcp tag.
func New(_ context.Context, _ string, _ ...Option) (Client, error) {
	return noopClient{}, nil
}

type noopClient struct{}

func (noopClient) ListTools(context.Context) ([]RemoteTool, error) {
	return nil, errors.New("mcp not enabled in this build")
}

func (noopClient) CallTool(context.Context, string, map[string]any) (string, error) {
	return "", errors.New("mcp not enabled in this build")
}

func (noopClient) Close() error { return nil }

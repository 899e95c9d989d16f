//go:build !mcp

package mcptools

import (
	"context"
	"testing"
)

func TestStubClientReportsUnavailable(t *testing.T) {
	client, err := New(context.Background(), "server")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.ListTools(context.Background()); err == nil {
		t.Fatal("stub must report mcp as unavailable")
	}
}

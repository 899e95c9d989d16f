package mcptools

import (
	"context"
	"testing"

	"github.com/wilhg/trackbot/pkg/agent"
)

type fakeClient struct {
	tools  []RemoteTool
	called []string
}

func (f *fakeClient) ListTools(context.Context) ([]RemoteTool, error) { return f.tools, nil }

func (f *fakeClient) CallTool(_ context.Context, name string, _ map[string]any) (string, error) {
	f.called = append(f.called, name)
	return "remote ok", nil
}

func (f *fakeClient) Close() error { return nil }

func TestRegisterAllBridgesRemoteTools(t *testing.T) {
	client := &fakeClient{tools: []RemoteTool{{
		Name:        "lookup_exercise",
		Description: "Find an exercise by name.",
		InputSchema: []byte(`{"type":"object","properties":{"q":{"type":"string"}},"required":["q"]}`),
	}}}
	cat := agent.NewCatalog(nil)
	if err := RegisterAll(context.Background(), cat, client); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	out, err := cat.Execute(context.Background(), "lookup_exercise", map[string]any{"q": "RDL"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != "remote ok" {
		t.Fatalf("result = %q", out)
	}
	if len(client.called) != 1 || client.called[0] != "lookup_exercise" {
		t.Fatalf("called = %v", client.called)
	}
}

package agent

import (
	"context"
	"testing"

	"github.com/wilhg/trackbot/pkg/errmodel"
)

func newEchoTool(name string) Tool {
	return ToolFunc{
		Descriptor: ToolDescriptor{
			Name:        name,
			Description: "echoes a message",
			InputSchema: []byte(`{"type":"object","properties":{"msg":{"type":"string"}},"required":["msg"],"additionalProperties":false}`),
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			msg, _ := args["msg"].(string)
			return "echo: " + msg, nil
		},
	}
}

func TestCatalogRegisterResolve(t *testing.T) {
	c := NewCatalog(nil)
	if err := c.Register(newEchoTool("echo")); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Resolve("echo"); err != nil {
		t.Fatal(err)
	}
	if err := c.Register(newEchoTool("echo")); !errmodel.IsCode(err, errmodel.CategoryValidation, errmodel.CodeDuplicateAction) {
		t.Fatalf("duplicate register err=%v", err)
	}
	if _, err := c.Resolve("missing"); !errmodel.IsCode(err, errmodel.CategoryValidation, errmodel.CodeUnknownAction) {
		t.Fatalf("unknown resolve err=%v", err)
	}
}

func TestCatalogSpecsSorted(t *testing.T) {
	c := NewCatalog(nil)
	for _, n := range []string{"zeta", "alpha", "mid"} {
		if err := c.Register(newEchoTool(n)); err != nil {
			t.Fatal(err)
		}
	}
	specs := c.Specs()
	if len(specs) != 3 {
		t.Fatalf("len=%d", len(specs))
	}
	if specs[0].Name != "alpha" || specs[1].Name != "mid" || specs[2].Name != "zeta" {
		t.Fatalf("unsorted: %s %s %s", specs[0].Name, specs[1].Name, specs[2].Name)
	}
}

func TestCatalogExecuteValidatesArgs(t *testing.T) {
	invoked := false
	c := NewCatalog(nil)
	err := c.Register(ToolFunc{
		Descriptor: ToolDescriptor{
			Name:        "strict",
			InputSchema: []byte(`{"type":"object","properties":{"n":{"type":"integer"}},"required":["n"],"additionalProperties":false}`),
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			invoked = true
			return "ok", nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Execute(context.Background(), "strict", map[string]any{"n": "not a number"}); !errmodel.IsCode(err, errmodel.CategoryValidation, errmodel.CodeInvalidArguments) {
		t.Fatalf("err=%v", err)
	}
	if invoked {
		t.Fatal("executor ran despite schema violation")
	}

	out, err := c.Execute(context.Background(), "strict", map[string]any{"n": 3})
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok" || !invoked {
		t.Fatalf("out=%q invoked=%v", out, invoked)
	}
}

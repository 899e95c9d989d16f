package agent

import (
	"context"
)

// ToolDescriptor declares the static interface of a tool: the action name the
// model calls it by, a description for the model's function catalog, and the
// input schema (JSON Schema draft 2020-12, UTF-8 bytes) its arguments must
// satisfy.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema []byte `json:"input_schema"`
}

// Tool is a callable action the assistant may request. Invoke receives
// arguments already validated against InputSchema and returns result text
// for the model's next turn. Executors carry their own timeout and surface
// failures as errors, never hangs.
type Tool interface {
	// Describe returns the public descriptor.
	Describe() ToolDescriptor
	// Invoke executes the action. The args MUST conform to InputSchema.
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// DescribeTool is a nil-safe helper to get a ToolDescriptor from a Tool.
func DescribeTool(t Tool) ToolDescriptor {
	if t == nil {
		return ToolDescriptor{}
	}
	return t.Describe()
}

// ToolFunc adapts a plain function plus a descriptor into a Tool.
type ToolFunc struct {
	Descriptor ToolDescriptor
	Fn         func(ctx context.Context, args map[string]any) (string, error)
}

func (t ToolFunc) Describe() ToolDescriptor { return t.Descriptor }

func (t ToolFunc) Invoke(ctx context.Context, args map[string]any) (string, error) {
	return t.Fn(ctx, args)
}

package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wilhg/trackbot/pkg/errmodel"
)

// Catalog maps action names to tools. It is constructed explicitly at
// process start and injected into the engine; nothing registers tools
// mid-conversation.
type Catalog struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	validate ValidateFunc
}

// NewCatalog returns an empty catalog using the given argument validator.
// A nil validate defaults to JSONSchemaValidator.
func NewCatalog(validate ValidateFunc) *Catalog {
	if validate == nil {
		validate = JSONSchemaValidator
	}
	return &Catalog{tools: map[string]Tool{}, validate: validate}
}

// Register adds a tool under its descriptor name. Registering a name twice
// fails with validation/duplicate_action.
func (c *Catalog) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	d := t.Describe()
	if d.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if err := CompileJSONSchema(d.InputSchema); err != nil {
		return fmt.Errorf("tool %s input schema: %w", d.Name, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tools[d.Name]; exists {
		return errmodel.Validation(errmodel.CodeDuplicateAction,
			fmt.Sprintf("action %q already registered", d.Name),
			map[string]any{"action": d.Name})
	}
	c.tools[d.Name] = t
	return nil
}

// Resolve returns the tool registered under name, or a
// validation/unknown_action error.
func (c *Catalog) Resolve(name string) (Tool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tools[name]
	if !ok {
		return nil, errmodel.Validation(errmodel.CodeUnknownAction,
			fmt.Sprintf("action %q is not registered", name),
			map[string]any{"action": name})
	}
	return t, nil
}

// Specs returns the descriptors of all registered tools, sorted by name, for
// exposure to the model as its function-calling catalog.
func (c *Catalog) Specs() []ToolDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ToolDescriptor, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, t.Describe())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute resolves name, validates args against the tool's input schema, and
// invokes the executor. Schema violations fail with
// validation/invalid_arguments without invoking the executor.
func (c *Catalog) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	t, err := c.Resolve(name)
	if err != nil {
		return "", err
	}
	d := t.Describe()
	if err := c.validate(d.InputSchema, args); err != nil {
		return "", errmodel.Validation(errmodel.CodeInvalidArguments,
			"tool argument validation failed",
			map[string]any{"action": name, "error": err.Error()})
	}
	return t.Invoke(ctx, args)
}

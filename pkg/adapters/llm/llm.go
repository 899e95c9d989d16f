// Package llm defines the model capability contract: given a message
// sequence and a tool catalog, produce the next assistant turn. Providers
// register factories here so the entrypoint can pick one by name.
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/wilhg/trackbot/pkg/agent"
)

// Model is the opaque language-model capability. Complete makes exactly one
// call to the underlying provider per invocation; it does not retry
// internally and must not fabricate tool calls or content on failure.
type Model interface {
	// Name returns the provider name (e.g., "openai").
	Name() string
	// Complete produces the next assistant Turn from the transcript and the
	// available tool catalog. opts carry provider-specific settings (model id,
	// temperature); implementations ignore keys they don't know.
	Complete(ctx context.Context, turns []agent.Turn, tools []agent.ToolDescriptor, opts map[string]any) (agent.Turn, error)
}

// Factory constructs a Model from provider-specific config.
type Factory func(ctx context.Context, cfg map[string]any) (Model, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers a Model factory under a provider name.
func Register(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("llm: empty provider name")
	}
	if f == nil {
		return fmt.Errorf("llm: nil factory for %q", name)
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := factories[name]; exists {
		return fmt.Errorf("llm: provider %q already registered", name)
	}
	factories[name] = f
	return nil
}

// Resolve gets a registered factory by name.
func Resolve(name string) (Factory, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// Range iterates all registered factories.
func Range(fn func(name string, f Factory)) {
	regMu.RLock()
	defer regMu.RUnlock()
	for n, f := range factories {
		fn(n, f)
	}
}

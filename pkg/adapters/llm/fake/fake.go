// Package fake provides a scripted Model for unit tests and offline eval.
// It returns queued assistant turns in order and records every request it
// receives, so tests can assert on what the engine sent.
package fake

import (
	"context"
	"errors"
	"sync"

	"github.com/wilhg/trackbot/pkg/adapters/llm"
	"github.com/wilhg/trackbot/pkg/agent"
)

// Request captures one Complete invocation.
type Request struct {
	Turns []agent.Turn
	Tools []agent.ToolDescriptor
}

// Model is a scripted llm.Model. Not safe for concurrent scripting, but
// Complete itself is mutex-guarded.
type Model struct {
	mu       sync.Mutex
	script   []step
	requests []Request
}

type step struct {
	turn agent.Turn
	err  error
}

// New returns an empty scripted model. Use Reply/Fail to enqueue behavior.
func New() *Model { return &Model{} }

// Reply enqueues an assistant turn to return on the next Complete call.
func (m *Model) Reply(t agent.Turn) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, step{turn: t})
	return m
}

// ReplyText enqueues a plain assistant text turn.
func (m *Model) ReplyText(content string) *Model {
	return m.Reply(agent.Turn{Role: agent.RoleAssistant, Content: content})
}

// ReplyToolCalls enqueues an assistant turn requesting the given calls.
func (m *Model) ReplyToolCalls(content string, calls ...agent.ToolCall) *Model {
	return m.Reply(agent.Turn{Role: agent.RoleAssistant, Content: content, ToolCalls: calls})
}

// Fail enqueues an error to return on the next Complete call.
func (m *Model) Fail(err error) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, step{err: err})
	return m
}

// Requests returns a copy of the recorded requests.
func (m *Model) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *Model) Name() string { return "fake" }

func (m *Model) Complete(ctx context.Context, turns []agent.Turn, tools []agent.ToolDescriptor, opts map[string]any) (agent.Turn, error) {
	if err := ctx.Err(); err != nil {
		return agent.Turn{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, Request{Turns: agent.CloneTranscript(turns), Tools: tools})
	if len(m.script) == 0 {
		return agent.Turn{}, errors.New("fake model: script exhausted")
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.err != nil {
		return agent.Turn{}, next.err
	}
	return next.turn.Clone(), nil
}

func init() {
	_ = llm.Register("fake", func(ctx context.Context, cfg map[string]any) (llm.Model, error) {
		return New(), nil
	})
}

// Package agent defines the core contracts of the trackbot conversation
// engine: the Turn message model, the mutable agent state threaded through
// the control loop, and the tool catalog the model may call into.
package agent

import (
	"fmt"

	"github.com/wilhg/trackbot/pkg/errmodel"
)

// Role identifies who produced a Turn.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ToolCall is a single action request embedded in an assistant Turn.
// Arguments are an opaque key-value map; only the Catalog validates them
// against the registered input schema.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Turn is one entry in a conversation transcript. Turns are immutable once
// appended; a transcript only grows.
//
// ToolCalls is set only on assistant turns that request actions.
// ToolCallID is set only on tool turns and links the result back to the
// assistant tool call that produced it.
type Turn struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// HumanTurn builds a human Turn with the given text.
func HumanTurn(content string) Turn { return Turn{Role: RoleHuman, Content: content} }

// SystemTurn builds a system Turn with the given instruction text.
func SystemTurn(content string) Turn { return Turn{Role: RoleSystem, Content: content} }

// ToolResultTurn builds a tool Turn carrying the result for callID.
func ToolResultTurn(callID, content string) Turn {
	return Turn{Role: RoleTool, Content: content, ToolCallID: callID}
}

// Clone copies the ToolCall with its own arguments map.
func (tc ToolCall) Clone() ToolCall {
	out := tc
	if tc.Arguments != nil {
		args := make(map[string]any, len(tc.Arguments))
		for k, v := range tc.Arguments {
			args[k] = v
		}
		out.Arguments = args
	}
	return out
}

// Clone deep-copies the Turn, including tool call argument maps.
func (t Turn) Clone() Turn {
	out := t
	if len(t.ToolCalls) > 0 {
		out.ToolCalls = make([]ToolCall, len(t.ToolCalls))
		for i, tc := range t.ToolCalls {
			out.ToolCalls[i] = tc.Clone()
		}
	}
	return out
}

// CloneTranscript deep-copies a transcript.
func CloneTranscript(ts []Turn) []Turn {
	if ts == nil {
		return nil
	}
	out := make([]Turn, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}

// TransportMessage is the wire representation of a Turn used by the HTTP
// layer around the engine. The shape matches the Turn field-for-field; the
// conversion exists so the transcript format can evolve independently of
// the engine's internal model.
type TransportMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToTransport converts a Turn to its wire form. Unrecognized roles fail with
// a validation/unknown_role error.
func ToTransport(t Turn) (TransportMessage, error) {
	switch t.Role {
	case RoleHuman, RoleAssistant, RoleSystem, RoleTool:
	default:
		return TransportMessage{}, unknownRole(string(t.Role))
	}
	return TransportMessage{
		Role:       string(t.Role),
		Content:    t.Content,
		ToolCalls:  t.Clone().ToolCalls,
		ToolCallID: t.ToolCallID,
	}, nil
}

// FromTransport converts a wire message back to a Turn. Round-trips with
// ToTransport losslessly for all four roles.
func FromTransport(m TransportMessage) (Turn, error) {
	switch Role(m.Role) {
	case RoleHuman, RoleAssistant, RoleSystem, RoleTool:
	default:
		return Turn{}, unknownRole(m.Role)
	}
	t := Turn{
		Role:       Role(m.Role),
		Content:    m.Content,
		ToolCalls:  m.ToolCalls,
		ToolCallID: m.ToolCallID,
	}
	return t.Clone(), nil
}

func unknownRole(role string) error {
	return errmodel.Validation(errmodel.CodeUnknownRole,
		fmt.Sprintf("unrecognized message role %q", role),
		map[string]any{"role": role})
}

// ValidateTranscript checks the tool-call pairing invariant: every tool turn
// references exactly one tool call from an earlier assistant turn, and no
// call is answered twice.
func ValidateTranscript(ts []Turn) error {
	open := map[string]bool{}   // call id -> awaiting result
	closed := map[string]bool{} // call id -> already answered
	for i, t := range ts {
		switch t.Role {
		case RoleAssistant:
			for _, tc := range t.ToolCalls {
				if tc.ID == "" {
					return errmodel.Validation("missing_call_id", "assistant tool call has no id",
						map[string]any{"index": i, "tool": tc.Name})
				}
				if open[tc.ID] || closed[tc.ID] {
					return errmodel.Validation("duplicate_call_id", "tool call id reused",
						map[string]any{"index": i, "call_id": tc.ID})
				}
				open[tc.ID] = true
			}
		case RoleTool:
			if !open[t.ToolCallID] {
				return errmodel.Validation("unmatched_tool_result", "tool result without a pending call",
					map[string]any{"index": i, "call_id": t.ToolCallID})
			}
			delete(open, t.ToolCallID)
			closed[t.ToolCallID] = true
		}
	}
	return nil
}

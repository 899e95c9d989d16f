package runtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wilhg/trackbot/pkg/agent"
	"github.com/wilhg/trackbot/pkg/store"
)

// encodeState converts the in-memory state into its persisted checkpoint
// layout. Transcript and audit log travel as JSON so the store stays ignorant
// of the message model.
func encodeState(st *agent.State) (store.CheckpointRecord, error) {
	transcript, err := json.Marshal(st.Transcript)
	if err != nil {
		return store.CheckpointRecord{}, fmt.Errorf("encode transcript: %w", err)
	}
	toolsCalled := st.ToolsCalled
	if toolsCalled == nil {
		toolsCalled = []agent.ToolCallRecord{}
	}
	audit, err := json.Marshal(toolsCalled)
	if err != nil {
		return store.CheckpointRecord{}, fmt.Errorf("encode tools_called: %w", err)
	}
	return store.CheckpointRecord{
		SessionID:          st.SessionID,
		UserID:             st.UserID,
		Transcript:         transcript,
		ToolsCalled:        audit,
		PendingInputPrompt: st.PendingInputPrompt,
		Status:             string(st.Status),
		NextAction:         string(st.NextAction),
		UpdatedAt:          time.Now().UTC(),
	}, nil
}

// decodeState restores a state from its checkpoint.
func decodeState(rec store.CheckpointRecord) (*agent.State, error) {
	st := &agent.State{
		SessionID:          rec.SessionID,
		UserID:             rec.UserID,
		PendingInputPrompt: rec.PendingInputPrompt,
		Status:             agent.Status(rec.Status),
		NextAction:         agent.NextAction(rec.NextAction),
		UpdatedAt:          rec.UpdatedAt,
	}
	if len(rec.Transcript) > 0 {
		if err := json.Unmarshal(rec.Transcript, &st.Transcript); err != nil {
			return nil, fmt.Errorf("decode transcript: %w", err)
		}
	}
	if len(rec.ToolsCalled) > 0 {
		if err := json.Unmarshal(rec.ToolsCalled, &st.ToolsCalled); err != nil {
			return nil, fmt.Errorf("decode tools_called: %w", err)
		}
	}
	return st, nil
}

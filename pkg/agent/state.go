package agent

import "time"

// Status is the conversation-level lifecycle of an agent session.
type Status string

const (
	StatusStarted         Status = "started"
	StatusActive          Status = "active"
	StatusWaitingForInput Status = "waiting_for_input"
	StatusCompleted       Status = "completed"
)

// NextAction is the state machine's transition selector. It records which
// edge the loop took (or will take) so a restored session re-enters the loop
// at the right place.
type NextAction string

const (
	ActionProcessMessages NextAction = "process_messages"
	ActionTools           NextAction = "tools"
	ActionUserInput       NextAction = "user_input"
	ActionContinue        NextAction = "continue"
	ActionEnd             NextAction = "end"
)

// ToolCallRecord is one entry in the append-only audit log of attempted tool
// calls. It is distinct from the transcript: the record is written before the
// executor runs, so a crash mid-execution still shows what was attempted.
type ToolCallRecord struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	CallID    string         `json:"call_id"`
}

// State is the mutable record threaded through the engine's control loop.
// It is one explicit struct, never an untyped map: every transition's
// input/output contract is statically checkable.
//
// Invariant: Status == StatusWaitingForInput iff the loop suspended on its
// most recent iteration iff PendingInputPrompt is non-empty.
type State struct {
	SessionID          string           `json:"session_id"`
	UserID             string           `json:"user_id"`
	Transcript         []Turn           `json:"transcript"`
	ToolsCalled        []ToolCallRecord `json:"tools_called"`
	PendingInputPrompt string           `json:"pending_input_prompt"`
	Status             Status           `json:"status"`
	NextAction         NextAction       `json:"next_action"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// NewState builds a fresh started state for one conversation invocation.
func NewState(sessionID, userID string, transcript []Turn) *State {
	return &State{
		SessionID:  sessionID,
		UserID:     userID,
		Transcript: CloneTranscript(transcript),
		Status:     StatusStarted,
		NextAction: ActionProcessMessages,
	}
}

// Clone deep-copies the state so a caller can hold a snapshot while the loop
// keeps mutating the original.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Transcript = CloneTranscript(s.Transcript)
	if s.ToolsCalled != nil {
		out.ToolsCalled = make([]ToolCallRecord, len(s.ToolsCalled))
		for i, r := range s.ToolsCalled {
			out.ToolsCalled[i] = r
			if r.Arguments != nil {
				args := make(map[string]any, len(r.Arguments))
				for k, v := range r.Arguments {
					args[k] = v
				}
				out.ToolsCalled[i].Arguments = args
			}
		}
	}
	return &out
}

// LastTurn returns the most recent transcript entry, or false if empty.
func (s *State) LastTurn() (Turn, bool) {
	if len(s.Transcript) == 0 {
		return Turn{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

// Suspended reports whether the session is paused awaiting user input.
func (s *State) Suspended() bool { return s.Status == StatusWaitingForInput }

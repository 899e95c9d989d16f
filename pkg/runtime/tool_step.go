package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/wilhg/trackbot/pkg/agent"
	"github.com/wilhg/trackbot/pkg/errmodel"
)

// toolStep executes every tool call requested by the assistant turn and
// appends one tool-result turn per call, in the original call order, each
// matched by call id.
//
// Calls are independent: one failure never aborts the others. A failing call
// becomes a tool-result turn carrying an error description so the model can
// self-correct on its next turn. Every call is recorded in the audit log
// before execution begins, so a crash mid-execution still shows what was
// attempted.
func (e *Engine) toolStep(ctx context.Context, st *agent.State, assistant agent.Turn) error {
	calls := assistant.ToolCalls

	// The audit record and the executor each get their own copy of the
	// arguments; a mutating executor must not rewrite the transcript turn
	// or the audit log.
	for _, tc := range calls {
		st.ToolsCalled = append(st.ToolsCalled, agent.ToolCallRecord{
			Name:      tc.Name,
			Arguments: tc.Clone().Arguments,
			CallID:    tc.ID,
		})
	}

	results := make([]agent.Turn, len(calls))
	var wg sync.WaitGroup
	for i, tc := range calls {
		wg.Add(1)
		go func(i int, tc agent.ToolCall) {
			defer wg.Done()
			results[i] = e.executeOne(ctx, st.SessionID, tc)
		}(i, tc.Clone())
	}
	wg.Wait()

	// A cancelled invocation must not record half-applied transitions.
	if err := ctx.Err(); err != nil {
		return err
	}
	st.Transcript = append(st.Transcript, results...)
	return nil
}

func (e *Engine) executeOne(ctx context.Context, sessionID string, tc agent.ToolCall) agent.Turn {
	out, err := e.catalog.Execute(ctx, tc.Name, tc.Arguments)
	if err == nil {
		e.log.Info("tool executed", "session_id", sessionID, "action", tc.Name, "call_id", tc.ID)
		return agent.ToolResultTurn(tc.ID, out)
	}

	// Configuration and argument errors are programming mistakes; log them
	// loudly. They still come back as tool-result turns so the conversation
	// can continue.
	if errmodel.IsCode(err, errmodel.CategoryValidation, errmodel.CodeUnknownAction) ||
		errmodel.IsCode(err, errmodel.CategoryValidation, errmodel.CodeInvalidArguments) {
		e.log.Error("tool call rejected", "session_id", sessionID, "action", tc.Name, "call_id", tc.ID, "error", err)
	} else {
		e.log.Warn("tool execution failed", "session_id", sessionID, "action", tc.Name, "call_id", tc.ID, "error", err)
	}
	return agent.ToolResultTurn(tc.ID, fmt.Sprintf("Error executing tool %s: %v", tc.Name, err))
}

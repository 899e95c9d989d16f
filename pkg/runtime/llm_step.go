package runtime

import (
	"context"

	"github.com/wilhg/trackbot/pkg/agent"
	"github.com/wilhg/trackbot/pkg/errmodel"
	"github.com/wilhg/trackbot/pkg/prompt"
)

// llmStep makes exactly one model call over the windowed transcript with the
// fixed system instruction prepended, and returns the produced assistant
// turn. No retries here; retry policy belongs to the caller of the engine.
func (e *Engine) llmStep(ctx context.Context, st *agent.State) (agent.Turn, error) {
	turns := make([]agent.Turn, 0, len(st.Transcript)+1)
	if p, ok := e.prompts.Get(prompt.SystemPromptName, 0); ok {
		turns = append(turns, agent.SystemTurn(p.Body))
	}
	turns = append(turns, st.Transcript...)
	windowed, lg := e.window.Window(turns)
	if lg.DroppedCount > 0 {
		e.log.Debug("transcript windowed",
			"session_id", st.SessionID,
			"dropped_turns", lg.DroppedCount,
			"tokens", lg.TotalTokens)
	}

	assistant, err := e.model.Complete(ctx, windowed, e.catalog.Specs(), e.modelOpts)
	if err != nil {
		return agent.Turn{}, errmodel.Model(errmodel.CodeInvocation,
			"model invocation failed",
			map[string]any{"session_id": st.SessionID, "provider": e.model.Name()},
			err)
	}
	// The adapter must hand back an assistant turn; normalize rather than
	// trust every provider.
	assistant.Role = agent.RoleAssistant
	st.Transcript = append(st.Transcript, assistant)
	return assistant, nil
}

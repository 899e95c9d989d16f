package runtime

import (
	"strings"

	"github.com/wilhg/trackbot/pkg/agent"
)

// Clarifier decides whether an assistant turn is asking the user a question
// rather than delivering a final answer. The engine only consults it when the
// turn carries no tool calls.
//
// The default is a substring heuristic inherited from the product's first
// version. It will misclassify sentences that merely contain a trigger
// phrase; swap in a model-reported intent signal via WithClarifier when one
// is available.
type Clarifier interface {
	NeedsInput(content string) bool
}

// DefaultClarificationPhrases is the stock trigger list.
var DefaultClarificationPhrases = []string{
	"need more information",
	"can you provide",
	"please specify",
	"which option",
	"what would you prefer",
	"please provide",
	"could you clarify",
	"i need to know",
	"please tell me",
	"could you tell me",
	"need to know",
	"confirm",
}

// PhraseClarifier matches assistant content against a fixed phrase list,
// case-insensitively.
type PhraseClarifier struct {
	phrases []string
}

// NewPhraseClarifier builds a clarifier over the given phrases; with no
// arguments it uses DefaultClarificationPhrases.
func NewPhraseClarifier(phrases ...string) PhraseClarifier {
	if len(phrases) == 0 {
		phrases = DefaultClarificationPhrases
	}
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return PhraseClarifier{phrases: lowered}
}

func (c PhraseClarifier) NeedsInput(content string) bool {
	lower := strings.ToLower(content)
	for _, p := range c.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// suspendForInput marks the state as paused on the given assistant turn.
// Mirrors the engine's invariant: waiting_for_input iff a non-empty pending
// prompt is set.
func suspendForInput(st *agent.State, assistant agent.Turn) {
	st.PendingInputPrompt = assistant.Content
	st.Status = agent.StatusWaitingForInput
	st.NextAction = agent.ActionUserInput
}

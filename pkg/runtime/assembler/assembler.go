// Package assembler trims a conversation transcript to fit a model's token
// budget. Trimming is deterministic: the leading system instruction is
// pinned, the most recent turns are kept, and a tool-result turn is never
// kept without the assistant turn that requested it.
package assembler

import (
	"github.com/wilhg/trackbot/pkg/agent"
)

// Log summarizes the windowing decision.
type Log struct {
	TotalTokens  int // tokens of included turns
	DroppedCount int // turns excluded due to budget
}

// TokenEstimator estimates token usage of text content.
type TokenEstimator func(text string) int

// Windower assembles the transcript window sent to the model.
type Windower struct {
	estimate  TokenEstimator
	maxTokens int
}

// Option configures the Windower.
type Option func(*Windower)

// WithTokenEstimator sets the token estimator. Defaults to rune length.
func WithTokenEstimator(est TokenEstimator) Option {
	return func(w *Windower) {
		if est != nil {
			w.estimate = est
		}
	}
}

// WithMaxTokens sets the maximum token budget. Defaults to a large value (1e9).
func WithMaxTokens(n int) Option {
	return func(w *Windower) {
		if n > 0 {
			w.maxTokens = n
		}
	}
}

// New creates a new Windower.
func New(opts ...Option) *Windower {
	w := &Windower{
		estimate:  func(s string) int { return len([]rune(s)) },
		maxTokens: 1_000_000_000,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Window returns the transcript slice to send to the model.
// Behavior:
//   - Leading system turns are always included and charged against the budget.
//   - Remaining turns are included newest-first until the budget is exhausted.
//   - If the kept suffix begins with tool turns whose assistant call was
//     trimmed away, those orphans are dropped too.
func (w *Windower) Window(turns []agent.Turn) ([]agent.Turn, Log) {
	var lg Log
	if len(turns) == 0 {
		return nil, lg
	}

	// Pin the system prefix.
	sys := 0
	for sys < len(turns) && turns[sys].Role == agent.RoleSystem {
		sys++
	}
	budget := w.maxTokens
	for _, t := range turns[:sys] {
		budget -= w.cost(t)
		lg.TotalTokens += w.cost(t)
	}

	rest := turns[sys:]
	// Walk newest-first; start is the oldest non-system turn that still fits.
	start := len(rest)
	for i := len(rest) - 1; i >= 0; i-- {
		c := w.cost(rest[i])
		if c > budget {
			break
		}
		budget -= c
		lg.TotalTokens += c
		start = i
	}

	// Drop orphaned tool results at the head of the kept suffix.
	for start < len(rest) && rest[start].Role == agent.RoleTool {
		lg.TotalTokens -= w.cost(rest[start])
		start++
	}
	lg.DroppedCount = start

	out := make([]agent.Turn, 0, sys+len(rest)-start)
	out = append(out, turns[:sys]...)
	out = append(out, rest[start:]...)
	return out, lg
}

func (w *Windower) cost(t agent.Turn) int {
	c := w.estimate(t.Content)
	for _, tc := range t.ToolCalls {
		c += w.estimate(tc.Name)
	}
	if c == 0 {
		c = 1
	}
	return c
}

// Package runtime implements the agent's control loop as an explicit
// finite-state machine: process_messages → llm_call → {tools, user_input,
// end}, with tools looping back to llm_call and user_input suspending the
// session until the caller supplies a response.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wilhg/trackbot/pkg/adapters/llm"
	"github.com/wilhg/trackbot/pkg/agent"
	"github.com/wilhg/trackbot/pkg/errmodel"
	"github.com/wilhg/trackbot/pkg/prompt"
	"github.com/wilhg/trackbot/pkg/runtime/assembler"
	"github.com/wilhg/trackbot/pkg/store"
)

// DefaultMaxIterations bounds llm_call⇄tools round trips per invocation.
// A misbehaving model that keeps requesting tools fails the invocation
// instead of looping forever.
const DefaultMaxIterations = 8

// Engine coordinates the language-model step, the tool-execution step, and
// the clarification step over a durable session store. All collaborators are
// injected; the engine holds no global state.
type Engine struct {
	model     llm.Model
	catalog   *agent.Catalog
	sessions  store.SessionStore
	prompts   *prompt.Store
	clarifier Clarifier
	window    *assembler.Windower
	modelOpts map[string]any
	maxIter   int
	log       *slog.Logger

	// Per-session serialization: overlapping invocations for one session id
	// must not race to persist conflicting checkpoints.
	locks sessionLocks
}

// Option configures the Engine at construction time.
type Option func(*Engine)

// WithClarifier replaces the default phrase heuristic.
func WithClarifier(c Clarifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.clarifier = c
		}
	}
}

// WithMaxIterations sets the llm_call⇄tools iteration budget per invocation.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIter = n
		}
	}
}

// WithPromptStore replaces the default prompt store.
func WithPromptStore(ps *prompt.Store) Option {
	return func(e *Engine) {
		if ps != nil {
			e.prompts = ps
		}
	}
}

// WithWindower sets the transcript windower used before each model call.
func WithWindower(w *assembler.Windower) Option {
	return func(e *Engine) {
		if w != nil {
			e.window = w
		}
	}
}

// WithModelOptions passes provider-specific options (model id, temperature)
// to every Complete call.
func WithModelOptions(opts map[string]any) Option {
	return func(e *Engine) { e.modelOpts = opts }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine constructs an Engine over the given model, tool catalog, and
// session store.
func NewEngine(model llm.Model, catalog *agent.Catalog, sessions store.SessionStore, opts ...Option) *Engine {
	e := &Engine{
		model:     model,
		catalog:   catalog,
		sessions:  sessions,
		prompts:   prompt.DefaultStore(),
		clarifier: NewPhraseClarifier(),
		window:    assembler.New(),
		maxIter:   DefaultMaxIterations,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process starts a fresh loop over the supplied transcript. If sessionID is
// empty one is generated. The returned state is either completed or
// suspended in waiting_for_input; in both cases a checkpoint has been saved.
func (e *Engine) Process(ctx context.Context, transcript []agent.Turn, userID, sessionID string) (*agent.State, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if err := agent.ValidateTranscript(transcript); err != nil {
		return nil, err
	}
	unlock := e.lockSession(sessionID)
	defer unlock()

	st := agent.NewState(sessionID, userID, transcript)
	return e.run(ctx, st)
}

// Continue resumes a session suspended in waiting_for_input with the user's
// response. Resuming a session that does not exist, or is not suspended,
// fails with session/not_found and mutates nothing.
func (e *Engine) Continue(ctx context.Context, sessionID, userResponse string) (*agent.State, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	rec, err := e.sessions.Load(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errmodel.Session(errmodel.CodeNotFound,
			"no suspended session with this id",
			map[string]any{"session_id": sessionID})
	}
	if err != nil {
		return nil, errmodel.System("checkpoint_load", "loading checkpoint failed",
			map[string]any{"session_id": sessionID}, err)
	}
	st, err := decodeState(rec)
	if err != nil {
		return nil, errmodel.System("checkpoint_decode", "decoding checkpoint failed",
			map[string]any{"session_id": sessionID}, err)
	}
	if !st.Suspended() {
		return nil, errmodel.Session(errmodel.CodeNotFound,
			"session is not awaiting user input",
			map[string]any{"session_id": sessionID, "status": string(st.Status)})
	}

	st.Transcript = append(st.Transcript, agent.HumanTurn(userResponse))
	st.PendingInputPrompt = ""
	st.NextAction = agent.ActionContinue
	return e.run(ctx, st)
}

// Drop removes a session's checkpoint. Best-effort cleanup for callers that
// abandon a conversation.
func (e *Engine) Drop(ctx context.Context, sessionID string) error {
	return e.sessions.Drop(ctx, sessionID)
}

// run drives the loop until it terminates or suspends. A checkpoint is
// written only at loop exit; failed invocations leave the last good
// checkpoint intact so the caller can safely retry.
func (e *Engine) run(ctx context.Context, st *agent.State) (*agent.State, error) {
	tr := otel.Tracer("runtime/engine")
	ctx, span := tr.Start(ctx, "Engine.run", trace.WithAttributes(
		attribute.String("session.id", st.SessionID),
		attribute.String("user.id", st.UserID),
	))
	defer span.End()

	ctx = agent.WithUserID(ctx, st.UserID)
	st.Status = agent.StatusActive
	iterations := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, e.loopError(span, st, err)
		}

		assistant, err := e.llmStep(ctx, st)
		if err != nil {
			span.RecordError(err)
			e.log.Error("model step failed", "session_id", st.SessionID, "next_action", string(st.NextAction), "error", err)
			return nil, err
		}

		// Tool calls take precedence over the clarification heuristic.
		if len(assistant.ToolCalls) > 0 {
			iterations++
			if iterations > e.maxIter {
				return nil, e.loopError(span, st,
					fmt.Errorf("iteration budget exhausted after %d tool rounds", e.maxIter))
			}
			st.NextAction = agent.ActionTools
			e.log.Info("executing tools", "session_id", st.SessionID, "calls", len(assistant.ToolCalls), "iteration", iterations)
			if err := e.toolStep(ctx, st, assistant); err != nil {
				return nil, e.loopError(span, st, err)
			}
			// The model must see tool results before producing a final answer.
			continue
		}

		if e.clarifier.NeedsInput(assistant.Content) {
			suspendForInput(st, assistant)
			e.log.Info("awaiting user input", "session_id", st.SessionID, "prompt", st.PendingInputPrompt)
			return e.checkpoint(ctx, span, st)
		}

		st.Status = agent.StatusCompleted
		st.NextAction = agent.ActionEnd
		st.PendingInputPrompt = ""
		e.log.Info("conversation completed", "session_id", st.SessionID, "turns", len(st.Transcript))
		return e.checkpoint(ctx, span, st)
	}
}

// checkpoint persists the state at loop exit. Either the whole exit is
// durable or the invocation fails without touching the previous checkpoint.
func (e *Engine) checkpoint(ctx context.Context, span trace.Span, st *agent.State) (*agent.State, error) {
	rec, err := encodeState(st)
	if err != nil {
		return nil, e.loopError(span, st, err)
	}
	if err := e.sessions.Save(ctx, rec); err != nil {
		return nil, errmodel.System("checkpoint_save", "saving checkpoint failed",
			map[string]any{"session_id": st.SessionID}, err)
	}
	st.UpdatedAt = rec.UpdatedAt
	return st, nil
}

// loopError wraps unexpected loop failures as system/agent_loop, logged with
// the session id and the last transition selector.
func (e *Engine) loopError(span trace.Span, st *agent.State, cause error) error {
	err := errmodel.System(errmodel.CodeAgentLoop, "agent loop aborted",
		map[string]any{"session_id": st.SessionID, "next_action": string(st.NextAction)}, cause)
	span.RecordError(err)
	e.log.Error("agent loop aborted", "session_id", st.SessionID, "next_action", string(st.NextAction), "error", cause)
	return err
}

func (e *Engine) lockSession(sessionID string) func() {
	return e.locks.acquire(sessionID)
}

// sessionLocks is a refcounted keyed mutex. An entry exists only while at
// least one invocation holds or waits for it, so the table does not grow
// with the number of sessions ever seen.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	if l.entries == nil {
		l.entries = map[string]*sessionLock{}
	}
	e := l.entries[sessionID]
	if e == nil {
		e = &sessionLock{}
		l.entries[sessionID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, sessionID)
		}
		l.mu.Unlock()
	}
}

// Package eval provides an offline harness that replays scripted
// conversations through the engine and scores the outcomes. Scenarios run
// against the scripted model and an in-memory store, so they need no network
// and no credentials.
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/wilhg/trackbot/pkg/adapters/llm/fake"
	"github.com/wilhg/trackbot/pkg/agent"
	"github.com/wilhg/trackbot/pkg/runtime"
	"github.com/wilhg/trackbot/pkg/store/memstore"
)

// ScriptedTurn is one canned assistant reply. Turns with tool calls drive the
// tool-execution path; plain text drives clarification or completion.
type ScriptedTurn struct {
	Text      string           `json:"text,omitempty"`
	ToolCalls []agent.ToolCall `json:"tool_calls,omitempty"`
}

// Expectation is checked against the final state of a replayed scenario.
type Expectation struct {
	FinalStatus        string   `json:"final_status,omitempty"`
	TranscriptContains []string `json:"transcript_contains,omitempty"`
	ToolsCalled        []string `json:"tools_called,omitempty"`
}

// Scenario is one replayable conversation: the user's opening message, the
// model's scripted replies, and the answers the user gives at each
// clarification pause.
type Scenario struct {
	Name      string         `json:"name"`
	Opening   string         `json:"opening"`
	Script    []ScriptedTurn `json:"script"`
	Responses []string       `json:"responses,omitempty"`
	Expect    Expectation    `json:"expect"`
}

// Result reports one scenario's outcome.
type Result struct {
	Name    string
	Passed  bool
	Details []string
}

// RunScenario replays one scenario through a fresh engine wired with the
// given tools.
func RunScenario(ctx context.Context, sc Scenario, catalogTools []agent.Tool) (Result, error) {
	res := Result{Name: sc.Name}

	model := fake.New()
	for _, st := range sc.Script {
		model.Reply(agent.Turn{Role: agent.RoleAssistant, Content: st.Text, ToolCalls: st.ToolCalls})
	}
	cat := agent.NewCatalog(nil)
	for _, t := range catalogTools {
		if err := cat.Register(t); err != nil {
			return res, err
		}
	}
	eng := runtime.NewEngine(model, cat, memstore.New())

	st, err := eng.Process(ctx, []agent.Turn{agent.HumanTurn(sc.Opening)}, "eval", "")
	if err != nil {
		return res, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	for _, answer := range sc.Responses {
		if !st.Suspended() {
			res.Details = append(res.Details, "unused response: "+answer)
			break
		}
		st, err = eng.Continue(ctx, st.SessionID, answer)
		if err != nil {
			return res, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}

	res.Details = append(res.Details, check(sc.Expect, st)...)
	res.Passed = len(res.Details) == 0
	return res, nil
}

func check(want Expectation, st *agent.State) []string {
	var details []string
	if want.FinalStatus != "" && string(st.Status) != want.FinalStatus {
		details = append(details, fmt.Sprintf("final status %q, want %q", st.Status, want.FinalStatus))
	}
	var sb strings.Builder
	for _, t := range st.Transcript {
		sb.WriteString(t.Content)
		sb.WriteByte('\n')
	}
	transcript := sb.String()
	for _, s := range want.TranscriptContains {
		if !strings.Contains(transcript, s) {
			details = append(details, "transcript missing: "+s)
		}
	}
	if want.ToolsCalled != nil {
		got := make([]string, len(st.ToolsCalled))
		for i, rec := range st.ToolsCalled {
			got[i] = rec.Name
		}
		if fmt.Sprint(got) != fmt.Sprint(want.ToolsCalled) {
			details = append(details, fmt.Sprintf("tools called %v, want %v", got, want.ToolsCalled))
		}
	}
	return details
}

// RunSuite loads scenario fixtures (json files) from an fs.FS directory and
// replays each. Returns score [0,1].
func RunSuite(ctx context.Context, fsys fs.FS, dir string, catalogTools []agent.Tool) (score float64, results []Result, err error) {
	scenarios, err := loadScenarios(fsys, dir)
	if err != nil {
		return 0, nil, err
	}
	if len(scenarios) == 0 {
		return 1, nil, nil
	}
	passed := 0
	for _, sc := range scenarios {
		r, err := RunScenario(ctx, sc, catalogTools)
		if err != nil {
			r.Details = append(r.Details, err.Error())
		}
		if r.Passed {
			passed++
		}
		results = append(results, r)
	}
	return float64(passed) / float64(len(scenarios)), results, nil
}

func loadScenarios(fsys fs.FS, dir string) ([]Scenario, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var out []Scenario
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := fs.ReadFile(fsys, filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var sc Scenario
		if err := json.Unmarshal(b, &sc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Name(), err)
		}
		out = append(out, sc)
	}
	return out, nil
}

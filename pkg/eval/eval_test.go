package eval

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/wilhg/trackbot/pkg/agent"
	"github.com/wilhg/trackbot/pkg/agent/tools"
)

func evalTools() []agent.Tool {
	sink := tools.NewMemorySink()
	return []agent.Tool{tools.NewCardio(sink), tools.NewStrength(sink), tools.NewWorkout(sink)}
}

func TestRunScenarioHappyPath(t *testing.T) {
	sc := Scenario{
		Name:    "cardio",
		Opening: "I ran 5km in 30 minutes",
		Script: []ScriptedTurn{
			{ToolCalls: []agent.ToolCall{{ID: "c1", Name: tools.ActionCreateCardio,
				Arguments: map[string]any{"name": "Run", "distance": 5000.0, "duration": 1800.0}}}},
			{Text: "Your run is saved."},
		},
		Expect: Expectation{
			FinalStatus:        "completed",
			TranscriptContains: []string{"Your run is saved."},
			ToolsCalled:        []string{tools.ActionCreateCardio},
		},
	}
	r, err := RunScenario(context.Background(), sc, evalTools())
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if !r.Passed {
		t.Fatalf("details: %v", r.Details)
	}
}

func TestRunScenarioWithClarification(t *testing.T) {
	sc := Scenario{
		Name:    "clarify",
		Opening: "I did RDL",
		Script: []ScriptedTurn{
			{Text: "Please specify the weight and reps."},
			{ToolCalls: []agent.ToolCall{{ID: "c1", Name: tools.ActionCreateStrength,
				Arguments: map[string]any{"name": "RDL", "reps": 8, "weight": 60.0}}}},
			{Text: "Logged."},
		},
		Responses: []string{"8 reps at 60 kg"},
		Expect:    Expectation{FinalStatus: "completed", ToolsCalled: []string{tools.ActionCreateStrength}},
	}
	r, err := RunScenario(context.Background(), sc, evalTools())
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if !r.Passed {
		t.Fatalf("details: %v", r.Details)
	}
}

func TestRunSuiteScoresFailures(t *testing.T) {
	fsys := fstest.MapFS{
		"cases/pass.json": {Data: []byte(`{
			"name": "pass",
			"opening": "hello",
			"script": [{"text": "Hi there, all set."}],
			"expect": {"final_status": "completed"}
		}`)},
		"cases/fail.json": {Data: []byte(`{
			"name": "fail",
			"opening": "hello",
			"script": [{"text": "Hi there, all set."}],
			"expect": {"transcript_contains": ["never said"]}
		}`)},
	}
	score, results, err := RunSuite(context.Background(), fsys, "cases", nil)
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	if score != 0.5 || len(results) != 2 {
		t.Fatalf("score=%v results=%v", score, results)
	}
}

package assembler

import (
	"testing"

	"github.com/wilhg/trackbot/pkg/agent"
)

func TestWindowKeepsEverythingUnderBudget(t *testing.T) {
	w := New(WithMaxTokens(1000))
	turns := []agent.Turn{
		agent.SystemTurn("instruction"),
		agent.HumanTurn("log my run"),
		{Role: agent.RoleAssistant, Content: "done"},
	}
	out, lg := w.Window(turns)
	if len(out) != 3 {
		t.Fatalf("len=%d", len(out))
	}
	if lg.DroppedCount != 0 {
		t.Fatalf("dropped=%d", lg.DroppedCount)
	}
}

func TestWindowPinsSystemAndKeepsNewest(t *testing.T) {
	// Each content is 10 runes; budget fits system + two turns.
	w := New(WithMaxTokens(30))
	turns := []agent.Turn{
		agent.SystemTurn("aaaaaaaaaa"),
		agent.HumanTurn("bbbbbbbbbb"),
		{Role: agent.RoleAssistant, Content: "cccccccccc"},
		agent.HumanTurn("dddddddddd"),
	}
	out, lg := w.Window(turns)
	if len(out) != 3 {
		t.Fatalf("len=%d out=%+v", len(out), out)
	}
	if out[0].Role != agent.RoleSystem {
		t.Fatal("system turn not pinned")
	}
	if out[1].Content != "cccccccccc" || out[2].Content != "dddddddddd" {
		t.Fatalf("wrong suffix kept: %+v", out[1:])
	}
	if lg.DroppedCount != 1 {
		t.Fatalf("dropped=%d", lg.DroppedCount)
	}
}

func TestWindowDropsOrphanedToolResults(t *testing.T) {
	w := New(WithMaxTokens(25))
	turns := []agent.Turn{
		agent.SystemTurn("aaaaa"), // 5
		{Role: agent.RoleAssistant, Content: "bbbbbbbbbbbbbbbbbbbb", ToolCalls: []agent.ToolCall{{ID: "c1", Name: "x"}}}, // >budget with the rest
		agent.ToolResultTurn("c1", "ddddd"), // 5
		{Role: agent.RoleAssistant, Content: "eeeee"}, // 5
	}
	out, _ := w.Window(turns)
	// The assistant turn holding the call does not fit, so its tool result
	// must be dropped as well.
	for _, turn := range out {
		if turn.Role == agent.RoleTool {
			t.Fatalf("orphaned tool turn kept: %+v", out)
		}
	}
	if out[len(out)-1].Content != "eeeee" {
		t.Fatalf("newest turn missing: %+v", out)
	}
}

func TestWindowEmptyTranscript(t *testing.T) {
	out, lg := New().Window(nil)
	if out != nil || lg.TotalTokens != 0 {
		t.Fatalf("out=%v lg=%+v", out, lg)
	}
}

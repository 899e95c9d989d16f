package agent

import (
	"reflect"
	"testing"

	"github.com/wilhg/trackbot/pkg/errmodel"
)

func TestTransportRoundTripAllRoles(t *testing.T) {
	turns := []Turn{
		HumanTurn("I ran 5000 meters in 1800 seconds"),
		SystemTurn("you are a workout logger"),
		{
			Role:    RoleAssistant,
			Content: "",
			ToolCalls: []ToolCall{
				{ID: "call-1", Name: "create_cardio_exercise", Arguments: map[string]any{"name": "Run", "distance": 5000.0, "duration": 1800.0}},
			},
		},
		ToolResultTurn("call-1", "Successfully created cardio exercise: Run"),
	}
	for _, in := range turns {
		msg, err := ToTransport(in)
		if err != nil {
			t.Fatalf("ToTransport(%s): %v", in.Role, err)
		}
		out, err := FromTransport(msg)
		if err != nil {
			t.Fatalf("FromTransport(%s): %v", msg.Role, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
		}
	}
}

func TestTransportUnknownRole(t *testing.T) {
	if _, err := ToTransport(Turn{Role: "robot"}); !errmodel.IsCode(err, errmodel.CategoryValidation, errmodel.CodeUnknownRole) {
		t.Fatalf("err=%v", err)
	}
	if _, err := FromTransport(TransportMessage{Role: "ai"}); !errmodel.IsCode(err, errmodel.CategoryValidation, errmodel.CodeUnknownRole) {
		t.Fatalf("err=%v", err)
	}
}

func TestTurnCloneIsDeep(t *testing.T) {
	in := Turn{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "x", Arguments: map[string]any{"a": 1}}}}
	cp := in.Clone()
	cp.ToolCalls[0].Arguments["a"] = 2
	if in.ToolCalls[0].Arguments["a"] != 1 {
		t.Fatal("clone shares argument map")
	}
}

func TestValidateTranscript(t *testing.T) {
	ok := []Turn{
		HumanTurn("log my run"),
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "create_cardio_exercise"}, {ID: "c2", Name: "create_workout"}}},
		ToolResultTurn("c1", "ok"),
		ToolResultTurn("c2", "ok"),
		{Role: RoleAssistant, Content: "done"},
	}
	if err := ValidateTranscript(ok); err != nil {
		t.Fatalf("valid transcript rejected: %v", err)
	}

	unmatched := []Turn{HumanTurn("hi"), ToolResultTurn("ghost", "ok")}
	if err := ValidateTranscript(unmatched); err == nil {
		t.Fatal("unmatched tool result accepted")
	}

	doubled := []Turn{
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "x"}}},
		ToolResultTurn("c1", "ok"),
		ToolResultTurn("c1", "again"),
	}
	if err := ValidateTranscript(doubled); err == nil {
		t.Fatal("double answer accepted")
	}

	reused := []Turn{
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "x"}}},
		ToolResultTurn("c1", "ok"),
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "x"}}},
	}
	if err := ValidateTranscript(reused); err == nil {
		t.Fatal("reused call id accepted")
	}
}

package runtime

import "testing"

func TestPhraseClarifierDefaults(t *testing.T) {
	c := NewPhraseClarifier()
	cases := []struct {
		content string
		want    bool
	}{
		{"Could you clarify which exercise you meant?", true},
		{"Please specify the weight in kilograms.", true},
		{"I need to know the duration of your run.", true},
		{"Can you provide the distance?", true},
		{"Please confirm: 3 sets of 8 reps at 60 kg?", true},
		{"NEED MORE INFORMATION about the second set.", true},
		{"Your workout has been logged successfully.", false},
		{"Great run today, everything is saved.", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := c.NeedsInput(tc.content); got != tc.want {
			t.Errorf("NeedsInput(%q) = %v, want %v", tc.content, got, tc.want)
		}
	}
}

func TestPhraseClarifierCustomPhrases(t *testing.T) {
	c := NewPhraseClarifier("Which Day")
	if !c.NeedsInput("which day did you train?") {
		t.Fatal("custom phrase should match case-insensitively")
	}
	if c.NeedsInput("could you clarify?") {
		t.Fatal("default phrases must not apply when custom phrases are given")
	}
}

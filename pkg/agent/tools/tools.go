// Package tools provides the workout-logging tool set exposed to the model:
// one action per exercise kind plus workout creation. Persistence is behind
// small sink interfaces so the same tools run against a database in the
// service and an in-memory sink in tests.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wilhg/trackbot/pkg/agent"
)

// Action names registered in the catalog.
const (
	ActionCreateCardio   = "create_cardio_exercise"
	ActionCreateStrength = "create_strength_exercise"
	ActionCreateWorkout  = "create_workout"
)

// CardioEntry is one logged cardio exercise. Distance is meters, duration is
// seconds. One entry per set.
type CardioEntry struct {
	Name        string  `json:"name"`
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
	Description string  `json:"description,omitempty"`
}

// StrengthEntry is one logged strength exercise set. Weight is kilograms.
type StrengthEntry struct {
	Name        string  `json:"name"`
	Reps        int     `json:"reps"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// Workout groups logged exercises under a title.
type Workout struct {
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`
}

// ExerciseSink persists exercise entries.
type ExerciseSink interface {
	SaveCardio(ctx context.Context, e CardioEntry) (id string, err error)
	SaveStrength(ctx context.Context, e StrengthEntry) (id string, err error)
}

// WorkoutSink persists workouts.
type WorkoutSink interface {
	CreateWorkout(ctx context.Context, w Workout) (id string, err error)
}

var (
	cardioSchema = mustMarshalSchema(&jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":        {Type: "string", Description: "Name of the exercise"},
			"distance":    {Type: "number", Description: "Distance in meters"},
			"duration":    {Type: "number", Description: "Duration in seconds"},
			"description": {Type: "string", Description: "Additional notes"},
		},
		Required: []string{"name", "distance", "duration"},
	})
	strengthSchema = mustMarshalSchema(&jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":        {Type: "string", Description: "Name of the exercise"},
			"reps":        {Type: "integer", Description: "Repetitions per set"},
			"weight":      {Type: "number", Description: "Weight in kilograms"},
			"description": {Type: "string", Description: "Additional notes"},
		},
		Required: []string{"name", "reps", "weight"},
	})
	workoutSchema = mustMarshalSchema(&jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"title": {Type: "string", Description: "Short workout title"},
			"notes": {Type: "string", Description: "Optional free-form notes"},
		},
		Required: []string{"title"},
	})
)

func mustMarshalSchema(s *jsonschema.Schema) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("tools: marshal schema: %v", err))
	}
	return b
}

// NewCardio returns the create_cardio_exercise tool backed by sink.
func NewCardio(sink ExerciseSink) agent.Tool {
	return agent.ToolFunc{
		Descriptor: agent.ToolDescriptor{
			Name:        ActionCreateCardio,
			Description: "Create a new cardio exercise",
			InputSchema: cardioSchema,
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			var e CardioEntry
			if err := decodeArgs(args, &e); err != nil {
				return "", err
			}
			id, err := sink.SaveCardio(ctx, e)
			if err != nil {
				return "", fmt.Errorf("save cardio entry: %w", err)
			}
			return fmt.Sprintf("Successfully created cardio exercise: %s (ID: %s)", e.Name, id), nil
		},
	}
}

// NewStrength returns the create_strength_exercise tool backed by sink.
func NewStrength(sink ExerciseSink) agent.Tool {
	return agent.ToolFunc{
		Descriptor: agent.ToolDescriptor{
			Name:        ActionCreateStrength,
			Description: "Create a new strength exercise",
			InputSchema: strengthSchema,
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			var e StrengthEntry
			if err := decodeArgs(args, &e); err != nil {
				return "", err
			}
			id, err := sink.SaveStrength(ctx, e)
			if err != nil {
				return "", fmt.Errorf("save strength entry: %w", err)
			}
			return fmt.Sprintf("Successfully created strength exercise: %s (ID: %s)", e.Name, id), nil
		},
	}
}

// NewWorkout returns the create_workout tool backed by sink.
func NewWorkout(sink WorkoutSink) agent.Tool {
	return agent.ToolFunc{
		Descriptor: agent.ToolDescriptor{
			Name:        ActionCreateWorkout,
			Description: "Create a new workout that groups the logged exercises",
			InputSchema: workoutSchema,
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			var w Workout
			if err := decodeArgs(args, &w); err != nil {
				return "", err
			}
			id, err := sink.CreateWorkout(ctx, w)
			if err != nil {
				return "", fmt.Errorf("create workout: %w", err)
			}
			return fmt.Sprintf("Successfully created workout: %s (ID: %s)", w.Title, id), nil
		},
	}
}

// RegisterAll registers the full workout tool set on the catalog.
func RegisterAll(cat *agent.Catalog, exercises ExerciseSink, workouts WorkoutSink) error {
	for _, t := range []agent.Tool{NewCardio(exercises), NewStrength(exercises), NewWorkout(workouts)} {
		if err := cat.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// decodeArgs maps validated arguments onto the typed entry. The catalog has
// already enforced the schema, so failures here indicate a schema/struct
// mismatch.
func decodeArgs(args map[string]any, dst any) error {
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

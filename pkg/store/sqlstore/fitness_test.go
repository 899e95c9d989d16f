package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/wilhg/trackbot/pkg/agent"
	"github.com/wilhg/trackbot/pkg/agent/tools"
)

func TestFitnessStoreSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "sqlite:file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.MigrateFitness(ctx); err != nil {
		t.Fatalf("MigrateFitness: %v", err)
	}
	sink := s.Fitness()

	aliceCtx := agent.WithUserID(ctx, "alice")
	if _, err := sink.SaveCardio(aliceCtx, tools.CardioEntry{Name: "Run", Distance: 5000, Duration: 1800}); err != nil {
		t.Fatalf("SaveCardio: %v", err)
	}
	id, err := sink.SaveStrength(aliceCtx, tools.StrengthEntry{Name: "RDL", Reps: 8, Weight: 60})
	if err != nil {
		t.Fatalf("SaveStrength: %v", err)
	}
	if id == "" {
		t.Fatal("empty id")
	}
	if _, err := sink.CreateWorkout(aliceCtx, tools.Workout{Title: "Morning session"}); err != nil {
		t.Fatalf("CreateWorkout: %v", err)
	}

	// Rows are scoped per user.
	n, err := sink.CountExercises(ctx, "alice")
	if err != nil {
		t.Fatalf("CountExercises: %v", err)
	}
	if n != 2 {
		t.Fatalf("alice exercises = %d, want 2", n)
	}
	n, err = sink.CountExercises(ctx, "bob")
	if err != nil {
		t.Fatalf("CountExercises: %v", err)
	}
	if n != 0 {
		t.Fatalf("bob exercises = %d, want 0", n)
	}
}

func TestFitnessStoreRequiresUser(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "sqlite:file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.MigrateFitness(ctx); err != nil {
		t.Fatalf("MigrateFitness: %v", err)
	}

	_, err = s.Fitness().SaveCardio(ctx, tools.CardioEntry{Name: "Run"})
	if !errors.Is(err, errNoUser) {
		t.Fatalf("error = %v, want errNoUser", err)
	}
}

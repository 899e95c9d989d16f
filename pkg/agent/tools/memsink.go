package tools

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemorySink is an in-memory ExerciseSink and WorkoutSink for tests and
// examples.
type MemorySink struct {
	mu       sync.Mutex
	Cardio   []CardioEntry
	Strength []StrengthEntry
	Workouts []Workout
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) SaveCardio(ctx context.Context, e CardioEntry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cardio = append(s.Cardio, e)
	return uuid.NewString(), nil
}

func (s *MemorySink) SaveStrength(ctx context.Context, e StrengthEntry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Strength = append(s.Strength, e)
	return uuid.NewString(), nil
}

func (s *MemorySink) CreateWorkout(ctx context.Context, w Workout) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Workouts = append(s.Workouts, w)
	return uuid.NewString(), nil
}

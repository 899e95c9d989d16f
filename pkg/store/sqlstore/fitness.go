package sqlstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wilhg/trackbot/pkg/agent"
	"github.com/wilhg/trackbot/pkg/agent/tools"
)

// FitnessStore persists logged exercises and workouts on the same database as
// the session checkpoints. It implements tools.ExerciseSink and
// tools.WorkoutSink. Rows are scoped by the user id the engine places on the
// context, so one shared instance serves all conversations.
type FitnessStore struct {
	s *Store
}

// Fitness returns the exercise and workout sink over this database.
func (s *Store) Fitness() *FitnessStore {
	return &FitnessStore{s: s}
}

// MigrateFitness creates the exercises and workouts tables.
func (s *Store) MigrateFitness(ctx context.Context) error {
	ddls := []string{
		`CREATE TABLE IF NOT EXISTS exercises (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			reps INTEGER,
			weight_kg REAL,
			distance_m REAL,
			duration_s REAL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS exercises_user_idx ON exercises (user_id)`,
	}
	for _, ddl := range ddls {
		if s.dialect == "postgres" {
			ddl = strings.Replace(ddl, "TIMESTAMP", "TIMESTAMPTZ", 1)
		}
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

var errNoUser = errors.New("no user id on context")

func (f *FitnessStore) SaveCardio(ctx context.Context, e tools.CardioEntry) (string, error) {
	userID, ok := agent.UserIDFromContext(ctx)
	if !ok {
		return "", errNoUser
	}
	id := uuid.NewString()
	q := `INSERT INTO exercises (id, user_id, kind, name, distance_m, duration_s, created_at)
		VALUES (` + f.s.placeholders(7) + `)`
	_, err := f.s.db.ExecContext(ctx, q,
		id, userID, "cardio", e.Name, e.Distance, e.Duration, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (f *FitnessStore) SaveStrength(ctx context.Context, e tools.StrengthEntry) (string, error) {
	userID, ok := agent.UserIDFromContext(ctx)
	if !ok {
		return "", errNoUser
	}
	id := uuid.NewString()
	q := `INSERT INTO exercises (id, user_id, kind, name, reps, weight_kg, created_at)
		VALUES (` + f.s.placeholders(7) + `)`
	_, err := f.s.db.ExecContext(ctx, q,
		id, userID, "strength", e.Name, e.Reps, e.Weight, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (f *FitnessStore) CreateWorkout(ctx context.Context, w tools.Workout) (string, error) {
	userID, ok := agent.UserIDFromContext(ctx)
	if !ok {
		return "", errNoUser
	}
	id := uuid.NewString()
	q := `INSERT INTO workouts (id, user_id, title, notes, created_at)
		VALUES (` + f.s.placeholders(5) + `)`
	_, err := f.s.db.ExecContext(ctx, q,
		id, userID, w.Title, w.Notes, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// CountExercises reports how many exercises the user has logged. Test helper
// and a cheap health probe for the fitness tables.
func (f *FitnessStore) CountExercises(ctx context.Context, userID string) (int, error) {
	q := `SELECT COUNT(*) FROM exercises WHERE user_id = ` + f.s.placeholder(1)
	var n int
	if err := f.s.db.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Package store defines the durable session checkpoint contract. The engine
// treats the store as an injected capability; it never embeds storage logic.
// Implementations must provide identical semantics so checkpoints stay
// portable across backends.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by Load when no checkpoint exists for a session.
var ErrNotFound = errors.New("session checkpoint not found")

// CheckpointRecord is the persisted snapshot of an agent session. Transcript
// and ToolsCalled hold the engine's state as JSON so the store stays ignorant
// of the message model.
type CheckpointRecord struct {
	SessionID          string
	UserID             string
	Transcript         json.RawMessage
	ToolsCalled        json.RawMessage
	PendingInputPrompt string
	Status             string
	NextAction         string
	UpdatedAt          time.Time
}

// SessionStore persists and restores checkpoints keyed by session id.
type SessionStore interface {
	// Save overwrites the checkpoint for rec.SessionID. Idempotent.
	Save(ctx context.Context, rec CheckpointRecord) error
	// Load returns the checkpoint for sessionID, or ErrNotFound.
	Load(ctx context.Context, sessionID string) (CheckpointRecord, error)
	// Drop removes the checkpoint. Best-effort: dropping an absent session is
	// not an error.
	Drop(ctx context.Context, sessionID string) error
}

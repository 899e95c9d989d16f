// Package prompt holds versioned prompt artifacts for the agent, most
// importantly the fixed system instruction prepended to every model call.
package prompt

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// SystemPromptName is the store key of the agent's system instruction.
const SystemPromptName = "trackbot.system"

// workoutSystemInstruction drives the workout-logging dialogue: extract
// structured cardio/strength entries, one entry per set, one grouped tool
// call, and ask for clarification when required fields are missing.
const workoutSystemInstruction = `You are an intelligent assistant that helps users log their workout details into a structured format suitable for database storage. Users will describe their workout sessions in natural language.

Your job is to extract structured data and prepare it for submission using tool calls. Each workout contains one or more exercises.

Responsibilities:

1. For each exercise, extract:
   - Type: determine if the exercise is "cardio" or "strength"
   - Name: name of the exercise (e.g., "RDL", "Run", "Bench Press")
   - If strength: reps (number of repetitions) and weight (kilograms)
   - If cardio: distance (meters) and duration (seconds)

2. If the user mentions multiple sets with the same reps and weight, create multiple entries, one per set. Do not use a "sets" field.

3. Group all exercises belonging to one workout into a single round of tool calls.

Workflow:

1. First, determine if you have enough information to generate valid tool calls.
2. If any required field is missing or ambiguous, ask the user for clarification.
3. Once all required data is available, call the tools with the full list of exercises.
4. After the tool calls, return a success confirmation message and conclude the conversation.

Important guidelines:

- Do not call a tool until all required fields are available for every exercise.
- Always ask for clarification if information is missing or unclear.
- Output must conform strictly to the expected tool input schema.`

// Prompt represents a versioned prompt artifact.
type Prompt struct {
	Name    string
	Version int
	Body    string
	Meta    map[string]string
}

// Issue describes a lint finding.
type Issue struct {
	Rule    string
	Message string
}

// Lint runs basic checks on prompts before they are stored.
func Lint(p Prompt) []Issue {
	var issues []Issue
	if p.Name == "" {
		issues = append(issues, Issue{Rule: "name.required", Message: "name is required"})
	}
	if len(p.Body) == 0 {
		issues = append(issues, Issue{Rule: "body.required", Message: "body is empty"})
	}
	// discourage hardcoded secrets-like patterns in instructions
	if containsSecretLike(p.Body) {
		issues = append(issues, Issue{Rule: "security.secrets", Message: "body appears to contain secrets-like content"})
	}
	return issues
}

func containsSecretLike(s string) bool {
	if len(s) == 0 {
		return false
	}
	lower := strings.ToLower(s)
	for _, needle := range []string{"aws_secret_access_key", "begin private key", "sk-"} {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

// Store is an in-memory versioned prompt store.
type Store struct {
	mu   sync.RWMutex
	data map[string][]Prompt // name -> versions (ascending)
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{data: make(map[string][]Prompt)} }

// DefaultStore returns a store preloaded with the workout system instruction.
func DefaultStore() *Store {
	s := NewStore()
	_, _, _ = s.Save(Prompt{Name: SystemPromptName, Body: workoutSystemInstruction})
	return s
}

var ErrLintFailed = errors.New("prompt failed lint checks")

// Save adds a new version. If name exists, version increments by 1; otherwise starts at 1.
// Lint failures return ErrLintFailed with the issues.
func (s *Store) Save(p Prompt) (Prompt, []Issue, error) {
	issues := Lint(p)
	if len(issues) > 0 {
		return Prompt{}, issues, ErrLintFailed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.data[p.Name]
	next := 1
	if len(versions) > 0 {
		next = versions[len(versions)-1].Version + 1
	}
	np := Prompt{Name: p.Name, Version: next, Body: p.Body, Meta: p.Meta}
	s.data[p.Name] = append(versions, np)
	return np, nil, nil
}

// Get retrieves a specific version; if version==0 returns latest.
func (s *Store) Get(name string, version int) (Prompt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.data[name]
	if len(versions) == 0 {
		return Prompt{}, false
	}
	if version <= 0 {
		return versions[len(versions)-1], true
	}
	i := sort.Search(len(versions), func(i int) bool { return versions[i].Version >= version })
	if i < len(versions) && versions[i].Version == version {
		return versions[i], true
	}
	return Prompt{}, false
}

// List returns all versions for a name in ascending order.
func (s *Store) List(name string) []Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Prompt(nil), s.data[name]...)
}

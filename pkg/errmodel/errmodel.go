// Package errmodel defines the compact error payload used across the agent
// engine and its HTTP surface. Every failure the engine surfaces carries a
// category and a stable code so callers can tell retryable conditions
// (model/invocation) from programming errors (validation/*) and missing
// sessions (session/not_found).
package errmodel

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Category values for compact errors.
const (
	CategoryValidation = "validation"
	CategoryTool       = "tool"
	CategoryNetwork    = "network"
	CategoryModel      = "model"
	CategorySession    = "session"
	CategorySystem     = "system"
)

// Codes used by the agent engine.
const (
	CodeInvalidArguments = "invalid_arguments"
	CodeUnknownAction    = "unknown_action"
	CodeDuplicateAction  = "duplicate_action"
	CodeUnknownRole      = "unknown_role"
	CodeInvocation       = "invocation"
	CodeNotFound         = "not_found"
	CodeAgentLoop        = "agent_loop"
)

// Error is the compact error payload returned by APIs and used internally.
// It implements the error interface.
type Error struct {
	Category string         `json:"category"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Context  map[string]any `json:"context,omitempty"`
	Causes   []Error        `json:"causes,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// New constructs a new compact error.
func New(category, code, message string, ctx map[string]any, causes ...error) *Error {
	ce := &Error{Category: category, Code: code, Message: truncate(message, 512)}
	if len(ctx) > 0 {
		ce.Context = truncateContext(ctx)
	}
	for _, c := range causes {
		if c == nil {
			continue
		}
		ce.Causes = append(ce.Causes, *From(c))
	}
	return ce
}

// From converts any error into a compact Error. If err is already *Error, it's returned as-is.
func From(err error) *Error {
	var ce *Error
	if err == nil {
		return nil
	}
	if errors.As(err, &ce) {
		return ce
	}
	// Default to system/internal for unknown error types.
	return &Error{Category: CategorySystem, Code: "internal", Message: truncate(err.Error(), 512)}
}

// Validation flags bad input or configuration: tool argument violations,
// unknown actions, unrecognized transport roles. Non-retryable.
func Validation(code, message string, ctx map[string]any) *Error {
	return New(CategoryValidation, code, message, ctx)
}

// Model flags a failed or malformed model invocation. Retryable by the caller.
func Model(code, message string, ctx map[string]any, cause error) *Error {
	if cause != nil {
		return New(CategoryModel, code, message, ctx, cause)
	}
	return New(CategoryModel, code, message, ctx)
}

// Session flags session lifecycle failures, notably resuming a session that
// expired or never existed.
func Session(code, message string, ctx map[string]any) *Error {
	return New(CategorySession, code, message, ctx)
}

// System wraps unexpected failures from the loop and infrastructure.
func System(code, message string, ctx map[string]any, cause error) *Error {
	if cause != nil {
		return New(CategorySystem, code, message, ctx, cause)
	}
	return New(CategorySystem, code, message, ctx)
}

// IsCategory checks if err belongs to a specific category.
func IsCategory(err error, category string) bool {
	ce := From(err)
	return ce != nil && strings.EqualFold(ce.Category, category)
}

// IsCode checks category and code together. Unlike IsCategory it does not
// coerce foreign error types, so plain errors never match.
func IsCode(err error, category, code string) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return strings.EqualFold(ce.Category, category) && strings.EqualFold(ce.Code, code)
}

// HTTPStatus maps category/code to HTTP status.
func HTTPStatus(e *Error) int {
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Category {
	case CategoryValidation:
		switch e.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case "conflict", CodeDuplicateAction:
			return http.StatusConflict
		default:
			return http.StatusBadRequest
		}
	case CategorySession:
		if e.Code == CodeNotFound {
			return http.StatusNotFound
		}
		return http.StatusConflict
	case CategoryNetwork, CategoryTool, CategoryModel:
		return http.StatusBadGateway
	case CategorySystem:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// WriteHTTP writes a compact error envelope to the response writer.
// It attempts to include the trace_id if present in ctx.
func WriteHTTP(w http.ResponseWriter, r *http.Request, err error) {
	ce := From(err)
	if ce == nil {
		ce = &Error{Category: CategorySystem, Code: "internal", Message: "unknown error"}
	}
	status := HTTPStatus(ce)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	traceID := ""
	if r != nil {
		if span := trace.SpanFromContext(r.Context()); span != nil {
			sc := span.SpanContext()
			if sc.HasTraceID() {
				traceID = sc.TraceID().String()
			}
		}
	}
	// Envelope { error: Error, trace_id?: string }
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":    ce,
		"trace_id": traceID,
	})
}

// truncate trims a string to max characters.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// truncateContext trims long string values in the context map.
func truncateContext(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		switch t := v.(type) {
		case string:
			out[k] = truncate(t, 256)
		default:
			b, err := json.Marshal(t)
			if err == nil && len(b) > 0 {
				s := string(b)
				if len(s) > 256 {
					s = truncate(s, 256)
				}
				out[k] = s
			} else {
				out[k] = t
			}
		}
	}
	return out
}

package errmodel

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
)

func TestFromPassthroughAndWrap(t *testing.T) {
	orig := Session(CodeNotFound, "session missing", map[string]any{"session_id": "s1"})
	if got := From(orig); got != orig {
		t.Fatal("From should return *Error as-is")
	}
	wrapped := From(errors.New("boom"))
	if wrapped.Category != CategorySystem || wrapped.Code != "internal" {
		t.Fatalf("wrapped=%+v", wrapped)
	}
}

func TestIsCode(t *testing.T) {
	err := Model(CodeInvocation, "model unreachable", nil, errors.New("timeout"))
	if !IsCode(err, CategoryModel, CodeInvocation) {
		t.Fatal("IsCode should match")
	}
	if IsCode(err, CategoryValidation, CodeInvocation) {
		t.Fatal("category mismatch should not match")
	}
	// wrapped via %w still matches
	outer := fmt.Errorf("processing: %w", err)
	if !IsCode(outer, CategoryModel, CodeInvocation) {
		t.Fatal("wrapped error should match")
	}
	if IsCode(errors.New("plain"), CategorySystem, "internal") {
		t.Fatal("plain error should not match")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Session(CodeNotFound, "gone", nil), 404},
		{Validation(CodeInvalidArguments, "bad args", nil), 400},
		{Validation(CodeDuplicateAction, "dup", nil), 409},
		{Model(CodeInvocation, "down", nil, nil), 502},
		{System(CodeAgentLoop, "loop", nil, nil), 500},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Fatalf("%s/%s: status=%d want %d", c.err.Category, c.err.Code, got, c.want)
		}
	}
}

func TestWriteHTTPEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHTTP(rec, httptest.NewRequest("GET", "/", nil), Session(CodeNotFound, "no such session", nil))
	if rec.Code != 404 {
		t.Fatalf("code=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type=%s", ct)
	}
}

func TestTruncateLongMessage(t *testing.T) {
	long := make([]byte, 2048)
	for i := range long {
		long[i] = 'x'
	}
	e := Validation("code", string(long), nil)
	if len(e.Message) != 512 {
		t.Fatalf("len=%d want 512", len(e.Message))
	}
}

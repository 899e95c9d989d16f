package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wilhg/trackbot/pkg/adapters/llm/fake"
	"github.com/wilhg/trackbot/pkg/agent"
	"github.com/wilhg/trackbot/pkg/runtime"
	"github.com/wilhg/trackbot/pkg/store/memstore"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("FOO", "bar")
	if got := getEnv("FOO", "default"); got != "bar" {
		t.Fatalf("getEnv returned %q, want %q", got, "bar")
	}
	if got := getEnv("MISSING", "default"); got != "default" {
		t.Fatalf("getEnv returned %q, want %q", got, "default")
	}
}

func TestConversationLifecycle(t *testing.T) {
	model := fake.New().
		ReplyText("Please specify the distance of your run.").
		ReplyText("Great, your run is logged.")
	eng := runtime.NewEngine(model, agent.NewCatalog(nil), memstore.New())

	srv := httptest.NewServer(buildMux(eng))
	defer srv.Close()

	// start a conversation that pauses for clarification
	body := bytes.NewBufferString(`{"user_id":"u1","messages":[{"role":"human","content":"I went for a run"}]}`)
	res, err := http.Post(srv.URL+"/v1/conversations", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", res.StatusCode)
	}
	var started conversationResponse
	if err := json.NewDecoder(res.Body).Decode(&started); err != nil {
		t.Fatal(err)
	}
	if started.SessionID == "" {
		t.Fatal("missing session id")
	}
	if started.Status != "waiting_for_input" {
		t.Fatalf("status=%q, want waiting_for_input", started.Status)
	}
	if started.PendingInputPrompt == "" {
		t.Fatal("missing pending input prompt")
	}

	// resume with the user's answer
	buf := bytes.NewBufferString(`{"session_id":"` + started.SessionID + `","response":"5 kilometers"}`)
	res2, err := http.Post(srv.URL+"/v1/conversations/continue", "application/json", buf)
	if err != nil {
		t.Fatal(err)
	}
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusOK {
		t.Fatalf("continue status=%d", res2.StatusCode)
	}
	var resumed conversationResponse
	if err := json.NewDecoder(res2.Body).Decode(&resumed); err != nil {
		t.Fatal(err)
	}
	if resumed.Status != "completed" {
		t.Fatalf("status=%q, want completed", resumed.Status)
	}
	if resumed.Reply != "Great, your run is logged." {
		t.Fatalf("reply=%q", resumed.Reply)
	}

	// resuming a finished session is a 404
	buf2 := bytes.NewBufferString(`{"session_id":"` + started.SessionID + `","response":"anything"}`)
	res3, err := http.Post(srv.URL+"/v1/conversations/continue", "application/json", buf2)
	if err != nil {
		t.Fatal(err)
	}
	defer res3.Body.Close()
	if res3.StatusCode != http.StatusNotFound {
		t.Fatalf("continue finished status=%d, want 404", res3.StatusCode)
	}
}

func TestConversationRejectsUnknownRole(t *testing.T) {
	eng := runtime.NewEngine(fake.New(), agent.NewCatalog(nil), memstore.New())
	srv := httptest.NewServer(buildMux(eng))
	defer srv.Close()

	body := bytes.NewBufferString(`{"user_id":"u1","messages":[{"role":"robot","content":"hi"}]}`)
	res, err := http.Post(srv.URL+"/v1/conversations", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", res.StatusCode)
	}
}

package prompt

import "testing"

func TestSaveVersioning(t *testing.T) {
	s := NewStore()
	p1, _, err := s.Save(Prompt{Name: "greet", Body: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if p1.Version != 1 {
		t.Fatalf("version=%d", p1.Version)
	}
	p2, _, err := s.Save(Prompt{Name: "greet", Body: "hello again"})
	if err != nil {
		t.Fatal(err)
	}
	if p2.Version != 2 {
		t.Fatalf("version=%d", p2.Version)
	}

	latest, ok := s.Get("greet", 0)
	if !ok || latest.Body != "hello again" {
		t.Fatalf("latest=%+v ok=%v", latest, ok)
	}
	v1, ok := s.Get("greet", 1)
	if !ok || v1.Body != "hello" {
		t.Fatalf("v1=%+v ok=%v", v1, ok)
	}
	if got := len(s.List("greet")); got != 2 {
		t.Fatalf("list len=%d", got)
	}
}

func TestLintRejectsEmptyAndSecrets(t *testing.T) {
	if _, issues, err := NewStore().Save(Prompt{Name: "", Body: ""}); err != ErrLintFailed || len(issues) != 2 {
		t.Fatalf("err=%v issues=%v", err, issues)
	}
	if _, _, err := NewStore().Save(Prompt{Name: "leaky", Body: "use key sk-abc123"}); err != ErrLintFailed {
		t.Fatalf("err=%v", err)
	}
}

func TestDefaultStoreHasSystemInstruction(t *testing.T) {
	s := DefaultStore()
	p, ok := s.Get(SystemPromptName, 0)
	if !ok {
		t.Fatal("system prompt missing")
	}
	if p.Version != 1 || len(p.Body) == 0 {
		t.Fatalf("p=%+v", p)
	}
}

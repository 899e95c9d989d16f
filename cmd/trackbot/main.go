// Command trackbot runs the conversational workout-logging service: an HTTP
// surface over the agent engine with durable sessions in SQLite or Postgres.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wilhg/trackbot/pkg/adapters/llm"
	_ "github.com/wilhg/trackbot/pkg/adapters/llm/fake"
	_ "github.com/wilhg/trackbot/pkg/adapters/llm/gemini"
	_ "github.com/wilhg/trackbot/pkg/adapters/llm/openai"
	"github.com/wilhg/trackbot/pkg/agent"
	"github.com/wilhg/trackbot/pkg/agent/tools"
	"github.com/wilhg/trackbot/pkg/errmodel"
	"github.com/wilhg/trackbot/pkg/mcptools"
	"github.com/wilhg/trackbot/pkg/otel"
	"github.com/wilhg/trackbot/pkg/runtime"
	"github.com/wilhg/trackbot/pkg/store/sqlstore"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	var (
		showVersion bool
		addr        string
		databaseURL string
		provider    string
		modelID     string
		mcpServer   string
		traceStdout bool
	)

	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.StringVar(&addr, "addr", getEnv("TRACKBOT_ADDR", ":8080"), "http listen address")
	flag.StringVar(&databaseURL, "db", getEnv("DATABASE_URL", "sqlite:file:trackbot.sqlite?cache=shared&_pragma=busy_timeout(5000)"), "database url")
	flag.StringVar(&provider, "provider", getEnv("TRACKBOT_PROVIDER", "openai"), "llm provider (openai, gemini, fake)")
	flag.StringVar(&modelID, "model", getEnv("TRACKBOT_MODEL", ""), "model id override for the provider")
	flag.StringVar(&mcpServer, "mcp-server", getEnv("TRACKBOT_MCP_SERVER", ""), "optional mcp server command for extra tools")
	flag.BoolVar(&traceStdout, "trace-stdout", false, "export traces to stdout")
	flag.Parse()

	if showVersion {
		fmt.Printf("trackbot %s (commit=%s, date=%s)\n", version, commit, date)
		return
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, addr, databaseURL, provider, modelID, mcpServer, traceStdout); err != nil {
		log.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, addr, databaseURL, provider, modelID, mcpServer string, traceStdout bool) error {
	shutdown, err := otel.Init(ctx, otel.Config{ServiceName: "trackbot", ServiceVersion: version, UseStdout: traceStdout})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	st, err := sqlstore.Open(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate checkpoints: %w", err)
	}
	if err := st.MigrateFitness(ctx); err != nil {
		return fmt.Errorf("migrate fitness tables: %w", err)
	}

	factory, ok := llm.Resolve(provider)
	if !ok {
		return fmt.Errorf("unknown llm provider %q", provider)
	}
	model, err := factory(ctx, map[string]any{"model": modelID})
	if err != nil {
		return fmt.Errorf("init provider %s: %w", provider, err)
	}

	cat := agent.NewCatalog(nil)
	sink := st.Fitness()
	if err := tools.RegisterAll(cat, sink, sink); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}
	if mcpServer != "" {
		client, err := mcptools.New(ctx, mcpServer)
		if err != nil {
			return fmt.Errorf("connect mcp server: %w", err)
		}
		defer func() { _ = client.Close() }()
		if err := mcptools.RegisterAll(ctx, cat, client); err != nil {
			log.Warn("mcp tools unavailable", "error", err)
		}
	}

	var engineOpts []runtime.Option
	engineOpts = append(engineOpts, runtime.WithLogger(log))
	if modelID != "" {
		engineOpts = append(engineOpts, runtime.WithModelOptions(map[string]any{"model": modelID}))
	}
	eng := runtime.NewEngine(model, cat, st, engineOpts...)

	server := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(buildMux(eng), "trackbot"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "provider", provider)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

type conversationRequest struct {
	UserID    string                   `json:"user_id"`
	SessionID string                   `json:"session_id,omitempty"`
	Messages  []agent.TransportMessage `json:"messages"`
}

type continueRequest struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

type conversationResponse struct {
	SessionID          string                   `json:"session_id"`
	Status             string                   `json:"status"`
	Reply              string                   `json:"reply,omitempty"`
	PendingInputPrompt string                   `json:"pending_input_prompt,omitempty"`
	Transcript         []agent.TransportMessage `json:"transcript"`
}

// buildMux wires the HTTP surface over the engine.
func buildMux(eng *runtime.Engine) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		var req conversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errmodel.WriteHTTP(w, r, errmodel.Validation("bad_request", "invalid request body", nil))
			return
		}
		if req.UserID == "" {
			errmodel.WriteHTTP(w, r, errmodel.Validation("bad_request", "user_id is required", nil))
			return
		}
		transcript := make([]agent.Turn, 0, len(req.Messages))
		for _, m := range req.Messages {
			t, err := agent.FromTransport(m)
			if err != nil {
				errmodel.WriteHTTP(w, r, err)
				return
			}
			transcript = append(transcript, t)
		}
		st, err := eng.Process(r.Context(), transcript, req.UserID, req.SessionID)
		if err != nil {
			errmodel.WriteHTTP(w, r, err)
			return
		}
		writeState(w, r, st)
	})
	mux.HandleFunc("POST /v1/conversations/continue", func(w http.ResponseWriter, r *http.Request) {
		var req continueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errmodel.WriteHTTP(w, r, errmodel.Validation("bad_request", "invalid request body", nil))
			return
		}
		if req.SessionID == "" {
			errmodel.WriteHTTP(w, r, errmodel.Validation("bad_request", "session_id is required", nil))
			return
		}
		st, err := eng.Continue(r.Context(), req.SessionID, req.Response)
		if err != nil {
			errmodel.WriteHTTP(w, r, err)
			return
		}
		writeState(w, r, st)
	})
	return mux
}

func writeState(w http.ResponseWriter, r *http.Request, st *agent.State) {
	resp := conversationResponse{
		SessionID:          st.SessionID,
		Status:             string(st.Status),
		PendingInputPrompt: st.PendingInputPrompt,
	}
	for _, t := range st.Transcript {
		m, err := agent.ToTransport(t)
		if err != nil {
			errmodel.WriteHTTP(w, r, err)
			return
		}
		resp.Transcript = append(resp.Transcript, m)
	}
	if last, ok := st.LastTurn(); ok && last.Role == agent.RoleAssistant {
		resp.Reply = last.Content
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func getEnv(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wilhg/trackbot/pkg/adapters/llm"
	"github.com/wilhg/trackbot/pkg/agent"
	genai "google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash-lite"

type clientWrapper struct {
	client *genai.Client
	model  string
}

func (c *clientWrapper) Name() string { return "gemini" }

func (c *clientWrapper) Complete(ctx context.Context, turns []agent.Turn, tools []agent.ToolDescriptor, opts map[string]any) (agent.Turn, error) {
	model := c.model
	if v, ok := opts["model"].(string); ok && v != "" {
		model = v
	}

	cfg := &genai.GenerateContentConfig{}
	// Gemini does not accept tool call ids; track the action name per call id
	// so tool results can be replayed as function responses.
	callNames := map[string]string{}
	var contents []*genai.Content
	for _, t := range turns {
		switch t.Role {
		case agent.RoleSystem:
			cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: t.Content}}}
		case agent.RoleHuman:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: t.Content}},
			})
		case agent.RoleAssistant:
			parts := make([]*genai.Part, 0, len(t.ToolCalls)+1)
			if t.Content != "" {
				parts = append(parts, &genai.Part{Text: t.Content})
			}
			for _, tc := range t.ToolCalls {
				callNames[tc.ID] = tc.Name
				parts = append(parts, genai.NewPartFromFunctionCall(tc.Name, tc.Arguments))
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		case agent.RoleTool:
			name := callNames[t.ToolCallID]
			if name == "" {
				return agent.Turn{}, fmt.Errorf("gemini: tool result %s has no matching call", t.ToolCallID)
			}
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{genai.NewPartFromFunctionResponse(name, map[string]any{"output": t.Content})},
			})
		}
	}

	for _, td := range tools {
		var doc map[string]any
		if len(td.InputSchema) > 0 {
			if err := json.Unmarshal(td.InputSchema, &doc); err != nil {
				return agent.Turn{}, fmt.Errorf("gemini: tool %s schema: %w", td.Name, err)
			}
		}
		cfg.Tools = append(cfg.Tools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:                 td.Name,
				Description:          td.Description,
				ParametersJsonSchema: doc,
			}},
		})
	}

	res, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return agent.Turn{}, err
	}
	out := agent.Turn{Role: agent.RoleAssistant, Content: res.Text()}
	for i, fc := range res.FunctionCalls() {
		id := fc.ID
		if id == "" {
			id = fmt.Sprintf("call-%d", i)
		}
		out.ToolCalls = append(out.ToolCalls, agent.ToolCall{ID: id, Name: fc.Name, Arguments: fc.Args})
	}
	return out, nil
}

// Factory creates a Gemini provider using GOOGLE_API_KEY by default.
func Factory(ctx context.Context, cfg map[string]any) (llm.Model, error) { // nolint: revive
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if v, ok := cfg["api_key"].(string); ok && v != "" {
		apiKey = v
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: missing API key; set GOOGLE_API_KEY or cfg.api_key")
	}
	// Prefer Gemini API backend
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	model := defaultModel
	if v, ok := cfg["model"].(string); ok && v != "" {
		model = v
	}
	return &clientWrapper{client: client, model: model}, nil
}

func init() {
	_ = llm.Register("gemini", Factory)
}

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	oa "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/wilhg/trackbot/pkg/adapters/llm"
	"github.com/wilhg/trackbot/pkg/agent"
)

const (
	defaultModel = "gpt-4o-mini"
)

type clientWrapper struct {
	client oa.Client
	model  string
}

func (c *clientWrapper) Name() string { return "openai" }

func (c *clientWrapper) Complete(ctx context.Context, turns []agent.Turn, tools []agent.ToolDescriptor, opts map[string]any) (agent.Turn, error) {
	model := c.model
	if v, ok := opts["model"].(string); ok && v != "" {
		model = v
	}

	mm := make([]oa.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case agent.RoleSystem:
			mm = append(mm, oa.SystemMessage(t.Content))
		case agent.RoleHuman:
			mm = append(mm, oa.UserMessage(t.Content))
		case agent.RoleAssistant:
			if len(t.ToolCalls) == 0 {
				mm = append(mm, oa.AssistantMessage(t.Content))
				continue
			}
			asst := oa.ChatCompletionAssistantMessageParam{}
			if t.Content != "" {
				asst.Content.OfString = oa.String(t.Content)
			}
			for _, tc := range t.ToolCalls {
				args, err := json.Marshal(tc.Arguments)
				if err != nil {
					return agent.Turn{}, fmt.Errorf("openai: encode tool call %s args: %w", tc.ID, err)
				}
				asst.ToolCalls = append(asst.ToolCalls, oa.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &oa.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: oa.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: string(args),
						},
					},
				})
			}
			mm = append(mm, oa.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		case agent.RoleTool:
			mm = append(mm, oa.ToolMessage(t.Content, t.ToolCallID))
		default:
			mm = append(mm, oa.UserMessage(t.Content))
		}
	}

	params := oa.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: mm,
	}
	for _, td := range tools {
		var schema map[string]any
		if len(td.InputSchema) > 0 {
			if err := json.Unmarshal(td.InputSchema, &schema); err != nil {
				return agent.Turn{}, fmt.Errorf("openai: tool %s schema: %w", td.Name, err)
			}
		}
		params.Tools = append(params.Tools, oa.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        td.Name,
			Description: oa.String(td.Description),
			Parameters:  shared.FunctionParameters(schema),
		}))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return agent.Turn{}, err
	}
	if len(resp.Choices) == 0 {
		return agent.Turn{}, fmt.Errorf("openai: empty choices in completion response")
	}
	msg := resp.Choices[0].Message
	out := agent.Turn{Role: agent.RoleAssistant, Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return agent.Turn{}, fmt.Errorf("openai: decode tool call %s args: %w", tc.ID, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, agent.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return out, nil
}

// Factory registers the OpenAI provider; cfg keys: api_key, model.
func Factory(ctx context.Context, cfg map[string]any) (llm.Model, error) { // nolint: revive
	_ = ctx
	apiKey := os.Getenv("OPENAI_API_KEY")
	if v, ok := cfg["api_key"].(string); ok && v != "" {
		apiKey = v
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai: missing API key; set OPENAI_API_KEY or cfg.api_key")
	}
	model := defaultModel
	if v, ok := cfg["model"].(string); ok && v != "" {
		model = v
	}

	c := oa.NewClient(option.WithAPIKey(apiKey))
	return &clientWrapper{client: c, model: model}, nil
}

func init() {
	_ = llm.Register("openai", Factory)
}

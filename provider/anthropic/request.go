package anthropic

import (
	"fmt"
	"math"
	"strings"

	"github.com/casualjim/strix/pkg/jsonx"
	"github.com/casualjim/strix/provider"
	"github.com/go-openapi/swag"
	"github.com/invopop/jsonschema"
)

const (
	// defaultMaxTokens applies when the caller leaves the ceiling unset; the
	// vendor requires max_tokens on every request.
	defaultMaxTokens = 4096

	minThinkingBudget = 1024
	maxThinkingBudget = 24000
)

type toolParam struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	InputSchema  map[string]any `json:"input_schema"`
	CacheControl *CacheControl  `json:"cache_control,omitempty"`
}

type toolChoiceParam struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type thinkingParam struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

// chatRequest is the outbound wire payload for the messages endpoint.
type chatRequest struct {
	Model         string           `json:"model"`
	Messages      []MessageParam   `json:"messages"`
	System        []TextBlock      `json:"system,omitempty"`
	MaxTokens     int              `json:"max_tokens"`
	Temperature   *float64         `json:"temperature,omitempty"`
	TopP          *float64         `json:"top_p,omitempty"`
	StopSequences []string         `json:"stop_sequences,omitempty"`
	Tools         []toolParam      `json:"tools,omitempty"`
	ToolChoice    *toolChoiceParam `json:"tool_choice,omitempty"`
	Thinking      *thinkingParam   `json:"thinking,omitempty"`
	Stream        bool             `json:"stream,omitempty"`
}

// validateParams rejects requests that would fail at the vendor anyway,
// without spending a network round-trip.
func validateParams(params provider.CompletionParams) error {
	if strings.TrimSpace(params.Model) == "" {
		return provider.NewError(provider.ErrInvalidRequest, "model is required")
	}
	if len(params.Messages) == 0 {
		return provider.NewError(provider.ErrInvalidRequest, "messages are required")
	}
	if tc := params.ToolChoice; tc != nil && tc.Type == provider.ToolChoiceTool {
		known := false
		for _, def := range params.Tools {
			if def.Name == tc.Name {
				known = true
				break
			}
		}
		if !known {
			return provider.NewError(provider.ErrInvalidRequest,
				fmt.Sprintf("tool_choice names unknown tool %q", tc.Name))
		}
	}
	if rs := params.ResponseSchema; rs != nil {
		if rs.Schema == nil {
			return provider.NewError(provider.ErrInvalidRequest, "structured output requires a schema")
		}
		if rs.Schema.AdditionalProperties != jsonschema.FalseSchema {
			return provider.NewError(provider.ErrInvalidRequest,
				"structured output schema must set additionalProperties: false")
		}
	}
	return nil
}

// buildRequest assembles the wire payload from vendor-neutral parameters.
// The returned map resolves vendor tool names back to the opaque registry
// identifiers the caller knows the tools by.
func buildRequest(params provider.CompletionParams) (*chatRequest, map[string]string, error) {
	msgs, system := mapMessages(params.Messages)

	registry := make(map[string]string, len(params.Tools))
	var tools []toolParam
	for _, def := range params.Tools {
		name, schema, err := def.ToNameAndSchema()
		if err != nil {
			return nil, nil, provider.NewError(provider.ErrInvalidRequest, err.Error())
		}
		tools = append(tools, toolParam{
			Name:        name,
			Description: def.Description,
			InputSchema: schema,
		})
		registry[name] = def.RegistryID
	}

	req := &chatRequest{
		Model:         params.Model,
		Messages:      msgs,
		System:        system,
		MaxTokens:     params.MaxTokens,
		Temperature:   params.Temperature,
		TopP:          params.TopP,
		StopSequences: params.StopSequences,
		Stream:        params.Stream,
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = defaultMaxTokens
	}

	if tc := params.ToolChoice; tc != nil {
		req.ToolChoice = &toolChoiceParam{Type: string(tc.Type), Name: tc.Name}
	}

	// Structured output rides on forced tool use: the schema becomes the
	// input schema of a synthetic tool the model must call.
	if rs := params.ResponseSchema; rs != nil {
		name := rs.Name
		if name == "" {
			name = "structured_output"
		}
		name = sanitizeToolID(name)
		schema, err := jsonx.ToDynamicJSON(rs.Schema)
		if err != nil {
			return nil, nil, provider.NewError(provider.ErrInvalidRequest,
				fmt.Sprintf("failed to convert structured output schema: %v", err))
		}
		tools = append(tools, toolParam{
			Name:        name,
			Description: rs.Description,
			InputSchema: schema,
		})
		req.ToolChoice = &toolChoiceParam{Type: string(provider.ToolChoiceTool), Name: name}
	}
	req.Tools = tools

	if params.ThinkingEffort > 0 {
		budget := thinkingBudget(params.ThinkingEffort)
		if req.MaxTokens <= budget {
			req.MaxTokens = budget + minThinkingBudget
		}
		req.Thinking = &thinkingParam{Type: "enabled", BudgetTokens: budget}
		// The vendor requires default sampling while thinking is enabled.
		req.Temperature = swag.Float64(1)
	}

	return req, registry, nil
}

// thinkingBudget scales effort in (0,100] linearly between the vendor's
// minimum budget and a practical ceiling.
func thinkingBudget(effort float64) int {
	if effort > 100 {
		effort = 100
	}
	return int(math.Round(minThinkingBudget + (maxThinkingBudget-minThinkingBudget)*effort/100))
}

package provider

import (
	"context"

	"github.com/casualjim/strix/messages"
	"github.com/casualjim/strix/tool"
	"github.com/invopop/jsonschema"
)

// Provider defines the interface for AI model providers (e.g., Anthropic).
// Implementations handle the specifics of communicating with a vendor's
// chat-completion API while maintaining a consistent interface for the rest
// of the application.
type Provider interface {
	ChatCompletion(context.Context, CompletionParams) (*Result, error)
}

// ToolChoiceType controls how the model is allowed to use tools.
type ToolChoiceType string

const (
	ToolChoiceAuto ToolChoiceType = "auto"
	ToolChoiceNone ToolChoiceType = "none"
	ToolChoiceAny  ToolChoiceType = "any"
	ToolChoiceTool ToolChoiceType = "tool"
)

// ToolChoice names the tool-selection policy for a request. Name is required
// when Type is ToolChoiceTool and must match one of the request's tools.
type ToolChoice struct {
	Type ToolChoiceType `json:"type"`
	Name string         `json:"name,omitempty"`
}

// CompletionParams encapsulates all parameters needed for a chat completion
// request.
type CompletionParams struct {
	// Model names the vendor model to use. Required.
	Model string

	// Messages is the vendor-neutral conversation, oldest first. Required.
	Messages []messages.Message

	// Tools defines the functions the model may call.
	Tools []tool.Definition

	// ToolChoice constrains tool selection. Nil means vendor default.
	ToolChoice *ToolChoice

	// MaxTokens caps the generated output. Zero lets the adapter pick a
	// vendor-appropriate default.
	MaxTokens int

	// Temperature and TopP are sampling knobs; nil leaves the vendor default.
	Temperature *float64
	TopP        *float64

	// StopSequences halt generation when emitted.
	StopSequences []string

	// ThinkingEffort in (0,100] enables extended reasoning and scales its
	// token budget. Zero disables thinking.
	ThinkingEffort float64

	// Stream selects incremental delivery through Handler.
	Stream bool

	// Handler receives streaming callbacks when Stream is set. Ignored
	// otherwise. Nil defaults to a no-op handler.
	Handler StreamHandler

	// ResponseSchema requests structured output conforming to a JSON schema.
	ResponseSchema *StructuredOutput

	// Prevents unkeyed literals
	_ struct{}
}

// StructuredOutput defines a schema for formatted AI responses. The schema
// must close itself over additional properties; adapters reject open schemas
// before any network call.
type StructuredOutput struct {
	// Name identifies this output format
	Name string

	// Description explains the purpose and usage of this format
	Description string

	// Schema defines the JSON structure that responses should follow
	Schema *jsonschema.Schema
}

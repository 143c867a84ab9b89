package anthropic

import (
	"testing"

	"github.com/casualjim/strix/messages"
	"github.com/casualjim/strix/provider"
	"github.com/casualjim/strix/tool"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func minimalParams() provider.CompletionParams {
	return provider.CompletionParams{
		Model:    "claude-sonnet-4-20250514",
		Messages: []messages.Message{messages.User("hi")},
	}
}

func closedSchema() *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	props.Set("answer", &jsonschema.Schema{Type: "string"})
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

func TestValidateParams(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		params := minimalParams()
		params.Model = "  "
		err := validateParams(params)
		require.Error(t, err)
		assert.Equal(t, provider.ErrInvalidRequest, provider.KindOf(err))
	})

	t.Run("missing messages", func(t *testing.T) {
		params := minimalParams()
		params.Messages = nil
		err := validateParams(params)
		require.Error(t, err)
		assert.Equal(t, provider.ErrInvalidRequest, provider.KindOf(err))
	})

	t.Run("tool choice names unknown tool", func(t *testing.T) {
		params := minimalParams()
		params.Tools = []tool.Definition{{Name: "search"}}
		params.ToolChoice = &provider.ToolChoice{Type: provider.ToolChoiceTool, Name: "missing"}
		err := validateParams(params)
		require.Error(t, err)
		assert.Equal(t, provider.ErrInvalidRequest, provider.KindOf(err))
	})

	t.Run("tool choice names known tool", func(t *testing.T) {
		params := minimalParams()
		params.Tools = []tool.Definition{{Name: "search"}}
		params.ToolChoice = &provider.ToolChoice{Type: provider.ToolChoiceTool, Name: "search"}
		require.NoError(t, validateParams(params))
	})

	t.Run("structured output without schema", func(t *testing.T) {
		params := minimalParams()
		params.ResponseSchema = &provider.StructuredOutput{Name: "report"}
		err := validateParams(params)
		require.Error(t, err)
		assert.Equal(t, provider.ErrInvalidRequest, provider.KindOf(err))
	})

	t.Run("structured output with open schema", func(t *testing.T) {
		params := minimalParams()
		params.ResponseSchema = &provider.StructuredOutput{
			Name:   "report",
			Schema: &jsonschema.Schema{Type: "object"},
		}
		err := validateParams(params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "additionalProperties")
	})
}

func TestBuildRequest_Defaults(t *testing.T) {
	req, registry, err := buildRequest(minimalParams())
	require.NoError(t, err)

	assert.Equal(t, defaultMaxTokens, req.MaxTokens)
	assert.Nil(t, req.Temperature)
	assert.Nil(t, req.Thinking)
	assert.False(t, req.Stream)
	assert.Empty(t, registry)
	require.Len(t, req.Messages, 1)
}

func TestBuildRequest_ToolsAndRegistry(t *testing.T) {
	params := minimalParams()
	params.Tools = []tool.Definition{
		{RegistryID: "reg-1", Name: "search", Description: "find things"},
	}

	req, registry, err := buildRequest(params)
	require.NoError(t, err)

	require.Len(t, req.Tools, 1)
	assert.Equal(t, "search", req.Tools[0].Name)
	assert.Equal(t, "find things", req.Tools[0].Description)
	assert.Equal(t, "object", req.Tools[0].InputSchema["type"])
	assert.Equal(t, map[string]string{"search": "reg-1"}, registry)
}

func TestBuildRequest_StructuredOutput(t *testing.T) {
	params := minimalParams()
	params.ResponseSchema = &provider.StructuredOutput{
		Name:        "weather.report",
		Description: "final structured answer",
		Schema:      closedSchema(),
	}

	req, _, err := buildRequest(params)
	require.NoError(t, err)

	require.Len(t, req.Tools, 1)
	synthetic := req.Tools[0]
	assert.Equal(t, sanitizeToolID("weather.report"), synthetic.Name)
	assert.Equal(t, "final structured answer", synthetic.Description)

	require.NotNil(t, req.ToolChoice)
	assert.Equal(t, string(provider.ToolChoiceTool), req.ToolChoice.Type)
	assert.Equal(t, synthetic.Name, req.ToolChoice.Name)
}

func TestBuildRequest_StructuredOutputDefaultName(t *testing.T) {
	params := minimalParams()
	params.ResponseSchema = &provider.StructuredOutput{Schema: closedSchema()}

	req, _, err := buildRequest(params)
	require.NoError(t, err)
	require.NotNil(t, req.ToolChoice)
	assert.Equal(t, "structured-output", req.ToolChoice.Name)
}

func TestBuildRequest_Thinking(t *testing.T) {
	params := minimalParams()
	params.ThinkingEffort = 50
	params.MaxTokens = 1000

	req, _, err := buildRequest(params)
	require.NoError(t, err)

	require.NotNil(t, req.Thinking)
	assert.Equal(t, "enabled", req.Thinking.Type)
	assert.Equal(t, 12512, req.Thinking.BudgetTokens)

	// max_tokens has to leave room above the thinking budget.
	assert.Equal(t, 12512+minThinkingBudget, req.MaxTokens)

	require.NotNil(t, req.Temperature)
	assert.Equal(t, float64(1), *req.Temperature)
}

func TestBuildRequest_ThinkingKeepsLargerCeiling(t *testing.T) {
	params := minimalParams()
	params.ThinkingEffort = 10
	params.MaxTokens = 32000

	req, _, err := buildRequest(params)
	require.NoError(t, err)
	assert.Equal(t, 32000, req.MaxTokens)
}

func TestThinkingBudget(t *testing.T) {
	assert.Equal(t, 12512, thinkingBudget(50))
	assert.Equal(t, maxThinkingBudget, thinkingBudget(100))
	assert.Equal(t, maxThinkingBudget, thinkingBudget(250), "effort is capped")
	assert.Less(t, thinkingBudget(1), thinkingBudget(99))
	assert.GreaterOrEqual(t, thinkingBudget(0.1), minThinkingBudget)
}

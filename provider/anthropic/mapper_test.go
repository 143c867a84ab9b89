package anthropic

import (
	"strings"
	"testing"

	"github.com/casualjim/strix/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessages_SystemAndUser(t *testing.T) {
	msgs, system := mapMessages([]messages.Message{
		messages.System("Be terse"),
		messages.User("Hi"),
	})

	require.Len(t, system, 1)
	assert.Equal(t, "Be terse", system[0].Text)

	require.Len(t, msgs, 1)
	assert.Equal(t, roleUser, msgs[0].Role)
	require.Len(t, msgs[0].Content, 1)
	assert.Equal(t, "Hi", msgs[0].Content[0].(TextBlock).Text)
}

func TestMapMessages_DeveloperMergesIntoPrior(t *testing.T) {
	msgs, _ := mapMessages([]messages.Message{
		messages.User("Hi"),
		messages.Developer("Answer in 3 words"),
	})

	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].Content, 1)
	text := msgs[0].Content[0].(TextBlock).Text
	assert.Contains(t, text, "Hi")
	assert.Contains(t, text, developerOpenTag)
	assert.Contains(t, text, "Answer in 3 words")
	assert.Contains(t, text, developerCloseTag)
}

func TestMapMessages_DeveloperAfterToolResult(t *testing.T) {
	msgs, _ := mapMessages([]messages.Message{
		messages.User("Hi"),
		messages.FunctionCallMsg("call_1", "search", `{"q":"go"}`),
		messages.FunctionResult("call_1", "42 results"),
		messages.Developer("Summarize briefly"),
	})

	// A tool result cannot carry free text, so the instruction gets its own
	// user message.
	require.Len(t, msgs, 4)
	last := msgs[3]
	assert.Equal(t, roleUser, last.Role)
	require.Len(t, last.Content, 1)
	assert.Contains(t, last.Content[0].(TextBlock).Text, "Summarize briefly")
}

func TestMapMessages_DeveloperFirst(t *testing.T) {
	msgs, _ := mapMessages([]messages.Message{
		messages.Developer("Always answer in French"),
	})

	require.Len(t, msgs, 1)
	assert.Equal(t, roleUser, msgs[0].Role)
	assert.Contains(t, msgs[0].Content[0].(TextBlock).Text, "Always answer in French")
}

func TestMapMessages_FunctionCallRoundTrip(t *testing.T) {
	msgs, _ := mapMessages([]messages.Message{
		messages.User("Search for go tutorials"),
		messages.FunctionCallMsg("call.1", "search", `{"q":"go tutorials"}`),
		messages.FunctionResult("call.1", "found 3"),
	})

	require.Len(t, msgs, 3)

	assistant := msgs[1]
	assert.Equal(t, roleAssistant, assistant.Role)
	require.Len(t, assistant.Content, 1)
	use := assistant.Content[0].(ToolUseBlock)
	assert.Equal(t, sanitizeToolID("call.1"), use.ID)
	assert.Equal(t, "search", use.Name)
	assert.Equal(t, map[string]any{"q": "go tutorials"}, use.Input)

	result := msgs[2]
	assert.Equal(t, roleUser, result.Role)
	require.Len(t, result.Content, 1)
	tr := result.Content[0].(ToolResultBlock)
	assert.Equal(t, use.ID, tr.ToolUseID, "tool_result must reference the same sanitized id")
	assert.Equal(t, "found 3", tr.Content)
}

func TestMapMessages_FunctionCallWithThinking(t *testing.T) {
	call := messages.FunctionCallMsg("call_1", "search", `{"q":"x"}`)
	call.Thinking = []messages.ThinkingData{
		{Thinking: "I should search", Signature: "sig=="},
		{Redacted: "opaque"},
	}

	msgs, _ := mapMessages([]messages.Message{messages.User("hi"), call})

	require.Len(t, msgs, 2)
	content := msgs[1].Content
	require.Len(t, content, 3)
	assert.Equal(t, "I should search", content[0].(ThinkingBlock).Thinking)
	assert.Equal(t, "opaque", content[1].(RedactedThinkingBlock).Data)
	assert.IsType(t, ToolUseBlock{}, content[2])
}

func TestMapMessages_ConsolidatesAdjacentAssistant(t *testing.T) {
	msgs, _ := mapMessages([]messages.Message{
		messages.User("do two things"),
		messages.FunctionCallMsg("c1", "first", `{"n":1}`),
		messages.FunctionCallMsg("c2", "second", `{"n":2}`),
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, roleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].Content, 2)
	assert.Equal(t, "first", msgs[1].Content[0].(ToolUseBlock).Name)
	assert.Equal(t, "second", msgs[1].Content[1].(ToolUseBlock).Name)
}

func TestMapMessages_AssistantInlineParts(t *testing.T) {
	msgs, _ := mapMessages([]messages.Message{
		messages.User("hi"),
		{
			Role: messages.RoleAssistant,
			Content: messages.ContentOrParts{Parts: []messages.ContentPart{
				messages.Text("Let me check"),
				messages.FunctionCallContentPart{ID: "c1", Name: "check", Arguments: `{"a":1}`},
			}},
		},
	})

	require.Len(t, msgs, 2)
	content := msgs[1].Content
	require.Len(t, content, 2)
	assert.Equal(t, "Let me check", content[0].(TextBlock).Text)
	assert.Equal(t, "check", content[1].(ToolUseBlock).Name)
}

func TestMapMessages_UserImageParts(t *testing.T) {
	msgs, _ := mapMessages([]messages.Message{
		messages.UserParts(
			messages.Text("what is this?"),
			messages.Image("https://example.com/cat.jpg"),
			messages.ImageData([]byte{0x89, 0x50}, "image/png"),
		),
	})

	require.Len(t, msgs, 1)
	content := msgs[0].Content
	require.Len(t, content, 3)

	url := content[1].(ImageBlock)
	assert.Equal(t, "url", url.Source.Type)
	assert.Equal(t, "https://example.com/cat.jpg", url.Source.URL)

	inline := content[2].(ImageBlock)
	assert.Equal(t, "base64", inline.Source.Type)
	assert.Equal(t, "image/png", inline.Source.MediaType)
	assert.NotEmpty(t, inline.Source.Data)
}

func TestMapMessages_PlaceholderForEmptyMessages(t *testing.T) {
	msgs, _ := mapMessages([]messages.Message{
		{Role: messages.RoleUser},
		messages.Assistant("ok"),
		{Role: messages.RoleUser},
	})

	require.Len(t, msgs, 3)
	require.Len(t, msgs[0].Content, 1)
	assert.Equal(t, placeholderText, msgs[0].Content[0].(TextBlock).Text)
	// The very last message is allowed to stay empty.
	assert.Empty(t, msgs[2].Content)
}

func TestMapMessages_SystemCacheMarker(t *testing.T) {
	msgs, system := mapMessages([]messages.Message{
		messages.System("Be terse"),
		messages.CacheMarker(),
		messages.User("Hi"),
	})

	require.Len(t, system, 1)
	require.NotNil(t, system[0].CacheControl)
	assert.Equal(t, "ephemeral", system[0].CacheControl.Type)

	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].Content[0].(TextBlock).CacheControl)
}

func TestMapMessages_MessageCacheMarker(t *testing.T) {
	msgs, _ := mapMessages([]messages.Message{
		messages.User("first"),
		messages.Assistant("reply"),
		messages.CacheMarker(),
		messages.User("second"),
	})

	require.Len(t, msgs, 3)
	last := msgs[1].Content[len(msgs[1].Content)-1].(TextBlock)
	require.NotNil(t, last.CacheControl, "marker stamps the last block of the message it follows")
	assert.Nil(t, msgs[2].Content[0].(TextBlock).CacheControl)
}

func TestMapMessages_CacheMarkerOverflow(t *testing.T) {
	var conv []messages.Message
	conv = append(conv, messages.System("sys"), messages.CacheMarker())
	for i := 0; i < 6; i++ {
		conv = append(conv, messages.User("turn"), messages.Assistant("ok"), messages.CacheMarker())
	}

	msgs, system := mapMessages(conv)

	stamped := 0
	require.Len(t, system, 1)
	if system[0].CacheControl != nil {
		stamped++
	}
	for _, m := range msgs {
		for _, b := range m.Content {
			if tb, ok := b.(TextBlock); ok && tb.CacheControl != nil {
				stamped++
			}
		}
	}
	assert.Equal(t, maxCacheBreakpoints, stamped)
	require.NotNil(t, system[0].CacheControl, "system breakpoints always survive")
}

func TestMapMessages_LeadingCacheMarkerIgnored(t *testing.T) {
	msgs, system := mapMessages([]messages.Message{
		messages.CacheMarker(),
		messages.User("Hi"),
	})

	require.Empty(t, system)
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].Content[0].(TextBlock).CacheControl)
}

func TestMapMessages_MissingFunctionCallID(t *testing.T) {
	msgs, _ := mapMessages([]messages.Message{
		messages.User("hi"),
		messages.FunctionCallMsg("", "search", ""),
	})

	require.Len(t, msgs, 2)
	use := msgs[1].Content[0].(ToolUseBlock)
	assert.True(t, strings.HasPrefix(use.ID, "tool-"), "missing ids degrade to generated ones")
	assert.Equal(t, map[string]any{"run": true}, use.Input)
}

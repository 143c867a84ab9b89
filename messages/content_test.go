package messages

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentOrParts_MarshalString(t *testing.T) {
	b, err := json.Marshal(ContentOrParts{Content: "hello"})
	require.NoError(t, err)
	assert.JSONEq(t, `"hello"`, string(b))
}

func TestContentOrParts_MarshalParts(t *testing.T) {
	b, err := json.Marshal(ContentOrParts{Parts: []ContentPart{
		Text("look at this"),
		Image("https://example.com/a.png"),
	}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"type":"text","text":"look at this"},{"type":"image","image_url":"https://example.com/a.png"}]`,
		string(b))
}

func TestContentOrParts_MarshalEmpty(t *testing.T) {
	b, err := json.Marshal(ContentOrParts{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestContentOrParts_UnmarshalString(t *testing.T) {
	var c ContentOrParts
	require.NoError(t, json.Unmarshal([]byte(`"plain text"`), &c))
	assert.Equal(t, "plain text", c.Content)
	assert.Empty(t, c.Parts)
}

func TestContentOrParts_UnmarshalParts(t *testing.T) {
	var c ContentOrParts
	input := `[
		{"type":"text","text":"caption"},
		{"type":"function_call","id":"c1","name":"lookup","arguments":"{\"q\":1}"}
	]`
	require.NoError(t, json.Unmarshal([]byte(input), &c))

	require.Len(t, c.Parts, 2)
	assert.Equal(t, "caption", c.Parts[0].(TextContentPart).Text)

	call := c.Parts[1].(FunctionCallContentPart)
	assert.Equal(t, "c1", call.ID)
	assert.Equal(t, "lookup", call.Name)
	assert.Equal(t, `{"q":1}`, call.Arguments)
}

func TestContentOrParts_UnmarshalUnknownPart(t *testing.T) {
	var c ContentOrParts
	err := json.Unmarshal([]byte(`[{"type":"video","url":"x"}]`), &c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestContentOrParts_Empty(t *testing.T) {
	assert.True(t, ContentOrParts{}.Empty())
	assert.True(t, ContentOrParts{Content: "  \n"}.Empty())
	assert.False(t, ContentOrParts{Content: "x"}.Empty())
	assert.False(t, ContentOrParts{Parts: []ContentPart{Text("x")}}.Empty())
}

func TestImageContentPart_InlineData(t *testing.T) {
	part := ImageData([]byte{0x89, 0x50, 0x4e, 0x47}, "image/png")
	b, err := json.Marshal(part)
	require.NoError(t, err)

	var back ImageContentPart
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, part.Data, back.Data)
	assert.Equal(t, "image/png", back.MediaType)
	assert.Empty(t, back.URL)
}

func TestImageContentPart_RequiresSource(t *testing.T) {
	var part ImageContentPart
	err := json.Unmarshal([]byte(`{"type":"image"}`), &part)
	require.Error(t, err)
}

func TestFunctionCallContentPart_RequiresName(t *testing.T) {
	var part FunctionCallContentPart
	err := json.Unmarshal([]byte(`{"type":"function_call","id":"c1"}`), &part)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestTextContentPart_RequiresText(t *testing.T) {
	var part TextContentPart
	err := json.Unmarshal([]byte(`{"type":"text"}`), &part)
	require.Error(t, err)
}

package anthropic

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ContentBlock is one typed unit of message payload on the Anthropic wire:
// text, image, tool invocation, tool result, or reasoning trace.
type ContentBlock interface {
	contentBlock()
}

// CacheControl marks a block as a cache breakpoint: the vendor may cache
// everything up to and including the block it is attached to.
type CacheControl struct {
	Type string `json:"type"`
}

// Ephemeral is the only cache-control variant the vendor currently accepts.
func Ephemeral() *CacheControl {
	return &CacheControl{Type: "ephemeral"}
}

// TextBlock is a plain text content block.
type TextBlock struct {
	Text         string        `json:"text"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
	_            struct{}      // require keyed usage
}

func (TextBlock) contentBlock() {}

var textBlockJSON = []byte(`{"type":"text"}`)

// MarshalJSON implements json.Marshaler for TextBlock.
func (t TextBlock) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(textBlockJSON, "text", t.Text)
	if err != nil {
		return nil, err
	}
	return setCacheControl(result, t.CacheControl)
}

// UnmarshalJSON implements json.Unmarshaler for TextBlock.
func (t *TextBlock) UnmarshalJSON(input []byte) error {
	text := gjson.GetBytes(input, "text")
	if !text.Exists() {
		return errors.New("missing required field 'text'")
	}
	t.Text = text.String()
	return nil
}

// ImageSource is the vendor image-source shape: base64 data with a media
// type, or a plain URL.
type ImageSource struct {
	Type      string   `json:"type"` // "base64" or "url"
	MediaType string   `json:"media_type,omitempty"`
	Data      string   `json:"data,omitempty"`
	URL       string   `json:"url,omitempty"`
	_         struct{} // require keyed usage
}

// ImageBlock is an image content block.
type ImageBlock struct {
	Source       ImageSource   `json:"source"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
	_            struct{}      // require keyed usage
}

func (ImageBlock) contentBlock() {}

var imageBlockJSON = []byte(`{"type":"image"}`)

// MarshalJSON implements json.Marshaler for ImageBlock.
func (i ImageBlock) MarshalJSON() ([]byte, error) {
	src, err := json.Marshal(i.Source)
	if err != nil {
		return nil, err
	}
	result, err := sjson.SetRawBytes(imageBlockJSON, "source", src)
	if err != nil {
		return nil, err
	}
	return setCacheControl(result, i.CacheControl)
}

// UnmarshalJSON implements json.Unmarshaler for ImageBlock.
func (i *ImageBlock) UnmarshalJSON(input []byte) error {
	src := gjson.GetBytes(input, "source")
	if !src.Exists() || !src.IsObject() {
		return errors.New("missing required field 'source'")
	}
	return json.Unmarshal([]byte(src.Raw), &i.Source)
}

// ToolUseBlock is a model-issued function call. Input is always a non-empty
// argument map after normalization; the vendor rejects empty objects.
type ToolUseBlock struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Input        map[string]any `json:"input"`
	CacheControl *CacheControl  `json:"cache_control,omitempty"`
	_            struct{}       // require keyed usage
}

func (ToolUseBlock) contentBlock() {}

var toolUseBlockJSON = []byte(`{"type":"tool_use"}`)

// MarshalJSON implements json.Marshaler for ToolUseBlock.
func (t ToolUseBlock) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolUseBlockJSON, "id", t.ID)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "name", t.Name)
	if err != nil {
		return nil, err
	}
	input := t.Input
	if input == nil {
		input = map[string]any{}
	}
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool input: %w", err)
	}
	result, err = sjson.SetRawBytes(result, "input", inputJSON)
	if err != nil {
		return nil, err
	}
	return setCacheControl(result, t.CacheControl)
}

// UnmarshalJSON implements json.Unmarshaler for ToolUseBlock.
func (t *ToolUseBlock) UnmarshalJSON(input []byte) error {
	id := gjson.GetBytes(input, "id")
	name := gjson.GetBytes(input, "name")
	if !id.Exists() || !name.Exists() {
		return errors.New("tool_use requires both 'id' and 'name' fields")
	}
	t.ID = id.String()
	t.Name = name.String()
	if in := gjson.GetBytes(input, "input"); in.Exists() && in.IsObject() {
		if err := json.Unmarshal([]byte(in.Raw), &t.Input); err != nil {
			return fmt.Errorf("invalid tool input: %w", err)
		}
	}
	return nil
}

// ToolResultBlock carries the caller-supplied output of executing a tool
// call. Content is opaque text; tool results cannot carry free-form text
// outside of it.
type ToolResultBlock struct {
	ToolUseID    string        `json:"tool_use_id"`
	Content      string        `json:"content"`
	IsError      bool          `json:"is_error,omitempty"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
	_            struct{}      // require keyed usage
}

func (ToolResultBlock) contentBlock() {}

var toolResultBlockJSON = []byte(`{"type":"tool_result"}`)

// MarshalJSON implements json.Marshaler for ToolResultBlock.
func (t ToolResultBlock) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolResultBlockJSON, "tool_use_id", t.ToolUseID)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "content", t.Content)
	if err != nil {
		return nil, err
	}
	if t.IsError {
		result, err = sjson.SetBytes(result, "is_error", true)
		if err != nil {
			return nil, err
		}
	}
	return setCacheControl(result, t.CacheControl)
}

// UnmarshalJSON implements json.Unmarshaler for ToolResultBlock.
func (t *ToolResultBlock) UnmarshalJSON(input []byte) error {
	id := gjson.GetBytes(input, "tool_use_id")
	if !id.Exists() {
		return errors.New("missing required field 'tool_use_id'")
	}
	t.ToolUseID = id.String()
	t.Content = gjson.GetBytes(input, "content").String()
	t.IsError = gjson.GetBytes(input, "is_error").Bool()
	return nil
}

// ThinkingBlock is a reasoning trace with its opaque integrity signature.
// Both fields must be echoed back unmodified for the vendor to accept the
// block in a follow-up request.
type ThinkingBlock struct {
	Thinking  string   `json:"thinking"`
	Signature string   `json:"signature"`
	_         struct{} // require keyed usage
}

func (ThinkingBlock) contentBlock() {}

var thinkingBlockJSON = []byte(`{"type":"thinking"}`)

// MarshalJSON implements json.Marshaler for ThinkingBlock.
func (t ThinkingBlock) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(thinkingBlockJSON, "thinking", t.Thinking)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(result, "signature", t.Signature)
}

// UnmarshalJSON implements json.Unmarshaler for ThinkingBlock.
func (t *ThinkingBlock) UnmarshalJSON(input []byte) error {
	thinking := gjson.GetBytes(input, "thinking")
	if !thinking.Exists() {
		return errors.New("missing required field 'thinking'")
	}
	t.Thinking = thinking.String()
	t.Signature = gjson.GetBytes(input, "signature").String()
	return nil
}

// RedactedThinkingBlock carries a reasoning trace the vendor withheld. The
// payload is opaque and must round-trip untouched.
type RedactedThinkingBlock struct {
	Data string   `json:"data"`
	_    struct{} // require keyed usage
}

func (RedactedThinkingBlock) contentBlock() {}

var redactedThinkingJSON = []byte(`{"type":"redacted_thinking"}`)

// MarshalJSON implements json.Marshaler for RedactedThinkingBlock.
func (r RedactedThinkingBlock) MarshalJSON() ([]byte, error) {
	return sjson.SetBytes(redactedThinkingJSON, "data", r.Data)
}

// UnmarshalJSON implements json.Unmarshaler for RedactedThinkingBlock.
func (r *RedactedThinkingBlock) UnmarshalJSON(input []byte) error {
	data := gjson.GetBytes(input, "data")
	if !data.Exists() {
		return errors.New("missing required field 'data'")
	}
	r.Data = data.String()
	return nil
}

func setCacheControl(result []byte, cc *CacheControl) ([]byte, error) {
	if cc == nil {
		return result, nil
	}
	return sjson.SetBytes(result, "cache_control.type", cc.Type)
}

// withCacheControl returns a copy of block with the cache marker stamped on
// it. Thinking blocks cannot carry cache_control; they are returned as-is.
func withCacheControl(block ContentBlock) ContentBlock {
	switch b := block.(type) {
	case TextBlock:
		b.CacheControl = Ephemeral()
		return b
	case ImageBlock:
		b.CacheControl = Ephemeral()
		return b
	case ToolUseBlock:
		b.CacheControl = Ephemeral()
		return b
	case ToolResultBlock:
		b.CacheControl = Ephemeral()
		return b
	default:
		return block
	}
}

// MessageParam is one message of the outbound wire payload. Role is "user"
// or "assistant"; the system prompt travels separately.
type MessageParam struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
	_       struct{}       // require keyed usage
}

// decodeContentBlock converts one JSON content block from a response body or
// a content_block_start event into its typed form. Unknown types map to nil
// without an error so a single exotic block does not abort response parsing.
func decodeContentBlock(jv gjson.Result) (ContentBlock, error) {
	raw := []byte(jv.Raw)
	switch jv.Get("type").String() {
	case "text":
		var b TextBlock
		if err := b.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return b, nil
	case "image":
		var b ImageBlock
		if err := b.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return b, nil
	case "tool_use":
		var b ToolUseBlock
		if err := b.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return b, nil
	case "tool_result":
		var b ToolResultBlock
		if err := b.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return b, nil
	case "thinking":
		var b ThinkingBlock
		if err := b.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return b, nil
	case "redacted_thinking":
		var b RedactedThinkingBlock
		if err := b.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, nil
	}
}

// usagePayload mirrors the vendor's token counters as they appear in
// message_start events, message_delta events and non-streaming bodies.
type usagePayload struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

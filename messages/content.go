package messages

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var jsonNull = []byte(`null`)

// ContentOrParts represents either a simple string content or a collection of
// content parts. It provides flexible serialization to handle both
// single-string messages and multi-part content.
type ContentOrParts struct {
	Content string        // Raw string content, used when the message is just text
	Parts   []ContentPart // Slice of different content parts (text, image, function call)
	_       struct{}      // require keyed usage
}

// Empty reports whether the content carries neither text nor parts.
func (c ContentOrParts) Empty() bool {
	return strings.TrimSpace(c.Content) == "" && len(c.Parts) == 0
}

// MarshalJSON implements json.Marshaler interface for ContentOrParts.
// Returns the Content as a JSON string if it's non-empty,
// otherwise returns the Parts as a JSON array.
// Returns null if both Content and Parts are empty.
func (c ContentOrParts) MarshalJSON() ([]byte, error) {
	if strings.TrimSpace(c.Content) != "" {
		return json.Marshal(c.Content)
	}
	if c.Parts == nil {
		return jsonNull, nil
	}
	return json.Marshal(c.Parts)
}

// UnmarshalJSON implements json.Unmarshaler interface for ContentOrParts.
// Handles both string content and arrays of content part types.
// Returns an error if the JSON is invalid or contains unknown part types.
func (c *ContentOrParts) UnmarshalJSON(input []byte) error {
	if !gjson.ValidBytes(input) {
		return fmt.Errorf("invalid json: %s", input)
	}
	jv := gjson.ParseBytes(input)
	if jv.IsArray() {
		aj := jv.Array()
		parts := make([]ContentPart, len(aj))
		for idx, ajv := range aj {
			tpe := ajv.Get("type").String()
			switch tpe {
			case "text":
				var part TextContentPart
				if err := part.UnmarshalJSON([]byte(ajv.Raw)); err != nil {
					return fmt.Errorf("invalid text part at %d: %w", idx, err)
				}
				parts[idx] = part
			case "image":
				var part ImageContentPart
				if err := part.UnmarshalJSON([]byte(ajv.Raw)); err != nil {
					return fmt.Errorf("invalid image part at %d: %w", idx, err)
				}
				parts[idx] = part
			case "function_call":
				var part FunctionCallContentPart
				if err := part.UnmarshalJSON([]byte(ajv.Raw)); err != nil {
					return fmt.Errorf("invalid function_call part at %d: %w", idx, err)
				}
				parts[idx] = part
			default:
				return fmt.Errorf("content part at %d has an unknown type %q", idx, tpe)
			}
		}
		c.Parts = parts
		return nil
	}
	c.Content = jv.String()
	return nil
}

// ContentPart is an interface that marks structs as valid content parts.
// Implementations include TextContentPart, ImageContentPart, and
// FunctionCallContentPart.
type ContentPart interface {
	contentPart()
}

// Text creates a new TextContentPart with the given text.
func Text(text string) TextContentPart {
	return TextContentPart{Text: text}
}

// TextContentPart represents a text-only content part.
type TextContentPart struct {
	Text string   `json:"text"` // The actual text content
	_    struct{} // require keyed usage
}

func (TextContentPart) contentPart() {}

var tcpJSON = []byte(`{"type":"text"}`)

// MarshalJSON implements json.Marshaler interface for TextContentPart.
// Serializes the text content with a "type":"text" field.
func (t TextContentPart) MarshalJSON() ([]byte, error) {
	return sjson.SetBytes(tcpJSON, "text", t.Text)
}

// UnmarshalJSON implements json.Unmarshaler interface for TextContentPart.
// Validates and extracts the required 'text' field from the JSON input.
func (t *TextContentPart) UnmarshalJSON(input []byte) error {
	text := gjson.GetBytes(input, "text")
	if !text.Exists() {
		return errors.New("missing required field 'text'")
	}
	t.Text = text.String()
	return nil
}

// Image creates a new ImageContentPart referencing the given URL.
func Image(url string) ImageContentPart {
	return ImageContentPart{URL: url}
}

// ImageData creates a new ImageContentPart carrying inline image bytes.
func ImageData(data []byte, mediaType string) ImageContentPart {
	return ImageContentPart{Data: data, MediaType: mediaType}
}

// ImageContentPart represents an image, either by URL or as inline bytes with
// a media type. Exactly one of URL or Data should be set.
type ImageContentPart struct {
	URL       string   `json:"image_url,omitempty"`  // URL pointing to the image
	Data      []byte   `json:"-"`                    // Raw image bytes, base64 encoded on the wire
	MediaType string   `json:"media_type,omitempty"` // MIME type for inline data
	_         struct{} // require keyed usage
}

func (ImageContentPart) contentPart() {}

var icpJSON = []byte(`{"type":"image"}`)

// MarshalJSON implements json.Marshaler interface for ImageContentPart.
// URL images serialize as {"type":"image","image_url":...}; inline images as
// {"type":"image","data":<base64>,"media_type":...}.
func (i ImageContentPart) MarshalJSON() ([]byte, error) {
	if i.URL != "" {
		return sjson.SetBytes(icpJSON, "image_url", i.URL)
	}
	result, err := sjson.SetBytes(icpJSON, "data", base64.StdEncoding.EncodeToString(i.Data))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(result, "media_type", i.MediaType)
}

// UnmarshalJSON implements json.Unmarshaler interface for ImageContentPart.
// Accepts either the URL or the inline-data shape.
func (i *ImageContentPart) UnmarshalJSON(input []byte) error {
	if uri := gjson.GetBytes(input, "image_url"); uri.Exists() {
		i.URL = uri.String()
		return nil
	}
	data := gjson.GetBytes(input, "data")
	if !data.Exists() {
		return errors.New("image part requires either 'image_url' or 'data'")
	}
	decoded, err := base64.StdEncoding.DecodeString(data.String())
	if err != nil {
		return fmt.Errorf("invalid base64 data: %w", err)
	}
	i.Data = decoded
	i.MediaType = gjson.GetBytes(input, "media_type").String()
	return nil
}

// FunctionCallContentPart represents a model-issued function call carried
// inline in an assistant message. Arguments hold the raw JSON string exactly
// as produced by the model; normalization happens at mapping time.
type FunctionCallContentPart struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Arguments string   `json:"arguments"`
	_         struct{} // require keyed usage
}

func (FunctionCallContentPart) contentPart() {}

var fcpJSON = []byte(`{"type":"function_call"}`)

// MarshalJSON implements json.Marshaler interface for FunctionCallContentPart.
func (f FunctionCallContentPart) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(fcpJSON, "id", f.ID)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "name", f.Name)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(result, "arguments", f.Arguments)
}

// UnmarshalJSON implements json.Unmarshaler interface for FunctionCallContentPart.
// The 'name' field is required; 'id' and 'arguments' may be absent in
// conversations that were only partially recorded upstream.
func (f *FunctionCallContentPart) UnmarshalJSON(input []byte) error {
	name := gjson.GetBytes(input, "name")
	if !name.Exists() {
		return errors.New("missing required field 'name'")
	}
	f.Name = name.String()
	f.ID = gjson.GetBytes(input, "id").String()
	f.Arguments = gjson.GetBytes(input, "arguments").String()
	return nil
}

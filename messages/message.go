package messages

import (
	"time"

	"github.com/go-openapi/strfmt"
)

// Role identifies who or what produced a conversation message.
type Role string

const (
	RoleSystem         Role = "system"
	RoleUser           Role = "user"
	RoleAssistant      Role = "assistant"
	RoleDeveloper      Role = "developer"
	RoleFunctionCall   Role = "function_call"
	RoleFunctionResult Role = "function_result"
	// RoleCacheMarker is a request-time hint: everything recorded before the
	// marker may be cached by the vendor for reuse across calls. It carries no
	// content of its own.
	RoleCacheMarker Role = "cache_marker"
)

// FunctionCall captures a model-issued function invocation. Arguments hold
// the raw JSON string as produced by the model; adapters normalize it into a
// canonical argument map when building the wire payload.
type FunctionCall struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Arguments string   `json:"arguments,omitempty"`
	_         struct{} // require keyed usage
}

// ThinkingData is a reasoning trace segment attached to an assistant or
// function_call message. Signature is the opaque integrity token returned by
// models with exposed reasoning; Redacted carries the payload of traces the
// vendor withheld.
type ThinkingData struct {
	Thinking  string   `json:"thinking,omitempty"`
	Signature string   `json:"signature,omitempty"`
	Redacted  string   `json:"redacted,omitempty"`
	_         struct{} // require keyed usage
}

// Message is one entry of a vendor-neutral conversation. Which fields are
// meaningful depends on Role: FunctionCall is set for function_call messages,
// FunctionCallID for function_result messages, Thinking for assistant and
// function_call messages produced by reasoning models.
type Message struct {
	Role           Role            `json:"role"`
	Content        ContentOrParts  `json:"content,omitempty"`
	FunctionCall   *FunctionCall   `json:"function_call,omitempty"`
	FunctionCallID string          `json:"function_call_id,omitempty"`
	Name           string          `json:"name,omitempty"`
	Thinking       []ThinkingData  `json:"thinking,omitempty"`
	Sender         string          `json:"sender,omitempty"`
	Timestamp      strfmt.DateTime `json:"timestamp,omitempty"`
	_              struct{}        // require keyed usage
}

// System creates a system message with plain text content.
func System(text string) Message {
	return Message{Role: RoleSystem, Content: ContentOrParts{Content: text}, Timestamp: now()}
}

// User creates a user message with plain text content.
func User(text string) Message {
	return Message{Role: RoleUser, Content: ContentOrParts{Content: text}, Timestamp: now()}
}

// UserParts creates a user message from typed content parts.
func UserParts(parts ...ContentPart) Message {
	return Message{Role: RoleUser, Content: ContentOrParts{Parts: parts}, Timestamp: now()}
}

// Assistant creates an assistant message with plain text content.
func Assistant(text string) Message {
	return Message{Role: RoleAssistant, Content: ContentOrParts{Content: text}, Timestamp: now()}
}

// Developer creates a developer instruction. Mappers fold these into the
// preceding message rather than emitting them standalone.
func Developer(text string) Message {
	return Message{Role: RoleDeveloper, Content: ContentOrParts{Content: text}, Timestamp: now()}
}

// CacheMarker creates a cache breakpoint hint at the current position.
func CacheMarker() Message {
	return Message{Role: RoleCacheMarker, Timestamp: now()}
}

// FunctionCallMsg creates a function_call message.
func FunctionCallMsg(id, name, arguments string) Message {
	return Message{
		Role:         RoleFunctionCall,
		FunctionCall: &FunctionCall{ID: id, Name: name, Arguments: arguments},
		Timestamp:    now(),
	}
}

// FunctionResult creates a function_result message holding the output of the
// call identified by callID.
func FunctionResult(callID, content string) Message {
	return Message{
		Role:           RoleFunctionResult,
		Content:        ContentOrParts{Content: content},
		FunctionCallID: callID,
		Timestamp:      now(),
	}
}

func now() strfmt.DateTime {
	return strfmt.DateTime(time.Now())
}

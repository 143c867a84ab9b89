package provider

// FinishReason is the standardized enum describing why generation stopped.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishToolCall      FinishReason = "tool_call"
	FinishContentFilter FinishReason = "content_filter"
)

// ToolCall is one model-issued function invocation with normalized arguments.
// RegistryID is the opaque identifier the caller registered the tool under,
// resolved by matching the vendor tool name against the request's tools.
type ToolCall struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Arguments  map[string]any `json:"arguments"`
	RegistryID string         `json:"registry_id,omitempty"`
}

// Tokens is the standardized usage record. TotalTokens is always
// PromptTokens + CompletionTokens; cache counters are reported separately
// because vendors price them differently.
type Tokens struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	ThinkingTokens   int64 `json:"thinking_tokens,omitempty"`
	CacheWriteTokens int64 `json:"cache_write_tokens,omitempty"`
	CacheReadTokens  int64 `json:"cache_read_tokens,omitempty"`
	TotalTokens      int64 `json:"total_tokens"`
}

// RateLimits reflects the vendor's rate-limit headers at response time.
// Values are passed through for the caller's limiter; this package never
// throttles.
type RateLimits struct {
	RequestsRemaining int64  `json:"requests_remaining,omitempty"`
	TokensRemaining   int64  `json:"tokens_remaining,omitempty"`
	RequestsReset     string `json:"requests_reset,omitempty"`
	TokensReset       string `json:"tokens_reset,omitempty"`
	RetryAfter        string `json:"retry_after,omitempty"`
}

// ThinkingBlock is one finalized reasoning trace with its integrity
// signature, or the opaque payload of a redacted trace.
type ThinkingBlock struct {
	Thinking  string `json:"thinking,omitempty"`
	Signature string `json:"signature,omitempty"`
	Redacted  string `json:"redacted,omitempty"`
}

// Metadata carries per-request observability data alongside a Result.
type Metadata struct {
	RequestID      string          `json:"request_id,omitempty"`
	ProcessingMS   int64           `json:"processing_ms,omitempty"`
	RateLimits     *RateLimits     `json:"rate_limits,omitempty"`
	Thinking       string          `json:"thinking,omitempty"`
	ThinkingBlocks []ThinkingBlock `json:"thinking_blocks,omitempty"`
}

// Result is the standardized outcome of a completion request, streaming or
// not. Content is the concatenated assistant text; ToolCalls lists every
// closed tool invocation in stream order.
type Result struct {
	Content      string       `json:"content"`
	ToolCalls    []ToolCall   `json:"tool_calls,omitempty"`
	Tokens       *Tokens      `json:"tokens,omitempty"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Metadata     Metadata     `json:"metadata"`
}

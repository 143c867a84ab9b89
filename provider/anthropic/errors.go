package anthropic

import (
	"github.com/casualjim/strix/provider"
)

// errorKindByType maps the vendor's structured error-type field onto the
// standardized taxonomy. Preferred over the HTTP status when present.
var errorKindByType = map[string]provider.ErrKind{
	"invalid_request_error": provider.ErrInvalidRequest,
	"authentication_error":  provider.ErrAuthentication,
	"permission_error":      provider.ErrAuthentication,
	"not_found_error":       provider.ErrModel,
	"request_too_large":     provider.ErrInvalidRequest,
	"rate_limit_error":      provider.ErrRateLimit,
	"api_error":             provider.ErrServer,
	"overloaded_error":      provider.ErrServer,
}

// errorKindByStatus is the HTTP-status fallback, consulted when the body
// carried no recognizable error type.
var errorKindByStatus = map[int]provider.ErrKind{
	400: provider.ErrInvalidRequest,
	401: provider.ErrAuthentication,
	403: provider.ErrAuthentication,
	404: provider.ErrModel,
	413: provider.ErrInvalidRequest,
	429: provider.ErrRateLimit,
}

// mapError converts a vendor error shape plus HTTP status into a classified
// provider error: structured type first, status second, generic server_error
// last.
func mapError(vendorType, message string, status int) *provider.Error {
	if kind, ok := errorKindByType[vendorType]; ok {
		return provider.NewError(kind, message)
	}
	if kind, ok := errorKindByStatus[status]; ok {
		return provider.NewError(kind, message)
	}
	// 5xx and anything unrecognized lands in the catch-all.
	return provider.NewError(provider.ErrServer, message)
}

// mapUsage converts vendor token counters into the standardized usage
// record. Usage is optional on the wire: nil in, nil out. Absent counters
// default to zero and the total is always input+output.
func mapUsage(u *usagePayload) *provider.Tokens {
	if u == nil {
		return nil
	}
	return &provider.Tokens{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		CacheWriteTokens: u.CacheCreationInputTokens,
		CacheReadTokens:  u.CacheReadInputTokens,
		TotalTokens:      u.InputTokens + u.OutputTokens,
	}
}

// mapStopReason translates the vendor stop_reason into the standardized
// finish reason. Unknown values degrade to stop.
func mapStopReason(reason string) provider.FinishReason {
	switch reason {
	case "max_tokens":
		return provider.FinishLength
	case "tool_use":
		return provider.FinishToolCall
	case "refusal":
		return provider.FinishContentFilter
	default:
		return provider.FinishStop
	}
}

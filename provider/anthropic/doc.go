// Package anthropic implements the provider adapter for Anthropic's messages
// API. It translates the vendor-neutral conversation/tool model into the
// vendor's wire format, executes the request, and parses the incremental
// server-sent-event response stream back into vendor-neutral callbacks and a
// final structured result.
//
// Design decisions:
//   - Hand-parsed wire format: the adapter owns the message mapping and the
//     SSE state machine instead of delegating to a vendor SDK, because the
//     gateway's conversation model (developer instructions, cache markers,
//     function-call history) does not map 1:1 onto any SDK's types
//   - Best-effort mapping: conversation history arrives from upstream retries
//     in partially inconsistent shapes; the mapper degrades (placeholder
//     identifiers, sentinel arguments) rather than failing
//   - Request-scoped state: accumulators, cache positions and counters live
//     on the stack of a single ChatCompletion call; a Provider carries only
//     immutable configuration and is safe for concurrent use
//   - Blocking pull loop: streaming suspends the calling goroutine on each
//     read; cancellation is the transport's job (closing the body makes the
//     next read fail, which the state machine treats as terminal)
//   - No retries: a stream error or malformed terminal state is reported
//     once; retry policy belongs to the caller
//
// Mapping highlights:
//   - system messages become the separate system-block list; developer
//     instructions fold into the preceding message wrapped in an
//     <instructions> tag
//   - function_call/function_result pairs become tool_use/tool_result blocks
//     with sanitized, matching identifiers
//   - cache_marker roles record breakpoint positions; when more markers exist
//     than the vendor's limit of four, system positions win and the most
//     recent message positions fill the rest
//   - adjacent assistant messages are consolidated and every message but the
//     last is kept non-empty
//
// Example usage:
//
//	p := anthropic.Must(anthropic.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")))
//	result, err := p.ChatCompletion(ctx, provider.CompletionParams{
//	    Model:    "claude-sonnet-4-5",
//	    Messages: conv,
//	    Stream:   true,
//	    Handler: provider.Handlers{
//	        Content: func(chunk string) { fmt.Print(chunk) },
//	    },
//	})
package anthropic

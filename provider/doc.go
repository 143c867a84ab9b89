// Package provider defines the contract between a conversational gateway and
// the vendor-specific adapters that talk to chat-completion APIs. It holds
// the request parameters, the standardized result, the streaming callback
// interface, and the error taxonomy every adapter maps into.
//
// Design decisions:
//   - Streaming first: adapters drive a StreamHandler with content, thinking
//     and tool-call events as they arrive, then hand back one final Result
//   - Callbacks over channels: the streaming state machine of an adapter is a
//     blocking pull loop; a one-method-per-event interface preserves ordering
//     without an extra goroutine or buffer
//   - Errors as values: Error carries a Kind from a closed taxonomy
//     (invalid_request, authentication, model_error, rate_limit,
//     server_error) so callers can route retries and fallbacks without
//     string-matching vendor messages
//   - Request-scoped state only: CompletionParams and Result are owned by a
//     single call; adapters keep no cross-request mutable state
//
// Example usage:
//
//	p := anthropic.Must(anthropic.WithAPIKey(key))
//	result, err := p.ChatCompletion(ctx, provider.CompletionParams{
//	    Model:    "claude-sonnet-4-5",
//	    Messages: conv,
//	    Stream:   true,
//	    Handler:  provider.Handlers{Content: func(s string) { fmt.Print(s) }},
//	})
package provider

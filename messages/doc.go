// Package messages defines the vendor-neutral conversation model consumed by
// provider adapters. A conversation is an ordered sequence of role-tagged
// messages whose content is either plain text or a list of typed content
// parts (text, image, function call).
//
// Design decisions:
//   - Roles as data: system, user, assistant, developer, function_call,
//     function_result and cache_marker are all first-class roles, so a
//     conversation survives round-trips through storage without losing the
//     bookkeeping entries (cache markers, developer instructions) that only
//     matter at request-mapping time
//   - Flexible content: messages carry either a simple string or multi-part
//     content, mirroring what upstream gateways actually send
//   - JSON interop: custom marshaling keeps the wire shape stable and rejects
//     unknown part types instead of silently dropping them
//   - Read-only to adapters: provider adapters never mutate a conversation,
//     they translate it
//
// Example usage:
//
//	conv := []messages.Message{
//	    messages.System("You are a helpful assistant"),
//	    messages.User("What's the weather in Tokyo?"),
//	}
package messages

package anthropic

import (
	"bufio"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/casualjim/strix/pkg/slogx"
	"github.com/casualjim/strix/provider"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// maxStreamFrame bounds a single SSE line. Tool-call argument deltas can be
// large, but a frame past this size means the stream is corrupt.
const maxStreamFrame = 10 * 1024 * 1024

// toolCallState accumulates one tool_use block while it is open: the id and
// name captured at block start plus the growing raw-JSON argument string.
type toolCallState struct {
	id      string
	name    string
	partial strings.Builder
}

// thinkingState accumulates one thinking block: growing trace text and a
// growing signature, or the opaque payload of a redacted trace.
type thinkingState struct {
	thinking  strings.Builder
	signature strings.Builder
	redacted  string
}

// processStream consumes a live SSE stream and drives the handler callbacks,
// returning the final aggregate result. All state is scoped to this one
// call; the loop blocks on each read until the transport delivers a chunk,
// end-of-stream, or an error.
//
// A frame whose JSON fails to parse is skipped without aborting the stream
// (keep-alives and partially flushed frames show up in practice). A read
// error terminates processing through OnError. End-of-stream without a
// message_stop still returns the best-effort aggregate built so far.
func processStream(r io.Reader, meta provider.Metadata, registry map[string]string, h provider.StreamHandler) (*provider.Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamFrame)

	var (
		text       strings.Builder
		blockTypes = map[int]string{}
		tools      = map[int]*toolCallState{}
		thinks     = map[int]*thinkingState{}
		toolCalls  []provider.ToolCall
		stopReason string
		usage      *usagePayload
		eventType  string
	)

	result := &provider.Result{Metadata: meta}

	finalize := func() *provider.Result {
		result.Content = text.String()
		result.ToolCalls = toolCalls
		result.FinishReason = mapStopReason(stopReason)
		result.Tokens = mapUsage(usage)

		idxs := make([]int, 0, len(thinks))
		for idx := range thinks {
			idxs = append(idxs, idx)
		}
		sort.Ints(idxs)
		var traces []string
		for _, idx := range idxs {
			ts := thinks[idx]
			if ts.redacted != "" {
				result.Metadata.ThinkingBlocks = append(result.Metadata.ThinkingBlocks,
					provider.ThinkingBlock{Redacted: ts.redacted})
				continue
			}
			result.Metadata.ThinkingBlocks = append(result.Metadata.ThinkingBlocks,
				provider.ThinkingBlock{Thinking: ts.thinking.String(), Signature: ts.signature.String()})
			traces = append(traces, ts.thinking.String())
		}
		result.Metadata.Thinking = strings.Join(traces, "\n\n")
		return result
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			continue
		case strings.HasPrefix(line, "data:"):
		default:
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if !gjson.Valid(payload) {
			slog.Debug("skipping malformed stream frame", slog.String("data", payload))
			continue
		}
		jv := gjson.Parse(payload)

		et := eventType
		if et == "" {
			et = jv.Get("type").String()
		}

		switch et {
		case "message_start":
			msg := jv.Get("message")
			if id := msg.Get("id").String(); id != "" && result.Metadata.RequestID == "" {
				result.Metadata.RequestID = id
			}
			if u := msg.Get("usage"); u.Exists() {
				usage = decodeUsage(u)
			}

		case "content_block_start":
			idx := int(jv.Get("index").Int())
			cb := jv.Get("content_block")
			tpe := cb.Get("type").String()
			blockTypes[idx] = tpe
			switch tpe {
			case "tool_use":
				tools[idx] = &toolCallState{
					id:   cb.Get("id").String(),
					name: cb.Get("name").String(),
				}
			case "thinking":
				ts := &thinkingState{}
				ts.thinking.WriteString(cb.Get("thinking").String())
				ts.signature.WriteString(cb.Get("signature").String())
				thinks[idx] = ts
			case "redacted_thinking":
				thinks[idx] = &thinkingState{redacted: cb.Get("data").String()}
			case "text":
				if chunk := cb.Get("text").String(); chunk != "" {
					text.WriteString(chunk)
					h.OnContent(chunk)
				}
			}

		case "content_block_delta":
			idx := int(jv.Get("index").Int())
			delta := jv.Get("delta")
			switch delta.Get("type").String() {
			case "text_delta":
				chunk := delta.Get("text").String()
				text.WriteString(chunk)
				h.OnContent(chunk)
			case "thinking_delta":
				chunk := delta.Get("thinking").String()
				ts := thinks[idx]
				if ts == nil {
					ts = &thinkingState{}
					thinks[idx] = ts
				}
				ts.thinking.WriteString(chunk)
				h.OnThinking(chunk)
			case "signature_delta":
				// Signatures are integrity tokens, not user-visible text;
				// accumulate without a callback.
				if ts := thinks[idx]; ts != nil {
					ts.signature.WriteString(delta.Get("signature").String())
				}
			case "input_json_delta":
				if st := tools[idx]; st != nil {
					st.partial.WriteString(delta.Get("partial_json").String())
				}
			}

		case "content_block_stop":
			idx := int(jv.Get("index").Int())
			if blockTypes[idx] != "tool_use" {
				continue
			}
			st := tools[idx]
			if st == nil {
				continue
			}
			call := provider.ToolCall{
				ID:         st.id,
				Name:       st.name,
				Arguments:  parseStreamArguments(st.partial.String()),
				RegistryID: registry[st.name],
			}
			toolCalls = append(toolCalls, call)
			h.OnToolCall(call)
			delete(tools, idx)

		case "message_delta":
			if sr := jv.Get("delta.stop_reason").String(); sr != "" {
				stopReason = sr
			}
			if u := jv.Get("usage"); u.Exists() {
				if usage == nil {
					usage = &usagePayload{}
				}
				mergeUsage(usage, u)
			}

		case "message_stop":
			res := finalize()
			h.OnDone(res)
			return res, nil

		case "error":
			ve := jv.Get("error")
			err := mapError(ve.Get("type").String(), ve.Get("message").String(), 0)
			h.OnError(err)
			return finalize(), err
		}
	}

	if err := scanner.Err(); err != nil {
		h.OnError(err)
		return finalize(), err
	}

	// Stream ended without a message_stop; return what we have.
	return finalize(), nil
}

// parseStreamArguments parses the accumulated raw-JSON argument string of a
// closed tool_use block. Empty input means the tool takes no arguments;
// malformed input is wrapped rather than dropped.
func parseStreamArguments(raw string) map[string]any {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		slog.Debug("accumulated tool arguments failed to parse",
			slog.String("arguments", raw), slogx.Error(err))
		return map[string]any{"value": raw}
	}
	return args
}

func decodeUsage(jv gjson.Result) *usagePayload {
	return &usagePayload{
		InputTokens:              jv.Get("input_tokens").Int(),
		OutputTokens:             jv.Get("output_tokens").Int(),
		CacheCreationInputTokens: jv.Get("cache_creation_input_tokens").Int(),
		CacheReadInputTokens:     jv.Get("cache_read_input_tokens").Int(),
	}
}

// mergeUsage folds the incremental counters of a message_delta into the
// snapshot seeded at message_start. Only fields present in the delta move.
func mergeUsage(dst *usagePayload, jv gjson.Result) {
	if v := jv.Get("input_tokens"); v.Exists() {
		dst.InputTokens = v.Int()
	}
	if v := jv.Get("output_tokens"); v.Exists() {
		dst.OutputTokens = v.Int()
	}
	if v := jv.Get("cache_creation_input_tokens"); v.Exists() {
		dst.CacheCreationInputTokens = v.Int()
	}
	if v := jv.Get("cache_read_input_tokens"); v.Exists() {
		dst.CacheReadInputTokens = v.Int()
	}
}

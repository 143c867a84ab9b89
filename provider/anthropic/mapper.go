package anthropic

import (
	"encoding/base64"
	"strings"

	"github.com/casualjim/strix/messages"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"

	// placeholderText keeps a mapped message non-empty; the vendor rejects
	// requests containing a message with an empty content list.
	placeholderText = "(no content)"

	developerOpenTag  = "<instructions>"
	developerCloseTag = "</instructions>"
)

// mapMessages walks a vendor-neutral conversation left to right and produces
// the vendor message list plus the separate system-block list, with
// cache_control annotations already stamped on the surviving breakpoints.
//
// The pass never fails: conversation history may already be partially
// inconsistent from upstream retries, so malformed entries degrade to
// best-effort output instead of aborting the request.
func mapMessages(conv []messages.Message) ([]MessageParam, []TextBlock) {
	var (
		system []TextBlock
		msgs   []MessageParam
		pos    cachePositions
	)

	// Cache markers record a system position until the first
	// developer/user/assistant/function message, a message position after.
	inSystemPhase := true

	for _, m := range conv {
		switch m.Role {
		case messages.RoleSystem:
			for _, text := range textChunks(m.Content) {
				system = append(system, TextBlock{Text: text})
			}

		case messages.RoleCacheMarker:
			if inSystemPhase {
				if len(system) > 0 {
					pos.system = append(pos.system, len(system)-1)
				}
			} else if len(msgs) > 0 {
				pos.message = append(pos.message, len(msgs)-1)
			}

		case messages.RoleDeveloper:
			inSystemPhase = false
			msgs = mergeDeveloper(msgs, strings.TrimSpace(m.Content.Content))

		case messages.RoleFunctionResult:
			inSystemPhase = false
			msgs = append(msgs, MessageParam{
				Role: roleUser,
				Content: []ContentBlock{ToolResultBlock{
					ToolUseID: sanitizeToolID(m.FunctionCallID),
					Content:   m.Content.Content,
				}},
			})

		case messages.RoleFunctionCall:
			inSystemPhase = false
			msgs = append(msgs, MessageParam{
				Role:    roleAssistant,
				Content: functionCallBlocks(m),
			})

		case messages.RoleAssistant:
			inSystemPhase = false
			msgs = append(msgs, MessageParam{
				Role:    roleAssistant,
				Content: assistantBlocks(m),
			})

		default: // user and anything unrecognized degrades to user content
			inSystemPhase = false
			msgs = append(msgs, MessageParam{
				Role:    roleUser,
				Content: contentBlocks(m.Content),
			})
		}
	}

	msgs, pos.message = consolidateAssistant(msgs, pos.message)

	// Every message except possibly the very last must end up non-empty.
	for i := range msgs {
		if len(msgs[i].Content) == 0 && i != len(msgs)-1 {
			msgs[i].Content = []ContentBlock{TextBlock{Text: placeholderText}}
		}
	}

	sysKeep, msgKeep := planCacheBreakpoints(pos.system, pos.message, maxCacheBreakpoints)
	for _, idx := range sysKeep {
		if idx >= 0 && idx < len(system) {
			system[idx].CacheControl = Ephemeral()
		}
	}
	for _, idx := range msgKeep {
		if idx < 0 || idx >= len(msgs) {
			continue
		}
		if n := len(msgs[idx].Content); n > 0 {
			msgs[idx].Content[n-1] = withCacheControl(msgs[idx].Content[n-1])
		}
	}

	return msgs, system
}

// functionCallBlocks builds the assistant blocks for a function_call message:
// any reasoning traces first, then the tool_use itself with normalized
// arguments and a sanitized identifier.
func functionCallBlocks(m messages.Message) []ContentBlock {
	blocks := thinkingBlocks(m.Thinking)
	fc := m.FunctionCall
	if fc == nil {
		// History with a function_call role but no call payload; keep the
		// message so adjacent-assistant consolidation still lines up.
		return blocks
	}
	return append(blocks, ToolUseBlock{
		ID:    sanitizeToolID(fc.ID),
		Name:  fc.Name,
		Input: normalizeArguments(fc.Arguments),
	})
}

// assistantBlocks converts an assistant message, translating inline
// function_call parts to tool_use in place and prepending any reasoning
// traces carried in the message metadata.
func assistantBlocks(m messages.Message) []ContentBlock {
	blocks := thinkingBlocks(m.Thinking)

	if text := strings.TrimSpace(m.Content.Content); text != "" {
		return append(blocks, TextBlock{Text: m.Content.Content})
	}
	for _, part := range m.Content.Parts {
		switch p := part.(type) {
		case messages.TextContentPart:
			if strings.TrimSpace(p.Text) != "" {
				blocks = append(blocks, TextBlock{Text: p.Text})
			}
		case messages.FunctionCallContentPart:
			blocks = append(blocks, ToolUseBlock{
				ID:    sanitizeToolID(p.ID),
				Name:  p.Name,
				Input: normalizeArguments(p.Arguments),
			})
		case messages.ImageContentPart:
			blocks = append(blocks, imageBlock(p))
		}
	}
	return blocks
}

// contentBlocks converts user (or unrecognized-role) content structurally,
// translating bare image parts to the vendor image-source shape.
func contentBlocks(content messages.ContentOrParts) []ContentBlock {
	if strings.TrimSpace(content.Content) != "" {
		return []ContentBlock{TextBlock{Text: content.Content}}
	}
	var blocks []ContentBlock
	for _, part := range content.Parts {
		switch p := part.(type) {
		case messages.TextContentPart:
			blocks = append(blocks, TextBlock{Text: p.Text})
		case messages.ImageContentPart:
			blocks = append(blocks, imageBlock(p))
		case messages.FunctionCallContentPart:
			blocks = append(blocks, ToolUseBlock{
				ID:    sanitizeToolID(p.ID),
				Name:  p.Name,
				Input: normalizeArguments(p.Arguments),
			})
		}
	}
	return blocks
}

func imageBlock(p messages.ImageContentPart) ImageBlock {
	if p.URL != "" {
		return ImageBlock{Source: ImageSource{Type: "url", URL: p.URL}}
	}
	mediaType := p.MediaType
	if mediaType == "" {
		mediaType = "image/png"
	}
	return ImageBlock{Source: ImageSource{
		Type:      "base64",
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(p.Data),
	}}
}

func thinkingBlocks(traces []messages.ThinkingData) []ContentBlock {
	var blocks []ContentBlock
	for _, t := range traces {
		if t.Redacted != "" {
			blocks = append(blocks, RedactedThinkingBlock{Data: t.Redacted})
			continue
		}
		if t.Thinking != "" || t.Signature != "" {
			blocks = append(blocks, ThinkingBlock{Thinking: t.Thinking, Signature: t.Signature})
		}
	}
	return blocks
}

func textChunks(content messages.ContentOrParts) []string {
	if strings.TrimSpace(content.Content) != "" {
		return []string{content.Content}
	}
	var chunks []string
	for _, part := range content.Parts {
		if p, ok := part.(messages.TextContentPart); ok && strings.TrimSpace(p.Text) != "" {
			chunks = append(chunks, p.Text)
		}
	}
	return chunks
}

// mergeDeveloper folds a developer instruction, wrapped in its delimiter tag,
// into the trailing text block of the most recently emitted message. A tool
// result cannot carry free text, so when the previous message ends in one a
// fresh user message holds the instruction instead. Same when nothing has
// been emitted yet.
func mergeDeveloper(msgs []MessageParam, text string) []MessageParam {
	if text == "" {
		return msgs
	}
	wrapped := developerOpenTag + "\n" + text + "\n" + developerCloseTag

	if len(msgs) == 0 || endsInToolResult(msgs[len(msgs)-1]) {
		return append(msgs, MessageParam{
			Role:    roleUser,
			Content: []ContentBlock{TextBlock{Text: wrapped}},
		})
	}

	last := &msgs[len(msgs)-1]
	for i := len(last.Content) - 1; i >= 0; i-- {
		if tb, ok := last.Content[i].(TextBlock); ok {
			tb.Text += "\n\n" + wrapped
			last.Content[i] = tb
			return msgs
		}
	}
	last.Content = append(last.Content, TextBlock{Text: wrapped})
	return msgs
}

func endsInToolResult(m MessageParam) bool {
	if len(m.Content) == 0 {
		return false
	}
	_, ok := m.Content[len(m.Content)-1].(ToolResultBlock)
	return ok
}

// consolidateAssistant merges adjacent assistant messages into one,
// concatenating their content block sequences in order. Splitting a
// function_call-heavy turn produces several assistant messages that must be
// recombined before cache indices are stamped; recorded message cache
// positions are remapped onto the merged list.
func consolidateAssistant(msgs []MessageParam, positions []int) ([]MessageParam, []int) {
	if len(msgs) < 2 {
		return msgs, positions
	}

	merged := make([]MessageParam, 0, len(msgs))
	remap := make([]int, len(msgs))
	for i, m := range msgs {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Role == roleAssistant && m.Role == roleAssistant {
				last.Content = append(last.Content, m.Content...)
				remap[i] = len(merged) - 1
				continue
			}
		}
		merged = append(merged, m)
		remap[i] = len(merged) - 1
	}

	if len(merged) == len(msgs) {
		return msgs, positions
	}

	mappedPos := make([]int, 0, len(positions))
	for _, p := range positions {
		if p < 0 || p >= len(remap) {
			continue
		}
		np := remap[p]
		// Collapsing can leave duplicate neighbors; keep the later one.
		if n := len(mappedPos); n > 0 && mappedPos[n-1] == np {
			continue
		}
		mappedPos = append(mappedPos, np)
	}
	return merged, mappedPos
}

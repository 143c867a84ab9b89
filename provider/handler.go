package provider

// StreamHandler receives streaming callbacks from an adapter. Methods are
// invoked from the adapter's pull loop in stream order; a slow handler slows
// the stream down rather than dropping events.
//
// Signatures deltas are not surfaced: they are integrity tokens, not
// user-visible text, and arrive on the finalized thinking blocks instead.
type StreamHandler interface {
	// OnContent receives one assistant text fragment, unbuffered.
	OnContent(chunk string)
	// OnThinking receives one reasoning-trace fragment.
	OnThinking(chunk string)
	// OnToolCall fires once per tool invocation, when its block closes and
	// the accumulated argument JSON has been parsed.
	OnToolCall(call ToolCall)
	// OnError fires at most once, for a mid-stream vendor error or a
	// transport read failure. No further events follow.
	OnError(err error)
	// OnDone fires once with the final aggregate when the stream terminates
	// normally.
	OnDone(result *Result)
}

// NoopHandler discards all events. Useful as an embedding base when only a
// subset of callbacks matters.
type NoopHandler struct{}

func (NoopHandler) OnContent(string)    {}
func (NoopHandler) OnThinking(string)   {}
func (NoopHandler) OnToolCall(ToolCall) {}
func (NoopHandler) OnError(error)       {}
func (NoopHandler) OnDone(*Result)      {}

// Handlers adapts plain functions to the StreamHandler interface. Nil fields
// are skipped.
type Handlers struct {
	Content  func(string)
	Thinking func(string)
	ToolCall func(ToolCall)
	Error    func(error)
	Done     func(*Result)
}

func (h Handlers) OnContent(chunk string) {
	if h.Content != nil {
		h.Content(chunk)
	}
}

func (h Handlers) OnThinking(chunk string) {
	if h.Thinking != nil {
		h.Thinking(chunk)
	}
}

func (h Handlers) OnToolCall(call ToolCall) {
	if h.ToolCall != nil {
		h.ToolCall(call)
	}
}

func (h Handlers) OnError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}

func (h Handlers) OnDone(result *Result) {
	if h.Done != nil {
		h.Done(result)
	}
}

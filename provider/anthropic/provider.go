package anthropic

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/casualjim/strix/pkg/slogx"
	"github.com/casualjim/strix/provider"
	"github.com/fogfish/opts"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultVersion = "2023-06-01"
	messagesPath   = "/v1/messages"

	// maxErrorBody caps how much of a failed response we read back.
	maxErrorBody = 1 << 20
)

// Doer issues a single HTTP request. Satisfied by *http.Client; tests and
// callers with custom transports inject their own.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Provider talks to the Anthropic messages API. All fields are resolved at
// construction; a Provider is safe for concurrent use because every request
// keeps its state on the stack.
type Provider struct {
	APIKey       string
	BaseURL      string
	Version      string
	ExtraHeaders map[string]string
	Client       Doer
}

var _ provider.Provider = (*Provider)(nil)

var (
	// WithAPIKey overrides the key resolved from ANTHROPIC_API_KEY.
	WithAPIKey = opts.ForName[Provider, string]("APIKey")
	// WithBaseURL overrides the endpoint resolved from ANTHROPIC_BASE_URL.
	WithBaseURL = opts.ForName[Provider, string]("BaseURL")
	// WithVersion overrides the anthropic-version header.
	WithVersion = opts.ForName[Provider, string]("Version")
	// WithExtraHeaders adds headers to every outbound request.
	WithExtraHeaders = opts.ForName[Provider, map[string]string]("ExtraHeaders")
	// WithClient injects the HTTP transport.
	WithClient = opts.ForName[Provider, Doer]("Client")
)

// New creates a Provider, resolving credentials and endpoint from the
// environment and applying any overrides.
func New(options ...opts.Option[Provider]) (*Provider, error) {
	p := &Provider{
		APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		BaseURL: defaultBaseURL,
		Version: defaultVersion,
		Client:  &http.Client{Timeout: 10 * time.Minute},
	}
	if base := os.Getenv("ANTHROPIC_BASE_URL"); base != "" {
		p.BaseURL = strings.TrimSuffix(base, "/")
	}
	if err := opts.Apply(p, options); err != nil {
		return nil, err
	}
	return p, nil
}

// Must is New that panics on option errors.
func Must(options ...opts.Option[Provider]) *Provider {
	p, err := New(options...)
	if err != nil {
		panic(err)
	}
	return p
}

// ChatCompletion maps the vendor-neutral request onto the wire, executes it,
// and returns the standardized result. With Stream set, the response body is
// consumed by the streaming state machine which drives params.Handler; the
// returned Result is the same final aggregate the handler's OnDone observes.
func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (*provider.Result, error) {
	start := time.Now()

	if err := validateParams(params); err != nil {
		return nil, err
	}
	payload, registry, err := buildRequest(params)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, provider.NewError(provider.ErrInvalidRequest, err.Error())
	}
	slog.Debug("issuing chat completion",
		slog.String("model", params.Model),
		slog.Bool("stream", params.Stream),
		slog.Int("messages", len(payload.Messages)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, provider.NewError(provider.ErrInvalidRequest, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", p.APIKey)
	req.Header.Set("Anthropic-Version", p.Version)
	if params.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	for k, v := range p.ExtraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		slog.Warn("transport failure", slogx.Error(err))
		return nil, provider.NewError(provider.ErrServer, "Connection failed")
	}
	defer resp.Body.Close()

	meta := metadataFromHeaders(resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, decodeErrorBody(raw, resp.StatusCode)
	}

	handler := params.Handler
	if handler == nil {
		handler = provider.NoopHandler{}
	}

	if params.Stream {
		result, serr := processStream(resp.Body, meta, registry, handler)
		if result != nil {
			result.Metadata.ProcessingMS = time.Since(start).Milliseconds()
		}
		return result, serr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewError(provider.ErrServer, err.Error())
	}
	result, err := formatResponse(raw, meta, registry)
	if result != nil {
		result.Metadata.ProcessingMS = time.Since(start).Milliseconds()
	}
	return result, err
}

// formatResponse assembles the standardized result from a buffered
// (non-streaming) response body.
func formatResponse(raw []byte, meta provider.Metadata, registry map[string]string) (*provider.Result, error) {
	if !gjson.ValidBytes(raw) {
		return nil, provider.NewError(provider.ErrServer, "failed to decode response body")
	}
	jv := gjson.ParseBytes(raw)

	result := &provider.Result{Metadata: meta}
	if id := jv.Get("id").String(); id != "" && result.Metadata.RequestID == "" {
		result.Metadata.RequestID = id
	}

	var text strings.Builder
	var traces []string
	for _, cj := range jv.Get("content").Array() {
		block, err := decodeContentBlock(cj)
		if err != nil {
			slog.Debug("skipping undecodable content block", slogx.Error(err))
			continue
		}
		switch b := block.(type) {
		case TextBlock:
			text.WriteString(b.Text)
		case ToolUseBlock:
			input := b.Input
			if input == nil {
				input = map[string]any{}
			}
			result.ToolCalls = append(result.ToolCalls, provider.ToolCall{
				ID:         b.ID,
				Name:       b.Name,
				Arguments:  input,
				RegistryID: registry[b.Name],
			})
		case ThinkingBlock:
			result.Metadata.ThinkingBlocks = append(result.Metadata.ThinkingBlocks,
				provider.ThinkingBlock{Thinking: b.Thinking, Signature: b.Signature})
			traces = append(traces, b.Thinking)
		case RedactedThinkingBlock:
			result.Metadata.ThinkingBlocks = append(result.Metadata.ThinkingBlocks,
				provider.ThinkingBlock{Redacted: b.Data})
		}
	}
	result.Content = text.String()
	result.Metadata.Thinking = strings.Join(traces, "\n\n")
	result.FinishReason = mapStopReason(jv.Get("stop_reason").String())

	if uj := jv.Get("usage"); uj.Exists() {
		var usage usagePayload
		if err := json.Unmarshal([]byte(uj.Raw), &usage); err == nil {
			result.Tokens = mapUsage(&usage)
		}
	}
	return result, nil
}

// decodeErrorBody maps a non-2xx body into a classified error. Bodies that
// are not JSON (proxies, load balancers) fall back to the HTTP status.
func decodeErrorBody(raw []byte, status int) error {
	if !gjson.ValidBytes(raw) {
		return mapError("", strings.TrimSpace(string(raw)), status)
	}
	ve := gjson.GetBytes(raw, "error")
	return mapError(ve.Get("type").String(), ve.Get("message").String(), status)
}

func metadataFromHeaders(h http.Header) provider.Metadata {
	return provider.Metadata{
		RequestID:  h.Get("Request-Id"),
		RateLimits: rateLimitsFromHeaders(h),
	}
}

// rateLimitsFromHeaders interprets the vendor's rate-limit headers. Returns
// nil when none are present; enforcement is the caller's business.
func rateLimitsFromHeaders(h http.Header) *provider.RateLimits {
	rl := &provider.RateLimits{
		RequestsRemaining: headerInt(h, "Anthropic-Ratelimit-Requests-Remaining"),
		TokensRemaining:   headerInt(h, "Anthropic-Ratelimit-Tokens-Remaining"),
		RequestsReset:     h.Get("Anthropic-Ratelimit-Requests-Reset"),
		TokensReset:       h.Get("Anthropic-Ratelimit-Tokens-Reset"),
		RetryAfter:        h.Get("Retry-After"),
	}
	if rl.RequestsRemaining == 0 && rl.TokensRemaining == 0 &&
		rl.RequestsReset == "" && rl.TokensReset == "" && rl.RetryAfter == "" {
		return nil
	}
	return rl
}

func headerInt(h http.Header, key string) int64 {
	v, err := strconv.ParseInt(h.Get(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

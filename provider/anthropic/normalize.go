package anthropic

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/casualjim/strix/pkg/slogx"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// toolIDInvalid matches every character outside the vendor's allowed
// identifier alphabet.
var toolIDInvalid = regexp.MustCompile(`[^A-Za-z0-9*-]`)

// sanitizeToolID coerces raw into the vendor's allowed identifier character
// set. Disallowed characters become '-'; identifiers that do not start with
// an alphanumeric gain a "tool-" prefix; an empty identifier gets a random
// one. Idempotent for everything but the random fallback.
func sanitizeToolID(raw string) string {
	id := toolIDInvalid.ReplaceAllString(raw, "-")
	if id == "" {
		return "tool-" + uuid.Must(uuid.NewV7()).String()
	}
	if !isAlphanumeric(id[0]) {
		id = "tool-" + id
	}
	return id
}

func isAlphanumeric(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

// normalizeArguments coerces the heterogeneous argument encodings found in
// recorded conversations (string-JSON, empty, malformed) into a canonical
// non-empty argument map. The vendor rejects tool calls whose input is an
// empty object, hence the {"run": true} sentinel.
func normalizeArguments(raw string) map[string]any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]any{"run": true}
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
		slog.Debug("tool arguments are not a JSON object, wrapping",
			slog.String("arguments", trimmed), slogx.Error(err))
		return map[string]any{"value": raw}
	}
	if len(args) == 0 {
		return map[string]any{"run": true}
	}
	return args
}

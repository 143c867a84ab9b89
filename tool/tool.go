package tool

import (
	"fmt"

	"github.com/casualjim/strix/pkg/jsonx"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Definition describes one callable tool. RegistryID is the opaque identifier
// the gateway knows the tool by; Name is the vendor-facing (sanitized)
// function name.
type Definition struct {
	RegistryID  string
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	_           struct{} // require keyed usage
}

// ToNameAndSchema returns the vendor-facing name together with the input
// schema as a dynamic JSON object, ready for embedding in a wire payload.
// A nil schema yields a permissive empty object schema, since vendors reject
// tools without one.
func (d Definition) ToNameAndSchema() (string, map[string]any, error) {
	schema := d.InputSchema
	if schema == nil {
		schema = &jsonschema.Schema{
			Type:       "object",
			Properties: orderedmap.New[string, *jsonschema.Schema](),
		}
	}
	jv, err := jsonx.ToDynamicJSON(schema)
	if err != nil {
		return "", nil, fmt.Errorf("failed to convert tool %s to schema: %w", d.Name, err)
	}
	return d.Name, jv, nil
}

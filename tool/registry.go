package tool

import "github.com/alphadose/haxmap"

// Registry resolves opaque tool identifiers to definitions. Implementations
// must be safe for concurrent use; requests resolve tools while others
// register them.
type Registry interface {
	Resolve(id string) (Definition, bool)
	Register(id string, def Definition)
	ResolveOrRegister(id string, def func() Definition) (Definition, bool)
	Deregister(id string)
}

type registry struct {
	values *haxmap.Map[string, Definition]
}

// NewRegistry creates an empty lock-free registry.
func NewRegistry() Registry {
	return &registry{
		values: haxmap.New[string, Definition](),
	}
}

func (r *registry) Resolve(id string) (Definition, bool) {
	return r.values.Get(id)
}

func (r *registry) Register(id string, def Definition) {
	r.values.Set(id, def)
}

func (r *registry) ResolveOrRegister(id string, def func() Definition) (Definition, bool) {
	return r.values.GetOrCompute(id, def)
}

func (r *registry) Deregister(id string) {
	r.values.Del(id)
}

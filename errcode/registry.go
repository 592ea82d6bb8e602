package errcode

import (
	"fmt"
	"sync"
)

// Registry guards against two modules claiming the same code
type Registry struct {
	mu    sync.Mutex
	codes map[int]string // code -> module:msgKey
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

// Register records err in the global registry and returns it unchanged.
// Intended for package-level sentinel declarations.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register records err; re-registering the same code and key is a no-op.
// A conflicting key panics since it can only come from a declaration bug.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok && existing != key {
		panic(fmt.Sprintf("error code conflict: %d registered as %s, cannot register as %s",
			err.Code(), existing, key))
	}
	r.codes[err.Code()] = key
	return err
}

// Lookup returns the module:msgKey registered for code
func (r *Registry) Lookup(code int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.codes[code]
	return key, ok
}

// Package di wires every component into a samber/do injector. Providers are
// lazy: nothing connects until something invokes it.
package di

import "github.com/samber/do/v2"

type Injector = do.Injector

type RootScope = do.RootScope

// New creates an empty root injector
var New = do.New

// ComponentNotFoundError is returned when a provider needs a component
// that is not configured
type ComponentNotFoundError struct {
	Name string
}

func (e *ComponentNotFoundError) Error() string {
	return "component not found: " + e.Name
}

func ErrComponentNotFound(name string) error {
	return &ComponentNotFoundError{Name: name}
}

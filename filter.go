package pixfx

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownFilter is returned when a filter identifier is not registered.
var ErrUnknownFilter = errors.New("pixfx: unknown filter")

// FilterIdentity is the identifier of the built-in pass-through filter.
// It is always registered and renders nothing.
const FilterIdentity = "identity"

// Filter is a named variant: a parameterless builder of a fixed
// PrimitivesStack. Filters are immutable and stateless; rendering a
// filter twice over identical input produces byte-identical output.
type Filter struct {
	id    string
	name  string
	build func() PrimitivesStack
}

// Identifier returns the filter's stable string key (e.g. "orchid").
func (f *Filter) Identifier() string { return f.id }

// DisplayName returns the human-readable filter name.
func (f *Filter) DisplayName() string { return f.name }

// Stack builds the filter's primitive stack.
func (f *Filter) Stack() PrimitivesStack { return f.build() }

// Render applies the filter to dst through the renderer. It is idempotent
// with respect to the registry and side-effect-free beyond writing dst.
func (f *Filter) Render(r Renderer, dst *Pixmap) error {
	return f.Stack().Render(r, dst)
}

// filterRegistry holds the process-wide filter variants. Populated from
// init() functions; read-only afterwards by convention.
var (
	filterRegistryMu sync.RWMutex
	filterRegistry   = make(map[string]*Filter)
)

// RegisterFilter registers a filter variant under its identifier. It is
// typically called from init() functions. Registering the same identifier
// twice replaces the earlier variant.
func RegisterFilter(id, name string, build func() PrimitivesStack) {
	filterRegistryMu.Lock()
	defer filterRegistryMu.Unlock()
	filterRegistry[id] = &Filter{id: id, name: name, build: build}
}

// LookupFilter returns the filter registered under id.
func LookupFilter(id string) (*Filter, error) {
	filterRegistryMu.RLock()
	defer filterRegistryMu.RUnlock()
	f, ok := filterRegistry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, id)
	}
	return f, nil
}

// FilterNames returns the sorted identifiers of all registered filters.
func FilterNames() []string {
	filterRegistryMu.RLock()
	defer filterRegistryMu.RUnlock()
	names := make([]string, 0, len(filterRegistry))
	for id := range filterRegistry {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

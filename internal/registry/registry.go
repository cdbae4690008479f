// Package registry provides the process-wide plugin catalog shared by
// the execution hook and input dataset plugin kinds.
//
// A registry has a two-phase lifecycle: built-ins are registered at
// construction, then a single discovery pass queries an external
// advertisement provider. Discovery is terminal and idempotent.
// Registration happens at startup before concurrent access, so no mutex
// is needed; registering during live job execution is unsupported.
package registry

import (
	"log/slog"
	"sort"

	"github.com/me/gridwe/pkg/model"
)

// Entry describes one registered plugin: its name, the virtual
// organization it applies to ("generic" when unconstrained), and the
// factory that builds instances.
type Entry[T any] struct {
	Name        string
	VO          string
	Description string
	Factory     T
}

// Advertisement is one plugin offered by an external Provider. Load is
// invoked during discovery; a Load error excludes only that plugin.
type Advertisement[T any] struct {
	Name        string
	VO          string
	Description string
	Load        func() (T, error)
}

// Provider yields plugin advertisements on demand. The core only
// requires it to be enumerable and to yield loadable factories.
type Provider[T any] interface {
	Advertise() []Advertisement[T]
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc[T any] func() []Advertisement[T]

// Advertise implements Provider.
func (f ProviderFunc[T]) Advertise() []Advertisement[T] { return f() }

// Registry maps plugin names to entries. Names are unique; registering a
// duplicate overwrites and returns the shadowed entry so the caller can
// detect it.
type Registry[T any] struct {
	entries     map[string]Entry[T]
	order       []string // registration order, for FindApplicable
	defaultName string
	discovered  bool
	logger      *slog.Logger
}

// New creates an empty registry. defaultName, when non-empty, names the
// plugin substituted for empty lookup names and unmatched VO searches.
func New[T any](defaultName string, logger *slog.Logger) *Registry[T] {
	return &Registry[T]{
		entries:     make(map[string]Entry[T]),
		defaultName: defaultName,
		logger:      logger.With("component", "plugin-registry"),
	}
}

// Register adds an entry, overwriting any existing one with the same
// name. The shadowed entry is returned, if any, so shadowing is never
// silent.
func (r *Registry[T]) Register(e Entry[T]) *Entry[T] {
	if e.VO == "" {
		e.VO = "generic"
	}
	prev, existed := r.entries[e.Name]
	r.entries[e.Name] = e
	if !existed {
		r.order = append(r.order, e.Name)
		r.logger.Info("plugin registered", "name", e.Name, "vo", e.VO)
		return nil
	}
	r.logger.Warn("plugin overwritten", "name", e.Name, "vo", e.VO)
	return &prev
}

// Discover queries the provider and registers each advertised plugin.
// A loader that fails is logged and skipped; one bad plugin must not
// abort discovery of the rest. The first call is terminal: repeated
// calls are no-ops returning zero.
func (r *Registry[T]) Discover(p Provider[T]) int {
	if r.discovered {
		return 0
	}
	r.discovered = true
	if p == nil {
		return 0
	}

	registered := 0
	for _, ad := range p.Advertise() {
		factory, err := ad.Load()
		if err != nil {
			r.logger.Error("plugin load failed, skipping", "name", ad.Name, "error", err)
			continue
		}
		r.Register(Entry[T]{Name: ad.Name, VO: ad.VO, Description: ad.Description, Factory: factory})
		registered++
	}
	return registered
}

// Discovered reports whether the discovery pass has completed.
func (r *Registry[T]) Discovered() bool {
	return r.discovered
}

// Get returns the entry for name. An empty name resolves to the
// configured default. Unknown names fail with a PluginNotFoundError
// enumerating the registered plugin names.
func (r *Registry[T]) Get(name string) (Entry[T], error) {
	if name == "" {
		name = r.defaultName
	}
	e, ok := r.entries[name]
	if !ok {
		return Entry[T]{}, &model.PluginNotFoundError{Name: name, Known: r.Names()}
	}
	return e, nil
}

// FindApplicable returns the first registered plugin whose VO tag
// matches vo, in registration order. When none matches, the configured
// default is returned if set, otherwise a NoApplicablePluginError.
func (r *Registry[T]) FindApplicable(vo string) (Entry[T], error) {
	for _, name := range r.order {
		if e := r.entries[name]; e.VO == vo {
			return e, nil
		}
	}
	if r.defaultName != "" {
		if e, ok := r.entries[r.defaultName]; ok {
			return e, nil
		}
	}
	return Entry[T]{}, &model.NoApplicablePluginError{VO: vo, Known: r.Names()}
}

// Names returns the sorted names of all registered plugins.
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns all registered entries sorted by name.
func (r *Registry[T]) Entries() []Entry[T] {
	names := r.Names()
	entries := make([]Entry[T], 0, len(names))
	for _, name := range names {
		entries = append(entries, r.entries[name])
	}
	return entries
}

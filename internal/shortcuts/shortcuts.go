// Package shortcuts is an in-process shortcut registry. Each registered
// label may be bound to a style name; triggering the label hands that name
// to a single handler, normally "apply this style".
package shortcuts

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mesh-intelligence/styles/pkg/types"
)

// Handler runs when a bound shortcut is triggered.
type Handler func(ctx context.Context, styleName string) error

// Registry implements types.ShortcutRegistry. It owns the bound names.
type Registry struct {
	mu      sync.RWMutex
	labels  map[string]string // label -> bound style name, "" when unbound
	handler Handler
}

var _ types.ShortcutRegistry = (*Registry)(nil)

// New returns an empty registry that calls h on Trigger.
func New(h Handler) *Registry {
	return &Registry{labels: make(map[string]string), handler: h}
}

// Register adds label. Registering an existing label keeps its binding.
func (r *Registry) Register(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.labels[label]; !ok {
		r.labels[label] = ""
	}
}

// Deregister removes label and its binding.
func (r *Registry) Deregister(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.labels, label)
}

// Bind attaches styleName to label, registering the label if needed.
func (r *Registry) Bind(label, styleName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels[label] = styleName
}

// Lookup returns the style bound to label.
func (r *Registry) Lookup(label string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.labels[label]
	return name, ok && name != ""
}

// Labels returns every registered label in sorted order.
func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.labels))
	for l := range r.labels {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// Trigger runs the handler with the style bound to label.
func (r *Registry) Trigger(ctx context.Context, label string) error {
	name, ok := r.Lookup(label)
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrNoShortcut, label)
	}
	if r.handler == nil {
		return nil
	}
	return r.handler(ctx, name)
}

// Package registry manages plugin factories and running instances on the
// host side. It provides thread-safe registration and lookup of factories
// (for creation) and instances (for lifecycle management and schema
// discovery).
package registry

import (
	"fmt"
	"maps"
	"sync"

	"github.com/joelkoz/signalk-plugin-base/errors"
	"github.com/joelkoz/signalk-plugin-base/plugin"
	"github.com/joelkoz/signalk-plugin-base/schema"
)

// MaxIDLength bounds plugin identifiers.
const MaxIDLength = 255

// Factory creates a plugin instance wired to the given host collaborators.
// Factories perform no I/O; all side effects belong in the plugin's Start.
type Factory func(deps plugin.Dependencies) (*plugin.Plugin, error)

// Registration holds the factory and metadata for one plugin type.
type Registration struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Version     string  `json:"version"`
	Factory     Factory `json:"-"`
}

// Registry tracks plugin factories and the instances created from them.
type Registry struct {
	factories map[string]*Registration
	instances map[string]*plugin.Plugin
	created   []string // instance creation order, for reverse shutdown
	mu        sync.RWMutex
}

// New creates an empty plugin registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]*Registration),
		instances: make(map[string]*plugin.Plugin),
	}
}

// RegisterFactory registers a plugin factory. Registering an ID twice is
// rejected.
func (r *Registry) RegisterFactory(reg *Registration) error {
	if reg == nil || reg.Factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Registry", "RegisterFactory", "registration validation")
	}
	if err := ValidateID(reg.ID); err != nil {
		return errors.Wrap(err, "Registry", "RegisterFactory", "plugin id validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[reg.ID]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrDuplicateRegistration, reg.ID),
			"Registry", "RegisterFactory", "duplicate factory check")
	}

	r.factories[reg.ID] = reg
	return nil
}

// Create instantiates a registered plugin and tracks the instance.
func (r *Registry) Create(id string, deps plugin.Dependencies) (*plugin.Plugin, error) {
	r.mu.RLock()
	reg, exists := r.factories[id]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrPluginNotFound, id),
			"Registry", "Create", "factory lookup")
	}

	p, err := reg.Factory(deps)
	if err != nil {
		return nil, errors.Wrap(err, "Registry", "Create", "factory execution")
	}
	if p == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig,
			"Registry", "Create", "factory result validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[id]; exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: instance %q", errors.ErrDuplicateRegistration, id),
			"Registry", "Create", "duplicate instance check")
	}

	r.instances[id] = p
	r.created = append(r.created, id)
	return p, nil
}

// Instance retrieves a tracked plugin instance, or nil when none exists.
func (r *Registry) Instance(id string) *plugin.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instances[id]
}

// Remove stops tracking an instance. The caller is responsible for stopping
// it first.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.instances, id)
	for i, created := range r.created {
		if created == id {
			r.created = append(r.created[:i], r.created[i+1:]...)
			break
		}
	}
}

// List returns a copy of the tracked instances keyed by plugin ID.
func (r *Registry) List() map[string]*plugin.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*plugin.Plugin, len(r.instances))
	maps.Copy(result, r.instances)
	return result
}

// ListFactories returns registration metadata for every known plugin type,
// without the factory functions.
func (r *Registry) ListFactories() map[string]Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Registration, len(r.factories))
	for id, reg := range r.factories {
		result[id] = Registration{
			ID:          reg.ID,
			Name:        reg.Name,
			Description: reg.Description,
			Version:     reg.Version,
		}
	}
	return result
}

// Schema returns the configuration schema document of a registered plugin
// type. The factory runs with empty dependencies; factories do no I/O, so
// this is safe for discovery.
func (r *Registry) Schema(id string) (*schema.Document, error) {
	r.mu.RLock()
	reg, exists := r.factories[id]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrPluginNotFound, id),
			"Registry", "Schema", "factory lookup")
	}

	p, err := reg.Factory(plugin.Dependencies{})
	if err != nil {
		return nil, errors.Wrap(err, "Registry", "Schema", "factory execution")
	}

	doc, err := p.Schema()
	if err != nil {
		return nil, errors.Wrap(err, "Registry", "Schema", "schema construction")
	}
	return doc, nil
}

// StopAll stops every tracked instance in reverse creation order. Every
// instance is attempted; the first error encountered is returned.
func (r *Registry) StopAll() error {
	r.mu.RLock()
	order := make([]*plugin.Plugin, 0, len(r.created))
	for i := len(r.created) - 1; i >= 0; i-- {
		if p, ok := r.instances[r.created[i]]; ok {
			order = append(order, p)
		}
	}
	r.mu.RUnlock()

	var firstErr error
	for _, p := range order {
		if err := p.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ValidateID validates plugin identifiers: non-empty, bounded, and limited
// to alphanumerics plus dash, underscore, and dot.
func ValidateID(id string) error {
	if id == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Registry", "ValidateID", "empty id")
	}
	if len(id) > MaxIDLength {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Registry", "ValidateID", "id too long")
	}
	for _, r := range id {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.') {
			return errors.WrapInvalid(errors.ErrInvalidConfig,
				"Registry", "ValidateID", "invalid id characters")
		}
	}
	return nil
}

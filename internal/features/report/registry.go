package report

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrAlreadyRegistered = errors.New("report already registered")
	ErrNotRegistered     = errors.New("report not registered")
	ErrRegistrySealed    = errors.New("report registry is sealed")
)

// Registry maps modules to their report definitions. The empty module holds
// global reports offered on every module.
type Registry struct {
	mu      sync.RWMutex
	models  []string
	reports map[string][]*Definition
	sealed  bool
}

func NewRegistry() *Registry {
	return &Registry{reports: make(map[string][]*Definition)}
}

// Register adds def to model, or globally when model is empty.
func (r *Registry) Register(model string, def *Definition) error {
	if def == nil {
		return fmt.Errorf("register %q: nil definition", model)
	}
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: cannot register %q", ErrRegistrySealed, def.Name)
	}
	for _, existing := range r.reports[model] {
		if existing.ActionName() == def.ActionName() {
			return fmt.Errorf("%w: %q on %q", ErrAlreadyRegistered, def.Name, model)
		}
	}
	if _, ok := r.reports[model]; !ok && model != "" {
		r.models = append(r.models, model)
	}
	r.reports[model] = append(r.reports[model], def.clone())
	return nil
}

// Seal rejects further registrations.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup finds a report on model by name or action name. Returned
// definitions are shared and must not be modified.
func (r *Registry) Lookup(model, name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, def := range r.reports[model] {
		if def.Name == name || def.ActionName() == name {
			return def, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on %q", ErrNotRegistered, name, model)
}

// Resolve looks on model first, then among global reports.
func (r *Registry) Resolve(model, name string) (*Definition, error) {
	if def, err := r.Lookup(model, name); err == nil {
		return def, nil
	}
	if def, err := r.Lookup("", name); err == nil {
		return def, nil
	}
	return nil, fmt.Errorf("%w: %q on %q", ErrNotRegistered, name, model)
}

// For lists the reports of model in registration order.
func (r *Registry) For(model string) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Definition(nil), r.reports[model]...)
}

func (r *Registry) Globals() []*Definition {
	return r.For("")
}

// Models lists modules with at least one report, in registration order.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.models...)
}

// Snapshot copies the registry contents.
func (r *Registry) Snapshot() map[string][]*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]*Definition, len(r.reports))
	for model, defs := range r.reports {
		copies := make([]*Definition, len(defs))
		for i, def := range defs {
			copies[i] = def.clone()
		}
		out[model] = copies
	}
	return out
}

// Views describes every registered report, globals first.
func (r *Registry) Views() []DefinitionView {
	var views []DefinitionView
	for _, model := range append([]string{""}, r.Models()...) {
		for _, def := range r.For(model) {
			view := DefinitionView{
				Model:       model,
				Name:        def.Name,
				Action:      def.ActionName(),
				Description: def.Description,
				MaxRecords:  def.MaxRecords,
				Format:      def.Renderer.Extension(),
				Async:       def.Async,
			}
			if len(def.Fields) > 0 {
				view.Columns = append([]string(nil), def.Fields...)
			} else {
				for _, l := range def.Lookups {
					view.Columns = append(view.Columns, l.Column)
				}
			}
			views = append(views, view)
		}
	}
	return views
}

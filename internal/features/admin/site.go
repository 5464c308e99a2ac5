package admin

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrAlreadyRegistered    = errors.New("model admin already registered")
	ErrNotRegistered        = errors.New("model admin not registered")
	ErrUnsupportedContainer = errors.New("unsupported action container")
)

// ModelAdmin is the admin configuration of one module.
type ModelAdmin struct {
	Module  string
	Label   string
	Actions ActionContainer
}

// App is an application package taking part in admin discovery.
type App interface {
	Label() string
}

// Provider is implemented by apps that register model admins.
type Provider interface {
	App
	RegisterAdmin(site *Site) error
}

// Site is the admin registry: model admins by module plus site-wide actions.
type Site struct {
	mu       sync.RWMutex
	registry map[string]*ModelAdmin
	order    []string
	global   []Action
	logger   *zap.Logger
}

func NewSite(logger *zap.Logger) *Site {
	return &Site{
		registry: make(map[string]*ModelAdmin),
		logger:   logger,
	}
}

func (s *Site) Register(ma *ModelAdmin) error {
	if ma == nil || ma.Module == "" {
		return fmt.Errorf("model admin requires a module")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registry[ma.Module]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, ma.Module)
	}
	s.registry[ma.Module] = ma
	s.order = append(s.order, ma.Module)
	return nil
}

// Autodiscover lets every Provider app register its model admins.
func (s *Site) Autodiscover(apps []App) error {
	for _, app := range apps {
		p, ok := app.(Provider)
		if !ok {
			s.logger.Debug("App has no model admins", zap.String("app", app.Label()))
			continue
		}
		if err := p.RegisterAdmin(s); err != nil {
			return fmt.Errorf("admin discovery for %s: %w", app.Label(), err)
		}
	}
	return nil
}

func (s *Site) IsRegistered(module string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[module]
	return ok
}

// Modules lists registered modules in registration order.
func (s *Site) Modules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// AddModelAction attaches a to the module's container. It reports false
// when an action with the same name is already present.
func (s *Site) AddModelAction(module string, a Action) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ma, ok := s.registry[module]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotRegistered, module)
	}

	switch c := ma.Actions.(type) {
	case nil:
		ma.Actions = NewActionList(a)
	case *ActionList:
		if hasAction(c.items, a.Name()) {
			return false, nil
		}
		c.Append(a)
	case FixedActions:
		if hasAction(c, a.Name()) {
			return false, nil
		}
		ma.Actions = c.With(a)
	default:
		return false, fmt.Errorf("%w %T on %s", ErrUnsupportedContainer, ma.Actions, module)
	}
	return true, nil
}

// AddAction registers a site-wide action available on every module.
func (s *Site) AddAction(a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hasAction(s.global, a.Name()) {
		return false
	}
	s.global = append(s.global, a)
	return true
}

func (s *Site) GlobalActions() []Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Action(nil), s.global...)
}

// ActionsFor returns the module's own actions followed by global ones.
func (s *Site) ActionsFor(module string) ([]Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ma, ok := s.registry[module]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, module)
	}

	var actions []Action
	if ma.Actions != nil {
		actions = ma.Actions.Actions()
	}
	for _, a := range s.global {
		if !hasAction(actions, a.Name()) {
			actions = append(actions, a)
		}
	}
	return actions, nil
}

func (s *Site) Action(module, name string) (Action, error) {
	actions, err := s.ActionsFor(module)
	if err != nil {
		return nil, err
	}
	for _, a := range actions {
		if a.Name() == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("action %q not available on %s", name, module)
}

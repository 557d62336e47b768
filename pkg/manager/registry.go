package manager

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// DefaultName is the identifier used when callers ask for an empty id.
const DefaultName = "default"

// ErrManagerNotFound reports an id the registry cannot resolve.
var ErrManagerNotFound = errors.New("manager: entity manager not found")

// Registry resolves entity managers by identifier.
type Registry interface {
	Manager(id string) (*gorm.DB, error)
}

// RegistryFunc adapts a plain function to the Registry interface.
type RegistryFunc func(id string) (*gorm.DB, error)

// Manager executes the wrapped function.
func (fn RegistryFunc) Manager(id string) (*gorm.DB, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrManagerNotFound, id)
	}
	return fn(id)
}

// StaticRegistry holds a fixed set of named managers. It is safe for
// concurrent use.
type StaticRegistry struct {
	mu          sync.RWMutex
	managers    map[string]*gorm.DB
	defaultName string
}

var _ Registry = (*StaticRegistry)(nil)

// RegistryOption configures a StaticRegistry.
type RegistryOption func(*StaticRegistry)

// WithDefaultName changes which entry answers lookups for an empty id.
func WithDefaultName(name string) RegistryOption {
	return func(r *StaticRegistry) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			r.defaultName = trimmed
		}
	}
}

// WithManager pre-registers a manager under id.
func WithManager(id string, db *gorm.DB) RegistryOption {
	return func(r *StaticRegistry) {
		_ = r.Register(id, db)
	}
}

// NewRegistry constructs an empty registry plus any options.
func NewRegistry(opts ...RegistryOption) *StaticRegistry {
	reg := &StaticRegistry{
		managers:    make(map[string]*gorm.DB),
		defaultName: DefaultName,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(reg)
		}
	}
	return reg
}

// Register associates db with id. An empty id registers the default entry.
func (r *StaticRegistry) Register(id string, db *gorm.DB) error {
	if r == nil {
		return errors.New("manager: registry is nil")
	}
	if db == nil {
		return fmt.Errorf("manager: %q: database handle is nil", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.managers[r.key(id)] = db
	return nil
}

// Manager returns the manager registered under id.
func (r *StaticRegistry) Manager(id string) (*gorm.DB, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrManagerNotFound, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := r.key(id)
	db, ok := r.managers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrManagerNotFound, key)
	}
	return db, nil
}

// Names lists the registered identifiers in sorted order.
func (r *StaticRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.managers))
	for name := range r.managers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every registered connection pool, returning the joined errors.
func (r *StaticRegistry) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for name, db := range r.managers {
		if err := Close(db); err != nil {
			errs = append(errs, fmt.Errorf("manager: close %q: %w", name, err))
		}
	}
	r.managers = make(map[string]*gorm.DB)
	return errors.Join(errs...)
}

func (r *StaticRegistry) key(id string) string {
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		return trimmed
	}
	return r.defaultName
}

package lookup

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/field"
)

var (
	// ErrRouteConflict is returned when a route name is already served by a
	// different source.
	ErrRouteConflict = errors.New("lookup: route name already registered")
	// ErrNotSearchable is returned for remote fields whose choice list cannot
	// answer search queries.
	ErrNotSearchable = errors.New("lookup: field has no searchable choice list")
)

// Component serves every registered source under one mount path, keyed by
// route name.
type Component struct {
	opts Options

	mu      sync.RWMutex
	sources map[string]choicelist.Searcher
	base    string
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{
		opts:    NewOptions(fns...),
		sources: make(map[string]choicelist.Searcher),
	}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Register serves source under routeName. Registering the same source twice
// is a no-op; a different source under a taken name fails.
func (c *Component) Register(routeName string, source choicelist.Searcher) error {
	routeName = strings.TrimSpace(routeName)
	if routeName == "" || strings.Contains(routeName, "/") {
		return fmt.Errorf("lookup: invalid route name %q", routeName)
	}
	if source == nil {
		return fmt.Errorf("lookup: source for %q is nil", routeName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.sources[routeName]; ok {
		if existing == source {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrRouteConflict, routeName)
	}
	c.sources[routeName] = source
	c.opts.Logger.Debug("lookup route registered", zap.String("route", routeName))
	return nil
}

// RegisterField serves the choice list of a remote field under its route name.
// Fields without a route are skipped.
func (c *Component) RegisterField(f *field.Field) error {
	if !f.Remote() {
		return nil
	}
	searcher, ok := f.Attributes.ChoiceList.(choicelist.Searcher)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSearchable, f.Name)
	}
	return c.Register(f.Attributes.RouteName, searcher)
}

// Routes lists the registered route names in sorted order.
func (c *Component) Routes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.sources))
	for name := range c.sources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Component) source(routeName string) choicelist.Searcher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sources[routeName]
}

// Handler dispatches on the single path segment under the mount path. Paths
// with further segments match no route.
func (c *Component) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var source choicelist.Searcher
		route := ""
		if r != nil && r.URL != nil {
			if name, ok := routeFromPath(r.URL.Path, c.prefix()); ok {
				route = name
				source = c.source(name)
			}
		}
		serve(w, r, source, route, c.opts)
	})
}

func (c *Component) prefix() string {
	c.mu.RLock()
	base := c.base
	c.mu.RUnlock()
	return strings.TrimRight(mountPath(base, c.opts.RoutePath), "/")
}

// routeFromPath extracts the route name from urlPath. Requests that reach the
// handler with the prefix already stripped are matched on the remaining path.
func routeFromPath(urlPath, prefix string) (string, bool) {
	rest := strings.TrimPrefix(urlPath, "/")
	if prefix != "" && strings.HasPrefix(urlPath, prefix+"/") {
		rest = strings.TrimPrefix(urlPath, prefix+"/")
	}
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// RegisterRoutes mounts the component under basePath on mux and remembers
// basePath for URLFor.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	pattern, err := registerPrefix(mux, mountPath(basePath, c.opts.RoutePath), c.Handler())
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.base = basePath
	c.mu.Unlock()
	return pattern, nil
}

// URLFor returns the lookup URL of routeName. It matches html.URLResolver.
func (c *Component) URLFor(routeName string) string {
	return joinRoute(c.prefix(), routeName)
}

package autocompleter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-autocompleter/components/lookup"
	"github.com/goliatone/go-autocompleter/pkg/field"
	"github.com/goliatone/go-autocompleter/pkg/fieldconfig"
	"github.com/goliatone/go-autocompleter/pkg/manager"
	"github.com/goliatone/go-autocompleter/pkg/openapi"
	"github.com/goliatone/go-autocompleter/pkg/renderers/html"
)

// ErrUnknownField is returned when a runtime has no field with the given name.
var ErrUnknownField = errors.New("autocompleter: unknown field")

// RuntimeOption configures a Runtime.
type RuntimeOption func(*runtimeConfig)

type runtimeConfig struct {
	logger       *zap.Logger
	registry     manager.Registry
	theme        *theme.RendererConfig
	templatesDir string
	lookupOpts   []lookup.OptionFn
}

// WithLogger attaches a logger to the runtime and everything it builds.
func WithLogger(logger *zap.Logger) RuntimeOption {
	return func(cfg *runtimeConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithRegistry supplies entity managers instead of opening the configured
// ones. The runtime does not close a supplied registry.
func WithRegistry(registry manager.Registry) RuntimeOption {
	return func(cfg *runtimeConfig) {
		cfg.registry = registry
	}
}

// WithTheme is forwarded to the HTML renderer.
func WithTheme(t *theme.RendererConfig) RuntimeOption {
	return func(cfg *runtimeConfig) {
		cfg.theme = t
	}
}

// WithTemplatesDir overlays HTML templates from a directory.
func WithTemplatesDir(dir string) RuntimeOption {
	return func(cfg *runtimeConfig) {
		cfg.templatesDir = dir
	}
}

// WithLookupOptions configures the lookup endpoints.
func WithLookupOptions(fns ...lookup.OptionFn) RuntimeOption {
	return func(cfg *runtimeConfig) {
		cfg.lookupOpts = append(cfg.lookupOpts, fns...)
	}
}

// Runtime holds a set of built fields together with the lookup endpoints and
// renderer that serve them.
type Runtime struct {
	logger   *zap.Logger
	owned    *manager.StaticRegistry
	lookup   *lookup.Component
	renderer *html.Renderer
	fields   map[string]*field.Field
}

// LoadRuntime reads every field file under dir and builds the runtime.
func LoadRuntime(ctx context.Context, dir string, options ...RuntimeOption) (*Runtime, error) {
	store, err := fieldconfig.LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	return NewRuntime(ctx, store, options...)
}

// NewRuntime opens the managers declared in store, unless WithRegistry is
// given, and builds every field.
func NewRuntime(ctx context.Context, store *fieldconfig.Store, options ...RuntimeOption) (*Runtime, error) {
	if store == nil {
		return nil, errors.New("autocompleter: field store is nil")
	}
	cfg := newRuntimeConfig(options)

	var owned *manager.StaticRegistry
	if cfg.registry == nil {
		reg, err := manager.OpenRegistry(ctx, store.Managers())
		if err != nil {
			return nil, fmt.Errorf("autocompleter: open managers: %w", err)
		}
		owned = reg
		cfg.registry = reg
	}

	defs := make([]Options, 0, len(store.Names()))
	for _, name := range store.Names() {
		def, _ := store.Field(name)
		defs = append(defs, def.Options)
	}

	rt, err := newRuntime(ctx, cfg, defs)
	if err != nil {
		if owned != nil {
			_ = owned.Close()
		}
		return nil, err
	}
	rt.owned = owned
	return rt, nil
}

// RuntimeFromOpenAPI builds the fields an OpenAPI document declares for
// operationID. An empty operationID takes every operation; field names must
// then be unique across operations. Entity fields need WithRegistry.
func RuntimeFromOpenAPI(ctx context.Context, doc openapi.Document, operationID string, options ...RuntimeOption) (*Runtime, error) {
	cfg := newRuntimeConfig(options)
	extracted, err := openapi.Extract(ctx, doc, openapi.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}
	defs := make([]Options, 0, len(extracted))
	for _, f := range extracted {
		if operationID != "" && f.Operation != operationID {
			continue
		}
		defs = append(defs, f.Options)
	}
	if len(defs) == 0 && operationID != "" {
		return nil, fmt.Errorf("autocompleter: operation %q declares no fields", operationID)
	}
	return newRuntime(ctx, cfg, defs)
}

func newRuntimeConfig(options []RuntimeOption) runtimeConfig {
	cfg := runtimeConfig{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func newRuntime(ctx context.Context, cfg runtimeConfig, defs []Options) (*Runtime, error) {
	fieldOpts := []field.Option{field.WithLogger(cfg.logger)}
	if cfg.registry != nil {
		fieldOpts = append(fieldOpts, field.WithRegistry(cfg.registry))
	}
	configurator := field.New(fieldOpts...)

	lookupOpts := append([]lookup.OptionFn{lookup.WithLogger(cfg.logger)}, cfg.lookupOpts...)
	component := lookup.New(lookupOpts...)

	renderer, err := html.New(
		html.WithLogger(cfg.logger),
		html.WithTheme(cfg.theme),
		html.WithTemplatesDir(cfg.templatesDir),
		html.WithURLResolver(component.URLFor),
	)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		logger:   cfg.logger,
		lookup:   component,
		renderer: renderer,
		fields:   make(map[string]*field.Field, len(defs)),
	}
	for _, def := range defs {
		if _, dup := rt.fields[def.Name]; dup {
			return nil, fmt.Errorf("autocompleter: duplicate field %q", def.Name)
		}
		f, err := configurator.Build(ctx, def)
		if err != nil {
			return nil, fmt.Errorf("autocompleter: build %q: %w", def.Name, err)
		}
		if err := component.RegisterField(f); err != nil {
			return nil, fmt.Errorf("autocompleter: serve %q: %w", def.Name, err)
		}
		rt.fields[def.Name] = f
	}
	rt.logger.Info("autocompleter runtime ready",
		zap.Int("fields", len(rt.fields)),
		zap.Strings("routes", component.Routes()),
	)
	return rt, nil
}

// Names lists the built fields in sorted order.
func (r *Runtime) Names() []string {
	out := make([]string, 0, len(r.fields))
	for name := range r.fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Field returns the built field called name.
func (r *Runtime) Field(name string) (*Field, error) {
	f, ok := r.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return f, nil
}

// Render writes the HTML markup of name for submitted data.
func (r *Runtime) Render(ctx context.Context, name string, submitted any) ([]byte, error) {
	f, err := r.Field(name)
	if err != nil {
		return nil, err
	}
	return r.renderer.Render(ctx, f, submitted)
}

// Submit maps a client payload for name to its structured value.
func (r *Runtime) Submit(ctx context.Context, name string, submitted any) (any, error) {
	f, err := r.Field(name)
	if err != nil {
		return nil, err
	}
	return f.Submit(ctx, submitted)
}

// Lookup returns the component serving the remote fields.
func (r *Runtime) Lookup() *lookup.Component {
	return r.lookup
}

// RegisterRoutes mounts the lookup endpoints under basePath.
func (r *Runtime) RegisterRoutes(mux lookup.Mux, basePath string) (string, error) {
	return r.lookup.RegisterRoutes(mux, basePath)
}

// AssetsFS exposes the browser runtime script.
func (r *Runtime) AssetsFS() fs.FS {
	return html.AssetsFS()
}

// Close releases managers opened by the runtime.
func (r *Runtime) Close() error {
	if r == nil || r.owned == nil {
		return nil
	}
	return r.owned.Close()
}

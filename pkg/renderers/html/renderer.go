package html

import (
	"context"
	"errors"
	"fmt"
	stdhtml "html"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/field"
	"github.com/goliatone/go-autocompleter/pkg/render"
)

// URLResolver maps a route name to the lookup endpoint URL.
type URLResolver func(routeName string) string

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer render.TemplateRenderer
	theme            *theme.RendererConfig
	urls             URLResolver
	logger           *zap.Logger
}

// WithTemplatesFS overlays templates on the embedded bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir overlays templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer.
func WithTemplateRenderer(renderer render.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme applies theme tokens, CSS variables, partial overrides and asset
// URLs.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithURLResolver sets how route names become lookup URLs.
func WithURLResolver(resolver URLResolver) Option {
	return func(cfg *config) {
		cfg.urls = resolver
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Renderer writes the markup for a built autocompleter field.
type Renderer struct {
	templates render.TemplateRenderer
	theme     *theme.RendererConfig
	urls      URLResolver
	logger    *zap.Logger
}

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		opts := []render.Option{render.WithFS(TemplatesFS()), render.WithExtension(".tmpl")}
		if cfg.templateFS != nil {
			opts = append(opts, render.WithFS(cfg.templateFS))
		}
		engine, err := render.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates: renderer,
		theme:     cfg.theme,
		urls:      cfg.urls,
		logger:    cfg.logger,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes f with the display text derived from submitted. Static choices
// are listed inline; remote fields point the widget at their lookup URL.
func (r *Renderer) Render(ctx context.Context, f *field.Field, submitted any) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}
	if f == nil {
		return nil, errors.New("html renderer: field is nil")
	}

	view := f.View(ctx, submitted)
	wire, err := wireValue(ctx, f, submitted)
	if err != nil {
		return nil, fmt.Errorf("html renderer: encode %q: %w", f.Name, err)
	}

	var choices []map[string]any
	if !f.Remote() {
		loaded, err := f.Choices(ctx)
		if err != nil {
			return nil, fmt.Errorf("html renderer: load choices for %q: %w", f.Name, err)
		}
		choices = choiceData(loaded)
	}

	lookupURL := ""
	if f.Remote() && r.urls != nil {
		lookupURL = r.urls(f.Attributes.RouteName)
	}

	data := map[string]any{
		"field":      fieldData(f),
		"view":       view.Map(),
		"wire_value": wire,
		"choices":    choices,
		"lookup_url": lookupURL,
		"theme":      themeData(r.theme),
		"script_url": r.assetURL(RuntimeScriptName),
	}

	out, err := r.templates.RenderTemplate(r.templatePath(), data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	r.logger.Debug("field rendered",
		zap.String("field", f.Name),
		zap.Int("choices", len(choices)),
		zap.Bool("remote", f.Remote()),
	)
	return []byte(out), nil
}

func (r *Renderer) templatePath() string {
	if r.theme != nil {
		if path := strings.TrimSpace(r.theme.Partials[TemplateName]); path != "" {
			return path
		}
	}
	return defaultTemplatePath
}

func (r *Renderer) assetURL(name string) string {
	if r.theme == nil || r.theme.AssetURL == nil {
		return ""
	}
	return r.theme.AssetURL(name)
}

func wireValue(ctx context.Context, f *field.Field, submitted any) (string, error) {
	if raw, ok := submitted.(string); ok {
		return raw, nil
	}
	if f.Attributes.Multiple {
		encoded, err := f.Encode(ctx, submitted)
		if err != nil {
			return "", err
		}
		text, _ := choicelist.Scalar(encoded)
		return text, nil
	}
	text, _ := choicelist.Scalar(submitted)
	return text, nil
}

var attrNamePattern = regexp.MustCompile(`^[A-Za-z_:][A-Za-z0-9_:.-]*$`)

func fieldData(f *field.Field) map[string]any {
	opts := f.Options
	id := strings.NewReplacer(".", "_", "[", "_", "]", "").Replace(f.Name)

	keys := make([]string, 0, len(opts.Attr))
	for key := range opts.Attr {
		if attrNamePattern.MatchString(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	attrs := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, map[string]any{"name": key, "value": opts.Attr[key]})
	}

	return map[string]any{
		"name":         f.Name,
		"id":           field.BlockPrefix + "_" + id,
		"label":        plainText(opts.Label),
		"placeholder":  plainText(opts.Placeholder),
		"required":     opts.Required,
		"multiple":     f.Attributes.Multiple,
		"widget":       string(f.Attributes.Widget),
		"block_prefix": field.BlockPrefix,
		"attrs":        attrs,
	}
}

func choiceData(choices choicelist.Choices) []map[string]any {
	if choices.Empty() {
		return nil
	}
	out := make([]map[string]any, 0, len(choices))
	for _, choice := range choices {
		out = append(out, map[string]any{
			"value": choice.Value,
			"label": plainText(choice.Label),
			"group": plainText(choice.Group),
		})
	}
	return out
}

func themeData(cfg *theme.RendererConfig) map[string]any {
	out := map[string]any{
		"name":           "",
		"variant":        "",
		"tokens":         map[string]any{},
		"css_vars_style": "",
	}
	if cfg == nil {
		return out
	}
	tokens := make(map[string]any, len(cfg.Tokens))
	for key, value := range cfg.Tokens {
		tokens[key] = value
	}
	out["name"] = cfg.Theme
	out["variant"] = cfg.Variant
	out["tokens"] = tokens
	out["css_vars_style"] = cssVarsStyle(cfg.CSSVars)
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		if strings.HasPrefix(key, "--") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";")
	}
	return b.String()
}

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// plainText strips markup from labels. The template escapes the result.
func plainText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(stdhtml.UnescapeString(labelPolicy.Sanitize(trimmed)))
}

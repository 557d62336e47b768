package field

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/manager"
	"github.com/goliatone/go-autocompleter/pkg/transformer"
)

// BlockPrefix names the field type for templates and CSS hooks.
const BlockPrefix = "autocompleter"

// Option configures a Configurator.
type Option func(*Configurator)

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Configurator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegistry sets the entity manager registry used in entity mode.
func WithRegistry(registry manager.Registry) Option {
	return func(c *Configurator) {
		c.registry = registry
	}
}

// Configurator resolves autocompleter options, builds choice sources and
// transformers, and renders view data. It holds no per-field state and is
// safe to share.
type Configurator struct {
	registry manager.Registry
	logger   *zap.Logger
}

// New constructs a Configurator. The registry is only consulted for entity
// fields with a route.
func New(options ...Option) *Configurator {
	c := &Configurator{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Name returns the block prefix of the field type.
func (c *Configurator) Name() string {
	return BlockPrefix
}

// ResolveOptions layers the widget-mode defaults under caller and, for entity
// fields with a route, builds the remote choice list.
func (c *Configurator) ResolveOptions(ctx context.Context, caller Options) (Resolved, error) {
	if err := ctx.Err(); err != nil {
		return Resolved{}, err
	}

	widget, err := ParseWidget(string(caller.Widget))
	if err != nil {
		return Resolved{}, &ConfigurationError{Option: "widget", Err: err}
	}
	if widget == WidgetChoice && hasEntityOptions(caller) {
		c.logger.Debug("entity options ignored for choice widget", zap.String("field", caller.Name))
	}

	resolved := layer(defaults(widget), caller)

	switch mode := resolved.Mode.(type) {
	case EntityMode:
		if resolved.RouteName == "" {
			return resolved, nil
		}
		list, err := c.remoteChoiceList(mode, resolved.Choices)
		if err != nil {
			return Resolved{}, err
		}
		resolved.ChoiceList = list
	case ChoiceMode:
	}
	return resolved, nil
}

func (c *Configurator) remoteChoiceList(mode EntityMode, choices choicelist.Choices) (*choicelist.AjaxChoiceList, error) {
	if c.registry == nil {
		return nil, &ConfigurationError{Option: "entity_manager_id", Err: ErrNoRegistry}
	}
	db, err := c.registry.Manager(mode.EntityManagerID)
	if err != nil {
		c.logger.Debug("entity manager lookup failed",
			zap.String("entity_manager_id", mode.EntityManagerID),
			zap.Error(err),
		)
		return nil, &ConfigurationError{Option: "entity_manager_id", Err: err}
	}

	list, err := choicelist.NewAjaxChoiceList(
		db,
		mode.EntityClass,
		mode.Property,
		mode.QueryBuilder,
		choices,
		mode.GroupBy,
		choicelist.WithIdentifier(mode.Identifier),
		choicelist.WithLogger(c.logger),
	)
	if err != nil {
		return nil, &ConfigurationError{Option: "entity_class", Err: err}
	}
	return list, nil
}

// BuildStaticChoiceSource returns a static list for fields without a route.
// Explicit choices take precedence over the choice_list option. It returns nil
// when the field has a route or no source is available.
func (c *Configurator) BuildStaticChoiceSource(ctx context.Context, resolved Resolved) (choicelist.ChoiceList, error) {
	if resolved.RouteName != "" {
		return nil, nil
	}

	var source choicelist.Choices
	switch {
	case !resolved.Choices.Empty():
		source = resolved.Choices
	case resolved.ChoiceList != nil:
		loaded, err := resolved.ChoiceList.Choices(ctx)
		if err != nil {
			return nil, err
		}
		source = loaded
	}
	if source.Empty() {
		return nil, nil
	}

	records := make(choicelist.Choices, 0, len(source))
	for _, choice := range source {
		records = append(records, choicelist.Choice{
			Label: choice.Label,
			Value: choice.Value,
			Group: choice.Group,
		})
	}
	return choicelist.NewArrayChoiceList(records), nil
}

// SelectTransformer returns the wire transformer for multi-select fields, or
// nil for single-select fields and unsupported widgets.
func (c *Configurator) SelectTransformer(resolved Resolved) transformer.Transformer {
	if !resolved.Multiple {
		return nil
	}
	switch resolved.Widget {
	case WidgetEntity:
		return transformer.NewEntityIDToJSON(resolved.ChoiceList)
	case WidgetChoice:
		return transformer.NewChoiceToJSON()
	default:
		c.logger.Debug("no transformer for widget", zap.String("widget", string(resolved.Widget)))
		return nil
	}
}

// ParentType returns the widget verbatim. Callers validate it names a
// supported base type.
func (c *Configurator) ParentType(resolved Resolved) string {
	return string(resolved.Widget)
}

// Build runs the full field construction: option resolution, the static
// choice source, transformer selection and attribute recording.
func (c *Configurator) Build(ctx context.Context, caller Options) (*Field, error) {
	resolved, err := c.ResolveOptions(ctx, caller)
	if err != nil {
		return nil, err
	}

	static, err := c.BuildStaticChoiceSource(ctx, resolved)
	if err != nil {
		return nil, &ConfigurationError{Option: "choice_list", Err: err}
	}

	attrs := Attributes{
		Widget:     resolved.Widget,
		RouteName:  resolved.RouteName,
		Multiple:   resolved.Multiple,
		ChoiceList: resolved.ChoiceList,
	}
	if static != nil {
		attrs.ChoiceList = static
	}

	transformSource := resolved
	if transformSource.ChoiceList == nil {
		transformSource.ChoiceList = static
	}

	f := &Field{
		Name:         resolved.Name,
		Options:      resolved,
		Attributes:   attrs,
		Parent:       c.ParentType(resolved),
		Transformer:  c.SelectTransformer(transformSource),
		configurator: c,
	}

	c.logger.Debug("field built",
		zap.String("field", f.Name),
		zap.String("widget", string(resolved.Widget)),
		zap.String("route_name", resolved.RouteName),
		zap.Bool("multiple", resolved.Multiple),
		zap.Bool("transformer", f.Transformer != nil),
	)
	return f, nil
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

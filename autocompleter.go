package autocompleter

import (
	"context"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/field"
	"github.com/goliatone/go-autocompleter/pkg/manager"
	"github.com/goliatone/go-autocompleter/pkg/transformer"
)

// Options is the caller-facing field configuration.
type Options = field.Options

// Field is a built autocompleter field.
type Field = field.Field

// ViewModel carries the display text rendered for submitted data.
type ViewModel = field.ViewModel

// Choice and Choices alias the ordered value/label types.
type (
	Choice  = choicelist.Choice
	Choices = choicelist.Choices
)

// Selection is one entry of a multi-select payload.
type Selection = transformer.Selection

// Widget names the base field type.
type Widget = field.Widget

const (
	WidgetChoice = field.WidgetChoice
	WidgetEntity = field.WidgetEntity
)

// NewConfigurator exposes the field configurator from the top-level module.
func NewConfigurator(options ...field.Option) *field.Configurator {
	return field.New(options...)
}

// Build resolves opts and returns the configured field. registry may be nil
// when no entity fields with a route are built.
func Build(ctx context.Context, registry manager.Registry, opts Options) (*Field, error) {
	var fieldOpts []field.Option
	if registry != nil {
		fieldOpts = append(fieldOpts, field.WithRegistry(registry))
	}
	return field.New(fieldOpts...).Build(ctx, opts)
}

// Pairs builds Choices from alternating value/label arguments.
func Pairs(pairs ...string) Choices {
	return choicelist.Pairs(pairs...)
}

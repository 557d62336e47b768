package field

import (
	"context"
	"fmt"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/transformer"
)

// Field is a built autocompleter field: resolved options, recorded
// attributes, and the transformer attached for multi-select payloads.
type Field struct {
	Name        string
	Options     Resolved
	Attributes  Attributes
	Parent      string
	Transformer transformer.Transformer

	configurator *Configurator
}

// Submit maps a client payload to the structured value. Multi-select fields
// require a JSON string and fail with DataTransformError on malformed input;
// single-select payloads pass through unchanged.
func (f *Field) Submit(ctx context.Context, submitted any) (any, error) {
	if f == nil || f.Transformer == nil {
		return submitted, nil
	}
	var wire string
	switch v := submitted.(type) {
	case nil:
	case string:
		wire = v
	case []byte:
		wire = string(v)
	default:
		return nil, &DataTransformError{
			Transformer: f.Parent,
			Err:         fmt.Errorf("%w: submitted %T", transformer.ErrUnexpectedType, submitted),
		}
	}
	return f.Transformer.ReverseTransform(ctx, wire)
}

// Encode maps a structured value to what the client widget receives.
func (f *Field) Encode(ctx context.Context, value any) (any, error) {
	if f == nil || f.Transformer == nil {
		return value, nil
	}
	return f.Transformer.Transform(ctx, value)
}

// View renders the view model for submitted (client) data.
func (f *Field) View(ctx context.Context, submitted any) ViewModel {
	if f == nil {
		return ViewModel{}
	}
	c := f.configurator
	if c == nil {
		c = New()
	}
	return c.RenderViewModel(ctx, f.Attributes, submitted)
}

// Choices returns the entries of the recorded choice list, if any.
func (f *Field) Choices(ctx context.Context) (choicelist.Choices, error) {
	if f == nil || f.Attributes.ChoiceList == nil {
		return nil, nil
	}
	return f.Attributes.ChoiceList.Choices(ctx)
}

// Remote reports whether choices are served by a lookup route.
func (f *Field) Remote() bool {
	return f != nil && f.Attributes.RouteName != ""
}

package transformer

import (
	"context"
	"fmt"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
)

// EntityIDToJSON converts entity identifiers into the {value,label} payload
// the widget expects, resolving labels through a choice list, and maps
// submitted payloads back to identifiers.
type EntityIDToJSON struct {
	choices choicelist.ChoiceList
}

var _ Transformer = (*EntityIDToJSON)(nil)

// NewEntityIDToJSON binds the transformer to the field's choice list.
func NewEntityIDToJSON(choices choicelist.ChoiceList) *EntityIDToJSON {
	return &EntityIDToJSON{choices: choices}
}

// Transform accepts []string or []any identifiers. Every identifier must
// exist in the choice list.
func (t *EntityIDToJSON) Transform(ctx context.Context, value any) (string, error) {
	ids, err := identifiers(value)
	if err != nil {
		return "", &DataTransformError{Transformer: "entity_id_to_json", Err: err}
	}
	if len(ids) == 0 {
		return "", nil
	}

	resolved, err := t.resolve(ctx, ids)
	if err != nil {
		return "", &DataTransformError{Transformer: "entity_id_to_json", Err: err}
	}

	selections := make([]Selection, 0, len(resolved))
	for _, choice := range resolved {
		selections = append(selections, Selection{Value: choice.Value, Label: choice.Label})
	}
	wire, err := EncodeSelections(selections)
	if err != nil {
		return "", &DataTransformError{Transformer: "entity_id_to_json", Err: err}
	}
	return wire, nil
}

// ReverseTransform decodes the payload and returns the identifiers as
// []string, in submitted order. Unknown identifiers fail the transform.
func (t *EntityIDToJSON) ReverseTransform(ctx context.Context, wire string) (any, error) {
	if wire == "" {
		return nil, nil
	}
	selections, err := DecodeSelections(wire)
	if err != nil {
		return nil, &DataTransformError{Transformer: "entity_id_to_json", Input: wire, Err: err}
	}
	if len(selections) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(selections))
	for _, selection := range selections {
		ids = append(ids, selection.Value)
	}
	if _, err := t.resolve(ctx, ids); err != nil {
		return nil, &DataTransformError{Transformer: "entity_id_to_json", Input: wire, Err: err}
	}
	return ids, nil
}

func (t *EntityIDToJSON) resolve(ctx context.Context, ids []string) (choicelist.Choices, error) {
	if t == nil || t.choices == nil {
		return nil, ErrNoChoiceList
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		available choicelist.Choices
		err       error
	)
	if intersecter, ok := t.choices.(choicelist.Intersecter); ok {
		available, err = intersecter.Intersect(ctx, ids)
	} else {
		available, err = t.choices.Choices(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make(choicelist.Choices, 0, len(ids))
	for _, id := range ids {
		choice, ok := available.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChoice, id)
		}
		out = append(out, choice)
	}
	return out, nil
}

func identifiers(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			text, ok := choicelist.Scalar(item)
			if !ok {
				return nil, fmt.Errorf("%w: identifier %T", ErrUnexpectedType, item)
			}
			out = append(out, text)
		}
		return out, nil
	case []Selection:
		out := make([]string, 0, len(v))
		for _, selection := range v {
			out = append(out, selection.Value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedType, value)
	}
}

package transformer

import (
	"context"
	"fmt"
)

// ChoiceToJSON converts a []Selection into the JSON array the multi-select
// widget submits, and back. An empty selection and nil are the same value:
// both travel as "" and come back as nil.
type ChoiceToJSON struct{}

var _ Transformer = ChoiceToJSON{}

// NewChoiceToJSON returns the static-choice transformer.
func NewChoiceToJSON() ChoiceToJSON {
	return ChoiceToJSON{}
}

// Transform encodes selections. nil and empty selections encode to "".
func (ChoiceToJSON) Transform(ctx context.Context, value any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var selections []Selection
	switch v := value.(type) {
	case nil:
		return "", nil
	case []Selection:
		selections = v
	case Selection:
		selections = []Selection{v}
	default:
		return "", &DataTransformError{
			Transformer: "choice_to_json",
			Err:         fmt.Errorf("%w: %T", ErrUnexpectedType, value),
		}
	}
	if len(selections) == 0 {
		return "", nil
	}
	wire, err := EncodeSelections(selections)
	if err != nil {
		return "", &DataTransformError{Transformer: "choice_to_json", Err: err}
	}
	return wire, nil
}

// ReverseTransform decodes the submitted payload into []Selection. An empty
// payload yields nil; malformed JSON fails with DataTransformError.
func (ChoiceToJSON) ReverseTransform(ctx context.Context, wire string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if wire == "" {
		return nil, nil
	}
	selections, err := DecodeSelections(wire)
	if err != nil {
		return nil, &DataTransformError{Transformer: "choice_to_json", Input: wire, Err: err}
	}
	if len(selections) == 0 {
		return nil, nil
	}
	return selections, nil
}

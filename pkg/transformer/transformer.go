package transformer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
)

var (
	// ErrUnexpectedType reports a structured value the transformer cannot encode.
	ErrUnexpectedType = errors.New("transformer: unexpected value type")
	// ErrUnknownChoice reports a value missing from the backing choice list.
	ErrUnknownChoice = errors.New("transformer: unknown choice")
	// ErrNoChoiceList reports an entity transformer built without a source.
	ErrNoChoiceList = errors.New("transformer: choice list is nil")
)

// Transformer converts between the structured selection used by the field and
// the string submitted by the client widget.
type Transformer interface {
	// Transform encodes a structured value for the client.
	Transform(ctx context.Context, value any) (string, error)
	// ReverseTransform decodes a submitted payload.
	ReverseTransform(ctx context.Context, wire string) (any, error)
}

// DataTransformError wraps every failure raised while converting values. It is
// surfaced to callers, never swallowed.
type DataTransformError struct {
	Transformer string
	Input       string
	Err         error
}

func (e *DataTransformError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("transformer: %s: transformation failed", e.Transformer)
	}
	return fmt.Sprintf("transformer: %s: %v", e.Transformer, e.Err)
}

func (e *DataTransformError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Selection is one selected entry in a multi-select payload.
type Selection struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// UnmarshalJSON accepts numeric and boolean values, storing their text form.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value any `json:"value"`
		Label any `json:"label"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	value, ok := choicelist.Scalar(raw.Value)
	if !ok {
		return fmt.Errorf("selection value must be a scalar, got %T", raw.Value)
	}
	label, ok := choicelist.Scalar(raw.Label)
	if !ok {
		return fmt.Errorf("selection label must be a scalar, got %T", raw.Label)
	}
	s.Value, s.Label = value, label
	return nil
}

// DecodeSelections strictly parses a JSON array of {value,label} objects.
func DecodeSelections(wire string) ([]Selection, error) {
	var out []Selection
	if err := json.Unmarshal([]byte(wire), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeSelections renders selections as the JSON wire payload.
func EncodeSelections(selections []Selection) (string, error) {
	if selections == nil {
		selections = []Selection{}
	}
	payload, err := json.Marshal(selections)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

package field

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-autocompleter/pkg/transformer"
)

var (
	// ErrUnsupportedWidget reports a widget other than choice or entity.
	ErrUnsupportedWidget = errors.New("field: unsupported widget")
	// ErrNoRegistry reports entity resolution without a manager registry.
	ErrNoRegistry = errors.New("field: manager registry is nil")
)

// ConfigurationError is fatal for the field being built. Option names the
// offending key.
type ConfigurationError struct {
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Option == "" {
		return fmt.Sprintf("field: configuration: %v", e.Err)
	}
	return fmt.Sprintf("field: configuration: option %q: %v", e.Option, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DataTransformError aliases the transformer error so callers of this
// package can match submission failures without importing transformer.
type DataTransformError = transformer.DataTransformError

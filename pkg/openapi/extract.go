package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/field"
	"github.com/goliatone/go-autocompleter/pkg/fieldconfig"
)

// ExtensionKey marks a schema property as an autocompleter field. The value is
// either true or an object using the field definition keys of fieldconfig.
const ExtensionKey = "x-autocompleter"

// Field is an autocompleter definition found in a request body schema.
type Field struct {
	// Operation is the operationId, or "<method>:<path>" when it is unset.
	Operation string
	// Path is the dotted property path inside the request body.
	Path    string
	Options field.Options
}

// Option configures extraction.
type Option func(*extractor)

// WithLogger attaches a logger for skipped properties.
func WithLogger(logger *zap.Logger) Option {
	return func(e *extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

type extractor struct {
	logger *zap.Logger
}

var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Extract returns the autocompleter fields declared in the request bodies of
// doc, ordered by operation and property path. Enum values seed static
// choices when the extension does not list any; array properties select
// multiple values.
func Extract(ctx context.Context, doc Document, opts ...Option) ([]Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	e := &extractor{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	loader := &openapi3.Loader{Context: ctx}
	api, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", doc.Location(), err)
	}
	if api.Paths == nil {
		return nil, nil
	}

	paths := api.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	var out []Field
	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for _, entry := range []struct {
			method string
			op     *openapi3.Operation
		}{
			{"POST", item.Post},
			{"PUT", item.Put},
			{"PATCH", item.Patch},
			{"GET", item.Get},
			{"DELETE", item.Delete},
		} {
			if entry.op == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			opID := entry.op.OperationID
			if opID == "" {
				opID = strings.ToLower(entry.method) + ":" + path
			}
			schema := requestSchema(entry.op.RequestBody)
			if schema == nil {
				continue
			}
			fields, err := e.walk(opID, "", schema, map[*openapi3.Schema]bool{})
			if err != nil {
				return nil, err
			}
			out = append(out, fields...)
		}
	}
	return out, nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func (e *extractor) walk(opID, prefix string, schema *openapi3.Schema, visited map[*openapi3.Schema]bool) ([]Field, error) {
	if schema == nil || visited[schema] {
		return nil, nil
	}
	visited[schema] = true
	defer delete(visited, schema)

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Field
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		ext, marked := prop.Extensions[ExtensionKey]
		if !marked {
			if hasType(prop, openapi3.TypeObject) && len(prop.Properties) > 0 {
				nested, err := e.walk(opID, path, prop, visited)
				if err != nil {
					return nil, err
				}
				out = append(out, nested...)
			}
			continue
		}

		opts, ok, err := fieldOptions(path, ext)
		if err != nil {
			return nil, fmt.Errorf("openapi: operation %q property %q: %w", opID, path, err)
		}
		if !ok {
			e.logger.Debug("autocompleter extension disabled",
				zap.String("operation", opID),
				zap.String("property", path),
			)
			continue
		}
		applySchema(&opts, prop, required[name])
		out = append(out, Field{Operation: opID, Path: path, Options: opts})
	}
	return out, nil
}

func fieldOptions(path string, ext any) (field.Options, bool, error) {
	switch value := ext.(type) {
	case bool:
		if !value {
			return field.Options{}, false, nil
		}
		return field.Options{Name: path, Widget: field.WidgetChoice}, true, nil
	case map[string]any:
		payload, err := json.Marshal(value)
		if err != nil {
			return field.Options{}, false, err
		}
		opts, err := fieldconfig.DecodeField(path, payload)
		if err != nil {
			return field.Options{}, false, err
		}
		return opts, true, nil
	default:
		return field.Options{}, false, fmt.Errorf("%s must be a boolean or object, got %T", ExtensionKey, ext)
	}
}

func applySchema(opts *field.Options, prop *openapi3.Schema, required bool) {
	if opts.Label == "" {
		opts.Label = prop.Title
	}
	if opts.Placeholder == "" && prop.Description != "" {
		opts.Placeholder = prop.Description
	}
	opts.Required = opts.Required || required

	enum := prop.Enum
	if hasType(prop, openapi3.TypeArray) {
		opts.Multiple = true
		if prop.Items != nil && prop.Items.Value != nil {
			enum = prop.Items.Value.Enum
		}
	}
	if opts.Widget == field.WidgetChoice && opts.Choices.Empty() && len(enum) > 0 {
		choices := make(choicelist.Choices, 0, len(enum))
		for _, item := range enum {
			text, ok := choicelist.Scalar(item)
			if !ok {
				continue
			}
			choices = append(choices, choicelist.Choice{Value: text, Label: text})
		}
		opts.Choices = choices
	}
}

func hasType(schema *openapi3.Schema, typ string) bool {
	return schema.Type != nil && schema.Type.Is(typ)
}

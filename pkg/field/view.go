package field

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/transformer"
)

// labelSeparator follows every label in multi-select display text, including
// the last one.
const labelSeparator = ", "

// Attributes are the values recorded on a built field and read back when the
// view is rendered.
type Attributes struct {
	Widget     Widget
	RouteName  string
	Multiple   bool
	ChoiceList choicelist.ChoiceList
}

// ViewModel is the template-facing output of a field render.
type ViewModel struct {
	Value              string `json:"value"`
	AutocompleterValue string `json:"autocompleter_value"`
	RouteName          string `json:"route_name,omitempty"`
}

// Map returns the view as template variables; route_name is nil when unset.
func (v ViewModel) Map() map[string]any {
	out := map[string]any{
		"value":               v.Value,
		"autocompleter_value": v.AutocompleterValue,
		"route_name":          nil,
	}
	if v.RouteName != "" {
		out["route_name"] = v.RouteName
	}
	return out
}

// RenderViewModel derives the display text for submitted data. JSON payloads
// that fail to decode render as an empty value instead of failing, and an
// unresolved value is always the empty string.
func (c *Configurator) RenderViewModel(ctx context.Context, attrs Attributes, submitted any) ViewModel {
	data := c.decodeLenient(submitted, attrs.Multiple)

	var value string
	switch {
	case attrs.Multiple && truthy(data):
		var builder strings.Builder
		for _, label := range selectionLabels(data) {
			builder.WriteString(label)
			builder.WriteString(labelSeparator)
		}
		value = builder.String()
	case attrs.ChoiceList != nil:
		choices, err := attrs.ChoiceList.Choices(ctx)
		if err != nil {
			c.logger.Debug("choice list unavailable during render", zap.Error(err))
			break
		}
		if label, ok := choices.LabelFor(data); ok {
			value = label
		}
	default:
		if text, ok := choicelist.Scalar(data); ok {
			value = text
		}
	}

	return ViewModel{
		Value:              value,
		AutocompleterValue: value,
		RouteName:          attrs.RouteName,
	}
}

// decodeLenient parses JSON payloads. Strings are treated as JSON when the
// field is multiple or the text opens an array or object; anything else is a
// raw scalar. A failed decode yields nil for multiple fields and the raw
// string otherwise.
func (c *Configurator) decodeLenient(submitted any, multiple bool) any {
	raw, ok := submitted.(string)
	if !ok {
		return submitted
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if !multiple && !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
		return raw
	}

	var decoded any
	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil || dec.More() {
		if !multiple {
			return raw
		}
		c.logger.Debug("submitted data is not valid JSON, rendering empty value", zap.Error(err))
		return nil
	}
	return decoded
}

func selectionLabels(data any) []string {
	switch v := data.(type) {
	case []transformer.Selection:
		out := make([]string, 0, len(v))
		for _, selection := range v {
			out = append(out, selection.Label)
		}
		return out
	case transformer.Selection:
		return []string{v.Label}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, labelOf(item))
		}
		return out
	case []map[string]any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, labelOf(item))
		}
		return out
	case map[string]any:
		return []string{labelOf(v)}
	default:
		return nil
	}
}

func labelOf(item any) string {
	entry, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	label, _ := choicelist.Scalar(entry["label"])
	return label
}

// truthy follows form-data conventions: nil, "", "0", false, zero numbers and
// empty collections are empty.
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		return value != "" && value != "0"
	case bool:
		return value
	case json.Number:
		f, err := value.Float64()
		return err != nil || f != 0
	case float64:
		return value != 0
	case int:
		return value != 0
	case []any:
		return len(value) > 0
	case []map[string]any:
		return len(value) > 0
	case map[string]any:
		return len(value) > 0
	case []transformer.Selection:
		return len(value) > 0
	case []string:
		return len(value) > 0
	default:
		return true
	}
}

package choicelist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Choice is a single selectable value/label pair. Group is populated when the
// source groups its entries (entity lists configured with group_by).
type Choice struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
}

// Choices is an ordered value→label mapping. Order is the insertion order of
// the source and is preserved by every helper in this package.
type Choices []Choice

// Pairs builds Choices from alternating value/label arguments. A trailing
// value without a label uses the value as its label.
func Pairs(pairs ...string) Choices {
	if len(pairs) == 0 {
		return nil
	}
	out := make(Choices, 0, (len(pairs)+1)/2)
	for i := 0; i < len(pairs); i += 2 {
		value := pairs[i]
		label := value
		if i+1 < len(pairs) {
			label = pairs[i+1]
		}
		out = append(out, Choice{Value: value, Label: label})
	}
	return out
}

// Empty reports whether the list holds no entries.
func (c Choices) Empty() bool {
	return len(c) == 0
}

// Clone returns an independent copy.
func (c Choices) Clone() Choices {
	if c == nil {
		return nil
	}
	return append(Choices(nil), c...)
}

// Lookup returns the first entry whose value equals value exactly.
func (c Choices) Lookup(value string) (Choice, bool) {
	for _, choice := range c {
		if choice.Value == value {
			return choice, true
		}
	}
	return Choice{}, false
}

// LabelFor scans the list for the first entry loosely equal to data and
// returns its label.
func (c Choices) LabelFor(data any) (string, bool) {
	for _, choice := range c {
		if LooseEqual(choice.Value, data) {
			return choice.Label, true
		}
	}
	return "", false
}

// Values returns the entry values in order.
func (c Choices) Values() []string {
	if len(c) == 0 {
		return nil
	}
	out := make([]string, 0, len(c))
	for _, choice := range c {
		out = append(out, choice.Value)
	}
	return out
}

// Labels returns the entry labels in order.
func (c Choices) Labels() []string {
	if len(c) == 0 {
		return nil
	}
	out := make([]string, 0, len(c))
	for _, choice := range c {
		out = append(out, choice.Label)
	}
	return out
}

// Groups partitions the list by Group, keeping first-seen group order and the
// entry order within each group. Ungrouped entries collect under "".
func (c Choices) Groups() ([]string, map[string]Choices) {
	if len(c) == 0 {
		return nil, nil
	}
	var order []string
	groups := make(map[string]Choices)
	for _, choice := range c {
		if _, ok := groups[choice.Group]; !ok {
			order = append(order, choice.Group)
		}
		groups[choice.Group] = append(groups[choice.Group], choice)
	}
	return order, groups
}

// UnmarshalJSON accepts either an object (value→label, key order preserved)
// or an array of {value,label[,group]} records.
func (c *Choices) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = nil
		return nil
	}

	if trimmed[0] == '[' {
		var records []struct {
			Value any    `json:"value"`
			Label string `json:"label"`
			Group string `json:"group"`
		}
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return fmt.Errorf("choicelist: decode choices: %w", err)
		}
		out := make(Choices, 0, len(records))
		for _, record := range records {
			value, _ := Scalar(record.Value)
			out = append(out, Choice{Value: value, Label: record.Label, Group: record.Group})
		}
		*c = out
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("choicelist: decode choices: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("choicelist: choices must be an object or array")
	}

	var out Choices
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("choicelist: decode choices: %w", err)
		}
		key, _ := keyTok.(string)
		var label any
		if err := dec.Decode(&label); err != nil {
			return fmt.Errorf("choicelist: decode label for %q: %w", key, err)
		}
		text, _ := Scalar(label)
		out = append(out, Choice{Value: key, Label: text})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("choicelist: decode choices: %w", err)
	}
	*c = out
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML mappings and sequences; yaml
// nodes keep the document order.
func (c *Choices) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Choices, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			out = append(out, Choice{
				Value: node.Content[i].Value,
				Label: node.Content[i+1].Value,
			})
		}
		*c = out
		return nil
	case yaml.SequenceNode:
		var records []Choice
		if err := node.Decode(&records); err != nil {
			return fmt.Errorf("choicelist: decode choices: %w", err)
		}
		*c = records
		return nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*c = nil
			return nil
		}
	}
	return fmt.Errorf("choicelist: line %d: choices must be a mapping or sequence", node.Line)
}

// Scalar renders a decoded scalar as text the way values are compared and
// displayed. Integral floats drop their fraction so JSON numbers match their
// string keys. The bool reports whether v was a scalar.
func Scalar(v any) (string, bool) {
	switch value := v.(type) {
	case nil:
		return "", true
	case string:
		return value, true
	case json.Number:
		return value.String(), true
	case bool:
		if value {
			return "1", true
		}
		return "", true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(value), true
	case fmt.Stringer:
		return value.String(), true
	default:
		return fmt.Sprint(value), false
	}
}

// LooseEqual compares a choice value with decoded data. Numeric text compares
// numerically ("1" equals 1.0); everything else compares as text.
func LooseEqual(value string, data any) bool {
	text, ok := Scalar(data)
	if !ok {
		return false
	}
	if value == text {
		return true
	}
	left, errLeft := strconv.ParseFloat(strings.TrimSpace(value), 64)
	right, errRight := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if errLeft != nil || errRight != nil {
		return false
	}
	return left == right
}

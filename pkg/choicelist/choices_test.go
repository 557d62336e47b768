package choicelist

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestChoicesUnmarshalJSON_ObjectKeepsKeyOrder(t *testing.T) {
	var got Choices
	if err := json.Unmarshal([]byte(`{"z":"Zed","a":"Alpha","10":"Ten","2":2}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Pairs("z", "Zed", "a", "Alpha", "10", "Ten", "2", "2")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
}

func TestChoicesUnmarshalJSON_ArrayRecords(t *testing.T) {
	var got Choices
	payload := `[{"value":1,"label":"One","group":"odd"},{"value":"b","label":"Bee"}]`
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Choices{
		{Value: "1", Label: "One", Group: "odd"},
		{Value: "b", Label: "Bee"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
}

func TestChoicesUnmarshalJSON_RejectsScalar(t *testing.T) {
	var got Choices
	if err := json.Unmarshal([]byte(`"red"`), &got); err == nil {
		t.Fatalf("expected error for scalar choices")
	}
}

func TestChoicesUnmarshalYAML(t *testing.T) {
	doc := `
mapping:
  b: Bee
  a: Ay
sequence:
  - value: x
    label: Ex
    group: letters
`
	var got struct {
		Mapping  Choices `yaml:"mapping"`
		Sequence Choices `yaml:"sequence"`
	}
	if err := yaml.Unmarshal([]byte(doc), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if diff := cmp.Diff(Pairs("b", "Bee", "a", "Ay"), got.Mapping); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Choices{{Value: "x", Label: "Ex", Group: "letters"}}, got.Sequence); diff != "" {
		t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestChoicesLabelFor_FirstLooseMatchWins(t *testing.T) {
	choices := Choices{
		{Value: "1", Label: "Red"},
		{Value: "2", Label: "Blue"},
		{Value: "2.0", Label: "Blue again"},
	}

	cases := []struct {
		name  string
		data  any
		label string
		ok    bool
	}{
		{name: "string", data: "2", label: "Blue", ok: true},
		{name: "json number", data: json.Number("1"), label: "Red", ok: true},
		{name: "float", data: float64(2), label: "Blue", ok: true},
		{name: "int", data: 1, label: "Red", ok: true},
		{name: "missing", data: "9", ok: false},
		{name: "non scalar", data: []any{"1"}, ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			label, ok := choices.LabelFor(tc.data)
			if ok != tc.ok || label != tc.label {
				t.Fatalf("LabelFor(%v) = %q, %v; want %q, %v", tc.data, label, ok, tc.label, tc.ok)
			}
		})
	}
}

func TestScalar(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{in: nil, want: "", ok: true},
		{in: true, want: "1", ok: true},
		{in: false, want: "", ok: true},
		{in: 1.5, want: "1.5", ok: true},
		{in: float64(3), want: "3", ok: true},
		{in: int64(42), want: "42", ok: true},
		{in: map[string]any{}, ok: false},
	}
	for _, tc := range cases {
		got, ok := Scalar(tc.in)
		if ok != tc.ok {
			t.Fatalf("Scalar(%#v) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("Scalar(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestChoicesGroups(t *testing.T) {
	choices := Choices{
		{Value: "1", Label: "Red", Group: "warm"},
		{Value: "2", Label: "Blue", Group: "cool"},
		{Value: "4", Label: "Orange", Group: "warm"},
	}

	order, groups := choices.Groups()
	if diff := cmp.Diff([]string{"warm", "cool"}, order); diff != "" {
		t.Fatalf("group order mismatch (-want +got):\n%s", diff)
	}
	if got := groups["warm"].Labels(); !cmp.Equal([]string{"Red", "Orange"}, got) {
		t.Fatalf("unexpected warm labels: %v", got)
	}
}

func TestFilter_PrefixFirstThenSourceOrder(t *testing.T) {
	choices := Pairs("1", "Dark Red", "2", "Red", "3", "Blue", "4", "Redwood")

	got := Filter(choices, "red", 0)
	if diff := cmp.Diff([]string{"Red", "Redwood", "Dark Red"}, got.Labels()); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}

	if got := Filter(choices, "RED", 2); len(got) != 2 {
		t.Fatalf("expected limit to apply, got %d entries", len(got))
	}
	if got := Filter(choices, "", 3); len(got) != 3 || got[0].Label != "Dark Red" {
		t.Fatalf("expected leading entries for empty query, got %v", got.Labels())
	}
	if got := Filter(choices, "green", 0); got != nil {
		t.Fatalf("expected nil for no matches, got %v", got)
	}
}

func TestArrayChoiceList_IntersectKeepsRequestOrder(t *testing.T) {
	list := NewArrayChoiceList(Pairs("1", "Red", "2", "Blue", "3", "Green"))

	got, err := list.Intersect(t.Context(), []string{"3", "9", "1"})
	if err != nil {
		t.Fatalf("intersect: %v", err)
	}
	if diff := cmp.Diff(Pairs("3", "Green", "1", "Red"), got); diff != "" {
		t.Fatalf("intersect mismatch (-want +got):\n%s", diff)
	}
}

func TestArrayChoiceList_ReturnsCopies(t *testing.T) {
	source := Pairs("1", "Red")
	list := NewArrayChoiceList(source)
	source[0].Label = "changed"

	got, err := list.Choices(t.Context())
	if err != nil {
		t.Fatalf("choices: %v", err)
	}
	got[0].Label = "mutated"

	again, _ := list.Choices(t.Context())
	if again[0].Label != "Red" {
		t.Fatalf("expected list to be immutable, got %q", again[0].Label)
	}
}

package fieldconfig_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/field"
	"github.com/goliatone/go-autocompleter/pkg/fieldconfig"
	"github.com/goliatone/go-autocompleter/pkg/manager"
)

const yamlDoc = `
managers:
  - name: default
    driver: sqlite
    dsn: file:colors.db
    ping_timeout: 2s
fields:
  favorite_colors:
    widget: entity
    route_name: colors_lookup
    multiple: true
    em: default
    class: colors
    property: name
    group_by: family
  size:
    label: Size
    choices:
      s: Small
      m: Medium
      l: Large
`

const jsonDoc = `{
  "fields": {
    "country": {
      "placeholder": "Pick a country",
      "choices": {"us": "United States", "ca": "Canada"},
      "attr": {"data-theme": "compact"}
    }
  }
}`

func TestLoadFS_YAMLAndJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/colors.yaml":  {Data: []byte(yamlDoc)},
		"forms/country.json": {Data: []byte(jsonDoc)},
		"forms/README.md":    {Data: []byte("ignored")},
	}

	store, err := fieldconfig.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"country", "favorite_colors", "size"}, store.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	def, ok := store.Field("favorite_colors")
	if !ok {
		t.Fatalf("favorite_colors missing")
	}
	want := field.Options{
		Name:            "favorite_colors",
		Widget:          field.WidgetEntity,
		RouteName:       "colors_lookup",
		Multiple:        true,
		EntityManagerID: "default",
		EntityClass:     "colors",
		Property:        "name",
		GroupBy:         "family",
	}
	if diff := cmp.Diff(want, def.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if def.Source != "forms/colors.yaml" {
		t.Fatalf("unexpected source %q", def.Source)
	}

	size, _ := store.Field("size")
	if diff := cmp.Diff(choicelist.Pairs("s", "Small", "m", "Medium", "l", "Large"), size.Options.Choices); diff != "" {
		t.Fatalf("yaml choice order lost (-want +got):\n%s", diff)
	}
	if size.Options.Widget != field.WidgetChoice {
		t.Fatalf("expected default choice widget, got %q", size.Options.Widget)
	}

	country, _ := store.Field("country")
	if diff := cmp.Diff(choicelist.Pairs("us", "United States", "ca", "Canada"), country.Options.Choices); diff != "" {
		t.Fatalf("json choice order lost (-want +got):\n%s", diff)
	}
	if country.Options.Attr["data-theme"] != "compact" {
		t.Fatalf("attr not parsed: %#v", country.Options.Attr)
	}

	managers := store.Managers()
	if len(managers) != 1 || managers[0].DSN != "file:colors.db" || managers[0].PingTimeout != 2*time.Second {
		t.Fatalf("unexpected managers: %#v", managers)
	}
	if managers[0].Driver != manager.DriverSQLite {
		t.Fatalf("unexpected driver %q", managers[0].Driver)
	}
}

func TestLoadFS_DuplicateField(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("fields:\n  size:\n    label: A\n")},
		"b.yml":  {Data: []byte("fields:\n  size:\n    label: B\n")},
	}

	_, err := fieldconfig.LoadFS(fsys)
	if err == nil || !strings.Contains(err.Error(), `duplicate field "size"`) {
		t.Fatalf("expected duplicate field error, got %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":          "   ",
		"invalid":        "fields: [unterminated",
		"bad widget":     "fields:\n  size:\n    widget: radio\n",
		"alias conflict": "fields:\n  owner:\n    widget: entity\n    class: users\n    entity_class: people\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := fieldconfig.Parse([]byte(doc), name+".yaml"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	_, err := fieldconfig.Parse([]byte("fields:\n  size:\n    widget: radio\n"), "w.yaml")
	if !errors.Is(err, field.ErrUnsupportedWidget) {
		t.Fatalf("expected ErrUnsupportedWidget in chain, got %v", err)
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	store, err := fieldconfig.LoadFS(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !store.Empty() {
		t.Fatalf("expected empty store")
	}
}

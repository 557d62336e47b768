package html_test

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/field"
	"github.com/goliatone/go-autocompleter/pkg/renderers/html"
	"github.com/goliatone/go-autocompleter/pkg/testsupport"
	"github.com/goliatone/go-autocompleter/pkg/transformer"
)

func buildField(t *testing.T, c *field.Configurator, opts field.Options) *field.Field {
	t.Helper()
	f, err := c.Build(t.Context(), opts)
	if err != nil {
		t.Fatalf("build field: %v", err)
	}
	return f
}

func TestRender_StaticMultiple(t *testing.T) {
	f := buildField(t, field.New(), field.Options{
		Name:        "colors",
		Label:       "<b>Favorite</b> colors",
		Placeholder: "Pick some",
		Multiple:    true,
		Choices: choicelist.Choices{
			{Value: "1", Label: "Red & Orange"},
			{Value: "2", Label: "Blue"},
		},
		Attr: map[string]string{"data-size": "lg", "bad attr": "x"},
	})

	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(t.Context(), f, []transformer.Selection{{Value: "2", Label: "Blue"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	markup := string(out)

	for _, want := range []string{
		`data-block="autocompleter"`,
		`<label class="autocompleter-label" for="autocompleter_colors">Favorite colors</label>`,
		`value="Blue, "`,
		`placeholder="Pick some"`,
		`data-multiple="true"`,
		`data-size="lg"`,
		`name="colors" value="[{&quot;value&quot;:&quot;2&quot;,&quot;label&quot;:&quot;Blue&quot;}]"`,
		`<option value="Red &amp; Orange" data-value="1">`,
		`list="autocompleter_colors-choices"`,
	} {
		if !strings.Contains(markup, want) {
			t.Fatalf("expected markup to contain %q\n%s", want, markup)
		}
	}
	if strings.Contains(markup, "bad attr") {
		t.Fatalf("expected invalid attribute name to be dropped\n%s", markup)
	}
	if strings.Contains(markup, "<script") {
		t.Fatalf("expected no script without an asset resolver\n%s", markup)
	}
}

func TestRender_StaticSingleGolden(t *testing.T) {
	f := buildField(t, field.New(), field.Options{
		Name:    "size",
		Label:   "Size",
		Choices: choicelist.Pairs("s", "Small", "m", "Medium"),
	})

	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(t.Context(), f, "m")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	testsupport.AssertGolden(t, filepath.Join("testdata", "static_single.golden"), out)
}

func TestRender_RemoteEntityUsesLookupURL(t *testing.T) {
	reg, _ := testsupport.ColorRegistry(t)
	f := buildField(t, field.New(field.WithRegistry(reg)), field.Options{
		Name:        "owner",
		Widget:      field.WidgetEntity,
		RouteName:   "colors_lookup",
		EntityClass: "colors",
		Property:    "name",
	})

	r, err := html.New(html.WithURLResolver(func(route string) string {
		return "/api/lookup/" + route
	}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(t.Context(), f, "3")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	markup := string(out)

	for _, want := range []string{
		`data-autocompleter-url="/api/lookup/colors_lookup"`,
		`data-route-name="colors_lookup"`,
		`data-widget="entity"`,
		`value="Green"`,
		`name="owner" value="3"`,
	} {
		if !strings.Contains(markup, want) {
			t.Fatalf("expected markup to contain %q\n%s", want, markup)
		}
	}
	if strings.Contains(markup, "<datalist") {
		t.Fatalf("expected remote field to skip inline choices\n%s", markup)
	}
}

func TestRender_ThemeOverrides(t *testing.T) {
	overlay := fstest.MapFS{
		"themes/acme/autocompleter.tmpl": {Data: []byte(`<span class="{{ theme.tokens.input }}" data-theme="{{ theme.name }}">{{ view.value }}</span>`)},
	}
	cfg := &theme.RendererConfig{
		Theme:    "acme",
		Variant:  "dark",
		Partials: map[string]string{html.TemplateName: "themes/acme/autocompleter.tmpl"},
		Tokens:   map[string]string{"input": "acme-input"},
	}

	f := buildField(t, field.New(), field.Options{Name: "size", Choices: choicelist.Pairs("s", "Small")})
	r, err := html.New(html.WithTemplatesFS(overlay), html.WithTheme(cfg))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(t.Context(), f, "s")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != `<span class="acme-input" data-theme="acme">Small</span>` {
		t.Fatalf("unexpected themed output %q", got)
	}
}

func TestRender_DefaultTemplateWithTheme(t *testing.T) {
	cfg := &theme.RendererConfig{
		Theme:   "acme",
		Tokens:  map[string]string{"wrapper": "acme-field"},
		CSSVars: map[string]string{"--brand": "#123456", "color": "red"},
		AssetURL: func(key string) string {
			return "/themes/acme/" + key
		},
	}
	f := buildField(t, field.New(), field.Options{Name: "size", Choices: choicelist.Pairs("s", "Small")})

	r, err := html.New(html.WithTheme(cfg))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(t.Context(), f, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	markup := string(out)
	for _, want := range []string{
		`class="acme-field"`,
		`data-theme="acme"`,
		`style="--brand: #123456;"`,
		`<script src="/themes/acme/autocompleter.js" defer></script>`,
	} {
		if !strings.Contains(markup, want) {
			t.Fatalf("expected markup to contain %q\n%s", want, markup)
		}
	}
}

func TestAssetsFS(t *testing.T) {
	data, err := fs.ReadFile(html.AssetsFS(), html.RuntimeScriptName)
	if err != nil {
		t.Fatalf("read runtime script: %v", err)
	}
	if !strings.Contains(string(data), "data-autocompleter-target") {
		t.Fatalf("unexpected runtime script contents")
	}
}

package lookup_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autocompleter/components/lookup"
	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/field"
	"github.com/goliatone/go-autocompleter/pkg/testsupport"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := lookup.MountPath("/admin"); got != "/admin/api/lookup" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := lookup.MountPath("admin/", lookup.WithRoutePath("ac")); got != "/admin/ac" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := lookup.RoutePath("", "colors_lookup"); got != "/api/lookup/colors_lookup" {
		t.Fatalf("unexpected route path: %q", got)
	}
}

func TestComponent_ServesRegisteredFields(t *testing.T) {
	reg, _ := testsupport.ColorRegistry(t)
	f, err := field.New(field.WithRegistry(reg)).Build(t.Context(), field.Options{
		Name:        "favorite_color",
		Widget:      field.WidgetEntity,
		RouteName:   "colors_lookup",
		EntityClass: "colors",
		Property:    "name",
	})
	if err != nil {
		t.Fatalf("build field: %v", err)
	}

	c := lookup.New()
	if err := c.RegisterField(f); err != nil {
		t.Fatalf("register field: %v", err)
	}
	mux := http.NewServeMux()
	pattern, err := c.RegisterRoutes(mux, "/admin")
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}
	if pattern != "/admin/api/lookup/" {
		t.Fatalf("unexpected pattern %q", pattern)
	}
	url := c.URLFor("colors_lookup")
	if url != "/admin/api/lookup/colors_lookup" {
		t.Fatalf("unexpected url %q", url)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url+"?q=gr", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data choicelist.Choices `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := choicelist.Pairs("3", "Green", "5", "Grey")
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/api/lookup/unknown?q=gr", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown route, got %d", rec.Code)
	}
}

func TestComponent_RegisterConflicts(t *testing.T) {
	c := lookup.New()
	a := choicelist.NewArrayChoiceList(choicelist.Pairs("a", "A"))
	b := choicelist.NewArrayChoiceList(choicelist.Pairs("b", "B"))

	if err := c.Register("letters", a); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Register("letters", a); err != nil {
		t.Fatalf("re-register same source: %v", err)
	}
	if err := c.Register("letters", b); !errors.Is(err, lookup.ErrRouteConflict) {
		t.Fatalf("expected ErrRouteConflict, got %v", err)
	}
	if err := c.Register("bad/name", b); err == nil {
		t.Fatalf("expected invalid route name error")
	}
	if diff := cmp.Diff([]string{"letters"}, c.Routes()); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestComponent_MatchesOnlyDirectSegment(t *testing.T) {
	c := lookup.New()
	if err := c.Register("colors", choicelist.NewArrayChoiceList(choicelist.Pairs("1", "Red"))); err != nil {
		t.Fatalf("register colors: %v", err)
	}
	if err := c.Register("extra", choicelist.NewArrayChoiceList(choicelist.Pairs("x", "Extra"))); err != nil {
		t.Fatalf("register extra: %v", err)
	}
	mux := http.NewServeMux()
	if _, err := c.RegisterRoutes(mux, ""); err != nil {
		t.Fatalf("register routes: %v", err)
	}

	for target, want := range map[string]int{
		"/api/lookup/extra?q=ex":        http.StatusOK,
		"/api/lookup/colors/extra?q=ex": http.StatusNotFound,
		"/api/lookup/?q=ex":             http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != want {
			t.Fatalf("%s: expected status %d, got %d", target, want, rec.Code)
		}
	}
}

func TestComponent_SkipsStaticFields(t *testing.T) {
	f, err := field.New().Build(t.Context(), field.Options{Name: "size", Choices: choicelist.Pairs("s", "Small")})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	c := lookup.New()
	if err := c.RegisterField(f); err != nil {
		t.Fatalf("expected static field to be skipped, got %v", err)
	}
	if len(c.Routes()) != 0 {
		t.Fatalf("expected no routes, got %v", c.Routes())
	}
}

package openapi_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/field"
	"github.com/goliatone/go-autocompleter/pkg/openapi"
)

const petsDocument = `{
  "openapi": "3.0.0",
  "info": { "title": "Pets", "version": "1.0.0" },
  "paths": {
    "/pets": {
      "post": {
        "operationId": "createPet",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": { "$ref": "#/components/schemas/PetInput" }
            }
          }
        },
        "responses": { "201": { "description": "created" } }
      }
    },
    "/pets/{id}": {
      "put": {
        "parameters": [{ "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "owner": {
                    "type": "integer",
                    "x-autocompleter": { "widget": "entity", "route_name": "owners_lookup", "class": "owners", "property": "name" }
                  },
                  "nickname": { "type": "string", "x-autocompleter": false }
                }
              }
            }
          }
        },
        "responses": { "200": { "description": "ok" } }
      }
    }
  },
  "components": {
    "schemas": {
      "PetInput": {
        "type": "object",
        "required": ["species"],
        "properties": {
          "species": {
            "type": "string",
            "title": "Species",
            "enum": ["cat", "dog", "bird"],
            "x-autocompleter": true
          },
          "tags": {
            "type": "array",
            "items": { "type": "string", "enum": ["small", "large"] },
            "x-autocompleter": { "placeholder": "Pick tags" }
          },
          "home": {
            "type": "object",
            "properties": {
              "city": {
                "type": "string",
                "x-autocompleter": { "route_name": "cities_lookup" }
              }
            }
          },
          "name": { "type": "string" }
        }
      }
    }
  }
}`

func TestExtract_FindsMarkedProperties(t *testing.T) {
	doc, err := openapi.NewDocument(openapi.SourceFromFile("pets.json"), []byte(petsDocument))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	fields, err := openapi.Extract(t.Context(), doc)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := []openapi.Field{
		{
			Operation: "createPet",
			Path:      "home.city",
			Options:   field.Options{Name: "home.city", Widget: field.WidgetChoice, RouteName: "cities_lookup"},
		},
		{
			Operation: "createPet",
			Path:      "species",
			Options: field.Options{
				Name:     "species",
				Label:    "Species",
				Required: true,
				Widget:   field.WidgetChoice,
				Choices:  choicelist.Pairs("cat", "cat", "dog", "dog", "bird", "bird"),
			},
		},
		{
			Operation: "createPet",
			Path:      "tags",
			Options: field.Options{
				Name:        "tags",
				Placeholder: "Pick tags",
				Widget:      field.WidgetChoice,
				Multiple:    true,
				Choices:     choicelist.Pairs("small", "small", "large", "large"),
			},
		},
		{
			Operation: "put:/pets/{id}",
			Path:      "owner",
			Options: field.Options{
				Name:        "owner",
				Widget:      field.WidgetEntity,
				RouteName:   "owners_lookup",
				EntityClass: "owners",
				Property:    "name",
			},
		},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_InvalidExtension(t *testing.T) {
	document := strings.Replace(petsDocument, `"x-autocompleter": true`, `"x-autocompleter": "yes"`, 1)
	doc := mustDocument(t, document)

	_, err := openapi.Extract(t.Context(), doc)
	if err == nil || !strings.Contains(err.Error(), "species") {
		t.Fatalf("expected error naming the property, got %v", err)
	}
}

func TestExtract_InvalidWidget(t *testing.T) {
	document := strings.Replace(petsDocument, `"widget": "entity"`, `"widget": "radio"`, 1)
	doc := mustDocument(t, document)

	if _, err := openapi.Extract(t.Context(), doc); err == nil {
		t.Fatalf("expected unsupported widget error")
	}
}

func TestLoad_FromFS(t *testing.T) {
	fsys := fstest.MapFS{"specs/pets.json": {Data: []byte(petsDocument)}}

	doc, err := openapi.Load(t.Context(), fsys, openapi.SourceFromFS("specs/pets.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Location() != "specs/pets.json" || doc.Source().Kind() != openapi.SourceKindFS {
		t.Fatalf("unexpected source: %s (%s)", doc.Location(), doc.Source().Kind())
	}

	if _, err := openapi.Load(t.Context(), fsys, openapi.SourceFromFS("missing.json")); err == nil {
		t.Fatalf("expected error for missing document")
	}
	if _, err := openapi.Load(t.Context(), nil, openapi.SourceFromFS("specs/pets.json")); err == nil {
		t.Fatalf("expected error for nil filesystem")
	}
}

func mustDocument(t *testing.T, raw string) openapi.Document {
	t.Helper()
	doc, err := openapi.NewDocument(openapi.SourceFromFile("doc.json"), []byte(raw))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

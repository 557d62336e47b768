package fieldconfig

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/field"
	"github.com/goliatone/go-autocompleter/pkg/manager"
)

// Store holds field definitions and entity manager connections loaded from
// configuration files.
type Store struct {
	fields   map[string]Definition
	managers []manager.Config
}

// Definition is one configured field together with the file it came from.
type Definition struct {
	Options field.Options
	Source  string
}

// LoadFS walks fsys and parses every JSON/YAML file. A nil fsys yields an
// empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := newStore()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("fieldconfig: read %s: %w", path, err)
		}
		return store.merge(data, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes a single document.
func Parse(data []byte, source string) (*Store, error) {
	store := newStore()
	if err := store.merge(data, source); err != nil {
		return nil, err
	}
	return store, nil
}

// Field returns the definition registered under name.
func (s *Store) Field(name string) (Definition, bool) {
	if s == nil {
		return Definition{}, false
	}
	def, ok := s.fields[name]
	return def, ok
}

// Names lists the configured field names in sorted order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Managers returns the configured entity manager connections in file order.
func (s *Store) Managers() []manager.Config {
	if s == nil {
		return nil
	}
	return append([]manager.Config(nil), s.managers...)
}

// Empty reports whether the store holds any field.
func (s *Store) Empty() bool {
	return s == nil || len(s.fields) == 0
}

func newStore() *Store {
	return &Store{fields: make(map[string]Definition)}
}

type documentFile struct {
	Managers []manager.Config    `json:"managers" yaml:"managers"`
	Fields   map[string]fieldFile `json:"fields" yaml:"fields"`
}

// fieldFile accepts the long option names plus the short em/class aliases.
type fieldFile struct {
	Label       string             `json:"label" yaml:"label"`
	Placeholder string             `json:"placeholder" yaml:"placeholder"`
	Required    bool               `json:"required" yaml:"required"`
	Attr        map[string]string  `json:"attr" yaml:"attr"`
	Widget      string             `json:"widget" yaml:"widget"`
	RouteName   string             `json:"route_name" yaml:"route_name"`
	Multiple    bool               `json:"multiple" yaml:"multiple"`
	Choices     choicelist.Choices `json:"choices" yaml:"choices"`

	EntityManagerID string `json:"entity_manager_id" yaml:"entity_manager_id"`
	EM              string `json:"em" yaml:"em"`
	EntityClass     string `json:"entity_class" yaml:"entity_class"`
	Class           string `json:"class" yaml:"class"`
	Property        string `json:"property" yaml:"property"`
	Identifier      string `json:"identifier" yaml:"identifier"`
	GroupBy         string `json:"group_by" yaml:"group_by"`
}

// DecodeField decodes one JSON field definition, as found under the fields
// key of a document, into options named name.
func DecodeField(name string, data []byte) (field.Options, error) {
	var raw fieldFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return field.Options{}, fmt.Errorf("fieldconfig: field %q: %w", name, err)
	}
	opts, err := normaliseField(name, raw)
	if err != nil {
		return field.Options{}, fmt.Errorf("fieldconfig: field %q: %w", name, err)
	}
	return opts, nil
}

func (s *Store) merge(data []byte, source string) error {
	doc, err := parseDocument(data, source)
	if err != nil {
		return err
	}

	s.managers = append(s.managers, doc.Managers...)
	for key, raw := range doc.Fields {
		name := strings.TrimSpace(key)
		if name == "" {
			return fmt.Errorf("fieldconfig: file %s defines an empty field name", source)
		}
		if existing, exists := s.fields[name]; exists {
			return fmt.Errorf("fieldconfig: duplicate field %q (files %s and %s)", name, existing.Source, source)
		}
		opts, err := normaliseField(name, raw)
		if err != nil {
			return fmt.Errorf("fieldconfig: field %q (file %s): %w", name, source, err)
		}
		s.fields[name] = Definition{Options: opts, Source: source}
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("fieldconfig: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("fieldconfig: parse %s: invalid JSON or YAML: %w", source, err)
	}
	return doc, nil
}

func normaliseField(name string, raw fieldFile) (field.Options, error) {
	widget, err := field.ParseWidget(raw.Widget)
	if err != nil {
		return field.Options{}, err
	}
	if raw.EntityManagerID != "" && raw.EM != "" && raw.EntityManagerID != raw.EM {
		return field.Options{}, fmt.Errorf("entity_manager_id %q conflicts with em %q", raw.EntityManagerID, raw.EM)
	}
	if raw.EntityClass != "" && raw.Class != "" && raw.EntityClass != raw.Class {
		return field.Options{}, fmt.Errorf("entity_class %q conflicts with class %q", raw.EntityClass, raw.Class)
	}

	opts := field.Options{
		Name:            name,
		Label:           raw.Label,
		Placeholder:     raw.Placeholder,
		Required:        raw.Required,
		Widget:          widget,
		RouteName:       strings.TrimSpace(raw.RouteName),
		Multiple:        raw.Multiple,
		Choices:         raw.Choices,
		EntityManagerID: firstNonEmpty(raw.EntityManagerID, raw.EM),
		EntityClass:     firstNonEmpty(raw.EntityClass, raw.Class),
		Property:        raw.Property,
		Identifier:      raw.Identifier,
		GroupBy:         raw.GroupBy,
	}
	if len(raw.Attr) > 0 {
		opts.Attr = make(map[string]string, len(raw.Attr))
		for k, v := range raw.Attr {
			opts.Attr[k] = v
		}
	}
	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

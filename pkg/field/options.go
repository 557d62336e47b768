package field

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
)

// Widget names the base field type the autocompleter layers onto.
type Widget string

const (
	WidgetChoice Widget = "choice"
	WidgetEntity Widget = "entity"
)

// ParseWidget normalises raw into a supported widget. An empty value selects
// WidgetChoice.
func ParseWidget(raw string) (Widget, error) {
	switch Widget(strings.ToLower(strings.TrimSpace(raw))) {
	case "", WidgetChoice:
		return WidgetChoice, nil
	case WidgetEntity:
		return WidgetEntity, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedWidget, raw)
	}
}

// Options is the caller-supplied, partial option set. Zero values mean the
// key was not supplied and the mode default applies.
type Options struct {
	Name        string            `json:"name" yaml:"name"`
	Label       string            `json:"label" yaml:"label"`
	Placeholder string            `json:"placeholder" yaml:"placeholder"`
	Required    bool              `json:"required" yaml:"required"`
	Attr        map[string]string `json:"attr" yaml:"attr"`

	Widget     Widget                `json:"widget" yaml:"widget"`
	RouteName  string                `json:"route_name" yaml:"route_name"`
	Multiple   bool                  `json:"multiple" yaml:"multiple"`
	Choices    choicelist.Choices    `json:"choices" yaml:"choices"`
	ChoiceList choicelist.ChoiceList `json:"-" yaml:"-"`

	// Entity mode only.
	EntityManagerID string                  `json:"entity_manager_id" yaml:"entity_manager_id"`
	EntityClass     string                  `json:"entity_class" yaml:"entity_class"`
	Property        string                  `json:"property" yaml:"property"`
	Identifier      string                  `json:"identifier" yaml:"identifier"`
	QueryBuilder    choicelist.QueryBuilder `json:"-" yaml:"-"`
	GroupBy         string                  `json:"group_by" yaml:"group_by"`
}

// Mode carries the options that only exist for one widget.
type Mode interface {
	Widget() Widget
}

// ChoiceMode is the mode for static choice widgets; it adds no options.
type ChoiceMode struct{}

// Widget implements Mode.
func (ChoiceMode) Widget() Widget { return WidgetChoice }

// EntityMode holds the entity query options.
type EntityMode struct {
	EntityManagerID string
	EntityClass     string
	Property        string
	Identifier      string
	QueryBuilder    choicelist.QueryBuilder
	GroupBy         string
}

// Widget implements Mode.
func (EntityMode) Widget() Widget { return WidgetEntity }

// Resolved is the effective option set after defaults are layered under the
// caller's values.
type Resolved struct {
	Name        string
	Label       string
	Placeholder string
	Required    bool
	Attr        map[string]string

	Widget     Widget
	RouteName  string
	Multiple   bool
	Choices    choicelist.Choices
	ChoiceList choicelist.ChoiceList
	Mode       Mode
}

// Entity returns the entity options when the field runs in entity mode.
func (r Resolved) Entity() (EntityMode, bool) {
	mode, ok := r.Mode.(EntityMode)
	return mode, ok
}

// defaults returns the base layer for widget. Every key starts unset; entity
// mode adds its own keys, also unset, and an empty choice list.
func defaults(widget Widget) Resolved {
	switch widget {
	case WidgetEntity:
		return Resolved{
			Widget:  WidgetEntity,
			Choices: choicelist.Choices{},
			Mode:    EntityMode{},
		}
	default:
		return Resolved{
			Widget: WidgetChoice,
			Mode:   ChoiceMode{},
		}
	}
}

// layer applies caller values over base, key by key; supplied keys win.
func layer(base Resolved, caller Options) Resolved {
	out := base
	if caller.Name != "" {
		out.Name = caller.Name
	}
	if caller.Label != "" {
		out.Label = caller.Label
	}
	if caller.Placeholder != "" {
		out.Placeholder = caller.Placeholder
	}
	out.Required = caller.Required || base.Required
	if len(caller.Attr) > 0 {
		out.Attr = make(map[string]string, len(caller.Attr))
		for key, value := range caller.Attr {
			out.Attr[key] = value
		}
	}
	if route := strings.TrimSpace(caller.RouteName); route != "" {
		out.RouteName = route
	}
	out.Multiple = caller.Multiple || base.Multiple
	if caller.Choices != nil {
		out.Choices = caller.Choices.Clone()
	}
	if caller.ChoiceList != nil {
		out.ChoiceList = caller.ChoiceList
	}

	switch mode := base.Mode.(type) {
	case EntityMode:
		if caller.EntityManagerID != "" {
			mode.EntityManagerID = caller.EntityManagerID
		}
		if caller.EntityClass != "" {
			mode.EntityClass = caller.EntityClass
		}
		if caller.Property != "" {
			mode.Property = caller.Property
		}
		if caller.Identifier != "" {
			mode.Identifier = caller.Identifier
		}
		if caller.QueryBuilder != nil {
			mode.QueryBuilder = caller.QueryBuilder
		}
		if caller.GroupBy != "" {
			mode.GroupBy = caller.GroupBy
		}
		out.Mode = mode
	case ChoiceMode:
		out.Mode = mode
	default:
		out.Mode = ChoiceMode{}
	}
	return out
}

func hasEntityOptions(caller Options) bool {
	return caller.EntityManagerID != "" ||
		caller.EntityClass != "" ||
		caller.Property != "" ||
		caller.Identifier != "" ||
		caller.QueryBuilder != nil ||
		caller.GroupBy != ""
}

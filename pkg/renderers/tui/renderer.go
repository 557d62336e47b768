package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
	"github.com/goliatone/go-autocompleter/pkg/field"
	"github.com/goliatone/go-autocompleter/pkg/transformer"
)

const defaultSearchLimit = 20

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithPageSize sets how many options a select prompt shows at once.
func WithPageSize(size int) Option {
	return func(r *Renderer) {
		if size > 0 {
			r.pageSize = size
		}
	}
}

// WithSearchLimit caps the matches offered for remote fields.
func WithSearchLimit(limit int) Option {
	return func(r *Renderer) {
		if limit > 0 {
			r.searchLimit = limit
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Result is the outcome of a prompt: the payload a browser widget would have
// submitted, the value it maps to, and the display text for it.
type Result struct {
	Wire  string
	Value any
	View  field.ViewModel
}

// Renderer drives a terminal session that picks values for one field.
type Renderer struct {
	driver      PromptDriver
	pageSize    int
	searchLimit int
	logger      *zap.Logger
}

// New constructs a TUI renderer backed by survey prompts.
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:      newSurveyDriver(),
		searchLimit: defaultSearchLimit,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "tui"
}

// Prompt asks for the value of f. Remote fields first ask for a search term
// and offer the matches of the lookup source. current is a previously
// submitted payload whose entries are preselected.
func (r *Renderer) Prompt(ctx context.Context, f *field.Field, current string) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if f == nil {
		return Result{}, errors.New("tui: field is nil")
	}

	choices, err := r.candidates(ctx, f)
	if err != nil {
		return Result{}, err
	}
	if choices.Empty() {
		return Result{}, fmt.Errorf("%w: %s", ErrNoChoices, f.Name)
	}

	options := optionLabels(choices)
	message := promptMessage(f)

	var wire string
	if f.Attributes.Multiple {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  options,
			Defaults: preselected(choices, current),
			Help:     f.Options.Placeholder,
			PageSize: r.pageSize,
		})
		if err != nil {
			return Result{}, err
		}
		selections := make([]transformer.Selection, 0, len(indices))
		for _, idx := range indices {
			if idx < 0 || idx >= len(choices) {
				continue
			}
			selections = append(selections, transformer.Selection{Value: choices[idx].Value, Label: choices[idx].Label})
		}
		if len(selections) > 0 {
			if wire, err = transformer.EncodeSelections(selections); err != nil {
				return Result{}, fmt.Errorf("tui: encode selection: %w", err)
			}
		}
	} else {
		defaultIdx := -1
		if picked := preselected(choices, current); len(picked) > 0 {
			defaultIdx = picked[0]
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         f.Options.Placeholder,
			PageSize:     r.pageSize,
		})
		if err != nil {
			return Result{}, err
		}
		if idx < 0 || idx >= len(choices) {
			return Result{}, fmt.Errorf("tui: selection %d out of range", idx)
		}
		wire = choices[idx].Value
	}

	value, err := f.Submit(ctx, wire)
	if err != nil {
		return Result{}, err
	}
	result := Result{Wire: wire, Value: value, View: f.View(ctx, wire)}
	r.logger.Debug("field prompted", zap.String("field", f.Name), zap.String("wire", wire))
	return result, nil
}

func (r *Renderer) candidates(ctx context.Context, f *field.Field) (choicelist.Choices, error) {
	if !f.Remote() {
		return f.Choices(ctx)
	}
	searcher, ok := f.Attributes.ChoiceList.(choicelist.Searcher)
	if !ok {
		return f.Choices(ctx)
	}

	query, err := r.driver.Input(ctx, InputConfig{
		Message: "Search " + promptMessage(f),
		Help:    "Leave empty to list the first entries",
	})
	if err != nil {
		return nil, err
	}
	found, err := searcher.Search(ctx, query, r.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("tui: search %s: %w", f.Attributes.RouteName, err)
	}
	if found.Empty() {
		if err := r.driver.Info(ctx, fmt.Sprintf("No matches for %q", query)); err != nil {
			return nil, err
		}
	}
	return found, nil
}

func promptMessage(f *field.Field) string {
	if label := strings.TrimSpace(f.Options.Label); label != "" {
		return label
	}
	return f.Name
}

func optionLabels(choices choicelist.Choices) []string {
	out := make([]string, 0, len(choices))
	seen := make(map[string]int, len(choices))
	for _, choice := range choices {
		label := choice.Label
		if choice.Group != "" {
			label = choice.Group + " / " + label
		}
		// survey matches answers by text, so duplicate labels need a suffix.
		if n := seen[label]; n > 0 {
			seen[label] = n + 1
			label = fmt.Sprintf("%s (%s)", label, choice.Value)
		} else {
			seen[label] = 1
		}
		out = append(out, label)
	}
	return out
}

// preselected maps a previous payload to option indices. Multi-select
// payloads are JSON arrays; anything else is a single value.
func preselected(choices choicelist.Choices, current string) []int {
	current = strings.TrimSpace(current)
	if current == "" {
		return nil
	}
	values := []string{current}
	if strings.HasPrefix(current, "[") {
		selections, err := transformer.DecodeSelections(current)
		if err != nil {
			return nil
		}
		values = values[:0]
		for _, selection := range selections {
			values = append(values, selection.Value)
		}
	}

	var out []int
	for _, value := range values {
		for i, choice := range choices {
			if choice.Value == value {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

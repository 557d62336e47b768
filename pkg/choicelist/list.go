package choicelist

import "context"

// ChoiceList is the capability every choice source exposes. Implementations
// are constructed once per field and are safe to query repeatedly.
type ChoiceList interface {
	Choices(ctx context.Context) (Choices, error)
}

// Intersecter is implemented by sources that can resolve a subset of values
// without loading every entry.
type Intersecter interface {
	Intersect(ctx context.Context, values []string) (Choices, error)
}

// Searcher is implemented by sources that can answer lookup queries.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (Choices, error)
}

// ArrayChoiceList wraps a fixed, ordered set of choices.
type ArrayChoiceList struct {
	choices Choices
}

var (
	_ ChoiceList  = (*ArrayChoiceList)(nil)
	_ Intersecter = (*ArrayChoiceList)(nil)
	_ Searcher    = (*ArrayChoiceList)(nil)
)

// NewArrayChoiceList copies choices into a static list.
func NewArrayChoiceList(choices Choices) *ArrayChoiceList {
	return &ArrayChoiceList{choices: choices.Clone()}
}

// Choices returns a copy of the static entries.
func (l *ArrayChoiceList) Choices(ctx context.Context) (Choices, error) {
	if l == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.choices.Clone(), nil
}

// Intersect returns the entries matching values, in the order of values.
// Unknown values are skipped.
func (l *ArrayChoiceList) Intersect(ctx context.Context, values []string) (Choices, error) {
	if l == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return intersect(l.choices, values), nil
}

// Search filters the static entries by label.
func (l *ArrayChoiceList) Search(ctx context.Context, query string, limit int) (Choices, error) {
	if l == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Filter(l.choices, query, limit), nil
}

func intersect(choices Choices, values []string) Choices {
	if len(values) == 0 || len(choices) == 0 {
		return nil
	}
	out := make(Choices, 0, len(values))
	for _, value := range values {
		if choice, ok := choices.Lookup(value); ok {
			out = append(out, choice)
		}
	}
	return out
}

package choicelist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultIdentifier is the primary key column used when none is configured.
const DefaultIdentifier = "id"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// QueryBuilder narrows the base entity query, for example to add scopes or
// ordering. It receives a statement already bound to the entity table.
type QueryBuilder func(db *gorm.DB) *gorm.DB

// AjaxOption tunes an AjaxChoiceList.
type AjaxOption func(*AjaxChoiceList)

// WithIdentifier overrides the primary key column (default "id").
func WithIdentifier(column string) AjaxOption {
	return func(l *AjaxChoiceList) {
		if trimmed := strings.TrimSpace(column); trimmed != "" {
			l.identifier = trimmed
		}
	}
}

// WithLogger attaches a logger for query diagnostics.
func WithLogger(logger *zap.Logger) AjaxOption {
	return func(l *AjaxChoiceList) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// AjaxChoiceList is a deferred choice source backed by an entity table. The
// full list is loaded on first use and cached; failed loads are retried on
// the next call. Preset choices bypass the database entirely.
type AjaxChoiceList struct {
	db           *gorm.DB
	entityClass  string
	property     string
	identifier   string
	groupBy      string
	queryBuilder QueryBuilder
	preset       Choices
	logger       *zap.Logger

	mu     sync.Mutex
	loaded Choices
	done   bool
}

var (
	_ ChoiceList  = (*AjaxChoiceList)(nil)
	_ Intersecter = (*AjaxChoiceList)(nil)
	_ Searcher    = (*AjaxChoiceList)(nil)
)

// NewAjaxChoiceList binds an entity query to manager. entityClass names the
// table, property the label column (the identifier is used when empty) and
// groupBy an optional grouping column.
func NewAjaxChoiceList(manager *gorm.DB, entityClass, property string, queryBuilder QueryBuilder, choices Choices, groupBy string, opts ...AjaxOption) (*AjaxChoiceList, error) {
	if manager == nil {
		return nil, errors.New("choicelist: entity manager is nil")
	}
	list := &AjaxChoiceList{
		db:           manager,
		entityClass:  strings.TrimSpace(entityClass),
		property:     strings.TrimSpace(property),
		identifier:   DefaultIdentifier,
		groupBy:      strings.TrimSpace(groupBy),
		queryBuilder: queryBuilder,
		preset:       choices.Clone(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(list)
		}
	}

	if list.entityClass == "" {
		return nil, errors.New("choicelist: entity class is required")
	}
	for _, name := range []string{list.entityClass, list.identifier, list.property, list.groupBy} {
		if name != "" && !identifierPattern.MatchString(name) {
			return nil, fmt.Errorf("choicelist: invalid identifier %q", name)
		}
	}
	return list, nil
}

// EntityClass returns the configured table name.
func (l *AjaxChoiceList) EntityClass() string { return l.entityClass }

// Property returns the label column.
func (l *AjaxChoiceList) Property() string { return l.labelColumn() }

// Choices loads the entity choices on first use and returns a copy.
func (l *AjaxChoiceList) Choices(ctx context.Context) (Choices, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.preset.Empty() {
		return l.preset.Clone(), nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		loaded, err := l.fetch(ctx, nil)
		if err != nil {
			l.logger.Debug("choice list load failed",
				zap.String("entity", l.entityClass),
				zap.Error(err),
			)
			return nil, err
		}
		l.loaded, l.done = loaded, true
	}
	return l.loaded.Clone(), nil
}

// Intersect resolves only the requested identifiers, preserving the order of
// values. Already-loaded lists answer from memory.
func (l *AjaxChoiceList) Intersect(ctx context.Context, values []string) (Choices, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.preset.Empty() {
		return intersect(l.preset, values), nil
	}
	if loaded, ok := l.cached(); ok {
		return intersect(loaded, values), nil
	}
	found, err := l.fetch(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where(l.identifier+" IN ?", values)
	})
	if err != nil {
		return nil, err
	}
	return intersect(found, values), nil
}

// Search answers lookup queries by label. Matching runs in the database and
// ranking follows Filter.
func (l *AjaxChoiceList) Search(ctx context.Context, query string, limit int) (Choices, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.preset.Empty() {
		return Filter(l.preset, query, limit), nil
	}
	query = strings.TrimSpace(query)
	found, err := l.fetch(ctx, func(tx *gorm.DB) *gorm.DB {
		if query == "" {
			if limit > 0 {
				return tx.Limit(limit)
			}
			return tx
		}
		return tx.Where("LOWER("+l.labelColumn()+") LIKE ?", "%"+strings.ToLower(query)+"%")
	})
	if err != nil {
		return nil, err
	}
	return Filter(found, query, limit), nil
}

func (l *AjaxChoiceList) cached() (Choices, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded, l.done
}

func (l *AjaxChoiceList) labelColumn() string {
	if l.property != "" {
		return l.property
	}
	return l.identifier
}

func (l *AjaxChoiceList) fetch(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (Choices, error) {
	tx := l.db.WithContext(ctx).Table(l.entityClass)
	if l.queryBuilder != nil {
		tx = l.queryBuilder(tx)
		if tx == nil {
			return nil, fmt.Errorf("choicelist: query builder for %s returned nil", l.entityClass)
		}
	}

	columns := []string{l.identifier + " AS value", l.labelColumn() + " AS label"}
	if l.groupBy != "" {
		columns = append(columns, l.groupBy+" AS group_key")
		tx = tx.Order(l.groupBy)
	}
	tx = tx.Select(strings.Join(columns, ", ")).Order(l.identifier)
	if scope != nil {
		tx = scope(tx)
	}

	rows, err := tx.Rows()
	if err != nil {
		return nil, fmt.Errorf("choicelist: query %s: %w", l.entityClass, err)
	}
	defer func() { _ = rows.Close() }()

	var out Choices
	for rows.Next() {
		var value, label, group sql.NullString
		dest := []any{&value, &label}
		if l.groupBy != "" {
			dest = append(dest, &group)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("choicelist: scan %s: %w", l.entityClass, err)
		}
		out = append(out, Choice{Value: value.String, Label: label.String, Group: group.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("choicelist: read %s: %w", l.entityClass, err)
	}

	l.logger.Debug("choice list fetched",
		zap.String("entity", l.entityClass),
		zap.Int("count", len(out)),
	)
	return out, nil
}

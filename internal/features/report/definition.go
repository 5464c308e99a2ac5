package report

import (
	"context"
	"errors"
	"fmt"

	"crm-reports/pkg/utils"
)

// DefaultName is used for definitions registered without a name.
const DefaultName = "Report - Export Selected"

var ErrDuplicateColumn = errors.New("duplicate report column")

// FieldLookupsFunc computes the lookups of a run when they depend on the run
// itself, e.g. on the invoking user.
type FieldLookupsFunc func(ctx context.Context, r *Report) ([]FieldLookup, error)

// Definition configures a report. It is immutable once registered; every
// run works on its own copy.
type Definition struct {
	Name        string
	Description string
	// MaxRecords caps the selection size. Zero means unlimited.
	MaxRecords int
	// Fields selects and orders the output columns.
	Fields          []string
	Lookups         []FieldLookup
	PrefetchRelated bool
	Renderer        Renderer
	Async           bool

	RowData      RowFunc
	FieldLookups FieldLookupsFunc
}

type Option func(*Definition)

func NewDefinition(name string, opts ...Option) *Definition {
	d := &Definition{
		Name:            name,
		PrefetchRelated: true,
		Renderer:        CSVRenderer{},
	}
	if d.Name == "" {
		d.Name = DefaultName
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func WithDescription(s string) Option {
	return func(d *Definition) { d.Description = s }
}

func WithMaxRecords(n int) Option {
	return func(d *Definition) { d.MaxRecords = n }
}

func WithFields(fields ...string) Option {
	return func(d *Definition) { d.Fields = append([]string(nil), fields...) }
}

func WithLookups(lookups ...FieldLookup) Option {
	return func(d *Definition) { d.Lookups = append([]FieldLookup(nil), lookups...) }
}

func WithRenderer(r Renderer) Option {
	return func(d *Definition) { d.Renderer = r }
}

func WithoutPrefetch() Option {
	return func(d *Definition) { d.PrefetchRelated = false }
}

// WithAsync runs the report on a worker instead of in the request.
func WithAsync() Option {
	return func(d *Definition) { d.Async = true }
}

func WithRowData(fn RowFunc) Option {
	return func(d *Definition) { d.RowData = fn }
}

func WithFieldLookups(fn FieldLookupsFunc) Option {
	return func(d *Definition) { d.FieldLookups = fn }
}

// ActionName identifies the report among admin actions.
func (d *Definition) ActionName() string {
	return utils.Slugify(d.Name)
}

func (d *Definition) Validate() error {
	if d.ActionName() == "" {
		return fmt.Errorf("report name %q is empty after slugging", d.Name)
	}
	if d.MaxRecords < 0 {
		return fmt.Errorf("report %q: max records must not be negative", d.Name)
	}
	if d.Renderer == nil {
		return fmt.Errorf("report %q: renderer is required", d.Name)
	}

	seen := make(map[string]struct{}, len(d.Lookups))
	for i, l := range d.Lookups {
		if l.Column == "" {
			return fmt.Errorf("report %q: lookup %d: %w: empty column", d.Name, i, ErrInvalidLookup)
		}
		if _, ok := seen[l.Column]; ok {
			return fmt.Errorf("report %q: %w: %s", d.Name, ErrDuplicateColumn, l.Column)
		}
		seen[l.Column] = struct{}{}
		if err := l.Spec.validate(); err != nil {
			return fmt.Errorf("report %q: lookup %q: %w", d.Name, l.Column, err)
		}
	}

	fields := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if _, ok := fields[f]; ok {
			return fmt.Errorf("report %q: %w: %s", d.Name, ErrDuplicateColumn, f)
		}
		fields[f] = struct{}{}
	}
	return nil
}

func (d *Definition) clone() *Definition {
	c := *d
	c.Fields = append([]string(nil), d.Fields...)
	c.Lookups = append([]FieldLookup(nil), d.Lookups...)
	return &c
}

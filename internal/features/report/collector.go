package report

import (
	"context"
	"errors"
	"fmt"
)

// RowError records why the object at Index produced no row. Index is -1
// when collection itself was interrupted.
type RowError struct {
	Index  int
	Column string
	Err    error
}

func (e RowError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("collection stopped: %v", e.Err)
	}
	if e.Column == "" {
		return fmt.Sprintf("row %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("row %d, column %q: %v", e.Index, e.Column, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// FieldError is returned by RowData when a single column fails.
type FieldError struct {
	Column string
	Err    error
}

func (e *FieldError) Error() string { return fmt.Sprintf("column %q: %v", e.Column, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

// RowFunc turns one object into a row.
type RowFunc func(ctx context.Context, obj any, lookups []FieldLookup) (Row, error)

// RowData resolves every lookup against obj in lookup order.
func RowData(_ context.Context, obj any, lookups []FieldLookup) (Row, error) {
	row := make(Row, 0, len(lookups))
	for _, l := range lookups {
		v, err := Resolve(obj, l.Spec)
		if err != nil {
			return nil, &FieldError{Column: l.Column, Err: err}
		}
		row = append(row, Cell{Key: l.Column, Value: v})
	}
	return row, nil
}

// Collect builds one row per object. Objects whose row cannot be built are
// left out and reported as RowErrors.
func Collect(ctx context.Context, objects []any, lookups []FieldLookup) ([]Row, []RowError) {
	return collect(ctx, objects, lookups, RowData)
}

func collect(ctx context.Context, objects []any, lookups []FieldLookup, rowFn RowFunc) ([]Row, []RowError) {
	if rowFn == nil {
		rowFn = RowData
	}
	rows := make([]Row, 0, len(objects))
	var errs []RowError
	for i, obj := range objects {
		if err := ctx.Err(); err != nil {
			errs = append(errs, RowError{Index: -1, Err: err})
			break
		}
		row, err := buildRow(ctx, obj, lookups, rowFn)
		if err != nil {
			rerr := RowError{Index: i, Err: err}
			var fe *FieldError
			if errors.As(err, &fe) {
				rerr.Column = fe.Column
				rerr.Err = fe.Err
			}
			errs = append(errs, rerr)
			continue
		}
		rows = append(rows, row)
	}
	return rows, errs
}

func buildRow(ctx context.Context, obj any, lookups []FieldLookup, rowFn RowFunc) (row Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return rowFn(ctx, obj, lookups)
}

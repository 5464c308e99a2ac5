package record

import (
	"context"
	"fmt"

	"crm-reports/internal/features/module"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Selection is a re-materialized set of records.
type Selection interface {
	Query() Query
	Count(ctx context.Context) (int64, error)
	IDs(ctx context.Context) ([]string, error)
	Records(ctx context.Context) ([]Record, error)
}

// Selector turns a serializable Query into a live Selection.
type Selector interface {
	Select(ctx context.Context, q Query) (Selection, error)
}

type RecordSelector struct {
	repo    RecordRepository
	modules module.ModuleRepository
}

func NewRecordSelector(repo RecordRepository, modules module.ModuleRepository) Selector {
	return &RecordSelector{repo: repo, modules: modules}
}

func (s *RecordSelector) Select(ctx context.Context, q Query) (Selection, error) {
	if q.Module == "" {
		return nil, fmt.Errorf("selection requires a module")
	}
	return &selection{query: q, selector: s}, nil
}

type selection struct {
	query    Query
	selector *RecordSelector
}

func (s *selection) Query() Query { return s.query }

func (s *selection) Count(ctx context.Context) (int64, error) {
	return s.selector.repo.Count(ctx, s.query)
}

func (s *selection) IDs(ctx context.Context) ([]string, error) {
	if s.query.Explicit() && len(s.query.Filter) == 0 {
		return append(make([]string, 0, len(s.query.IDs)), s.query.IDs...), nil
	}
	records, err := s.selector.repo.Find(ctx, s.query)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID()
	}
	return ids, nil
}

func (s *selection) Records(ctx context.Context) ([]Record, error) {
	records, err := s.selector.repo.Find(ctx, s.query)
	if err != nil {
		return nil, err
	}
	if s.query.PrefetchRelated && len(records) > 0 {
		if err := s.selector.prefetch(ctx, s.query, records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// prefetch replaces lookup field ids with the referenced records, one query
// per lookup field.
func (s *RecordSelector) prefetch(ctx context.Context, q Query, records []Record) error {
	mod, err := s.modules.FindByName(ctx, q.Module)
	if err != nil {
		return fmt.Errorf("prefetch %s: %w", q.Module, err)
	}

	for _, field := range mod.LookupFields() {
		seen := make(map[string]struct{})
		var ids []string
		for _, rec := range records {
			id := idString(rec[field.Name])
			if id == "" {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}

		related, err := s.repo.FindByIDs(ctx, field.Lookup.LookupModule, q.TenantID, ids)
		if err != nil {
			return fmt.Errorf("prefetch %s.%s: %w", q.Module, field.Name, err)
		}
		byID := make(map[string]Record, len(related))
		for _, rel := range related {
			byID[rel.ID()] = rel
		}
		for _, rec := range records {
			if rel, ok := byID[idString(rec[field.Name])]; ok {
				rec[field.Name] = rel
			}
		}
	}
	return nil
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

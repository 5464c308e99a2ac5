package record

import (
	"strings"
)

// Record is a flattened entity record: data fields plus system fields
// (_id, id, created_at, ...). Prefetched lookup fields hold a nested Record.
type Record map[string]any

// Attr returns the named value. Dotted names walk into prefetched
// relations, e.g. "account.name".
func (r Record) Attr(name string) (any, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(name, ".")
	if !found {
		return nil, false
	}
	switch next := r[head].(type) {
	case Record:
		return next.Attr(rest)
	case map[string]any:
		return Record(next).Attr(rest)
	}
	return nil, false
}

// ID returns the primary key as a string.
func (r Record) ID() string {
	return idString(r["id"])
}

// Query describes a selection of records in a serializable form so it can
// be shipped to a worker and re-materialized there.
type Query struct {
	Module          string         `json:"module" validate:"required"`
	TenantID        string         `json:"tenant_id,omitempty"`
	IDs             []string       `json:"ids,omitempty"`
	ByID            bool           `json:"by_id,omitempty"` // IDs is the whole selection, even when empty
	Filter          map[string]any `json:"filter,omitempty"`
	PrefetchRelated bool           `json:"prefetch_related,omitempty"`
}

// ByIDs narrows q to an explicit primary key list. An empty list selects
// nothing.
func (q Query) ByIDs(ids []string) Query {
	return Query{
		Module:          q.Module,
		TenantID:        q.TenantID,
		IDs:             append(make([]string, 0, len(ids)), ids...),
		ByID:            true,
		PrefetchRelated: q.PrefetchRelated,
	}
}

// Explicit reports whether q is restricted to an id list.
func (q Query) Explicit() bool {
	return q.ByID || q.IDs != nil
}

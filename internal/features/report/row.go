package report

import (
	"bytes"
	"encoding/json"
)

// Cell is one column value of a Row.
type Cell struct {
	Key   string
	Value any
}

// Row is an ordered mapping of column name to value.
type Row []Cell

func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, c := range r {
		keys[i] = c.Key
	}
	return keys
}

func (r Row) Get(key string) (any, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of key or appends it.
func (r *Row) Set(key string, value any) {
	for i := range *r {
		if (*r)[i].Key == key {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Cell{Key: key, Value: value})
}

func (r Row) Len() int { return len(r) }

func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, c := range r {
		m[c.Key] = c.Value
	}
	return m
}

// MarshalJSON keeps column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// dataKeys lists the keys of rows in first-seen order.
func dataKeys(rows []Row) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, r := range rows {
		for _, c := range r {
			if _, ok := seen[c.Key]; !ok {
				seen[c.Key] = struct{}{}
				keys = append(keys, c.Key)
			}
		}
	}
	return keys
}

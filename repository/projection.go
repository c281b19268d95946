package repository

import (
	"encoding/json"
	"fmt"

	"storefront/query"
)

// Row is one projected list entry keyed by JSON field name.
type Row map[string]any

// columnSet resolves requested fields against an entity. Columns are plain
// table columns; associations are loaded separately by the caller.
type columnSet struct {
	table        string
	columns      map[string]bool
	associations map[string]bool
}

// resolve splits fields into qualified select columns and association names.
// The primary key is always selected so associations can be loaded.
func (s columnSet) resolve(fields []string) ([]string, map[string]bool, error) {
	selects := []string{s.table + ".id"}
	seen := map[string]bool{"id": true}
	assocs := make(map[string]bool)

	for _, field := range fields {
		switch {
		case s.columns[field]:
			if !seen[field] {
				selects = append(selects, s.table+"."+field)
				seen[field] = true
			}
		case s.associations[field]:
			assocs[field] = true
		default:
			return nil, nil, &query.ParamError{Param: "fields", Value: field}
		}
	}
	return selects, assocs, nil
}

// project keeps only the requested JSON fields of each row.
func project[T any](items []T, fields []string) ([]Row, error) {
	rows := make([]Row, 0, len(items))
	for i := range items {
		raw, err := json.Marshal(&items[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode row: %w", err)
		}

		var full map[string]any
		if err := json.Unmarshal(raw, &full); err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}

		row := make(Row, len(fields))
		for _, field := range fields {
			if value, ok := full[field]; ok {
				row[field] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

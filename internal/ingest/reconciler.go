package ingest

import (
	"sort"
	"strings"
)

// Reconcile maps a raw row onto the schema's canonical field names. For each
// field the first alias present among the trimmed keys wins; unknown keys are
// dropped and fields without any alias present are left absent.
func (s Schema[T]) Reconcile(row RawRow) Record {
	return reconcile(row, s.Fields)
}

func reconcile(row RawRow, fields []Field) Record {
	trimmed := trimKeys(row)

	out := make(Record, len(fields))
	for _, f := range fields {
		for _, alias := range f.Aliases {
			if v, ok := trimmed[alias]; ok {
				out[f.Name] = v
				break
			}
		}
	}
	return out
}

// trimKeys strips surrounding whitespace from every key. When two keys trim to
// the same text the already-trimmed one wins, otherwise the lexically smallest.
func trimKeys(row RawRow) map[string]any {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(row))
	for _, k := range keys {
		tk := strings.TrimSpace(k)
		if _, seen := out[tk]; seen && tk != k {
			continue
		}
		out[tk] = row[k]
	}
	return out
}

package docache

import "context"

// Saved writes records through to the cache after a create or update,
// keyed by primary key with alias fan-out. Records without a primary key
// value are skipped.
func (e *engine[V]) Saved(ctx context.Context, records ...V) error {
	entries := make([]Entry[V], 0, len(records))
	for i := range records {
		id, ok := e.field(records[i], e.pk)
		if !ok {
			e.log.Warn("saved record has no primary key", Fields{"entity": e.entity, "field": e.pk})
			continue
		}
		entries = append(entries, Entry[V]{Key: id, Value: &records[i]})
	}
	return e.SetMany(ctx, entries)
}

// Removed clears every slot a deleted record can occupy: its primary key
// and each additional key value.
func (e *engine[V]) Removed(ctx context.Context, records ...V) error {
	var keys []string
	for _, rec := range records {
		if id, ok := e.field(rec, e.pk); ok {
			keys = append(keys, id)
		}
		for _, f := range e.aliases {
			if av, ok := e.field(rec, f); ok {
				keys = append(keys, av)
			}
		}
	}
	return e.ClearMany(ctx, dedupe(keys))
}

package docache

import (
	"context"
	"fmt"
)

// ResolverOptions configure a Resolver.
type ResolverOptions[V any] struct {
	Entity         string
	Store          Store[V]
	PrimaryKey     string
	AdditionalKeys []string
	Field          FieldFunc[V]
	OnDataMiss     MissFunc
	Logger         Logger

	PropagateObserverErrors bool
}

// Resolver turns keys for one field into store records, in input order.
type Resolver[V any] struct {
	entity string
	store  Store[V]
	fields map[string]struct{}
	field  FieldFunc[V]
	miss   observer
	log    Logger
}

func NewResolver[V any](opts ResolverOptions[V]) (*Resolver[V], error) {
	if opts.Entity == "" {
		return nil, requireOpt("entity")
	}
	if opts.Store == nil {
		return nil, requireOpt("store")
	}
	field := opts.Field
	if field == nil {
		var ok bool
		if field, ok = defaultField[V](); !ok {
			return nil, fmt.Errorf("docache: field extractor is required for %T records", *new(V))
		}
	}
	log := coalesce[Logger](opts.Logger, NopLogger{})

	r := &Resolver[V]{
		entity: opts.Entity,
		store:  opts.Store,
		fields: make(map[string]struct{}, 1+len(opts.AdditionalKeys)),
		field:  field,
		log:    log,
		miss: observer{
			entity:    opts.Entity,
			fn:        opts.OnDataMiss,
			event:     eventDataMiss,
			propagate: opts.PropagateObserverErrors,
			log:       log,
		},
	}
	r.fields[coalesce(opts.PrimaryKey, DefaultPrimaryKey)] = struct{}{}
	for _, f := range opts.AdditionalKeys {
		r.fields[f] = struct{}{}
	}
	return r, nil
}

// ResolveMany issues one store lookup for keys and returns a slice aligned
// with keys. Absent positions are nil and each one emits a data miss.
func (r *Resolver[V]) ResolveMany(ctx context.Context, field string, keys []string) ([]*V, error) {
	if _, ok := r.fields[field]; !ok {
		return nil, unknownField(r.entity, field)
	}
	out := make([]*V, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	recs, err := r.store.Find(ctx, field, keys)
	if err != nil {
		return nil, &StoreError{Entity: r.entity, Field: field, Keys: len(keys), Err: err}
	}

	byKey := make(map[string]*V, len(recs))
	for i := range recs {
		if fv, ok := r.field(recs[i], field); ok {
			byKey[fv] = &recs[i] // last write wins
		}
	}

	for i, k := range keys {
		if v, ok := byKey[k]; ok {
			out[i] = v
			continue
		}
		if err := r.miss.notify(ctx, k); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ResolveOne is ResolveMany for a single key.
func (r *Resolver[V]) ResolveOne(ctx context.Context, field, key string) (V, bool, error) {
	var zero V
	res, err := r.ResolveMany(ctx, field, []string{key})
	if err != nil || res[0] == nil {
		return zero, false, err
	}
	return *res[0], true, nil
}

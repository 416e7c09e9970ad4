package docache

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/docache/codec"
	"github.com/unkn0wn-root/docache/internal/util"
	pr "github.com/unkn0wn-root/docache/provider"
)

type engine[V any] struct {
	entity   string
	prefix   string
	pk       string
	aliases  []string
	fields   map[string]struct{}
	provider pr.Provider
	codec    c.Codec[V]
	field    FieldFunc[V]
	resolver *Resolver[V]
	miss     observer
	log      Logger

	enabled  bool
	selfHeal bool
	flights  *singleflight.Group

	accessors map[string]Accessor[V]
}

func newEngine[V any](opts Options[V]) (*engine[V], error) {
	if opts.Provider == nil {
		return nil, requireOpt("provider")
	}
	if opts.Store == nil {
		return nil, requireOpt("store")
	}
	if opts.Entity == "" {
		return nil, requireOpt("entity")
	}

	e := &engine[V]{
		entity:   opts.Entity,
		prefix:   WithPrefix(opts.Entity, ""),
		pk:       coalesce(opts.PrimaryKey, DefaultPrimaryKey),
		provider: opts.Provider,
		enabled:  !opts.Disabled,
		selfHeal: opts.SelfHeal,
	}
	e.log = coalesce[Logger](opts.Logger, NopLogger{})
	e.codec = coalesce[c.Codec[V]](opts.Codec, c.JSON[V]{})

	e.fields = map[string]struct{}{e.pk: {}}
	for _, f := range opts.AdditionalKeys {
		if f == "" {
			return nil, fmt.Errorf("docache: empty additional key field")
		}
		if _, dup := e.fields[f]; dup {
			continue
		}
		e.fields[f] = struct{}{}
		e.aliases = append(e.aliases, f)
	}

	e.field = opts.Field
	if e.field == nil {
		var ok bool
		if e.field, ok = defaultField[V](); !ok {
			return nil, fmt.Errorf("docache: field extractor is required for %T records", *new(V))
		}
	}

	r, err := NewResolver[V](ResolverOptions[V]{
		Entity:                  opts.Entity,
		Store:                   opts.Store,
		PrimaryKey:              e.pk,
		AdditionalKeys:          e.aliases,
		Field:                   e.field,
		OnDataMiss:              opts.OnDataMiss,
		Logger:                  e.log,
		PropagateObserverErrors: opts.PropagateObserverErrors,
	})
	if err != nil {
		return nil, err
	}
	e.resolver = r

	e.miss = observer{
		entity:    opts.Entity,
		fn:        opts.OnCacheMiss,
		event:     eventCacheMiss,
		propagate: opts.PropagateObserverErrors,
		log:       e.log,
	}
	if opts.CoalesceFills {
		e.flights = &singleflight.Group{}
	}

	e.accessors = make(map[string]Accessor[V], len(e.fields))
	for f := range e.fields {
		e.accessors[f] = e.accessor(f)
	}
	return e, nil
}

func (e *engine[V]) Enabled() bool  { return e.enabled }
func (e *engine[V]) Entity() string { return e.entity }

func (e *engine[V]) Close(ctx context.Context) error {
	if e.provider != nil {
		return e.provider.Close(ctx)
	}
	return nil
}

func (e *engine[V]) WithPrefix(rawKey string) string { return e.prefix + rawKey }

func (e *engine[V]) By(field string) (Accessor[V], bool) {
	a, ok := e.accessors[field]
	return a, ok
}

func (e *engine[V]) accessor(field string) Accessor[V] {
	return Accessor[V]{
		Field: field,
		Get: func(ctx context.Context, key string) (V, bool, error) {
			return e.GetBy(ctx, field, key)
		},
		GetMany: func(ctx context.Context, keys []string) ([]*V, error) {
			return e.GetManyBy(ctx, field, keys)
		},
	}
}

func (e *engine[V]) Get(ctx context.Context, key string) (V, bool, error) {
	return e.GetBy(ctx, e.pk, key)
}

func (e *engine[V]) GetMany(ctx context.Context, keys []string) ([]*V, error) {
	return e.GetManyBy(ctx, e.pk, keys)
}

func (e *engine[V]) GetBy(ctx context.Context, field, key string) (V, bool, error) {
	var zero V
	res, err := e.GetManyBy(ctx, field, []string{key})
	if err != nil || res[0] == nil {
		return zero, false, err
	}
	return *res[0], true, nil
}

func (e *engine[V]) GetManyBy(ctx context.Context, field string, keys []string) ([]*V, error) {
	if _, ok := e.fields[field]; !ok {
		return nil, unknownField(e.entity, field)
	}
	if !e.enabled {
		return e.resolver.ResolveMany(ctx, field, keys)
	}
	out := make([]*V, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	gets := make([]pr.Op, len(keys))
	for i, k := range keys {
		gets[i] = pr.Get(e.WithPrefix(k))
	}
	res, err := e.exec(ctx, gets)
	if err != nil {
		return nil, err
	}

	hits := make(map[string]*V, len(keys))
	bad := make(map[string]struct{})
	for i, r := range res {
		k := keys[i]
		if !r.Found || len(r.Value) == 0 {
			continue
		}
		if nullPayload(r.Value) {
			bad[k] = struct{}{}
			continue
		}
		if _, ok := hits[k]; ok {
			continue
		}
		if _, ok := bad[k]; ok {
			continue
		}
		v, err := e.codec.Decode(r.Value)
		if err != nil {
			if !e.selfHeal {
				return nil, &DecodeError{Key: gets[i].Key, Err: err}
			}
			bad[k] = struct{}{}
			continue
		}
		if isNull(v) {
			bad[k] = struct{}{}
			continue
		}
		hits[k] = &v
	}

	var missed []string
	for _, k := range keys {
		if _, ok := hits[k]; !ok {
			missed = append(missed, k)
		}
	}
	if len(missed) == 0 {
		for i, k := range keys {
			out[i] = hits[k]
		}
		return out, nil
	}

	for _, k := range missed {
		if err := e.miss.notify(ctx, k); err != nil {
			return nil, err
		}
	}

	recs, shared, err := e.resolve(ctx, field, missed)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]*V, len(recs))
	writes := newBatch(len(recs) * (1 + len(e.aliases)))
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		fv, ok := e.field(*rec, field)
		if !ok {
			continue
		}
		if _, seen := resolved[fv]; seen {
			continue
		}
		resolved[fv] = rec
		payload, err := e.codec.Encode(*rec)
		if err != nil {
			return nil, err
		}
		if shared {
			// other callers of the flight hold the same records
			own, err := e.codec.Decode(payload)
			if err != nil {
				return nil, &DecodeError{Key: e.WithPrefix(fv), Err: err}
			}
			resolved[fv] = &own
		}
		if id, ok := e.field(*rec, e.pk); ok {
			writes.set(e.WithPrefix(id), payload)
		}
		e.stageAliases(writes, *rec, payload)
	}
	for k := range bad {
		sk := e.WithPrefix(k)
		if !writes.has(sk) {
			writes.del(sk)
		}
	}

	if writes.len() > 0 {
		if _, err := e.provider.Exec(ctx, writes.ops); err != nil {
			return nil, err
		}
	}
	e.log.Debug("cache fill", Fields{
		"entity":   e.entity,
		"field":    field,
		"keys":     len(keys),
		"missed":   len(missed),
		"resolved": len(resolved),
		"writes":   writes.len(),
		"healed":   len(bad),
	})

	for i, k := range keys {
		if v, ok := hits[k]; ok {
			out[i] = v
		} else {
			out[i] = resolved[k]
		}
	}
	return out, nil
}

// resolve looks up missed keys in the store. With coalescing on, identical
// concurrent key sets share one lookup made under the first caller's ctx;
// shared reports that the returned records are also held by other callers.
func (e *engine[V]) resolve(ctx context.Context, field string, missed []string) (recs []*V, shared bool, err error) {
	if e.flights == nil {
		recs, err = e.resolver.ResolveMany(ctx, field, missed)
		return recs, false, err
	}
	uniq := dedupe(missed)
	v, err, shared := e.flights.Do(util.FlightKey(field, uniq), func() (any, error) {
		return e.resolver.ResolveMany(ctx, field, uniq)
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]*V), shared, nil
}

func (e *engine[V]) stageAliases(b *batch, v V, payload []byte) {
	for _, f := range e.aliases {
		if av, ok := e.field(v, f); ok {
			b.set(e.WithPrefix(av), payload)
		}
	}
}

func (e *engine[V]) Set(ctx context.Context, key string, value *V) error {
	return e.SetMany(ctx, []Entry[V]{{Key: key, Value: value}})
}

func (e *engine[V]) SetMany(ctx context.Context, entries []Entry[V]) error {
	if !e.enabled {
		return nil
	}
	writes := newBatch(len(entries) * (1 + len(e.aliases)))
	for _, en := range entries {
		if en.Value == nil || isNull(*en.Value) {
			continue
		}
		payload, err := e.codec.Encode(*en.Value)
		if err != nil {
			return err
		}
		if nullPayload(payload) {
			continue
		}
		writes.set(e.WithPrefix(en.Key), payload)
		e.stageAliases(writes, *en.Value, payload)
	}
	if writes.len() == 0 {
		return nil
	}
	if _, err := e.provider.Exec(ctx, writes.ops); err != nil {
		return err
	}
	e.log.Debug("cache set", Fields{"entity": e.entity, "entries": len(entries), "writes": writes.len()})
	return nil
}

func (e *engine[V]) Clear(ctx context.Context, key string) error {
	return e.ClearMany(ctx, []string{key})
}

// ClearMany deletes the primary-key slots for keys. It runs even when the
// engine is disabled so re-enabling never serves entries written before.
func (e *engine[V]) ClearMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	dels := make([]pr.Op, len(keys))
	for i, k := range keys {
		dels[i] = pr.Del(e.WithPrefix(k))
	}
	if _, err := e.provider.Exec(ctx, dels); err != nil {
		return err
	}
	e.log.Debug("cache clear", Fields{"entity": e.entity, "keys": len(keys)})
	return nil
}

func (e *engine[V]) exec(ctx context.Context, ops []pr.Op) ([]pr.Result, error) {
	res, err := e.provider.Exec(ctx, ops)
	if err != nil {
		return nil, err
	}
	if len(res) < len(ops) {
		return nil, fmt.Errorf("%w: %d results for %d ops", ErrShortResult, len(res), len(ops))
	}
	return res, nil
}

// batch stages provider writes with one op per storage key; a later write to
// the same key replaces the earlier one in place.
type batch struct {
	ops []pr.Op
	idx map[string]int
}

func newBatch(n int) *batch {
	return &batch{ops: make([]pr.Op, 0, n), idx: make(map[string]int, n)}
}

func (b *batch) set(key string, val []byte) { b.put(pr.Set(key, val)) }
func (b *batch) del(key string)             { b.put(pr.Del(key)) }

func (b *batch) put(op pr.Op) {
	if i, ok := b.idx[op.Key]; ok {
		b.ops[i] = op
		return
	}
	b.idx[op.Key] = len(b.ops)
	b.ops = append(b.ops, op)
}

func (b *batch) has(key string) bool {
	_, ok := b.idx[key]
	return ok
}

func (b *batch) len() int { return len(b.ops) }

package docache

import (
	"context"
	"fmt"

	c "github.com/unkn0wn-root/docache/codec"
	pr "github.com/unkn0wn-root/docache/provider"
)

// DefaultPrimaryKey is the primary key field used when Options.PrimaryKey is empty.
const DefaultPrimaryKey = "_id"

// Engine is the cache-aside API for one entity type.
// V is the caller's record type. Batched results are aligned with the input
// keys; a nil element means the record is absent from both cache and store.
type Engine[V any] interface {
	Enabled() bool
	Entity() string
	Close(context.Context) error

	// Reads by primary key
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	GetMany(ctx context.Context, keys []string) ([]*V, error)

	// Reads by primary key or any additional key field
	GetBy(ctx context.Context, field, key string) (v V, ok bool, err error)
	GetManyBy(ctx context.Context, field string, keys []string) ([]*V, error)

	// Per-field accessors registered at construction.
	By(field string) (Accessor[V], bool)

	// Write-through with alias fan-out
	Set(ctx context.Context, key string, value *V) error
	SetMany(ctx context.Context, entries []Entry[V]) error

	// Invalidation by primary key (no alias fan-out)
	Clear(ctx context.Context, key string) error
	ClearMany(ctx context.Context, keys []string) error

	// Lifecycle helpers for create/update/delete hooks
	Saved(ctx context.Context, records ...V) error
	Removed(ctx context.Context, records ...V) error

	WithPrefix(rawKey string) string
}

// Entry is one write for SetMany. A nil Value is skipped.
type Entry[V any] struct {
	Key   string
	Value *V
}

// Accessor is GetBy/GetManyBy bound to one field.
type Accessor[V any] struct {
	Field   string
	Get     func(ctx context.Context, key string) (V, bool, error)
	GetMany func(ctx context.Context, keys []string) ([]*V, error)
}

// Store is the backing record store. Find returns every record whose field
// value is one of keys, in any order. Field values are assumed unique.
type Store[V any] interface {
	Find(ctx context.Context, field string, keys []string) ([]V, error)
}

// StoreFunc adapts a function to Store.
type StoreFunc[V any] func(ctx context.Context, field string, keys []string) ([]V, error)

func (f StoreFunc[V]) Find(ctx context.Context, field string, keys []string) ([]V, error) {
	return f(ctx, field, keys)
}

// MissFunc observes a miss for (entity, raw key).
type MissFunc func(ctx context.Context, entity, key string) error

// Options configure an Engine.
// Entity, Provider and Store are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Entity   string // entity type name; lowercased into the cache key prefix
	Provider pr.Provider
	Store    Store[V]

	PrimaryKey     string       // "" => "_id"
	AdditionalKeys []string     // secondary fields that also identify a record
	Field          FieldFunc[V] // nil => DocField when V is Doc
	Codec          c.Codec[V]   // nil => compact JSON
	Logger         Logger       // if nil, NopLogger is used
	Disabled       bool         // default false (enabled)

	OnCacheMiss MissFunc
	OnDataMiss  MissFunc

	// PropagateObserverErrors returns observer failures to the caller.
	// Default: failures are logged and swallowed.
	PropagateObserverErrors bool

	// SelfHeal treats malformed cache payloads as misses and deletes them.
	// Default: a malformed payload fails the read with *DecodeError.
	SelfHeal bool

	// CoalesceFills shares one store lookup between concurrent fills of the
	// same missed key set.
	CoalesceFills bool
}

func New[V any](opts Options[V]) (Engine[V], error) {
	return newEngine[V](opts)
}

func requireOpt(name string) error {
	return fmt.Errorf("docache: %s is required", name)
}

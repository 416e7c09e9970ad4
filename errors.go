package docache

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned for lookups on a field that is neither the
	// primary key nor a declared additional key.
	ErrUnknownField = errors.New("docache: unknown key field")

	// ErrShortResult means a provider returned fewer results than ops.
	ErrShortResult = errors.New("docache: provider returned short result")
)

// DecodeError reports a cached payload that the codec could not parse.
type DecodeError struct {
	Key string // storage key
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("docache: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StoreError wraps a failed backing store lookup.
type StoreError struct {
	Entity string
	Field  string
	Keys   int
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("docache: %s find by %s (%d keys): %v", e.Entity, e.Field, e.Keys, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ObserverError wraps a failing miss observer when
// Options.PropagateObserverErrors is set.
type ObserverError struct {
	Event  string // "cache_miss" or "data_miss"
	Entity string
	Key    string
	Err    error
}

func (e *ObserverError) Error() string {
	return fmt.Sprintf("docache: %s observer for %s:%s: %v", e.Event, e.Entity, e.Key, e.Err)
}

func (e *ObserverError) Unwrap() error { return e.Err }

func unknownField(entity, field string) error {
	return fmt.Errorf("%w: %s.%s", ErrUnknownField, entity, field)
}

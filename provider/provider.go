// Package provider defines the cache backend abstraction used by docache.
//
// A Provider executes an ordered batch of GET/SET/DEL operations as one
// logical round trip and reports per-operation results in request order.
// Implementations MUST be byte-for-byte transparent: a GET must return exactly
// the bytes previously passed to SET for that key.
//
// The keyspace "<lowercase entity>:" is owned by the engine bound to that
// entity. External code should write there only through the same engine.
package provider

import (
	"context"
	"errors"
)

// OpKind selects the command an Op runs.
type OpKind uint8

const (
	OpGet OpKind = iota + 1
	OpSet
	OpDel
)

func (k OpKind) String() string {
	switch k {
	case OpGet:
		return "get"
	case OpSet:
		return "set"
	case OpDel:
		return "del"
	default:
		return "unknown"
	}
}

// Op is one command inside a batch. Value is used by OpSet only.
type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

// Result is the outcome of one Op. Found and Value are meaningful for OpGet;
// SET and DEL results are zero and may be ignored.
type Result struct {
	Value []byte
	Found bool
}

var ErrUnknownOp = errors.New("provider: unknown op kind")

// Provider is a keyed byte store that runs batches.
// Must be safe for concurrent use.
type Provider interface {
	// Exec runs ops in order and returns len(ops) results.
	// A transport failure fails the whole batch.
	Exec(ctx context.Context, ops []Op) ([]Result, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

func Get(key string) Op             { return Op{Kind: OpGet, Key: key} }
func Set(key string, val []byte) Op { return Op{Kind: OpSet, Key: key, Value: val} }
func Del(key string) Op             { return Op{Kind: OpDel, Key: key} }

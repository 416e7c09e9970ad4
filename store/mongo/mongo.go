// Package mongo is a docache.Store over a MongoDB collection. Each lookup is
// one find with an $in filter on the requested field.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unkn0wn-root/docache"
)

var ErrNilCollection = errors.New("mongo store: nil collection")

type Config struct {
	Collection *mongo.Collection
	// ObjectIDFields hold ObjectIDs in the database; keys for these fields
	// are hex strings. Keys that are not valid hex never match.
	ObjectIDFields []string
}

type Store[V any] struct {
	coll      *mongo.Collection
	oidFields map[string]struct{}
	project   func(V) V
}

// New decodes results straight into V, so V carries bson tags.
func New[V any](cfg Config) (*Store[V], error) {
	if cfg.Collection == nil {
		return nil, ErrNilCollection
	}
	s := &Store[V]{coll: cfg.Collection, oidFields: make(map[string]struct{}, len(cfg.ObjectIDFields))}
	for _, f := range cfg.ObjectIDFields {
		s.oidFields[f] = struct{}{}
	}
	return s, nil
}

// NewDocs returns a store of plain docache.Doc projections: ObjectIDs become
// hex strings, BSON dates become time.Time and nested documents become maps.
func NewDocs(cfg Config) (*Store[docache.Doc], error) {
	s, err := New[docache.Doc](cfg)
	if err != nil {
		return nil, err
	}
	s.project = ProjectDoc
	return s, nil
}

func (s *Store[V]) Find(ctx context.Context, field string, keys []string) ([]V, error) {
	in := s.values(field, keys)
	if len(in) == 0 {
		return nil, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{field: bson.M{"$in": in}})
	if err != nil {
		return nil, err
	}
	var out []V
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if s.project != nil {
		for i := range out {
			out[i] = s.project(out[i])
		}
	}
	return out, nil
}

func (s *Store[V]) values(field string, keys []string) []any {
	_, oid := s.oidFields[field]
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		if !oid {
			out = append(out, k)
			continue
		}
		id, err := primitive.ObjectIDFromHex(k)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ProjectDoc converts driver types in d to plain JSON-friendly values.
func ProjectDoc(d docache.Doc) docache.Doc {
	out := make(docache.Doc, len(d))
	for k, v := range d {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(x.T), 0).UTC()
	case primitive.Decimal128:
		return x.String()
	case primitive.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = plain(e.Value)
		}
		return m
	case primitive.M:
		return ProjectDoc(docache.Doc(x))
	case map[string]any:
		return ProjectDoc(x)
	case primitive.A:
		a := make([]any, len(x))
		for i, e := range x {
			a[i] = plain(e)
		}
		return a
	case []any:
		a := make([]any, len(x))
		for i, e := range x {
			a[i] = plain(e)
		}
		return a
	default:
		return v
	}
}

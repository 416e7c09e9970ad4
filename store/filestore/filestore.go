// Package filestore is a docache.Store backed by a JSON file holding an
// array of documents. Writes replace the file atomically.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/unkn0wn-root/docache"
)

var ErrNoPrimaryKey = errors.New("filestore: document has no primary key")

type Store struct {
	mu   sync.RWMutex
	path string
	pk   string
	docs []docache.Doc
}

var _ docache.Store[docache.Doc] = (*Store)(nil)

// Open loads path; a missing file is an empty store. pk "" => "_id".
func Open(path, pk string) (*Store, error) {
	if pk == "" {
		pk = docache.DefaultPrimaryKey
	}
	s := &Store{path: path, pk: pk}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return s, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&s.docs); err != nil {
		return nil, fmt.Errorf("filestore: parse %s: %w", path, err)
	}
	return s, nil
}

// Find returns copies of the documents whose field value is in keys.
func (s *Store) Find(_ context.Context, field string, keys []string) ([]docache.Doc, error) {
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []docache.Doc
	for _, d := range s.docs {
		v, ok := docache.DocField(d, field)
		if !ok {
			continue
		}
		if _, hit := want[v]; hit {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

// Put inserts or replaces d by primary key and persists the file.
func (s *Store) Put(_ context.Context, d docache.Doc) error {
	id, ok := docache.DocField(d, s.pk)
	if !ok {
		return ErrNoPrimaryKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]docache.Doc, 0, len(s.docs)+1)
	replaced := false
	for _, cur := range s.docs {
		if v, _ := docache.DocField(cur, s.pk); v == id {
			next = append(next, clone(d))
			replaced = true
			continue
		}
		next = append(next, cur)
	}
	if !replaced {
		next = append(next, clone(d))
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.docs = next
	return nil
}

// Delete removes the document with primary key id and returns it.
func (s *Store) Delete(_ context.Context, id string) (docache.Doc, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.docs {
		if v, _ := docache.DocField(cur, s.pk); v != id {
			continue
		}
		next := make([]docache.Doc, 0, len(s.docs)-1)
		next = append(next, s.docs[:i]...)
		next = append(next, s.docs[i+1:]...)
		if err := s.persist(next); err != nil {
			return nil, false, err
		}
		s.docs = next
		return cur, true, nil
	}
	return nil, false, nil
}

func (s *Store) persist(docs []docache.Doc) error {
	b, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader(append(b, '\n')))
}

func clone(d docache.Doc) docache.Doc {
	out := make(docache.Doc, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

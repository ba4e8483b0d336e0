// Package memory is an in-process store used for development and tests. All
// collections share one lock so operations spanning two collections are
// atomic.
package memory

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

type DB struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

func NewDB() *DB {
	return &DB{collections: make(map[string]*collection)}
}

// Ping always succeeds; it mirrors the postgres health check.
func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

type collection struct {
	docs  map[uuid.UUID][]byte
	order []uuid.UUID
	keys  map[string]uuid.UUID
}

func (db *DB) register(name string) *collection {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.collections[name]
	if !ok {
		c = &collection{
			docs: make(map[uuid.UUID][]byte),
			keys: make(map[string]uuid.UUID),
		}
		db.collections[name] = c
	}
	return c
}

// Store implements domain.Repository over one collection. Documents are held
// gob-encoded so callers never share memory with the store.
type Store[T any, P domain.DocumentPtr[T]] struct {
	db       *DB
	coll     *collection
	notFound error

	key       func(P) string
	duplicate error
}

func newStore[T any, P domain.DocumentPtr[T]](db *DB, name string, notFound error) *Store[T, P] {
	return &Store[T, P]{db: db, coll: db.register(name), notFound: notFound}
}

// unique enforces a unique natural key across the collection.
func (s *Store[T, P]) unique(key func(P) string, duplicate error) *Store[T, P] {
	s.key = key
	s.duplicate = duplicate
	return s
}

func (s *Store[T, P]) List(ctx context.Context) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]*T, 0, len(s.coll.order))
	for _, id := range s.coll.order {
		doc, err := s.decode(s.coll.docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *Store[T, P]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.get(id)
}

func (s *Store[T, P]) Create(ctx context.Context, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.insert(doc)
}

func (s *Store[T, P]) Update(ctx context.Context, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.replace(doc)
}

func (s *Store[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, err := s.get(id)
	if err != nil {
		return err
	}
	if s.key != nil {
		delete(s.coll.keys, s.key(P(stored)))
	}
	delete(s.coll.docs, id)
	s.coll.order = slices.DeleteFunc(s.coll.order, func(v uuid.UUID) bool { return v == id })
	return nil
}

// get, insert and replace expect the caller to hold db.mu.

func (s *Store[T, P]) get(id uuid.UUID) (*T, error) {
	raw, ok := s.coll.docs[id]
	if !ok {
		return nil, s.notFound
	}
	return s.decode(raw)
}

func (s *Store[T, P]) lookup(key string) (*T, bool, error) {
	id, ok := s.coll.keys[key]
	if !ok {
		return nil, false, nil
	}
	doc, err := s.get(id)
	return doc, err == nil, err
}

func (s *Store[T, P]) insert(doc *T) error {
	meta := P(doc).Meta()
	if meta.ID == uuid.Nil {
		meta.ID = uuid.New()
	}
	if _, exists := s.coll.docs[meta.ID]; exists {
		return fmt.Errorf("document %s %w", meta.ID, domain.ErrDuplicate)
	}

	var key string
	if s.key != nil {
		key = s.key(P(doc))
		if _, taken := s.coll.keys[key]; taken {
			return s.duplicate
		}
	}

	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	meta.Version = 1

	raw, err := encode(doc)
	if err != nil {
		return err
	}

	s.coll.docs[meta.ID] = raw
	s.coll.order = append(s.coll.order, meta.ID)
	if s.key != nil {
		s.coll.keys[key] = meta.ID
	}
	return nil
}

func (s *Store[T, P]) replace(doc *T) error {
	meta := P(doc).Meta()
	stored, err := s.get(meta.ID)
	if err != nil {
		return err
	}
	prev := P(stored).Meta()
	if prev.Version != meta.Version {
		return domain.ErrVersionConflict
	}

	var oldKey, newKey string
	if s.key != nil {
		oldKey, newKey = s.key(P(stored)), s.key(P(doc))
		if owner, taken := s.coll.keys[newKey]; taken && owner != meta.ID {
			return s.duplicate
		}
	}

	snapshot := *meta
	meta.CreatedAt = prev.CreatedAt
	meta.UpdatedAt = time.Now().UTC()
	meta.Version++

	raw, err := encode(doc)
	if err != nil {
		*meta = snapshot
		return err
	}

	s.coll.docs[meta.ID] = raw
	if s.key != nil && oldKey != newKey {
		delete(s.coll.keys, oldKey)
		s.coll.keys[newKey] = meta.ID
	}
	return nil
}

func (s *Store[T, P]) decode(raw []byte) (*T, error) {
	doc := new(T)
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	// gob drops empty slices; defaults restore them.
	P(doc).ApplyDefaults()
	return doc, nil
}

var bufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 1024))
	},
}

func encode[T any](doc *T) ([]byte, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := gob.NewEncoder(buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	// the buffer goes back to the pool; stored bytes must not alias it
	return bytes.Clone(buf.Bytes()), nil
}

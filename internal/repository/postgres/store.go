// Package postgres implements the repositories on top of gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

// Store implements domain.Repository for one table. Writes are guarded by the
// version column: an UPDATE that matches no row at the expected version is a
// conflict unless the row is gone.
type Store[T any, P domain.DocumentPtr[T]] struct {
	db        *gorm.DB
	notFound  error
	duplicate error
}

func newStore[T any, P domain.DocumentPtr[T]](db *gorm.DB, notFound, duplicate error) *Store[T, P] {
	return &Store[T, P]{db: db, notFound: notFound, duplicate: duplicate}
}

func (s *Store[T, P]) List(ctx context.Context) ([]*T, error) {
	var docs []*T
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

func (s *Store[T, P]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.get(s.db.WithContext(ctx), id)
}

func (s *Store[T, P]) Create(ctx context.Context, doc *T) error {
	return s.create(s.db.WithContext(ctx), doc)
}

func (s *Store[T, P]) Update(ctx context.Context, doc *T) error {
	return s.update(s.db.WithContext(ctx), doc)
}

func (s *Store[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.notFound
	}
	return nil
}

func (s *Store[T, P]) get(tx *gorm.DB, id uuid.UUID) (*T, error) {
	doc := new(T)
	if err := tx.First(doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.notFound
		}
		return nil, fmt.Errorf("fetching document: %w", err)
	}
	return doc, nil
}

func (s *Store[T, P]) create(tx *gorm.DB, doc *T) error {
	meta := P(doc).Meta()
	if meta.ID == uuid.Nil {
		meta.ID = uuid.New()
	}
	meta.Version = 1

	if err := tx.Create(doc).Error; err != nil {
		return s.translate(err, "creating document")
	}
	return nil
}

func (s *Store[T, P]) update(tx *gorm.DB, doc *T) error {
	meta := P(doc).Meta()
	expected := meta.Version
	meta.Version = expected + 1

	res := tx.Model(doc).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at").
		Updates(doc)
	if res.Error != nil {
		meta.Version = expected
		return s.translate(res.Error, "updating document")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	meta.Version = expected
	var count int64
	if err := tx.Model(new(T)).Where("id = ?", meta.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("checking document: %w", err)
	}
	if count == 0 {
		return s.notFound
	}
	return domain.ErrVersionConflict
}

func (s *Store[T, P]) translate(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if s.duplicate != nil {
			return s.duplicate
		}
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Base is the header every stored document carries. Version starts at 1 and
// is bumped by every successful write; writers must present the version they
// read.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Version   int       `gorm:"column:version;not null;default:1" json:"version"`
}

func (b *Base) Meta() *Base {
	return b
}

// Document is implemented by pointers to every stored resource type.
type Document interface {
	Meta() *Base
	// ApplyDefaults fills optional fields that have a documented default.
	ApplyDefaults()
	// Validate reports schema violations as a *ValidationError.
	Validate() error
}

// DocumentPtr constrains P to be *T with T a stored resource type.
type DocumentPtr[T any] interface {
	*T
	Document
}

// Repository is the CRUD contract shared by every resource collection.
type Repository[T any] interface {
	// List returns every document in creation order.
	List(ctx context.Context) ([]*T, error)

	GetByID(ctx context.Context, id uuid.UUID) (*T, error)

	// Create assigns an ID when the document has none and persists it at version 1.
	Create(ctx context.Context, doc *T) error

	// Update replaces the stored document if its version still equals doc's
	// version, then bumps doc's version. Returns ErrVersionConflict otherwise.
	Update(ctx context.Context, doc *T) error

	Delete(ctx context.Context, id uuid.UUID) error
}

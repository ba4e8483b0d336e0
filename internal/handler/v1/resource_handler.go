package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
)

type crudService[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, doc *T, actor service.Actor) (*T, error)
	Update(ctx context.Context, id uuid.UUID, patch []byte, expectedVersion *int, actor service.Actor) (*T, error)
	Delete(ctx context.Context, id uuid.UUID, actor service.Actor) error
}

// resourceHandler serves the generic CRUD routes of one collection.
type resourceHandler[T any] struct {
	svc crudService[T]
}

func newResourceHandler[T any](svc crudService[T]) resourceHandler[T] {
	return resourceHandler[T]{svc: svc}
}

func (h resourceHandler[T]) List(c *gin.Context) {
	docs, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, docs)
}

func (h resourceHandler[T]) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, doc)
}

func (h resourceHandler[T]) Create(c *gin.Context) {
	doc := new(T)
	if !bindJSON(c, doc) {
		return
	}
	created, err := h.svc.Create(c.Request.Context(), doc, middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, created)
}

func (h resourceHandler[T]) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	version, ok := parseIfMatch(c)
	if !ok {
		return
	}
	patch, ok := readPatch(c)
	if !ok {
		return
	}
	doc, err := h.svc.Update(c.Request.Context(), id, patch, version, middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, doc)
}

func (h resourceHandler[T]) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, middleware.ActorFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondDeleted(c)
}

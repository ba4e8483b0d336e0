package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

type Repository interface {
	domain.Repository[Patient]

	// GetByIDs fetches the patients with the given ids in one query. Ids with
	// no stored patient are absent from the result.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Patient, error)
}

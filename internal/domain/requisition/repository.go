package requisition

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

type Repository interface {
	domain.Repository[Requisition]

	// IssueItem marks the item Issued with qty and decrements the stock item
	// named by its medicine in one transaction. Returns the updated requisition.
	IssueItem(ctx context.Context, requisitionID, itemID uuid.UUID, qty int) (*Requisition, error)
}

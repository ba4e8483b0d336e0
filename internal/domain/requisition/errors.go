package requisition

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

var (
	ErrRequisitionNotFound   = fmt.Errorf("requisition %w", domain.ErrNotFound)
	ErrItemNotFound          = fmt.Errorf("requisition item %w", domain.ErrNotFound)
	ErrInvalidItemTransition = fmt.Errorf("requisition item is no longer pending: %w", domain.ErrInvalidState)
)

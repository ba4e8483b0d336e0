package visit

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

var (
	ErrVisitNotFound           = fmt.Errorf("visit %w", domain.ErrNotFound)
	ErrInvalidStatusTransition = fmt.Errorf("invalid visit status transition: %w", domain.ErrInvalidState)
	ErrVisitNotEditable        = fmt.Errorf("visit cannot be modified in its current status: %w", domain.ErrInvalidState)
)

package stock

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

var (
	ErrItemNotFound      = fmt.Errorf("stock item %w", domain.ErrNotFound)
	ErrItemExists        = fmt.Errorf("stock item with this name %w", domain.ErrDuplicate)
	ErrInsufficientStock = fmt.Errorf("insufficient stock: %w", domain.ErrInvalidState)
	ErrInvalidQuantity   = &domain.ValidationError{Fields: []string{"qty must be greater than zero"}}
	ErrNameRequired      = &domain.ValidationError{Fields: []string{"medicine is required"}}
)

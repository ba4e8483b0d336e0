package stock

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

type Repository interface {
	domain.Repository[Item]

	// Receive adds qty to the item named name, creating it when absent, as a
	// single atomic store operation. Returns the resulting item.
	Receive(ctx context.Context, name string, qty int) (*Item, error)
}

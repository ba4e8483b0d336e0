package dispensing

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

var (
	ErrDispensingNotFound       = fmt.Errorf("dispensing record %w", domain.ErrNotFound)
	ErrDirectDispensingNotFound = fmt.Errorf("direct dispensing record %w", domain.ErrNotFound)
)

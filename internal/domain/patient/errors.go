package patient

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

var ErrPatientNotFound = fmt.Errorf("patient %w", domain.ErrNotFound)

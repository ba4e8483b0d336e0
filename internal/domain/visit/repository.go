package visit

import "github.com/dmehra2102/prod-golang-projects/hms/internal/domain"

// Repository stores visits. Every lifecycle step is a versioned Update of the
// whole document, so racing transitions surface as domain.ErrVersionConflict.
type Repository interface {
	domain.Repository[Visit]
}

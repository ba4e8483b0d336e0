package stock

import (
	"strings"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

// Item is the on-hand quantity of one medicine. Name is the natural key and is
// matched case-sensitively.
type Item struct {
	domain.Base

	Name     string `gorm:"column:name;type:varchar(255);not null;uniqueIndex" json:"name"`
	Quantity int    `gorm:"column:quantity;not null;default:0" json:"quantity"`
}

func (Item) TableName() string {
	return "pharmacy.stock_items"
}

func (i *Item) ApplyDefaults() {
	i.Name = strings.TrimSpace(i.Name)
}

func (i *Item) Validate() error {
	var errs []string
	if i.Name == "" {
		errs = append(errs, "name is required")
	}
	if i.Quantity < 0 {
		errs = append(errs, "quantity cannot be negative")
	}
	return domain.NewValidationError(errs)
}

type ReceiveCommand struct {
	Medicine string
	Qty      int
}

func (c ReceiveCommand) Validate() error {
	if strings.TrimSpace(c.Medicine) == "" {
		return ErrNameRequired
	}
	if c.Qty <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

var ErrInvoiceNotFound = fmt.Errorf("invoice %w", domain.ErrNotFound)

type Item struct {
	Medicine    string     `json:"medicine"`
	Qty         int        `json:"qty"`
	UnitPrice   float64    `json:"unitPrice,omitempty"`
	BatchNumber string     `json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
}

// Invoice records goods received from a supplier. Invoices are append-only:
// stock levels are changed by the receive operation, not by the invoice.
type Invoice struct {
	domain.Base

	Supplier      string    `gorm:"column:supplier;type:varchar(255)" json:"supplier"`
	InvoiceNumber string    `gorm:"column:invoice_number;type:varchar(100);index" json:"invoiceNumber"`
	InvoiceDate   time.Time `gorm:"column:invoice_date;not null" json:"invoiceDate"`
	Items         []Item    `gorm:"column:items;serializer:json" json:"items"`
	Notes         string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
}

func (Invoice) TableName() string {
	return "pharmacy.invoices"
}

func (inv *Invoice) ApplyDefaults() {
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = time.Now().UTC()
	}
	for i := range inv.Items {
		inv.Items[i].Medicine = strings.TrimSpace(inv.Items[i].Medicine)
	}
}

func (inv *Invoice) Validate() error {
	var errs []string
	if len(inv.Items) == 0 {
		errs = append(errs, "items must contain at least one entry")
	}
	for i, item := range inv.Items {
		if item.Medicine == "" {
			errs = append(errs, fmt.Sprintf("items[%d].medicine is required", i))
		}
		if item.Qty <= 0 {
			errs = append(errs, fmt.Sprintf("items[%d].qty must be greater than zero", i))
		}
		if item.UnitPrice < 0 {
			errs = append(errs, fmt.Sprintf("items[%d].unitPrice cannot be negative", i))
		}
	}
	return domain.NewValidationError(errs)
}

// TotalQty sums the quantity over all line items.
func (inv *Invoice) TotalQty() int {
	total := 0
	for _, item := range inv.Items {
		total += item.Qty
	}
	return total
}

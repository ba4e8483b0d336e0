package requisition

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

// Status is the requisition header status. It is set by callers and is not
// derived from the item statuses, so the two can disagree.
type Status string

const (
	StatusSent       Status = "Sent"
	StatusProcessing Status = "Processing"
	StatusClosed     Status = "Closed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusSent, StatusProcessing, StatusClosed:
		return true
	}
	return false
}

// ItemStatus transitions:
//
//	Pending → Issued
//	Pending → Rejected
//
// Issued and Rejected are terminal.
type ItemStatus string

const (
	ItemPending  ItemStatus = "Pending"
	ItemIssued   ItemStatus = "Issued"
	ItemRejected ItemStatus = "Rejected"
)

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemPending, ItemIssued, ItemRejected:
		return true
	}
	return false
}

func (s ItemStatus) IsTerminal() bool {
	return s == ItemIssued || s == ItemRejected
}

type Item struct {
	ID        uuid.UUID  `json:"_id"`
	Medicine  string     `json:"medicine"`
	Qty       int        `json:"qty"`
	Status    ItemStatus `json:"status"`
	IssuedQty int        `json:"issuedQty"`
}

type Requisition struct {
	domain.Base

	From   string    `gorm:"column:from_department;type:varchar(150);not null;index" json:"from"`
	Date   time.Time `gorm:"column:date;not null;index" json:"date"`
	Items  []Item    `gorm:"column:items;serializer:json" json:"items"`
	Status Status    `gorm:"column:status;type:varchar(20);not null;default:'Sent';index" json:"status"`
}

func (Requisition) TableName() string {
	return "pharmacy.requisitions"
}

func (r *Requisition) ApplyDefaults() {
	r.From = strings.TrimSpace(r.From)
	if r.Date.IsZero() {
		r.Date = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = StatusSent
	}
	for i := range r.Items {
		item := &r.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.Status == "" {
			item.Status = ItemPending
		}
		item.Medicine = strings.TrimSpace(item.Medicine)
	}
}

func (r *Requisition) Validate() error {
	var errs []string
	if r.From == "" {
		errs = append(errs, "from is required")
	}
	if !r.Status.IsValid() {
		errs = append(errs, "status must be one of Sent, Processing, Closed")
	}
	if len(r.Items) == 0 {
		errs = append(errs, "items must contain at least one entry")
	}
	for i, item := range r.Items {
		if item.Medicine == "" {
			errs = append(errs, fmt.Sprintf("items[%d].medicine is required", i))
		}
		if item.Qty <= 0 {
			errs = append(errs, fmt.Sprintf("items[%d].qty must be greater than zero", i))
		}
		if !item.Status.IsValid() {
			errs = append(errs, fmt.Sprintf("items[%d].status must be one of Pending, Issued, Rejected", i))
		}
		if item.IssuedQty < 0 || item.IssuedQty > item.Qty {
			errs = append(errs, fmt.Sprintf("items[%d].issuedQty must be between 0 and qty", i))
		}
		if item.IssuedQty != 0 && item.Status != ItemIssued {
			errs = append(errs, fmt.Sprintf("items[%d].issuedQty can only be set on Issued items", i))
		}
	}
	return domain.NewValidationError(errs)
}

// CheckItemTransitions compares r against the previously stored prev. An
// item that had reached a terminal status must still be present, unchanged.
// Items are matched by ID; items unknown to prev are new.
func (r *Requisition) CheckItemTransitions(prev *Requisition) error {
	next := make(map[uuid.UUID]Item, len(r.Items))
	for _, item := range r.Items {
		next[item.ID] = item
	}
	for _, old := range prev.Items {
		if !old.Status.IsTerminal() {
			continue
		}
		item, ok := next[old.ID]
		if !ok {
			return fmt.Errorf("item %s removed: %w", old.ID, ErrInvalidItemTransition)
		}
		if item != old {
			return fmt.Errorf("item %s: %w", old.ID, ErrInvalidItemTransition)
		}
	}
	return nil
}

func (r *Requisition) Item(id uuid.UUID) (*Item, error) {
	for i := range r.Items {
		if r.Items[i].ID == id {
			return &r.Items[i], nil
		}
	}
	return nil, ErrItemNotFound
}

// IssueItem moves a pending item to Issued with the given quantity. The
// caller is responsible for decrementing stock in the same transaction.
func (r *Requisition) IssueItem(id uuid.UUID, qty int) (*Item, error) {
	item, err := r.Item(id)
	if err != nil {
		return nil, err
	}
	if item.Status != ItemPending {
		return nil, ErrInvalidItemTransition
	}
	if qty <= 0 || qty > item.Qty {
		return nil, &domain.ValidationError{Fields: []string{"qty must be between 1 and the requested quantity"}}
	}
	item.Status = ItemIssued
	item.IssuedQty = qty
	return item, nil
}

func (r *Requisition) RejectItem(id uuid.UUID) (*Item, error) {
	item, err := r.Item(id)
	if err != nil {
		return nil, err
	}
	if item.Status != ItemPending {
		return nil, ErrInvalidItemTransition
	}
	item.Status = ItemRejected
	item.IssuedQty = 0
	return item, nil
}

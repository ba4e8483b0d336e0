package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/requisition"
)

type RequisitionRepository struct {
	*Store[requisition.Requisition, *requisition.Requisition]
	stock *StockRepository
}

func NewRequisitionRepository(db *gorm.DB, stockRepo *StockRepository) *RequisitionRepository {
	return &RequisitionRepository{
		Store: newStore[requisition.Requisition](db, requisition.ErrRequisitionNotFound, nil),
		stock: stockRepo,
	}
}

func (r *RequisitionRepository) IssueItem(ctx context.Context, requisitionID, itemID uuid.UUID, qty int) (*requisition.Requisition, error) {
	var out *requisition.Requisition

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := r.get(tx.Clauses(clause.Locking{Strength: "UPDATE"}), requisitionID)
		if err != nil {
			return err
		}

		item, err := req.IssueItem(itemID, qty)
		if err != nil {
			return err
		}
		if err := r.stock.withdraw(tx, item.Medicine, qty); err != nil {
			return err
		}
		if err := r.update(tx, req); err != nil {
			return err
		}

		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

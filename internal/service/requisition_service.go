package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/requisition"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
)

type RequisitionService struct {
	*ResourceService[requisition.Requisition, *requisition.Requisition]
	requisitions requisition.Repository
}

func NewRequisitionService(repo requisition.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *RequisitionService {
	base := NewResourceService[requisition.Requisition]("requisition", repo, auditSvc, m, log)
	// Header status is never reconciled with item statuses.
	base.checkUpdate = func(prev, next *requisition.Requisition) error {
		return next.CheckItemTransitions(prev)
	}
	base.afterCreate = func(r *requisition.Requisition) {
		for _, item := range r.Items {
			if item.Status != requisition.ItemPending {
				m.RequisitionItemsTotal.WithLabelValues(string(item.Status)).Inc()
			}
		}
	}
	return &RequisitionService{ResourceService: base, requisitions: repo}
}

// IssueItem issues qty units of a pending item and takes them out of stock in
// the same transaction.
func (s *RequisitionService) IssueItem(ctx context.Context, requisitionID, itemID uuid.UUID, qty int, actor Actor) (req *requisition.Requisition, err error) {
	ctx, span := s.itemSpan(ctx, "IssueItem", requisitionID, itemID)
	defer func() { endSpan(span, err) }()

	if qty <= 0 {
		return nil, &domain.ValidationError{Fields: []string{"qty must be greater than zero"}}
	}

	req, err = s.requisitions.IssueItem(ctx, requisitionID, itemID, qty)
	if err != nil {
		s.log.Warn("failed to issue requisition item",
			zap.String("requisition_id", requisitionID.String()),
			zap.String("item_id", itemID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RequisitionItemsTotal.WithLabelValues(string(requisition.ItemIssued)).Inc()
	s.recordWrite(ctx, domain.ActionUpdate, requisitionID, actor, fmt.Sprintf("items.%s.status=Issued", itemID))
	return req, nil
}

// RejectItem rejects a pending item. Stock is not touched.
func (s *RequisitionService) RejectItem(ctx context.Context, requisitionID, itemID uuid.UUID, actor Actor) (req *requisition.Requisition, err error) {
	ctx, span := s.itemSpan(ctx, "RejectItem", requisitionID, itemID)
	defer func() { endSpan(span, err) }()

	req, err = s.requisitions.GetByID(ctx, requisitionID)
	if err != nil {
		return nil, err
	}
	if _, err := req.RejectItem(itemID); err != nil {
		return nil, err
	}
	if err := s.requisitions.Update(ctx, req); err != nil {
		return nil, err
	}

	s.metrics.RequisitionItemsTotal.WithLabelValues(string(requisition.ItemRejected)).Inc()
	s.recordWrite(ctx, domain.ActionUpdate, requisitionID, actor, fmt.Sprintf("items.%s.status=Rejected", itemID))
	return req, nil
}

func (s *RequisitionService) itemSpan(ctx context.Context, op string, requisitionID, itemID uuid.UUID) (context.Context, trace.Span) {
	ctx, span := s.startSpan(ctx, op, requisitionID)
	span.SetAttributes(attribute.String("requisition.item_id", itemID.String()))
	return ctx, span
}

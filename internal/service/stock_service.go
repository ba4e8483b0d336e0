package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/stock"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
)

type StockService struct {
	*ResourceService[stock.Item, *stock.Item]
	items stock.Repository
}

func NewStockService(repo stock.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *StockService {
	return &StockService{
		ResourceService: NewResourceService[stock.Item]("stock_item", repo, auditSvc, m, log),
		items:           repo,
	}
}

// Receive adds cmd.Qty units of cmd.Medicine to stock, creating the item on
// first sight. Names match exactly, case included.
func (s *StockService) Receive(ctx context.Context, cmd stock.ReceiveCommand, actor Actor) (item *stock.Item, err error) {
	ctx, span := tracer.Start(ctx, "stock_item.Receive")
	defer func() { endSpan(span, err) }()

	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(cmd.Medicine)
	span.SetAttributes(attribute.String("stock.medicine", name), attribute.Int("stock.qty", cmd.Qty))

	item, err = s.items.Receive(ctx, name, cmd.Qty)
	if err != nil {
		s.log.Error("failed to receive stock", zap.String("medicine", name), zap.Error(err))
		return nil, err
	}

	s.metrics.StockReceivedUnits.Add(float64(cmd.Qty))
	action := domain.ActionUpdate
	if item.Version == 1 {
		action = domain.ActionCreate
	}
	s.recordWrite(ctx, action, item.ID, actor, "quantity")
	return item, nil
}

type InvoiceService struct {
	*ResourceService[invoice.Invoice, *invoice.Invoice]
}

func NewInvoiceService(repo domain.Repository[invoice.Invoice], auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *InvoiceService {
	base := NewResourceService[invoice.Invoice]("invoice", repo, auditSvc, m, log)
	base.afterCreate = func(inv *invoice.Invoice) {
		base.log.Info("invoice recorded",
			zap.String("supplier", inv.Supplier),
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Int("lines", len(inv.Items)),
			zap.Int("total_qty", inv.TotalQty()),
		)
	}
	return &InvoiceService{ResourceService: base}
}

package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/stock"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
)

type StockHandler struct {
	resourceHandler[stock.Item]
	svc *service.StockService
}

func NewStockHandler(svc *service.StockService) *StockHandler {
	return &StockHandler{resourceHandler: newResourceHandler[stock.Item](svc), svc: svc}
}

type receiveRequest struct {
	Medicine string `json:"medicine"`
	Qty      int    `json:"qty"`
}

// Receive handles POST /item-receiving.
func (h *StockHandler) Receive(c *gin.Context) {
	var req receiveRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Receive(c.Request.Context(), stock.ReceiveCommand{
		Medicine: req.Medicine,
		Qty:      req.Qty,
	}, middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, item)
}

type InvoiceHandler struct {
	resourceHandler[invoice.Invoice]
}

func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{resourceHandler: newResourceHandler[invoice.Invoice](svc)}
}

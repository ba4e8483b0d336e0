package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/requisition"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
)

type RequisitionHandler struct {
	resourceHandler[requisition.Requisition]
	svc *service.RequisitionService
}

func NewRequisitionHandler(svc *service.RequisitionService) *RequisitionHandler {
	return &RequisitionHandler{resourceHandler: newResourceHandler[requisition.Requisition](svc), svc: svc}
}

type issueItemRequest struct {
	Qty int `json:"qty"`
}

// IssueItem handles POST /requisitions/:id/items/:itemId/issue.
func (h *RequisitionHandler) IssueItem(c *gin.Context) {
	reqID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUID(c, "itemId")
	if !ok {
		return
	}
	var body issueItemRequest
	if !bindJSON(c, &body) {
		return
	}

	req, err := h.svc.IssueItem(c.Request.Context(), reqID, itemID, body.Qty, middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, req)
}

// RejectItem handles POST /requisitions/:id/items/:itemId/reject.
func (h *RequisitionHandler) RejectItem(c *gin.Context) {
	reqID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUID(c, "itemId")
	if !ok {
		return
	}

	req, err := h.svc.RejectItem(c.Request.Context(), reqID, itemID, middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, req)
}

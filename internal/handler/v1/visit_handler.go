package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
)

type VisitHandler struct {
	resourceHandler[visit.Visit]
	svc *service.VisitService
}

func NewVisitHandler(svc *service.VisitService) *VisitHandler {
	return &VisitHandler{resourceHandler: newResourceHandler[visit.Visit](svc), svc: svc}
}

type visitStep func(ctx context.Context, id uuid.UUID, expectedVersion *int, actor service.Actor) (*visit.Visit, error)

// step runs one lifecycle operation against the visit named in the path.
func (h *VisitHandler) step(c *gin.Context, fn visitStep) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	version, ok := parseIfMatch(c)
	if !ok {
		return
	}
	v, err := fn(c.Request.Context(), id, version, middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, v)
}

// ConfirmPayment handles PATCH /visits/:id/payment-status.
func (h *VisitHandler) ConfirmPayment(c *gin.Context) {
	h.step(c, h.svc.ConfirmPayment)
}

// Start handles PATCH /visits/:id/start.
func (h *VisitHandler) Start(c *gin.Context) {
	h.step(c, h.svc.Start)
}

func (h *VisitHandler) RecordVitals(c *gin.Context) {
	var vitals visit.Vitals
	if !bindJSON(c, &vitals) {
		return
	}
	h.step(c, func(ctx context.Context, id uuid.UUID, version *int, actor service.Actor) (*visit.Visit, error) {
		return h.svc.RecordVitals(ctx, id, vitals, version, actor)
	})
}

func (h *VisitHandler) RecordDiagnosis(c *gin.Context) {
	var d visit.Diagnosis
	if !bindJSON(c, &d) {
		return
	}
	h.step(c, func(ctx context.Context, id uuid.UUID, version *int, actor service.Actor) (*visit.Visit, error) {
		return h.svc.RecordDiagnosis(ctx, id, d, version, actor)
	})
}

func (h *VisitHandler) AddLabOrder(c *gin.Context) {
	var o visit.LabOrder
	if !bindJSON(c, &o) {
		return
	}
	h.step(c, func(ctx context.Context, id uuid.UUID, version *int, actor service.Actor) (*visit.Visit, error) {
		return h.svc.AddLabOrder(ctx, id, o, version, actor)
	})
}

func (h *VisitHandler) AddPrescription(c *gin.Context) {
	var p visit.Prescription
	if !bindJSON(c, &p) {
		return
	}
	h.step(c, func(ctx context.Context, id uuid.UUID, version *int, actor service.Actor) (*visit.Visit, error) {
		return h.svc.AddPrescription(ctx, id, p, version, actor)
	})
}

type endVisitRequest struct {
	Notes string `json:"notes"`
}

// End handles PATCH /visits/:id/end. The body is optional.
func (h *VisitHandler) End(c *gin.Context) {
	var body endVisitRequest
	if !bindOptionalJSON(c, &body) {
		return
	}
	h.step(c, func(ctx context.Context, id uuid.UUID, version *int, actor service.Actor) (*visit.Visit, error) {
		return h.svc.End(ctx, id, body.Notes, version, actor)
	})
}

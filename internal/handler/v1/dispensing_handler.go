package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/dispensing"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
)

// DispensingHandler serves patient dispensing records with the patient
// document embedded.
type DispensingHandler struct {
	svc *service.DispensingService
}

func NewDispensingHandler(svc *service.DispensingService) *DispensingHandler {
	return &DispensingHandler{svc: svc}
}

func (h *DispensingHandler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, records)
}

func (h *DispensingHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	record, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, record)
}

func (h *DispensingHandler) Create(c *gin.Context) {
	var d dispensing.Dispensing
	if !bindJSON(c, &d) {
		return
	}
	record, err := h.svc.Create(c.Request.Context(), &d, middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, record)
}

func (h *DispensingHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, middleware.ActorFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondDeleted(c)
}

type DirectDispensingHandler struct {
	resourceHandler[dispensing.DirectDispensing]
}

func NewDirectDispensingHandler(svc *service.DirectDispensingService) *DirectDispensingHandler {
	return &DirectDispensingHandler{resourceHandler: newResourceHandler[dispensing.DirectDispensing](svc)}
}

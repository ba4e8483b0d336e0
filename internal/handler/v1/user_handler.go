package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
)

type PatientHandler struct {
	resourceHandler[patient.Patient]
}

func NewPatientHandler(svc *service.PatientService) *PatientHandler {
	return &PatientHandler{resourceHandler: newResourceHandler[patient.Patient](svc)}
}

type UserHandler struct {
	resourceHandler[domain.User]
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{resourceHandler: newResourceHandler[domain.User](svc), svc: svc}
}

// Create registers a user from a plaintext password; the generic create
// would take the hash from the body.
func (h *UserHandler) Create(c *gin.Context) {
	var in service.CreateUserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.svc.Register(c.Request.Context(), in, middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, user)
}

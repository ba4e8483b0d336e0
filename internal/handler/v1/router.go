package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
)

// Services are the dependencies of the v1 API.
type Services struct {
	Stock            *service.StockService
	Invoices         *service.InvoiceService
	Requisitions     *service.RequisitionService
	Dispensing       *service.DispensingService
	DirectDispensing *service.DirectDispensingService
	Visits           *service.VisitService
	Patients         *service.PatientService
	Users            *service.UserService
	Auth             *service.AuthService
}

type RouterOptions struct {
	AuthEnabled bool
	// AuthLimit guards the login and refresh endpoints. Nil disables it.
	AuthLimit gin.HandlerFunc
}

// RegisterRoutes mounts the v1 API on rg.
func RegisterRoutes(rg *gin.RouterGroup, svc Services, opts RouterOptions) {
	var (
		stockH       = NewStockHandler(svc.Stock)
		invoiceH     = NewInvoiceHandler(svc.Invoices)
		requisitionH = NewRequisitionHandler(svc.Requisitions)
		dispensingH  = NewDispensingHandler(svc.Dispensing)
		directH      = NewDirectDispensingHandler(svc.DirectDispensing)
		visitH       = NewVisitHandler(svc.Visits)
		patientH     = NewPatientHandler(svc.Patients)
		userH        = NewUserHandler(svc.Users)
		authH        = NewAuthHandler(svc.Auth)
	)

	authGroup := rg.Group("/auth")
	if opts.AuthLimit != nil {
		authGroup.Use(opts.AuthLimit)
	}
	authGroup.POST("/login", authH.Login)
	authGroup.POST("/refresh", authH.Refresh)

	api := rg.Group("")
	api.Use(middleware.Authenticate(svc.Auth, opts.AuthEnabled))

	inventory := api.Group("", middleware.RequireRole(domain.RoleStorekeeper, domain.RolePharmacist))
	{
		inventory.GET("/stock", stockH.List)
		inventory.POST("/stock", stockH.Create)
		inventory.GET("/stock/:id", stockH.Get)
		inventory.PUT("/stock/:id", stockH.Update)
		inventory.DELETE("/stock/:id", stockH.Delete)

		inventory.POST("/item-receiving", stockH.Receive)
		inventory.GET("/item-receiving/invoices", invoiceH.List)
		inventory.POST("/item-receiving/invoices", invoiceH.Create)
		inventory.GET("/item-receiving/invoices/:id", invoiceH.Get)

		inventory.POST("/requisitions/:id/items/:itemId/issue", requisitionH.IssueItem)
		inventory.POST("/requisitions/:id/items/:itemId/reject", requisitionH.RejectItem)
	}

	wards := api.Group("", middleware.RequireRole(
		domain.RoleStorekeeper, domain.RolePharmacist, domain.RoleNurse, domain.RoleDoctor,
	))
	{
		wards.GET("/requisitions", requisitionH.List)
		wards.POST("/requisitions", requisitionH.Create)
		wards.GET("/requisitions/:id", requisitionH.Get)
		wards.PUT("/requisitions/:id", requisitionH.Update)
		wards.DELETE("/requisitions/:id", requisitionH.Delete)
	}

	pharmacy := api.Group("", middleware.RequireRole(domain.RolePharmacist))
	{
		pharmacy.GET("/dispensing", dispensingH.List)
		pharmacy.POST("/dispensing", dispensingH.Create)
		pharmacy.GET("/dispensing/:id", dispensingH.Get)
		pharmacy.DELETE("/dispensing/:id", dispensingH.Delete)

		pharmacy.GET("/direct-dispensing", directH.List)
		pharmacy.POST("/direct-dispensing", directH.Create)
		pharmacy.GET("/direct-dispensing/:id", directH.Get)
		pharmacy.DELETE("/direct-dispensing/:id", directH.Delete)
	}

	clinical := api.Group("", middleware.RequireRole(domain.RoleDoctor, domain.RoleNurse, domain.RoleReceptionist))
	{
		clinical.GET("/visits", visitH.List)
		clinical.POST("/visits", visitH.Create)
		clinical.GET("/visits/:id", visitH.Get)
		clinical.DELETE("/visits/:id", visitH.Delete)
		clinical.PATCH("/visits/:id/payment-status", visitH.ConfirmPayment)
		clinical.PATCH("/visits/:id/start", visitH.Start)
		clinical.PUT("/visits/:id/vitals", visitH.RecordVitals)
		clinical.PUT("/visits/:id/diagnosis", visitH.RecordDiagnosis)
		clinical.POST("/visits/:id/lab-orders", visitH.AddLabOrder)
		clinical.POST("/visits/:id/prescriptions", visitH.AddPrescription)
		clinical.PATCH("/visits/:id/end", visitH.End)
	}

	records := api.Group("", middleware.RequireRole(
		domain.RoleDoctor, domain.RoleNurse, domain.RoleReceptionist, domain.RolePharmacist,
	))
	{
		records.GET("/patients", patientH.List)
		records.POST("/patients", patientH.Create)
		records.GET("/patients/:id", patientH.Get)
		records.PUT("/patients/:id", patientH.Update)
		records.DELETE("/patients/:id", patientH.Delete)
	}

	admin := api.Group("/users", middleware.RequireRole())
	{
		admin.GET("", userH.List)
		admin.POST("", userH.Create)
		admin.GET("/:id", userH.Get)
		admin.PUT("/:id", userH.Update)
		admin.DELETE("/:id", userH.Delete)
	}
}

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/config"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/dispensing"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/requisition"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/stock"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
)

type userStore interface {
	domain.Repository[domain.User]
	service.UserRepository
}

// stores holds one repository per collection for the configured driver.
type stores struct {
	stock            stock.Repository
	invoices         domain.Repository[invoice.Invoice]
	requisitions     requisition.Repository
	dispensing       domain.Repository[dispensing.Dispensing]
	directDispensing domain.Repository[dispensing.DirectDispensing]
	visits           visit.Repository
	patients         patient.Repository
	users            userStore
	audit            service.AuditRepository

	ping  func(ctx context.Context) error
	close func() error
}

func openStores(cfg *config.Config, log *zap.Logger, m *metrics.Collector) (*stores, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn("using the in-memory store; data is lost on restart")
		return memoryStores(), nil
	case config.DriverPostgres:
		db, err := database.Connect(cfg.Database, log, m)
		if err != nil {
			return nil, err
		}
		stockRepo := postgres.NewStockRepository(db)
		return &stores{
			stock:            stockRepo,
			invoices:         postgres.NewInvoiceRepository(db),
			requisitions:     postgres.NewRequisitionRepository(db, stockRepo),
			dispensing:       postgres.NewDispensingRepository(db),
			directDispensing: postgres.NewDirectDispensingRepository(db),
			visits:           postgres.NewVisitRepository(db),
			patients:         postgres.NewPatientRepository(db),
			users:            postgres.NewUserRepository(db),
			audit:            postgres.NewAuditRepository(db),
			ping:             func(ctx context.Context) error { return database.Ping(ctx, db) },
			close:            func() error { return database.Close(db) },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func memoryStores() *stores {
	db := memory.NewDB()
	stockRepo := memory.NewStockRepository(db)
	return &stores{
		stock:            stockRepo,
		invoices:         memory.NewInvoiceRepository(db),
		requisitions:     memory.NewRequisitionRepository(db, stockRepo),
		dispensing:       memory.NewDispensingRepository(db),
		directDispensing: memory.NewDirectDispensingRepository(db),
		visits:           memory.NewVisitRepository(db),
		patients:         memory.NewPatientRepository(db),
		users:            memory.NewUserRepository(db),
		audit:            memory.NewAuditRepository(),
		ping:             db.Ping,
		close:            func() error { return nil },
	}
}

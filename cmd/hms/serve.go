package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/hms/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/server"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/tracer"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initialising tracing: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	m := metrics.NewCollector("hms", prometheus.DefaultRegisterer)

	st, err := openStores(cfg, log, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Warn("closing store failed", zap.Error(err))
		}
	}()

	auditSvc := service.NewAuditService(st.audit, m, log)
	defer auditSvc.Shutdown()

	svc := v1.Services{
		Stock:            service.NewStockService(st.stock, auditSvc, m, log),
		Invoices:         service.NewInvoiceService(st.invoices, auditSvc, m, log),
		Requisitions:     service.NewRequisitionService(st.requisitions, auditSvc, m, log),
		Dispensing:       service.NewDispensingService(st.dispensing, st.patients, auditSvc, m, log),
		DirectDispensing: service.NewDirectDispensingService(st.directDispensing, auditSvc, m, log),
		Visits:           service.NewVisitService(st.visits, auditSvc, m, log),
		Patients:         service.NewPatientService(st.patients, auditSvc, m, log),
		Users:            service.NewUserService(st.users, auditSvc, m, log),
		Auth:             service.NewAuthService(st.users, auth.NewJWTManager(cfg.JWT), auditSvc, m, log),
	}

	if !cfg.Auth.Enabled {
		log.Warn("authentication is disabled; every request runs as an anonymous admin")
	}
	log.Info("starting hms",
		zap.String("store", cfg.Database.Driver),
		zap.String("version", cfg.App.Version),
	)

	return server.New(cfg, log, m, st.ping, svc).Run(ctx)
}

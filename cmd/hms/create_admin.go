package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/config"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/service"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
)

func createAdminCmd() *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user (password read from HMS_ADMIN_PASSWORD)",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("HMS_ADMIN_PASSWORD")
			if password == "" {
				return errors.New("HMS_ADMIN_PASSWORD must be set")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver == config.DriverMemory {
				return errors.New("create-admin needs a persistent store; DB_DRIVER=memory would discard the user")
			}
			log, err := logger.New(cfg.Log, cfg.App)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			m := metrics.NewCollector("hms", prometheus.NewRegistry())
			st, err := openStores(cfg, log, m)
			if err != nil {
				return err
			}
			defer func() { _ = st.close() }()

			auditSvc := service.NewAuditService(st.audit, m, log)
			defer auditSvc.Shutdown()

			users := service.NewUserService(st.users, auditSvc, m, log)
			u, err := users.Register(cmd.Context(), service.CreateUserInput{
				Email:    email,
				Name:     name,
				Role:     domain.RoleAdmin,
				Password: password,
			}, service.Actor{RequestID: "cli:create-admin"})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

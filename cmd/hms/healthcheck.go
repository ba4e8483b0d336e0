package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/config"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/tlsconfig"
)

func healthcheckCmd() *cobra.Command {
	var caFile, certFile, keyFile string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe /health of a running server; exits non-zero when it is not ok",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client := &http.Client{Timeout: timeout}
			if cfg.Server.TLSEnabled() {
				if caFile == "" {
					caFile = cfg.Server.ClientCAFile
				}
				tlsCfg, err := tlsconfig.ClientConfig(caFile, certFile, keyFile)
				if err != nil {
					return err
				}
				client.Transport = &http.Transport{TLSClientConfig: tlsCfg}
			}
			status, err := probeHealth(cmd.Context(), client, healthURL(cfg.Server))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().StringVar(&caFile, "ca", "", "CA certificate to verify the server (defaults to SERVER_TLS_CLIENT_CA_FILE)")
	cmd.Flags().StringVar(&certFile, "cert", "", "client certificate for mTLS")
	cmd.Flags().StringVar(&keyFile, "key", "", "client key for mTLS")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	return cmd
}

// healthURL targets loopback when the server listens on all interfaces.
func healthURL(s config.ServerConfig) string {
	host := s.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	scheme := "http"
	if s.TLSEnabled() {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(s.Port)) + "/health"
}

func probeHealth(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("probing %s: %w", url, err)
	}
	defer resp.Body.Close()

	var body struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server unhealthy: %d %s", resp.StatusCode, body.Data.Status)
	}
	return body.Data.Status, nil
}

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type setupPrompt struct {
	key      string
	question string
	fallback string
	// generate fills an empty answer when there is no static fallback.
	generate func() (string, error)
}

var setupPrompts = []setupPrompt{
	{key: "APP_ENV", question: "Environment (development, staging, production)", fallback: "development"},
	{key: "SERVER_PORT", question: "HTTP port", fallback: "8080"},
	{key: "DB_DRIVER", question: "Store driver (postgres, memory)", fallback: "postgres"},
	{key: "DB_HOST", question: "PostgreSQL host", fallback: "localhost"},
	{key: "DB_PORT", question: "PostgreSQL port", fallback: "5432"},
	{key: "DB_NAME", question: "PostgreSQL database", fallback: "hms"},
	{key: "DB_USER", question: "PostgreSQL user", fallback: "hms"},
	{key: "DB_PASSWORD", question: "PostgreSQL password"},
	{key: "DB_SSLMODE", question: "PostgreSQL sslmode", fallback: "disable"},
	{key: "JWT_SECRET", question: "JWT signing secret (empty generates one)", generate: randomSecret},
	{key: "AUTH_ENABLED", question: "Require authentication (true, false)", fallback: "true"},
	{key: "CORS_ALLOWED_ORIGINS", question: "Allowed CORS origins, comma separated", fallback: "http://localhost:3000"},
	{key: "LOG_LEVEL", question: "Log level (debug, info, warn, error)", fallback: "info"},
}

func setupCmd() *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactively write a .env file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				}
			}
			env, err := promptEnv(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := godotenv.Write(env, output); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d settings to %s\n", len(env), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", ".env", "file to write")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// promptEnv asks every setup question on out and reads one answer per line
// from in. An empty answer takes the default.
func promptEnv(in io.Reader, out io.Writer) (map[string]string, error) {
	reader := bufio.NewReader(in)
	env := make(map[string]string, len(setupPrompts))

	for _, p := range setupPrompts {
		if p.fallback != "" {
			fmt.Fprintf(out, "%s [%s]: ", p.question, p.fallback)
		} else {
			fmt.Fprintf(out, "%s: ", p.question)
		}

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading answer for %s: %w", p.key, err)
		}
		answer := strings.TrimSpace(line)

		switch {
		case answer != "":
		case p.generate != nil:
			if answer, err = p.generate(); err != nil {
				return nil, err
			}
		default:
			answer = p.fallback
		}
		env[p.key] = answer
	}
	return env, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

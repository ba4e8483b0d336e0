package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
)

func TestPromptEnv_DefaultsAndAnswers(t *testing.T) {
	answers := make([]string, len(setupPrompts))
	for i, p := range setupPrompts {
		switch p.key {
		case "SERVER_PORT":
			answers[i] = "9090"
		case "DB_DRIVER":
			answers[i] = "memory"
		}
	}
	in := strings.NewReader(strings.Join(answers, "\n") + "\n")
	var out bytes.Buffer

	env, err := promptEnv(in, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["SERVER_PORT"] != "9090" {
		t.Errorf("expected 9090, got %q", env["SERVER_PORT"])
	}
	if env["DB_DRIVER"] != "memory" {
		t.Errorf("expected memory, got %q", env["DB_DRIVER"])
	}
	if env["APP_ENV"] != "development" {
		t.Errorf("expected default development, got %q", env["APP_ENV"])
	}
	if len(env["JWT_SECRET"]) != 64 {
		t.Errorf("expected generated 64-char secret, got %q", env["JWT_SECRET"])
	}
	if !strings.Contains(out.String(), "HTTP port [8080]: ") {
		t.Errorf("expected port prompt with default, got %q", out.String())
	}
}

func TestPromptEnv_EOFUsesDefaults(t *testing.T) {
	env, err := promptEnv(strings.NewReader(""), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env["DB_HOST"] != "localhost" {
		t.Errorf("expected localhost, got %q", env["DB_HOST"])
	}
	if env["DB_PASSWORD"] != "" {
		t.Errorf("expected empty password, got %q", env["DB_PASSWORD"])
	}
}

func TestSetupCmd_WritesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("production\n"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"setup", "--output", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if env["APP_ENV"] != "production" {
		t.Errorf("expected production, got %q", env["APP_ENV"])
	}

	// a second run refuses to overwrite without --force
	cmd = newRootCmd()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"setup", "--output", path})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
}

func TestLoadEnvFile_MissingIsIgnored(t *testing.T) {
	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadEnvFile_DoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HMS_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HMS_TEST_VALUE", "from-env")

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("HMS_TEST_VALUE"); got != "from-env" {
		t.Errorf("expected from-env, got %q", got)
	}
}

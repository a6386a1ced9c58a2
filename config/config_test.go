package config

import (
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/sports?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.ServerPort)
	}
	if cfg.MembershipFee().String() != "11.99" {
		t.Fatalf("expected default fee 11.99, got %s", cfg.MembershipFee())
	}
	if cfg.Location().String() != "Europe/Madrid" {
		t.Fatalf("expected Europe/Madrid, got %s", cfg.Location())
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sports")
	t.Setenv("JWT_SECRET_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET_KEY is empty")
	}
}

func TestLoad_RejectsBadPort(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for out-of-range port")
	}
}

func TestLoad_RejectsBadFee(t *testing.T) {
	setRequired(t)
	t.Setenv("MEMBERSHIP_MONTHLY_FEE", "-3")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative fee")
	}
}

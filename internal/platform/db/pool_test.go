package db

import "testing"

func TestPoolConfig(t *testing.T) {
	cfg, err := poolConfig("postgres://u:p@localhost:5432/healthrec", 10, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxConns != 10 || cfg.MinConns != 3 {
		t.Errorf("expected 10/3 conns, got %d/%d", cfg.MaxConns, cfg.MinConns)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != applicationName {
		t.Errorf("expected application_name %q, got %q", applicationName, got)
	}
}

func TestPoolConfig_KeepsExplicitApplicationName(t *testing.T) {
	cfg, err := poolConfig("postgres://localhost/healthrec?application_name=migrator", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != "migrator" {
		t.Errorf("expected migrator, got %q", got)
	}
}

func TestPoolConfig_MinAboveMaxIgnored(t *testing.T) {
	cfg, err := poolConfig("postgres://localhost/healthrec", 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MinConns != 0 {
		t.Errorf("expected min conns left at default, got %d", cfg.MinConns)
	}
}

func TestPoolConfig_BadURL(t *testing.T) {
	if _, err := poolConfig("://nope", 0, 0); err == nil {
		t.Fatal("expected parse error")
	}
}

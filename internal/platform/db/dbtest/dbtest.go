//go:build integration

// Package dbtest starts a throwaway PostgreSQL container for store
// integration tests and hands out migrated, isolated schemas.
package dbtest

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/healthrec/healthrec/internal/platform/db"
)

const (
	image    = "postgres:16-alpine"
	user     = "testuser"
	password = "testpass"
	database = "healthrectest"
)

// Postgres is a running database container.
type Postgres struct {
	ConnString    string
	MigrationsDir string

	container testcontainers.Container
	admin     *pgxpool.Pool
	seq       atomic.Int64
}

// Start launches the container and waits until it accepts connections.
func Start(ctx context.Context) (*Postgres, error) {
	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
			"POSTGRES_DB":       database,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", user, password, host, port.Int(), database)
	admin, err := db.NewPool(ctx, connStr, 4, 1)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Postgres{
		ConnString:    connStr,
		MigrationsDir: migrationsDir(),
		container:     container,
		admin:         admin,
	}, nil
}

// Close stops the container.
func (p *Postgres) Close(ctx context.Context) {
	p.admin.Close()
	_ = p.container.Terminate(ctx)
}

// Schema creates a fresh schema, applies the shipped migrations to it and
// returns a pool whose connections resolve unqualified names there. The
// schema is dropped when t finishes.
func (p *Postgres) Schema(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	name := fmt.Sprintf("t_%s_%d", sanitize(t.Name()), p.seq.Add(1))
	if len(name) > 60 {
		name = fmt.Sprintf("t_%d", p.seq.Add(1))
	}

	if _, err := db.NewMigrator(p.admin, p.MigrationsDir, name).Up(ctx); err != nil {
		t.Fatalf("migrate schema %s: %v", name, err)
	}

	cfg, err := pgxpool.ParseConfig(p.ConnString)
	if err != nil {
		t.Fatalf("parse conn string: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = name
	cfg.MaxConns = 8

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("open schema pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if _, err := p.admin.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", name)); err != nil {
			t.Logf("warning: drop schema %s: %v", name, err)
		}
	})
	return pool
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}

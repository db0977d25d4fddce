package postgres

import (
	"testing"
	"time"

	"github.com/ogurasousui/codex-hr-attendance/internal/platform/config"
)

func TestBuildPoolConfig(t *testing.T) {
	t.Parallel()

	dbCfg := config.DatabaseConfig{
		Host:             "localhost",
		Port:             15432,
		User:             "user",
		Password:         "pass",
		Name:             "db",
		SSLMode:          "disable",
		ApplicationName:  "hr-attendance-test",
		MaxOpenConns:     20,
		MaxIdleConns:     5,
		ConnMaxLifetime:  30 * time.Minute,
		ConnMaxIdleTime:  10 * time.Minute,
		StatementTimeout: 2500 * time.Millisecond,
		ConnectTimeout:   3 * time.Second,
	}

	poolCfg, err := BuildPoolConfig(dbCfg)
	if err != nil {
		t.Fatalf("BuildPoolConfig returned error: %v", err)
	}

	if poolCfg.MaxConns != 20 {
		t.Errorf("expected MaxConns 20, got %d", poolCfg.MaxConns)
	}

	if poolCfg.MinConns != 5 {
		t.Errorf("expected MinConns 5, got %d", poolCfg.MinConns)
	}

	if poolCfg.MaxConnLifetime != 30*time.Minute {
		t.Errorf("unexpected MaxConnLifetime: %v", poolCfg.MaxConnLifetime)
	}

	if poolCfg.MaxConnIdleTime != 10*time.Minute {
		t.Errorf("unexpected MaxConnIdleTime: %v", poolCfg.MaxConnIdleTime)
	}

	if poolCfg.ConnConfig.Database != "db" {
		t.Errorf("expected database db, got %s", poolCfg.ConnConfig.Database)
	}

	if got := poolCfg.ConnConfig.RuntimeParams["application_name"]; got != "hr-attendance-test" {
		t.Errorf("expected application_name to be set, got %q", got)
	}

	if got := poolCfg.ConnConfig.RuntimeParams["statement_timeout"]; got != "2500" {
		t.Errorf("expected statement_timeout 2500, got %q", got)
	}

	if got := poolCfg.ConnConfig.RuntimeParams["timezone"]; got != "UTC" {
		t.Errorf("expected timezone UTC, got %q", got)
	}

	if poolCfg.ConnConfig.ConnectTimeout != 3*time.Second {
		t.Errorf("unexpected ConnectTimeout: %v", poolCfg.ConnConfig.ConnectTimeout)
	}
}

func TestBuildPoolConfig_OmitsUnsetParams(t *testing.T) {
	t.Parallel()

	poolCfg, err := BuildPoolConfig(config.DatabaseConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", Name: "db", SSLMode: "disable"})
	if err != nil {
		t.Fatalf("BuildPoolConfig returned error: %v", err)
	}
	if _, ok := poolCfg.ConnConfig.RuntimeParams["statement_timeout"]; ok {
		t.Errorf("statement_timeout must not be set by default")
	}
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; ok {
		t.Errorf("application_name must not be set when empty")
	}
}

func TestBuildPoolConfig_InvalidDSN(t *testing.T) {
	t.Parallel()

	if _, err := BuildPoolConfig(config.DatabaseConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", Name: "db", SSLMode: "bogus"}); err == nil {
		t.Fatalf("expected parse error for invalid sslmode")
	}
}

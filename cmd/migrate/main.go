package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/ogurasousui/codex-hr-attendance/internal/platform/config"
)

// command は実行するマイグレーション操作です。arg は steps / force の引数です。
type command struct {
	action string
	arg    int
}

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing migration files")
		verbose       = flag.Bool("v", false, "log each applied migration")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		log.Fatalf("invalid arguments: %v", err)
	}

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		log.Fatalf("migration requires storage.driver=%s, got %s", config.StorageDriverPostgres, cfg.Storage.Driver)
	}

	if err := runMigration(cmd, *migrationsDir, cfg.Database.DSN(), *verbose); err != nil {
		log.Fatalf("migration %s failed: %v", cmd.action, err)
	}

	log.Printf("migration %s completed", cmd.action)
}

// parseCommand は up|down|drop|version|steps N|force V を解釈します。引数なしは up です。
func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{action: "up"}, nil
	}

	cmd := command{action: args[0]}
	switch cmd.action {
	case "up", "down", "drop", "version":
		if len(args) > 1 {
			return command{}, fmt.Errorf("%s takes no arguments", cmd.action)
		}
		return cmd, nil
	case "steps", "force":
		if len(args) != 2 {
			return command{}, fmt.Errorf("%s requires exactly one integer argument", cmd.action)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("%s: %w", cmd.action, err)
		}
		if cmd.action == "steps" && n == 0 {
			return command{}, fmt.Errorf("steps must not be zero")
		}
		cmd.arg = n
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unsupported action %q", cmd.action)
	}
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

// migrateLogger は migrate.Logger を標準ロガーへ橋渡しします。
type migrateLogger struct {
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...any) {
	log.Printf("migrate: "+format, v...)
}

func (l migrateLogger) Verbose() bool {
	return l.verbose
}

func runMigration(cmd command, dir, dsn string, verbose bool) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()
	m.Log = migrateLogger{verbose: verbose}

	switch cmd.action {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		return ignoreNoChange(m.Steps(cmd.arg))
	case "force":
		return m.Force(cmd.arg)
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Printf("no migration applied")
				return nil
			}
			return err
		}
		log.Printf("version=%d dirty=%t", version, dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", cmd.action)
	}
}

func ignoreNoChange(err error) error {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ogurasousui/codex-hr-attendance/internal/adapters/export/xlsx"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/performance"
	"github.com/ogurasousui/codex-hr-attendance/internal/platform/app"
	"github.com/ogurasousui/codex-hr-attendance/internal/platform/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		from       = flag.String("from", "", "first date of the range (YYYY-MM-DD, defaults to the first day of this month)")
		to         = flag.String("to", "", "last date of the range (YYYY-MM-DD, defaults to today)")
		out        = flag.String("out", "attendance.xlsx", "output workbook path")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	application, err := app.New(ctx, cfg, log.Default())
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer application.Close()

	now := time.Now().In(cfg.Attendance.Location)
	if *from == "" {
		*from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(attendance.DateLayout)
	}
	if *to == "" {
		*to = now.Format(attendance.DateLayout)
	}

	if err := export(ctx, application, *from, *to, *out); err != nil {
		log.Fatalf("export failed: %v", err)
	}

	log.Printf("exported attendance %s..%s to %s", *from, *to, *out)
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

func export(ctx context.Context, a *app.App, from, to, path string) error {
	records, err := a.Attendance.ListRecords(ctx, attendance.ListRecordsInput{From: from, To: to})
	if err != nil {
		return fmt.Errorf("list attendance: %w", err)
	}

	employees, _, err := a.Repositories.Employees.List(ctx, employee.ListEmployeesFilter{})
	if err != nil {
		return fmt.Errorf("list employees: %w", err)
	}

	reviews, err := a.Repositories.Reviews.List(ctx, performance.ListReviewsFilter{})
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}

	dashboard, err := a.Analytics.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	return xlsx.Write(f, xlsx.Input{
		From:      from,
		To:        to,
		Records:   records,
		Employees: employees,
		Reviews:   reviews,
		Dashboard: dashboard,
	})
}
